package transcriber

import (
	"bytes"
	"encoding/binary"

	"github.com/astori/interviewpilot/internal/recording"
)

// pcmToWAV wraps raw s16le mono 16 kHz PCM in a RIFF/WAVE container, which is
// what whisper-cli expects on disk.
func pcmToWAV(pcm []byte) []byte {
	var buf bytes.Buffer

	dataLen := uint32(len(pcm))
	byteRate := uint32(recording.SampleRate * recording.Channels * 2)
	blockAlign := uint16(recording.Channels * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(recording.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(recording.SampleRate))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm)

	return buf.Bytes()
}

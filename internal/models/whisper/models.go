// Package whisper manages the ggml model files the local capture backend
// decodes with.
package whisper

import (
	"os"
	"path/filepath"
)

// ModelInfo describes one downloadable whisper model.
type ModelInfo struct {
	ID           string
	Filename     string
	Size         string // human readable
	SizeBytes    int64  // for download progress
	Multilingual bool
}

// available models from huggingface.co/ggerganov/whisper.cpp
var models = []ModelInfo{
	{ID: "tiny.en", Filename: "ggml-tiny.en.bin", Size: "75MB", SizeBytes: 75_000_000},
	{ID: "base.en", Filename: "ggml-base.en.bin", Size: "142MB", SizeBytes: 142_000_000},
	{ID: "small.en", Filename: "ggml-small.en.bin", Size: "466MB", SizeBytes: 466_000_000},
	{ID: "medium.en", Filename: "ggml-medium.en.bin", Size: "1.5GB", SizeBytes: 1_500_000_000},

	{ID: "tiny", Filename: "ggml-tiny.bin", Size: "75MB", SizeBytes: 75_000_000, Multilingual: true},
	{ID: "base", Filename: "ggml-base.bin", Size: "142MB", SizeBytes: 142_000_000, Multilingual: true},
	{ID: "small", Filename: "ggml-small.bin", Size: "466MB", SizeBytes: 466_000_000, Multilingual: true},
	{ID: "medium", Filename: "ggml-medium.bin", Size: "1.5GB", SizeBytes: 1_500_000_000, Multilingual: true},
	{ID: "large-v3", Filename: "ggml-large-v3.bin", Size: "3GB", SizeBytes: 3_000_000_000, Multilingual: true},
}

var modelByID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, model := range models {
		m[model.ID] = model
	}
	return m
}()

const baseDownloadURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelsDir is where downloaded models live.
func ModelsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "interviewpilot", "models"), nil
}

// Path returns the on-disk location for a model, empty for unknown IDs.
func Path(modelID string) string {
	info, ok := modelByID[modelID]
	if !ok {
		return ""
	}
	dir, err := ModelsDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, info.Filename)
}

// DownloadURL returns the upstream URL for a model, empty for unknown IDs.
func DownloadURL(modelID string) string {
	info, ok := modelByID[modelID]
	if !ok {
		return ""
	}
	return baseDownloadURL + "/" + info.Filename
}

// Get returns info for a model, nil for unknown IDs.
func Get(modelID string) *ModelInfo {
	info, ok := modelByID[modelID]
	if !ok {
		return nil
	}
	return &info
}

// List returns every known model.
func List() []ModelInfo {
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

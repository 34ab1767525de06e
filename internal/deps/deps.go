// Package deps probes the external tools the copilot shells out to, for
// the doctor command and for fail-fast checks before capture.
package deps

import (
	"os/exec"
	"strings"
)

// Status reports whether a tool is reachable on PATH.
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool names a probeable external dependency and what it is needed for.
type Tool struct {
	Name     string
	Purpose  string
	Optional bool
	probe    func() Status
}

// Tools lists everything the doctor command checks.
func Tools() []Tool {
	return []Tool{
		{Name: "pw-record", Purpose: "microphone capture (PipeWire)", probe: func() Status { return lookPath("pw-record") }},
		{Name: "whisper-cli", Purpose: "local speech recognition", Optional: true, probe: CheckWhisperCli},
		{Name: "pdftotext", Purpose: "PDF resume extraction", Optional: true, probe: CheckPdftotext},
	}
}

func (t Tool) Check() Status { return t.probe() }

// CheckWhisperCli probes the whisper.cpp CLI used by the local capture
// backend.
func CheckWhisperCli() Status {
	status := lookPath("whisper-cli")
	if !status.Installed {
		return status
	}
	status.Version = firstLine(status.Path, "--version")
	return status
}

// CheckPdftotext probes the poppler tool used to read PDF resumes.
func CheckPdftotext() Status {
	status := lookPath("pdftotext")
	if !status.Installed {
		return status
	}
	// pdftotext prints its version banner on stderr
	cmd := exec.Command(status.Path, "-v")
	output, err := cmd.CombinedOutput()
	if err == nil || len(output) > 0 {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}
	return status
}

func lookPath(name string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}
	return Status{Installed: true, Path: path}
}

func firstLine(path string, arg string) string {
	output, err := exec.Command(path, arg).Output()
	if err != nil {
		return ""
	}
	lines := strings.Split(string(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ProgressFunc receives download progress in bytes.
type ProgressFunc func(downloaded, total int64)

// IsInstalled reports whether the model file exists and is non-empty.
func IsInstalled(modelID string) bool {
	path := Path(modelID)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// InstalledPath returns the path to an installed model.
func InstalledPath(modelID string) (string, error) {
	if !IsInstalled(modelID) {
		return "", fmt.Errorf("model not installed: %s", modelID)
	}
	return Path(modelID), nil
}

// Download fetches a model into the models directory. The progress callback
// may be nil. A partial download never replaces an existing file.
func Download(ctx context.Context, modelID string, onProgress ProgressFunc) error {
	info := Get(modelID)
	if info == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}

	dir, err := ModelsDir()
	if err != nil {
		return fmt.Errorf("failed to get models directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	destPath := Path(modelID)
	tempPath := destPath + ".downloading"

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tempPath)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DownloadURL(modelID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = info.SizeBytes
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("failed to write: %w", writeErr)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read: %w", err)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

// Remove deletes a downloaded model.
func Remove(modelID string) error {
	if Get(modelID) == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}
	if !IsInstalled(modelID) {
		return fmt.Errorf("model not installed: %s", modelID)
	}
	if err := os.Remove(Path(modelID)); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	return nil
}

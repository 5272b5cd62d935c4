// Package ffmpeg invokes the external ffmpeg tool to extract audio from
// downloaded videos.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Transcoder converts video files to MP3 via an ffmpeg subprocess.
type Transcoder struct {
	binary string
}

// New creates a Transcoder using the ffmpeg binary on PATH.
func New() *Transcoder {
	return &Transcoder{binary: "ffmpeg"}
}

// ToMP3 extracts the audio track of videoPath into a sibling .mp3 file
// (192 kbps, 44.1 kHz) and returns its path. No partial output is left
// behind on failure; the input file is untouched.
func (t *Transcoder) ToMP3(ctx context.Context, videoPath string) (string, error) {
	out := replaceExt(videoPath, ".mp3")

	cmd := exec.CommandContext(ctx, t.binary,
		"-i", videoPath,
		"-vn",
		"-ab", "192k",
		"-ar", "44100",
		"-y",
		out,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(out)
		msg := lastLine(output)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("ffmpeg failed: %s", msg)
	}

	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("ffmpeg produced no output file: %w", err)
	}
	return out, nil
}

// replaceExt swaps the file extension, appending if there is none.
func replaceExt(path, ext string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, "/") {
		return path[:i] + ext
	}
	return path + ext
}

// lastLine returns the last non-empty line of tool output.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

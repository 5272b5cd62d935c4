package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/meryload/loadbot/internal/artifact"
	"github.com/meryload/loadbot/internal/domain"
)

const (
	// Best muxed mp4, else best mp4 video + m4a audio merged, else whatever
	// yt-dlp considers best.
	youtubeVideoFormat = "best[ext=mp4]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best"
	youtubeAudioFormat = "bestaudio[ext=m4a]/bestaudio"
)

// YouTubeFetcher downloads videos using yt-dlp.
type YouTubeFetcher struct {
	store      *artifact.Store
	transcoder domain.Transcoder
	binary     string
}

// NewYouTubeFetcher creates a YouTube fetcher. The transcoder is used for
// audio-mode requests.
func NewYouTubeFetcher(store *artifact.Store, transcoder domain.Transcoder) *YouTubeFetcher {
	return &YouTubeFetcher{store: store, transcoder: transcoder, binary: "yt-dlp"}
}

// Name returns the fetcher name.
func (f *YouTubeFetcher) Name() string {
	return "youtube"
}

// Source returns the source this fetcher handles.
func (f *YouTubeFetcher) Source() domain.Source {
	return domain.SourceYouTube
}

// Fetch downloads the video, or in audio mode downloads the best audio
// stream and transcodes it to MP3.
func (f *YouTubeFetcher) Fetch(ctx context.Context, url string, wantAudio bool) (domain.Result, error) {
	if wantAudio {
		return f.fetchAudio(ctx, url)
	}
	return f.fetchVideo(ctx, url)
}

func (f *YouTubeFetcher) fetchVideo(ctx context.Context, url string) (domain.Result, error) {
	out := f.store.NewFile("mp4")
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", youtubeVideoFormat,
		"--merge-output-format", "mp4",
		"-o", out,
		url,
	}
	if err := f.run(ctx, out, args); err != nil {
		return nil, err
	}
	return domain.SingleVideo{Path: out}, nil
}

func (f *YouTubeFetcher) fetchAudio(ctx context.Context, url string) (domain.Result, error) {
	src := f.store.NewFile("m4a")
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", youtubeAudioFormat,
		"-o", src,
		url,
	}
	if err := f.run(ctx, src, args); err != nil {
		return nil, err
	}
	defer f.store.Remove(src)

	audio, err := f.transcoder.ToMP3(ctx, src)
	if err != nil {
		return nil, err
	}

	title, err := f.title(ctx, url)
	if err != nil {
		// The audio itself is fine; fall back to an untitled track.
		title = ""
	}
	return domain.Audio{Path: audio, Title: title}, nil
}

// title asks yt-dlp for the video title without downloading anything.
func (f *YouTubeFetcher) title(ctx context.Context, url string) (string, error) {
	cmd := exec.CommandContext(ctx, f.binary,
		"--no-playlist",
		"--no-warnings",
		"--skip-download",
		"--print", "%(title)s",
		url,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp title fetch: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// run executes yt-dlp and verifies the expected output file exists.
// Partial output is removed on failure.
func (f *YouTubeFetcher) run(ctx context.Context, out string, args []string) error {
	cmd := exec.CommandContext(ctx, f.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		f.store.Remove(out)
		return fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(output))
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("yt-dlp produced no output file: %w", err)
	}
	return nil
}

// lastLine returns the last non-empty line of tool output, which is where
// yt-dlp and ffmpeg put their actual diagnostic.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

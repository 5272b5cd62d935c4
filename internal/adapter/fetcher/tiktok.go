package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/meryload/loadbot/internal/artifact"
	"github.com/meryload/loadbot/internal/domain"
)

// DefaultTikTokAPI is the public tikwm extraction endpoint.
const DefaultTikTokAPI = "https://tikwm.com"

// tikwmResponse mirrors the fields of the tikwm API we care about. A post
// is either a single video (play/hdplay) or a photo carousel (images).
type tikwmResponse struct {
	Data *tikwmData `json:"data"`
}

type tikwmData struct {
	Title  string   `json:"title"`
	Play   string   `json:"play"`
	HDPlay string   `json:"hdplay"`
	Images []string `json:"images"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// TikTokFetcher downloads videos and photo carousels via the tikwm API.
type TikTokFetcher struct {
	store   *artifact.Store
	client  *http.Client
	apiBase string
}

// NewTikTokFetcher creates a TikTok fetcher. apiBase "" selects the
// public tikwm endpoint.
func NewTikTokFetcher(store *artifact.Store, apiBase string) *TikTokFetcher {
	if apiBase == "" {
		apiBase = DefaultTikTokAPI
	}
	return &TikTokFetcher{
		store:   store,
		client:  &http.Client{Timeout: 5 * time.Minute},
		apiBase: apiBase,
	}
}

// Name returns the fetcher name.
func (f *TikTokFetcher) Name() string {
	return "tiktok"
}

// Source returns the source this fetcher handles.
func (f *TikTokFetcher) Source() domain.Source {
	return domain.SourceTikTok
}

// Fetch resolves the post through the extraction API and downloads either
// the single video or every carousel image. wantAudio is ignored here:
// audio conversion happens downstream on the fetched video.
func (f *TikTokFetcher) Fetch(ctx context.Context, rawURL string, wantAudio bool) (domain.Result, error) {
	data, err := f.resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if len(data.Images) > 0 {
		return f.fetchCarousel(ctx, data.Images)
	}

	videoURL := data.HDPlay
	if videoURL == "" {
		videoURL = data.Play
	}
	if videoURL == "" {
		return nil, fmt.Errorf("tiktok: no video URL in API response")
	}

	out := f.store.NewFile("mp4")
	if err := downloadFile(ctx, f.client, videoURL, out); err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}
	return domain.SingleVideo{Path: out, Width: data.Width, Height: data.Height}, nil
}

// resolve calls the extraction API for the post metadata.
func (f *TikTokFetcher) resolve(ctx context.Context, rawURL string) (*tikwmData, error) {
	apiURL := fmt.Sprintf("%s/api/?url=%s", f.apiBase, url.QueryEscape(rawURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("tiktok: build API request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok: API call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiktok: API status %d", resp.StatusCode)
	}

	var parsed tikwmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tiktok: decode API response: %w", err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("tiktok: API response has no data")
	}
	return parsed.Data, nil
}

// fetchCarousel downloads every image into a fresh subdirectory, numbered
// slide_1.jpg, slide_2.jpg, ... in response order. Any failure removes
// the whole subdirectory.
func (f *TikTokFetcher) fetchCarousel(ctx context.Context, images []string) (domain.Result, error) {
	dir, err := f.store.NewDir()
	if err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}

	paths := make([]string, 0, len(images))
	for i, imgURL := range images {
		path := filepath.Join(dir, fmt.Sprintf("slide_%d.jpg", i+1))
		if err := downloadFile(ctx, f.client, imgURL, path); err != nil {
			f.store.Remove(dir)
			return nil, fmt.Errorf("tiktok: image %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return domain.PhotoSet{Paths: paths, Dir: dir}, nil
}

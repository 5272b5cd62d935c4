package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/meryload/loadbot/internal/artifact"
	"github.com/meryload/loadbot/internal/domain"
)

var shortcodePattern = regexp.MustCompile(`(reel|p)/([a-zA-Z0-9_-]+)`)

// instagramReel mirrors the reel-by-shortcode API response.
type instagramReel struct {
	VideoVersions []instagramVideoVersion `json:"video_versions"`
}

type instagramVideoVersion struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// InstagramFetcher downloads reels via a RapidAPI scraper keyed by the
// post shortcode.
type InstagramFetcher struct {
	store   *artifact.Store
	client  *http.Client
	apiBase string
	apiKey  string
	apiHost string
}

// NewInstagramFetcher creates an Instagram fetcher. apiBase is the scheme
// and host of the scraper API; apiKey/apiHost are the RapidAPI credential
// headers.
func NewInstagramFetcher(store *artifact.Store, apiBase, apiKey, apiHost string) *InstagramFetcher {
	return &InstagramFetcher{
		store:   store,
		client:  &http.Client{Timeout: 5 * time.Minute},
		apiBase: apiBase,
		apiKey:  apiKey,
		apiHost: apiHost,
	}
}

// Name returns the fetcher name.
func (f *InstagramFetcher) Name() string {
	return "instagram"
}

// Source returns the source this fetcher handles.
func (f *InstagramFetcher) Source() domain.Source {
	return domain.SourceInstagramReel
}

// Fetch extracts the shortcode, asks the API for the reel's variants and
// downloads the widest one. wantAudio is ignored here: audio conversion
// happens downstream on the fetched video.
func (f *InstagramFetcher) Fetch(ctx context.Context, rawURL string, wantAudio bool) (domain.Result, error) {
	shortcode, err := extractShortcode(rawURL)
	if err != nil {
		return nil, err
	}

	reel, err := f.lookup(ctx, shortcode)
	if err != nil {
		return nil, err
	}
	if len(reel.VideoVersions) == 0 {
		return nil, fmt.Errorf("instagram: no video variants in API response")
	}

	best := reel.VideoVersions[0]
	for _, v := range reel.VideoVersions[1:] {
		if v.Width > best.Width {
			best = v
		}
	}

	out := f.store.NewFile("mp4")
	if err := downloadFile(ctx, f.client, best.URL, out); err != nil {
		return nil, fmt.Errorf("instagram: %w", err)
	}
	return domain.SingleVideo{Path: out, Width: best.Width, Height: best.Height}, nil
}

func (f *InstagramFetcher) lookup(ctx context.Context, shortcode string) (*instagramReel, error) {
	apiURL := fmt.Sprintf("%s/reel_by_shortcode?shortcode=%s", f.apiBase, shortcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("instagram: build API request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", f.apiKey)
	req.Header.Set("x-rapidapi-host", f.apiHost)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram: API call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram: API status %d", resp.StatusCode)
	}

	var reel instagramReel
	if err := json.NewDecoder(resp.Body).Decode(&reel); err != nil {
		return nil, fmt.Errorf("instagram: decode API response: %w", err)
	}
	return &reel, nil
}

// extractShortcode pulls the shortcode out of the path segment following
// reel/ or p/.
func extractShortcode(rawURL string) (string, error) {
	m := shortcodePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("instagram: no shortcode in URL %q", rawURL)
	}
	return m[2], nil
}

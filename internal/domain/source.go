package domain

import "strings"

// Source identifies which platform a URL belongs to.
type Source int

const (
	SourceUnsupported Source = iota
	SourceYouTube
	SourceTikTok
	SourceInstagramReel
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceYouTube:
		return "youtube"
	case SourceTikTok:
		return "tiktok"
	case SourceInstagramReel:
		return "instagram"
	default:
		return "unsupported"
	}
}

// sourcePatterns lists domain fragments in match-priority order.
var sourcePatterns = []struct {
	fragment string
	source   Source
}{
	{"youtube.com", SourceYouTube},
	{"youtu.be", SourceYouTube},
	{"vm.tiktok.com", SourceTikTok},
	{"vt.tiktok.com", SourceTikTok},
	{"tiktok.com", SourceTikTok},
	{"instagram.com/reel/", SourceInstagramReel},
}

// Classify maps a raw URL string to its source. Matching is plain
// substring containment after trimming whitespace; first match wins.
// No scheme or query normalization is performed.
func Classify(raw string) Source {
	url := strings.TrimSpace(raw)
	if url == "" {
		return SourceUnsupported
	}
	for _, p := range sourcePatterns {
		if strings.Contains(url, p.fragment) {
			return p.source
		}
	}
	return SourceUnsupported
}

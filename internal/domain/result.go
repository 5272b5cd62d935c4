package domain

import "errors"

// ErrTokenNotFound means a follow-up token is unknown, expired or used.
var ErrTokenNotFound = errors.New("token not found")

// FetchRequest describes one media-fetch job.
type FetchRequest struct {
	RawURL    string
	Source    Source
	WantAudio bool
}

// Result is the outcome of a successful fetch: exactly one of the
// variants below. Every on-disk file a Result references is owned by the
// caller, which must delete it after use. Fetch failures are ordinary
// errors, not a Result variant.
type Result interface {
	// ArtifactPaths returns every local file or directory the result owns.
	ArtifactPaths() []string
}

// SingleVideo is a fetched video file.
type SingleVideo struct {
	Path   string
	Width  int
	Height int
}

// PhotoSet is an ordered photo carousel downloaded into one directory.
type PhotoSet struct {
	Paths []string
	Dir   string
}

// Audio is a fetched (and possibly transcoded) audio file.
type Audio struct {
	Path  string
	Title string
}

func (v SingleVideo) ArtifactPaths() []string { return []string{v.Path} }

// ArtifactPaths returns only the carousel directory; removing it removes
// every slide inside.
func (p PhotoSet) ArtifactPaths() []string { return []string{p.Dir} }

func (a Audio) ArtifactPaths() []string { return []string{a.Path} }

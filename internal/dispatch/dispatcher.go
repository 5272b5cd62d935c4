// Package dispatch orchestrates media-fetch jobs: classify, fetch off the
// update loop, reply, and always clean up artifacts.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/meryload/loadbot/internal/adapter/fetcher"
	"github.com/meryload/loadbot/internal/artifact"
	"github.com/meryload/loadbot/internal/domain"
	"github.com/meryload/loadbot/internal/token"
)

// ActionConvertAudio is the callback action kind for "convert to MP3".
const ActionConvertAudio = "audio"

// User-visible messages. Every terminal failure produces exactly one.
const (
	msgUnsupported   = "⚠️ This link is not supported. Send a YouTube, TikTok or Instagram reel link."
	msgDownloading   = "⏳ Downloading..."
	msgConverting    = "⏳ Converting to MP3..."
	msgTokenExpired  = "⚠️ This action is no longer available. Send the link again."
	msgNoAudioTrack  = "⚠️ Photo posts have no audio track to convert."
	msgDownloadError = "❌ Download failed: %s"
	msgConvertError  = "❌ Conversion failed: %s"
	msgUploadError   = "❌ Sending the file failed: %s"
)

// EncodeCallback builds a pipe-delimited callback payload.
func EncodeCallback(kind, tok string) string {
	return kind + "|" + tok
}

// ParseCallback splits a callback payload into action kind and token.
func ParseCallback(payload string) (kind, tok string, ok bool) {
	kind, tok, ok = strings.Cut(payload, "|")
	if !ok || kind == "" || tok == "" {
		return "", "", false
	}
	return kind, tok, true
}

// Dispatcher routes classified requests to fetch backends, offloading the
// blocking work to a bounded worker pool.
type Dispatcher struct {
	fetchers   *fetcher.Registry
	tokens     *token.Registry
	store      *artifact.Store
	transcoder domain.Transcoder
	transport  domain.Transport
	jobTimeout time.Duration

	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a dispatcher running at most workers concurrent jobs, each
// bounded by jobTimeout.
func New(
	fetchers *fetcher.Registry,
	tokens *token.Registry,
	store *artifact.Store,
	transcoder domain.Transcoder,
	transport domain.Transport,
	workers int,
	jobTimeout time.Duration,
) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		fetchers:   fetchers,
		tokens:     tokens,
		store:      store,
		transcoder: transcoder,
		transport:  transport,
		jobTimeout: jobTimeout,
		sem:        make(chan struct{}, workers),
	}
}

// HandleLink services an inbound URL message. Classification happens
// inline; the fetch runs on a worker slot so the caller's loop is never
// blocked by network or subprocess I/O.
func (d *Dispatcher) HandleLink(chatID int64, rawURL string) {
	source := domain.Classify(rawURL)
	if source == domain.SourceUnsupported {
		d.reply(chatID, msgUnsupported)
		return
	}

	req := domain.FetchRequest{RawURL: strings.TrimSpace(rawURL), Source: source}
	d.reply(chatID, msgDownloading)
	d.spawn(func() { d.runFetchJob(chatID, req) })
}

// HandleCallback services an inbound callback action payload.
func (d *Dispatcher) HandleCallback(chatID int64, payload string) {
	kind, tok, ok := ParseCallback(payload)
	if !ok || kind != ActionConvertAudio {
		log.Printf("dispatch: unknown callback payload %q", payload)
		d.reply(chatID, msgTokenExpired)
		return
	}

	url, err := d.tokens.Resolve(tok)
	if err != nil {
		d.reply(chatID, msgTokenExpired)
		return
	}

	d.reply(chatID, msgConverting)
	d.spawn(func() { d.runConvertJob(chatID, url) })
}

// Wait blocks until all in-flight jobs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// spawn runs fn on a worker slot.
func (d *Dispatcher) spawn(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		fn()
	}()
}

// runFetchJob performs one primary fetch-reply-cleanup sequence.
func (d *Dispatcher) runFetchJob(chatID int64, req domain.FetchRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	f := d.fetchers.For(req.Source)
	if f == nil {
		d.reply(chatID, msgUnsupported)
		return
	}

	result, err := f.Fetch(ctx, req.RawURL, req.WantAudio)
	if err != nil {
		log.Printf("dispatch: %s fetch failed for %s: %v", f.Name(), req.RawURL, err)
		d.reply(chatID, fmt.Sprintf(msgDownloadError, err))
		return
	}
	// Artifacts die with the job, whatever the upload outcome.
	defer d.store.RemoveAll(result.ArtifactPaths())

	switch r := result.(type) {
	case domain.SingleVideo:
		callbackData := ""
		if !req.WantAudio {
			callbackData = EncodeCallback(ActionConvertAudio, d.tokens.Issue(req.RawURL))
		}
		if err := d.transport.SendVideo(chatID, r.Path, "", callbackData); err != nil {
			log.Printf("dispatch: video upload failed: %v", err)
			d.reply(chatID, fmt.Sprintf(msgUploadError, err))
		}
	case domain.PhotoSet:
		if err := d.transport.SendPhotoSet(chatID, r.Paths, ""); err != nil {
			log.Printf("dispatch: photo upload failed: %v", err)
			d.reply(chatID, fmt.Sprintf(msgUploadError, err))
		}
	case domain.Audio:
		if err := d.transport.SendAudio(chatID, r.Path, r.Title); err != nil {
			log.Printf("dispatch: audio upload failed: %v", err)
			d.reply(chatID, fmt.Sprintf(msgUploadError, err))
		}
	default:
		log.Printf("dispatch: %s returned unknown result %T", f.Name(), result)
	}
}

// runConvertJob re-fetches a redeemed URL in audio mode, transcoding the
// video when the backend does not produce audio itself. Both the
// re-fetched video and the MP3 are deleted before the job returns.
func (d *Dispatcher) runConvertJob(chatID int64, rawURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	source := domain.Classify(rawURL)
	f := d.fetchers.For(source)
	if f == nil {
		d.reply(chatID, msgUnsupported)
		return
	}

	result, err := f.Fetch(ctx, rawURL, true)
	if err != nil {
		log.Printf("dispatch: %s re-fetch failed for %s: %v", f.Name(), rawURL, err)
		d.reply(chatID, fmt.Sprintf(msgDownloadError, err))
		return
	}
	defer d.store.RemoveAll(result.ArtifactPaths())

	var audio domain.Audio
	switch r := result.(type) {
	case domain.Audio:
		audio = r
	case domain.SingleVideo:
		mp3, err := d.transcoder.ToMP3(ctx, r.Path)
		if err != nil {
			log.Printf("dispatch: transcode failed for %s: %v", rawURL, err)
			d.reply(chatID, fmt.Sprintf(msgConvertError, err))
			return
		}
		defer d.store.Remove(mp3)
		audio = domain.Audio{Path: mp3}
	case domain.PhotoSet:
		d.reply(chatID, msgNoAudioTrack)
		return
	default:
		log.Printf("dispatch: %s returned unknown result %T", f.Name(), result)
		return
	}

	if err := d.transport.SendAudio(chatID, audio.Path, audio.Title); err != nil {
		log.Printf("dispatch: audio upload failed: %v", err)
		d.reply(chatID, fmt.Sprintf(msgUploadError, err))
	}
}

// reply sends a status message, logging instead of failing when the
// transport is down.
func (d *Dispatcher) reply(chatID int64, text string) {
	if err := d.transport.SendText(chatID, text); err != nil {
		log.Printf("dispatch: send message to %d: %v", chatID, err)
	}
}

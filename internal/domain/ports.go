package domain

import "context"

// Fetcher is the driven port for one media source.
type Fetcher interface {
	Name() string
	Source() Source
	// Fetch downloads the media behind url. The returned Result's files
	// belong to the caller.
	Fetch(ctx context.Context, url string, wantAudio bool) (Result, error)
}

// Transcoder converts a local video file to an MP3 file.
type Transcoder interface {
	// ToMP3 returns the audio path; the input file is left in place.
	ToMP3(ctx context.Context, videoPath string) (string, error)
}

// Transport is the outbound side of the chat platform.
type Transport interface {
	SendText(chatID int64, text string) error
	// SendVideo uploads a video; a non-empty callbackData attaches a
	// single "convert to MP3" button carrying that payload.
	SendVideo(chatID int64, path, caption, callbackData string) error
	SendPhotoSet(chatID int64, paths []string, caption string) error
	SendAudio(chatID int64, path, caption string) error
}

// User is a chat user known to the bot.
type User struct {
	UserID    int64
	FirstName string
	LastName  string
	ChatID    int64
}

// UserRepository is the driven port for the user registry.
type UserRepository interface {
	// EnsureUser inserts the user if absent and reports whether a new
	// row was created.
	EnsureUser(ctx context.Context, u User) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
}

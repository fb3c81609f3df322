package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPost       = "post"
	KeyPath       = "path"
	KeyStage      = "stage"
	KeyBuildID    = "build_id"
	KeyHash       = "hash"
	KeyCategory   = "category"
	KeyAuthor     = "author"
	KeyBranch     = "branch"
	KeyBucket     = "bucket"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Post(slug string) slog.Attr      { return slog.String(KeyPost, slug) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Hash(h string) slog.Attr         { return slog.String(KeyHash, h) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Author(a string) slog.Attr       { return slog.String(KeyAuthor, a) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Bucket(b string) slog.Attr       { return slog.String(KeyBucket, b) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

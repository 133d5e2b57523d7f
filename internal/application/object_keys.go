package application

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// Object key prefixes. Keys are <type>/<genre-or-category>/<unix-millis>-<filename>.
const (
	KindSongs  = "songs"
	KindImages = "images"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds the storage key for an uploaded file.
func ObjectKey(kind, category, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", kind, keySegment(category, "uncategorized"), now.UnixMilli(), keySegment(path.Base(filename), "file"))
}

func keySegment(s, fallback string) string {
	s = strings.Trim(unsafeKeyChars.ReplaceAllString(strings.TrimSpace(s), "-"), "-.")
	if s == "" {
		return fallback
	}
	return strings.ToLower(s)
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (u *Upload) checkType(prefix, field string) error {
	if u == nil {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(u.ContentType), prefix) {
		return validationErr("unsupported file type", map[string]string{field: "must be " + strings.TrimSuffix(prefix, "/") + " content"})
	}
	return nil
}

package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/pkg/response"
)

// parseMultipart caps the body at limit bytes and parses the form. It answers
// the request itself and returns false on failure.
func parseMultipart(c *gin.Context, limit int64) bool {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "upload too large", gin.H{"limit_bytes": tooLarge.Limit})
			return false
		}
		response.Error[any](c, http.StatusBadRequest, "invalid multipart form", nil)
		return false
	}
	return true
}

// formFile opens the named file part. A missing part yields a nil Upload.
// The returned closer must be called once the upload has been consumed.
func formFile(c *gin.Context, field string) (*application.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nopCloser{}, nil
	}
	if err != nil {
		return nil, nopCloser{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nopCloser{}, err
	}
	return &application.Upload{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}

// audio extensions missing from Go's builtin table on hosts without a mime.types file
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
}

func init() {
	for ext, typ := range audioTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// optionalForm returns a pointer to the form value when the field was sent.
func optionalForm(c *gin.Context, field string) *string {
	if v, ok := c.GetPostForm(field); ok {
		return &v
	}
	return nil
}

// optionalInt parses an optional integer form field. ok is false when the
// value is present but not a number.
func optionalInt(c *gin.Context, field string) (v *int, ok bool) {
	s := optionalForm(c, field)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil, false
	}
	return &n, true
}

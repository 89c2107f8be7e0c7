package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
)

// Validation failures surfaced to handlers.
var (
	ErrUnsupportedType = domainerrors.Validation("unsupported media type")
	ErrUploadTooLarge  = domainerrors.Validation("upload exceeds size limit")
)

// extContentTypes maps allowed upload extensions to the content type files
// are served with. Audio and video only; images travel as URLs.
var extContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
}

// classExtensions lists the upload extensions each media class accepts.
// ogg is a container for both classes.
var classExtensions = map[string]map[string]bool{
	"audio": {"mp3": true, "wav": true, "ogg": true, "m4a": true},
	"video": {"mp4": true, "webm": true, "ogg": true, "mov": true},
}

// AllowedExtension reports whether ext (without dot, lowercase) may be
// uploaded as the declared media class ("audio" or "video").
func AllowedExtension(class, ext string) bool {
	return classExtensions[class][ext]
}

// ContentTypeForFilename returns the serving content type for a stored file,
// or "" when the extension is not recognized.
func ContentTypeForFilename(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return ""
	}
	return extContentTypes[strings.ToLower(filename[idx+1:])]
}

// verifyContent sniffs the first bytes of a stored file and rejects it when
// the detected type is not in the serving allowlist, or when sniffing is
// conclusive and contradicts the declared media class.
func (s *Storage) verifyContent(path, ext, class string) error {
	f, err := os.Open(path) //#nosec G304 -- Path was built by Save
	if err != nil {
		return fmt.Errorf("reopen for sniffing: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("sniff media file: %w", err)
	}

	detected := http.DetectContentType(buf[:n])
	if !SniffAllowed(detected) {
		return ErrUnsupportedType
	}

	// m4a is an audio stream in an mp4 container and sniffs as video/mp4.
	if class == "audio" && ext == "m4a" && detected == "video/mp4" {
		return nil
	}
	if strings.HasPrefix(detected, "audio/") && class != "audio" {
		return ErrUnsupportedType
	}
	if strings.HasPrefix(detected, "video/") && class != "video" {
		return ErrUnsupportedType
	}
	return nil
}

// SniffAllowed reports whether a sniffed content type may be stored and
// served. Several audio containers detect as application/octet-stream, which
// is accepted once the extension already passed the allowlist.
func SniffAllowed(detected string) bool {
	switch {
	case strings.HasPrefix(detected, "audio/"),
		strings.HasPrefix(detected, "video/"),
		detected == "application/ogg",
		detected == "application/octet-stream":
		return true
	default:
		return false
	}
}

package request

import (
	"mime"
	"path/filepath"
)

// guessMIME guesses a MIME type by filename extension, defaulting to application/octet-stream.
// No third-party MIME-sniffing library appears anywhere in the example pack (the two places that
// guess a MIME type both reach for the standard library's mime package too), so this stays on
// the standard library rather than introducing an unneeded dependency.
func guessMIME(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}

	return "application/octet-stream"
}

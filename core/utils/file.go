package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// DownloadToFile fetches a URL and writes the body to dest. The caller bounds
// the operation through ctx.
func DownloadToFile(ctx context.Context, client *http.Client, rawURL, dest string) (contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed, status code: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

// ExtensionFromURL derives a file extension from the URL path, or "" when the
// path carries none.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if ext == "" || len(ext) > 6 {
		return ""
	}
	return strings.ToLower(ext)
}

// ExtensionFromContentType derives a file extension from a Content-Type
// header value, or "" when none is known.
func ExtensionFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/webm", "video/webm":
		return ".webm"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ""
}

// AudioExtensions are the file extensions the pipeline treats as audio.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
	".wav":  true,
	".webm": true,
}

// IsAudioFile reports whether a path looks like an audio file by extension.
func IsAudioFile(p string) bool {
	return AudioExtensions[strings.ToLower(path.Ext(p))]
}

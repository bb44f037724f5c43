package acquire

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"Bt1QDL/core/utils"
	"Bt1QDL/logger"
)

var watchURLRe = regexp.MustCompile(`https?://(?:www\.|music\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

// FindEmbeddedWatchURL scans resolver stdout for a streaming-platform URL so
// a thumbnail can be fetched as a side channel. Returns "" when none appears.
func FindEmbeddedWatchURL(stdout string) string {
	return watchURLRe.FindString(stdout)
}

// thumbnailURLFor maps a watch URL to its still-image thumbnail.
func thumbnailURLFor(watchURL string) string {
	m := watchURLRe.FindStringSubmatch(watchURL)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", m[1])
}

// fetchThumbnail downloads cover art into coverDir and returns the local
// path. Best effort: any failure returns "" and is only logged, it never
// fails the session.
func fetchThumbnail(ctx context.Context, client *http.Client, rawURL, coverDir string) string {
	if rawURL == "" {
		return ""
	}
	if thumb := thumbnailURLFor(rawURL); thumb != "" {
		rawURL = thumb
	}

	dest := filepath.Join(coverDir, uuid.New().String()+".jpg")
	contentType, err := utils.DownloadToFile(ctx, client, rawURL, dest)
	if err != nil {
		logger.Warn("thumbnail fetch failed",
			logger.String("url", rawURL),
			logger.ErrorField(err))
		Cleanup(dest)
		return ""
	}
	if ext := utils.ExtensionFromContentType(contentType); ext == ".png" {
		// Keep the real extension when the host serves PNG.
		renamed := dest[:len(dest)-len(".jpg")] + ext
		if err := os.Rename(dest, renamed); err == nil {
			dest = renamed
		}
	}
	return dest
}

package acquire

import (
	"time"
)

// Strategy is one entry in the download cascade: a named way of invoking the
// extraction executable. The cascade is read-only configuration, iterated in
// order until one entry succeeds.
type Strategy struct {
	Name string

	// RichMetadata marks strategies that also print a structured metadata
	// document to stdout. Only the first cascade entry does; a later entry
	// succeeding always falls through to post-hoc probing.
	RichMetadata bool

	Timeout time.Duration

	// BuildArgs produces the executable arguments for a cleaned source URL
	// and an output path template.
	BuildArgs func(url, outputTemplate string) []string
}

func ytdlpArgs(playerClient, userAgent string, rich bool, extra ...string) func(url, outputTemplate string) []string {
	return func(url, outputTemplate string) []string {
		args := []string{
			"-f", "bestaudio/best",
			"-x", "--audio-format", "mp3",
			"--no-playlist",
			"--no-warnings",
			"--retries", "3",
			"-o", outputTemplate,
		}
		if rich {
			args = append(args, "--print-json")
		}
		if playerClient != "" {
			args = append(args, "--extractor-args", "youtube:player_client="+playerClient)
		}
		if userAgent != "" {
			args = append(args, "--user-agent", userAgent)
		}
		args = append(args, extra...)
		args = append(args, url)
		return args
	}
}

// StreamingCascade builds the ordered strategy table for streaming-platform
// sources. The variants differ in the client identity they present upstream,
// to route around anti-automation blocking; the names and client choices
// follow the fallback downloader's internal list.
func StreamingCascade(attemptTimeout time.Duration) []Strategy {
	return []Strategy{
		{
			Name:         "Android Client",
			RichMetadata: true,
			Timeout:      attemptTimeout,
			BuildArgs: ytdlpArgs("android",
				"com.google.android.youtube/17.31.35 (Linux; U; Android 11) gzip", true),
		},
		{
			Name:    "iOS Client",
			Timeout: attemptTimeout,
			BuildArgs: ytdlpArgs("ios",
				"com.google.ios.youtube/17.33.2 (iPhone14,3; U; CPU iOS 15_6 like Mac OS X)", false),
		},
		{
			Name:      "TV Client",
			Timeout:   attemptTimeout,
			BuildArgs: ytdlpArgs("tv", "", false),
		},
		{
			Name:    "Web Client with Bypass",
			Timeout: attemptTimeout,
			BuildArgs: ytdlpArgs("web",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				false,
				"--extractor-args", "youtube:player_skip=configs,webpage"),
		},
		{
			Name:    "Android Music",
			Timeout: attemptTimeout,
			BuildArgs: ytdlpArgs("android_music",
				"com.google.android.apps.youtube.music/5.16.51 (Linux; U; Android 11) gzip", false),
		},
		{
			Name:      "TV Embedded",
			Timeout:   attemptTimeout,
			BuildArgs: ytdlpArgs("tv_embedded", "", false),
		},
		{
			Name:    "Age Gate Bypass",
			Timeout: attemptTimeout,
			BuildArgs: ytdlpArgs("android", "", false,
				"--extractor-args", "youtube:player_skip=dash,hls",
				"--age-limit", "99"),
		},
		{
			Name:    "Embed Bypass",
			Timeout: attemptTimeout,
			BuildArgs: ytdlpArgs("", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", false),
		},
	}
}

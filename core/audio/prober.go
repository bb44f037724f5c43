package audio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobeProber reads duration and embedded tags from audio files using
// ffprobe.
type FFprobeProber struct {
	ffmpegPath string
}

// NewFFprobeProber creates a prober. The ffprobe binary is resolved from the
// configured ffmpeg path.
func NewFFprobeProber(ffmpegPath string) *FFprobeProber {
	return &FFprobeProber{ffmpegPath: ffmpegPath}
}

func (p *FFprobeProber) probePath() string {
	return strings.Replace(p.ffmpegPath, "ffmpeg", "ffprobe", 1)
}

func (p *FFprobeProber) run(args []string) ([]byte, error) {
	cmd := exec.Command(p.probePath(), args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe execution failed: %w\nFFprobe Error: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

// ffprobeFormat is the subset of ffprobe -show_format output we read.
type ffprobeFormat struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Duration returns the duration of an audio file in seconds.
func (p *FFprobeProber) Duration(inputFile string) (float64, error) {
	out, err := p.run([]string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	})
	if err != nil {
		return 0, err
	}

	var probeData ffprobeFormat
	if err := json.Unmarshal(out, &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output for %s: %w", inputFile, err)
	}

	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output for %s", inputFile)
	}

	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string %q for %s: %w", probeData.Format.Duration, inputFile, err)
	}
	return duration, nil
}

// Tags returns the container-level tags of an audio file with keys lowered,
// so lookups are case-insensitive regardless of the tagging convention
// (TITLE/Title/title all collapse to one key).
func (p *FFprobeProber) Tags(inputFile string) (map[string]string, error) {
	out, err := p.run([]string{
		"-v", "error",
		"-show_entries", "format_tags",
		"-of", "json",
		inputFile,
	})
	if err != nil {
		return nil, err
	}

	var probeData ffprobeFormat
	if err := json.Unmarshal(out, &probeData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output for %s: %w", inputFile, err)
	}

	tags := make(map[string]string, len(probeData.Format.Tags))
	for k, v := range probeData.Format.Tags {
		tags[strings.ToLower(k)] = v
	}
	return tags, nil
}

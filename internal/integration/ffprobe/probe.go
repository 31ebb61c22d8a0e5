//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tonematch/internal/integration/binary"
)

// ErrNoAudioStream is returned when a container carries no audio.
var ErrNoAudioStream = errors.New("no audio stream")

// Result contains the subset of ffprobe output the loader relies on.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream of the probed container.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`           // flac
	CodecType     string `json:"codec_type"`           // audio
	SampleRate    string `json:"sample_rate,omitempty"` // 44100, as a string
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
	Duration      string `json:"duration,omitempty"` // seconds, as a string
}

// Format describes the container.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"` // e.g. "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   string `json:"duration,omitempty"`
}

// Rate returns the stream sample rate, or 0 when ffprobe did not report a usable one.
func (s Stream) Rate() int {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate < 0 {
		return 0
	}

	return rate
}

// FirstAudio returns the first audio stream with a usable rate and channel count.
func (r *Result) FirstAudio() (Stream, error) {
	for _, stream := range r.Streams {
		if stream.CodecType == "audio" && stream.Rate() > 0 && stream.Channels > 0 {
			return stream, nil
		}
	}

	return Stream{}, fmt.Errorf("%w: %s", ErrNoAudioStream, r.Format.Filename)
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}

// Parse decodes ffprobe JSON output.
func Parse(output []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

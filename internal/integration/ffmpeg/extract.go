package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tonematch/internal/integration/binary"
)

// ExtractStream decodes one audio stream of filePath to raw interleaved s32le PCM on output.
// Channel count and sample rate are the source's; callers learn them from ffprobe.
func ExtractStream(ctx context.Context, filePath string, output io.Writer, streamIndex int) error {
	slog.Debug("ffmpeg.ExtractStream", "file path", filePath, "stream index", streamIndex, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-nostdin",
		"-i", filePath,
		"-map", "0:"+strconv.Itoa(streamIndex),
		"-f", sampleFormat,
		"-acodec", codec,
		"-v", "quiet",
		"-",
	)

	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.ExtractStream", "file path", filePath, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.ExtractStream", "file path", filePath, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.ExtractStream", "file path", filePath, "stage", "done")

	return nil
}

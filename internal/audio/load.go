// Package audio turns files on disk into mono sample buffers ready for analysis.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wav"
	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tonematch/internal/integration/ffmpeg"
	"github.com/farcloser/tonematch/internal/integration/ffprobe"
	"github.com/farcloser/tonematch/internal/types"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrUnreadable        = errors.New("unreadable audio file")
)

// Load decodes path into a mono buffer at the file's native rate.
// WAV files are decoded natively; anything else goes through ffprobe and ffmpeg.
func Load(ctx context.Context, path string) (*types.AudioSamples, error) {
	slog.Debug("audio.Load", "file path", path, "stage", "start")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		samples, err := LoadWAV(path)
		if err == nil {
			return samples, nil
		}

		// WAV variants the native decoder rejects (extensible headers, float formats) may still decode through ffmpeg.
		if !errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}

		slog.Debug("audio.Load", "file path", path, "stage", "wav fallback", "error", err)
	}

	return loadExternal(ctx, path)
}

// LoadWAV decodes a WAV file without external tools.
func LoadWAV(path string) (*types.AudioSamples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedFormat, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s has no usable pcm format", ErrUnsupportedFormat, path)
	}

	channels := buf.Format.NumChannels
	interleaved := make([]float64, len(buf.Data))

	for i, v := range buf.Data {
		interleaved[i] = float64(v)
	}

	slog.Debug("audio.LoadWAV", "file path", path, "channels", channels, "sample rate", buf.Format.SampleRate)

	return &types.AudioSamples{
		Samples:    MonoMix(interleaved, channels),
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
	}, nil
}

func loadExternal(ctx context.Context, path string) (*types.AudioSamples, error) {
	probe, err := ffprobe.Probe(ctx, path)
	if err != nil {
		if errors.Is(err, fault.ErrMissingRequirements) || errors.Is(err, fault.ErrCommandFailure) {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, path, err)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	stream, err := probe.FirstAudio()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	var pcm bytes.Buffer
	if err = ffmpeg.ExtractStream(ctx, path, &pcm, stream.Index); err != nil {
		if errors.Is(err, fault.ErrMissingRequirements) {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, path, err)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	samples, err := DecodePCM32(&pcm, stream.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	slog.Debug("audio.Load", "file path", path, "stage", "done",
		"codec", stream.CodecName, "channels", stream.Channels, "sample rate", stream.Rate())

	return &types.AudioSamples{
		Samples:    samples,
		SampleRate: stream.Rate(),
		Channels:   stream.Channels,
	}, nil
}

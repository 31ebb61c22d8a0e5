package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var errChannels = errors.New("channel count must be positive")

const pcm32Scale = 1 << 31

// DecodePCM32 reads interleaved s32le PCM until EOF and returns the mono mix in [-1, 1).
// A trailing partial frame is discarded.
func DecodePCM32(r io.Reader, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", errChannels, channels)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	frameBytes := 4 * channels
	frames := len(raw) / frameBytes
	interleaved := make([]float64, frames*channels)

	for i := range interleaved {
		interleaved[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:]))) / pcm32Scale
	}

	return MonoMix(interleaved, channels), nil
}

// MonoMix averages interleaved channels into one. A trailing partial frame is discarded.
func MonoMix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)

		return out
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)

	for i := range frames {
		var sum float64
		for c := range channels {
			sum += interleaved[i*channels+c]
		}

		out[i] = sum / float64(channels)
	}

	return out
}

package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding a full album-length file through a slow codec takes a while.
	timeout = 5 * time.Minute
	// Samples come out as interleaved signed 32-bit little-endian, whatever the source depth.
	sampleFormat = "s32le"
	codec        = "pcm_s32le"
)

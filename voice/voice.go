// Package voice multiplexes a small number of hardware playback voices
// across many short sound effects.
package voice

import (
	"context"
	"io"
)

// Format describes raw PCM data. Two formats can share a voice without
// reconfiguring it only when they are equal.
type Format struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// Device opens playback voices on an audio backend.
type Device interface {
	// Open allocates a voice. buffers is a hint for how many queued
	// buffers the voice should be able to hold.
	Open(buffers int) (Voice, error)
}

// Voice is a single playback unit owned by whoever opened it.
type Voice interface {
	// Format reports the format last applied with SetFormat.
	Format() (Format, bool)
	SetFormat(f Format) error
	// SetVolume takes a linear volume in [0, 1].
	SetVolume(v float64)
	// PlayData submits a PCM buffer in the current format and returns
	// without waiting for playback.
	PlayData(data []byte) error
	// PlayStream plays 16-bit stereo PCM at the device rate until the
	// stream ends or ctx is done.
	PlayStream(ctx context.Context, pcm io.Reader) error
	IsFinished() bool
	Close() error
}

// Package voicetest provides an in-memory voice.Device for tests.
package voicetest

import (
	"context"
	"errors"
	"io"
	"sync"

	"blocksound/voice"
)

// Device records every voice it opens.
type Device struct {
	mu      sync.Mutex
	voices  []*Voice
	OpenErr error

	// StreamHook, when set, replaces the default PlayStream behaviour of
	// voices opened afterwards.
	StreamHook func(ctx context.Context, pcm io.Reader) error
}

func (d *Device) Open(buffers int) (voice.Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	v := &Voice{Buffers: buffers, streamHook: d.StreamHook}
	d.voices = append(d.voices, v)
	return v, nil
}

// Voices returns the voices opened so far, in order.
func (d *Device) Voices() []*Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Voice(nil), d.voices...)
}

// Voice is a fake voice. A voice keeps "playing" after PlayData until
// Finish is called.
type Voice struct {
	Buffers int

	mu         sync.Mutex
	format     voice.Format
	hasFormat  bool
	volume     float64
	playing    bool
	closed     bool
	plays      [][]byte
	streams    int
	streamHook func(ctx context.Context, pcm io.Reader) error
}

func (v *Voice) Format() (voice.Format, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.format, v.hasFormat
}

func (v *Voice) SetFormat(f voice.Format) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.format = f
	v.hasFormat = true
	return nil
}

func (v *Voice) SetVolume(vol float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = vol
}

func (v *Voice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *Voice) PlayData(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return errors.New("voicetest: play on closed voice")
	}
	v.plays = append(v.plays, data)
	v.playing = true
	return nil
}

func (v *Voice) PlayStream(ctx context.Context, pcm io.Reader) error {
	v.mu.Lock()
	v.streams++
	hook := v.streamHook
	v.mu.Unlock()
	if hook != nil {
		return hook(ctx, pcm)
	}
	_, err := io.Copy(io.Discard, pcm)
	return err
}

// Finish marks the current buffer as done playing.
func (v *Voice) Finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
}

func (v *Voice) IsFinished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.playing
}

func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		return errors.New("voicetest: close while playing")
	}
	v.closed = true
	return nil
}

func (v *Voice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Plays returns the buffers submitted with PlayData.
func (v *Voice) Plays() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([][]byte(nil), v.plays...)
}

// Streams returns how many times PlayStream was called.
func (v *Voice) Streams() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.streams
}

package music_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"blocksound/music"
	"blocksound/voice/voicetest"
)

type fakeDecoder struct {
	calls atomic.Int32
	err   error
}

func (d *fakeDecoder) Decode(src io.ReadSeeker) (io.Reader, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func tracksFS() (fstest.MapFS, []string) {
	fsys := fstest.MapFS{
		"calm1.ogg":      {Data: []byte("one")},
		"hal2.OGG":       {Data: []byte("two")},
		"dig_grass1.wav": {Data: []byte("wav")},
	}
	return fsys, []string{"calm1.ogg", "dig_grass1.wav", "hal2.OGG"}
}

func TestTracks(t *testing.T) {
	_, names := tracksFS()
	require.Equal(t, []string{"calm1.ogg", "hal2.OGG"}, music.Tracks(names))

	var many []string
	for i := 0; i < music.MaxTracks+20; i++ {
		many = append(many, fmt.Sprintf("t%d.ogg", i))
	}
	require.Len(t, music.Tracks(many), music.MaxTracks)
}

func TestStopWhenNeverStarted(t *testing.T) {
	s := music.New(music.Config{Device: &voicetest.Device{}})
	s.Stop()
	s.Stop()
	require.Equal(t, music.Stopped, s.State())
}

func TestStartWithoutTracks(t *testing.T) {
	dev := &voicetest.Device{}
	s := music.New(music.Config{
		FS:      fstest.MapFS{},
		Names:   []string{"dig_grass1.wav"},
		Device:  dev,
		Decoder: &fakeDecoder{},
	})

	require.NoError(t, s.Start(1))
	require.Equal(t, music.Stopped, s.State())
	require.Empty(t, dev.Voices())
	s.Stop()
}

func TestStartOpenFailure(t *testing.T) {
	fsys, names := tracksFS()
	s := music.New(music.Config{
		FS:      fsys,
		Names:   names,
		Device:  &voicetest.Device{OpenErr: errors.New("busy")},
		Decoder: &fakeDecoder{},
	})
	require.Error(t, s.Start(1))
	require.Equal(t, music.Stopped, s.State())
}

func TestStopInterruptsPause(t *testing.T) {
	fsys, names := tracksFS()
	dev := &voicetest.Device{}
	s := music.New(music.Config{
		FS:       fsys,
		Names:    names,
		Device:   dev,
		Decoder:  &fakeDecoder{},
		MinDelay: time.Hour,
		MaxDelay: 2 * time.Hour,
	})

	require.NoError(t, s.Start(0.5))
	require.Equal(t, music.Looping, s.State())
	require.Len(t, dev.Voices(), 1)
	out := dev.Voices()[0]
	require.Equal(t, music.MaxChunks, out.Buffers)
	require.Eventually(t, func() bool { return out.Streams() == 1 }, time.Second, time.Millisecond)

	start := time.Now()
	s.Stop()
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, music.Stopped, s.State())
	require.True(t, out.Closed())
	require.Equal(t, 1, out.Streams())
}

func TestStopInterruptsPlayback(t *testing.T) {
	fsys, names := tracksFS()
	playing := make(chan struct{}, 1)
	dev := &voicetest.Device{StreamHook: func(ctx context.Context, _ io.Reader) error {
		playing <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}}
	s := music.New(music.Config{FS: fsys, Names: names, Device: dev, Decoder: &fakeDecoder{}})

	require.NoError(t, s.Start(1))
	select {
	case <-playing:
	case <-time.After(time.Second):
		t.Fatal("track never started")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked on playback")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	fsys, names := tracksFS()
	dev := &voicetest.Device{}
	s := music.New(music.Config{FS: fsys, Names: names, Device: dev, Decoder: &fakeDecoder{}, MinDelay: time.Hour})
	defer s.Stop()

	require.NoError(t, s.Start(0.25))
	require.Len(t, dev.Voices(), 1)
	out := dev.Voices()[0]
	require.Eventually(t, func() bool { return out.Streams() == 1 }, time.Second, time.Millisecond)
	require.InDelta(t, 0.25, out.Volume(), 1e-9)

	require.NoError(t, s.Start(0.75))
	require.Len(t, dev.Voices(), 1)
	require.Equal(t, 1, out.Streams())
	require.InDelta(t, 0.75, out.Volume(), 1e-9)
}

func TestRestartAfterStop(t *testing.T) {
	fsys, names := tracksFS()
	dev := &voicetest.Device{}
	s := music.New(music.Config{FS: fsys, Names: names, Device: dev, Decoder: &fakeDecoder{}, MinDelay: time.Hour})

	require.NoError(t, s.Start(1))
	s.Stop()
	require.NoError(t, s.Start(1))
	defer s.Stop()

	require.Len(t, dev.Voices(), 2)
	require.True(t, dev.Voices()[0].Closed())
	require.Equal(t, music.Looping, s.State())
}

func TestDecodeErrorsKeepLooping(t *testing.T) {
	fsys, names := tracksFS()
	dec := &fakeDecoder{err: errors.New("corrupt stream")}
	dev := &voicetest.Device{}
	s := music.New(music.Config{
		FS:       fsys,
		Names:    names,
		Device:   dev,
		Decoder:  dec,
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
	})

	require.NoError(t, s.Start(1))
	require.Eventually(t, func() bool { return dec.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	require.Equal(t, music.Looping, s.State())
	s.Stop()
	require.Zero(t, dev.Voices()[0].Streams())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "stop requested", music.StopRequested.String())
	require.Equal(t, "state(9)", music.State(9).String())
}

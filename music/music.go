// Package music plays randomly chosen background tracks with a long random
// pause between them, on a goroutine of its own.
package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hako/durafmt"

	"blocksound/voice"
)

const (
	TrackExt  = ".ogg"
	MaxTracks = 512
	// MaxChunks is the buffer hint used when opening the music voice.
	MaxChunks = 40

	DefaultMinDelay = 2 * time.Minute
	DefaultMaxDelay = 7 * time.Minute
)

// State is the scheduler's lifecycle position.
type State int32

const (
	Stopped State = iota
	Starting
	Looping
	StopRequested
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Looping:
		return "looping"
	case StopRequested:
		return "stop requested"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Decoder turns a compressed track into 16-bit stereo PCM at the device
// rate.
type Decoder interface {
	Decode(src io.ReadSeeker) (io.Reader, error)
}

type Config struct {
	FS      fs.FS
	Names   []string
	Device  voice.Device
	Decoder Decoder

	// MinDelay and MaxDelay bound the pause after each track. Zero values
	// select the defaults.
	MinDelay time.Duration
	MaxDelay time.Duration
	Seed     uint64
}

// Scheduler owns the music goroutine and its voice. Start, SetVolume and
// Stop are called from one goroutine; the loop only shares the stop flag,
// the cancel signal and the volume with it.
type Scheduler struct {
	cfg Config

	state  atomic.Int32
	stop   atomic.Bool
	volume atomic.Uint64 // math.Float64bits

	out    voice.Voice
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config) *Scheduler {
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = DefaultMinDelay
	}
	if cfg.MaxDelay <= cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay + (DefaultMaxDelay - DefaultMinDelay)
	}
	return &Scheduler{cfg: cfg}
}

// State reports where the scheduler is in its lifecycle.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Tracks filters names down to music tracks, keeping at most MaxTracks.
func Tracks(names []string) []string {
	var tracks []string
	for _, n := range names {
		if len(tracks) == MaxTracks {
			break
		}
		if len(n) >= len(TrackExt) && strings.EqualFold(n[len(n)-len(TrackExt):], TrackExt) {
			tracks = append(tracks, n)
		}
	}
	return tracks
}

// Start begins the loop at the given volume. If the loop is already
// running only the volume changes. With no tracks available Start leaves
// the scheduler stopped and returns nil.
func (s *Scheduler) Start(volume float64) error {
	if s.out != nil {
		s.SetVolume(volume)
		return nil
	}

	s.state.Store(int32(Starting))
	tracks := Tracks(s.cfg.Names)
	if len(tracks) == 0 {
		log.Printf("music: no %s tracks, music disabled", TrackExt)
		s.state.Store(int32(Stopped))
		return nil
	}
	out, err := s.cfg.Device.Open(MaxChunks)
	if err != nil {
		s.state.Store(int32(Stopped))
		return fmt.Errorf("music: open voice: %w", err)
	}

	s.out = out
	s.stop.Store(false)
	s.SetVolume(volume)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state.Store(int32(Looping))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, tracks)
	}()
	return nil
}

// SetVolume changes the music volume, including for a track already
// playing.
func (s *Scheduler) SetVolume(v float64) {
	s.volume.Store(math.Float64bits(v))
	if s.out != nil {
		s.out.SetVolume(v)
	}
}

// Stop ends the loop and waits for it to exit, then releases the voice. A
// pending pause is cut short. Stop is a no-op when not started.
func (s *Scheduler) Stop() {
	if s.out == nil {
		return
	}
	s.state.Store(int32(StopRequested))
	s.stop.Store(true)
	s.cancel()
	s.wg.Wait()

	if err := s.out.Close(); err != nil {
		log.Printf("music: close voice: %v", err)
	}
	s.out = nil
	s.cancel = nil
	s.state.Store(int32(Stopped))
}

func (s *Scheduler) run(ctx context.Context, tracks []string) {
	rng := rand.New(rand.NewPCG(s.cfg.Seed, uint64(time.Now().UnixNano())))
	span := int64(s.cfg.MaxDelay - s.cfg.MinDelay)

	for !s.stop.Load() {
		name := tracks[rng.IntN(len(tracks))]
		if err := s.play(ctx, name); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("music: %s: %v", name, err)
		}
		if s.stop.Load() {
			break
		}

		delay := s.cfg.MinDelay + time.Duration(rng.Int64N(span))
		log.Printf("music: next track in %s", durafmt.Parse(delay).LimitFirstN(2))
		if !wait(ctx, delay) {
			break
		}
	}
}

func (s *Scheduler) play(ctx context.Context, name string) error {
	f, err := s.cfg.FS.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	src, ok := f.(io.ReadSeeker)
	if !ok {
		return fmt.Errorf("track is not seekable")
	}
	pcm, err := s.cfg.Decoder.Decode(src)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	log.Printf("music: playing %s", name)
	s.out.SetVolume(math.Float64frombits(s.volume.Load()))
	return s.out.PlayStream(ctx, pcm)
}

// wait sleeps for d and reports false if ctx was cancelled first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

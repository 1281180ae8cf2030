package voice

import (
	"log"
	"time"

	"golang.org/x/time/rate"
)

const (
	// PoolSize is the number of voices kept per channel layout.
	PoolSize = 6

	drainPoll = time.Millisecond
)

// slot is either empty or holds a voice owned by its pool.
type slot struct {
	v Voice
}

func (s slot) empty() bool { return s.v == nil }

// Pool is a fixed set of voices for one channel layout. It is not safe for
// concurrent use; all calls are expected from the goroutine dispatching
// sound effects.
type Pool struct {
	dev      Device
	channels uint16
	slots    [PoolSize]slot
}

// NewPool returns an empty pool for sounds with the given channel count.
func NewPool(dev Device, channels uint16) *Pool {
	return &Pool{dev: dev, channels: channels}
}

// Play submits data on a finished voice and reports whether it did. A voice
// already configured for f is preferred; failing that, any finished voice
// is reconfigured. When every voice is busy the sound is dropped.
func (p *Pool) Play(data []byte, f Format, volume float64) bool {
	for i := range p.slots {
		s := &p.slots[i]
		if s.empty() {
			v, err := p.dev.Open(1)
			if err != nil {
				log.Printf("voice: open %d channel voice: %v", p.channels, err)
				continue
			}
			s.v = v
		}
		if !s.v.IsFinished() {
			continue
		}
		cur, ok := s.v.Format()
		if !ok || cur == f {
			submit(s.v, data, f, volume)
			return true
		}
	}

	// every idle voice has another format; take the first and reformat it
	for i := range p.slots {
		s := &p.slots[i]
		if s.empty() || !s.v.IsFinished() {
			continue
		}
		submit(s.v, data, f, volume)
		return true
	}
	return false
}

func submit(v Voice, data []byte, f Format, volume float64) {
	v.SetVolume(volume)
	if err := v.SetFormat(f); err != nil {
		log.Printf("voice: set format %+v: %v", f, err)
		return
	}
	if err := v.PlayData(data); err != nil {
		log.Printf("voice: play %d bytes: %v", len(data), err)
	}
}

// Active returns how many slots hold a voice.
func (p *Pool) Active() int {
	n := 0
	for _, s := range p.slots {
		if !s.empty() {
			n++
		}
	}
	return n
}

// Drain waits for every voice to finish, then closes them all and leaves
// the pool empty.
func (p *Pool) Drain() {
	for p.anyPlaying() {
		time.Sleep(drainPoll)
	}
	for i := range p.slots {
		s := &p.slots[i]
		if s.empty() {
			continue
		}
		if err := s.v.Close(); err != nil {
			log.Printf("voice: close: %v", err)
		}
		s.v = nil
	}
}

func (p *Pool) anyPlaying() bool {
	for _, s := range p.slots {
		if !s.empty() && !s.v.IsFinished() {
			return true
		}
	}
	return false
}

// Pools routes sounds to the mono or stereo pool by channel count.
type Pools struct {
	mono   *Pool
	stereo *Pool

	unsupported *rate.Limiter
}

// NewPools returns empty mono and stereo pools on dev.
func NewPools(dev Device) *Pools {
	return &Pools{
		mono:        NewPool(dev, 1),
		stereo:      NewPool(dev, 2),
		unsupported: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// Play picks the pool for f.Channels and plays data on it. Formats with
// other channel counts are dropped.
func (ps *Pools) Play(data []byte, f Format, volume float64) bool {
	var p *Pool
	switch f.Channels {
	case 1:
		p = ps.mono
	case 2:
		p = ps.stereo
	default:
		if ps.unsupported.Allow() {
			log.Printf("voice: dropping sound with %d channels", f.Channels)
		}
		return false
	}
	return p.Play(data, f, volume)
}

// Mono returns the single channel pool.
func (ps *Pools) Mono() *Pool { return ps.mono }

// Stereo returns the two channel pool.
func (ps *Pools) Stereo() *Pool { return ps.stereo }

// Drain drains both pools.
func (ps *Pools) Drain() {
	ps.mono.Drain()
	ps.stereo.Drain()
}

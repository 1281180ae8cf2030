package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const streamPoll = 50 * time.Millisecond

// EbitenDevice opens voices on an ebiten audio context. The context mixes
// at a single rate, so every buffer is converted to 16-bit stereo and
// resampled from its declared rate on submission.
type EbitenDevice struct {
	ctx *audio.Context
}

// NewEbitenDevice wraps ctx. Ebiten allows one context per process.
func NewEbitenDevice(ctx *audio.Context) *EbitenDevice {
	return &EbitenDevice{ctx: ctx}
}

// Open returns an idle voice. The buffer hint is ignored; ebiten players
// manage their own queue.
func (d *EbitenDevice) Open(int) (Voice, error) {
	if d.ctx == nil {
		return nil, fmt.Errorf("voice: no audio context")
	}
	return &ebitenVoice{ctx: d.ctx, volume: 1}, nil
}

type ebitenVoice struct {
	ctx *audio.Context

	mu        sync.Mutex
	player    *audio.Player
	format    Format
	hasFormat bool
	volume    float64
}

func (v *ebitenVoice) Format() (Format, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.format, v.hasFormat
}

func (v *ebitenVoice) SetFormat(f Format) error {
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return fmt.Errorf("unsupported sample size %d", f.BitsPerSample)
	}
	if f.SampleRate == 0 {
		return fmt.Errorf("zero sample rate")
	}
	v.mu.Lock()
	v.format = f
	v.hasFormat = true
	v.mu.Unlock()
	return nil
}

func (v *ebitenVoice) SetVolume(vol float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = vol
	if v.player != nil {
		v.player.SetVolume(vol)
	}
}

func (v *ebitenVoice) PlayData(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hasFormat {
		return fmt.Errorf("voice has no format")
	}

	pcm := toStereo16(data, v.format)
	src := audio.Resample(bytes.NewReader(pcm), int64(len(pcm)), int(v.format.SampleRate), v.ctx.SampleRate())
	p, err := v.ctx.NewPlayer(src)
	if err != nil {
		return err
	}
	v.replace(p)
	return nil
}

func (v *ebitenVoice) PlayStream(ctx context.Context, pcm io.Reader) error {
	p, err := v.ctx.NewPlayer(pcm)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.replace(p)
	v.mu.Unlock()

	t := time.NewTicker(streamPoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			v.stop(p)
			return ctx.Err()
		case <-t.C:
			if !p.IsPlaying() {
				v.stop(p)
				return nil
			}
		}
	}
}

// replace swaps in p as the voice's player. Callers hold v.mu.
func (v *ebitenVoice) replace(p *audio.Player) {
	if v.player != nil {
		v.player.Close()
	}
	v.player = p
	p.SetVolume(v.volume)
	p.Play()
}

func (v *ebitenVoice) stop(p *audio.Player) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.player == p {
		v.player = nil
	}
	p.Close()
}

func (v *ebitenVoice) IsFinished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.player == nil || !v.player.IsPlaying()
}

func (v *ebitenVoice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.player == nil {
		return nil
	}
	err := v.player.Close()
	v.player = nil
	return err
}

// toStereo16 converts 8-bit unsigned or 16-bit signed little endian PCM,
// mono or stereo, to the 16-bit stereo layout ebiten players read.
func toStereo16(data []byte, f Format) []byte {
	bytesPer := int(f.BitsPerSample) / 8
	frameSize := bytesPer * int(f.Channels)
	frames := len(data) / frameSize
	out := make([]byte, frames*4)

	sample := func(off int) int16 {
		if bytesPer == 1 {
			return u8ToS16(data[off])
		}
		return int16(binary.LittleEndian.Uint16(data[off:]))
	}
	for i := 0; i < frames; i++ {
		off := i * frameSize
		l := sample(off)
		r := l
		if f.Channels == 2 {
			r = sample(off + bytesPer)
		}
		binary.LittleEndian.PutUint16(out[4*i:], uint16(l))
		binary.LittleEndian.PutUint16(out[4*i+2:], uint16(r))
	}
	return out
}

// u8 PCM (0..255) -> s16 PCM (-32768..32767)
func u8ToS16(b byte) int16 {
	v := int32(b)*257 - 32768
	if v > math.MaxInt16 {
		v = math.MaxInt16
	} else if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

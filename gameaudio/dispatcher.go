package gameaudio

import (
	"blocksound/sndboard"
	"blocksound/voice"
)

// Dispatcher plays sound effects from a board on the voice pools.
type Dispatcher struct {
	Pools *voice.Pools
	// Volume is the effects volume, 0-100.
	Volume int
}

// Play picks a clip of type t from board and submits it. It reports whether
// the clip reached a voice; missing clips, a zero volume and busy pools all
// quietly drop the sound.
func (d *Dispatcher) Play(t sndboard.Type, board *sndboard.Board) bool {
	if t == sndboard.None || d.Volume == 0 || board == nil {
		return false
	}
	snd := board.PickRandom(t)
	if snd == nil {
		return false
	}
	f, vol := transform(board.Kind, t, snd.Format, float64(d.Volume)/100)
	return d.Pools.Play(snd.Data, f, vol)
}

// transform pitches and attenuates a clip for where it is heard. f is a
// copy; the board's clip keeps its own format.
func transform(kind sndboard.Kind, t sndboard.Type, f voice.Format, volume float64) (voice.Format, float64) {
	switch kind {
	case sndboard.Dig:
		if t == sndboard.Metal {
			f.SampleRate = f.SampleRate * 6 / 5
		} else {
			f.SampleRate = f.SampleRate * 4 / 5
		}
	case sndboard.Step:
		volume *= 0.5
		if t == sndboard.Metal {
			f.SampleRate = f.SampleRate * 7 / 5
		}
	}
	return f, volume
}

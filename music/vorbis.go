package music

import (
	"io"

	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
)

// VorbisDecoder decodes Ogg Vorbis tracks, resampling to SampleRate.
type VorbisDecoder struct {
	SampleRate int
}

func (d VorbisDecoder) Decode(src io.ReadSeeker) (io.Reader, error) {
	s, err := vorbis.DecodeWithSampleRate(d.SampleRate, src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

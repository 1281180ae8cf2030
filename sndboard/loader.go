package sndboard

import (
	"io/fs"
	"log"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	"blocksound/voice"
	"blocksound/wavfile"
)

// SoundExt is the extension of loadable clips.
const SoundExt = ".wav"

type clip struct {
	file  string
	group string
}

// GroupKey maps an asset name such as "dig_grass1.wav" to its group name
// ("grass") for the given prefix. The last character before the extension
// is the variant suffix and is dropped.
func GroupKey(name, prefix string) (string, bool) {
	if len(name) < len(SoundExt) || !strings.EqualFold(name[len(name)-len(SoundExt):], SoundExt) {
		return "", false
	}
	base := name[:len(name)-len(SoundExt)]
	if len(base) < len(prefix) || !strings.EqualFold(base[:len(prefix)], prefix) {
		return "", false
	}
	rest := base[len(prefix):]
	_, size := utf8.DecodeLastRuneInString(rest)
	key := rest[:len(rest)-size]
	if key == "" {
		return "", false
	}
	return key, true
}

// Build creates the board for kind from the WAV assets among names. Every
// matching asset is decoded; any decode failure or capacity overflow is
// returned and leaves no board.
func Build(fsys fs.FS, names []string, kind Kind, seed uint64) (*Board, error) {
	b := NewBoard(kind, seed)

	// check capacities before paying for any decoding
	plan := NewBoard(kind, seed)
	var clips []clip
	for _, name := range names {
		key, ok := GroupKey(name, kind.Prefix())
		if !ok {
			continue
		}
		if err := plan.Add(key, nil); err != nil {
			return nil, err
		}
		clips = append(clips, clip{file: name, group: key})
	}

	sounds := make([]*Sound, len(clips))
	errs := make([]error, len(clips))
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for i, c := range clips {
		wg.Add()
		go func(i int, file string) {
			defer wg.Done()
			w, err := wavfile.DecodeFile(fsys, file)
			if err != nil {
				errs[i] = err
				return
			}
			sounds[i] = &Sound{
				Format: voice.Format{Channels: w.Channels, SampleRate: w.SampleRate, BitsPerSample: w.Bits},
				Data:   w.Data,
			}
		}(i, c.file)
	}
	wg.Wait()

	for i, c := range clips {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if err := b.Add(c.group, sounds[i]); err != nil {
			return nil, err
		}
	}

	st := b.Stats()
	log.Printf("sndboard: %s board: %d groups, %d sounds, %s", kind, st.Groups, st.Sounds, humanize.Bytes(uint64(st.Bytes)))
	return b, nil
}

// Package gameaudio ties sound effects and music to the game: it loads the
// soundboards, keeps the volumes and plays block sounds as blocks change.
package gameaudio

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"blocksound/music"
	"blocksound/sndboard"
	"blocksound/voice"
)

type Config struct {
	// FS holds the audio assets in a single flat directory. A nil FS or a
	// missing directory means no assets.
	FS      fs.FS
	Device  voice.Device
	Decoder music.Decoder
	Options Options
	// Events is optional; without it no block sounds play on their own.
	Events BlockEvents
	// Blocks defaults to ClassicBlockSounds.
	Blocks BlockSounds
	// ClassicMode silences step sounds when blocks are placed.
	ClassicMode bool
	Seed        uint64

	MusicMinDelay time.Duration
	MusicMaxDelay time.Duration
}

// Manager owns the audio state of a game session. Apart from the music
// goroutine it owns, everything runs on the caller's goroutine; calls must
// not overlap.
type Manager struct {
	cfg   Config
	names []string

	dig, step *sndboard.Board
	pools     *voice.Pools
	effects   Dispatcher
	music     *music.Scheduler

	musicVolume int
	unsubscribe func()
	ready       bool
}

func New(cfg Config) *Manager {
	if cfg.Blocks == nil {
		cfg.Blocks = ClassicBlockSounds
	}
	m := &Manager{cfg: cfg, pools: voice.NewPools(cfg.Device)}
	m.effects.Pools = m.pools
	return m
}

// Init enumerates the assets, applies the stored volumes and starts
// listening for block changes. Broken sound assets fail Init.
func (m *Manager) Init() error {
	names, err := listAssets(m.cfg.FS)
	if err != nil {
		return err
	}
	m.names = names
	m.ready = true
	m.music = music.New(music.Config{
		FS:       m.cfg.FS,
		Names:    names,
		Device:   m.cfg.Device,
		Decoder:  m.cfg.Decoder,
		MinDelay: m.cfg.MusicMinDelay,
		MaxDelay: m.cfg.MusicMaxDelay,
		Seed:     m.cfg.Seed,
	})

	if err := m.applyMusic(ReadVolume(m.cfg.Options, MusicVolumeKey, UseMusicKey)); err != nil {
		log.Printf("gameaudio: %v", err)
	}
	if err := m.applySounds(ReadVolume(m.cfg.Options, SoundsVolumeKey, UseSoundKey)); err != nil {
		m.music.Stop()
		return err
	}
	if m.cfg.Events != nil {
		m.unsubscribe = m.cfg.Events.OnBlockChanged(m.blockChanged)
	}
	return nil
}

// Close stops the music and waits for playing effects before releasing
// every voice.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.music != nil {
		m.music.Stop()
	}
	m.pools.Drain()
}

func listAssets(fsys fs.FS) ([]string, error) {
	if fsys == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("gameaudio: no audio directory, running silent")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gameaudio: list assets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// SoundsVolume returns the effects volume, 0-100.
func (m *Manager) SoundsVolume() int { return m.effects.Volume }

// MusicVolume returns the music volume, 0-100.
func (m *Manager) MusicVolume() int { return m.musicVolume }

// SetSoundsVolume stores and applies the effects volume. The boards are
// loaded the first time the volume is nonzero; zero releases the voices.
func (m *Manager) SetSoundsVolume(v int) error {
	v = clampVolume(v)
	m.cfg.Options.Set(SoundsVolumeKey, v)
	return m.applySounds(v)
}

// SetMusicVolume stores and applies the music volume, starting or stopping
// the music loop as needed.
func (m *Manager) SetMusicVolume(v int) error {
	v = clampVolume(v)
	m.cfg.Options.Set(MusicVolumeKey, v)
	return m.applyMusic(v)
}

func (m *Manager) applySounds(v int) error {
	m.effects.Volume = v
	if v == 0 {
		m.pools.Drain()
		return nil
	}
	return m.loadBoards()
}

// loadBoards builds both boards once. Before Init there are no asset
// names yet, so nothing is loaded.
func (m *Manager) loadBoards() error {
	if m.dig != nil || !m.ready {
		return nil
	}
	dig, err := sndboard.Build(m.cfg.FS, m.names, sndboard.Dig, m.cfg.Seed)
	if err != nil {
		return err
	}
	step, err := sndboard.Build(m.cfg.FS, m.names, sndboard.Step, m.cfg.Seed)
	if err != nil {
		return err
	}
	m.dig, m.step = dig, step
	return nil
}

func (m *Manager) applyMusic(v int) error {
	m.musicVolume = v
	if m.music == nil {
		return nil
	}
	if v == 0 {
		m.music.Stop()
		return nil
	}
	return m.music.Start(float64(v) / 100)
}

// MusicState reports the music loop's state.
func (m *Manager) MusicState() music.State {
	if m.music == nil {
		return music.Stopped
	}
	return m.music.State()
}

// PlayDigSound plays a dig sound of type t.
func (m *Manager) PlayDigSound(t sndboard.Type) bool { return m.effects.Play(t, m.dig) }

// PlayStepSound plays a step sound of type t.
func (m *Manager) PlayStepSound(t sndboard.Type) bool { return m.effects.Play(t, m.step) }

// Board returns the loaded board for kind, or nil before the first nonzero
// effects volume.
func (m *Manager) Board(kind sndboard.Kind) *sndboard.Board {
	if kind == sndboard.Step {
		return m.step
	}
	return m.dig
}

func (m *Manager) blockChanged(c BlockChange) {
	switch {
	case c.New == Air:
		m.PlayDigSound(m.cfg.Blocks.DigSound(c.Old))
	case !m.cfg.ClassicMode:
		m.PlayStepSound(m.cfg.Blocks.StepSound(c.New))
	}
}

// Package sndboard groups short sound clips into soundboards, one per kind
// of block interaction, and picks random variants from them.
package sndboard

import (
	"fmt"
	"math/rand/v2"

	"golang.org/x/text/cases"

	"blocksound/voice"
)

const (
	MaxGroups = 10
	MaxSounds = 10
)

// Type is the sound a block makes when it is dug or walked on.
type Type uint8

const (
	None Type = iota
	Wood
	Gravel
	Grass
	Stone
	Metal
	Glass
	Cloth
	Sand
	Snow
	typeCount
)

var typeNames = [typeCount]string{"none", "wood", "gravel", "grass", "stone", "metal", "glass", "cloth", "sand", "snow"}

func (t Type) String() string {
	if t >= typeCount {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return typeNames[t]
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return None, false
}

// Kind selects which interaction a board serves.
type Kind uint8

const (
	Dig Kind = iota
	Step
)

func (k Kind) String() string {
	if k == Step {
		return "step"
	}
	return "dig"
}

// Prefix is the asset name prefix of the kind's clips.
func (k Kind) Prefix() string { return k.String() + "_" }

// Sound is a decoded clip. It is never modified after loading.
type Sound struct {
	Format voice.Format
	Data   []byte
}

// Group holds interchangeable variants of one sound.
type Group struct {
	Name   string
	key    string
	Sounds []*Sound
}

// CapacityError reports a board or group that would exceed its fixed size.
// It means the asset set is packaged wrong.
type CapacityError struct {
	Kind  Kind
	Group string // empty when the board itself is full
	Limit int
}

func (e *CapacityError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("sndboard: %s board has more than %d groups", e.Kind, e.Limit)
	}
	return fmt.Sprintf("sndboard: %s group %q has more than %d sounds", e.Kind, e.Group, e.Limit)
}

// Board is a set of sound groups for one Kind. Boards are filled once and
// then only read; PickRandom advances the board's own generator, so a board
// must not be shared between goroutines.
type Board struct {
	Kind   Kind
	groups []*Group
	rng    *rand.Rand
	fold   cases.Caser
}

// NewBoard returns an empty board whose random picks derive from seed.
func NewBoard(kind Kind, seed uint64) *Board {
	return &Board{
		Kind: kind,
		rng:  rand.New(rand.NewPCG(seed, uint64(kind)+1)),
		fold: cases.Fold(),
	}
}

// Add appends s to the group called name, creating the group if needed.
func (b *Board) Add(name string, s *Sound) error {
	g := b.Group(name)
	if g == nil {
		if len(b.groups) == MaxGroups {
			return &CapacityError{Kind: b.Kind, Limit: MaxGroups}
		}
		g = &Group{Name: name, key: b.fold.String(name)}
		b.groups = append(b.groups, g)
	}
	if len(g.Sounds) == MaxSounds {
		return &CapacityError{Kind: b.Kind, Group: g.Name, Limit: MaxSounds}
	}
	g.Sounds = append(g.Sounds, s)
	return nil
}

// Group finds a group by case-insensitive name.
func (b *Board) Group(name string) *Group {
	key := b.fold.String(name)
	for _, g := range b.groups {
		if g.key == key {
			return g
		}
	}
	return nil
}

// Groups returns the board's groups in creation order.
func (b *Board) Groups() []*Group { return b.groups }

// Empty reports whether the board has no groups.
func (b *Board) Empty() bool { return len(b.groups) == 0 }

// PickRandom returns a random variant for t, or nil when the board has
// nothing for it. Metal has no clips of its own and borrows stone's.
func (b *Board) PickRandom(t Type) *Sound {
	if t == None || t >= typeCount {
		return nil
	}
	if t == Metal {
		t = Stone
	}
	g := b.Group(t.String())
	if g == nil || len(g.Sounds) == 0 {
		return nil
	}
	return g.Sounds[b.rng.IntN(len(g.Sounds))]
}

// Stats summarises a board's contents.
type Stats struct {
	Groups int
	Sounds int
	Bytes  int
}

func (b *Board) Stats() Stats {
	st := Stats{Groups: len(b.groups)}
	for _, g := range b.groups {
		st.Sounds += len(g.Sounds)
		for _, s := range g.Sounds {
			st.Bytes += len(s.Data)
		}
	}
	return st
}

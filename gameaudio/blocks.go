package gameaudio

import (
	"strings"

	"blocksound/sndboard"
)

// BlockID identifies a block type in the world.
type BlockID uint16

// Air is the empty block; changing a block to Air means it was dug out.
const Air BlockID = 0

// BlockChange is delivered whenever a block in the world changes.
type BlockChange struct {
	Pos [3]int
	Old BlockID
	New BlockID
}

// BlockEvents is the source of block change notifications. The returned
// func removes the handler.
type BlockEvents interface {
	OnBlockChanged(fn func(BlockChange)) (cancel func())
}

// BlockSounds maps blocks to the sound they make.
type BlockSounds interface {
	DigSound(b BlockID) sndboard.Type
	StepSound(b BlockID) sndboard.Type
}

// SoundTable is a BlockSounds backed by per-block slices. Blocks past the
// end of a slice make no sound.
type SoundTable struct {
	Dig  []sndboard.Type
	Step []sndboard.Type
}

func (t SoundTable) DigSound(b BlockID) sndboard.Type {
	if int(b) >= len(t.Dig) {
		return sndboard.None
	}
	return t.Dig[b]
}

func (t SoundTable) StepSound(b BlockID) sndboard.Type {
	if int(b) >= len(t.Step) {
		return sndboard.None
	}
	return t.Step[b]
}

var blockNames = [...]string{
	"air", "stone", "grass", "dirt", "cobblestone", "wood", "sapling", "bedrock",
	"water", "still water", "lava", "still lava", "sand", "gravel",
	"gold ore", "iron ore", "coal ore", "log", "leaves", "sponge", "glass",
	"red", "orange", "yellow", "lime", "green", "teal", "aqua", "cyan",
	"blue", "indigo", "violet", "magenta", "pink", "black", "gray", "white",
	"dandelion", "rose", "brown mushroom", "red mushroom", "gold", "iron",
	"double slab", "slab", "brick", "tnt", "bookshelf", "mossy rocks", "obsidian",
}

// ClassicBlocks is the number of blocks in the classic block set.
const ClassicBlocks = len(blockNames)

// BlockName returns the classic name of b, or "" for unknown blocks.
func BlockName(b BlockID) string {
	if int(b) >= len(blockNames) {
		return ""
	}
	return blockNames[b]
}

// ParseBlock looks up a classic block by name. Underscores may stand in
// for spaces.
func ParseBlock(name string) (BlockID, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", " ")
	for i, n := range blockNames {
		if n == name {
			return BlockID(i), true
		}
	}
	return 0, false
}

// ClassicBlockSounds covers the classic block set.
var ClassicBlockSounds = classicTable()

func classicTable() SoundTable {
	t := SoundTable{
		Dig:  make([]sndboard.Type, ClassicBlocks),
		Step: make([]sndboard.Type, ClassicBlocks),
	}
	for i := range t.Dig {
		t.Dig[i] = classicDigSound(BlockID(i))
		t.Step[i] = t.Dig[i]
	}
	// glass breaks like glass but sounds like stone underfoot
	glass, _ := ParseBlock("glass")
	t.Step[glass] = sndboard.Stone
	return t
}

func classicDigSound(b BlockID) sndboard.Type {
	switch BlockName(b) {
	case "air", "water", "still water", "lava", "still lava":
		return sndboard.None
	case "grass", "sapling", "leaves", "sponge",
		"dandelion", "rose", "brown mushroom", "red mushroom":
		return sndboard.Grass
	case "dirt", "gravel":
		return sndboard.Gravel
	case "sand":
		return sndboard.Sand
	case "wood", "log", "bookshelf":
		return sndboard.Wood
	case "glass":
		return sndboard.Glass
	case "gold", "iron":
		return sndboard.Metal
	}
	if b >= 21 && b <= 36 {
		return sndboard.Cloth
	}
	return sndboard.Stone
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"blocksound/gameaudio"
)

var errQuit = errors.New("quit")

// audioControl is the part of the audio manager the console drives.
type audioControl interface {
	SetSoundsVolume(v int) error
	SetMusicVolume(v int) error
	SoundsVolume() int
	MusicVolume() int
}

// console turns typed commands into block changes and volume changes.
type console struct {
	out   io.Writer
	bus   *blockBus
	audio audioControl
	pos   [3]int
}

const consoleHelp = `commands:
  dig <block>       remove a block
  place <block>     place a block
  sounds <0-100>    set the effects volume
  music <0-100>     set the music volume
  status            show volumes
  quit`

// readLines sends each line of r on the returned channel, closing it at
// end of input.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			logError("console: %v", err)
		}
	}()
	return lines
}

// exec runs one command line. It returns errQuit when the user is done.
func (c *console) exec(line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd, arg = strings.ToLower(cmd), strings.TrimSpace(arg)
	switch cmd {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
	case "status":
		fmt.Fprintf(c.out, "sounds %d, music %d\n", c.audio.SoundsVolume(), c.audio.MusicVolume())
	case "dig", "place":
		b, ok := gameaudio.ParseBlock(arg)
		if !ok || b == gameaudio.Air {
			return fmt.Errorf("unknown block %q", arg)
		}
		change := gameaudio.BlockChange{Pos: c.pos, Old: gameaudio.Air, New: b}
		if cmd == "dig" {
			change.Old, change.New = b, gameaudio.Air
		}
		c.pos[0]++
		logDebug("console: %s %s at %v", cmd, gameaudio.BlockName(b), change.Pos)
		c.bus.publish(change)
	case "sounds", "music":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 || v > 100 {
			return fmt.Errorf("%s wants a volume from 0 to 100", cmd)
		}
		if cmd == "sounds" {
			return c.audio.SetSoundsVolume(v)
		}
		return c.audio.SetMusicVolume(v)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

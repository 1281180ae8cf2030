package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"blocksound/gameaudio"
	"blocksound/music"
	"blocksound/sndboard"
	"blocksound/voice"
	"blocksound/wavfile"
)

var (
	audioDir     string
	settingsPath string
	doDebug      bool
	classicMode  bool
	sampleRate   int
	sndDump      bool
)

func main() {
	flag.StringVar(&audioDir, "audio", "audio", "directory holding dig_*/step_* .wav clips and .ogg music")
	flag.StringVar(&settingsPath, "settings", "settings.json", "settings file")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.BoolVar(&classicMode, "classic", false, "classic mode: no sound when placing blocks")
	flag.IntVar(&sampleRate, "rate", 44100, "output sample rate")
	flag.BoolVar(&sndDump, "dump", false, "dump loaded sounds to dump/snd as WAV")
	flag.Parse()

	setupLogging(doDebug)
	opts := loadSettings(settingsPath)
	logDebug("settings: %s", opts)

	bus := newBlockBus()
	mgr := gameaudio.New(gameaudio.Config{
		FS:          os.DirFS(audioDir),
		Device:      voice.NewEbitenDevice(audio.NewContext(sampleRate)),
		Decoder:     music.VorbisDecoder{SampleRate: sampleRate},
		Options:     opts,
		Events:      bus,
		ClassicMode: classicMode,
		Seed:        uint64(time.Now().UnixNano()),
	})
	if err := mgr.Init(); err != nil {
		logError("audio init: %v", err)
		os.Exit(1)
	}

	if sndDump {
		if err := dumpSounds(mgr, filepath.Join("dump", "snd")); err != nil {
			logError("dump sounds: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &console{out: os.Stdout, bus: bus, audio: mgr}
	fmt.Println(consoleHelp)
	runConsole(ctx, c, readLines(os.Stdin))
	mgr.Close()
}

// runConsole executes lines until quit, end of input or ctx is done.
// Commands run on the calling goroutine, the one that owns the manager.
func runConsole(ctx context.Context, c *console, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			logDebug("console: %v", context.Cause(ctx))
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			err := c.exec(line)
			if errors.Is(err, errQuit) {
				return
			}
			if err != nil {
				fmt.Fprintln(c.out, err)
			}
		}
	}
}

// dumpSounds writes every loaded clip to dir as <kind>_<group><n>.wav.
func dumpSounds(mgr *gameaudio.Manager, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	var total uint64
	for _, kind := range []sndboard.Kind{sndboard.Dig, sndboard.Step} {
		b := mgr.Board(kind)
		if b == nil {
			continue
		}
		for _, g := range b.Groups() {
			for i, s := range g.Sounds {
				name := filepath.Join(dir, fmt.Sprintf("%s%s%d.wav", kind.Prefix(), g.Name, i))
				if err := writeWAV(name, s); err != nil {
					return err
				}
				total += uint64(len(s.Data))
			}
		}
	}
	logDebug("dumped %s of sound to %s", humanize.Bytes(total), dir)
	return nil
}

func writeWAV(path string, s *sndboard.Sound) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = wavfile.Encode(f, &wavfile.Sound{
		Data:       s.Data,
		SampleRate: s.Format.SampleRate,
		Channels:   s.Format.Channels,
		Bits:       s.Format.BitsPerSample,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

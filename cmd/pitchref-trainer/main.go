package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/urfave/cli"

	"pitchref/internal/log"
	"pitchref/pkg/player"
	"pitchref/pkg/sampler"
	"pitchref/pkg/tone"
)

var version string

func init() {
	if version == "" {
		version = "unknown"
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "pitchref-trainer"
	app.Usage = "Interactive pitch-training exercises over one piano sample"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "sample, s",
			Usage: "WAV recording used as the pitch-shift source",
			Value: "piano-c4.wav",
		},
		cli.StringFlag{
			Name:  "base, b",
			Usage: "Note the recording is anchored at",
			Value: "C4",
		},
		cli.Float64Flag{
			Name:  "volume, v",
			Usage: "Initial output level (dB)",
			Value: -6,
		},
		cli.Float64Flag{
			Name:  "release, r",
			Usage: "Release time (seconds)",
			Value: 1,
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "Show debug messages",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "Only show warnings",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool("debug") {
		log.Level = log.LevelDebug
	} else if ctx.Bool("quiet") {
		log.Level = log.LevelWarn
	}

	p := player.New(player.Config{
		SamplePath:     ctx.String("sample"),
		BaseNote:       ctx.String("base"),
		ReleaseSeconds: ctx.Float64("release"),
		VolumeDB:       ctx.Float64("volume"),
	})
	if err := p.Initialize(); err != nil {
		return cli.NewExitError(err, 1)
	}
	defer p.Close()

	rl, err := readline.NewEx(&readline.Config{Prompt: "pitchref> "})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer rl.Close()

	fmt.Println("commands: notes, play <note> [sec], random [sec], quiz, stop [note], vol <dB>, info, quit")
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "notes":
			for _, n := range player.Notes() {
				fmt.Printf("  %-4s %8.2f Hz  %s\n", n.Name, n.Frequency, n.Label)
			}
		case "play":
			if len(fields) < 2 {
				fmt.Println("usage: play <note> [seconds]")
				continue
			}
			if err := p.PlayNote(fields[1], seconds(fields, 2), 0); err != nil {
				fmt.Println(err)
			}
		case "random":
			n, err := p.PlayRandomNote(seconds(fields, 1))
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("played %s (%.2f Hz, %s)\n", n.Name, n.Frequency, n.Label)
		case "quiz":
			runQuiz(rl, p)
			rl.SetPrompt("pitchref> ")
		case "stop":
			if len(fields) > 1 {
				p.StopNote(fields[1])
			} else {
				p.StopAll()
			}
		case "vol":
			if len(fields) < 2 {
				fmt.Println("usage: vol <dB>")
				continue
			}
			db, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				fmt.Println("vol wants a number in dB")
				continue
			}
			p.SetVolume(db)
		case "info":
			printInfo(p)
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

// runQuiz plays random notes and scores typed answers until the trainee
// sends an empty line.
func runQuiz(rl *readline.Instance, p *player.Player) {
	fmt.Println("type the note you hear; empty line finishes, r replays")
	asked, correct := 0, 0
	for {
		n, err := p.PlayRandomNote(0)
		if err != nil {
			fmt.Println(err)
			break
		}
		answered := false
		for !answered {
			rl.SetPrompt("note? ")
			line, err := rl.Readline()
			if err != nil {
				return
			}
			answer := strings.ToUpper(strings.TrimSpace(line))
			switch answer {
			case "":
				if asked > 0 {
					fmt.Printf("score: %d/%d\n", correct, asked)
				}
				return
			case "R":
				// replay once the current voice has released
				if err := p.PlayNote(n.Name, 0, 0); err != nil {
					fmt.Println(err)
				}
			default:
				asked++
				answered = true
				if answer == n.Name {
					correct++
					fmt.Println("correct!")
					continue
				}
				guess, ok := tone.ByName(answer)
				if !ok {
					fmt.Printf("it was %s (%s)\n", n.Name, n.Label)
					continue
				}
				fmt.Printf("it was %s (%s), %+.0f cents from your %s\n",
					n.Name, n.Label, tone.Cents(n.Frequency, guess), guess.Name)
			}
		}
	}
}

func printInfo(p *player.Player) {
	s, ok := p.Engine().(*sampler.Sampler)
	if !ok {
		fmt.Println("engine details unavailable")
		return
	}
	det := s.DetectedFrequency()
	if det > 0 {
		fmt.Printf("detected anchor: %.2f Hz (nearest %s)\n", det, tone.Nearest(det).Name)
	}
	fmt.Printf("fingerprint    : %s\n", s.Fingerprint())
	pts := s.WaveformPoints(64)
	if len(pts) == 0 {
		return
	}
	bars := []rune(" ▁▂▃▄▅▆▇█")
	var sketch strings.Builder
	for _, v := range pts {
		idx := int(v * float64(len(bars)-1))
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		sketch.WriteRune(bars[idx])
	}
	fmt.Printf("waveform       : %s\n", sketch.String())
}

func seconds(fields []string, idx int) time.Duration {
	if len(fields) <= idx {
		return 0
	}
	v, err := strconv.ParseFloat(fields[idx], 64)
	if err != nil || v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

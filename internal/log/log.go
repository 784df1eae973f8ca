// Package log is the project-wide leveled logger. Warnings carry the
// player's soft-failure conditions, debug traces the attack/release flow.
package log

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

type LogLevel int

const (
	LevelNone LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Level gates all output.
var Level = LevelInfo

var (
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

func Warnf(f string, args ...interface{}) {
	if LevelWarn <= Level {
		yellow.Fprintf(os.Stderr, "[WARNING] "+f+"\n", args...)
	}
}

func Infof(f string, args ...interface{}) {
	if LevelInfo <= Level {
		fmt.Fprintf(os.Stderr, f+"\n", args...)
	}
}

func Debugf(f string, args ...interface{}) {
	if LevelDebug <= Level {
		cyan.Fprintf(os.Stderr, f+"\n", args...)
	}
}

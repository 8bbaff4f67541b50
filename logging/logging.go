// Package logging adapts github.com/joeycumines/logiface (backed by
// github.com/joeycumines/izerolog, i.e. github.com/rs/zerolog) to the
// hazard.Logger and queue.Logger seams, so diagnostic/assertion-style
// logging goes through a structured, level-gated logging façade rather
// than a bespoke log.Printf.
package logging

import (
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/lfqueue/hazard"
	"github.com/joeycumines/lfqueue/queue"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logiface wraps a *logiface.Logger[*izerolog.Event], implementing both
// hazard.Logger and queue.Logger.
type Logiface struct {
	log *logiface.Logger[*izerolog.Event]
}

var (
	_ hazard.Logger = (*Logiface)(nil)
	_ queue.Logger  = (*Logiface)(nil)
)

// New builds a Logiface that writes structured, leveled records to w (os.Stderr
// if nil) via zerolog.
func New(w *os.File) *Logiface {
	if w == nil {
		w = os.Stderr
	}
	return &Logiface{
		log: izerolog.L.New(
			izerolog.L.WithZerolog(zerolog.New(w).With().Timestamp().Logger()),
		),
	}
}

func (l *Logiface) Warn(msg string, fields map[string]any) {
	b := l.log.Warning()
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}

func (l *Logiface) Debug(msg string, fields map[string]any) {
	b := l.log.Debug()
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}

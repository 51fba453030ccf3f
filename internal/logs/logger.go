// Package logs builds the process logger.
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options selects the handlers of a logger.
type Options struct {
	// Level is the minimum level of the terminal and file handlers.
	Level slog.Leveler
	// Terminal receives text records, os.Stderr when nil.
	Terminal io.Writer
	// File, when not empty, names a file receiving JSON records.
	File string
	// Journal adds a systemd journal handler.
	Journal bool
}

// New returns a logger fanning records out to the handlers selected by
// opts.  The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := opts.Level
	if level == nil {
		level = slog.LevelWarn
	}
	terminal := opts.Terminal
	if terminal == nil {
		terminal = os.Stderr
	}

	var handlers []slog.Handler
	terminalHandler := slog.NewTextHandler(terminal, &slog.HandlerOptions{
		Level: level,
	})
	handlers = append(handlers, terminalHandler)

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closer = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// toJournalKey maps an attribute key to journal field syntax.
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	str = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
	return str
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

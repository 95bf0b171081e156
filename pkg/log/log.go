// SPDX-License-Identifier: GPL-2.0-or-later

// Package log leveled logger used by the command line tool.
package log

// API inspired by zerolog https://github.com/rs/zerolog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level defines log level.
type Level uint8

// Logging constants, matching ffmpeg.
const (
	LevelError   Level = 16
	LevelWarning Level = 24
	LevelInfo    Level = 32
	LevelDebug   Level = 48
)

// ErrInvalidLevel unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel converts a level name to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "error":
		return LevelError, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// UnixMicro .
type UnixMicro uint64

// Entry log entry.
type Entry struct {
	Level Level
	Time  UnixMicro // Timestamp.
	Src   string    // Source.
	File  string    // File being processed.
	Msg   string    // Message.
}

// Event defines log event.
type Event struct {
	level Level
	time  UnixMicro
	src   string
	file  string

	logger *Logger
}

// Src sets event source.
func (e *Event) Src(source string) *Event {
	e.src = source
	return e
}

// File sets the file the event is about.
func (e *Event) File(path string) *Event {
	e.file = path
	return e
}

// Time sets event time.
func (e *Event) Time(t time.Time) *Event {
	e.time = UnixMicro(t.UnixMicro())
	return e
}

// Msg sends the *Event with msg added as the message field.
// Does nothing once the logger has stopped.
func (e *Event) Msg(msg string) {
	entry := Entry{
		Level: e.level,
		Time:  e.time,
		Src:   e.src,
		File:  e.file,
		Msg:   msg,
	}

	select {
	case e.logger.feed <- entry:
	case <-e.logger.done:
	}
}

// Msgf sends the event with formatted msg added as the message field.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.Msg(fmt.Sprintf(format, v...))
}

type logFeed chan Entry

// Logger logs.
type Logger struct {
	feed  logFeed      // feed of logs.
	sub   chan logFeed // subscribe requests.
	unsub chan logFeed // unsubscribe requests.
	done  chan struct{}

	wg *sync.WaitGroup
}

// NewLogger returns a new Logger, call Start before logging.
func NewLogger(wg *sync.WaitGroup) *Logger {
	return &Logger{
		feed:  make(logFeed),
		sub:   make(chan logFeed),
		unsub: make(chan logFeed),
		done:  make(chan struct{}),
		wg:    wg,
	}
}

// Start logger. When the context is canceled all
// subscriber feeds are closed and the logger stops.
func (l *Logger) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(l.done)

		subs := map[logFeed]struct{}{}
		for {
			select {
			case <-ctx.Done():
				for ch := range subs {
					close(ch)
				}
				return

			case ch := <-l.sub:
				subs[ch] = struct{}{}

			case ch := <-l.unsub:
				close(ch)
				delete(subs, ch)

			case entry := <-l.feed:
				for ch := range subs {
					ch <- entry
				}
			}
		}
	}()
}

// CancelFunc cancels log feed subsciption.
type CancelFunc func()

// Subscribe returns a new chan with log feed and a CancelFunc.
// The feed is closed when the logger stops.
func (l *Logger) Subscribe() (<-chan Entry, CancelFunc) {
	feed := make(logFeed)
	select {
	case l.sub <- feed:
	case <-l.done:
		close(feed)
	}

	cancel := func() {
		l.unSubscribe(feed)
	}
	return feed, cancel
}

func (l *Logger) unSubscribe(feed logFeed) {
	// Read feed until unsub request is accepted.
	for {
		select {
		case l.unsub <- feed:
			return
		case <-l.done:
			return
		case <-feed:
		}
	}
}

// LogToWriter prints entries up to and including maxLevel to w,
// until the logger stops.
func (l *Logger) LogToWriter(w io.Writer, maxLevel Level) {
	feed, _ := l.Subscribe()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for entry := range feed {
			if entry.Level > maxLevel {
				continue
			}
			fmt.Fprintln(w, formatEntry(entry))
		}
	}()
}

func formatEntry(entry Entry) string {
	var b strings.Builder
	b.WriteString("[" + entry.Level.String() + "] ")
	if entry.File != "" {
		b.WriteString(entry.File + ": ")
	}
	if entry.Src != "" {
		b.WriteString(entry.Src + ": ")
	}
	b.WriteString(entry.Msg)
	return b.String()
}

func (l *Logger) newEvent(level Level) *Event {
	return &Event{
		level:  level,
		time:   UnixMicro(time.Now().UnixMicro()),
		logger: l,
	}
}

// Error starts a new message with error level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Error() *Event { return l.newEvent(LevelError) }

// Warn starts a new message with warn level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Warn() *Event { return l.newEvent(LevelWarning) }

// Info starts a new message with info level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Info() *Event { return l.newEvent(LevelInfo) }

// Debug starts a new message with debug level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Debug() *Event { return l.newEvent(LevelDebug) }

package server

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleMessage is a log entry forwarded to a browser console
type ConsoleMessage struct {
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// consoleCore is a zap core that forwards entries to a channel. Sends never
// block; entries are dropped while the channel is full.
type consoleCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
	out    chan<- ConsoleMessage
}

// NewConsoleLogger returns a logger that writes to base and also forwards
// entries at or above level to out
func NewConsoleLogger(base *zap.Logger, level zapcore.Level, out chan<- ConsoleMessage) *zap.Logger {
	console := &consoleCore{LevelEnabler: level, out: out}
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, console)
	}))
}

func (c *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	return &consoleCore{
		LevelEnabler: c.LevelEnabler,
		fields:       append(c.fields[:len(c.fields):len(c.fields)], fields...),
		out:          c.out,
	}
}

func (c *consoleCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *consoleCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := ConsoleMessage{
		Message:   entry.Message,
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Fields:    enc.Fields,
	}
	select {
	case c.out <- msg:
	default:
	}
	return nil
}

func (c *consoleCore) Sync() error {
	return nil
}

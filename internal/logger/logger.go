package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a new well configured logger writing to stdout.
// When filename is not empty, entries are also written to a rotated log file.
func New(level, filename string) (*logrus.Logger, error) {
	return NewWithOutput(os.Stdout, level, filename)
}

// NewWithOutput is like New but writes to the given output.
func NewWithOutput(w io.Writer, level, filename string) (*logrus.Logger, error) {
	formatter := new(Formatter)

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(formatter)

	if level == "" {
		level = logrus.InfoLevel.String()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse log level")
	}
	l.SetLevel(lvl)

	if filename != "" {
		l.Hooks.Add(&fileHook{
			rotate: &lumberjack.Logger{
				Filename:   filename,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			},
			formatter: formatter,
		})
	}

	return l, nil
}

// A fileHook copies every entry to a rotated file.
type fileHook struct {
	mu        sync.Mutex
	rotate    *lumberjack.Logger
	formatter logrus.Formatter
}

func (hook *fileHook) Fire(entry *logrus.Entry) error {
	msg, err := hook.formatter.Format(entry)
	if err != nil {
		return errors.Wrap(err, "could not format entry")
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()

	_, err = hook.rotate.Write(msg)
	return err
}

func (hook *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// A Formatter renders entries as `[time] LEVEL: message (key=value, ...)` with sorted keys.
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %+5s: %s",
		entry.Time.Format(time.RFC3339),
		strings.ToUpper(entry.Level.String()),
		entry.Message,
	)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Data[k])
		}
		b.WriteByte(')')
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

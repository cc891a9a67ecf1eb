package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

const timeLayout = "2006-01-02 15:04:05"

// Handler is a slog.Handler writing compact, pretty or JSON records.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool

	mu     *sync.Mutex
	attrs  []slog.Attr // already prefixed with the group path
	prefix string      // dotted group path, "" at top level

	json slog.Handler // used for FormatJSON only
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	Output io.Writer // defaults to os.Stderr
	Colors bool
}

// NewHandler creates a Handler. A nil opts selects compact output at INFO.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		output: opts.Output,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.output == nil {
		h.output = os.Stderr
	}
	if h.format == FormatJSON {
		h.colors = false
		h.json = slog.NewJSONHandler(h.output, &slog.HandlerOptions{
			Level: h.level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey {
					if level, ok := a.Value.Any().(slog.Level); ok {
						return slog.String(slog.LevelKey, levelString(level))
					}
				}
				return a
			},
		})
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.json != nil {
		return h.json.Handle(ctx, r)
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendFlattened(attrs, h.prefix, a)
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(r.Time.Format(timeLayout))
	buf.WriteByte(' ')
	level := fmt.Sprintf("%-5s", levelString(r.Level))
	if h.colors {
		buf.WriteString(colorForLevel(r.Level))
		buf.WriteString(level)
		buf.WriteString(colorReset)
	} else {
		buf.WriteString(level)
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if h.format == FormatPretty {
		buf.WriteByte('\n')
		for _, a := range attrs {
			fmt.Fprintf(&buf, "    %s = %v\n", a.Key, attrValue(a.Value))
		}
	} else {
		if len(attrs) > 0 {
			buf.WriteByte(' ')
			writeJSONObject(&buf, attrs)
		}
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	if h.json != nil {
		clone.json = h.json.WithAttrs(attrs)
		return &clone
	}
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = appendFlattened(clone.attrs, h.prefix, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.json != nil {
		clone.json = h.json.WithGroup(name)
		return &clone
	}
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return &clone
}

// appendFlattened expands group attributes into dotted keys.
func appendFlattened(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			dst = appendFlattened(dst, key, member)
		}
		return dst
	}
	return append(dst, slog.Attr{Key: key, Value: a.Value})
}

// attrValue converts v into something encoding/json and fmt render readably.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		if s, ok := v.Any().(fmt.Stringer); ok {
			return s.String()
		}
	}
	return v.Any()
}

// writeJSONObject writes attrs as a JSON object in their original order.
func writeJSONObject(buf *bytes.Buffer, attrs []slog.Attr) {
	buf.WriteByte('{')
	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(a.Key)
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(attrValue(a.Value))
		if err != nil {
			value, _ = json.Marshal(fmt.Sprint(a.Value.Any()))
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

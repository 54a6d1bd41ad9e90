// Package logevent is a slog handler that counts tagged events in
// prometheus before applying the configured level filter, so operational
// events stay visible in metrics even when their log lines are suppressed.
package logevent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventAttrKey marks the attribute whose value names the event being logged.
const EventAttrKey = "event"

var eventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "netdevice_logged_events",
	Help: "Count of tagged log events by level and group",
}, []string{"level", "group", "event"})

type handler struct {
	opt   *slog.HandlerOptions
	out   io.Writer
	attrs []slog.Attr
	group []string
}

var _ slog.Handler = &handler{}

// NewHandler returns a handler writing JSON lines to stdout.
func NewHandler(opt *slog.HandlerOptions) slog.Handler {
	return NewHandlerTo(os.Stdout, opt)
}

// NewHandlerTo is NewHandler with an explicit sink, for tests.
func NewHandlerTo(out io.Writer, opt *slog.HandlerOptions) slog.Handler {
	if opt == nil {
		opt = &slog.HandlerOptions{}
	}
	return &handler{opt: opt, out: out}
}

// Enabled accepts every level; records below the configured level are still
// counted, then dropped in Handle.
func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	attr := make(map[string]any)
	var event string
	collect := func(a slog.Attr) bool {
		if a.Value.Any() == nil {
			return true
		}
		if a.Key == EventAttrKey {
			event = a.Value.String()
			return true
		}
		attr[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	group := "/" + strings.Join(h.group, "/")
	if len(h.group) > 0 {
		group += "/"
	}
	if event != "" {
		eventCounter.WithLabelValues(r.Level.String(), group, event).Inc()
		group += event
	}
	if h.opt.Level != nil && r.Level < h.opt.Level.Level() {
		return nil
	}

	line := []any{r.Time.Format(time.RFC1123Z), r.Level.String(), group, r.Message, attr}
	e := json.NewEncoder(h.out)
	e.SetEscapeHTML(false)
	return e.Encode(line)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := &handler{opt: h.opt, out: h.out}
	child.attrs = append(child.attrs, h.attrs...)
	child.attrs = append(child.attrs, attrs...)
	child.group = append(child.group, h.group...)
	return child
}

func (h *handler) WithGroup(name string) slog.Handler {
	child := &handler{opt: h.opt, out: h.out}
	child.attrs = append(child.attrs, h.attrs...)
	child.group = append(child.group, h.group...)
	child.group = append(child.group, name)
	return child
}

var ctxKey = &handler{}

// WithLogger attaches logger to ctx for retrieval deeper in the call tree.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey, logger)
}

// LoggerFromContext returns the logger attached by WithLogger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(ctxKey).(*slog.Logger)
	return logger
}

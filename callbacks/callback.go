package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ tools.Callback = (*Noop)(nil)
	_ tools.Callback = (*Printer)(nil)
	_ tools.Callback = (*PackageLogger)(nil)
	_ tools.Callback = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []tools.Callback
}

func NewFanout(callbacks ...tools.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback tools.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.Tool, callerID string, params tools.Parameters) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, callerID, params)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.Tool, callerID string, messages []*tools.Message) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, callerID, messages)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.Tool, callerID string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, callerID, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, tool tools.Tool, callerID string, params tools.Parameters) {
}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.Tool, callerID string, messages []*tools.Message) {
}
func (l *Noop) OnToolError(ctx context.Context, tool tools.Tool, callerID string, err error) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.Tool, callerID string, params tools.Parameters) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s (%s)\n", tool.Name(), callerID)
	if l.Mode == ModeVerbose {
		for _, spec := range tool.Parameters() {
			if v, ok := params.Get(spec.Name); ok {
				fmt.Fprintf(l.Out, "Param: %s=%v\n", spec.Name, v)
			}
		}
	}
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.Tool, callerID string, messages []*tools.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s (%s): %d messages\n", tool.Name(), callerID, len(messages))
	if l.Mode == ModeVerbose {
		for idx, msg := range messages {
			fmt.Fprintf(l.Out, "[%d] %s: %s\n", idx, msg.Type, msg.String())
		}
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.Tool, callerID string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s (%s): %s\n", tool.Name(), callerID, err.Error())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.Tool, callerID string, params tools.Parameters) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"caller", callerID,
		"invocation", tools.GetInvocationID(ctx),
		"tool", tool.Name(),
		"params", len(params),
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.Tool, callerID string, messages []*tools.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"caller", callerID,
		"invocation", tools.GetInvocationID(ctx),
		"tool", tool.Name(),
		"messages", len(messages),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.Tool, callerID string, err error) {
	level, event := xlog.ERROR, "tool_error"
	var inputErr *tools.InputError
	if errors.As(err, &inputErr) {
		level, event = xlog.DEBUG, "tool_rejected"
	}
	l.logger.ContextKV(ctx, level,
		"event", event,
		"caller", callerID,
		"invocation", tools.GetInvocationID(ctx),
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

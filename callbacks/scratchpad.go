package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/tools"
)

// ensure Scratchpad implements tools.Callback
var _ tools.Callback = (*Scratchpad)(nil)

var TimeNowFn = time.Now

// RunStats summarizes the invocations of a caller between StartRun and EndRun.
type RunStats struct {
	CallerID string

	Duration            time.Duration
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	TextMessages        uint32
	JSONMessages        uint32
	BlobMessages        uint32
	BlobBytes           uint64
}

// Scratchpad records a trace and stats of tool invocations per caller.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording invocations of the caller.
func (l *Scratchpad) StartRun(callerID string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	r := &run{
		stats: RunStats{
			CallerID: callerID,
		},
		started: time.Now(),
	}
	l.runs[callerID] = r

	r.print(callerID, "*** Run Started ***")
}

// EndRun stops recording, and returns the stats and the trace.
func (l *Scratchpad) EndRun(callerID string) (*RunStats, []byte) {
	r := l.getRun(callerID)
	if r == nil {
		return nil, nil
	}

	stats := r.stats
	stats.Duration = time.Since(r.started)

	r.print(callerID, fmt.Sprintf("Tool calls: %d, Succeeded: %d, Failed: %d",
		stats.ToolsCalls,
		stats.ToolsCallsSucceeded,
		stats.ToolsCallsFailed,
	))
	r.print(callerID, fmt.Sprintf("Messages: text %d, json %d, blob %d, Blob Bytes: %d",
		stats.TextMessages,
		stats.JSONMessages,
		stats.BlobMessages,
		stats.BlobBytes,
	))
	r.print(callerID, fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, callerID)
	l.lock.Unlock()

	return &stats, r.w.Bytes()
}

func (l *Scratchpad) getRun(callerID string) *run {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[callerID]
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.Tool, callerID string, params tools.Parameters) {
	r := l.getRun(callerID)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolsCalls, 1)
	r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "*** Tool Start ***")
	if l.mode == ModeVerbose {
		for _, spec := range tool.Parameters() {
			if v, ok := params.Get(spec.Name); ok {
				r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "Param:", fmt.Sprintf("%s=%v", spec.Name, v))
			}
		}
	}
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.Tool, callerID string, messages []*tools.Message) {
	r := l.getRun(callerID)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolsCallsSucceeded, 1)
	for _, msg := range messages {
		switch msg.Type {
		case tools.MessageTypeText:
			atomic.AddUint32(&r.stats.TextMessages, 1)
		case tools.MessageTypeJSON:
			atomic.AddUint32(&r.stats.JSONMessages, 1)
		case tools.MessageTypeBlob:
			atomic.AddUint32(&r.stats.BlobMessages, 1)
			atomic.AddUint64(&r.stats.BlobBytes, uint64(len(msg.Blob)))
		}
		if l.mode == ModeVerbose {
			r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "Output:", msg.String())
		}
	}
	r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.Tool, callerID string, err error) {
	r := l.getRun(callerID)
	if r == nil {
		return
	}
	var inputErr *tools.InputError
	if errors.As(err, &inputErr) {
		r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "*** Tool Rejected ***", inputErr.Message)
	} else {
		r.print(callerID, tools.GetInvocationID(ctx), tool.Name(), "*** Tool Error ***", err.Error())
	}
	atomic.AddUint32(&r.stats.ToolsCallsFailed, 1)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		_, _ = r.w.WriteString(" ")
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// FailurePrefix starts the message reported for a failed invocation.
const FailurePrefix = "Failed to process file"

// InputError is a condition reported to the user verbatim,
// the invocation ends without contacting any external service.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewInputError returns an InputError with the message.
func NewInputError(msg string) error {
	return errors.WithStack(&InputError{Message: msg})
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	callback Callback
}

// WithCallback sets the callback for the run.
func WithCallback(callback Callback) RunOption {
	return func(c *runConfig) {
		c.callback = callback
	}
}

// Run resolves the raw parameters, invokes the tool and returns the messages for the host.
// Run never fails: an *InputError is reported as a single text message with its text,
// any other error or panic as a single failure message.
func Run(ctx context.Context, tool Tool, callerID string, raw map[string]any, opts ...RunOption) (messages []*Message) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	defer func() {
		if r := recover(); r != nil {
			messages = recovered(ctx, cfg, tool, callerID, errors.Newf("panic: %v", r))
		}
	}()

	name := tool.Name()
	started := time.Now()
	defer metricskey.PerfToolInvocation.MeasureSince(started, name)

	if inv := GetInvocation(ctx); inv == nil || inv.CallerID != callerID {
		ctx = WithInvocation(ctx, NewInvocation(callerID))
	}

	params := Resolve(tool.Parameters(), raw)
	if cfg.callback != nil {
		cfg.callback.OnToolStart(ctx, tool, callerID, params)
	}

	res, err := tool.Invoke(ctx, callerID, params)
	if err != nil {
		return report(ctx, cfg, tool, callerID, err)
	}

	metricskey.StatsToolInvocationsSucceeded.IncrCounter(1, name)
	if cfg.callback != nil {
		cfg.callback.OnToolEnd(ctx, tool, callerID, res)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", name,
		"caller", callerID,
		"invocation", GetInvocationID(ctx),
		"messages", len(res),
		"elapsed", time.Since(started).String())
	return res
}

// FailureMessage returns the text reported for a failed invocation.
func FailureMessage(err error) string {
	return fmt.Sprintf("%s: %s", FailurePrefix, err.Error())
}

// recovered reports a panic, a second panic raised by the callback is not propagated.
func recovered(ctx context.Context, cfg *runConfig, tool Tool, callerID string, err error) (messages []*Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"caller", callerID,
				"err", err.Error(),
				"callback_panic", fmt.Sprint(r))
			messages = []*Message{NewTextMessage(FailureMessage(err))}
		}
	}()
	return report(ctx, cfg, tool, callerID, err)
}

func report(ctx context.Context, cfg *runConfig, tool Tool, callerID string, err error) []*Message {
	name := tool.Name()
	if cfg.callback != nil {
		cfg.callback.OnToolError(ctx, tool, callerID, err)
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		metricskey.StatsToolInvocationsRejected.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", name,
			"caller", callerID,
			"invocation", GetInvocationID(ctx),
			"rejected", inputErr.Message)
		return []*Message{NewTextMessage(inputErr.Message)}
	}

	metricskey.StatsToolInvocationsFailed.IncrCounter(1, name)
	logger.ContextKV(ctx, xlog.ERROR,
		"tool", name,
		"caller", callerID,
		"invocation", GetInvocationID(ctx),
		"err", err.Error())
	return []*Message{NewTextMessage(FailureMessage(err))}
}

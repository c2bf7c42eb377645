package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/effective-security/gworks/callbacks"
	"github.com/effective-security/gworks/mocks/mocktools"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCallback(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	tool := &fakeTool{name: "test-tool"}
	ctx := context.Background()

	cb.OnToolStart(ctx, tool, "user1", tools.Parameters{"text": "test input"})
	cb.OnToolEnd(ctx, tool, "user1", []*tools.Message{tools.NewTextMessage("test output")})
	cb.OnToolError(ctx, tool, "user1", errors.New("test error"))

	res := buf.String()
	assert.Contains(t, res, "Tool Start: test-tool (user1)")
	assert.Contains(t, res, "Param: text=test input")
	assert.Contains(t, res, "Tool End: test-tool (user1): 1 messages")
	assert.Contains(t, res, "[0] text: test output")
	assert.Contains(t, res, "Tool Error: test-tool (user1): test error")

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolStart(ctx, tool, "user1", tools.Parameters{"text": "test input"})
	cb.OnToolEnd(ctx, tool, "user1", []*tools.Message{tools.NewTextMessage("test output")})
	assert.NotContains(t, buf.String(), "test input")
	assert.NotContains(t, buf.String(), "test output")
}

func TestFanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	m1 := mocktools.NewMockCallback(ctrl)
	m2 := mocktools.NewMockCallback(ctrl)

	ctx := context.Background()
	tool := &fakeTool{name: "test-tool"}
	params := tools.Parameters{"text": "x"}
	msgs := []*tools.Message{tools.NewTextMessage("y")}
	failure := errors.New("fail")

	fan := callbacks.NewFanout(m1, callbacks.NewNoop())
	fan.Add(m2)
	fan.Add(callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/gworks", "callbacks_test")))

	for _, m := range []*mocktools.MockCallback{m1, m2} {
		m.EXPECT().OnToolStart(ctx, tool, "user1", params)
		m.EXPECT().OnToolEnd(ctx, tool, "user1", msgs)
		m.EXPECT().OnToolError(ctx, tool, "user1", failure)
	}

	fan.OnToolStart(ctx, tool, "user1", params)
	fan.OnToolEnd(ctx, tool, "user1", msgs)
	fan.OnToolError(ctx, tool, "user1", failure)
}

func TestPackageLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	prev := xlog.GetFormatter()
	xlog.SetFormatter(xlog.NewStringFormatter(&buf).Options(xlog.FormatSkipTime, xlog.FormatNoCaller))
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	t.Cleanup(func() {
		xlog.SetFormatter(prev)
		xlog.SetGlobalLogLevel(xlog.INFO)
	})

	cb := callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/gworks", "callbacks_test"))
	ctx := context.Background()
	tool := &fakeTool{name: "test-tool"}

	cb.OnToolError(ctx, tool, "user1", tools.NewInputError("No content provided"))
	out := buf.String()
	assert.Contains(t, out, "level=D")
	assert.Contains(t, out, "tool_rejected")
	assert.NotContains(t, out, "level=E")

	buf.Reset()
	cb.OnToolError(ctx, tool, "user1", errors.New("connection refused"))
	out = buf.String()
	assert.Contains(t, out, "level=E")
	assert.Contains(t, out, "tool_error")
}

type fakeTool struct {
	name string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "useful tool" }
func (f *fakeTool) Parameters() []*tools.ParameterSpec {
	return []*tools.ParameterSpec{
		{
			Name:  "text",
			Label: tools.I18n{tools.LocaleEnUS: "Text"},
			Type:  tools.ParameterTypeString,
			Form:  tools.InputSurfaceLLM,
		},
	}
}
func (f *fakeTool) Invoke(context.Context, string, tools.Parameters) ([]*tools.Message, error) {
	return nil, nil
}

package tools

import (
	"context"
	"strconv"

	"github.com/effective-security/xdb/pkg/flake"
)

// Invocation identifies one execution of a tool.
type Invocation struct {
	ID       string
	CallerID string
}

// NewInvocation returns an invocation with a new ID.
func NewInvocation(callerID string) *Invocation {
	return &Invocation{
		ID:       NewInvocationID(),
		CallerID: callerID,
	}
}

type contextKey int

const (
	keyInvocation contextKey = iota
)

// WithInvocation returns a new context with the Invocation value
func WithInvocation(ctx context.Context, inv *Invocation) context.Context {
	return context.WithValue(ctx, keyInvocation, inv)
}

// GetInvocation returns the Invocation from the context, or nil.
func GetInvocation(ctx context.Context) *Invocation {
	if v, ok := ctx.Value(keyInvocation).(*Invocation); ok {
		return v
	}
	return nil
}

// GetInvocationID returns the invocation ID from the context,
// or an empty string if the context has no Invocation.
func GetInvocationID(ctx context.Context) string {
	if v := GetInvocation(ctx); v != nil {
		return v.ID
	}
	return ""
}

// NewInvocationID generates a new invocation ID using the flake ID generator.
func NewInvocationID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}

package tools

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gworks", "tools")

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go  -package mocktools

var (
	// ErrToolNotFound is returned when the registry has no tool with the requested name.
	ErrToolNotFound = errors.New("tool not found")
)

// Tool is a capability registered with the host.
type Tool interface {
	// Name returns the unique name of the Tool.
	Name() string
	// Description returns the description of the tool, to be shown by the host.
	Description() string
	// Parameters returns the runtime parameters of the tool in display order.
	// The result must be deterministic: the host calls it at registration and render time.
	Parameters() []*ParameterSpec

	// Invoke executes the tool with the resolved parameters.
	// Conditions to be reported to the user verbatim are returned as *InputError,
	// any other error is reported by Run as a failure message.
	Invoke(ctx context.Context, callerID string, params Parameters) ([]*Message, error)
}

// Callback receives tool invocation events.
type Callback interface {
	OnToolStart(ctx context.Context, tool Tool, callerID string, params Parameters)
	OnToolEnd(ctx context.Context, tool Tool, callerID string, messages []*Message)
	OnToolError(ctx context.Context, tool Tool, callerID string, err error)
}

// FileAccessor provides read access to host managed files.
type FileAccessor interface {
	// Download returns the content of the file.
	Download(ctx context.Context, f *File) ([]byte, error)
	// GetAttribute returns the attribute of the file, for example FileAttributeMimeType.
	GetAttribute(ctx context.Context, f *File, attr FileAttribute) (any, error)
}

// Registry maps tool names to implementations.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	callback Callback
}

// NewRegistry returns a registry with the provided tools registered.
func NewRegistry(list ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithCallback sets the callback used for every invocation through the registry.
func (r *Registry) WithCallback(callback Callback) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callback = callback
	return r
}

// Register adds the tool, the name must not be in use
// and the parameter schema must be valid.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return errors.New("tool is nil")
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return errors.New("tool name is empty")
	}
	if err := ValidateParameters(t.Parameters()); err != nil {
		return errors.Wrapf(err, "invalid parameters of tool %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return errors.Newf("tool %q already registered", name)
	}
	r.tools[name] = t

	logger.KV(xlog.DEBUG, "status", "registered", "tool", name)
	return nil
}

// Get returns the tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, errors.Wrapf(ErrToolNotFound, "%q", name)
	}
	return t, nil
}

// List returns registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	slices.SortFunc(list, func(a, b Tool) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return list
}

// Invoke runs the named tool for the caller.
// The only error returned is ErrToolNotFound, every tool failure is reported in messages.
func (r *Registry) Invoke(ctx context.Context, name, callerID string, raw map[string]any) ([]*Message, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	callback := r.callback
	r.mu.RUnlock()

	var opts []RunOption
	if callback != nil {
		opts = append(opts, WithCallback(callback))
	}
	return Run(ctx, t, callerID, raw, opts...), nil
}

// Description describes a tool for listings.
type Description struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Parameters  int    `json:"parameters" yaml:"parameters"`
}

// GetDescriptions returns descriptions of the tools, in the provided order.
func GetDescriptions(list ...Tool) []Description {
	res := make([]Description, 0, len(list))
	for _, t := range list {
		res = append(res, Description{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  len(t.Parameters()),
		})
	}
	return res
}

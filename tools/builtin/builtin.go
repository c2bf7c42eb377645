// Package builtin creates the built-in tools from configuration.
package builtin

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/config"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/tools/filewriter"
	"github.com/effective-security/gworks/tools/whisper"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gworks/tools", "builtin")

// Factory creates a tool from the configuration.
type Factory func(cfg *config.Config, files tools.FileAccessor) (tools.Tool, error)

var factories = map[string]Factory{
	whisper.ToolName:    newWhisper,
	filewriter.ToolName: newFileWriter,
}

// Names returns the names of the built-in tools, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateTool returns a built-in tool by name.
func CreateTool(name string, cfg *config.Config, files tools.FileAccessor) (tools.Tool, error) {
	f, ok := factories[strings.TrimSpace(name)]
	if !ok {
		return nil, errors.Wrapf(tools.ErrToolNotFound, "%q", name)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return f(cfg, files)
}

// NewRegistry returns the registry of all built-in tools.
func NewRegistry(cfg *config.Config, files tools.FileAccessor) (*tools.Registry, error) {
	r, err := tools.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range Names() {
		t, err := CreateTool(name, cfg, files)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create tool %q", name)
		}
		if err = r.Register(t); err != nil {
			return nil, err
		}
	}
	logger.KV(xlog.DEBUG, "tools", Names())
	return r, nil
}

func newWhisper(cfg *config.Config, files tools.FileAccessor) (tools.Tool, error) {
	return whisper.New(files).
		WithBaseURL(cfg.Whisper.BaseURL).
		WithModel(cfg.Whisper.Model).
		WithTimeout(cfg.Whisper.GetTimeout()), nil
}

func newFileWriter(_ *config.Config, _ tools.FileAccessor) (tools.Tool, error) {
	return filewriter.New(), nil
}

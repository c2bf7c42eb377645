package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/callbacks"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/utils"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

// NewInvokeCmd creates the "invoke" subcommand.
func NewInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Invoke a tool and print its messages",
		Long: "Invoke a tool with parameters and local files.\n" +
			"Files are loaded into the file store, blobs are written to the output folder.",
		Args: cobra.ExactArgs(1),
		RunE: runInvoke,
	}
	cmd.Flags().StringArray("param", nil, "Parameter value KEY=VALUE (repeatable)")
	cmd.Flags().String("json", "", "Parameters as JSON object")
	cmd.Flags().StringArray("file", nil, "File parameter KEY=PATH (repeatable)")
	cmd.Flags().String("out", ".", "Folder to write blob messages to")
	cmd.Flags().String("caller", "cli", "Caller ID")
	cmd.Flags().String("format", formatText, "Output format: text | json")
	cmd.Flags().Bool("stats", false, "Print invocation trace and stats to stderr")
	return cmd
}

func runInvoke(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatJSON {
		return exitError(exitValidation, "unsupported format %q", format)
	}

	raw, err := parseInputs(cmd)
	if err != nil {
		return err
	}
	if err = loadFiles(cmd, e, raw); err != nil {
		return err
	}
	raw = utils.MergeInputs(e.cfg.GetToolInputs(name), raw)

	callerID, _ := cmd.Flags().GetString("caller")
	withStats, _ := cmd.Flags().GetBool("stats")

	outcome := &outcomeRecorder{}
	fanout := callbacks.NewFanout(outcome, callbacks.NewPackageLogger(logger))
	var pad *callbacks.Scratchpad
	if withStats {
		pad = callbacks.NewScratchpad(callbacks.ModeVerbose)
		pad.StartRun(callerID)
		fanout.Add(pad)
	}
	e.registry.WithCallback(fanout)

	msgs, err := e.registry.Invoke(cmd.Context(), name, callerID, raw)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			return exitError(exitValidation, "tool not found: %s", name)
		}
		return exitError(exitRuntime, "%s", err)
	}

	if pad != nil {
		_, trace := pad.EndRun(callerID)
		_, _ = cmd.ErrOrStderr().Write(trace)
	}

	out, _ := cmd.Flags().GetString("out")
	if err = writeMessages(cmd.OutOrStdout(), format, out, msgs); err != nil {
		return err
	}

	if outcome.err != nil {
		return exitError(exitRuntime, "%s", tools.FailureMessage(outcome.err))
	}
	return nil
}

func parseInputs(cmd *cobra.Command) (map[string]any, error) {
	raw := map[string]any{}

	if js, _ := cmd.Flags().GetString("json"); js != "" {
		if err := json.Unmarshal([]byte(js), &raw); err != nil {
			return nil, exitError(exitInputParse, "parsing --json: %s", err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	params, _ := cmd.Flags().GetStringArray("param")
	for _, p := range params {
		key, val, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, exitError(exitInputParse, "invalid --param %q, expected KEY=VALUE", p)
		}
		raw[key] = val
	}
	return raw, nil
}

func loadFiles(cmd *cobra.Command, e *env, raw map[string]any) error {
	files, _ := cmd.Flags().GetStringArray("file")
	for _, p := range files {
		key, location, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || location == "" {
			return exitError(exitInputParse, "invalid --file %q, expected KEY=PATH", p)
		}

		data, err := os.ReadFile(location)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return exitError(exitFileNotFound, "file not found: %s", location)
			}
			return exitError(exitRuntime, "reading file: %s", err)
		}

		f, err := e.files.Put(cmd.Context(), filepath.Base(location), data, "")
		if err != nil {
			return exitError(exitRuntime, "storing file: %s", err)
		}
		logger.ContextKV(cmd.Context(), xlog.DEBUG,
			"param", key,
			"file", location,
			"id", f.ID,
			"type", f.Type)
		raw[key] = f
	}
	return nil
}

func writeMessages(w io.Writer, format, out string, msgs []*tools.Message) error {
	if format == formatJSON {
		fmt.Fprintln(w, utils.ToJSONIndent(msgs))
	}

	for _, msg := range msgs {
		switch msg.Type {
		case tools.MessageTypeText:
			if format == formatText {
				fmt.Fprintln(w, msg.Text)
			}
		case tools.MessageTypeJSON:
			if format == formatText {
				fmt.Fprintln(w, utils.ToJSONIndent(msg.JSON))
			}
		case tools.MessageTypeBlob:
			location, err := saveBlob(out, msg)
			if err != nil {
				return err
			}
			if format == formatText {
				fmt.Fprintf(w, "Saved: %s (%s, %d bytes)\n", location, msg.MimeType(), len(msg.Blob))
			}
		}
	}
	return nil
}

func saveBlob(out string, msg *tools.Message) (string, error) {
	name := filepath.Base(filepath.Clean("/" + msg.SaveAs))
	if name == "/" || name == "." {
		return "", exitError(exitRuntime, "invalid blob name %q", msg.SaveAs)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", exitError(exitRuntime, "creating output folder: %s", err)
	}
	location := filepath.Join(out, name)
	if err := os.WriteFile(location, msg.Blob, 0o644); err != nil {
		return "", exitError(exitRuntime, "writing blob: %s", err)
	}
	return location, nil
}

// outcomeRecorder keeps the failure of the invocation,
// conditions reported to the user are not failures.
type outcomeRecorder struct {
	callbacks.Noop
	err error
}

func (o *outcomeRecorder) OnToolError(_ context.Context, _ tools.Tool, _ string, err error) {
	var inputErr *tools.InputError
	if !errors.As(err, &inputErr) {
		o.err = err
	}
}

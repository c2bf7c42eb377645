package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/schema"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/utils"
	"github.com/spf13/cobra"
)

// Output formats
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the built-in tools",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsSchemaCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in tools",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
	cmd.Flags().String("format", formatTable, "Output format: table | json | yaml")
	return cmd
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	descs := tools.GetDescriptions(e.registry.List()...)
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatJSON:
		fmt.Fprintln(cmd.OutOrStdout(), utils.ToJSONIndent(descs))
	case formatYAML:
		fmt.Fprint(cmd.OutOrStdout(), utils.ToYAML(descs))
	case formatTable, "":
		writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(writer, "NAME\tPARAMETERS\tDESCRIPTION")
		for _, d := range descs {
			fmt.Fprintf(writer, "%s\t%d\t%s\n", d.Name, d.Parameters, d.Description)
		}
		_ = writer.Flush()
	default:
		return exitError(exitValidation, "unsupported format %q", format)
	}
	return nil
}

func newToolsSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <name>",
		Short: "Print the parameters schema of a tool",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsSchema,
	}
	cmd.Flags().String("format", formatJSON, "Output format: json | yaml")
	cmd.Flags().Bool("function", false, "Print the function calling definition")
	return cmd
}

func runToolsSchema(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	t, err := e.registry.Get(args[0])
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			return exitError(exitValidation, "tool not found: %s", args[0])
		}
		return err
	}

	var val any = schema.New(t.Parameters(), e.cfg.Locale).Schema
	if fn, _ := cmd.Flags().GetBool("function"); fn {
		val = schema.ForTool(t, e.cfg.Locale)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatJSON, "":
		fmt.Fprintln(cmd.OutOrStdout(), utils.ToJSONIndent(val))
	case formatYAML:
		// round trip through JSON to keep the schema field names
		var obj any
		if err = json.Unmarshal([]byte(utils.ToJSON(val)), &obj); err != nil {
			return exitError(exitRuntime, "rendering schema: %s", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), utils.ToYAML(obj))
	default:
		return exitError(exitValidation, "unsupported format %q", format)
	}
	return nil
}

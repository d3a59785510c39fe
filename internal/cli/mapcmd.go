package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/value"
)

// MapOptions holds flags for the map command.
type MapOptions struct {
	*RootOptions
	Field string
}

// NewMapCommand creates the map command.
func NewMapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "map <updates>",
		Short: "Project every carried element onto one field",
		Long: `Rewrite an update file so that every carried element is replaced by
the value of one of its top-level fields (null when missing).

The output is a new update file describing the projected sequence:
applying it to the projected snapshot gives the projection of the result.

Examples:
  seqsync map updates.json --field name
  seqsync map updates.yaml --field body --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Field, "field", "", "field to project (required)")
	_ = cmd.MarkFlagRequired("field")

	return cmd
}

func runMap(opts *MapOptions, updatesPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	updates, err := LoadBatch(updatesPath)
	if err != nil {
		return failLoad(f, err)
	}

	mapped, err := diff.MapBatch(updates, value.Project(opts.Field))
	if err != nil {
		return fail(f, ExitFailure, codeForDiffError(err), err.Error(), nil)
	}

	data, err := diff.EncodeBatch(mapped)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if f.JSON() {
		return f.Success(json.RawMessage(data))
	}
	fmt.Fprintln(f.Writer, string(data))
	return nil
}

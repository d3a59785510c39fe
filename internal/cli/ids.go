package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/value"
)

// IDsOptions holds flags for the ids command.
type IDsOptions struct {
	*RootOptions
	Key  string
	Self bool
}

// IDsResult holds the ids command output.
type IDsResult struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// NewIDsCommand creates the ids command.
func NewIDsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IDsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ids <updates>",
		Short: "List identifiers introduced by an update file",
		Long: `Collect the identifiers of every element an update file introduces.

Insert, PushFront, PushBack and Set contribute their value; Append and
Reset contribute each of their values. Removals do not retract identifiers.
Elements without an identifier are skipped.

Examples:
  seqsync ids updates.json --key id
  seqsync ids room_ids.yaml --self`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIDs(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "id", "object key holding the identifier")
	cmd.Flags().BoolVar(&opts.Self, "self", false, "elements are identifiers themselves")

	return cmd
}

func runIDs(opts *IDsOptions, updatesPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	updates, err := LoadBatch(updatesPath)
	if err != nil {
		return failLoad(f, err)
	}

	identify := value.Field(opts.Key)
	if opts.Self {
		identify = value.Self()
	}
	ids := diff.CollectNewIdentifiers(updates, identify).Sorted()
	if ids == nil {
		ids = []string{}
	}

	if f.JSON() {
		return f.Success(IDsResult{IDs: ids, Count: len(ids)})
	}
	for _, id := range ids {
		fmt.Fprintln(f.Writer, id)
	}
	f.VerboseLog("%d identifier(s)", len(ids))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/value"
)

// TraceStep is the state after one update.
type TraceStep struct {
	Step     int           `json:"step"`
	Kind     string        `json:"kind"`
	Length   int           `json:"length"`
	Sequence []value.Value `json:"sequence"`
}

// TraceResult holds the trace command output.
type TraceResult struct {
	Initial []value.Value `json:"initial"`
	Steps   []TraceStep   `json:"steps"`
	Error   *CLIError     `json:"error,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <snapshot> <updates>",
		Short: "Show every intermediate state of a batch",
		Long: `Apply updates one at a time and print the sequence after each.

Stops at the first failing update. The output of the last step equals the
result of applying the whole batch at once.

Examples:
  seqsync trace snapshot.json updates.json
  seqsync trace snapshot.yaml updates.yaml --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runTrace(opts *RootOptions, snapshotPath, updatesPath string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	seq, err := LoadSequence(snapshotPath)
	if err != nil {
		return failLoad(f, err)
	}
	updates, err := LoadBatch(updatesPath)
	if err != nil {
		return failLoad(f, err)
	}

	result := TraceResult{Initial: nonNilSeq(seq), Steps: []TraceStep{}}
	for i, u := range updates {
		next, err := diff.Apply(seq, u)
		if err != nil {
			result.Error = &CLIError{
				Code:    codeForDiffError(err),
				Message: fmt.Sprintf("update %d: %v", i, err),
				Details: map[string]any{"position": i, "length": len(seq)},
			}
			break
		}
		seq = next
		result.Steps = append(result.Steps, TraceStep{
			Step:     i,
			Kind:     string(u.Kind()),
			Length:   len(seq),
			Sequence: nonNilSeq(seq),
		})
	}

	if f.JSON() {
		if result.Error != nil {
			if err := f.Failure(result.Error.Code, result.Error.Message, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, result.Error.Message)
		}
		return f.Success(result)
	}

	return outputTraceText(f, result)
}

func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer

	initial, err := value.MarshalCanonicalSequence(result.Initial)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "initial     %s\n", initial)

	for _, step := range result.Steps {
		data, err := value.MarshalCanonicalSequence(step.Sequence)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "[%d] %-9s %s\n", step.Step, step.Kind, data)
	}

	if result.Error != nil {
		fmt.Fprintf(w, "✗ %s: %s\n", result.Error.Code, result.Error.Message)
		return NewExitError(ExitFailure, result.Error.Message)
	}
	return nil
}

func nonNilSeq(seq []value.Value) []value.Value {
	if seq == nil {
		return []value.Value{}
	}
	return seq
}

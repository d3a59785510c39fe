package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/seqsync/internal/diff"
	"github.com/roach88/seqsync/internal/mirror"
	"github.com/roach88/seqsync/internal/value"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	OneByOne bool   // fold with Apply instead of ApplyBatch
	Key      string // identifier key for new-id collection
}

// BatchFailure describes one discarded batch.
type BatchFailure struct {
	File     string `json:"file"`
	Seq      int64  `json:"seq"`
	Code     string `json:"code"`
	Position int    `json:"position"`
	Message  string `json:"message"`
}

// ApplyResult holds the apply command output.
type ApplyResult struct {
	Sequence    []value.Value  `json:"sequence"`
	Length      int            `json:"length"`
	Fingerprint string         `json:"fingerprint"`
	Batches     int            `json:"batches"`
	Failures    []BatchFailure `json:"failures,omitempty"`
	NewIDs      []string       `json:"new_ids,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <snapshot> <updates>...",
		Short: "Apply update batches to a snapshot",
		Long: `Apply one or more update files to a snapshot.

Each update file is one batch. Batches are applied in order through a
single-writer mirror: a batch that fails is discarded whole and the
remaining batches still apply.

With --one-by-one every update is applied on its own with Apply and the
command stops at the first failing update, reporting its position.

Exit codes:
  0 - All batches applied
  1 - One or more batches failed
  2 - Command error (missing or malformed files)

Examples:
  seqsync apply snapshot.json updates.json
  seqsync apply rooms.yaml b1.yaml b2.yaml --key room_id
  seqsync apply snapshot.json updates.json --one-by-one --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.OneByOne, "one-by-one", false, "apply updates individually and stop at the first failure")
	cmd.Flags().StringVar(&opts.Key, "key", "", "object key used to report new identifiers")

	return cmd
}

func runApply(ctx context.Context, opts *ApplyOptions, snapshotPath string, updatePaths []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	initial, err := LoadSequence(snapshotPath)
	if err != nil {
		return failLoad(f, err)
	}

	batches := make([][]diff.Update[value.Value], len(updatePaths))
	for i, path := range updatePaths {
		if batches[i], err = LoadBatch(path); err != nil {
			return failLoad(f, err)
		}
		f.VerboseLog("Loaded %d update(s) from %s", len(batches[i]), path)
	}

	if opts.OneByOne {
		return applyOneByOne(f, opts, initial, batches, updatePaths)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return applyWithMirror(ctx, f, opts, initial, batches, updatePaths)
}

// failureLog collects discarded batches in queue order.
type failureLog struct {
	files    []string
	next     int
	failures []BatchFailure
}

func (l *failureLog) OnChange(mirror.Change[value.Value]) {
	l.next++
}

func (l *failureLog) OnFailure(fl mirror.Failure) {
	l.failures = append(l.failures, BatchFailure{
		File:     l.files[l.next],
		Seq:      fl.Seq,
		Code:     codeForDiffError(fl.Err),
		Position: positionOf(fl.Err),
		Message:  fl.Err.Error(),
	})
	l.next++
}

func applyWithMirror(ctx context.Context, f *OutputFormatter, opts *ApplyOptions, initial []value.Value,
	batches [][]diff.Update[value.Value], files []string) error {
	log := &failureLog{files: files}
	sink := mirror.NewIndexSink[value.Value]()

	mopts := []mirror.Option[value.Value]{
		mirror.WithLogger[value.Value](slog.Default()),
		mirror.WithListener[value.Value](log),
	}
	if opts.Key != "" {
		mopts = append(mopts,
			mirror.WithIdentify(value.Field(opts.Key)),
			mirror.WithListener[value.Value](sink))
	}

	m := mirror.New(initial, mopts...)
	for _, b := range batches {
		m.Enqueue(b)
	}
	m.Stop()
	if err := m.Run(ctx); err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("mirror: %v", err), nil)
	}

	result, err := newApplyResult(m.Snapshot(), len(batches))
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	result.Failures = log.failures
	if opts.Key != "" {
		result.NewIDs = sink.IDs()
	}
	return outputApply(f, result)
}

func applyOneByOne(f *OutputFormatter, opts *ApplyOptions, initial []value.Value,
	batches [][]diff.Update[value.Value], files []string) error {
	seq := initial
	ids := diff.IDSet{}
	for b, updates := range batches {
		for pos, u := range updates {
			next, err := diff.Apply(seq, u)
			if err != nil {
				return fail(f, ExitFailure, codeForDiffError(err),
					fmt.Sprintf("%s: update %d: %v", files[b], pos, err),
					map[string]any{"file": files[b], "position": pos, "length": len(seq)})
			}
			seq = next
		}
		if opts.Key != "" {
			ids.Union(diff.CollectNewIdentifiers(updates, value.Field(opts.Key)))
		}
	}

	result, err := newApplyResult(seq, len(batches))
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if opts.Key != "" {
		result.NewIDs = ids.Sorted()
	}
	return outputApply(f, result)
}

func newApplyResult(seq []value.Value, batches int) (ApplyResult, error) {
	fp, err := value.Fingerprint(seq)
	if err != nil {
		return ApplyResult{}, err
	}
	if seq == nil {
		seq = []value.Value{}
	}
	return ApplyResult{
		Sequence:    seq,
		Length:      len(seq),
		Fingerprint: fp,
		Batches:     batches,
	}, nil
}

func outputApply(f *OutputFormatter, result ApplyResult) error {
	failed := len(result.Failures) > 0
	summary := fmt.Sprintf("%d of %d batch(es) failed", len(result.Failures), result.Batches)

	if f.JSON() {
		if failed {
			if err := f.Failure(result.Failures[0].Code, summary, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, summary)
		}
		return f.Success(result)
	}

	w := f.Writer
	data, err := value.MarshalCanonicalSequence(result.Sequence)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	fmt.Fprintf(w, "length: %d\n", result.Length)
	fmt.Fprintf(w, "fingerprint: %s\n", result.Fingerprint)
	if len(result.NewIDs) > 0 {
		fmt.Fprintf(w, "new ids: %s\n", strings.Join(result.NewIDs, ", "))
	}

	if !failed {
		return nil
	}
	for _, fl := range result.Failures {
		fmt.Fprintf(w, "✗ %s (seq %d): %s at position %d\n", fl.File, fl.Seq, fl.Code, fl.Position)
	}
	return NewExitError(ExitFailure, summary)
}

func positionOf(err error) int {
	var de *diff.Error
	if errors.As(err, &de) {
		return de.Position
	}
	return -1
}

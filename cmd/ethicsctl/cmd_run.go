package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/pipeline"
	"github.com/tjfontaine/ethics-pipeline/internal/runtime"
)

type runFlags struct {
	actionPath  string
	contextPath string
	batchPath   string
	timeout     time.Duration
}

func newRunCmd(root *rootOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an action (or a batch) through the pipeline",
		Long: "run evaluates one action with its context, or every request of a\n" +
			"batch document, and prints the pipeline result as JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.actionPath, "action", "a", "", "Action document (YAML or JSON, - for stdin)")
	f.StringVar(&flags.contextPath, "context", "", "Context document (YAML or JSON)")
	f.StringVarP(&flags.batchPath, "batch", "b", "", "Batch document: a list of {action, context} entries")
	f.DurationVar(&flags.timeout, "timeout", 0, "Deadline for the run; plugins not reached are reported as failures")
	cmd.MarkFlagsMutuallyExclusive("action", "batch")
	cmd.MarkFlagsOneRequired("action", "batch")
	return cmd
}

func runRun(cmd *cobra.Command, root *rootOptions, flags *runFlags) error {
	rt, err := root.newRuntime(false)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Shutdown(context.Background()); err != nil {
			root.logger.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx := cmd.Context()
	if err := rt.Start(ctx); err != nil {
		return err
	}
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	if flags.batchPath != "" {
		return runBatch(ctx, cmd, rt, flags.batchPath)
	}

	req := request{}
	if err := readDocument(flags.actionPath, cmd.InOrStdin(), &req.Action); err != nil {
		return err
	}
	if flags.contextPath != "" {
		if err := readDocument(flags.contextPath, cmd.InOrStdin(), &req.Context); err != nil {
			return err
		}
	}
	decoded, err := req.decode()
	if err != nil {
		return err
	}

	result, err := rt.ProcessAction(ctx, decoded.Action, decoded.Context)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func runBatch(ctx context.Context, cmd *cobra.Command, rt *runtime.Runtime, path string) error {
	var entries []request
	if err := readDocument(path, cmd.InOrStdin(), &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("batch is empty")
	}

	reqs := make([]pipeline.Request, len(entries))
	for i, e := range entries {
		r, err := e.decode()
		if err != nil {
			return fmt.Errorf("batch entry %d: %w", i, err)
		}
		reqs[i] = r
	}

	results, err := rt.Manager().ProcessBatch(ctx, reqs)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), results)
}

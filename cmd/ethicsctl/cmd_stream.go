package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

// maxLine bounds one request line.
const maxLine = 1 << 20

func newStreamCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Evaluate newline-delimited JSON requests from stdin",
		Long: "stream reads one {\"action\": ..., \"context\": ...} object per line\n" +
			"and writes one JSON result per line. The configuration file is\n" +
			"watched and the pipeline is reloaded when it changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStream(cmd, root)
		},
	}
}

func runStream(cmd *cobra.Command, root *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := root.newRuntime(true)
	if err != nil {
		return err
	}
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			root.logger.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}()

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	enc := json.NewEncoder(cmd.OutOrStdout())
	for {
		select {
		case <-ctx.Done():
			root.logger.Info("stream interrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}
			if err := enc.Encode(evaluateLine(ctx, root, rt, line)); err != nil {
				return err
			}
		}
	}
}

// streamResult is one output line: the result, or the reason the request
// could not be evaluated.
type streamResult struct {
	Result *domain.PipelineResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

type actionProcessor interface {
	ProcessAction(ctx context.Context, action domain.Action, env domain.Context) (*domain.PipelineResult, error)
}

func evaluateLine(ctx context.Context, root *rootOptions, rt actionProcessor, line []byte) streamResult {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return streamResult{Error: "invalid request: " + err.Error()}
	}
	decoded, err := req.decode()
	if err != nil {
		return streamResult{Error: err.Error()}
	}
	result, err := rt.ProcessAction(ctx, decoded.Action, decoded.Context)
	if err != nil {
		root.logger.Error("process failed", slog.String("error", err.Error()))
		return streamResult{Error: err.Error()}
	}
	return streamResult{Result: result}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and build the pipeline without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.newRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Shutdown(context.Background())

			out := cmd.OutOrStdout()
			if err := rt.Start(cmd.Context()); err != nil {
				var ce *domain.ConfigurationError
				if errors.As(err, &ce) {
					fmt.Fprintf(out, "invalid: kind=%s", ce.Kind)
					if ce.PluginID != "" {
						fmt.Fprintf(out, " plugin=%s", ce.PluginID)
					}
					fmt.Fprintln(out)
				}
				return err
			}

			fmt.Fprintf(out, "valid: %d plugins\n", len(rt.Manager().Plugins()))
			return nil
		},
	}
}

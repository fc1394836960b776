package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/registration"
)

func newPluginsCmd(root *rootOptions) *cobra.Command {
	var loaded, asJSON bool

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List plugin types, or the plugins of the configured pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if loaded {
				return listLoaded(cmd, root, asJSON)
			}
			return listTypes(cmd, asJSON)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&loaded, "loaded", false, "List the plugins of the configured pipeline in evaluation order")
	f.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

type typeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func listTypes(cmd *cobra.Command, asJSON bool) error {
	catalog := registration.NewCatalog()
	var infos []typeInfo
	for _, f := range catalog.List() {
		infos = append(infos, typeInfo{Type: f.Type, Description: f.Description})
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), infos)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\n", info.Type, info.Description)
	}
	return w.Flush()
}

func listLoaded(cmd *cobra.Command, root *rootOptions, asJSON bool) error {
	rt, err := root.newRuntime(false)
	if err != nil {
		return err
	}
	defer rt.Shutdown(context.Background())
	if err := rt.Start(cmd.Context()); err != nil {
		return err
	}

	plugins := rt.Manager().Plugins()
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), plugins)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tPRIORITY\tWEIGHT\tENABLED")
	for _, p := range plugins {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%t\n", p.ID, p.Type, p.Priority, p.Weight, p.Enabled)
	}
	return w.Flush()
}

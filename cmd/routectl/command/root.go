// Package command provides the routectl command tree. It inspects the
// route line and fare schedule offline and replays driver matching over a
// roster file, using the same pricing and matching code as the API.
//
//	./routectl stops [--routes routes.yaml]
//	./routectl price MAPUTO XAI-XAI [--seats 2]
//	./routectl match --roster roster.yaml --origin MAXIXE --destination MAPUTO [--date 2024-06-01]
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viagens-moz/intercity/internal/config"
)

// NewRootCmd builds a fresh command tree. routesPath is bound to the
// persistent --routes flag and defaults to ROUTES_FILE.
func NewRootCmd() *cobra.Command {
	var routesPath string

	root := &cobra.Command{
		Use:           "routectl",
		Short:         "Inspect the intercity route line, fares and driver matching",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(
		&routesPath, "routes", "r", os.Getenv("ROUTES_FILE"), "routes YAML file (built-in corridor when empty)",
	)

	load := func() (*config.Routes, error) {
		routes, err := config.LoadRoutes(routesPath)
		if err != nil {
			return nil, fmt.Errorf("config.LoadRoutes(%q): %w", routesPath, err)
		}
		return routes, nil
	}

	root.AddCommand(newStopsCmd(load), newPriceCmd(load), newMatchCmd(load))
	return root
}

// Execute runs the command tree against os.Args
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type routesLoader func() (*config.Routes, error)

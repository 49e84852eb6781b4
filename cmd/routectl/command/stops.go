package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopsCmd(load routesLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stops",
		Short: "List the stops of the route line in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, stop := range routes.Line {
				fmt.Fprintf(out, "%2d  %s\n", i, stop)
			}
			return nil
		},
	}
}

package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/service/pricing"
)

func newPriceCmd(load routesLoader) *cobra.Command {
	var (
		seats    int
		baseFare int
		stepFare int
	)

	cmd := &cobra.Command{
		Use:   "price ORIGIN DESTINATION",
		Short: "Compute the fare between two stops",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := load()
			if err != nil {
				return err
			}
			origin, destination := route.Normalize(args[0]), route.Normalize(args[1])
			seg := route.Segment{Start: origin, End: destination}
			if err := seg.Validate(routes.Line); err != nil {
				return err
			}

			svc := pricing.NewService(routes.Line, routes.Fares, pricing.Config{BaseFare: baseFare, StepFare: stepFare})
			perSeat, ok := svc.Price(origin, destination)
			if !ok {
				return fmt.Errorf("no fare from %s to %s", origin, destination)
			}
			total, ok := svc.Quote(origin, destination, seats)
			if !ok {
				return fmt.Errorf("no total for %d seats at %d MZN", seats, perSeat)
			}

			source := "interpolated"
			if _, explicit := routes.Fares.Lookup(origin, destination); explicit {
				source = "table"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d MZN x %d = %d MZN (%s)\n",
				origin, destination, perSeat, seats, total, source)
			return nil
		},
	}

	defaults := pricing.DefaultConfig()
	cmd.Flags().IntVarP(&seats, "seats", "s", 1, "number of seats")
	cmd.Flags().IntVar(&baseFare, "base-fare", defaults.BaseFare, "interpolation base fare")
	cmd.Flags().IntVar(&stepFare, "step-fare", defaults.StepFare, "interpolation fare per stop")
	return cmd
}

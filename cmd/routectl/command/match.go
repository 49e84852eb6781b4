package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/service/matching"
)

// rosterDriver is one driver entry of a roster file
type rosterDriver struct {
	Name     string                   `yaml:"name"`
	Phone    string                   `yaml:"phone"`
	Approved bool                     `yaml:"approved"`
	Priority bool                     `yaml:"priority"`
	Route    *route.Segment           `yaml:"route"`
	Dates    []string                 `yaml:"dates"`
	Days     map[string]route.Segment `yaml:"days"`
}

type rosterFile struct {
	Drivers []rosterDriver `yaml:"drivers"`
}

// parseRoster decodes a roster document into drivers, keeping file order
func parseRoster(data []byte) ([]*driver.Driver, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding roster: %w", err)
	}

	drivers := make([]*driver.Driver, 0, len(f.Drivers))
	for i, entry := range f.Drivers {
		d := driver.New(entry.Name, "", entry.Phone)
		d.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%d/%s", i, entry.Name)))
		d.SetApproval(entry.Approved)
		d.SetPriority(entry.Priority)
		if entry.Route != nil {
			d.SetDefaultRoute(route.Normalize(string(entry.Route.Start)), route.Normalize(string(entry.Route.End)))
		}
		for _, date := range entry.Dates {
			if err := d.AddDate(date, nil); err != nil {
				return nil, fmt.Errorf("driver %q: %w", entry.Name, err)
			}
		}
		for date, seg := range entry.Days {
			seg.Start, seg.End = route.Normalize(string(seg.Start)), route.Normalize(string(seg.End))
			if err := d.AddDate(date, &seg); err != nil {
				return nil, fmt.Errorf("driver %q: %w", entry.Name, err)
			}
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

func newMatchCmd(load routesLoader) *cobra.Command {
	var (
		rosterPath  string
		origin      string
		destination string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank the roster drivers able to serve a trip (with --date) or a parcel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rosterPath == "" {
				return errors.New("--roster is required")
			}
			routes, err := load()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(rosterPath)
			if err != nil {
				return fmt.Errorf("reading roster: %w", err)
			}
			drivers, err := parseRoster(data)
			if err != nil {
				return err
			}

			from, to := route.Normalize(origin), route.Normalize(destination)
			if err := (route.Segment{Start: from, End: to}).Validate(routes.Line); err != nil {
				return err
			}

			m := matching.NewMatcher(routes.Line)
			var matched []*driver.Driver
			if date != "" {
				if err := driver.ValidateDate(date); err != nil {
					return err
				}
				matched = m.MatchForTrip(drivers, matching.TripRequest{Origin: from, Destination: to, Date: date})
			} else {
				matched = m.MatchForPackage(drivers, matching.PackageRequest{Origin: from, Destination: to})
			}

			out := cmd.OutOrStdout()
			ranked := matching.Rank(matched)
			if len(ranked) == 0 {
				fmt.Fprintln(out, "no drivers available")
				return nil
			}
			for i, d := range ranked {
				marker := ""
				if d.IsPriority {
					marker = " *"
				}
				fmt.Fprintf(out, "%d. %s %s%s\n", i+1, d.Name, d.Phone, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "roster YAML file")
	cmd.Flags().StringVarP(&origin, "origin", "o", "", "origin stop")
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "destination stop")
	cmd.Flags().StringVar(&date, "date", "", "travel date YYYY-MM-DD (parcel matching when empty)")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ski-spot/internal/api"
	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/ranking"
	"github.com/pfrederiksen/ski-spot/internal/scraper"
	"github.com/pfrederiksen/ski-spot/internal/service"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := opts.cfg.Port
			if port != "" {
				addr = port
			}

			logger.Info("Starting server", logger.Fields{"addr": addr, "store": opts.cfg.Store})
			e := api.NewServer(a.svc, logger.Default().Zap())
			return api.Run(ctx, e, addr)
		},
	}

	cmd.Flags().StringVar(&port, "addr", "", "Listen address (env: SKISPOT_PORT)")
	return cmd
}

func newScrapeCmd(opts *options) *cobra.Command {
	var stateNames []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape resort conditions into the store",
		Long: `Scrape the state listing pages and upsert every resort found.
With no --state flags every known state is scraped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			states, err := resolveStates(stateNames)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if opts.verbose {
				n := len(states)
				if n == 0 {
					n = len(scraper.States)
				}
				fmt.Fprintf(os.Stderr, "Scraping %d states from %s\n", n, opts.cfg.SourceURL)
			}

			summary, err := a.scraper.ScrapeAll(ctx, states...)
			if err != nil {
				return fmt.Errorf("scraping: %w", err)
			}
			return writeSummary(cmd.OutOrStdout(), summary, opts.outputFormat())
		},
	}

	cmd.Flags().StringSliceVar(&stateNames, "state", nil, "State to scrape, e.g. Colorado (repeatable)")
	return cmd
}

// resolveStates maps state names to listing pages; empty means all
func resolveStates(names []string) ([]scraper.State, error) {
	states := make([]scraper.State, 0, len(names))
	for _, name := range names {
		st, ok := scraper.LookupState(titleCase(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown state: %s", name)
		}
		states = append(states, st)
	}
	return states, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func newSearchCmd(opts *options) *cobra.Command {
	var (
		radius   float64
		priority string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "search <location>",
		Short: "Rank resorts near a zip code or city",
		Example: `  skispot search 80202
  skispot search "Denver, CO" --radius 150 --priority distance`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ranking.Priority(strings.ToLower(priority))
			if p != ranking.PrioritySnow && p != ranking.PriorityDistance {
				return fmt.Errorf("invalid priority: %s (must be 'snow' or 'distance')", priority)
			}
			s := ranking.SortOrder(strings.ToLower(sortBy))
			switch s {
			case ranking.SortOptimized, ranking.SortByDistance, ranking.SortByConditions:
			default:
				return fmt.Errorf("invalid sort: %s (must be 'optimized', 'distance' or 'conditions')", sortBy)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.Search(ctx, service.SearchRequest{
				Location: strings.Join(args, " "),
				Radius:   radius,
				Priority: p,
				Sort:     s,
			})
			if err != nil {
				return err
			}

			var place string
			if opts.verbose && opts.outputFormat() == FormatText {
				place = a.geocoder.Reverse(ctx, result.UserLocation.Latitude, result.UserLocation.Longitude)
			}
			return writeSearch(cmd.OutOrStdout(), result, place, opts.outputFormat(), opts.verbose)
		},
	}

	cmd.Flags().Float64Var(&radius, "radius", service.DefaultRadius, "Maximum driving distance in miles")
	cmd.Flags().StringVar(&priority, "priority", string(ranking.PrioritySnow), "Weight snow or distance more: snow or distance")
	cmd.Flags().StringVar(&sortBy, "sort", string(ranking.SortOptimized), "Sort: optimized, distance or conditions")
	return cmd
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in sample resorts into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.svc.Seed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d resorts.\n", n)
			return nil
		},
	}
}

func newResortsCmd(opts *options) *cobra.Command {
	var (
		sortBy string
		state  string
	)

	cmd := &cobra.Command{
		Use:   "resorts",
		Short: "List cached resorts without scraping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order := SortOrder(strings.ToLower(sortBy))
			if order != SortByName && order != SortByState && order != SortBySnow {
				return fmt.Errorf("invalid sort: %s (must be 'name', 'state' or 'snow')", sortBy)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.store.All(ctx)
			if err != nil {
				return err
			}
			records = filterByState(records, state)
			sortResorts(records, order)
			return writeResorts(cmd.OutOrStdout(), records, opts.outputFormat())
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", string(SortByName), "Sort: name, state or snow")
	cmd.Flags().StringVar(&state, "state", "", "Only list resorts in this state")
	return cmd
}

package main

import (
	"context"
	"errors"
	"net/url"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/secosha/marketplace/cmd/secosha/ui"
	"github.com/secosha/marketplace/internal/browse"
	"github.com/secosha/marketplace/internal/cart"
	"github.com/secosha/marketplace/internal/listings"
)

type browseFlags struct {
	term      string
	category  string
	size      string
	color     string
	condition string
	minPrice  string
	maxPrice  string
	sort      string
}

// query validates the flags with the same rules the listings endpoint applies.
func (f browseFlags) query() (listings.Query, error) {
	v := url.Values{}
	for key, value := range map[string]string{
		listings.ParamTerm:      f.term,
		listings.ParamCategory:  f.category,
		listings.ParamSize:      f.size,
		listings.ParamColor:     f.color,
		listings.ParamCondition: f.condition,
		listings.ParamMinPrice:  f.minPrice,
		listings.ParamMaxPrice:  f.maxPrice,
		listings.ParamSort:      f.sort,
	} {
		if value != "" {
			v.Set(key, value)
		}
	}
	return listings.ParseQuery(v)
}

func newBrowseCmd(state *rootState) *cobra.Command {
	var flags browseFlags
	cmd := &cobra.Command{
		Use:         "browse",
		Short:       "Search listings in an interactive view",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := flags.query()
			if err != nil {
				return err
			}
			a := state.app
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			runner := browse.NewRunner(a.api, a.cfg.Browse.SearchTimeout, a.logg)
			controller := browse.NewController(ctx, runner, a.cfg.Browse.Debounce, nil)
			defer controller.Close()
			controller.Seed(initial)

			program := tea.NewProgram(
				ui.New(ctx, controller, a.cart),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)

			states := ui.NewLatest()
			carts := ui.NewLatest()
			stopState := runner.OnChange(func(s browse.State) { states.Push(ui.StateMsg(s)) })
			defer stopState()
			stopCart := a.cart.Subscribe(func(lines []cart.Line) { carts.Push(ui.CartMsg{Count: cart.TotalCount(lines)}) })
			defer stopCart()

			var pumps sync.WaitGroup
			for _, l := range []*ui.Latest{states, carts} {
				pumps.Add(1)
				go func(l *ui.Latest) {
					defer pumps.Done()
					l.Pump(ctx, program.Send)
				}(l)
			}

			controller.Load()
			_, err = program.Run()
			cancel()
			pumps.Wait()
			if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.term, "query", "q", "", "Initial search term")
	f.StringVar(&flags.category, "category", "", "Category filter")
	f.StringVar(&flags.size, "size", "", "Size filter")
	f.StringVar(&flags.color, "color", "", "Color filter (substring match)")
	f.StringVar(&flags.condition, "condition", "", "Condition filter")
	f.StringVar(&flags.minPrice, "min-price", "", "Lowest price")
	f.StringVar(&flags.maxPrice, "max-price", "", "Highest price")
	f.StringVar(&flags.sort, "sort", "", "Sort order: newest, price_asc or price_desc")
	return cmd
}

package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secosha/marketplace/internal/sell"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

type sellFlags struct {
	draft  sell.Draft
	images []string
}

func newSellCmd(state *rootState) *cobra.Command {
	flags := &sellFlags{}
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Publish a listing",
		Example: `  secosha sell --title "Wool coat" --description "Worn twice" --price 80 \
    --size M --category Outerwear --condition "Like new" --image coat.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := state.app.gate.Require(); err != nil {
				return err
			}
			// Reject bad text fields before any upload so nothing is orphaned.
			if _, err := sell.Validate(flags.draft); err != nil {
				return err
			}
			files, err := readImages(flags.images)
			if err != nil {
				return err
			}

			flow := sell.NewFlow(state.app.api, state.app.api, state.app.logg)
			flow.Edit(func(d *sell.Draft) { *d = flags.draft })
			if err := flow.AddImages(cmd.Context(), files); err != nil {
				return err
			}
			listing, err := flow.Submit(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listed %q for %s (id %s).\n", listing.Title, formatPrice(listing.Price), listing.ID)
			if flow.NextRoute() == sell.RouteAccount {
				fmt.Fprintln(out, "Run `secosha account` to see your listings.")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.draft.Title, "title", "", "Listing title")
	f.StringVar(&flags.draft.Description, "description", "", "Listing description")
	f.StringVar(&flags.draft.Price, "price", "", "Asking price, e.g. 24.50")
	f.StringVar(&flags.draft.Size, "size", "", "Size (XS, S, M, L, XL, XXL)")
	f.StringVar(&flags.draft.Color, "color", "", "Dominant color (optional)")
	f.StringVar(&flags.draft.Category, "category", "", "Category, e.g. Outerwear")
	f.StringVar(&flags.draft.Condition, "condition", "", "Condition, e.g. \"Like new\"")
	f.StringArrayVarP(&flags.images, "image", "i", nil, fmt.Sprintf("Image file to upload (repeatable, up to %d)", sell.MaxImages))
	return cmd
}

func readImages(paths []string) ([]sell.File, error) {
	if len(paths) > sell.MaxImages {
		return nil, pkgerrors.New(pkgerrors.CodeCapacity, fmt.Sprintf("a listing can have at most %d images", sell.MaxImages))
	}
	files := make([]sell.File, 0, len(paths))
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("cannot read image %s", path))
		}
		files = append(files, sell.File{
			Name:        filepath.Base(path),
			ContentType: contentTypeFor(path, body),
			Body:        body,
		})
	}
	return files, nil
}

func contentTypeFor(path string, body []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return http.DetectContentType(body)
}

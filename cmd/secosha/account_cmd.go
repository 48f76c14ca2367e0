package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/secosha/marketplace/internal/profiles"
	"github.com/secosha/marketplace/pkg/client"
	"github.com/secosha/marketplace/pkg/enums"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

func newAccountCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "List your listings and their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := state.app.gate.Require(); err != nil {
				return err
			}
			owned, err := state.app.api.MyItems(cmd.Context())
			if err != nil {
				return err
			}
			printOwned(cmd.OutOrStdout(), owned)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := state.app.gate.Require(); err != nil {
				return err
			}
			if err := state.app.api.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	})
	return cmd
}

func printOwned(out io.Writer, owned *client.OwnedItems) {
	fmt.Fprintf(out, "%d listing(s), %d active, total value %s\n",
		owned.Stats.TotalItems, owned.Stats.ActiveItems, formatPrice(owned.Stats.TotalValue))
	if len(owned.Items) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSIZE\tCONDITION\tLISTED")
	for _, item := range owned.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Title, formatPrice(item.Price), item.Size, item.Condition, item.CreatedAt.Local().Format("2006-01-02"))
	}
	_ = tw.Flush()
}

type settingsFlags struct {
	fullName string
	email    string
	location string
	bio      string
	delivery []string
}

func newSettingsCmd(state *rootState) *cobra.Command {
	flags := &settingsFlags{}
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update your seller profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := state.app.gate.Require(); err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := state.app.api.Profile(ctx)
			switch {
			case pkgerrors.Is(err, pkgerrors.CodeNotFound):
				current = &profiles.ProfileDTO{}
			case err != nil:
				return err
			}

			changed := cmd.Flags()
			if !anyChanged(cmd, "name", "email", "location", "bio", "delivery") {
				printProfile(cmd.OutOrStdout(), current)
				return nil
			}

			update := profiles.UpdateProfileRequest{
				FullName:      current.FullName,
				Email:         current.Email,
				Location:      current.Location,
				Bio:           current.Bio,
				DeliveryTypes: current.DeliveryTypes,
			}
			if changed.Changed("name") {
				update.FullName = flags.fullName
			}
			if changed.Changed("email") {
				update.Email = flags.email
			}
			if changed.Changed("location") {
				update.Location = flags.location
			}
			if changed.Changed("bio") {
				update.Bio = flags.bio
			}
			if changed.Changed("delivery") {
				update.DeliveryTypes = flags.delivery
			}

			saved, err := state.app.api.UpdateProfile(ctx, update)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile saved.")
			printProfile(cmd.OutOrStdout(), saved)
			return nil
		},
	}

	deliveryOptions := make([]string, 0, len(enums.DeliveryTypes()))
	for _, d := range enums.DeliveryTypes() {
		deliveryOptions = append(deliveryOptions, string(d))
	}

	f := cmd.Flags()
	f.StringVar(&flags.fullName, "name", "", "Full name")
	f.StringVar(&flags.email, "email", "", "Contact email")
	f.StringVar(&flags.location, "location", "", "City or area buyers see")
	f.StringVar(&flags.bio, "bio", "", "Short seller bio")
	f.StringArrayVar(&flags.delivery, "delivery", nil, "Delivery option (repeatable): "+strings.Join(deliveryOptions, ", "))
	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func printProfile(out io.Writer, p *profiles.ProfileDTO) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", p.FullName)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Location\t%s\n", p.Location)
	fmt.Fprintf(tw, "Bio\t%s\n", p.Bio)
	fmt.Fprintf(tw, "Delivery\t%s\n", strings.Join(p.DeliveryTypes, ", "))
	_ = tw.Flush()
}

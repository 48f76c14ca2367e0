package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/secosha/marketplace/internal/cart"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

func newCartCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd.OutOrStdout(), state.app.cart.Lines())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cart lines and totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printCart(cmd.OutOrStdout(), state.app.cart.Lines())
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <item-id>",
			Short: "Remove a line from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				state.app.cart.RemoveItem(cmd.Context(), args[0])
				printCart(cmd.OutOrStdout(), state.app.cart.Lines())
				return nil
			},
		},
		&cobra.Command{
			Use:   "qty <item-id> <quantity>",
			Short: "Set the quantity of a line (minimum 1)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity, err := strconv.Atoi(args[1])
				if err != nil {
					return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a whole number")
				}
				state.app.cart.UpdateQuantity(cmd.Context(), args[0], quantity)
				printCart(cmd.OutOrStdout(), state.app.cart.Lines())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				state.app.cart.ClearCart(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
				return nil
			},
		},
	)
	return cmd
}

func printCart(out io.Writer, lines []cart.Line) {
	if len(lines) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", line.ItemID, line.Title, formatPrice(line.UnitPrice), line.Quantity)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "\n%d item(s), total %s\n", cart.TotalCount(lines), formatPrice(cart.TotalPrice(lines)))
}

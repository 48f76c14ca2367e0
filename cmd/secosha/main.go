package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, state := newRootCmd()
	defer state.close()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", describe(err))
		return 1
	}
	return 0
}

// rootState carries the flags and the lazily built app between commands.
type rootState struct {
	configPath string
	verbose    bool
	app        *app
}

func (s *rootState) close() {
	if s.app != nil {
		_ = s.app.Close()
		s.app = nil
	}
}

func newRootCmd() (*cobra.Command, *rootState) {
	state := &rootState{}

	root := &cobra.Command{
		Use:           "secosha",
		Short:         "Browse, buy, and sell second-hand clothing from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoApp] == "true" {
				return nil
			}
			a, err := newApp(cmd.Context(), appOptions{
				configPath:  state.configPath,
				verbose:     state.verbose,
				interactive: cmd.Annotations[annotationInteractive] == "true",
				stderr:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			state.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "Path to a YAML config file (default: <data dir>/config.yaml)")
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newBrowseCmd(state),
		newSignupCmd(state),
		newLoginCmd(state),
		newLogoutCmd(state),
		newWhoamiCmd(state),
		newCartCmd(state),
		newSellCmd(state),
		newAccountCmd(state),
		newSettingsCmd(state),
		newConfigCmd(state),
	)
	return root, state
}

const (
	annotationNoApp       = "secosha/no-app"
	annotationInteractive = "secosha/interactive"
)

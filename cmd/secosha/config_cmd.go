package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/secosha/marketplace/internal/clientconfig"
)

func newConfigCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Print the effective client configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := clientconfig.Load(state.configPath)
			if err != nil {
				return err
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

package cli

import (
	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/config"
)

type configSummary struct {
	Config            config.BrainConfig `json:"config"`
	HysteresisEnabled bool               `json:"hysteresis_enabled"`
	Warnings          []string           `json:"warnings"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the brain configuration and its warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.brainConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if savePath != "" {
				if err := cfg.Save(savePath); err != nil {
					return err
				}
				xlog.Info("Config saved", "path", savePath)
			}
			warnings := cfg.Warnings()
			if warnings == nil {
				warnings = []string{}
			}
			return printJSON(cmd.OutOrStdout(), configSummary{
				Config:            cfg,
				HysteresisEnabled: cfg.HysteresisEnabled(),
				Warnings:          warnings,
			})
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "Write the configuration to this JSON file")
	return cmd
}

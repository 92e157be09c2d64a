package cli

import (
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func ConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect tftpc configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(configShowCommand())
	return cmd
}

func configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			if cfg == nil {
				return errors.New("config unavailable")
			}
			download := cfg.DownloadTimeout.String()
			if cfg.DownloadTimeout == 0 {
				download = "none"
			}
			printFields(pterm.Info, "effective configuration", map[string]any{
				"server":           cfg.Server,
				"port":             cfg.Port,
				"mode":             cfg.Mode,
				"upload_timeout":   cfg.UploadTimeout,
				"download_timeout": download,
				"retries":          cfg.Retries,
				"log_level":        cfg.LogLevel,
			})
			return nil
		},
	}
}

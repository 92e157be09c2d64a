package cli

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Pablu23/tftpc/internal/config"
)

type ctxKey string

const configCtxKey ctxKey = "config"

func NewRootCommand() *cobra.Command {
	var configPath string
	var server string
	var port int
	var retries int
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "tftpc",
		Short:         "tftpc is a minimal TFTP client",
		Long:          `tftpc downloads files from and uploads files to a TFTP server (RFC 1350, octet mode, one block in flight).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.Server = server
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("retries") {
				cfg.Retries = retries
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			configureLogger(cfg.LogLevel)

			cmd.SetContext(context.WithValue(cmd.Context(), configCtxKey, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (TOML)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "TFTP server host or host:port")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "TFTP server port")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "Resend the last packet this often after a timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(GetCommand())
	rootCmd.AddCommand(PutCommand())
	rootCmd.AddCommand(ConfigCommand())

	return rootCmd
}

func configureLogger(level string) {
	log.SetFormatter(&log.TextFormatter{
		ForceColors: true,
	})

	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.WithError(err).Warn("Invalid log level, defaulting to info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func getConfig(cmd *cobra.Command) *config.Config {
	if v := cmd.Context().Value(configCtxKey); v != nil {
		if cfg, ok := v.(*config.Config); ok {
			return cfg
		}
	}
	return nil
}

package cli

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Pablu23/tftpc/internal/client"
	"github.com/Pablu23/tftpc/internal/metrics"
)

func GetCommand() *cobra.Command {
	var timeout time.Duration
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "get <remote> [local]",
		Short: "Download a file from the TFTP server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := args[0]
			local := filepath.Base(remote)
			if len(args) == 2 {
				local = args[1]
			}

			c, collector, err := newClient(cmd, func(o *client.Options) {
				if cmd.Flags().Changed("timeout") {
					o.DownloadTimeout = timeout
				}
			})
			if err != nil {
				return err
			}

			res, err := c.Download(remote, local)
			if err != nil {
				return errors.Wrapf(err, "download of %s failed", remote)
			}
			report(res, local, collector, showMetrics)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Wait for each DATA packet at most this long, 0 waits forever")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print packet counters after the transfer")
	return cmd
}

func PutCommand() *cobra.Command {
	var timeout time.Duration
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "put <local> [remote]",
		Short: "Upload a file to the TFTP server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := args[0]
			remote := filepath.Base(local)
			if len(args) == 2 {
				remote = args[1]
			}

			c, collector, err := newClient(cmd, func(o *client.Options) {
				if cmd.Flags().Changed("timeout") {
					o.UploadTimeout = timeout
				}
			})
			if err != nil {
				return err
			}

			res, err := c.Upload(local, remote)
			if err != nil {
				return errors.Wrapf(err, "upload of %s failed", local)
			}
			report(res, remote, collector, showMetrics)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Wait for each ACK at most this long, overrides upload_timeout")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print packet counters after the transfer")
	return cmd
}

func newClient(cmd *cobra.Command, opts ...func(*client.Options)) (*client.Client, *metrics.Collector, error) {
	cfg := getConfig(cmd)
	if cfg == nil {
		return nil, nil, errors.New("config unavailable")
	}

	collector := metrics.NewCollector("")
	all := append([]func(*client.Options){
		cfg.ClientOptions(),
		func(o *client.Options) { o.Metrics = collector },
	}, opts...)

	c, err := client.New(cfg.Server, all...)
	if err != nil {
		return nil, nil, err
	}
	return c, collector, nil
}

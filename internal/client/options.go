package client

import (
	"time"

	"github.com/Pablu23/tftpc/internal/common"
	"github.com/Pablu23/tftpc/internal/metrics"
)

type Options struct {
	Port int
	Mode string
	// UploadTimeout bounds every wait for an ACK.
	UploadTimeout time.Duration
	// DownloadTimeout bounds every wait for DATA, zero waits forever.
	DownloadTimeout time.Duration
	// Retries is how often the last packet is resent after a timeout
	// before the transfer is aborted.
	Retries int
	Metrics *metrics.Collector
}

func NewDefaultOptions() *Options {
	return &Options{
		Port:            common.DefaultPort,
		Mode:            common.DefaultMode,
		UploadTimeout:   5 * time.Second,
		DownloadTimeout: 0,
		Retries:         0,
	}
}

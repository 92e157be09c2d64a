package client

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	DirectionDownload = "download"
	DirectionUpload   = "upload"
)

// Client transfers files with one TFTP server. It holds no per-transfer
// state, every Download and Upload runs in its own session.
type Client struct {
	server  *net.UDPAddr
	options *Options
}

// Result describes a finished transfer. It is returned on failure too,
// holding whatever was exchanged before the abort.
type Result struct {
	Transfer   string
	Direction  string
	Blocks     int
	Bytes      int64
	Duplicates int
	// Digest is the BLAKE2b-256 sum of the payload written or sent.
	Digest  []byte
	Peer    *net.UDPAddr
	Elapsed time.Duration
}

// New resolves server, which may carry its own port; otherwise
// Options.Port is used.
func New(server string, opts ...func(*Options)) (*Client, error) {
	options := NewDefaultOptions()

	for _, opt := range opts {
		opt(options)
	}

	if options.Retries < 0 {
		return nil, errors.Errorf("retries must not be negative, got %d", options.Retries)
	}

	address := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		address = net.JoinHostPort(server, strconv.Itoa(options.Port))
	}

	udpAddr, err := net.ResolveUDPAddr("udp4", address)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve server %q", server)
	}

	return &Client{
		server:  udpAddr,
		options: options,
	}, nil
}

func (c *Client) Server() *net.UDPAddr {
	return c.server
}

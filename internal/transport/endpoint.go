// Package transport owns the UDP socket of a single TFTP transfer.
package transport

import (
	"net"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Pablu23/tftpc/internal/common"
)

// Endpoint is one local UDP port. The first datagram it receives binds the
// remote transfer ID, see Peer.
type Endpoint struct {
	conn *net.UDPConn
	peer *net.UDPAddr
	buf  []byte
}

// Listen opens an IPv4 socket on an ephemeral port.
func Listen() (*Endpoint, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, errors.Wrap(err, "could not open UDP socket")
	}
	return &Endpoint{
		conn: conn,
		buf:  make([]byte, common.ReceiveBufferSize),
	}, nil
}

func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Peer returns the source of the first received datagram, or nil.
func (e *Endpoint) Peer() *net.UDPAddr {
	return e.peer
}

func (e *Endpoint) Send(bytes []byte, addr *net.UDPAddr) error {
	if _, err := e.conn.WriteToUDP(bytes, addr); err != nil {
		return errors.Wrapf(err, "could not write %d bytes to %v", len(bytes), addr)
	}
	return nil
}

// Receive waits for one datagram. A timeout of zero blocks without bound,
// otherwise expiry is reported as common.ErrTimeout.
func (e *Endpoint) Receive(timeout time.Duration) ([]byte, *net.UDPAddr, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := e.conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, errors.Wrap(err, "could not set read deadline")
	}

	n, addr, err := e.conn.ReadFromUDP(e.buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil, errors.Wrapf(common.ErrTimeout, "no datagram within %v", timeout)
		}
		return nil, nil, errors.Wrap(err, "could not read UDP datagram")
	}

	if e.peer == nil {
		e.peer = addr
		log.WithField("Peer", addr.String()).Debug("Bound transfer ID")
	}

	bytes := make([]byte, n)
	copy(bytes, e.buf[:n])
	return bytes, addr, nil
}

func (e *Endpoint) Close() error {
	return e.conn.Close()
}

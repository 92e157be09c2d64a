package client

import (
	"hash"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/Pablu23/tftpc/internal/common"
	"github.com/Pablu23/tftpc/internal/metrics"
	"github.com/Pablu23/tftpc/internal/transport"
)

// session is the state of one transfer. It exclusively owns its endpoint
// and is torn down by close on every exit path.
type session struct {
	direction string
	server    *net.UDPAddr
	endpoint  *transport.Endpoint
	timeout   time.Duration
	retries   int
	metrics   *metrics.Collector
	log       *log.Entry

	// last packet sent, resent on timeout when retries are allowed
	last   []byte
	lastTo *net.UDPAddr

	digest  hash.Hash
	result  *Result
	started time.Time
}

func (c *Client) newSession(direction string, file string, timeout time.Duration) (*session, error) {
	endpoint, err := transport.Listen()
	if err != nil {
		return nil, err
	}

	digest, err := blake2b.New256(nil)
	if err != nil {
		endpoint.Close()
		return nil, errors.Wrap(err, "could not create digest")
	}

	id := uuid.New().String()
	return &session{
		direction: direction,
		server:    c.server,
		endpoint:  endpoint,
		timeout:   timeout,
		retries:   c.options.Retries,
		metrics:   c.options.Metrics,
		log: log.WithFields(log.Fields{
			"Transfer":  id,
			"Direction": direction,
			"File":      file,
			"Server":    c.server.String(),
		}),
		digest:  digest,
		result:  &Result{Transfer: id, Direction: direction},
		started: time.Now(),
	}, nil
}

func (s *session) send(bytes []byte, to *net.UDPAddr) error {
	if err := s.endpoint.Send(bytes, to); err != nil {
		return err
	}
	s.last = bytes
	s.lastTo = to
	op, _, _ := common.DecodeHeader(bytes)
	s.metrics.ObservePacketSend(op.String())
	return nil
}

// receive waits for the next datagram, resending the last packet on
// timeout while retries remain.
func (s *session) receive() ([]byte, *net.UDPAddr, error) {
	for attempt := 0; ; attempt++ {
		bytes, from, err := s.endpoint.Receive(s.timeout)
		if err == nil {
			label := "MALFORMED"
			if op, _, err := common.DecodeHeader(bytes); err == nil {
				label = op.String()
			}
			s.metrics.ObservePacketReceive(label)
			return bytes, from, nil
		}
		if !errors.Is(err, common.ErrTimeout) {
			return nil, nil, err
		}

		s.metrics.ObserveTimeout()
		if attempt >= s.retries || s.last == nil {
			return nil, nil, err
		}

		s.log.WithField("Attempt", attempt+1).Warn("Timed out, resending last packet")
		if err := s.endpoint.Send(s.last, s.lastTo); err != nil {
			return nil, nil, err
		}
		s.metrics.ObserveRetransmit()
	}
}

func (s *session) recordPayload(payload []byte) {
	s.digest.Write(payload)
	s.result.Blocks++
	s.result.Bytes += int64(len(payload))
	s.metrics.ObservePayload(s.direction, len(payload))
}

// finish completes the Result and reports the outcome.
func (s *session) finish(err error) (*Result, error) {
	s.result.Digest = s.digest.Sum(nil)
	s.result.Peer = s.endpoint.Peer()
	s.result.Elapsed = time.Since(s.started)
	s.metrics.ObserveTransfer(s.direction, err == nil)

	entry := s.log.WithFields(log.Fields{
		"Blocks":  s.result.Blocks,
		"Bytes":   s.result.Bytes,
		"Elapsed": s.result.Elapsed,
	})
	if err != nil {
		entry.WithError(err).Error("Transfer failed")
		return s.result, err
	}
	entry.Info("Transfer complete")
	return s.result, nil
}

func (s *session) close() {
	if err := s.endpoint.Close(); err != nil {
		s.log.WithError(err).Error("Could not close socket")
	}
}

// expectAck checks that bytes is the ACK for block.
func expectAck(bytes []byte, block uint16) error {
	pck, err := common.Decode(bytes)
	if err != nil {
		return err
	}

	switch p := pck.(type) {
	case *common.Ack:
		if p.Block != block {
			return errors.Wrapf(common.ErrProtocolViolation, "received ACK %d, expected ACK %d", p.Block, block)
		}
		return nil
	case *common.Error:
		return p.Err()
	default:
		return errors.Wrapf(common.ErrProtocolViolation, "received %v, expected ACK %d", pck.Opcode(), block)
	}
}

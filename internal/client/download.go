package client

import (
	"io"
	"os"

	"github.com/kelindar/bitmap"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Pablu23/tftpc/internal/common"
)

// Download reads remote from the server into the file local. On any failure
// local is removed so no partial file is left behind.
func (c *Client) Download(remote string, local string) (*Result, error) {
	request, err := common.EncodeRequest(common.RRQ, remote, c.options.Mode)
	if err != nil {
		return nil, err
	}

	s, err := c.newSession(DirectionDownload, remote, c.options.DownloadTimeout)
	if err != nil {
		return nil, err
	}
	defer s.close()

	file, err := os.Create(local)
	if err != nil {
		return s.finish(errors.Wrapf(err, "could not create %s", local))
	}

	err = s.download(request, file)
	if closeErr := file.Close(); closeErr != nil && err == nil {
		err = errors.Wrapf(closeErr, "could not close %s", local)
	}
	if err != nil {
		if rmErr := os.Remove(local); rmErr != nil {
			s.log.WithError(rmErr).WithField("Path", local).Error("Could not remove partial File")
		}
	}

	return s.finish(err)
}

func (s *session) download(request []byte, w io.Writer) error {
	if err := s.send(request, s.server); err != nil {
		return err
	}

	expected := uint16(1)
	// block numbers accepted since the counter last wrapped
	var accepted bitmap.Bitmap

	for {
		bytes, from, err := s.receive()
		if err != nil {
			return errors.Wrapf(err, "waiting for DATA %d", expected)
		}

		pck, err := common.Decode(bytes)
		if err != nil {
			return err
		}

		switch p := pck.(type) {
		case *common.Data:
			if p.Block == expected {
				if _, err := w.Write(p.Payload); err != nil {
					return errors.Wrapf(err, "could not write block %d", p.Block)
				}
				s.recordPayload(p.Payload)
				accepted.Set(uint32(p.Block))
				expected++
				if expected == 0 {
					accepted.Clear()
				}
			} else if accepted.Contains(uint32(p.Block)) {
				s.result.Duplicates++
				s.metrics.ObserveDuplicate()
				s.log.WithField("Block", p.Block).Debug("Duplicate DATA, not written")
			} else {
				s.log.WithFields(log.Fields{
					"Block":    p.Block,
					"Expected": expected,
				}).Warn("Out of order DATA, not written")
			}

			if err := s.send(common.EncodeAck(p.Block), from); err != nil {
				return err
			}
			s.log.WithField("Block", p.Block).Debug("Sent ACK")

			if len(bytes) < common.MaxPacketSize {
				return nil
			}
		case *common.Error:
			return p.Err()
		default:
			return errors.Wrapf(common.ErrProtocolViolation, "received %v while waiting for DATA %d", pck.Opcode(), expected)
		}
	}
}

package client

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Pablu23/tftpc/internal/common"
)

// Upload writes the file local to the server as remote.
func (c *Client) Upload(local string, remote string) (*Result, error) {
	request, err := common.EncodeRequest(common.WRQ, remote, c.options.Mode)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(local)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", local)
	}

	s, err := c.newSession(DirectionUpload, remote, c.options.UploadTimeout)
	if err != nil {
		file.Close()
		return nil, err
	}
	defer s.close()
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			s.log.WithError(err).Error("Could not close File")
		}
	}(file)

	return s.finish(s.upload(request, file))
}

func (s *session) upload(request []byte, r io.Reader) error {
	if err := s.send(request, s.server); err != nil {
		return err
	}

	bytes, peer, err := s.receive()
	if err != nil {
		return errors.Wrap(err, "waiting for initial ACK")
	}
	if err := expectAck(bytes, 0); err != nil {
		return err
	}

	buf := make([]byte, common.BlockSize)
	block := uint16(1)
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrapf(err, "could not read block %d", block)
		}
		// also true for the empty block after a file of exactly n*BlockSize
		last := n < common.BlockSize

		if err := s.send(common.EncodeData(block, buf[:n]), peer); err != nil {
			return err
		}
		s.recordPayload(buf[:n])
		s.log.WithField("Block", block).Debug("Sent DATA")

		bytes, _, err := s.receive()
		if err != nil {
			return errors.Wrapf(err, "waiting for ACK %d", block)
		}
		if err := expectAck(bytes, block); err != nil {
			return err
		}

		block++
		if last {
			return nil
		}
	}
}

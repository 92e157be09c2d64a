package common

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEncoding          = errors.New("invalid request encoding")
	ErrMalformedPacket   = errors.New("malformed packet")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrTimeout           = errors.New("timed out waiting for reply")
)

// ServerError is reported when the peer answers with an ERROR packet.
type ServerError struct {
	Code    ErrorCode
	Message string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	return fmt.Sprintf("server error %d: %s", uint16(e.Code), msg)
}

package common

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// Packet is one of ReadRequest, WriteRequest, Data, Ack or Error.
type Packet interface {
	Opcode() Opcode
	ToBytes() ([]byte, error)
}

type ReadRequest struct {
	Filename string
	Mode     string
}

type WriteRequest struct {
	Filename string
	Mode     string
}

type Data struct {
	Block   uint16
	Payload []byte
}

type Ack struct {
	Block uint16
}

type Error struct {
	Code    ErrorCode
	Message string
}

func (*ReadRequest) Opcode() Opcode  { return RRQ }
func (*WriteRequest) Opcode() Opcode { return WRQ }
func (*Data) Opcode() Opcode         { return DATA }
func (*Ack) Opcode() Opcode          { return ACK }
func (*Error) Opcode() Opcode        { return ERROR }

func (pck *ReadRequest) ToBytes() ([]byte, error) {
	return EncodeRequest(RRQ, pck.Filename, pck.Mode)
}

func (pck *WriteRequest) ToBytes() ([]byte, error) {
	return EncodeRequest(WRQ, pck.Filename, pck.Mode)
}

func (pck *Data) ToBytes() ([]byte, error) {
	return EncodeData(pck.Block, pck.Payload), nil
}

func (pck *Ack) ToBytes() ([]byte, error) {
	return EncodeAck(pck.Block), nil
}

func (pck *Error) ToBytes() ([]byte, error) {
	return EncodeError(pck.Code, pck.Message), nil
}

// Err converts a received ERROR packet into a *ServerError.
func (pck *Error) Err() error {
	return &ServerError{Code: pck.Code, Message: pck.Message}
}

// EncodeRequest builds an RRQ or WRQ: opcode | filename | 0 | mode | 0.
func EncodeRequest(op Opcode, filename string, mode string) ([]byte, error) {
	if op != RRQ && op != WRQ {
		return nil, errors.Wrapf(ErrEncoding, "opcode %v is not a request", op)
	}
	if strings.IndexByte(filename, 0) >= 0 || strings.IndexByte(mode, 0) >= 0 {
		return nil, errors.Wrapf(ErrEncoding, "filename %q or mode %q contains NUL", filename, mode)
	}

	arr := make([]byte, 2, 2+len(filename)+1+len(mode)+1)
	binary.BigEndian.PutUint16(arr[0:2], uint16(op))
	arr = append(arr, filename...)
	arr = append(arr, 0)
	arr = append(arr, mode...)
	arr = append(arr, 0)
	return arr, nil
}

// EncodeData does not check the payload length, callers keep it within BlockSize.
func EncodeData(block uint16, payload []byte) []byte {
	arr := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(arr[0:2], uint16(DATA))
	binary.BigEndian.PutUint16(arr[2:4], block)
	copy(arr[HeaderSize:], payload)
	return arr
}

func EncodeAck(block uint16) []byte {
	arr := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(arr[0:2], uint16(ACK))
	binary.BigEndian.PutUint16(arr[2:4], block)
	return arr
}

func EncodeError(code ErrorCode, message string) []byte {
	arr := make([]byte, HeaderSize, HeaderSize+len(message)+1)
	binary.BigEndian.PutUint16(arr[0:2], uint16(ERROR))
	binary.BigEndian.PutUint16(arr[2:4], uint16(code))
	arr = append(arr, message...)
	arr = append(arr, 0)
	return arr
}

// DecodeHeader reads opcode and block number. DATA and ACK need the full
// four byte header, anything else only needs the opcode.
func DecodeHeader(bytes []byte) (Opcode, uint16, error) {
	if len(bytes) < 2 {
		return 0, 0, errors.Wrapf(ErrMalformedPacket, "%d byte datagram has no opcode", len(bytes))
	}
	op := Opcode(binary.BigEndian.Uint16(bytes[0:2]))
	if len(bytes) < HeaderSize {
		if op == DATA || op == ACK {
			return op, 0, errors.Wrapf(ErrMalformedPacket, "%v packet of %d bytes", op, len(bytes))
		}
		return op, 0, nil
	}
	return op, binary.BigEndian.Uint16(bytes[2:4]), nil
}

// DecodeError reads the code and message of an ERROR packet. A missing
// terminator is tolerated, the message then runs to the end of the datagram.
func DecodeError(bytes []byte) (ErrorCode, string, error) {
	op, code, err := DecodeHeader(bytes)
	if err != nil {
		return 0, "", err
	}
	if op != ERROR {
		return 0, "", errors.Wrapf(ErrProtocolViolation, "expected ERROR, got %v", op)
	}
	if len(bytes) < HeaderSize {
		return NotDefined, "", nil
	}
	msg := bytes[HeaderSize:]
	if i := indexNul(msg); i >= 0 {
		msg = msg[:i]
	}
	return ErrorCode(code), string(msg), nil
}

// Decode parses a datagram into its packet variant.
func Decode(bytes []byte) (Packet, error) {
	op, block, err := DecodeHeader(bytes)
	if err != nil {
		return nil, err
	}

	switch op {
	case RRQ, WRQ:
		filename, mode, err := decodeRequest(bytes[2:])
		if err != nil {
			return nil, err
		}
		if op == RRQ {
			return &ReadRequest{Filename: filename, Mode: mode}, nil
		}
		return &WriteRequest{Filename: filename, Mode: mode}, nil
	case DATA:
		return &Data{Block: block, Payload: bytes[HeaderSize:]}, nil
	case ACK:
		return &Ack{Block: block}, nil
	case ERROR:
		code, msg, err := DecodeError(bytes)
		if err != nil {
			return nil, err
		}
		return &Error{Code: code, Message: msg}, nil
	default:
		return nil, errors.Wrapf(ErrProtocolViolation, "unknown opcode %d", uint16(op))
	}
}

func decodeRequest(body []byte) (string, string, error) {
	i := indexNul(body)
	if i < 0 {
		return "", "", errors.Wrap(ErrMalformedPacket, "request filename is not terminated")
	}
	filename := string(body[:i])
	rest := body[i+1:]
	j := indexNul(rest)
	if j < 0 {
		return "", "", errors.Wrap(ErrMalformedPacket, "request mode is not terminated")
	}
	return filename, string(rest[:j]), nil
}

func indexNul(b []byte) int {
	return bytes.IndexByte(b, 0)
}

package common

const (
	DefaultPort = 6969
	DefaultMode = "octet"
)

const (
	HeaderSize    int = 2 + 2
	BlockSize     int = 512
	MaxPacketSize     = HeaderSize + BlockSize
	// ReceiveBufferSize is larger than any standard TFTP datagram.
	ReceiveBufferSize = 1024
)

type Opcode uint16

const (
	RRQ   Opcode = 1
	WRQ   Opcode = 2
	DATA  Opcode = 3
	ACK   Opcode = 4
	ERROR Opcode = 5
)

func (op Opcode) String() string {
	switch op {
	case RRQ:
		return "RRQ"
	case WRQ:
		return "WRQ"
	case DATA:
		return "DATA"
	case ACK:
		return "ACK"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type ErrorCode uint16

// RFC 1350 error codes
const (
	NotDefined ErrorCode = iota
	FileNotFound
	AccessViolation
	DiskFull
	IllegalOperation
	UnknownTransferID
	FileAlreadyExists
	NoSuchUser
)

func (code ErrorCode) String() string {
	switch code {
	case NotDefined:
		return "Not defined"
	case FileNotFound:
		return "File not found"
	case AccessViolation:
		return "Access violation"
	case DiskFull:
		return "Disk full or allocation exceeded"
	case IllegalOperation:
		return "Illegal TFTP operation"
	case UnknownTransferID:
		return "Unknown transfer ID"
	case FileAlreadyExists:
		return "File already exists"
	case NoSuchUser:
		return "No such user"
	default:
		return "Unknown error"
	}
}

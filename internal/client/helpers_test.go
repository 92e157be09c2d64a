package client

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Pablu23/tftpc/internal/common"
)

// fakeServer is one scripted UDP socket on the loopback interface.
type fakeServer struct {
	conn *net.UDPConn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return &fakeServer{conn: conn}
}

func (f *fakeServer) port() int {
	return f.conn.LocalAddr().(*net.UDPAddr).Port
}

func (f *fakeServer) read() (common.Packet, []byte, *net.UDPAddr, error) {
	buf := make([]byte, common.ReceiveBufferSize)
	f.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	n, addr, err := f.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, nil, err
	}
	pck, err := common.Decode(buf[:n])
	if err != nil {
		return nil, nil, nil, err
	}
	return pck, buf[:n], addr, nil
}

func (f *fakeServer) write(bytes []byte, to *net.UDPAddr) error {
	_, err := f.conn.WriteToUDP(bytes, to)
	return err
}

// silent reports whether nothing arrives within d.
func (f *fakeServer) silent(d time.Duration) bool {
	buf := make([]byte, common.ReceiveBufferSize)
	f.conn.SetReadDeadline(time.Now().Add(d))
	_, _, err := f.conn.ReadFromUDP(buf)
	return err != nil
}

func (f *fakeServer) readRequest(op common.Opcode, filename string) (*net.UDPAddr, error) {
	pck, _, addr, err := f.read()
	if err != nil {
		return nil, err
	}
	switch p := pck.(type) {
	case *common.ReadRequest:
		if op != common.RRQ || p.Filename != filename || p.Mode != common.DefaultMode {
			return nil, fmt.Errorf("unexpected RRQ %+v", p)
		}
	case *common.WriteRequest:
		if op != common.WRQ || p.Filename != filename || p.Mode != common.DefaultMode {
			return nil, fmt.Errorf("unexpected WRQ %+v", p)
		}
	default:
		return nil, fmt.Errorf("expected %v, got %v", op, pck.Opcode())
	}
	return addr, nil
}

func (f *fakeServer) readAck() (uint16, error) {
	pck, _, _, err := f.read()
	if err != nil {
		return 0, err
	}
	ack, ok := pck.(*common.Ack)
	if !ok {
		return 0, fmt.Errorf("expected ACK, got %v", pck.Opcode())
	}
	return ack.Block, nil
}

func (f *fakeServer) readData() (*common.Data, error) {
	pck, _, _, err := f.read()
	if err != nil {
		return nil, err
	}
	data, ok := pck.(*common.Data)
	if !ok {
		return nil, fmt.Errorf("expected DATA, got %v", pck.Opcode())
	}
	return data, nil
}

func newTestClient(t *testing.T, srv *fakeServer, opts ...func(*Options)) *Client {
	t.Helper()
	base := func(o *Options) {
		o.Port = srv.port()
		o.UploadTimeout = 2 * time.Second
		o.DownloadTimeout = 2 * time.Second
	}
	c, err := New("127.0.0.1", append([]func(*Options){base}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + i/251)
	}
	return b
}

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func chunks(data []byte) [][]byte {
	var out [][]byte
	for len(data) >= common.BlockSize {
		out = append(out, data[:common.BlockSize])
		data = data[common.BlockSize:]
	}
	return append(out, data)
}

func run(script func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- script() }()
	return done
}

package cli

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pin/tftp/v3"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	return root.Execute()
}

func TestPutThenGet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var mu sync.Mutex
	files := map[string][]byte{}
	written := make(chan struct{}, 1)

	server := tftp.NewServer(
		func(filename string, rf io.ReaderFrom) error {
			mu.Lock()
			data, ok := files[filename]
			mu.Unlock()
			if !ok {
				return fmt.Errorf("no %s", filename)
			}
			_, err := rf.ReadFrom(bytes.NewReader(data))
			return err
		},
		func(filename string, wt io.WriterTo) error {
			var buf bytes.Buffer
			if _, err := wt.WriteTo(&buf); err != nil {
				return err
			}
			mu.Lock()
			files[filename] = buf.Bytes()
			mu.Unlock()
			written <- struct{}{}
			return nil
		},
	)
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	go server.Serve(conn)
	t.Cleanup(server.Shutdown)
	addr := conn.LocalAddr().String()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	content := bytes.Repeat([]byte("tftp"), 300)
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "--server", addr, "put", src, "stored.txt"); err != nil {
		t.Fatalf("put: %v", err)
	}
	select {
	case <-written:
	case <-time.After(5 * time.Second):
		t.Fatal("server never stored the upload")
	}

	dst := filepath.Join(dir, "dst.txt")
	if err := execute(t, "--server", addr, "get", "--timeout", "5s", "--metrics", "stored.txt", dst); err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, got) {
		t.Errorf("got %d bytes back, want %d", len(got), len(content))
	}
}

func TestGetRequiresRemoteName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := execute(t, "get"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestConfigShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tftpc.toml")
	if err := os.WriteFile(path, []byte("port = 1069\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "--config", path, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "config", "show"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

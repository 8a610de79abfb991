package prologix

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

// startResponder binds a loopback UDP socket that answers the first inbound
// datagram with the given replies, in order. It stands in for one or more
// controllers sharing a segment.
func startResponder(t *testing.T, replies ...[]byte) *net.UDPAddr {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 64)
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		for _, reply := range replies {
			conn.WriteToUDP(reply, addr)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

// testClient aims discovery at a loopback responder instead of the real
// broadcast address.
func testClient(t *testing.T, responder *net.UDPAddr) *Client {
	t.Helper()
	return NewClient(
		WithLocalAddress("127.0.0.1:0"),
		WithBroadcastAddress("127.0.0.1"),
		WithPort(responder.Port),
		WithTimeout(300*time.Millisecond),
	)
}

func TestDiscoverFindsControllers(t *testing.T) {
	replyA := buildReply(nil)
	replyB := buildReply(func(b []byte) {
		copy(b[20:24], []byte{192, 168, 1, 43})
		copy(b[44:], []byte("second\x00"))
	})

	responder := startResponder(t, replyA, replyB)
	client := testClient(t, responder)

	controllers, err := client.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(controllers) != 2 {
		t.Fatalf("got %d controllers, want 2", len(controllers))
	}

	seen := make(map[string]bool)
	for _, info := range controllers {
		seen[info.IPAddr.String()] = true
	}
	if !seen["192.168.1.42"] || !seen["192.168.1.43"] {
		t.Errorf("addresses=%v", seen)
	}
}

func TestDiscoverDeduplicatesByAddress(t *testing.T) {
	first := buildReply(func(b []byte) { copy(b[44:], []byte("first\x00")) })
	second := buildReply(func(b []byte) { copy(b[44:], []byte("second\x00")) })

	responder := startResponder(t, first, second)
	client := testClient(t, responder)

	controllers, err := client.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(controllers) != 1 {
		t.Fatalf("got %d controllers, want 1", len(controllers))
	}
	// Last reply for an address wins
	if got := controllers[0].Name(); got != "second" {
		t.Errorf("name=%q want %q", got, "second")
	}
}

func TestDiscoverIgnoresShortDatagrams(t *testing.T) {
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF} // well under the 24-byte floor
	responder := startResponder(t, garbage, buildReply(nil))
	client := testClient(t, responder)

	controllers, err := client.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(controllers) != 1 {
		t.Fatalf("got %d controllers, want 1", len(controllers))
	}
	if client.Metrics().ShortDatagramsDropped.Value() != 1 {
		t.Errorf("short datagrams dropped=%d want 1", client.Metrics().ShortDatagramsDropped.Value())
	}
}

func TestDiscoverAbortsOnBadMagic(t *testing.T) {
	bad := buildReply(func(b []byte) { b[0] = 0x13 })
	responder := startResponder(t, bad, buildReply(nil))
	client := testClient(t, responder)

	_, err := client.Discover(context.Background())
	if !IsParseError(err) {
		t.Fatalf("err=%v want parse error", err)
	}
}

func TestDiscoverAbortsOnTruncatedReply(t *testing.T) {
	// Long enough to inspect, too short to be a reply
	truncated := buildReply(nil)[:40]
	responder := startResponder(t, truncated, buildReply(nil))
	client := testClient(t, responder)

	_, err := client.Discover(context.Background())
	if !IsParseError(err) {
		t.Fatalf("err=%v want parse error", err)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	responder := startResponder(t) // answers nothing
	client := testClient(t, responder)

	start := time.Now()
	_, err := client.Discover(context.Background(), WithDiscoveryTimeout(0))
	elapsed := time.Since(start)

	if !IsNotFound(err) {
		t.Fatalf("err=%v want not-found", err)
	}
	// A zero window must not hang; one receive interval is the ceiling
	if elapsed > 200*time.Millisecond {
		t.Errorf("elapsed=%s, zero window took too long", elapsed)
	}
}

func TestDiscoverConcurrent(t *testing.T) {
	replyA := buildReply(nil)
	replyB := buildReply(func(b []byte) {
		copy(b[20:24], []byte{10, 0, 0, 7})
	})

	responderA := startResponder(t, replyA)
	responderB := startResponder(t, replyB)

	type result struct {
		controllers []*ControllerInfo
		err         error
	}

	run := func(responder *net.UDPAddr, out chan<- result) {
		client := testClient(t, responder)
		controllers, err := client.Discover(context.Background())
		out <- result{controllers, err}
	}

	chA := make(chan result, 1)
	chB := make(chan result, 1)
	go run(responderA, chA)
	go run(responderB, chB)

	resA, resB := <-chA, <-chB
	if resA.err != nil || resB.err != nil {
		t.Fatalf("errors: %v / %v", resA.err, resB.err)
	}
	if len(resA.controllers) != 1 || resA.controllers[0].IPAddr.String() != "192.168.1.42" {
		t.Errorf("client A results: %v", resA.controllers)
	}
	if len(resB.controllers) != 1 || resB.controllers[0].IPAddr.String() != "10.0.0.7" {
		t.Errorf("client B results: %v", resB.controllers)
	}
}

func TestDiscoverContextCanceled(t *testing.T) {
	responder := startResponder(t)
	client := testClient(t, responder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Discover(ctx, WithDiscoveryTimeout(time.Second))
	if err != context.Canceled {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestReboot(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		received <- buf[:n]
	}()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	client := NewClient(
		WithLocalAddress("127.0.0.1:0"),
		WithPort(port),
	)

	if err := client.Reboot(context.Background(), net.IPv4(127, 0, 0, 1), RebootBootloader); err != nil {
		t.Fatalf("reboot: %v", err)
	}

	select {
	case req := <-received:
		if len(req) != 16 {
			t.Fatalf("request length=%d want 16", len(req))
		}
		if req[0] != Magic || req[1] != byte(CommandReboot) {
			t.Errorf("prefix=% 02X", req[:2])
		}
		if !bytes.Equal(req[12:], []byte{0, 0, 0, 0}) {
			t.Errorf("trailer=% 02X want bootloader code and padding", req[12:])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reboot request never arrived")
	}

	if client.Metrics().RebootsSent.Value() != 1 {
		t.Errorf("reboots sent=%d want 1", client.Metrics().RebootsSent.Value())
	}
}

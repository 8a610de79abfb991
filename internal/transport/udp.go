// Package transport provides the UDP endpoint used by the Prologix protocol client
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Identify replies are 76 bytes; 512 leaves generous headroom.
const receiveBufferSize = 512

// UDPEndpoint is a short-lived UDP socket. Each discovery or reboot call
// opens its own endpoint on an ephemeral port and closes it when done, so
// concurrent calls never share state.
type UDPEndpoint struct {
	localAddr    string
	mu           sync.RWMutex
	conn         *net.UDPConn
	writeTimeout time.Duration
	closed       bool
}

// NewUDPEndpoint creates an endpoint. localAddr may be empty, in which case
// the endpoint binds to all interfaces on an ephemeral port.
func NewUDPEndpoint(localAddr string) *UDPEndpoint {
	return &UDPEndpoint{
		localAddr:    localAddr,
		writeTimeout: 3 * time.Second,
	}
}

// Open binds the UDP socket
func (e *UDPEndpoint) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil {
		return nil
	}

	var addr *net.UDPAddr
	if e.localAddr != "" {
		var err error
		addr, err = net.ResolveUDPAddr("udp4", e.localAddr)
		if err != nil {
			return fmt.Errorf("resolve local address: %w", err)
		}
	}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("listen UDP: %w", err)
	}

	e.conn = conn
	e.closed = false
	return nil
}

// Close closes the endpoint
func (e *UDPEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn == nil || e.closed {
		return nil
	}

	e.closed = true
	return e.conn.Close()
}

// LocalAddr returns the bound local address, or nil before Open
func (e *UDPEndpoint) LocalAddr() net.Addr {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.conn == nil {
		return nil
	}
	return e.conn.LocalAddr()
}

// IsClosed returns true once Close has been called
func (e *UDPEndpoint) IsClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// Send sends one datagram to addr
func (e *UDPEndpoint) Send(ctx context.Context, addr *net.UDPAddr, data []byte) error {
	e.mu.RLock()
	conn := e.conn
	writeTimeout := e.writeTimeout
	e.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("endpoint not open")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeTimeout)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	n, err := conn.WriteToUDP(data, addr)
	if err != nil {
		return fmt.Errorf("write UDP: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("partial write: %d of %d bytes", n, len(data))
	}

	return nil
}

// Broadcast sends one datagram to bcastAddr:port. An empty bcastAddr means
// the network-limited broadcast address 255.255.255.255.
func (e *UDPEndpoint) Broadcast(ctx context.Context, bcastAddr string, port int, data []byte) error {
	ip := net.IPv4bcast
	if bcastAddr != "" {
		ip = net.ParseIP(bcastAddr)
		if ip == nil {
			return fmt.Errorf("invalid broadcast address %q", bcastAddr)
		}
	}
	return e.Send(ctx, &net.UDPAddr{IP: ip, Port: port}, data)
}

// Receive waits up to timeout for one datagram. A timeout surfaces as a
// net.Error with Timeout() true.
func (e *UDPEndpoint) Receive(timeout time.Duration) ([]byte, *net.UDPAddr, error) {
	e.mu.RLock()
	conn := e.conn
	e.mu.RUnlock()

	if conn == nil {
		return nil, nil, fmt.Errorf("endpoint not open")
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, fmt.Errorf("set read deadline: %w", err)
	}

	buf := make([]byte, receiveBufferSize)
	n, addr, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}

	return buf[:n], addr, nil
}

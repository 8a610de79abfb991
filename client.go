package prologix

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/edgeo/drivers/prologix/internal/transport"
)

// receiveInterval bounds each receive attempt during discovery so the loop
// re-checks the overall deadline at least this often.
const receiveInterval = 100 * time.Millisecond

// Client finds and reboots Prologix GPIB-ETHERNET controllers. Every
// Discover and Reboot call opens its own UDP endpoint on an ephemeral port,
// so a single Client is safe for concurrent use and calls never interfere
// with each other.
type Client struct {
	opts    *clientOptions
	metrics *Metrics
	logger  *slog.Logger
}

// NewClient creates a new client
func NewClient(opts ...Option) *Client {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Client{
		opts:    options,
		metrics: NewMetrics(),
		logger:  options.logger,
	}
}

// Metrics returns the client metrics
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Discover broadcasts one identify request and collects replies until the
// discovery window closes. Controllers are deduplicated by IPv4 address; when
// one answers more than once within the window, the last reply wins.
//
// It returns ErrNotFound when the window elapses with no valid replies, a
// transport error when the endpoint cannot be opened or the request cannot be
// sent, and a *ParseError when a reply-sized datagram fails to decode.
// Datagrams too short to be a reply prefix are ignored.
func (c *Client) Discover(ctx context.Context, opts ...DiscoverOption) ([]*ControllerInfo, error) {
	options := c.defaultDiscoverOptions()
	for _, opt := range opts {
		opt(options)
	}

	c.metrics.DiscoverAttempts.Inc()
	c.metrics.ActiveDiscoveries.Inc()
	defer c.metrics.ActiveDiscoveries.Dec()

	ep := transport.NewUDPEndpoint(c.opts.localAddress)
	if err := ep.Open(ctx); err != nil {
		c.metrics.DiscoverFailures.Inc()
		return nil, fmt.Errorf("open endpoint: %w", err)
	}
	defer ep.Close()

	req := EncodeIdentifyRequest()
	if err := ep.Broadcast(ctx, c.opts.broadcastAddress, c.opts.port, req); err != nil {
		c.metrics.DiscoverFailures.Inc()
		return nil, fmt.Errorf("send identify: %w", err)
	}

	c.metrics.IdentifySent.Inc()
	c.metrics.BytesSent.Add(int64(len(req)))

	c.logger.Debug("identify sent",
		slog.String("local_addr", ep.LocalAddr().String()),
		slog.Duration("window", options.Timeout),
	)

	start := time.Now()
	deadline := start.Add(options.Timeout)

	found := make(map[[4]byte]*ControllerInfo)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			c.metrics.DiscoverFailures.Inc()
			return nil, ctx.Err()
		default:
		}

		data, addr, err := ep.Receive(receiveInterval)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			// Transient receive failures below the protocol layer are not
			// tied to any one reply; keep listening until the deadline.
			c.metrics.ReceiveErrors.Inc()
			c.logger.Debug("receive error", slog.String("error", err.Error()))
			continue
		}

		c.metrics.BytesReceived.Add(int64(len(data)))
		c.metrics.RecordActivity()

		if len(data) < minReplyLength {
			c.metrics.ShortDatagramsDropped.Inc()
			continue
		}

		info, err := DecodeControllerInfo(data)
		if err != nil {
			// A reply-sized datagram that fails to decode poisons the whole
			// collection run.
			c.metrics.ParseFailures.Inc()
			c.metrics.DiscoverFailures.Inc()
			return nil, err
		}

		c.metrics.RepliesAccepted.Inc()

		var key [4]byte
		copy(key[:], info.IPAddr.To4())
		if _, seen := found[key]; !seen {
			c.metrics.ControllersDiscovered.Inc()
		}
		found[key] = info

		c.logger.Debug("controller reply",
			slog.String("address", addr.String()),
			slog.String("mac", info.MAC.String()),
			slog.String("mode", info.Mode.String()),
		)
	}

	c.metrics.DiscoverLatency.Record(time.Since(start))

	if len(found) == 0 {
		c.metrics.DiscoverFailures.Inc()
		return nil, ErrNotFound
	}

	c.metrics.DiscoverSuccesses.Inc()

	controllers := make([]*ControllerInfo, 0, len(found))
	for _, info := range found {
		controllers = append(controllers, info)
	}
	return controllers, nil
}

// Reboot sends one reboot request to target and returns without waiting for
// a reply; the protocol has none. A nil error means the local stack accepted
// the datagram, not that the controller rebooted.
func (c *Client) Reboot(ctx context.Context, target net.IP, rt RebootType) error {
	ep := transport.NewUDPEndpoint(c.opts.localAddress)
	if err := ep.Open(ctx); err != nil {
		return fmt.Errorf("open endpoint: %w", err)
	}
	defer ep.Close()

	req := EncodeRebootRequest(rt)
	addr := &net.UDPAddr{IP: target, Port: c.opts.port}

	if err := ep.Send(ctx, addr, req); err != nil {
		return fmt.Errorf("send reboot: %w", err)
	}

	c.metrics.RebootsSent.Inc()
	c.metrics.BytesSent.Add(int64(len(req)))

	c.logger.Debug("reboot sent",
		slog.String("target", addr.String()),
		slog.String("type", rt.String()),
	)

	return nil
}

// Discover is a convenience wrapper around a default client
func Discover(ctx context.Context, opts ...DiscoverOption) ([]*ControllerInfo, error) {
	return NewClient().Discover(ctx, opts...)
}

// Reboot is a convenience wrapper around a default client
func Reboot(ctx context.Context, target net.IP, rt RebootType) error {
	return NewClient().Reboot(ctx, target, rt)
}

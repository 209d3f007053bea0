package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/meter-reader/internal/imaging"
)

// DialFunc opens a stream connection. net.Dial satisfies it.
type DialFunc func(network, address string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client) error

// WithDialer replaces net.Dial.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) error {
		if dial == nil {
			return fmt.Errorf("dialer is nil")
		}
		c.dial = dial
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) error {
		if log == nil {
			return fmt.Errorf("logger is nil")
		}
		c.log = log
		return nil
	}
}

// Client sends transport records over TCP.
type Client struct {
	dial DialFunc
	log  logrus.FieldLogger
	conn net.Conn
	addr string
	buf  []byte
}

// NewClient creates a disconnected client.
func NewClient(options ...Option) (*Client, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{dial: net.Dial, log: discard}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return c, nil
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Connect opens a TCP connection to a numeric IPv4 address.
//
// # Errors
//
//   - ErrAlreadyConnected if the client is connected
//   - ErrAddressParse if address is not IPv4 or port is out of range
//   - ErrSocketCreate if the socket could not be created
//   - ErrConnect for any other dial failure
func (c *Client) Connect(address string, port int) error {
	if c.conn != nil {
		return fmt.Errorf("connect %s: %w", c.addr, ErrAlreadyConnected)
	}

	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("%q is not an IPv4 address: %w", address, ErrAddressParse)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port %d: %w", port, ErrAddressParse)
	}
	addr := net.JoinHostPort(ip.To4().String(), strconv.Itoa(port))

	conn, err := c.dial("tcp4", addr)
	if err != nil {
		var sysErr *os.SyscallError
		if errors.As(err, &sysErr) && sysErr.Syscall == "socket" {
			return fmt.Errorf("%w: %w", ErrSocketCreate, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrConnect, addr, err)
	}

	c.conn = conn
	c.addr = addr
	c.log.WithField("addr", addr).Info("transport connected")
	return nil
}

// Transmit sends frame and scale as one record.
//
// The frame is validated before anything is written; a frame that is empty,
// not Width x Height, or not Channels deep fails with ErrShapeMismatch. A
// failed or partial write fails with ErrSend; the receiver has no way to
// resynchronise, so callers should Disconnect after ErrSend.
func (c *Client) Transmit(frame *imaging.Frame, scale float32) error {
	if c.conn == nil {
		return fmt.Errorf("transmit: %w", ErrNotConnected)
	}

	rec, err := NewRecord(frame, scale)
	if err != nil {
		return fmt.Errorf("transmit: %w", err)
	}
	if c.buf == nil {
		c.buf = make([]byte, 0, RecordSize)
	}
	c.buf, err = AppendRecord(c.buf[:0], rec)
	if err != nil {
		return fmt.Errorf("transmit: %w", err)
	}

	n, err := c.conn.Write(c.buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	if n != len(c.buf) {
		return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrSend, n, len(c.buf), io.ErrShortWrite)
	}

	c.log.WithFields(logrus.Fields{"bytes": n, "scale": scale}).Debug("frame sent")
	return nil
}

// Disconnect closes the connection. The client is disconnected afterwards
// even if closing reports an error.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return fmt.Errorf("disconnect: %w", ErrNotConnected)
	}
	err := c.conn.Close()
	c.conn = nil
	c.log.WithField("addr", c.addr).Info("transport disconnected")
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

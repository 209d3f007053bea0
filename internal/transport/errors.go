package transport

import "errors"

var (
	// ErrShapeMismatch is returned when a frame does not match the fixed
	// transport width, height and channel count.
	ErrShapeMismatch = errors.New("frame shape mismatch")

	// ErrRecordSize is returned when decoding a buffer of the wrong length.
	ErrRecordSize = errors.New("invalid record size")

	// ErrSocketCreate is returned when the operating system refuses a socket.
	ErrSocketCreate = errors.New("failed to create socket")

	// ErrAddressParse is returned for an address that is not a numeric IPv4
	// address or a port outside 1-65535.
	ErrAddressParse = errors.New("invalid address")

	// ErrConnect is returned when the connection cannot be established.
	ErrConnect = errors.New("connection failed")

	// ErrSend is returned when a record could not be written in full.
	ErrSend = errors.New("send failed")

	// ErrNotConnected is returned by Transmit and Disconnect on a
	// disconnected client.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected is returned by Connect on a connected client.
	ErrAlreadyConnected = errors.New("already connected")
)

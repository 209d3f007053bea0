// Package transport streams post-processed frames to a remote consumer.
//
// # Wire Format
//
// Each frame is sent as one fixed-size record with no length prefix,
// acknowledgment or retry:
//
//	offset              size        field
//	0                   PixelBytes  pixels, 1280x720x3, packed B,G,R, row-major
//	PixelBytes          4           scale value, IEEE-754 float32
//	PixelBytes+4        4           width, int32
//	PixelBytes+8        4           height, int32
//	PixelBytes+12       4           channels, int32
//
// All multi-byte fields are little-endian and there is no padding between
// fields, so a record is always RecordSize bytes. Peers on big-endian hosts
// must decode explicitly; Decode and ReadRecord do this.
//
// # Client
//
// A Client moves between two states:
//
//	Disconnected --Connect--> Connected --Disconnect--> Disconnected
//
// There is no automatic reconnect. Connect and Transmit block until the
// operating system completes the call; no timeout is applied. A Client owns
// its connection and is not safe for concurrent use.
package transport

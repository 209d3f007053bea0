package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ironsheep/meter-reader/internal/imaging"
)

// Fixed transport frame geometry.
const (
	Width    = 1280
	Height   = 720
	Channels = 3

	// PixelBytes is the size of the pixel buffer in a record.
	PixelBytes = Width * Height * Channels

	// RecordSize is the size of one encoded record.
	RecordSize = PixelBytes + 16
)

// Record is one transport frame.
type Record struct {
	Pix      []byte
	Scale    float32
	Width    int32
	Height   int32
	Channels int32
}

// NewRecord wraps frame and scale in a record without copying pixels.
//
// The frame must be exactly Width x Height with Channels samples per pixel;
// anything else fails with ErrShapeMismatch.
func NewRecord(frame *imaging.Frame, scale float32) (*Record, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame: %w", ErrShapeMismatch)
	}
	if frame.Width != Width || frame.Height != Height || frame.Channels != Channels {
		return nil, fmt.Errorf("got %dx%dx%d, want %dx%dx%d: %w",
			frame.Width, frame.Height, frame.Channels, Width, Height, Channels, ErrShapeMismatch)
	}
	return &Record{
		Pix:      frame.Pix,
		Scale:    scale,
		Width:    Width,
		Height:   Height,
		Channels: Channels,
	}, nil
}

func (r *Record) validate() error {
	if r.Width != Width || r.Height != Height || r.Channels != Channels || len(r.Pix) != PixelBytes {
		return fmt.Errorf("record %dx%dx%d with %d pixel bytes: %w",
			r.Width, r.Height, r.Channels, len(r.Pix), ErrShapeMismatch)
	}
	return nil
}

// AppendRecord appends the encoding of r to dst and returns the extended
// buffer. Passing a reused buffer sliced to zero length avoids allocation.
func AppendRecord(dst []byte, r *Record) ([]byte, error) {
	if err := r.validate(); err != nil {
		return dst, err
	}
	dst = append(dst, r.Pix...)
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(r.Scale))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Width))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Height))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Channels))
	return dst, nil
}

// Encode returns the encoding of r in a new buffer.
func Encode(r *Record) ([]byte, error) {
	return AppendRecord(make([]byte, 0, RecordSize), r)
}

// Decode parses one record from buf. The returned Pix aliases buf.
func Decode(buf []byte) (*Record, error) {
	if len(buf) != RecordSize {
		return nil, fmt.Errorf("got %d bytes, want %d: %w", len(buf), RecordSize, ErrRecordSize)
	}
	tail := buf[PixelBytes:]
	r := &Record{
		Pix:      buf[:PixelBytes],
		Scale:    math.Float32frombits(binary.LittleEndian.Uint32(tail[0:4])),
		Width:    int32(binary.LittleEndian.Uint32(tail[4:8])),
		Height:   int32(binary.LittleEndian.Uint32(tail[8:12])),
		Channels: int32(binary.LittleEndian.Uint32(tail[12:16])),
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadRecord reads exactly one record from rd.
func ReadRecord(rd io.Reader) (*Record, error) {
	buf := make([]byte, RecordSize)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return Decode(buf)
}

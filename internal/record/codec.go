package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// MaxSize is the encoded size ceiling shared by all entities.
const MaxSize = 1024

const (
	formatVersion = 1
	headerSize    = 2
	checksumSize  = 4
)

var (
	// ErrCorruptRecord is returned when bytes do not decode as the expected entity.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrRecordTooLarge is returned when an encoding exceeds its codec's MaxSize.
	ErrRecordTooLarge = errors.New("record too large")
)

// Codec converts values of one entity kind to and from bytes.
type Codec[V any] struct {
	Kind    Kind
	MaxSize int

	encode func(*encoder, V)
	decode func(*decoder) V
}

// Encode returns the binary form of v.
func (c Codec[V]) Encode(v V) []byte {
	e := newEncoder(c.Kind)
	c.encode(e, v)
	return e.finish()
}

// Decode parses data produced by Encode.
func (c Codec[V]) Decode(data []byte) (V, error) {
	var zero V
	d, err := newDecoder(c.Kind, data)
	if err != nil {
		return zero, err
	}
	v := c.decode(d)
	if err := d.finish(); err != nil {
		return zero, err
	}
	return v, nil
}

// CheckSize reports ErrRecordTooLarge if encoded is above the ceiling.
func (c Codec[V]) CheckSize(encoded []byte) error {
	if len(encoded) > c.MaxSize {
		return fmt.Errorf("%w: %s encodes to %d bytes, limit is %d",
			ErrRecordTooLarge, c.Kind, len(encoded), c.MaxSize)
	}
	return nil
}

type encoder struct {
	buf []byte
}

func newEncoder(k Kind) *encoder {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(k), formatVersion)
	return &encoder{buf: buf}
}

func (e *encoder) uint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *encoder) string(s string) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) finish() []byte {
	return binary.BigEndian.AppendUint32(e.buf, murmur3.Sum32(e.buf))
}

// decoder reads fields sequentially. The first failure sticks; later
// reads return zero values and finish reports it.
type decoder struct {
	kind Kind
	data []byte
	off  int
	err  error
}

func newDecoder(k Kind, data []byte) (*decoder, error) {
	if len(data) < headerSize+checksumSize {
		return nil, corrupt(k, "truncated to %d bytes", len(data))
	}
	body := data[:len(data)-checksumSize]
	want := binary.BigEndian.Uint32(data[len(data)-checksumSize:])
	if got := murmur3.Sum32(body); got != want {
		return nil, corrupt(k, "checksum mismatch (got %08x, want %08x)", got, want)
	}
	if Kind(body[0]) != k {
		return nil, corrupt(k, "kind byte is %d", body[0])
	}
	if body[1] != formatVersion {
		return nil, corrupt(k, "unknown format version %d", body[1])
	}
	return &decoder{kind: k, data: body, off: headerSize}, nil
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	if len(d.data)-d.off < 8 {
		d.err = corrupt(d.kind, "short integer field at offset %d", d.off)
		return 0
	}
	v := binary.BigEndian.Uint64(d.data[d.off:])
	d.off += 8
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	n, w := binary.Uvarint(d.data[d.off:])
	if w <= 0 {
		d.err = corrupt(d.kind, "bad length prefix at offset %d", d.off)
		return ""
	}
	d.off += w
	if n > uint64(len(d.data)-d.off) {
		d.err = corrupt(d.kind, "text field of %d bytes overruns record", n)
		return ""
	}
	s := string(d.data[d.off : d.off+int(n)])
	d.off += int(n)
	return s
}

func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.data) {
		return corrupt(d.kind, "%d trailing bytes", len(d.data)-d.off)
	}
	return nil
}

func corrupt(k Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrCorruptRecord, k, fmt.Sprintf(format, args...))
}

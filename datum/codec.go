// Package datum stores transform.RawSample records on disk and builds them
// from decoded images.
//
// A record file starts with a fixed header (magic + flags) followed by a
// stream of length-prefixed records, optionally zstd-compressed as a whole.
// Each record is:
//
//	uvarint channels, height, width
//	byte    flags (1 = byte payload, 2 = has label)
//	varint  label                       (only with flag 2)
//	payload channels*height*width bytes, or as many little-endian float32
package datum

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/openfluke/augment/transform"
)

const (
	flagEncoded = 1 << 0
	flagLabel   = 1 << 1
)

// ErrCorrupt marks a record or file that cannot be decoded.
var ErrCorrupt = errors.New("datum: corrupt record")

// maxElements bounds a decoded record so a corrupt header cannot request an
// enormous allocation.
const maxElements = 1 << 28

// AppendRecord appends the binary encoding of s to buf.
func AppendRecord(buf []byte, s *transform.RawSample) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return buf, err
	}
	buf = binary.AppendUvarint(buf, uint64(s.Channels))
	buf = binary.AppendUvarint(buf, uint64(s.Height))
	buf = binary.AppendUvarint(buf, uint64(s.Width))

	var flags byte
	if s.IsEncoded() {
		flags |= flagEncoded
	}
	if s.HasLabel {
		flags |= flagLabel
	}
	buf = append(buf, flags)
	if s.HasLabel {
		buf = binary.AppendVarint(buf, int64(s.Label))
	}

	if s.IsEncoded() {
		return append(buf, s.Data...), nil
	}
	for _, v := range s.FloatData {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf, nil
}

// DecodeRecord parses one record produced by AppendRecord. The returned
// sample owns its payload.
func DecodeRecord(b []byte) (*transform.RawSample, error) {
	var dims [3]uint64
	for i := range dims {
		v, n := binary.Uvarint(b)
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad dimension %d", ErrCorrupt, i)
		}
		dims[i] = v
		b = b[n:]
	}
	if _, ok := checkedSize(dims[:]...); !ok {
		return nil, fmt.Errorf("%w: dimensions %dx%dx%d too large", ErrCorrupt, dims[0], dims[1], dims[2])
	}
	if len(b) < 1 {
		return nil, fmt.Errorf("%w: missing flags", ErrCorrupt)
	}
	flags := b[0]
	b = b[1:]

	s := &transform.RawSample{Channels: int(dims[0]), Height: int(dims[1]), Width: int(dims[2])}
	if flags&flagLabel != 0 {
		v, n := binary.Varint(b)
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad label", ErrCorrupt)
		}
		s.Label = int(v)
		s.HasLabel = true
		b = b[n:]
	}

	size := s.Size()
	if flags&flagEncoded != 0 {
		if len(b) != size {
			return nil, fmt.Errorf("%w: byte payload has %d bytes, want %d", ErrCorrupt, len(b), size)
		}
		s.Data = append([]byte(nil), b...)
		return s, nil
	}
	if len(b) != 4*size {
		return nil, fmt.Errorf("%w: float payload has %d bytes, want %d", ErrCorrupt, len(b), 4*size)
	}
	s.FloatData = make([]float32, size)
	for i := range s.FloatData {
		s.FloatData[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return s, nil
}

// checkedSize multiplies dims, failing once the product exceeds maxElements.
func checkedSize(dims ...uint64) (uint64, bool) {
	total := uint64(1)
	for _, d := range dims {
		if d > maxElements || (d != 0 && total > maxElements/d) {
			return 0, false
		}
		total *= d
	}
	return total, true
}

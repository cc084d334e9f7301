package datum

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

var meanMagic = [4]byte{'L', 'M', 'E', 'A'}

// Mean is a full-resolution mean reference with its layout.
type Mean struct {
	Channels int
	Height   int
	Width    int
	Values   []float32
}

// WriteMean stores m as magic, three uint32 dimensions and little-endian
// float32 values.
func WriteMean(w io.Writer, m *Mean) error {
	if len(m.Values) != m.Channels*m.Height*m.Width {
		return fmt.Errorf("mean has %d values for %dx%dx%d", len(m.Values), m.Channels, m.Height, m.Width)
	}
	bw := bufio.NewWriter(w)
	buf := append([]byte(nil), meanMagic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Height))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Width))
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	var word [4]byte
	for _, v := range m.Values {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		if _, err := bw.Write(word[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMean loads a mean written by WriteMean.
func ReadMean(r io.Reader) (*Mean, error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: mean header: %v", ErrCorrupt, err)
	}
	if [4]byte(header[:4]) != meanMagic {
		return nil, fmt.Errorf("%w: bad mean magic %q", ErrCorrupt, header[:4])
	}
	c := binary.LittleEndian.Uint32(header[4:])
	h := binary.LittleEndian.Uint32(header[8:])
	w := binary.LittleEndian.Uint32(header[12:])
	total, ok := checkedSize(uint64(c), uint64(h), uint64(w))
	if !ok {
		return nil, fmt.Errorf("%w: mean dimensions %dx%dx%d too large", ErrCorrupt, c, h, w)
	}

	raw := make([]byte, 4*total)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: mean values: %v", ErrCorrupt, err)
	}
	m := &Mean{Channels: int(c), Height: int(h), Width: int(w), Values: make([]float32, total)}
	for i := range m.Values {
		m.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return m, nil
}

// Float64 returns the values widened for float64 transformers.
func (m *Mean) Float64() []float64 {
	out := make([]float64, len(m.Values))
	for i, v := range m.Values {
		out[i] = float64(v)
	}
	return out
}

package datum

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/openfluke/augment/transform"
)

var fileMagic = [4]byte{'L', 'D', 'A', 'T'}

const (
	fileVersion        = 1
	fileFlagCompressed = 1 << 0
)

// maxRecordBytes bounds a single record read from a file.
const maxRecordBytes = 4*maxElements + 64

// Writer streams records into a record file.
type Writer struct {
	bw      *bufio.Writer
	enc     *zstd.Encoder
	out     io.Writer
	scratch []byte
	count   int
}

// NewWriter writes the file header to w. With compress set, the record
// stream is zstd-compressed.
func NewWriter(w io.Writer, compress bool) (*Writer, error) {
	header := append(fileMagic[:], fileVersion, 0)
	if compress {
		header[5] |= fileFlagCompressed
	}
	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	dw := &Writer{out: w}
	if compress {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		dw.enc = enc
		dw.out = enc
	}
	dw.bw = bufio.NewWriter(dw.out)
	return dw, nil
}

// Write appends one record.
func (w *Writer) Write(s *transform.RawSample) error {
	rec, err := AppendRecord(w.scratch[:0], s)
	if err != nil {
		return err
	}
	w.scratch = rec

	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(rec)))
	if _, err := w.bw.Write(lenBuf[:n]); err != nil {
		return err
	}
	if _, err := w.bw.Write(rec); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int { return w.count }

// Close flushes buffered records and finishes the compressed stream. It
// does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			return fmt.Errorf("zstd close: %w", err)
		}
	}
	return nil
}

// Reader streams records out of a record file.
type Reader struct {
	br  *bufio.Reader
	dec *zstd.Decoder
	buf []byte
}

// NewReader validates the file header of r.
func NewReader(r io.Reader) (*Reader, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	if [4]byte(header[:4]) != fileMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, header[:4])
	}
	if header[4] != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, header[4])
	}

	dr := &Reader{}
	src := r
	if header[5]&fileFlagCompressed != 0 {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		dr.dec = dec
		src = dec
	}
	dr.br = bufio.NewReader(src)
	return dr, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (*transform.RawSample, error) {
	n, err := binary.ReadUvarint(r.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: record length: %v", ErrCorrupt, err)
	}
	if n > maxRecordBytes {
		return nil, fmt.Errorf("%w: record of %d bytes", ErrCorrupt, n)
	}
	if cap(r.buf) < int(n) {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err := io.ReadFull(r.br, r.buf); err != nil {
		return nil, fmt.Errorf("%w: truncated record: %v", ErrCorrupt, err)
	}
	return DecodeRecord(r.buf)
}

// Close releases the decompressor, if any.
func (r *Reader) Close() {
	if r.dec != nil {
		r.dec.Close()
	}
}

// ReadAll reads every remaining record.
func ReadAll(r io.Reader) ([]*transform.RawSample, error) {
	dr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	var out []*transform.RawSample
	for {
		s, err := dr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, s)
	}
}

// WriteAll writes a complete record file.
func WriteAll(w io.Writer, samples []*transform.RawSample, compress bool) error {
	dw, err := NewWriter(w, compress)
	if err != nil {
		return err
	}
	for i, s := range samples {
		if err := dw.Write(s); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return dw.Close()
}

// Package snapshot saves and restores engine state as a JSON document whose
// fields are base64 encodings of the raw little-endian float32 bytes.
package snapshot

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/morphogen/internal/grayscott"
)

// Document is the persisted form of an engine.
type Document struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Feed   float64 `json:"f"`
	Kill   float64 `json:"k"`
	GridA  string  `json:"gridA"`
	GridB  string  `json:"gridB"`
}

// State is what Export reads and Import writes.
type State interface {
	Width() int
	Height() int
	A() grayscott.Field
	B() grayscott.Field
	Parameters() grayscott.Params
	SetParameters(feed, kill float64)
	Load(a, b []float32) error
}

func Export(s State) *Document {
	p := s.Parameters()
	return &Document{
		Width:  s.Width(),
		Height: s.Height(),
		Feed:   p.Feed,
		Kill:   p.Kill,
		GridA:  encodeField(s.A()),
		GridB:  encodeField(s.B()),
	}
}

// Import restores doc into s. Nothing is written unless the dimensions match
// and both payloads decode to exactly width*height floats.
func Import(s State, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrMalformedPayload)
	}
	if doc.Width != s.Width() || doc.Height != s.Height() {
		return &DimensionError{
			Want: [2]int{s.Width(), s.Height()},
			Got:  [2]int{doc.Width, doc.Height},
		}
	}

	n := s.Width() * s.Height()
	a, err := decodeField(doc.GridA, n)
	if err != nil {
		return fmt.Errorf("gridA: %w", err)
	}
	b, err := decodeField(doc.GridB, n)
	if err != nil {
		return fmt.Errorf("gridB: %w", err)
	}

	if err := s.Load(a, b); err != nil {
		return err
	}
	s.SetParameters(doc.Feed, doc.Kill)
	return nil
}

// Check validates a document without decoding it: the dimensions must give a
// grid of at most grayscott.MaxCells cells and both payloads must have the
// encoded length of exactly width*height floats.
func Check(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrMalformedPayload)
	}
	n, ok := grayscott.CellCount(doc.Width, doc.Height)
	if !ok {
		return fmt.Errorf("%w: invalid size %dx%d", ErrMalformedPayload, doc.Width, doc.Height)
	}
	want := base64.StdEncoding.EncodedLen(4 * n)
	for _, f := range []struct{ name, data string }{{"gridA", doc.GridA}, {"gridB", doc.GridB}} {
		if len(f.data) != want {
			return fmt.Errorf("%s: %w: got %d base64 bytes, want %d", f.name, ErrMalformedPayload, len(f.data), want)
		}
	}
	return nil
}

func Marshal(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}

func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func Write(w io.Writer, doc *Document) error {
	return json.NewEncoder(w).Encode(doc)
}

func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func encodeField(f []float32) string {
	buf := make([]byte, 4*len(f))
	for i, v := range f {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeField(s string, n int) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(buf) != 4*n {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedPayload, len(buf), 4*n)
	}
	f := make([]float32, n)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return f, nil
}

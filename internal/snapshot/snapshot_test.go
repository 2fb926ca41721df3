package snapshot_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/morphogen/internal/analysis"
	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/palette"
	"github.com/san-kum/morphogen/internal/render"
	"github.com/san-kum/morphogen/internal/snapshot"
)

func bits(f []float32) []uint32 {
	out := make([]uint32, len(f))
	for i, v := range f {
		out[i] = math.Float32bits(v)
	}
	return out
}

func clone(f []float32) []float32 {
	return append([]float32(nil), f...)
}

var _ = Describe("Export", func() {
	It("wraps dimensions, parameters and both fields", func() {
		e := grayscott.NewEngine(7, 5, grayscott.DefaultParams())
		e.SetParameters(0.03, 0.06)

		doc := snapshot.Export(e)
		Expect(doc.Width).To(Equal(7))
		Expect(doc.Height).To(Equal(5))
		Expect(doc.Feed).To(Equal(0.03))
		Expect(doc.Kill).To(Equal(0.06))

		raw, err := base64.StdEncoding.DecodeString(doc.GridA)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(HaveLen(4 * 7 * 5))
		Expect(raw[:4]).To(Equal([]byte{0x00, 0x00, 0x80, 0x3f}))
	})

	It("uses the documented JSON keys", func() {
		doc := snapshot.Export(grayscott.NewEngine(3, 3, grayscott.DefaultParams()))
		data, err := snapshot.Marshal(doc)
		Expect(err).NotTo(HaveOccurred())

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m).To(HaveKey("width"))
		Expect(m).To(HaveKey("height"))
		Expect(m).To(HaveKey("f"))
		Expect(m).To(HaveKey("k"))
		Expect(m).To(HaveKey("gridA"))
		Expect(m).To(HaveKey("gridB"))
	})
})

var _ = Describe("Import", func() {
	var src *grayscott.Engine

	BeforeEach(func() {
		src = grayscott.NewEngine(40, 30, grayscott.DefaultParams(), grayscott.WithSeed(11))
		src.Randomize()
		src.Seed(20, 15, 6)
		src.StepN(12)
		src.SetParameters(0.029, 0.057)
	})

	It("round-trips bit for bit through JSON", func() {
		data, err := snapshot.Marshal(snapshot.Export(src))
		Expect(err).NotTo(HaveOccurred())
		doc, err := snapshot.Unmarshal(data)
		Expect(err).NotTo(HaveOccurred())

		dst := grayscott.NewEngine(40, 30, grayscott.DefaultParams())
		Expect(snapshot.Import(dst, doc)).To(Succeed())

		Expect(bits(dst.A())).To(Equal(bits(src.A())))
		Expect(bits(dst.B())).To(Equal(bits(src.B())))
		Expect(dst.Parameters().Feed).To(Equal(0.029))
		Expect(dst.Parameters().Kill).To(Equal(0.057))
	})

	It("round-trips through the streaming helpers", func() {
		var buf bytes.Buffer
		Expect(snapshot.Write(&buf, snapshot.Export(src))).To(Succeed())
		doc, err := snapshot.Read(&buf)
		Expect(err).NotTo(HaveOccurred())

		dst := grayscott.NewEngine(40, 30, grayscott.DefaultParams())
		Expect(snapshot.Import(dst, doc)).To(Succeed())
		Expect(bits(dst.B())).To(Equal(bits(src.B())))
	})

	It("fills both buffer pairs so stepping continues identically", func() {
		dst := grayscott.NewEngine(40, 30, grayscott.DefaultParams())
		dst.Randomize()
		dst.Step()
		Expect(snapshot.Import(dst, snapshot.Export(src))).To(Succeed())

		src.StepN(5)
		dst.StepN(5)
		Expect(bits(dst.A())).To(Equal(bits(src.A())))
		Expect(bits(dst.B())).To(Equal(bits(src.B())))
	})

	It("preserves special float bit patterns", func() {
		e := grayscott.NewEngine(2, 2, grayscott.DefaultParams())
		a := []float32{float32(math.Copysign(0, -1)), math.SmallestNonzeroFloat32, 1, 0.1}
		b := []float32{0, 1, 0.5, 0.3333333}
		Expect(e.Load(a, b)).To(Succeed())

		dst := grayscott.NewEngine(2, 2, grayscott.DefaultParams())
		Expect(snapshot.Import(dst, snapshot.Export(e))).To(Succeed())
		Expect(bits(dst.A())).To(Equal(bits(a)))
		Expect(bits(dst.B())).To(Equal(bits(b)))
	})

	Context("with mismatched dimensions", func() {
		It("fails without touching the engine", func() {
			dst := grayscott.NewEngine(41, 30, grayscott.DefaultParams())
			dst.Seed(5, 5, 3)
			beforeA, beforeB := clone(dst.A()), clone(dst.B())
			beforeP := dst.Parameters()

			err := snapshot.Import(dst, snapshot.Export(src))
			Expect(err).To(MatchError(snapshot.ErrDimensionMismatch))

			var dimErr *snapshot.DimensionError
			Expect(err).To(BeAssignableToTypeOf(dimErr))
			dimErr = err.(*snapshot.DimensionError)
			Expect(dimErr.Want).To(Equal([2]int{41, 30}))
			Expect(dimErr.Got).To(Equal([2]int{40, 30}))

			Expect(dst.A()).To(Equal(grayscott.Field(beforeA)))
			Expect(dst.B()).To(Equal(grayscott.Field(beforeB)))
			Expect(dst.Parameters()).To(Equal(beforeP))
		})
	})

	Context("with a malformed payload", func() {
		DescribeTable("fails without touching the engine",
			func(mutate func(doc *snapshot.Document)) {
				doc := snapshot.Export(src)
				mutate(doc)

				dst := grayscott.NewEngine(40, 30, grayscott.DefaultParams())
				beforeA, beforeB := clone(dst.A()), clone(dst.B())
				beforeP := dst.Parameters()

				Expect(snapshot.Import(dst, doc)).To(MatchError(snapshot.ErrMalformedPayload))
				Expect(dst.A()).To(Equal(grayscott.Field(beforeA)))
				Expect(dst.B()).To(Equal(grayscott.Field(beforeB)))
				Expect(dst.Parameters()).To(Equal(beforeP))
			},
			Entry("invalid base64 in gridA", func(doc *snapshot.Document) { doc.GridA = "not*base64" }),
			Entry("invalid base64 in gridB", func(doc *snapshot.Document) { doc.GridB = "%%%%" }),
			Entry("short gridB", func(doc *snapshot.Document) {
				doc.GridB = base64.StdEncoding.EncodeToString(make([]byte, 4*40*30-4))
			}),
			Entry("long gridA", func(doc *snapshot.Document) {
				doc.GridA = base64.StdEncoding.EncodeToString(make([]byte, 4*40*30+1))
			}),
			Entry("empty gridA", func(doc *snapshot.Document) { doc.GridA = "" }),
		)
	})

	It("rejects a nil document without touching the engine", func() {
		dst := grayscott.NewEngine(40, 30, grayscott.DefaultParams())
		beforeB := clone(dst.B())
		Expect(snapshot.Import(dst, nil)).To(MatchError(snapshot.ErrMalformedPayload))
		Expect(dst.B()).To(Equal(grayscott.Field(beforeB)))
	})

	It("rejects documents that are not JSON", func() {
		_, err := snapshot.Unmarshal([]byte("{width: 3"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Check", func() {
	It("accepts an exported document", func() {
		e := grayscott.NewEngine(12, 9, grayscott.DefaultParams())
		Expect(snapshot.Check(snapshot.Export(e))).To(Succeed())
	})

	DescribeTable("rejects",
		func(doc *snapshot.Document) {
			Expect(snapshot.Check(doc)).To(MatchError(snapshot.ErrMalformedPayload))
		},
		Entry("a nil document", (*snapshot.Document)(nil)),
		Entry("zero width", &snapshot.Document{Width: 0, Height: 4}),
		Entry("overflowing dimensions with empty payloads", &snapshot.Document{Width: 1 << 32, Height: 1 << 32}),
		Entry("huge dimensions with empty payloads", &snapshot.Document{Width: 100000, Height: 100000}),
		Entry("a short payload", &snapshot.Document{
			Width: 2, Height: 2,
			GridA: base64.StdEncoding.EncodeToString(make([]byte, 16)),
			GridB: base64.StdEncoding.EncodeToString(make([]byte, 12)),
		}),
	)
})

var _ = Describe("End to end", func() {
	It("steps, renders, analyses and restores a 200x200 grid", func() {
		e := grayscott.NewEngine(200, 200, grayscott.DefaultParams())
		for i := range e.A() {
			Expect(e.A()[i]).To(BeEquivalentTo(1))
			Expect(e.B()[i]).To(BeEquivalentTo(0))
		}

		e.Seed(100, 100, 10)
		e.StepN(100)

		for i := range e.A() {
			a, b := float64(e.A()[i]), float64(e.B()[i])
			Expect(math.IsNaN(a) || math.IsInf(a, 0)).To(BeFalse())
			Expect(math.IsNaN(b) || math.IsInf(b, 0)).To(BeFalse())
			Expect(a).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
			Expect(b).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
		}

		gray, ok := palette.Named("grayscale")
		Expect(ok).To(BeTrue())
		r, err := render.New(gray)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.LUT()[0]).To(Equal(palette.Pack(0, 0, 0, 255)))
		Expect(r.LUT()[palette.LUTSize-1]).To(Equal(palette.Pack(255, 255, 255, 255)))
		Expect(r.Render(e)).To(HaveLen(200 * 200))

		before := analysis.Compute(e.A(), e.B())
		Expect(before.MaxB).To(BeNumerically(">", 0))

		data, err := snapshot.Marshal(snapshot.Export(e))
		Expect(err).NotTo(HaveOccurred())
		doc, err := snapshot.Unmarshal(data)
		Expect(err).NotTo(HaveOccurred())

		restored := grayscott.NewEngine(200, 200, grayscott.DefaultParams())
		Expect(snapshot.Import(restored, doc)).To(Succeed())
		Expect(analysis.Compute(restored.A(), restored.B())).To(Equal(before))
	})
})

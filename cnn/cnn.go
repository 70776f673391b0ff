package cnn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/sentimentCNN/params"
	"github.com/manningwu07/sentimentCNN/utils"
)

// ConvLayer is one bank of 1-D filters sharing a window width. W holds one
// flattened (Width*D) filter per row.
type ConvLayer struct {
	Width int
	W     *mat.Dense // (F x Width*D)
	B     *mat.Dense // (F x 1)
}

// TextCNN scores a padded token-id sequence with a single logit:
// embedding lookup -> parallel convolutions -> ReLU -> max-pool over time
// -> concat -> dropout -> linear.
type TextCNN struct {
	Emb          *mat.Dense // (V x D), row i belongs to vocabulary id i
	EmbTrainable bool       // gradient gate for Emb, flipped once by the freeze schedule
	Convs        []ConvLayer
	OutW         *mat.Dense // (1 x len(Convs)*F)
	OutB         *mat.Dense // (1 x 1)
	Dropout      float64
	PadID, UnkID int
}

// NewTextCNN builds the fixed architecture around an initialized embedding
// matrix. The matrix is owned by the model from here on. Conv and output
// weights are drawn from rng.
func NewTextCNN(emb *mat.Dense, widths []int, numFilters int, dropout float64, rng *rand.Rand) *TextCNN {
	if len(widths) == 0 {
		panic("NewTextCNN: at least one filter width required")
	}
	_, d := emb.Dims()
	convs := make([]ConvLayer, len(widths))
	for i, w := range widths {
		in := w * d
		convs[i] = ConvLayer{
			Width: w,
			W:     mat.NewDense(numFilters, in, utils.RandomArray(numFilters*in, float64(in), rng)),
			B:     mat.NewDense(numFilters, 1, nil),
		}
	}
	tot := len(widths) * numFilters
	return &TextCNN{
		Emb:          emb,
		EmbTrainable: false,
		Convs:        convs,
		OutW:         mat.NewDense(1, tot, utils.RandomArray(tot, float64(tot), rng)),
		OutB:         mat.NewDense(1, 1, nil),
		Dropout:      dropout,
		PadID:        params.PaddingID,
		UnkID:        params.UnknownID,
	}
}

func (m *TextCNN) dim() int {
	_, d := m.Emb.Dims()
	return d
}

func (m *TextCNN) maxWidth() int {
	w := 0
	for _, c := range m.Convs {
		if c.Width > w {
			w = c.Width
		}
	}
	return w
}

func (m *TextCNN) numFilters() int {
	f, _ := m.Convs[0].W.Dims()
	return f
}

// ForwardCache holds everything Backward needs from one forward pass.
type ForwardCache struct {
	ids      []int
	argmax   [][]int   // per conv, per filter: pooled window position, -1 when the pool is 0
	pooled   []float64 // concatenated max-pool outputs, pre-dropout
	dropMask []float64 // per-unit inverted-dropout scale; nil in eval mode
	h        []float64 // pooled after dropout
}

func (m *TextCNN) window(ids []int, p, w int, dst []float64) {
	d := m.dim()
	for k := 0; k < w; k++ {
		mat.Row(dst[k*d:(k+1)*d], ids[p+k], m.Emb)
	}
}

// Forward scores one sequence. A non-nil rng enables dropout (training
// mode); pass nil for evaluation.
func (m *TextCNN) Forward(ids []int, rng *rand.Rand) (float64, *ForwardCache) {
	if mw := m.maxWidth(); len(ids) < mw {
		padded := make([]int, mw)
		for i := range padded {
			padded[i] = m.PadID
		}
		copy(padded, ids)
		ids = padded
	}
	d := m.dim()
	F := m.numFilters()

	cache := &ForwardCache{
		ids:    ids,
		argmax: make([][]int, len(m.Convs)),
		pooled: make([]float64, len(m.Convs)*F),
	}
	for ci, conv := range m.Convs {
		w := conv.Width
		positions := len(ids) - w + 1
		cache.argmax[ci] = make([]int, F)
		best := make([]float64, F)
		for f := 0; f < F; f++ {
			cache.argmax[ci][f] = -1
		}
		xwin := make([]float64, w*d)
		for p := 0; p < positions; p++ {
			m.window(ids, p, w, xwin)
			for f := 0; f < F; f++ {
				z := conv.B.At(f, 0)
				row := conv.W.RawRowView(f)
				for k, x := range xwin {
					z += row[k] * x
				}
				z = utils.ReLU(z)
				if z > best[f] {
					best[f] = z
					cache.argmax[ci][f] = p
				}
			}
		}
		copy(cache.pooled[ci*F:(ci+1)*F], best)
	}

	cache.h = make([]float64, len(cache.pooled))
	if rng != nil && m.Dropout > 0 {
		keep := 1.0 - m.Dropout
		cache.dropMask = make([]float64, len(cache.pooled))
		for i := range cache.dropMask {
			if rng.Float64() < keep {
				cache.dropMask[i] = 1.0 / keep
			}
		}
		for i, v := range cache.pooled {
			cache.h[i] = v * cache.dropMask[i]
		}
	} else {
		copy(cache.h, cache.pooled)
	}

	out := utils.ToDense(utils.Dot(m.OutW, mat.NewDense(len(cache.h), 1, cache.h)))
	logit := out.At(0, 0) + m.OutB.At(0, 0)
	return logit, cache
}

// Score returns the sigmoid probability of the positive class, eval mode.
func (m *TextCNN) Score(ids []int) float64 {
	logit, _ := m.Forward(ids, nil)
	return utils.Sigmoid(logit)
}

// Grads mirrors the parameter shapes; one instance accumulates a mini-batch.
type Grads struct {
	Emb   *mat.Dense
	ConvW []*mat.Dense
	ConvB []*mat.Dense
	OutW  *mat.Dense
	OutB  *mat.Dense
}

func (m *TextCNN) NewGrads() *Grads {
	g := &Grads{
		Emb:   utils.ZerosLike(m.Emb),
		ConvW: make([]*mat.Dense, len(m.Convs)),
		ConvB: make([]*mat.Dense, len(m.Convs)),
		OutW:  utils.ZerosLike(m.OutW),
		OutB:  utils.ZerosLike(m.OutB),
	}
	for i, c := range m.Convs {
		g.ConvW[i] = utils.ZerosLike(c.W)
		g.ConvB[i] = utils.ZerosLike(c.B)
	}
	return g
}

func (g *Grads) Scale(s float64) {
	g.Emb.Scale(s, g.Emb)
	for i := range g.ConvW {
		g.ConvW[i].Scale(s, g.ConvW[i])
		g.ConvB[i].Scale(s, g.ConvB[i])
	}
	g.OutW.Scale(s, g.OutW)
	g.OutB.Scale(s, g.OutB)
}

// ZeroReservedRows clears the gradient rows of the <pad>/<unk> embeddings so
// those rows never drift from zero.
func (g *Grads) ZeroReservedRows(padID, unkID int) {
	_, c := g.Emb.Dims()
	zero := make([]float64, c)
	g.Emb.SetRow(padID, zero)
	g.Emb.SetRow(unkID, zero)
}

// Backward accumulates gradients for one example into g, given the loss
// gradient wrt the logit. The embedding gradient is always computed; the
// trainer decides whether to apply it.
func (m *TextCNN) Backward(cache *ForwardCache, dLogit float64, g *Grads) {
	if dLogit == 0 {
		return
	}
	d := m.dim()
	F := m.numFilters()

	// output layer
	g.OutB.Set(0, 0, g.OutB.At(0, 0)+dLogit)
	dh := make([]float64, len(cache.h))
	for i := range dh {
		g.OutW.Set(0, i, g.OutW.At(0, i)+dLogit*cache.h[i])
		dh[i] = dLogit * m.OutW.At(0, i)
		if cache.dropMask != nil {
			dh[i] *= cache.dropMask[i]
		}
	}

	// conv banks: gradient only flows through each filter's pooled window
	for ci, conv := range m.Convs {
		w := conv.Width
		xwin := make([]float64, w*d)
		for f := 0; f < F; f++ {
			p := cache.argmax[ci][f]
			dp := dh[ci*F+f]
			if p < 0 || dp == 0 {
				continue
			}
			m.window(cache.ids, p, w, xwin)
			gw := g.ConvW[ci].RawRowView(f)
			row := conv.W.RawRowView(f)
			for k, x := range xwin {
				gw[k] += dp * x
			}
			g.ConvB[ci].Set(f, 0, g.ConvB[ci].At(f, 0)+dp)
			for k := 0; k < w; k++ {
				id := cache.ids[p+k]
				ge := g.Emb.RawRowView(id)
				for j := 0; j < d; j++ {
					ge[j] += dp * row[k*d+j]
				}
			}
		}
	}
}

// CheckShapes validates internal consistency, mostly for use after loading
// a checkpoint.
func (m *TextCNN) CheckShapes() error {
	_, d := m.Emb.Dims()
	tot := 0
	for i, c := range m.Convs {
		f, in := c.W.Dims()
		if in != c.Width*d {
			return fmt.Errorf("conv %d: weight cols %d != width*dim %d", i, in, c.Width*d)
		}
		if bf, _ := c.B.Dims(); bf != f {
			return fmt.Errorf("conv %d: bias rows %d != filters %d", i, bf, f)
		}
		tot += f
	}
	if _, oc := m.OutW.Dims(); oc != tot {
		return fmt.Errorf("output weights cols %d != pooled units %d", oc, tot)
	}
	return nil
}

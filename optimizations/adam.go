package optimizations

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AdamState carries the first/second moment estimates and step counter for
// one parameter matrix. Each parameter group owns its own state; nothing is
// shared through package globals.
type AdamState struct {
	M, V *mat.Dense
	T    int
}

func NewAdamState(like *mat.Dense) *AdamState {
	r, c := like.Dims()
	return &AdamState{
		M: mat.NewDense(r, c, nil),
		V: mat.NewDense(r, c, nil),
	}
}

// p -= lr * (mhat/(sqrt(vhat)+eps) + wd * p) with bias correction (AdamW).
func AdamUpdateInPlace(
	p, g *mat.Dense,
	s *AdamState,
	lr, beta1, beta2, eps, weightDecay float64,
) {
	pr, pc := p.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("AdamUpdateInPlace: grad shape mismatch")
	}
	if mr, mc := s.M.Dims(); mr != pr || mc != pc {
		panic("AdamUpdateInPlace: m shape mismatch")
	}
	if vr, vc := s.V.Dims(); vr != pr || vc != pc {
		panic("AdamUpdateInPlace: v shape mismatch")
	}
	s.T++
	b1t := math.Pow(beta1, float64(s.T))
	b2t := math.Pow(beta2, float64(s.T))
	c1 := 1.0 / (1.0 - b1t)
	c2 := 1.0 / (1.0 - b2t)
	for i := 0; i < pr; i++ {
		for j := 0; j < pc; j++ {
			gij := g.At(i, j)
			mij := beta1*s.M.At(i, j) + (1.0-beta1)*gij
			vij := beta2*s.V.At(i, j) + (1.0-beta2)*gij*gij
			mhat := mij * c1
			vhat := vij * c2
			denom := math.Sqrt(vhat) + eps
			wdTerm := weightDecay * p.At(i, j)
			update := mhat/denom + wdTerm
			pij := p.At(i, j) - lr*update
			s.M.Set(i, j, mij)
			s.V.Set(i, j, vij)
			p.Set(i, j, pij)
		}
	}
}

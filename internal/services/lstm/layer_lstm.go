package lstm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// lstmLayer is a single LSTM layer. Gate pre-activations are stacked in the
// order input, forget, candidate, output:
//
//	z = W·x + U·h + b
//	c' = σ(z_f)⊙c + σ(z_i)⊙tanh(z_g)
//	h' = σ(z_o)⊙tanh(c')
type lstmLayer struct {
	in    int
	units int

	w, u, b *param

	wm, um *mat.Dense
	bv     *mat.VecDense
	dw, du *mat.Dense
	db     *mat.VecDense
}

// lstmStep caches what backpropagation needs from one time step.
type lstmStep struct {
	x, hPrev   *mat.VecDense
	cPrev      []float64
	i, f, g, o []float64
	c, tanhC   []float64
	h          *mat.VecDense
}

func newLSTMLayer(name string, in, units int) *lstmLayer {
	l := &lstmLayer{
		in:    in,
		units: units,
		w:     newParam(name+"/kernel", 4*units, in),
		u:     newParam(name+"/recurrent_kernel", 4*units, units),
		b:     newParam(name+"/bias", 4*units, 1),
	}
	l.wm, l.um, l.bv = l.w.matrix(), l.u.matrix(), l.b.vector()
	l.dw, l.du, l.db = l.w.gradMatrix(), l.u.gradMatrix(), l.b.gradVector()
	return l
}

func (l *lstmLayer) params() []*param { return []*param{l.w, l.u, l.b} }

func (l *lstmLayer) init(rng *rand.Rand) {
	l.w.glorotUniform(rng, l.in, 4*l.units)
	l.u.orthogonal(rng)
	for i := range l.b.value {
		l.b.value[i] = 0
	}
	// unit forget bias
	for k := l.units; k < 2*l.units; k++ {
		l.b.value[k] = 1
	}
}

func (l *lstmLayer) forward(xs []*mat.VecDense) ([]lstmStep, error) {
	H := l.units
	h := mat.NewVecDense(H, nil)
	c := make([]float64, H)
	z := mat.NewVecDense(4*H, nil)
	rec := mat.NewVecDense(4*H, nil)

	steps := make([]lstmStep, len(xs))
	for t, x := range xs {
		if x.Len() != l.in {
			return nil, fmt.Errorf("lstm input at step %d has %d features, want %d", t, x.Len(), l.in)
		}
		z.MulVec(l.wm, x)
		rec.MulVec(l.um, h)
		z.AddVec(z, rec)
		z.AddVec(z, l.bv)
		zd := z.RawVector().Data

		st := lstmStep{
			x:     x,
			hPrev: h,
			cPrev: c,
			i:     make([]float64, H),
			f:     make([]float64, H),
			g:     make([]float64, H),
			o:     make([]float64, H),
			c:     make([]float64, H),
			tanhC: make([]float64, H),
		}
		hNext := make([]float64, H)
		for k := 0; k < H; k++ {
			st.i[k] = sigmoid(zd[k])
			st.f[k] = sigmoid(zd[H+k])
			st.g[k] = math.Tanh(zd[2*H+k])
			st.o[k] = sigmoid(zd[3*H+k])
			st.c[k] = st.f[k]*c[k] + st.i[k]*st.g[k]
			st.tanhC[k] = math.Tanh(st.c[k])
			hNext[k] = st.o[k] * st.tanhC[k]
		}
		h = mat.NewVecDense(H, hNext)
		c = st.c
		st.h = h
		steps[t] = st
	}
	return steps, nil
}

// backward accumulates parameter gradients for one sequence. dh[t] is the
// loss gradient w.r.t. the output of step t (nil means zero). It returns the
// gradient w.r.t. each step input.
func (l *lstmLayer) backward(steps []lstmStep, dh []*mat.VecDense) []*mat.VecDense {
	H := l.units
	dx := make([]*mat.VecDense, len(steps))
	dhNext := make([]float64, H)
	dcNext := make([]float64, H)
	dz := mat.NewVecDense(4*H, nil)
	dzd := dz.RawVector().Data

	for t := len(steps) - 1; t >= 0; t-- {
		st := &steps[t]
		var ext []float64
		if dh[t] != nil {
			ext = dh[t].RawVector().Data
		}
		for k := 0; k < H; k++ {
			dhk := dhNext[k]
			if ext != nil {
				dhk += ext[k]
			}
			do := dhk * st.tanhC[k]
			dc := dhk*st.o[k]*(1-st.tanhC[k]*st.tanhC[k]) + dcNext[k]
			di := dc * st.g[k]
			dg := dc * st.i[k]
			df := dc * st.cPrev[k]
			dcNext[k] = dc * st.f[k]

			dzd[k] = di * st.i[k] * (1 - st.i[k])
			dzd[H+k] = df * st.f[k] * (1 - st.f[k])
			dzd[2*H+k] = dg * (1 - st.g[k]*st.g[k])
			dzd[3*H+k] = do * st.o[k] * (1 - st.o[k])
		}

		l.dw.RankOne(l.dw, 1, dz, st.x)
		l.du.RankOne(l.du, 1, dz, st.hPrev)
		l.db.AddVec(l.db, dz)

		dxt := mat.NewVecDense(l.in, nil)
		dxt.MulVec(l.wm.T(), dz)
		dx[t] = dxt

		// dhNext = Uᵀ·dz, written in place
		mat.NewVecDense(H, dhNext).MulVec(l.um.T(), dz)
	}
	return dx
}

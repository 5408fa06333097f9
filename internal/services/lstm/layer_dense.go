package lstm

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// denseLayer is a fully connected layer with linear activation.
type denseLayer struct {
	in  int
	out int

	w, b *param

	wm *mat.Dense
	bv *mat.VecDense
	dw *mat.Dense
	db *mat.VecDense
}

func newDenseLayer(name string, in, out int) *denseLayer {
	l := &denseLayer{
		in:  in,
		out: out,
		w:   newParam(name+"/kernel", out, in),
		b:   newParam(name+"/bias", out, 1),
	}
	l.wm, l.bv = l.w.matrix(), l.b.vector()
	l.dw, l.db = l.w.gradMatrix(), l.b.gradVector()
	return l
}

func (l *denseLayer) params() []*param { return []*param{l.w, l.b} }

func (l *denseLayer) init(rng *rand.Rand) {
	l.w.glorotUniform(rng, l.in, l.out)
	for i := range l.b.value {
		l.b.value[i] = 0
	}
}

func (l *denseLayer) forward(x *mat.VecDense) *mat.VecDense {
	y := mat.NewVecDense(l.out, nil)
	y.MulVec(l.wm, x)
	y.AddVec(y, l.bv)
	return y
}

func (l *denseLayer) backward(x, dy *mat.VecDense) *mat.VecDense {
	l.dw.RankOne(l.dw, 1, dy, x)
	l.db.AddVec(l.db, dy)
	dx := mat.NewVecDense(l.in, nil)
	dx.MulVec(l.wm.T(), dy)
	return dx
}

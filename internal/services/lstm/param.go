package lstm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// param is a trainable tensor. Matrix views share the value and grad
// slices, so optimizer updates are visible to the layers without copying.
type param struct {
	name  string
	rows  int
	cols  int
	value []float64
	grad  []float64
}

func newParam(name string, rows, cols int) *param {
	return &param{
		name:  name,
		rows:  rows,
		cols:  cols,
		value: make([]float64, rows*cols),
		grad:  make([]float64, rows*cols),
	}
}

func (p *param) matrix() *mat.Dense     { return mat.NewDense(p.rows, p.cols, p.value) }
func (p *param) gradMatrix() *mat.Dense { return mat.NewDense(p.rows, p.cols, p.grad) }
func (p *param) vector() *mat.VecDense  { return mat.NewVecDense(p.rows, p.value) }
func (p *param) gradVector() *mat.VecDense {
	return mat.NewVecDense(p.rows, p.grad)
}

func (p *param) zeroGrad() {
	for i := range p.grad {
		p.grad[i] = 0
	}
}

// glorotUniform fills p with U(-l, l), l = sqrt(6 / (fanIn + fanOut)).
func (p *param) glorotUniform(rng *rand.Rand, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range p.value {
		p.value[i] = (rng.Float64()*2 - 1) * limit
	}
}

// orthogonal fills p (rows >= cols) with orthonormal columns taken from the
// QR decomposition of a standard normal matrix.
func (p *param) orthogonal(rng *rand.Rand) {
	a := mat.NewDense(p.rows, p.cols, nil)
	for i := 0; i < p.rows; i++ {
		for j := 0; j < p.cols; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	dst := p.matrix()
	for j := 0; j < p.cols; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < p.rows; i++ {
			dst.Set(i, j, sign*q.At(i, j))
		}
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

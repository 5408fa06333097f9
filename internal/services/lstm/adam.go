package lstm

import "math"

// adam implements the Adam optimizer with bias-corrected moments.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64

	t int
	m [][]float64
	v [][]float64
}

func newAdam(lr float64, params []*param) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, epsilon: 1e-7}
	a.m = make([][]float64, len(params))
	a.v = make([][]float64, len(params))
	for i, p := range params {
		a.m[i] = make([]float64, len(p.value))
		a.v[i] = make([]float64, len(p.value))
	}
	return a
}

func (a *adam) step(params []*param) {
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))
	for pi, p := range params {
		m, v := a.m[pi], a.v[pi]
		for i, g := range p.grad {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			p.value[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
		}
	}
}

package massprop

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

var ErrNoPrincipalAxes = errors.New("inertia tensor eigen decomposition failed")

// PrincipalMoments diagonalizes the symmetric inertia tensor J. Moments are
// returned in ascending order, axes[i] being the unit axis of moments[i].
func PrincipalMoments(J mgl64.Mat3) (moments [3]float64, axes [3]mgl64.Vec3, err error) {
	sym := mat.NewSymDense(3, []float64{
		J.At(0, 0), J.At(0, 1), J.At(0, 2),
		J.At(1, 0), J.At(1, 1), J.At(1, 2),
		J.At(2, 0), J.At(2, 1), J.At(2, 2),
	})

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return moments, axes, ErrNoPrincipalAxes
	}

	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	for i := 0; i < 3; i++ {
		moments[i] = values[i]
		axes[i] = mgl64.Vec3{vectors.At(0, i), vectors.At(1, i), vectors.At(2, i)}
	}
	return moments, axes, nil
}

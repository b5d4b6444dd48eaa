package geom

import (
	"fmt"
	"math"
)

var ErrDimNotEqual = fmt.Errorf("vectors dimension is not equal")

// DistanceFn measures the distance between two equally sized vectors.
type DistanceFn func(vec, vec1 []float64) (float64, error)

type DistanceFuncType string

const (
	DistanceFuncTypeEuclidean DistanceFuncType = "EUCLIDEAN"
	DistanceFuncTypeChebyshev DistanceFuncType = "CHEBYSHEV"
	DistanceFuncTypeManhattan DistanceFuncType = "MANHATTAN"
)

// DistanceFuncFor resolves a configured distance function.
func DistanceFuncFor(d DistanceFuncType) (DistanceFn, error) {
	switch d {
	case DistanceFuncTypeEuclidean, "":
		return EuclideanDistance, nil
	case DistanceFuncTypeChebyshev:
		return ChebyshevDistance, nil
	case DistanceFuncTypeManhattan:
		return ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance function: %s", d)
	}
}

// diff returns the per-attribute difference. An unknown value on either side
// costs nothing.
func diff(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	return a - b
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	var d float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}

	for i := 0; i < len(vec); i++ {
		delta := diff(vec[i], vec1[i])
		d += delta * delta
	}
	return math.Sqrt(d), nil
}

func ChebyshevDistance(vec, vec1 []float64) (float64, error) {
	var absDistance, distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec1); i++ {
		absDistance = math.Abs(diff(vec[i], vec1[i]))
		if distance < absDistance {
			distance = absDistance
		}
	}
	return distance, nil
}

func ManhattanDistance(vec, vec1 []float64) (float64, error) {
	var distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec); i++ {
		distance += math.Abs(diff(vec[i], vec1[i]))
	}
	return distance, nil
}

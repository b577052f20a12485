/*
Copyright © 2018 the BGEM authors.
This file is part of BGEM.

BGEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGEM.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgem

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// residualFunc evaluates a residual vector at x, storing it in out.
// len(out) == len(x).
type residualFunc func(x, out []float64)

// newtonOptions controls the damped Newton iteration.
type newtonOptions struct {
	// Tolerance is the convergence criterion: the infinity norm of
	// the residual vector must fall below it.
	Tolerance float64

	// MaxIterations bounds the number of Newton steps.
	MaxIterations int

	// MaxStep caps the largest step component per iteration; the
	// whole direction is scaled down to honor it. Zero disables
	// the cap.
	MaxStep float64

	// DampDims is the number of leading components MaxStep is
	// measured over. Zero means all components.
	DampDims int
}

var (
	errSingularJacobian = errors.New("singular Jacobian")
	errIterationBudget  = errors.New("iteration budget exhausted")
)

// sqrtEps is the square root of the float64 machine epsilon, the
// standard spacing for forward-difference derivatives.
const sqrtEps = 1.4901161193847656e-08

// Armijo sufficient-decrease constant and the smallest accepted line
// search step.
const (
	armijoC     = 1.e-4
	minLineStep = 1.e-10
)

// solveNewton solves f(x) = 0 by damped Newton iteration with a
// forward-difference Jacobian and Armijo backtracking on ½‖F‖².
// It returns the final iterate, the number of completed steps, and
// the final residual vector. The error is non-nil if the Jacobian
// solve fails or the iteration budget is exhausted before the
// residual norm falls below the tolerance.
func solveNewton(f residualFunc, x0 []float64, opt newtonOptions) ([]float64, int, []float64, error) {
	n := len(x0)
	x := make([]float64, n)
	copy(x, x0)
	F := make([]float64, n)
	f(x, F)

	xTrial := make([]float64, n)
	fTrial := make([]float64, n)
	column := make([]float64, n)
	jac := mat.NewDense(n, n, nil)
	step := mat.NewVecDense(n, nil)
	rhs := mat.NewVecDense(n, nil)

	for it := 0; it < opt.MaxIterations; it++ {
		if floats.Norm(F, math.Inf(1)) < opt.Tolerance {
			return x, it, F, nil
		}

		for j := 0; j < n; j++ {
			h := sqrtEps * math.Max(math.Abs(x[j]), 1)
			copy(xTrial, x)
			xTrial[j] += h
			f(xTrial, column)
			for i := 0; i < n; i++ {
				jac.Set(i, j, (column[i]-F[i])/h)
			}
		}
		for i := 0; i < n; i++ {
			rhs.SetVec(i, -F[i])
		}
		var lu mat.LU
		lu.Factorize(jac)
		if err := lu.SolveVec(step, false, rhs); err != nil {
			return x, it, F, errSingularJacobian
		}

		if opt.MaxStep > 0 {
			dims := opt.DampDims
			if dims <= 0 || dims > n {
				dims = n
			}
			largest := 0.0
			for i := 0; i < dims; i++ {
				largest = math.Max(largest, math.Abs(step.AtVec(i)))
			}
			if largest > opt.MaxStep {
				scale := opt.MaxStep / largest
				for i := 0; i < n; i++ {
					step.SetVec(i, step.AtVec(i)*scale)
				}
			}
		}

		merit := 0.5 * floats.Dot(F, F)
		lambda := 1.0
		for {
			for i := 0; i < n; i++ {
				xTrial[i] = x[i] + lambda*step.AtVec(i)
			}
			f(xTrial, fTrial)
			if 0.5*floats.Dot(fTrial, fTrial) <= merit*(1-2*armijoC*lambda) ||
				lambda < minLineStep {
				break
			}
			lambda *= 0.5
		}
		copy(x, xTrial)
		copy(F, fTrial)
	}

	if floats.Norm(F, math.Inf(1)) < opt.Tolerance {
		return x, opt.MaxIterations, F, nil
	}
	return x, opt.MaxIterations, F, errIterationBudget
}

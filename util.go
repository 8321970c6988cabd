// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package svchain

import (
	"fmt"
	"math"
)

// Ploidy is a copy number estimate with its uncertainty.
type Ploidy struct {
	Estimate    float64
	Uncertainty float64
}

// Min returns the lower bound, not below zero.
func (p Ploidy) Min() float64 {
	return math.Max(p.Estimate-p.Uncertainty, 0)
}

// Max returns the upper bound.
func (p Ploidy) Max() float64 {
	return p.Estimate + p.Uncertainty
}

// Halve returns the ploidy of one of two identical copies.
// The uncertainty is scaled by √2.
func (p Ploidy) Halve() Ploidy {
	return Ploidy{Estimate: p.Estimate * 0.5, Uncertainty: p.Uncertainty * math.Sqrt2}
}

// Remainder returns what is left after taking q from p,
// the uncertainties are added in quadrature.
func (p Ploidy) Remainder(q Ploidy) Ploidy {
	return Ploidy{
		Estimate:    math.Max(p.Estimate-q.Estimate, 0),
		Uncertainty: math.Sqrt(p.Uncertainty*p.Uncertainty + q.Uncertainty*q.Uncertainty),
	}
}

func (p Ploidy) String() string {
	return fmt.Sprintf("%.2f±%.2f", p.Estimate, p.Uncertainty)
}

// CombinePloidy merges two independent estimates of the same quantity,
// weighting each by its inverse variance.
// An estimate without uncertainty is taken as exact.
func CombinePloidy(a, b Ploidy) Ploidy {
	if a.Uncertainty <= 0 && b.Uncertainty <= 0 {
		return Ploidy{Estimate: (a.Estimate + b.Estimate) * 0.5}
	}
	if a.Uncertainty <= 0 {
		return Ploidy{Estimate: a.Estimate}
	}
	if b.Uncertainty <= 0 {
		return Ploidy{Estimate: b.Estimate}
	}

	wa := 1 / (a.Uncertainty * a.Uncertainty)
	wb := 1 / (b.Uncertainty * b.Uncertainty)
	sum := wa + wb
	return Ploidy{
		Estimate:    (a.Estimate*wa + b.Estimate*wb) / sum,
		Uncertainty: math.Sqrt(1 / sum),
	}
}

// PloidyOverlap tells if the ranges of two ploidies overlap.
func PloidyOverlap(a, b Ploidy) bool {
	if a.Estimate < b.Estimate {
		return a.Estimate+a.Uncertainty > b.Estimate-b.Uncertainty
	}
	return a.Estimate-a.Uncertainty < b.Estimate+b.Uncertainty
}

// Tolerance decides when two copy numbers are taken as equal.
// They are unequal only if both the absolute and
// the relative differences are exceeded.
type Tolerance struct {
	MaxDiff     float64
	MaxDiffPerc float64
}

// DefaultTolerance is the default copy number tolerance.
var DefaultTolerance = Tolerance{
	MaxDiff:     0.5,
	MaxDiffPerc: 0.15,
}

// Equal compares two copy numbers.
func (t Tolerance) Equal(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= t.MaxDiff {
		return true
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	return diff/denom <= t.MaxDiffPerc
}

// CopyNumbersEqual compares two copy numbers with DefaultTolerance.
func CopyNumbersEqual(a, b float64) bool {
	return DefaultTolerance.Equal(a, b)
}

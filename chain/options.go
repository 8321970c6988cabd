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

package chain

import (
	"errors"

	"github.com/shenwei356/svchain"
)

// ErrNonConvergence means chaining stopped adding links while
// candidates remained.
var ErrNonConvergence = errors.New("chain: no new links in consecutive iterations")

// ErrInvalidChain means a chain breaks the alternation rule
// or over-allocates a breakend.
var ErrInvalidChain = errors.New("chain: invalid chain")

// ErrBreakendExhausted means a link was registered on a breakend
// without remaining ploidy.
var ErrBreakendExhausted = errors.New("chain: breakend exhausted")

// ChainingOptions contains all options in chaining.
type ChainingOptions struct {
	// minimum templated insertion length, and larger values for some SV types.
	MinTILength     int
	TypeMinTILength map[svchain.SVType]int

	// the cluster is given up after this number of iterations without new links.
	MaxIterationsWithoutLinks int

	// copy numbers within the tolerance are taken as equal.
	Tolerance svchain.Tolerance

	// a link can't extend over a segment with cluster allele ploidy below this.
	ClusterAllelePloidyMin float64
	UseAllelePloidies      bool

	// a breakend is exhausted once its unlinked ploidy is no more than
	// this fraction of the cluster baseline ploidy.
	ExhaustedFraction float64

	// only chain assembly links.
	AssembledLinksOnly bool

	// check chains after building.
	Validate bool
}

// DefaultChainingOptions is the default value of ChainingOptions.
var DefaultChainingOptions = ChainingOptions{
	MinTILength: 30,

	MaxIterationsWithoutLinks: 5,

	Tolerance: svchain.DefaultTolerance,

	ClusterAllelePloidyMin: 0.15,
	UseAllelePloidies:      true,

	ExhaustedFraction: 0.5,

	Validate: true,
}

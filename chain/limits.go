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
	"sort"

	"github.com/cznic/sortutil"
	"github.com/shenwei356/svchain"
	"github.com/twotwotwo/sorts"
)

// alleleProfile is a piecewise-constant cluster allele ploidy.
type alleleProfile struct {
	positions []int64
	values    []float64
}

// ploidyLimits answers whether links may extend over a position.
type ploidyLimits struct {
	profiles map[string]*alleleProfile
	minAP    float64
}

func newPloidyLimits(c *svchain.Cluster, minAP float64) *ploidyLimits {
	l := &ploidyLimits{
		profiles: make(map[string]*alleleProfile, len(c.AlleleProfiles)),
		minAP:    minAP,
	}

	for chr, segs := range c.AlleleProfiles {
		if len(segs) == 0 {
			continue
		}

		// a later segment at the same position replaces an earlier one
		values := make(map[int64]float64, len(segs))
		positions := make([]int64, 0, len(segs))
		for _, s := range segs {
			values[s.Position] = s.ClusterAP
			positions = append(positions, s.Position)
		}
		ps := sortutil.Int64Slice(positions)
		sorts.Quicksort(ps)
		n := sortutil.Dedupe(ps)
		positions = positions[:n]

		p := &alleleProfile{positions: positions, values: make([]float64, n)}
		for i, pos := range positions {
			p.values[i] = values[pos]
		}
		l.profiles[chr] = p
	}
	return l
}

// clusterAP returns the cluster allele ploidy of the segment
// covering the position.
func (l *ploidyLimits) clusterAP(chr string, pos int64) (float64, bool) {
	p, ok := l.profiles[chr]
	if !ok {
		return 0, false
	}
	i := sort.Search(len(p.positions), func(i int) bool { return p.positions[i] > pos }) - 1
	if i < 0 {
		return 0, false
	}
	return p.values[i], true
}

// covers tells if the profile has a segment at the breakend.
func (l *ploidyLimits) covers(b *svchain.Breakend) bool {
	_, ok := l.clusterAP(b.Chromosome, b.Position)
	return ok
}

// blocks tells if the segment starting at the breakend has no spare
// allele ploidy, so links can't reach past it.
func (l *ploidyLimits) blocks(b *svchain.Breakend) bool {
	ap, ok := l.clusterAP(b.Chromosome, b.Position)
	return ok && ap < l.minAP
}

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
	"testing"

	"github.com/shenwei356/svchain"
	"github.com/stretchr/testify/require"
)

// svDef describes an SV for test clusters.
type svDef struct {
	id         int
	typ        svchain.SVType
	chr        string
	start, end int64
	oStart     int8
	oEnd       int8
	ploidy     float64
}

func del(id int, chr string, start, end int64, ploidy float64) svDef {
	return svDef{id, svchain.DEL, chr, start, end, svchain.OrientUpper, svchain.OrientLower, ploidy}
}

func dup(id int, chr string, start, end int64, ploidy float64) svDef {
	return svDef{id, svchain.DUP, chr, start, end, svchain.OrientLower, svchain.OrientUpper, ploidy}
}

func inv(id int, chr string, start, end int64, orient int8, ploidy float64) svDef {
	return svDef{id, svchain.INV, chr, start, end, orient, orient, ploidy}
}

func newTestCluster(t *testing.T, id int, defs ...svDef) *svchain.Cluster {
	c := svchain.NewCluster(id)
	for _, d := range defs {
		_, err := c.AddSV(&svchain.SV{
			ID:     d.id,
			Type:   d.typ,
			Ploidy: svchain.Ploidy{Estimate: d.ploidy, Uncertainty: 0.2},
			Breakends: [2]*svchain.Breakend{
				{Chromosome: d.chr, Position: d.start, Orientation: d.oStart},
				{Chromosome: d.chr, Position: d.end, Orientation: d.oEnd},
			},
		})
		require.NoError(t, err)
	}
	return c
}

func be(sv int, start bool) svchain.BreakendID { return svchain.BreakendOf(sv, start) }

// formChains chains a finalized cluster with the default options.
func formChains(t *testing.T, c *svchain.Cluster) *Result {
	opt := DefaultChainingOptions
	return formChainsWith(t, c, &opt)
}

func formChainsWith(t *testing.T, c *svchain.Cluster, opt *ChainingOptions) *Result {
	cf := NewChainFinder(opt)
	require.NoError(t, cf.Initialise(c))
	return cf.FormChains()
}

// linkPairs returns the breakends of the links of a chain, in walk order.
func linkPairs(ch *Chain) [][2]svchain.BreakendID {
	pairs := make([][2]svchain.BreakendID, len(ch.Links))
	for i, p := range ch.Links {
		pairs[i] = [2]svchain.BreakendID{p.First, p.Second}
	}
	return pairs
}

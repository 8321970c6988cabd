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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinder(t *testing.T, c *svchain.Cluster) *ChainFinder {
	cf := NewChainFinder(&DefaultChainingOptions)
	require.NoError(t, cf.Initialise(c))
	cf.determinePossibleLinks()
	return cf
}

func TestDeterminePossibleLinks(t *testing.T) {
	c := newTestCluster(t, 1,
		del(1, "1", 100, 200, 1),
		del(2, "1", 300, 400, 1),
		del(3, "1", 500, 600, 1),
		del(4, "2", 100, 200, 1))
	cf := newTestFinder(t, c)
	pl := cf.possible

	assert.Equal(t, []svchain.BreakendID{be(0, false), be(1, true), be(1, false), be(2, true)}, pl.breakends())

	// nearest first
	links := pl.links(be(2, true))
	require.Len(t, links, 2)
	assert.Equal(t, be(1, false), links[0].First)
	assert.Equal(t, be(0, false), links[1].First)

	links = pl.links(be(0, false))
	require.Len(t, links, 2)
	assert.Equal(t, be(1, true), links[0].Second)
	assert.Equal(t, be(2, true), links[1].Second)

	assert.Len(t, pl.adjacent, 2)
	assert.Len(t, pl.adjacentMatching, 2)
	assert.Empty(t, pl.complexDups)

	assert.NotNil(t, pl.find(be(2, true), be(0, false)))
	assert.Nil(t, pl.find(be(0, false), be(3, true)))
}

func TestPossibleLinksRemoval(t *testing.T) {
	c := newTestCluster(t, 1,
		del(1, "1", 100, 200, 1),
		del(2, "1", 300, 400, 1),
		del(3, "1", 500, 600, 1))
	cf := newTestFinder(t, c)
	pl := cf.possible

	pl.removeBreakend(be(1, true))
	assert.Empty(t, pl.links(be(1, true)))
	require.Len(t, pl.links(be(0, false)), 1)
	assert.Equal(t, be(2, true), pl.links(be(0, false))[0].Second)

	// joining 0e-2s rules out 0s-2e, but there is no such candidate
	pl.removeOpposite(be(0, false), be(2, true))
	assert.Len(t, pl.links(be(2, true)), 2)

	assert.True(t, pl.removePair(be(2, true), be(0, false)))
	assert.False(t, pl.has(&LinkedPair{First: be(0, false), Second: be(2, true)}))
	assert.False(t, pl.removePair(be(2, true), be(0, false)))

	pl.removeBreakend(be(1, false))
	assert.True(t, pl.empty())
}

func TestRemoveOpposite(t *testing.T) {
	// two inversions, linking 0s-1s excludes 0e-1e
	c := newTestCluster(t, 1,
		inv(1, "1", 100, 300, svchain.OrientLower, 1),
		inv(2, "1", 200, 400, svchain.OrientUpper, 1))
	cf := newTestFinder(t, c)
	pl := cf.possible

	require.True(t, pl.has(&LinkedPair{First: be(0, false), Second: be(1, false)}))
	pl.removeOpposite(be(0, true), be(1, true))
	assert.False(t, pl.has(&LinkedPair{First: be(0, false), Second: be(1, false)}))

	// kept while complex duplications are pending
	cf = newTestFinder(t, c)
	cf.possible.complexDups = append(cf.possible.complexDups, 0)
	cf.possible.removeOpposite(be(0, true), be(1, true))
	assert.True(t, cf.possible.has(&LinkedPair{First: be(0, false), Second: be(1, false)}))
	assert.True(t, cf.possible.isComplexDup(0))
	cf.possible.removeComplexDup(0)
	assert.False(t, cf.possible.isComplexDup(0))
}

func TestComplexDupDetection(t *testing.T) {
	c := newTestCluster(t, 1,
		dup(1, "1", 1000, 5000, 1),
		del(2, "1", 2000, 3000, 2))
	cf := newTestFinder(t, c)
	require.True(t, cf.replicate)
	assert.Equal(t, []int{0}, cf.possible.complexDups)

	// not without replication
	c = newTestCluster(t, 1,
		dup(1, "1", 1000, 5000, 1),
		del(2, "1", 2000, 3000, 1))
	cf = newTestFinder(t, c)
	assert.Empty(t, cf.possible.complexDups)
}

func TestAllelePloidyLimitsLinks(t *testing.T) {
	c := newTestCluster(t, 1,
		del(1, "1", 100, 200, 2),
		del(2, "1", 300, 400, 1),
		del(3, "1", 500, 600, 1))
	c.SetAlleleProfile("1", []svchain.AlleleSegment{
		{Position: 1, ClusterAP: 2},
		{Position: 300, ClusterAP: 0.1},
		{Position: 350, ClusterAP: 2},
	})
	cf := newTestFinder(t, c)
	require.True(t, cf.replicate)

	// 0e can't reach past 1s
	links := cf.possible.links(be(0, false))
	require.Len(t, links, 1)
	assert.Equal(t, be(1, true), links[0].Second)

	opt := DefaultChainingOptions
	opt.UseAllelePloidies = false
	cf = NewChainFinder(&opt)
	require.NoError(t, cf.Initialise(c))
	cf.determinePossibleLinks()
	assert.Len(t, cf.possible.links(be(0, false)), 2)

	// no allele ploidy at 0e, so the low segment at 1s doesn't stop it
	c = newTestCluster(t, 1,
		del(1, "1", 100, 200, 2),
		del(2, "1", 300, 400, 1),
		del(3, "1", 500, 600, 1))
	c.SetAlleleProfile("1", []svchain.AlleleSegment{
		{Position: 250, ClusterAP: 2},
		{Position: 300, ClusterAP: 0.1},
		{Position: 350, ClusterAP: 2},
	})
	cf = newTestFinder(t, c)
	require.True(t, cf.replicate)
	assert.Len(t, cf.possible.links(be(0, false)), 2)
}

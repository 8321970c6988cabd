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
)

func TestPloidyLimits(t *testing.T) {
	c := newTestCluster(t, 1, del(1, "1", 100, 200, 1))
	c.SetAlleleProfile("1", []svchain.AlleleSegment{
		{Position: 500, ClusterAP: 0.1},
		{Position: 1, ClusterAP: 1},
		{Position: 500, ClusterAP: 0.05},
		{Position: 800, ClusterAP: 1},
	})

	l := newPloidyLimits(c, 0.15)

	type Case struct {
		chr string
		pos int64
		ap  float64
		ok  bool
	}
	cases := []Case{
		{"1", 0, 0, false},
		{"1", 1, 1, true},
		{"1", 499, 1, true},
		{"1", 500, 0.05, true}, // the later segment wins
		{"1", 799, 0.05, true},
		{"1", 10000, 1, true},
		{"2", 500, 0, false},
	}
	for _, cs := range cases {
		ap, ok := l.clusterAP(cs.chr, cs.pos)
		assert.Equal(t, cs.ok, ok, "%s:%d", cs.chr, cs.pos)
		assert.Equal(t, cs.ap, ap, "%s:%d", cs.chr, cs.pos)
	}

	assert.True(t, l.blocks(&svchain.Breakend{Chromosome: "1", Position: 600}))
	assert.False(t, l.blocks(&svchain.Breakend{Chromosome: "1", Position: 900}))
	assert.False(t, l.blocks(&svchain.Breakend{Chromosome: "X", Position: 600}))

	assert.True(t, l.covers(&svchain.Breakend{Chromosome: "1", Position: 1}))
	assert.False(t, l.covers(&svchain.Breakend{Chromosome: "1", Position: 0}))
	assert.False(t, l.covers(&svchain.Breakend{Chromosome: "X", Position: 600}))
}

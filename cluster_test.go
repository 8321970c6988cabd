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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func del(id int, chr string, start, end int64, ploidy float64, tags ...[]string) *SV {
	sv := &SV{
		ID:     id,
		Type:   DEL,
		Ploidy: Ploidy{Estimate: ploidy, Uncertainty: 0.2},
		Breakends: [2]*Breakend{
			{Chromosome: chr, Position: start, Orientation: OrientUpper},
			{Chromosome: chr, Position: end, Orientation: OrientLower},
		},
	}
	if len(tags) > 0 {
		sv.Breakends[0].AssemblyTags = tags[0]
	}
	if len(tags) > 1 {
		sv.Breakends[1].AssemblyTags = tags[1]
	}
	return sv
}

func TestBreakendID(t *testing.T) {
	s := BreakendOf(3, true)
	e := BreakendOf(3, false)
	assert.Equal(t, 3, s.SV())
	assert.Equal(t, 3, e.SV())
	assert.True(t, s.IsStart())
	assert.False(t, e.IsStart())
	assert.Equal(t, e, s.Other())
	assert.Equal(t, s, e.Other())
	assert.Equal(t, NoBreakend, NoBreakend.Other())
	assert.Equal(t, "3e", e.String())
}

func TestAddSVValidation(t *testing.T) {
	c := NewCluster(1)

	_, err := c.AddSV(&SV{ID: 1, Type: DEL})
	assert.True(t, errors.Is(err, ErrInvalidBreakend))

	// a SGL with two breakends
	_, err = c.AddSV(&SV{ID: 2, Type: SGL, Breakends: [2]*Breakend{
		{Chromosome: "1", Position: 10, Orientation: 1},
		{Chromosome: "1", Position: 20, Orientation: 1},
	}})
	assert.True(t, errors.Is(err, ErrInvalidBreakend))

	_, err = c.AddSV(&SV{ID: 3, Type: SGL, Breakends: [2]*Breakend{
		{Chromosome: "1", Position: 10, Orientation: 0},
	}})
	assert.True(t, errors.Is(err, ErrInvalidBreakend))

	assert.True(t, errors.Is(c.Finalize(), ErrEmptyCluster))
}

func TestClusterFinalize(t *testing.T) {
	c := NewCluster(7)
	// added out of order
	_, err := c.AddSV(del(2, "1", 500, 600, 2))
	require.NoError(t, err)
	_, err = c.AddSV(del(1, "1", 100, 200, 2))
	require.NoError(t, err)
	_, err = c.AddSV(del(3, "X", 100, 200, 2))
	require.NoError(t, err)
	require.NoError(t, c.Finalize())

	assert.Equal(t, []string{"1", "X"}, c.Chromosomes())

	list := c.ChrBreakends["1"]
	require.Len(t, list, 4)
	for i, b := range list {
		assert.Equal(t, i, b.Index)
		if i > 0 {
			assert.True(t, list[i-1].Position < b.Position)
		}
	}
	assert.Equal(t, BreakendOf(1, true), list[0].ID)

	// default ploidy bounds and breakend ploidy
	sv := c.SVs[0]
	assert.InDelta(t, 1.8, sv.PloidyMin, 1e-9)
	assert.InDelta(t, 2.2, sv.PloidyMax, 1e-9)
	assert.Equal(t, sv.Ploidy, sv.Breakends[1].Ploidy)

	assert.False(t, c.RequiresReplication)
	assert.Equal(t, ArmP, list[0].Arm)
}

func TestDetermineRequiresReplication(t *testing.T) {
	c := NewCluster(1)
	c.AddSV(del(1, "1", 100, 200, 1))
	c.AddSV(del(2, "1", 300, 400, 2.1))
	require.NoError(t, c.Finalize())
	assert.True(t, c.RequiresReplication)

	// an explicit setting wins
	c.SetRequiresReplication(false)
	require.NoError(t, c.Finalize())
	assert.False(t, c.RequiresReplication)

	// a breakend assembled to two partners
	c = NewCluster(2)
	c.AddSV(del(1, "1", 100, 200, 1))
	c.AddSV(del(2, "1", 300, 400, 1))
	c.AddSV(del(3, "1", 500, 600, 1))
	require.NoError(t, c.AddAssemblyLink(BreakendOf(0, false), BreakendOf(1, true)))
	require.NoError(t, c.AddAssemblyLink(BreakendOf(0, false), BreakendOf(2, true)))
	require.NoError(t, c.Finalize())
	assert.True(t, c.RequiresReplication)
	assert.Equal(t, 2, c.AssemblyPartners(BreakendOf(0, false)))
}

func TestFormAssemblyLinksSkipsSpanning(t *testing.T) {
	c := NewCluster(1)
	c.AddSV(del(0, "1", 100, 200, 2, nil, []string{"asmb01", "asmb02"}))
	c.AddSV(del(1, "1", 300, 400, 2, []string{"asmb01"}, []string{"asmb12"}))
	c.AddSV(del(2, "1", 500, 600, 2, []string{"asmb12", "asmb02"}, []string{"asmb23"}))
	c.AddSV(del(3, "1", 700, 800, 2, []string{"asmb23"}, []string{"asmb34"}))
	c.AddSV(del(4, "1", 900, 1000, 2, []string{"asmb34"}))

	n := c.FormAssemblyLinks()
	require.NoError(t, c.Finalize())

	assert.Equal(t, 4, n)
	assert.Len(t, c.AssemblyLinks, 4)
	assert.Equal(t, 1, c.AssemblyPartners(BreakendOf(0, false)))
	assert.Equal(t, 1, c.AssemblyPartners(BreakendOf(2, true)))
	for _, l := range c.AssemblyLinks {
		assert.False(t, l[0] == BreakendOf(0, false) && l[1] == BreakendOf(2, true))
	}
	assert.False(t, c.Breakend(BreakendOf(0, true)).Assembled)
	assert.True(t, c.Breakend(BreakendOf(4, true)).Assembled)
}

func TestArmGroups(t *testing.T) {
	c := NewCluster(1)
	c.AddSV(del(1, "1", 1000, 2000, 1))
	c.AddSV(del(2, "1", 130000000, 130001000, 1))
	c.AddSV(del(3, "2", 1000, 2000, 1))
	require.NoError(t, c.Finalize())

	groups := c.ArmGroups()
	require.Len(t, groups, 3)
	assert.Equal(t, ArmP, groups[0].Arm)
	assert.Equal(t, ArmQ, groups[1].Arm)
	assert.Equal(t, "2", groups[2].Chromosome)
	assert.Len(t, groups[0].Breakends, 2)

	assert.Equal(t, ArmUnknown, ArmOf("GL000220.1", 100))
	assert.Equal(t, ArmQ, ArmOf("chrX", 100000000))
}

func TestParseSVType(t *testing.T) {
	for _, name := range []string{"del", "DUP", " inv ", "BND", "INS", "SGL", "INF"} {
		if _, err := ParseSVType(name); err != nil {
			t.Errorf("failed to parse %q: %s", name, err)
		}
	}
	if _, err := ParseSVType("CNV"); !errors.Is(err, ErrUnknownSVType) {
		t.Errorf("CNV should not be parsed")
	}
	assert.True(t, SGL.IsSingleEnded())
	assert.False(t, INV.IsSingleEnded())
}

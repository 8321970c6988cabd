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
	"sort"

	"github.com/twotwotwo/sorts"
	"github.com/twotwotwo/sorts/sortutil"
	"golang.org/x/exp/maps"
)

// AlleleSegment is a piece of the cluster allele ploidy profile,
// starting at Position and lasting till the next segment.
type AlleleSegment struct {
	Position  int64
	ClusterAP float64
}

// Cluster is a group of SVs from one rearrangement event.
type Cluster struct {
	ID  int
	SVs []*SV

	// position-ordered breakends of each chromosome, built by Finalize.
	ChrBreakends map[string][]*Breakend

	Foldbacks       []int // SV indexes
	DoubleMinuteSVs []int // SV indexes

	AssemblyLinks [][2]BreakendID

	RequiresReplication bool

	// optional, chromosomes without a profile skip allele ploidy checks.
	AlleleProfiles map[string][]AlleleSegment

	replicationSet bool
	finalized      bool
	chromosomes    []string
}

// NewCluster creates an empty cluster.
func NewCluster(id int) *Cluster {
	return &Cluster{
		ID:           id,
		SVs:          make([]*SV, 0, 8),
		ChrBreakends: make(map[string][]*Breakend, 4),
	}
}

// AddSV adds an SV and returns its index.
// Breakend ids, arms and missing ploidies are filled in.
func (c *Cluster) AddSV(sv *SV) (int, error) {
	if sv.Breakends[0] == nil {
		return -1, fmt.Errorf("%w: SV %d has no start breakend", ErrInvalidBreakend, sv.ID)
	}
	if sv.Type.IsSingleEnded() != (sv.Breakends[1] == nil) {
		return -1, fmt.Errorf("%w: SV %d of type %s has wrong number of breakends",
			ErrInvalidBreakend, sv.ID, sv.Type)
	}

	idx := len(c.SVs)
	for se, b := range sv.Breakends {
		if b == nil {
			continue
		}
		if b.Orientation != OrientLower && b.Orientation != OrientUpper {
			return -1, fmt.Errorf("%w: SV %d has orientation %d",
				ErrInvalidBreakend, sv.ID, b.Orientation)
		}
		b.ID = BreakendOf(idx, se == 0)
		if b.Arm == ArmUnknown {
			b.Arm = ArmOf(b.Chromosome, b.Position)
		}
		if b.Ploidy.Estimate == 0 && b.Ploidy.Uncertainty == 0 {
			b.Ploidy = sv.Ploidy
		}
	}
	if sv.PloidyMin == 0 && sv.PloidyMax == 0 {
		sv.PloidyMin = sv.Ploidy.Min()
		sv.PloidyMax = sv.Ploidy.Max()
	}

	c.SVs = append(c.SVs, sv)
	c.finalized = false
	return idx, nil
}

// Breakend returns a breakend by id, nil for an invalid id.
func (c *Cluster) Breakend(id BreakendID) *Breakend {
	if id < 0 || id.SV() >= len(c.SVs) {
		return nil
	}
	return c.SVs[id.SV()].Breakends[id&1]
}

// SVIndex returns the index of the SV with the external id.
func (c *Cluster) SVIndex(id int) (int, error) {
	for i, sv := range c.SVs {
		if sv.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrUnknownSV, id)
}

// AddAssemblyLink records an assembly-derived link between two breakends.
func (c *Cluster) AddAssemblyLink(a, b BreakendID) error {
	ba, bb := c.Breakend(a), c.Breakend(b)
	if ba == nil || bb == nil {
		return fmt.Errorf("%w: assembly link %s-%s", ErrInvalidBreakend, a, b)
	}
	if a.SV() == b.SV() {
		return fmt.Errorf("%w: assembly link %s-%s within one SV", ErrInvalidBreakend, a, b)
	}
	for _, l := range c.AssemblyLinks {
		if (l[0] == a && l[1] == b) || (l[0] == b && l[1] == a) {
			return nil
		}
	}
	ba.Assembled = true
	bb.Assembled = true
	c.AssemblyLinks = append(c.AssemblyLinks, [2]BreakendID{a, b})
	return nil
}

// AssemblyPartners returns the number of assembly links of a breakend.
func (c *Cluster) AssemblyPartners(id BreakendID) int {
	var n int
	for _, l := range c.AssemblyLinks {
		if l[0] == id || l[1] == id {
			n++
		}
	}
	return n
}

type assemblyCandidate struct {
	lower, upper *Breakend
}

// FormAssemblyLinks pairs facing breakends of different SVs sharing
// an assembly tag. Shorter links are taken first and a breakend takes
// only one partner, so links spanning other assembled breakends are
// dropped. It returns the number of links added.
func (c *Cluster) FormAssemblyLinks() int {
	cands := make([]assemblyCandidate, 0, 8)
	for i, v1 := range c.SVs {
		for _, b1 := range v1.Breakends {
			if b1 == nil || len(b1.AssemblyTags) == 0 {
				continue
			}
			for _, v2 := range c.SVs[i+1:] {
				for _, b2 := range v2.Breakends {
					if b2 == nil || b2.Chromosome != b1.Chromosome || !shareTag(b1, b2) {
						continue
					}
					lower, upper := b1, b2
					if upper.Position < lower.Position {
						lower, upper = upper, lower
					}
					if lower.Orientation != OrientLower || upper.Orientation != OrientUpper ||
						lower.Position == upper.Position {
						continue
					}
					cands = append(cands, assemblyCandidate{lower: lower, upper: upper})
				}
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		li := cands[i].upper.Position - cands[i].lower.Position
		lj := cands[j].upper.Position - cands[j].lower.Position
		if li != lj {
			return li < lj
		}
		return cands[i].lower.Position < cands[j].lower.Position
	})

	var n int
	for _, cand := range cands {
		if c.AssemblyPartners(cand.lower.ID) > 0 || c.AssemblyPartners(cand.upper.ID) > 0 {
			continue
		}
		if c.AddAssemblyLink(cand.lower.ID, cand.upper.ID) == nil {
			n++
		}
	}
	return n
}

func shareTag(a, b *Breakend) bool {
	for _, t1 := range a.AssemblyTags {
		for _, t2 := range b.AssemblyTags {
			if t1 == t2 {
				return true
			}
		}
	}
	return false
}

func addUniqueInt(list []int, v int) []int {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// RegisterFoldback flags an SV as a foldback.
func (c *Cluster) RegisterFoldback(sv int) error {
	if sv < 0 || sv >= len(c.SVs) {
		return fmt.Errorf("%w: index %d", ErrUnknownSV, sv)
	}
	c.Foldbacks = addUniqueInt(c.Foldbacks, sv)
	return nil
}

// RegisterDoubleMinute flags an SV as a double minute candidate.
func (c *Cluster) RegisterDoubleMinute(sv int) error {
	if sv < 0 || sv >= len(c.SVs) {
		return fmt.Errorf("%w: index %d", ErrUnknownSV, sv)
	}
	c.DoubleMinuteSVs = addUniqueInt(c.DoubleMinuteSVs, sv)
	return nil
}

// IsFoldback tells if the SV is a registered foldback.
func (c *Cluster) IsFoldback(sv int) bool { return containsInt(c.Foldbacks, sv) }

// IsDoubleMinute tells if the SV is a double minute candidate.
func (c *Cluster) IsDoubleMinute(sv int) bool { return containsInt(c.DoubleMinuteSVs, sv) }

// SetAlleleProfile sets the cluster allele ploidy profile of a chromosome.
func (c *Cluster) SetAlleleProfile(chr string, segments []AlleleSegment) {
	if c.AlleleProfiles == nil {
		c.AlleleProfiles = make(map[string][]AlleleSegment, 2)
	}
	c.AlleleProfiles[chr] = segments
}

// SetRequiresReplication overrides the flag computed by Finalize.
func (c *Cluster) SetRequiresReplication(v bool) {
	c.RequiresReplication = v
	c.replicationSet = true
}

// Baseline returns the minimum positive SV ploidy.
func (c *Cluster) Baseline() float64 {
	lowest := math.MaxFloat64
	for _, sv := range c.SVs {
		if sv.Ploidy.Estimate > 0 && sv.Ploidy.Estimate < lowest {
			lowest = sv.Ploidy.Estimate
		}
	}
	if lowest == math.MaxFloat64 {
		return 1
	}
	return lowest
}

// DetermineRequiresReplication decides whether some SV has to be used
// more than once: its ploidy is a multiple of the cluster baseline,
// or one of its breakends has several assembly links.
func (c *Cluster) DetermineRequiresReplication() bool {
	baseline := c.Baseline()
	var multiple, n int
	for _, sv := range c.SVs {
		multiple = int(math.Round(sv.Ploidy.Estimate / baseline))
		for _, b := range sv.Breakends {
			if b == nil {
				continue
			}
			if n = c.AssemblyPartners(b.ID); n > multiple {
				multiple = n
			}
		}
		if multiple > 1 {
			return true
		}
	}
	return false
}

// breakendsByPos sorts breakends by position, ties broken by id.
type breakendsByPos []*Breakend

func (s breakendsByPos) Len() int      { return len(s) }
func (s breakendsByPos) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s breakendsByPos) Less(i, j int) bool {
	if s[i].Position == s[j].Position {
		return s[i].ID < s[j].ID
	}
	return s[i].Position < s[j].Position
}

// Finalize builds the position-ordered breakend lists and, unless set
// explicitly, the replication flag. It must be called after all SVs and
// links are added.
func (c *Cluster) Finalize() error {
	if len(c.SVs) == 0 {
		return ErrEmptyCluster
	}

	clear(c.ChrBreakends)
	for _, sv := range c.SVs {
		for _, b := range sv.Breakends {
			if b == nil {
				continue
			}
			c.ChrBreakends[b.Chromosome] = append(c.ChrBreakends[b.Chromosome], b)
		}
	}
	for _, list := range c.ChrBreakends {
		sorts.Quicksort(breakendsByPos(list))
		for i, b := range list {
			b.Index = i
		}
	}

	c.chromosomes = maps.Keys(c.ChrBreakends)
	sortutil.Strings(c.chromosomes)

	if !c.replicationSet {
		c.RequiresReplication = c.DetermineRequiresReplication()
	}
	c.finalized = true
	return nil
}

// Finalized tells if Finalize has been called since the last change.
func (c *Cluster) Finalized() bool { return c.finalized }

// Chromosomes returns the sorted chromosome names.
func (c *Cluster) Chromosomes() []string { return c.chromosomes }

// ArmGroup holds the breakends of one chromosome arm.
type ArmGroup struct {
	Chromosome string
	Arm        Arm
	Breakends  []*Breakend
}

// ArmGroups groups breakends by chromosome arm, in chromosome
// and arm order.
func (c *Cluster) ArmGroups() []*ArmGroup {
	groups := make([]*ArmGroup, 0, len(c.chromosomes)*2)
	var g *ArmGroup
	for _, chr := range c.chromosomes {
		g = nil
		for _, b := range c.ChrBreakends[chr] {
			if g == nil || g.Arm != b.Arm {
				g = &ArmGroup{Chromosome: chr, Arm: b.Arm}
				groups = append(groups, g)
			}
			g.Breakends = append(g.Breakends, b)
		}
	}
	return groups
}

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

	"github.com/shenwei356/svchain"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

// possibleLinks caches candidate templated insertions of each breakend,
// nearest first. A pair is shared by the lists of both of its breakends.
type possibleLinks struct {
	byBreakend map[svchain.BreakendID][]*LinkedPair

	adjacent         []*LinkedPair
	adjacentMatching []*LinkedPair

	complexDups []int // SV indexes
}

func newPossibleLinks() *possibleLinks {
	return &possibleLinks{byBreakend: make(map[svchain.BreakendID][]*LinkedPair, 64)}
}

func (pl *possibleLinks) reset() {
	clear(pl.byBreakend)
	pl.adjacent = pl.adjacent[:0]
	pl.adjacentMatching = pl.adjacentMatching[:0]
	pl.complexDups = pl.complexDups[:0]
}

func (pl *possibleLinks) links(be svchain.BreakendID) []*LinkedPair {
	return pl.byBreakend[be]
}

// breakends returns breakends having candidates, in ascending order.
func (pl *possibleLinks) breakends() []svchain.BreakendID {
	bes := maps.Keys(pl.byBreakend)
	sort.Slice(bes, func(i, j int) bool { return bes[i] < bes[j] })
	return bes
}

func (pl *possibleLinks) empty() bool { return len(pl.byBreakend) == 0 }

// find returns the candidate joining two breakends.
func (pl *possibleLinks) find(a, b svchain.BreakendID) *LinkedPair {
	for _, p := range pl.byBreakend[a] {
		if p.HasBreakend(b) {
			return p
		}
	}
	return nil
}

// has tells if a pair is still a candidate.
func (pl *possibleLinks) has(p *LinkedPair) bool {
	return pl.find(p.First, p.Second) != nil
}

func removeFromList(list []*LinkedPair, a, b svchain.BreakendID) ([]*LinkedPair, bool) {
	for i, p := range list {
		if p.HasBreakend(a) && p.HasBreakend(b) {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

func (pl *possibleLinks) removeFrom(be, a, b svchain.BreakendID) bool {
	list, ok := pl.byBreakend[be]
	if !ok {
		return false
	}
	list, removed := removeFromList(list, a, b)
	if len(list) == 0 {
		delete(pl.byBreakend, be)
	} else {
		pl.byBreakend[be] = list
	}
	return removed
}

// removePair drops the candidate joining two breakends from both lists.
func (pl *possibleLinks) removePair(a, b svchain.BreakendID) bool {
	r1 := pl.removeFrom(a, a, b)
	r2 := pl.removeFrom(b, a, b)
	return r1 || r2
}

// removeBreakend drops all candidates of an exhausted breakend.
func (pl *possibleLinks) removeBreakend(be svchain.BreakendID) {
	list, ok := pl.byBreakend[be]
	if !ok {
		return
	}
	delete(pl.byBreakend, be)
	var other svchain.BreakendID
	for _, p := range list {
		other = p.OtherBreakend(be)
		pl.removeFrom(other, be, other)
	}
}

// removeOpposite drops the candidate joining the other breakends of two
// SVs just linked, since both pairings can't coexist in one chain.
// Complex duplications can link around a single SV this way,
// so nothing is removed while such candidates exist.
func (pl *possibleLinks) removeOpposite(be, partner svchain.BreakendID) {
	if len(pl.complexDups) > 0 {
		return
	}
	a, b := be.Other(), partner.Other()
	if a == svchain.NoBreakend || b == svchain.NoBreakend {
		return
	}
	pl.removePair(a, b)
}

func (pl *possibleLinks) isComplexDup(sv int) bool {
	for _, v := range pl.complexDups {
		if v == sv {
			return true
		}
	}
	return false
}

func (pl *possibleLinks) removeComplexDup(sv int) {
	for i, v := range pl.complexDups {
		if v == sv {
			pl.complexDups = append(pl.complexDups[:i], pl.complexDups[i+1:]...)
			return
		}
	}
}

// determinePossibleLinks pairs every lower breakend with the facing
// breakends above it on the same chromosome. Scanning stops at a
// segment without spare cluster allele ploidy.
func (cf *ChainFinder) determinePossibleLinks() {
	pl := cf.possible
	c := cf.cluster
	checkAP := cf.options.UseAllelePloidies && cf.replicate

	var list []*svchain.Breakend
	var lower, upper *svchain.Breakend
	var i, j, skippedNonAssembled int
	var lowerCap float64
	var lowerValidAP bool
	var p LinkedPair
	var ok bool
	for _, chr := range c.Chromosomes() {
		list = cf.chrBreakends[chr]

		for i = 0; i < len(list)-1; i++ {
			lower = list[i]
			if lower.Orientation != svchain.OrientLower || cf.alreadyLinked(lower.ID) {
				continue
			}
			lowerCap = cf.capacity.unlinked(lower.ID)
			lowerValidAP = checkAP && cf.limits.covers(lower)

			// the first non-assembled breakend after the lower one
			skippedNonAssembled = -1

			for j = i + 1; j < len(list); j++ {
				upper = list[j]

				if skippedNonAssembled == -1 && !upper.Assembled {
					skippedNonAssembled = j
				}

				if upper.Orientation != svchain.OrientUpper ||
					upper.SV() == lower.SV() ||
					cf.alreadyLinked(upper.ID) {
					continue
				}

				p, ok = AreLinkedSection(c, cf.options, lower.ID, upper.ID, false)
				if !ok {
					continue
				}
				pair := &LinkedPair{First: p.First, Second: p.Second, Length: p.Length}

				if j == i+1 {
					pl.adjacent = append(pl.adjacent, pair)
					if cf.options.Tolerance.Equal(lowerCap, cf.capacity.unlinked(upper.ID)) {
						pl.adjacentMatching = append(pl.adjacentMatching, pair)
					}
				}

				pl.byBreakend[lower.ID] = append(pl.byBreakend[lower.ID], pair)
				// nearer than the ones added before
				pl.byBreakend[upper.ID] = append([]*LinkedPair{pair}, pl.byBreakend[upper.ID]...)

				if cf.replicate && (skippedNonAssembled == -1 || skippedNonAssembled == j) {
					if !c.IsFoldback(lower.SV()) {
						cf.checkIsComplexDupSV(lower, upper)
					}
					if !c.IsFoldback(upper.SV()) {
						cf.checkIsComplexDupSV(upper, lower)
					}
				}

				if lowerValidAP && cf.limits.blocks(upper) {
					log.WithField("cluster", c.ID).Tracef("breakend %s limited at %s by cluster allele ploidy",
						lower, upper)
					break
				}
			}
		}
	}
}

// checkIsComplexDupSV tests whether an SV, with ploidy about half of the
// SV it faces, is flanked by the same higher-ploidy SV on both sides.
func (cf *ChainFinder) checkIsComplexDupSV(lowerPloidy, higherPloidy *svchain.Breakend) {
	c := cf.cluster
	sv := c.SVs[lowerPloidy.SV()]
	if sv.IsSingleEnded() || sv.Type == svchain.DEL || cf.possible.isComplexDup(lowerPloidy.SV()) {
		return
	}

	higher := c.SVs[higherPloidy.SV()]
	if sv.PloidyMin*2 > higher.PloidyMax {
		return
	}
	lessThanMax := sv.PloidyMax < higher.PloidyMin

	other := sv.Breakend(!lowerPloidy.IsStart())
	list := cf.chrBreakends[other.Chromosome]
	step := -1
	if other.Orientation == svchain.OrientLower {
		step = 1
	}

	var b *svchain.Breakend
	for idx := cf.chrIndex[other.ID] + step; idx >= 0 && idx < len(list); idx += step {
		b = list[idx]
		if b == lowerPloidy {
			return
		}
		if b.Assembled {
			continue
		}
		if b.Orientation == other.Orientation {
			return
		}

		otherSV := c.SVs[b.SV()]
		if sv.PloidyMin*2 <= otherSV.PloidyMax && (lessThanMax || sv.PloidyMax < otherSV.PloidyMin) {
			log.WithField("cluster", c.ID).Debugf("complex dup %s ploidy %.1f-%.1f vs SV %d",
				sv, sv.PloidyMin, sv.PloidyMax, higher.ID)
			cf.possible.complexDups = append(cf.possible.complexDups, lowerPloidy.SV())
		}
		return
	}
}

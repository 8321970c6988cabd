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
	"fmt"
	"math"

	"github.com/shenwei356/svchain"
	"github.com/twotwotwo/sorts/sortutil"
	"golang.org/x/exp/maps"
)

// svState holds the ploidy left on the two breakends of an SV.
type svState struct {
	sv       int
	capacity float64
	consumed [2]float64
	single   bool
}

func (s *svState) unlinked(se int) float64 {
	return math.Max(s.capacity-s.consumed[se], 0)
}

// capacityTracker records how much ploidy of each breakend has been
// placed into links. Without replication every breakend has a capacity
// of one.
type capacityTracker struct {
	active    map[int]*svState
	completed map[int]*svState
	threshold float64
}

func newCapacityTracker(c *svchain.Cluster, replicate bool, exhaustedFraction float64) *capacityTracker {
	t := &capacityTracker{
		active:    make(map[int]*svState, len(c.SVs)),
		completed: make(map[int]*svState, len(c.SVs)),
	}

	baseline := 1.0
	if replicate {
		baseline = c.Baseline()
	}
	t.threshold = exhaustedFraction * baseline

	for i, sv := range c.SVs {
		s := &svState{sv: i, capacity: 1, single: sv.IsSingleEnded()}
		if replicate {
			s.capacity = sv.Ploidy.Estimate
		}
		t.active[i] = s
	}
	return t
}

func (t *capacityTracker) state(sv int) *svState {
	if s, ok := t.active[sv]; ok {
		return s
	}
	return t.completed[sv]
}

func seIndex(be svchain.BreakendID) int {
	if be.IsStart() {
		return 0
	}
	return 1
}

// unlinked returns the ploidy not yet placed into links.
func (t *capacityTracker) unlinked(be svchain.BreakendID) float64 {
	s := t.state(be.SV())
	if s == nil {
		return 0
	}
	return s.unlinked(seIndex(be))
}

// allocated returns the ploidy already placed into links.
func (t *capacityTracker) allocated(be svchain.BreakendID) float64 {
	s := t.state(be.SV())
	if s == nil {
		return 0
	}
	return s.consumed[seIndex(be)]
}

// exhausted tells if a breakend has no usable ploidy left.
func (t *capacityTracker) exhausted(be svchain.BreakendID) bool {
	s, ok := t.active[be.SV()]
	if !ok {
		return true
	}
	if s.single && !be.IsStart() {
		return true
	}
	return s.unlinked(seIndex(be)) <= t.threshold
}

// record places ploidy on a breakend. The amount is clipped to what is
// left, and clipped is returned as true then. exhaust marks the breakend
// as fully used.
func (t *capacityTracker) record(be svchain.BreakendID, amount float64, exhaust bool) (clipped bool, err error) {
	s, ok := t.active[be.SV()]
	if !ok || t.exhausted(be) {
		return false, fmt.Errorf("%w: %s", ErrBreakendExhausted, be)
	}

	se := seIndex(be)
	if rem := s.unlinked(se); amount > rem {
		amount = rem
		clipped = true
	}
	s.consumed[se] += amount
	if exhaust {
		s.consumed[se] = s.capacity
	}
	return clipped, nil
}

// complete moves an SV with all breakends exhausted to the completed set.
func (t *capacityTracker) complete(sv int) bool {
	s, ok := t.active[sv]
	if !ok {
		return false
	}
	if !t.exhausted(svchain.BreakendOf(sv, true)) {
		return false
	}
	if !s.single && !t.exhausted(svchain.BreakendOf(sv, false)) {
		return false
	}
	delete(t.active, sv)
	t.completed[sv] = s
	return true
}

func (t *capacityTracker) isActive(sv int) bool {
	_, ok := t.active[sv]
	return ok
}

// activeSVs returns indexes of SVs still in play, in ascending order.
func (t *capacityTracker) activeSVs() []int {
	svs := maps.Keys(t.active)
	sortutil.Ints(svs)
	return svs
}

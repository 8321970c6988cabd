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
	"strings"

	"github.com/shenwei356/svchain"
)

// Chain is a walk through SVs joined by templated insertions.
// Consecutive links enter and leave an SV through its two breakends:
// Links[i].Second and Links[i+1].First belong to the same SV.
type Chain struct {
	ID     int
	Links  []LinkedPair
	Ploidy svchain.Ploidy
	Closed bool
}

func newChain(id int) *Chain {
	return &Chain{ID: id, Links: make([]LinkedPair, 0, 8)}
}

// OpenBreakend returns the unlinked breakend at the start or end of
// the chain. Closed and empty chains have none. The returned id may refer
// to the missing end of a single-ended SV.
func (ch *Chain) OpenBreakend(start bool) svchain.BreakendID {
	if ch.Closed || len(ch.Links) == 0 {
		return svchain.NoBreakend
	}
	if start {
		return ch.Links[0].First.Other()
	}
	return ch.Links[len(ch.Links)-1].Second.Other()
}

func (ch *Chain) canAddToStart(p *LinkedPair) bool {
	be := ch.OpenBreakend(true)
	return be != svchain.NoBreakend && p.HasBreakend(be)
}

func (ch *Chain) canAddToEnd(p *LinkedPair) bool {
	be := ch.OpenBreakend(false)
	return be != svchain.NoBreakend && p.HasBreakend(be)
}

// wouldClose tells if the link joins the two open ends of the chain.
func (ch *Chain) wouldClose(p *LinkedPair) bool {
	s, e := ch.OpenBreakend(true), ch.OpenBreakend(false)
	return s != svchain.NoBreakend && s != e && p.HasBreakend(s) && p.HasBreakend(e)
}

// addLink adds a link at one end, orienting it to follow the walk.
func (ch *Chain) addLink(p LinkedPair, toStart bool) {
	if len(ch.Links) == 0 {
		ch.Links = append(ch.Links, p)
		return
	}
	if toStart {
		if p.Second != ch.OpenBreakend(true) {
			p = p.Reverse()
		}
		ch.Links = append(ch.Links, LinkedPair{})
		copy(ch.Links[1:], ch.Links)
		ch.Links[0] = p
		return
	}
	if p.First != ch.OpenBreakend(false) {
		p = p.Reverse()
	}
	ch.Links = append(ch.Links, p)
}

// reverse walks the chain the other way.
func (ch *Chain) reverse() {
	n := len(ch.Links)
	for i := 0; i < n/2; i++ {
		ch.Links[i], ch.Links[n-1-i] = ch.Links[n-1-i], ch.Links[i]
	}
	for i := range ch.Links {
		ch.Links[i] = ch.Links[i].Reverse()
	}
}

func reversedLinks(links []LinkedPair) []LinkedPair {
	r := make([]LinkedPair, len(links))
	for i, p := range links {
		r[len(links)-1-i] = p.Reverse()
	}
	return r
}

// foldbackOnLink folds the chain back on itself through a foldback:
// l1 leaves the open breakend into the foldback and l2 comes back
// to it, then the chain is walked in reverse.
func (ch *Chain) foldbackOnLink(l1, l2 LinkedPair) {
	if ch.OpenBreakend(true) == l1.First {
		ch.reverse()
	}
	orig := reversedLinks(ch.Links)
	ch.Links = append(ch.Links, l1, l2)
	ch.Links = append(ch.Links, orig...)
}

// duplicateOnLink repeats the chain, joining its end to its start
// through a duplicated SV.
func (ch *Chain) duplicateOnLink(l1, l2 LinkedPair) {
	orig := make([]LinkedPair, len(ch.Links))
	copy(orig, ch.Links)
	ch.Links = append(ch.Links, l1, l2)
	ch.Links = append(ch.Links, orig...)
}

// appendChain appends the links of o, reversed if asked.
func (ch *Chain) appendChain(o *Chain, reverse bool) {
	if reverse {
		ch.Links = append(ch.Links, reversedLinks(o.Links)...)
		return
	}
	ch.Links = append(ch.Links, o.Links...)
}

// prependChain puts the links of o before the chain, reversed if asked.
func (ch *Chain) prependChain(o *Chain, reverse bool) {
	var links []LinkedPair
	if reverse {
		links = reversedLinks(o.Links)
	} else {
		links = make([]LinkedPair, len(o.Links))
		copy(links, o.Links)
	}
	ch.Links = append(links, ch.Links...)
}

func (ch *Chain) copy(id int) *Chain {
	links := make([]LinkedPair, len(ch.Links))
	copy(links, ch.Links)
	return &Chain{ID: id, Links: links, Ploidy: ch.Ploidy, Closed: ch.Closed}
}

// SVs returns the indexes of SVs in walk order, each once.
func (ch *Chain) SVs() []int {
	svs := make([]int, 0, len(ch.Links)+1)
	seen := make(map[int]struct{}, len(ch.Links)+1)
	var ok bool
	for _, p := range ch.Links {
		for _, be := range [2]svchain.BreakendID{p.First, p.Second} {
			if _, ok = seen[be.SV()]; !ok {
				seen[be.SV()] = struct{}{}
				svs = append(svs, be.SV())
			}
		}
	}
	return svs
}

// SVCount returns the number of distinct SVs.
func (ch *Chain) SVCount() int { return len(ch.SVs()) }

// HasSV tells if the chain goes through an SV.
func (ch *Chain) HasSV(sv int) bool {
	for i := range ch.Links {
		if ch.Links[i].HasSV(sv) {
			return true
		}
	}
	return false
}

// breakendUses returns how many links use a breakend.
func (ch *Chain) breakendUses(be svchain.BreakendID) int {
	var n int
	for i := range ch.Links {
		if ch.Links[i].HasBreakend(be) {
			n++
		}
	}
	return n
}

// identical tells if two chains have the same links, in the same
// or the reverse order.
func (ch *Chain) identical(o *Chain) bool {
	n := len(ch.Links)
	if n != len(o.Links) || ch.Closed != o.Closed {
		return false
	}
	forward, backward := true, true
	for i := 0; i < n && (forward || backward); i++ {
		if forward && !ch.Links[i].Matches(&o.Links[i]) {
			forward = false
		}
		if backward && !ch.Links[i].Matches(&o.Links[n-1-i]) {
			backward = false
		}
	}
	return forward || backward
}

func alternates(a, b *LinkedPair) bool {
	return a.Second.SV() == b.First.SV() && a.Second != b.First
}

// checkAlternation verifies that consecutive links pass through both
// breakends of the SV between them.
func (ch *Chain) checkAlternation() error {
	for i := 1; i < len(ch.Links); i++ {
		if !alternates(&ch.Links[i-1], &ch.Links[i]) {
			return fmt.Errorf("%w: chain %d links %s and %s don't alternate",
				ErrInvalidChain, ch.ID, &ch.Links[i-1], &ch.Links[i])
		}
	}
	if ch.Closed && len(ch.Links) > 0 {
		last := &ch.Links[len(ch.Links)-1]
		if !alternates(last, &ch.Links[0]) {
			return fmt.Errorf("%w: closed chain %d links %s and %s don't alternate",
				ErrInvalidChain, ch.ID, last, &ch.Links[0])
		}
	}
	return nil
}

// Consistency sums the orientations of the open breakends.
// A chain shaped like a normal chromosome sums to zero.
func (ch *Chain) Consistency(c *svchain.Cluster) int {
	var sum int
	var b *svchain.Breakend
	for _, start := range [2]bool{true, false} {
		if b = c.Breakend(ch.OpenBreakend(start)); b != nil {
			sum += int(b.Orientation)
		}
	}
	return sum
}

// Consistent tells if the chain is closed or its open ends
// face each other.
func (ch *Chain) Consistent(c *svchain.Cluster) bool {
	if ch.Closed {
		return true
	}
	if c.Breakend(ch.OpenBreakend(true)) == nil || c.Breakend(ch.OpenBreakend(false)) == nil {
		return false
	}
	return ch.Consistency(c) == 0
}

func (ch *Chain) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "chain %d ploidy %s", ch.ID, ch.Ploidy)
	if ch.Closed {
		sb.WriteString(" closed")
	}
	sb.WriteString(":")
	for i := range ch.Links {
		sb.WriteString(" ")
		sb.WriteString(ch.Links[i].String())
	}
	return sb.String()
}

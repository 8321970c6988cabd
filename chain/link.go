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

	"github.com/shenwei356/svchain"
)

// LinkedPair is a templated insertion joining two breakends.
// In a chain, First is the breakend the walk enters the link from,
// and Second is where it leaves to the next SV.
// Candidate pairs are created with First as the lower breakend.
type LinkedPair struct {
	First  svchain.BreakendID
	Second svchain.BreakendID
	Length int64

	Assembled     bool
	PloidyMatched bool
	Rule          ChainingRule
	Index         int // order of commitment
	RepeatCount   int
}

// pairKey identifies a pair regardless of direction.
type pairKey struct {
	a, b svchain.BreakendID
}

// key returns the direction-free identity of the pair.
func (p *LinkedPair) key() pairKey {
	if p.First < p.Second {
		return pairKey{p.First, p.Second}
	}
	return pairKey{p.Second, p.First}
}

// Matches tells if two pairs join the same breakends.
func (p *LinkedPair) Matches(o *LinkedPair) bool {
	return p.key() == o.key()
}

// Reverse returns the pair walked in the opposite direction.
func (p LinkedPair) Reverse() LinkedPair {
	p.First, p.Second = p.Second, p.First
	return p
}

// HasBreakend tells if the pair uses the breakend.
func (p *LinkedPair) HasBreakend(id svchain.BreakendID) bool {
	return p.First == id || p.Second == id
}

// OtherBreakend returns the partner of a breakend in the pair.
func (p *LinkedPair) OtherBreakend(id svchain.BreakendID) svchain.BreakendID {
	if p.First == id {
		return p.Second
	}
	if p.Second == id {
		return p.First
	}
	return svchain.NoBreakend
}

// HasSV tells if the pair uses a breakend of the SV.
func (p *LinkedPair) HasSV(sv int) bool {
	return p.First.SV() == sv || p.Second.SV() == sv
}

func (p *LinkedPair) String() string {
	return fmt.Sprintf("%s-%s(%d)", p.First, p.Second, p.Length)
}

// minTemplatedInsertionLength is the shortest allowed distance between
// the breakends of a templated insertion.
func (o *ChainingOptions) minTemplatedInsertionLength(c *svchain.Cluster, a, b *svchain.Breakend) int64 {
	length := o.MinTILength
	for _, be := range [2]*svchain.Breakend{a, b} {
		if l, ok := o.TypeMinTILength[c.SVs[be.SV()].Type]; ok && l > length {
			length = l
		}
	}
	return int64(length + a.InexactHomology + b.InexactHomology)
}

// AreLinkedSection checks if two breakends face each other on the same
// chromosome and are far enough apart to form a templated insertion.
// The returned pair has the lower breakend as First.
// A pair of breakends of one SV is only accepted with allowSameSV.
func AreLinkedSection(c *svchain.Cluster, o *ChainingOptions,
	a, b svchain.BreakendID, allowSameSV bool) (LinkedPair, bool) {

	ba, bb := c.Breakend(a), c.Breakend(b)
	if ba == nil || bb == nil || a == b || ba.Chromosome != bb.Chromosome {
		return LinkedPair{}, false
	}
	if a.SV() == b.SV() && !allowSameSV {
		return LinkedPair{}, false
	}

	lower, upper := ba, bb
	if upper.Position < lower.Position {
		lower, upper = upper, lower
	}
	if lower.Orientation != svchain.OrientLower || upper.Orientation != svchain.OrientUpper {
		return LinkedPair{}, false
	}

	length := upper.Position - lower.Position
	if length < o.minTemplatedInsertionLength(c, lower, upper) {
		return LinkedPair{}, false
	}
	return LinkedPair{First: lower.ID, Second: upper.ID, Length: length}, true
}

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
	"strings"

	"github.com/shenwei356/svchain"
)

// ChainingRule is the reason a link was made.
// Lower values have higher priority.
type ChainingRule uint8

const (
	RuleAssembly ChainingRule = iota
	RuleOnlyOption
	RuleFoldback
	RuleComplexDup
	RulePloidyMatch
	RuleAdjacent
	RuleNearest
	RuleDMClose
)

var ruleNames = [...]string{"ASSEMBLY", "ONLY", "FOLDBACK", "COMP_DUP", "PLOIDY_MATCH", "ADJACENT", "NEAREST", "DM_CLOSE"}

func (r ChainingRule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "UNKNOWN"
}

type connectionType uint8

const (
	connSingle connectionType = iota
	connFoldback
	connComplexDup
)

// allocation is the ploidy a proposal takes from one breakend.
type allocation struct {
	be       svchain.BreakendID
	amount   float64
	exhaust  bool
	capacity float64 // unlinked ploidy when proposed
}

// ProposedLinks are links to be committed together.
type ProposedLinks struct {
	Links  []LinkedPair
	Rules  []ChainingRule
	Ploidy float64

	// the chain to extend, nil to let the builder decide.
	Target *Chain

	conn    connectionType
	allocs  []allocation
	matched bool // all capacities equal
}

func newProposal(rule ChainingRule, links ...LinkedPair) *ProposedLinks {
	return &ProposedLinks{Links: links, Rules: []ChainingRule{rule}}
}

// newLinkProposal proposes one link, taking the smaller of the two
// capacities. Only the smaller breakend is exhausted, unless both match.
func newLinkProposal(p LinkedPair, rule ChainingRule, capFirst, capSecond float64, tol svchain.Tolerance) *ProposedLinks {
	pl := newProposal(rule, p)
	if tol.Equal(capFirst, capSecond) {
		pl.matched = true
		pl.Ploidy = (capFirst + capSecond) * 0.5
		pl.allocate(p.First, capFirst, capFirst, true)
		pl.allocate(p.Second, capSecond, capSecond, true)
		return pl
	}

	pl.Ploidy = math.Min(capFirst, capSecond)
	pl.allocate(p.First, pl.Ploidy, capFirst, capFirst < capSecond)
	pl.allocate(p.Second, pl.Ploidy, capSecond, capSecond < capFirst)
	return pl
}

func (pl *ProposedLinks) allocate(be svchain.BreakendID, amount, capacity float64, exhaust bool) {
	for i := range pl.allocs {
		if pl.allocs[i].be == be {
			pl.allocs[i].amount += amount
			pl.allocs[i].exhaust = pl.allocs[i].exhaust || exhaust
			return
		}
	}
	pl.allocs = append(pl.allocs, allocation{be: be, amount: amount, exhaust: exhaust, capacity: capacity})
}

// limitPloidy lowers the ploidy taken from each breakend to at most
// ploidy. A breakend left with spare ploidy is no longer exhausted.
func (pl *ProposedLinks) limitPloidy(ploidy float64, tol svchain.Tolerance) {
	pl.Ploidy = ploidy
	var a *allocation
	for i := range pl.allocs {
		a = &pl.allocs[i]
		if a.amount > ploidy {
			a.amount = ploidy
		}
		a.exhaust = a.exhaust && tol.Equal(a.amount, a.capacity)
	}
}

// breakendPloidy returns the ploidy taken from a breakend.
func (pl *ProposedLinks) breakendPloidy(be svchain.BreakendID) float64 {
	for _, a := range pl.allocs {
		if a.be == be {
			return a.amount
		}
	}
	return 0
}

func (pl *ProposedLinks) multiConnection() bool { return pl.conn != connSingle }

// TopRule returns the rule with the highest priority.
func (pl *ProposedLinks) TopRule() ChainingRule {
	top := pl.Rules[0]
	for _, r := range pl.Rules[1:] {
		if r < top {
			top = r
		}
	}
	return top
}

func (pl *ProposedLinks) hasRule(rule ChainingRule) bool {
	for _, r := range pl.Rules {
		if r == rule {
			return true
		}
	}
	return false
}

func (pl *ProposedLinks) addRules(rules []ChainingRule) {
	for _, r := range rules {
		if !pl.hasRule(r) {
			pl.Rules = append(pl.Rules, r)
		}
	}
}

func (pl *ProposedLinks) hasLink(p *LinkedPair) bool {
	for i := range pl.Links {
		if pl.Links[i].Matches(p) {
			return true
		}
	}
	return false
}

// containsAll tells if every link of o is in pl.
func (pl *ProposedLinks) containsAll(o *ProposedLinks) bool {
	for i := range o.Links {
		if !pl.hasLink(&o.Links[i]) {
			return false
		}
	}
	return true
}

func (pl *ProposedLinks) sameLinks(o *ProposedLinks) bool {
	return len(pl.Links) == len(o.Links) && pl.containsAll(o)
}

// length is the length of the shortest link.
func (pl *ProposedLinks) length() int64 {
	length := pl.Links[0].Length
	for _, p := range pl.Links[1:] {
		if p.Length < length {
			length = p.Length
		}
	}
	return length
}

func (pl *ProposedLinks) String() string {
	var sb strings.Builder
	for i := range pl.Links {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(pl.Links[i].String())
	}
	rules := make([]string, len(pl.Rules))
	for i, r := range pl.Rules {
		rules[i] = r.String()
	}
	target := -1
	if pl.Target != nil {
		target = pl.Target.ID
	}
	return fmt.Sprintf("%s rules=%s ploidy=%.2f chain=%d", sb.String(), strings.Join(rules, ";"), pl.Ploidy, target)
}

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
	"math"

	"github.com/shenwei356/svchain"
	"github.com/twotwotwo/sorts"
)

// stateView is the read-only state rule stages work on.
type stateView interface {
	Cluster() *svchain.Cluster
	Options() *ChainingOptions
	Replicating() bool

	unlinked(be svchain.BreakendID) float64
	exhausted(be svchain.BreakendID) bool

	possibleLinks() *possibleLinks
	activeFoldbacks() []int
	Chains() []*Chain
	skipped(p *LinkedPair) bool
}

// ruleStage proposes links satisfying one chaining rule.
// Stages must not change the state.
type ruleStage interface {
	Rule() ChainingRule
	Evaluate(v stateView) []*ProposedLinks
}

// ruleSelector runs stages in priority order.
type ruleSelector struct {
	stages []ruleStage
}

func newRuleSelector(replicating bool) *ruleSelector {
	s := &ruleSelector{}
	s.register(assemblyStage{})
	s.register(onlyOptionStage{})
	if replicating {
		s.register(foldbackStage{})
		s.register(complexDupStage{})
		s.register(ploidyMatchStage{})
	}
	s.register(adjacentStage{})
	s.register(nearestStage{})
	return s
}

func (s *ruleSelector) register(stage ruleStage) {
	s.stages = append(s.stages, stage)
}

// Select returns the proposals of the highest priority. Evaluation stops
// once a single proposal is left. Proposals still tied after all stages
// are ordered by link length.
func (s *ruleSelector) Select(v stateView) []*ProposedLinks {
	var proposals []*ProposedLinks
	for _, stage := range s.stages {
		if stage.Rule() == RuleNearest && len(proposals) > 0 {
			sortByLength(proposals)
			return proposals
		}

		proposals = mergeProposals(proposals, stage.Evaluate(v))
		proposals = cullByPriority(proposals)
		if len(proposals) == 1 {
			return proposals
		}
	}
	return proposals
}

// mergeProposals adds fresh proposals to the current ones. A proposal
// with the same links gains the new rules. A proposal whose links cover
// another one takes over its rules and replaces it.
func mergeProposals(current, fresh []*ProposedLinks) []*ProposedLinks {
	var merged bool
	var j int
	for _, f := range fresh {
		merged = false
		for _, c := range current {
			if c.sameLinks(f) {
				c.addRules(f.Rules)
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		for _, c := range current {
			if c.containsAll(f) {
				c.addRules(f.Rules)
				merged = true
			}
		}
		if merged {
			continue
		}

		j = 0
		for _, c := range current {
			if f.containsAll(c) {
				f.addRules(c.Rules)
				continue
			}
			current[j] = c
			j++
		}
		current = append(current[:j], f)
	}
	return current
}

// cullByPriority keeps the proposals with the best top rule, and of
// those, the ones satisfying the most rules.
func cullByPriority(proposals []*ProposedLinks) []*ProposedLinks {
	if len(proposals) < 2 {
		return proposals
	}

	best := proposals[0].TopRule()
	var most int
	for _, p := range proposals {
		if r := p.TopRule(); r < best {
			best = r
		}
	}
	for _, p := range proposals {
		if p.TopRule() == best && len(p.Rules) > most {
			most = len(p.Rules)
		}
	}

	j := 0
	for _, p := range proposals {
		if p.TopRule() == best && len(p.Rules) == most {
			proposals[j] = p
			j++
		}
	}
	return proposals[:j]
}

type proposalsByLength struct {
	proposals []*ProposedLinks
	order     []int
}

func (s proposalsByLength) Len() int { return len(s.proposals) }
func (s proposalsByLength) Swap(i, j int) {
	s.proposals[i], s.proposals[j] = s.proposals[j], s.proposals[i]
	s.order[i], s.order[j] = s.order[j], s.order[i]
}
func (s proposalsByLength) Less(i, j int) bool {
	li, lj := s.proposals[i].length(), s.proposals[j].length()
	if li == lj {
		return s.order[i] < s.order[j]
	}
	return li < lj
}

// sortByLength orders proposals by link length, keeping the input order
// of ties.
func sortByLength(proposals []*ProposedLinks) {
	order := make([]int, len(proposals))
	for i := range order {
		order[i] = i
	}
	sorts.Quicksort(proposalsByLength{proposals: proposals, order: order})
}

// usable tells if a pair can be proposed.
func usable(v stateView, p *LinkedPair) bool {
	return !v.skipped(p) && !v.exhausted(p.First) && !v.exhausted(p.Second)
}

func linkProposal(v stateView, p *LinkedPair, rule ChainingRule) *ProposedLinks {
	return newLinkProposal(*p, rule, v.unlinked(p.First), v.unlinked(p.Second), v.Options().Tolerance)
}

// assemblyStage proposes assembly links with ploidy left on both sides.
type assemblyStage struct{}

func (assemblyStage) Rule() ChainingRule { return RuleAssembly }

func (assemblyStage) Evaluate(v stateView) []*ProposedLinks {
	c := v.Cluster()
	var proposals []*ProposedLinks
	var p LinkedPair
	for _, l := range c.AssemblyLinks {
		p = assembledPair(c, l[0], l[1])
		if !usable(v, &p) {
			continue
		}
		if pl := assemblyProposal(v, p); pl != nil {
			proposals = append(proposals, pl)
		}
	}
	return proposals
}

// assembledPair makes a link from assembly evidence, lower breakend first.
// Assembled templated insertions may be shorter than the usual minimum.
func assembledPair(c *svchain.Cluster, a, b svchain.BreakendID) LinkedPair {
	ba, bb := c.Breakend(a), c.Breakend(b)
	if bb.Position < ba.Position {
		ba, bb = bb, ba
	}
	return LinkedPair{First: ba.ID, Second: bb.ID, Length: bb.Position - ba.Position, Assembled: true}
}

// assemblyProposal decides how many times an assembly link is made.
// A breakend linked to several partners shares its ploidy among them.
func assemblyProposal(v stateView, p LinkedPair) *ProposedLinks {
	tol := v.Options().Tolerance
	bes := [2]svchain.BreakendID{p.First, p.Second}

	var caps [2]float64
	var partners [2]int
	var otherMultiPloidy, otherMultiAssembly [2]bool
	for i, be := range bes {
		caps[i] = v.unlinked(be)
		partners[i] = max(openAssemblyPartners(v, be, nil), 1)
		if partners[i] < 2 {
			continue
		}
		openAssemblyPartners(v, be, func(o svchain.BreakendID) {
			if v.unlinked(o) > 1 {
				otherMultiPloidy[i] = true
			}
			if openAssemblyPartners(v, o, nil) > 1 {
				otherMultiAssembly[i] = true
			}
		})
	}

	if !v.Replicating() || (partners[0] == 1 && partners[1] == 1) {
		return newLinkProposal(p, RuleAssembly, caps[0], caps[1], tol)
	}

	var ploidy float64
	if caps[0] >= 2 && caps[1] >= 2 &&
		!(otherMultiPloidy[0] && otherMultiAssembly[0]) &&
		!(otherMultiPloidy[1] && otherMultiAssembly[1]) {
		ploidy = math.Min(caps[0]-float64(partners[0]-1), caps[1]-float64(partners[1]-1))
	} else {
		ploidy = math.Min(caps[0]/float64(partners[0]), caps[1]/float64(partners[1]))
	}
	if ploidy <= 0 {
		return nil
	}

	pl := newProposal(RuleAssembly, p)
	pl.Ploidy = ploidy
	for i, be := range bes {
		pl.allocate(be, ploidy, caps[i], tol.Equal(caps[i], ploidy))
	}
	pl.matched = tol.Equal(caps[0], ploidy) && tol.Equal(caps[1], ploidy)
	return pl
}

// openAssemblyPartners counts the assembly partners of a breakend that
// still have ploidy to link, calling fn on each if not nil.
func openAssemblyPartners(v stateView, be svchain.BreakendID, fn func(svchain.BreakendID)) int {
	var n int
	var o svchain.BreakendID
	for _, l := range v.Cluster().AssemblyLinks {
		switch be {
		case l[0]:
			o = l[1]
		case l[1]:
			o = l[0]
		default:
			continue
		}
		if v.exhausted(o) {
			continue
		}
		n++
		if fn != nil {
			fn(o)
		}
	}
	return n
}

// onlyOptionStage proposes the only candidate left to a breakend.
type onlyOptionStage struct{}

func (onlyOptionStage) Rule() ChainingRule { return RuleOnlyOption }

func (onlyOptionStage) Evaluate(v stateView) []*ProposedLinks {
	pls := v.possibleLinks()
	var proposals []*ProposedLinks
	var links []*LinkedPair
	for _, be := range pls.breakends() {
		links = pls.links(be)
		if len(links) != 1 || !usable(v, links[0]) {
			continue
		}
		proposals = append(proposals, linkProposal(v, links[0], RuleOnlyOption))
	}
	return proposals
}

// foldbackStage links both breakends of a foldback to one partner,
// which then appears twice in the chain. It also links foldbacks to
// each other.
type foldbackStage struct{}

func (foldbackStage) Rule() ChainingRule { return RuleFoldback }

func (s foldbackStage) Evaluate(v stateView) []*ProposedLinks {
	var proposals []*ProposedLinks
	foldbacks := v.activeFoldbacks()
	for _, fb := range foldbacks {
		if pl := s.foldbackProposal(v, fb); pl != nil {
			proposals = append(proposals, pl)
		}
	}

	// foldback to foldback
	pls := v.possibleLinks()
	c := v.Cluster()
	var other svchain.BreakendID
	for i, fb1 := range foldbacks {
		for _, be := range c.SVs[fb1].Breakends {
			if be == nil {
				continue
			}
			for _, p := range pls.links(be.ID) {
				other = p.OtherBreakend(be.ID)
				if !containsSV(foldbacks[i+1:], other.SV()) || !usable(v, p) {
					continue
				}
				proposals = append(proposals, linkProposal(v, p, RuleFoldback))
			}
		}
	}
	return proposals
}

func containsSV(svs []int, sv int) bool {
	for _, v := range svs {
		if v == sv {
			return true
		}
	}
	return false
}

func (foldbackStage) foldbackProposal(v stateView, fb int) *ProposedLinks {
	c := v.Cluster()
	sv := c.SVs[fb]
	if sv.IsSingleEnded() || sv.Breakends[0].Orientation != sv.Breakends[1].Orientation {
		return nil
	}
	s, e := sv.Breakends[0].ID, sv.Breakends[1].ID
	if v.exhausted(s) || v.exhausted(e) {
		return nil
	}

	// the partner lies on the side the breakends face
	near, far := s, e
	if (sv.Breakends[0].Orientation == svchain.OrientUpper) !=
		(sv.Breakends[0].Position < sv.Breakends[1].Position) {
		near, far = e, s
	}

	tol := v.Options().Tolerance
	capNear, capFar := v.unlinked(near), v.unlinked(far)
	ploidy := math.Min(capNear, capFar)
	pls := v.possibleLinks()

	var x svchain.BreakendID
	var q *LinkedPair
	var capX float64
	for _, p := range pls.links(near) {
		x = p.OtherBreakend(near)
		if x.SV() == fb || !usable(v, p) {
			continue
		}
		if q = pls.find(far, x); q == nil || !usable(v, q) {
			continue
		}
		capX = v.unlinked(x)
		if capX < 2*ploidy && !tol.Equal(capX, 2*ploidy) {
			continue
		}

		pl := newProposal(RuleFoldback,
			LinkedPair{First: x, Second: near, Length: p.Length},
			LinkedPair{First: far, Second: x, Length: q.Length})
		pl.conn = connFoldback
		pl.Ploidy = ploidy
		pl.allocate(x, 2*ploidy, capX, tol.Equal(capX, 2*ploidy))
		pl.allocate(near, ploidy, capNear, tol.Equal(capNear, ploidy))
		pl.allocate(far, ploidy, capFar, tol.Equal(capFar, ploidy))
		pl.Target = chainWithOpenBreakend(v.Chains(), x)
		if pl.Target != nil {
			pl.matched = tol.Equal(pl.Target.Ploidy.Estimate, 2*ploidy)
		} else {
			pl.matched = tol.Equal(capX, 2*ploidy)
		}
		return pl
	}
	return nil
}

func chainWithOpenBreakend(chains []*Chain, be svchain.BreakendID) *Chain {
	for _, ch := range chains {
		if ch.OpenBreakend(true) == be || ch.OpenBreakend(false) == be {
			return ch
		}
	}
	return nil
}

// complexDupStage links a duplicated SV around a chain or an SV of
// twice its ploidy, so that the chain is walked twice.
type complexDupStage struct{}

func (complexDupStage) Rule() ChainingRule { return RuleComplexDup }

type dupFlank struct {
	a, b   svchain.BreakendID // start and end of the duplicated segment
	target *Chain
}

func (s complexDupStage) Evaluate(v stateView) []*ProposedLinks {
	c := v.Cluster()
	var proposals []*ProposedLinks
	var sv *svchain.SV
	var ploidy float64
	for _, dup := range v.possibleLinks().complexDups {
		sv = c.SVs[dup]
		ds, de := sv.Breakends[0].ID, sv.Breakends[1].ID
		if v.exhausted(ds) || v.exhausted(de) {
			continue
		}
		ploidy = math.Min(v.unlinked(ds), v.unlinked(de))

		for _, f := range s.flanks(v, dup, ploidy) {
			if pl := s.proposal(v, dup, ploidy, f); pl != nil {
				proposals = append(proposals, pl)
				break
			}
		}
	}
	return proposals
}

// flanks lists chains and unchained SVs with at least twice the ploidy.
func (complexDupStage) flanks(v stateView, dup int, ploidy float64) []dupFlank {
	c := v.Cluster()
	tol := v.Options().Tolerance
	enough := func(x float64) bool { return x >= 2*ploidy || tol.Equal(x, 2*ploidy) }

	flanks := make([]dupFlank, 0, 4)
	chains := v.Chains()
	var a, b svchain.BreakendID
	for _, ch := range chains {
		if ch.Closed || ch.HasSV(dup) || !enough(ch.Ploidy.Estimate) {
			continue
		}
		a, b = ch.OpenBreakend(true), ch.OpenBreakend(false)
		if c.Breakend(a) == nil || c.Breakend(b) == nil || v.exhausted(a) || v.exhausted(b) {
			continue
		}
		flanks = append(flanks, dupFlank{a: a, b: b, target: ch})
	}

	var inChain bool
	for i, sv := range c.SVs {
		if i == dup || sv.IsSingleEnded() {
			continue
		}
		a, b = sv.Breakends[0].ID, sv.Breakends[1].ID
		if v.exhausted(a) || v.exhausted(b) || !enough(v.unlinked(a)) || !enough(v.unlinked(b)) {
			continue
		}
		inChain = false
		for _, ch := range chains {
			if ch.HasSV(i) {
				inChain = true
				break
			}
		}
		if !inChain {
			flanks = append(flanks, dupFlank{a: a, b: b})
		}
	}
	return flanks
}

func (complexDupStage) proposal(v stateView, dup int, ploidy float64, f dupFlank) *ProposedLinks {
	pls := v.possibleLinks()
	tol := v.Options().Tolerance
	ds, de := svchain.BreakendOf(dup, true), svchain.BreakendOf(dup, false)

	var p1, p2 *LinkedPair
	for _, xy := range [2][2]svchain.BreakendID{{ds, de}, {de, ds}} {
		x, y := xy[0], xy[1]
		p1, p2 = pls.find(f.b, x), pls.find(y, f.a)
		if p1 == nil || p2 == nil || !usable(v, p1) || !usable(v, p2) {
			continue
		}

		pl := newProposal(RuleComplexDup,
			LinkedPair{First: f.b, Second: x, Length: p1.Length},
			LinkedPair{First: y, Second: f.a, Length: p2.Length})
		pl.conn = connComplexDup
		pl.Ploidy = ploidy
		pl.Target = f.target
		if f.target != nil {
			pl.matched = tol.Equal(f.target.Ploidy.Estimate, 2*ploidy)
		}
		for _, be := range [4]svchain.BreakendID{x, y, f.a, f.b} {
			capacity := v.unlinked(be)
			pl.allocate(be, ploidy, capacity, tol.Equal(capacity, ploidy))
		}
		return pl
	}
	return nil
}

// ploidyMatchStage proposes candidates whose two breakends have equal
// ploidy left.
type ploidyMatchStage struct{}

func (ploidyMatchStage) Rule() ChainingRule { return RulePloidyMatch }

func (ploidyMatchStage) Evaluate(v stateView) []*ProposedLinks {
	pls := v.possibleLinks()
	tol := v.Options().Tolerance
	var proposals []*ProposedLinks
	for _, be := range pls.breakends() {
		for _, p := range pls.links(be) {
			if p.First != be || !usable(v, p) {
				continue
			}
			if tol.Equal(v.unlinked(p.First), v.unlinked(p.Second)) {
				proposals = append(proposals, linkProposal(v, p, RulePloidyMatch))
			}
		}
	}
	return proposals
}

// adjacentStage proposes candidates between neighbouring breakends.
// Without replication both sides must have equal ploidy.
type adjacentStage struct{}

func (adjacentStage) Rule() ChainingRule { return RuleAdjacent }

func (adjacentStage) Evaluate(v stateView) []*ProposedLinks {
	pls := v.possibleLinks()
	pairs := pls.adjacent
	if !v.Replicating() {
		pairs = pls.adjacentMatching
	}
	var proposals []*ProposedLinks
	for _, p := range pairs {
		if pls.has(p) && usable(v, p) {
			proposals = append(proposals, linkProposal(v, p, RuleAdjacent))
		}
	}
	return proposals
}

// nearestStage proposes the shortest candidate.
type nearestStage struct{}

func (nearestStage) Rule() ChainingRule { return RuleNearest }

func (nearestStage) Evaluate(v stateView) []*ProposedLinks {
	pls := v.possibleLinks()
	var nearest *LinkedPair
	for _, be := range pls.breakends() {
		for _, p := range pls.links(be) {
			if p.First != be || !usable(v, p) {
				continue
			}
			if nearest == nil || p.Length < nearest.Length {
				nearest = p
			}
		}
	}
	if nearest == nil {
		return nil
	}
	return []*ProposedLinks{linkProposal(v, nearest, RuleNearest)}
}

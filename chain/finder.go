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

// Package chain connects the breakends of a cluster into chains of
// SVs joined by templated insertions.
package chain

import (
	"fmt"
	"sort"

	"github.com/shenwei356/svchain"
	log "github.com/sirupsen/logrus"
)

// ChainFinder connects the breakends of one cluster into chains.
// A ChainFinder is not safe for concurrent use, but can be reused for
// other clusters after Initialise.
type ChainFinder struct {
	options *ChainingOptions

	cluster   *svchain.Cluster
	members   map[int]struct{} // nil for all SVs
	replicate bool

	chrBreakends map[string][]*svchain.Breakend
	chrIndex     map[svchain.BreakendID]int

	capacity *capacityTracker
	possible *possibleLinks
	limits   *ploidyLimits
	selector *ruleSelector

	foldbacks     []int
	doubleMinutes []int

	chains       []*Chain
	nextChainID  int
	linkIndex    int
	skippedPairs map[pairKey]struct{}

	valid      bool
	err        error
	iterations int

	logger *log.Entry
}

// NewChainFinder creates a new chain finder.
func NewChainFinder(options *ChainingOptions) *ChainFinder {
	return &ChainFinder{
		options:      options,
		chrBreakends: make(map[string][]*svchain.Breakend, 4),
		chrIndex:     make(map[svchain.BreakendID]int, 64),
		possible:     newPossibleLinks(),
		chains:       make([]*Chain, 0, 8),
		skippedPairs: make(map[pairKey]struct{}, 8),
	}
}

// Reset clears all state of the last cluster.
func (cf *ChainFinder) Reset() {
	cf.cluster = nil
	cf.members = nil
	cf.replicate = false
	clear(cf.chrBreakends)
	clear(cf.chrIndex)
	cf.capacity = nil
	cf.possible.reset()
	cf.limits = nil
	cf.selector = nil
	cf.foldbacks = cf.foldbacks[:0]
	cf.doubleMinutes = cf.doubleMinutes[:0]
	cf.chains = cf.chains[:0]
	cf.nextChainID = 0
	cf.linkIndex = 0
	clear(cf.skippedPairs)
	cf.valid = true
	cf.err = nil
	cf.iterations = 0
	cf.logger = nil
}

// Initialise prepares chaining of all SVs in a cluster.
// The cluster is finalized if needed.
func (cf *ChainFinder) Initialise(c *svchain.Cluster) error {
	return cf.InitialiseSubset(c, nil)
}

// InitialiseSubset prepares chaining of some SVs of a cluster,
// given by their indexes. Links to other SVs are ignored.
func (cf *ChainFinder) InitialiseSubset(c *svchain.Cluster, svs []int) error {
	cf.Reset()

	if !c.Finalized() {
		if err := c.Finalize(); err != nil {
			return fmt.Errorf("cluster %d: %w", c.ID, err)
		}
	}
	cf.cluster = c
	cf.replicate = c.RequiresReplication
	cf.logger = log.WithField("cluster", c.ID)

	if svs != nil {
		cf.members = make(map[int]struct{}, len(svs))
		for _, sv := range svs {
			if sv < 0 || sv >= len(c.SVs) {
				return fmt.Errorf("cluster %d: %w: index %d", c.ID, svchain.ErrUnknownSV, sv)
			}
			cf.members[sv] = struct{}{}
		}
	}

	for chr, list := range c.ChrBreakends {
		if cf.members != nil {
			filtered := make([]*svchain.Breakend, 0, len(list))
			for _, b := range list {
				if cf.isMember(b.SV()) {
					filtered = append(filtered, b)
				}
			}
			list = filtered
		}
		if len(list) == 0 {
			continue
		}
		cf.chrBreakends[chr] = list
		for i, b := range list {
			cf.chrIndex[b.ID] = i
		}
	}

	for _, sv := range c.Foldbacks {
		if cf.isMember(sv) {
			cf.foldbacks = append(cf.foldbacks, sv)
		}
	}
	for _, sv := range c.DoubleMinuteSVs {
		if cf.isMember(sv) {
			cf.doubleMinutes = append(cf.doubleMinutes, sv)
		}
	}

	cf.capacity = newCapacityTracker(c, cf.replicate, cf.options.ExhaustedFraction)
	for sv := range c.SVs {
		if !cf.isMember(sv) {
			delete(cf.capacity.active, sv)
		}
	}
	cf.limits = newPloidyLimits(c, cf.options.ClusterAllelePloidyMin)
	cf.selector = newRuleSelector(cf.replicate)
	return nil
}

func (cf *ChainFinder) isMember(sv int) bool {
	if cf.members == nil {
		return true
	}
	_, ok := cf.members[sv]
	return ok
}

func (cf *ChainFinder) svCount() int {
	if cf.members == nil {
		return len(cf.cluster.SVs)
	}
	return len(cf.members)
}

// Cluster returns the cluster being chained.
func (cf *ChainFinder) Cluster() *svchain.Cluster { return cf.cluster }

// Options returns the chaining options.
func (cf *ChainFinder) Options() *ChainingOptions { return cf.options }

// Replicating tells if SVs may be used more than once.
func (cf *ChainFinder) Replicating() bool { return cf.replicate }

// Chains returns the chains built so far.
func (cf *ChainFinder) Chains() []*Chain { return cf.chains }

func (cf *ChainFinder) unlinked(be svchain.BreakendID) float64 { return cf.capacity.unlinked(be) }

func (cf *ChainFinder) exhausted(be svchain.BreakendID) bool { return cf.capacity.exhausted(be) }

func (cf *ChainFinder) possibleLinks() *possibleLinks { return cf.possible }

func (cf *ChainFinder) skipped(p *LinkedPair) bool {
	_, ok := cf.skippedPairs[p.key()]
	return ok
}

func (cf *ChainFinder) activeFoldbacks() []int {
	active := make([]int, 0, len(cf.foldbacks))
	for _, sv := range cf.foldbacks {
		if cf.capacity.isActive(sv) {
			active = append(active, sv)
		}
	}
	return active
}

// alreadyLinked tells if an assembled breakend has no ploidy left.
func (cf *ChainFinder) alreadyLinked(be svchain.BreakendID) bool {
	return cf.cluster.Breakend(be).Assembled && cf.capacity.exhausted(be)
}

// FormChains builds the chains of the cluster.
func (cf *ChainFinder) FormChains() *Result {
	if cf.cluster == nil {
		return &Result{Err: svchain.ErrEmptyCluster}
	}

	if cf.isDoubleMinuteDup() && cf.svCount() == 1 {
		cf.closeDoubleMinuteDup()
	} else if cf.svCount() >= 2 {
		if cf.svCount() >= 4 {
			cf.logger.Debugf("start chaining with %d assembly links and %d SVs",
				len(cf.cluster.AssemblyLinks), cf.svCount())
		}
		cf.buildChains()
	}

	if cf.valid && cf.options.Validate {
		if err := cf.checkChains(); err != nil {
			cf.invalidate(err)
		}
	}
	cf.removeIdenticalChains()

	if !cf.valid {
		cf.logger.Warnf("chain finding failed: %s", cf.err)
	}
	return cf.result()
}

func (cf *ChainFinder) invalidate(err error) {
	cf.valid = false
	if cf.err == nil {
		cf.err = err
	}
}

func (cf *ChainFinder) buildChains() {
	cf.addAssemblyLinks()
	if !cf.valid || cf.options.AssembledLinksOnly {
		return
	}

	cf.determinePossibleLinks()

	var iterationsWithoutNewLinks, lastIndex int
	var proposals []*ProposedLinks
	for {
		cf.iterations++
		lastIndex = cf.linkIndex

		proposals = cf.selector.Select(cf)
		if len(proposals) == 0 {
			break
		}
		if cf.logger.Logger.IsLevelEnabled(log.TraceLevel) {
			for _, pl := range proposals {
				cf.logger.Tracef("proposed %s", pl)
			}
		}

		cf.processProposedLinks(proposals)
		if !cf.valid {
			return
		}

		if lastIndex == cf.linkIndex {
			iterationsWithoutNewLinks++
			if iterationsWithoutNewLinks > cf.options.MaxIterationsWithoutLinks {
				cf.invalidate(fmt.Errorf("%w: %d", ErrNonConvergence, iterationsWithoutNewLinks))
				return
			}
		} else {
			iterationsWithoutNewLinks = 0
		}
	}

	cf.checkDoubleMinuteChains()
}

// addAssemblyLinks seeds chains with assembly links in positional order.
func (cf *ChainFinder) addAssemblyLinks() {
	c := cf.cluster
	if len(c.AssemblyLinks) == 0 {
		return
	}

	pairs := make([]LinkedPair, 0, len(c.AssemblyLinks))
	for _, l := range c.AssemblyLinks {
		if cf.isMember(l[0].SV()) && cf.isMember(l[1].SV()) {
			pairs = append(pairs, assembledPair(c, l[0], l[1]))
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := c.Breakend(pairs[i].First), c.Breakend(pairs[j].First)
		if a.Chromosome != b.Chromosome {
			return a.Chromosome < b.Chromosome
		}
		return a.Position < b.Position
	})

	for i := range pairs {
		if !usable(cf, &pairs[i]) {
			continue
		}
		pl := assemblyProposal(cf, pairs[i])
		if pl == nil {
			continue
		}
		cf.addLinks(pl)
		if !cf.valid {
			return
		}
	}

	if len(cf.chains) > 0 {
		cf.logger.Debugf("created %d partial chains from %d assembly links", len(cf.chains), len(pairs))
	}
}

// stale tells if a proposal was made on a state changed since.
func (cf *ChainFinder) stale(pl *ProposedLinks) bool {
	if pl.Target != nil && !cf.hasChain(pl.Target) {
		return true
	}
	for _, a := range pl.allocs {
		if cf.capacity.unlinked(a.be) != a.capacity {
			return true
		}
	}
	for i := range pl.Links {
		if !pl.Links[i].Assembled && !cf.possible.has(&pl.Links[i]) {
			return true
		}
	}
	return false
}

func (cf *ChainFinder) hasChain(ch *Chain) bool {
	for _, c := range cf.chains {
		if c == ch {
			return true
		}
	}
	return false
}

func (cf *ChainFinder) processProposedLinks(proposals []*ProposedLinks) {
	for _, pl := range proposals {
		// an earlier link may have used the capacity
		if cf.stale(pl) {
			break
		}

		cf.addLinks(pl)
		if !cf.valid {
			return
		}

		if pl.multiConnection() {
			break
		}
	}
}

// isDoubleMinuteDup tells if the only double minute SV is a DUP.
func (cf *ChainFinder) isDoubleMinuteDup() bool {
	return len(cf.doubleMinutes) == 1 && cf.cluster.SVs[cf.doubleMinutes[0]].Type == svchain.DUP
}

// closeDoubleMinuteDup makes a lone DUP a closed loop on its own.
func (cf *ChainFinder) closeDoubleMinuteDup() {
	sv := cf.cluster.SVs[cf.doubleMinutes[0]]
	s, e := sv.Breakends[0], sv.Breakends[1]
	lower, upper := s, e
	if upper.Position < lower.Position {
		lower, upper = upper, lower
	}

	ch := newChain(cf.nextChainID)
	cf.nextChainID++
	ch.Links = append(ch.Links, LinkedPair{
		First:       lower.ID,
		Second:      upper.ID,
		Length:      upper.Position - lower.Position,
		Rule:        RuleDMClose,
		Index:       cf.linkIndex,
		RepeatCount: 1,
	})
	cf.linkIndex++
	ch.Ploidy = sv.Ploidy
	ch.Closed = true
	cf.chains = append(cf.chains, ch)

	cf.logger.Debugf("closed DM DUP %s", sv)
}

// lastDoubleMinuteDup tells if a DM DUP is the only SV left to chain.
func (cf *ChainFinder) lastDoubleMinuteDup() bool {
	if !cf.isDoubleMinuteDup() {
		return false
	}
	active := cf.capacity.activeSVs()
	return len(active) == 1 && active[0] == cf.doubleMinutes[0]
}

// breakendPloidy returns the ploidy of a breakend, which may be
// replaced by the amount a proposal allocates.
func (cf *ChainFinder) breakendPloidy(be svchain.BreakendID, estimate float64) svchain.Ploidy {
	p := cf.cluster.Breakend(be).Ploidy
	if cf.replicate {
		p.Estimate = estimate
	}
	return p
}

// addLinks commits a proposal. The links extend the target chain, or the
// chain they fit, or start a new chain. It returns false if the link
// would close a chain and was skipped.
func (cf *ChainFinder) addLinks(pl *ProposedLinks) bool {
	rule := pl.TopRule()
	for i := range pl.Links {
		pl.Links[i].Rule = rule
		pl.Links[i].Index = cf.linkIndex
		pl.Links[i].PloidyMatched = pl.matched
		pl.Links[i].RepeatCount = 1
	}
	newPair := pl.Links[0]
	tol := cf.options.Tolerance

	var target *Chain
	var addToStart, matchesChainPloidy, linkClosesChain, closing bool
	var newSvPloidy float64
	newBreakend := svchain.NoBreakend

	if pl.Target != nil {
		target = pl.Target
		matchesChainPloidy = pl.matched
		newSvPloidy = pl.Ploidy
	} else if !pl.multiConnection() {
		var canStart, canEnd, ploidyMatched bool
		var be svchain.BreakendID
		for _, ch := range cf.chains {
			canStart, canEnd = ch.canAddToStart(&newPair), ch.canAddToEnd(&newPair)
			if !canStart && !canEnd {
				continue
			}

			if canStart && canEnd && ch.wouldClose(&newPair) {
				if !cf.lastDoubleMinuteDup() {
					cf.logger.Tracef("skipping %s which would close chain %d", &newPair, ch.ID)
					cf.skippedPairs[newPair.key()] = struct{}{}
					linkClosesChain = true
					continue
				}
				closing = true
				addToStart = false
			} else {
				addToStart = canStart
			}

			be = newPair.OtherBreakend(ch.OpenBreakend(addToStart))
			newSvPloidy = pl.breakendPloidy(be)

			ploidyMatched = !cf.replicate || tol.Equal(pl.Ploidy, ch.Ploidy.Estimate)
			if !ploidyMatched && pl.matched {
				closing = false
				continue
			}

			target = ch
			newBreakend = be
			if ploidyMatched {
				matchesChainPloidy = true
				break
			}
		}
	}

	isNewChain := target == nil
	reconcile := !isNewChain

	if !isNewChain {
		cf.extendChain(pl, target, newBreakend, newSvPloidy, addToStart, matchesChainPloidy)
		if closing {
			target.Closed = true
		}
	} else {
		if linkClosesChain {
			return false
		}

		target = newChain(cf.nextChainID)
		cf.nextChainID++
		cf.chains = append(cf.chains, target)
		if pl.multiConnection() {
			target.Links = append(target.Links, pl.Links...)
		} else {
			target.addLink(newPair, true)
		}
		target.Ploidy = cf.newChainPloidy(pl)
	}

	for i := range pl.Links {
		cf.logger.Debugf("index %d rule %s adding %s ploidy %.2f to %s chain %d ploidy %s",
			cf.linkIndex, rule, &pl.Links[i], pl.Ploidy, newOrExisting(isNewChain), target.ID, target.Ploidy)
	}

	if err := cf.registerNewLink(pl); err != nil {
		cf.invalidate(err)
		return false
	}
	cf.linkIndex++
	clear(cf.skippedPairs)

	if reconcile {
		cf.reconcileChains()
	}
	return true
}

func newOrExisting(isNew bool) string {
	if isNew {
		return "new"
	}
	return "existing"
}

// extendChain adds a proposal to an existing chain, splitting off the
// chain's excess ploidy first.
func (cf *ChainFinder) extendChain(pl *ProposedLinks, target *Chain, newBreakend svchain.BreakendID,
	newSvPloidy float64, addToStart, matchesChainPloidy bool) {

	multi := pl.multiConnection()
	if cf.replicate && !matchesChainPloidy {
		amount := newSvPloidy
		if multi {
			amount *= 2
		}
		if target.Ploidy.Estimate > amount {
			var uncertainty float64
			if newBreakend != svchain.NoBreakend {
				uncertainty = cf.cluster.Breakend(newBreakend).Ploidy.Uncertainty
			}
			split := target.copy(cf.nextChainID)
			cf.nextChainID++
			cf.chains = append(cf.chains, split)

			split.Ploidy = target.Ploidy.Remainder(svchain.Ploidy{Estimate: amount, Uncertainty: uncertainty})
			target.Ploidy = svchain.Ploidy{Estimate: amount, Uncertainty: target.Ploidy.Uncertainty}

			cf.logger.Debugf("new chain %d ploidy %s split from chain %d ploidy %s",
				split.ID, split.Ploidy, target.ID, target.Ploidy)
		}
	}

	if multi {
		cf.logger.Debugf("duplicating chain %d for %s", target.ID, pl.TopRule())
		if pl.conn == connFoldback {
			target.foldbackOnLink(pl.Links[0], pl.Links[1])
		} else {
			target.duplicateOnLink(pl.Links[0], pl.Links[1])
		}
		target.Ploidy = target.Ploidy.Halve()
		return
	}

	target.addLink(pl.Links[0], addToStart)

	// a chain of lower ploidy only takes its own ploidy from the link
	if cf.replicate && !matchesChainPloidy && !pl.matched && target.Ploidy.Estimate < pl.Ploidy {
		cf.logger.Debugf("limiting %s to ploidy %.2f of chain %d", &pl.Links[0], target.Ploidy.Estimate, target.ID)
		pl.limitPloidy(target.Ploidy.Estimate, cf.options.Tolerance)
		return
	}

	estimate := pl.Ploidy
	if pl.matched {
		estimate = pl.breakendPloidy(newBreakend)
	}
	target.Ploidy = svchain.CombinePloidy(cf.breakendPloidy(newBreakend, estimate), target.Ploidy)
}

// newChainPloidy is the ploidy of a chain started by a proposal.
func (cf *ChainFinder) newChainPloidy(pl *ProposedLinks) svchain.Ploidy {
	p := &pl.Links[0]
	ef, es := pl.Ploidy, pl.Ploidy
	if pl.matched && !pl.multiConnection() {
		ef, es = pl.breakendPloidy(p.First), pl.breakendPloidy(p.Second)
	}
	return svchain.CombinePloidy(cf.breakendPloidy(p.First, ef), cf.breakendPloidy(p.Second, es))
}

// registerNewLink takes the allocated ploidy from the breakends and
// prunes candidates that can no longer be made.
func (cf *ChainFinder) registerNewLink(pl *ProposedLinks) error {
	var clipped bool
	var err error
	var sv int
	for _, a := range pl.allocs {
		if clipped, err = cf.capacity.record(a.be, a.amount, a.exhaust); err != nil {
			return fmt.Errorf("%w with %s", err, pl)
		}
		if clipped {
			cf.logger.Tracef("breakend %s allocation clipped to its capacity", a.be)
		}

		if !cf.capacity.exhausted(a.be) {
			continue
		}
		cf.possible.removeBreakend(a.be)

		sv = a.be.SV()
		if cf.capacity.complete(sv) {
			cf.logger.Tracef("SV %d both breakends exhausted", cf.cluster.SVs[sv].ID)
			cf.possible.removeComplexDup(sv)
		}
	}

	for i := range pl.Links {
		cf.possible.removeOpposite(pl.Links[i].First, pl.Links[i].Second)
	}
	return nil
}

// reconcileChains joins chains whose open ends meet, until no more
// can be joined.
func (cf *ChainFinder) reconcileChains() {
	tol := cf.options.Tolerance
	var c1, c2 *Chain
	var merged bool
	for i := 0; i < len(cf.chains); {
		c1 = cf.chains[i]
		merged = false

		for j := i + 1; j < len(cf.chains) && !c1.Closed; j++ {
			c2 = cf.chains[j]
			if c2.Closed {
				continue
			}
			if cf.replicate && !tol.Equal(c1.Ploidy.Estimate, c2.Ploidy.Estimate) &&
				!svchain.PloidyOverlap(c1.Ploidy, c2.Ploidy) {
				continue
			}

			if mergeChains(c1, c2) {
				cf.logger.Debugf("merged chain %d into chain %d", c2.ID, c1.ID)
				c1.Ploidy = svchain.CombinePloidy(c1.Ploidy, c2.Ploidy)
				cf.chains = append(cf.chains[:j], cf.chains[j+1:]...)
				merged = true
				break
			}
		}

		if !merged {
			i++
		}
	}
}

// mergeChains joins c2 to an open end of c1.
func mergeChains(c1, c2 *Chain) bool {
	s1, e1 := c1.OpenBreakend(true), c1.OpenBreakend(false)
	first, last := c2.Links[0].First, c2.Links[len(c2.Links)-1].Second
	switch {
	case e1 == first:
		c1.appendChain(c2, false)
	case e1 == last:
		c1.appendChain(c2, true)
	case s1 == last:
		c1.prependChain(c2, false)
	case s1 == first:
		c1.prependChain(c2, true)
	default:
		return false
	}
	return true
}

// checkDoubleMinuteChains closes the only chain if it holds all double
// minute SVs and its open ends can be linked.
func (cf *ChainFinder) checkDoubleMinuteChains() {
	if len(cf.doubleMinutes) == 0 || len(cf.chains) != 1 {
		return
	}
	ch := cf.chains[0]
	if ch.Closed {
		return
	}
	for _, sv := range cf.doubleMinutes {
		if !ch.HasSV(sv) {
			return
		}
	}

	s, e := ch.OpenBreakend(true), ch.OpenBreakend(false)
	if cf.cluster.Breakend(s) == nil || cf.cluster.Breakend(e) == nil {
		return
	}
	p, ok := AreLinkedSection(cf.cluster, cf.options, e, s, true)
	if !ok || !ch.wouldClose(&p) {
		return
	}

	ch.Links = append(ch.Links, LinkedPair{
		First:       e,
		Second:      s,
		Length:      p.Length,
		Rule:        RuleDMClose,
		Index:       cf.linkIndex,
		RepeatCount: 1,
	})
	cf.linkIndex++
	ch.Closed = true

	cf.logger.Debugf("closed DM chain %d", ch.ID)
}

// checkChains verifies alternation in every chain and that no breakend
// is used beyond its ploidy.
func (cf *ChainFinder) checkChains() error {
	uses := make(map[svchain.BreakendID]float64, 64)
	var n int
	for _, ch := range cf.chains {
		if err := ch.checkAlternation(); err != nil {
			return err
		}
		for i := range ch.Links {
			for _, be := range [2]svchain.BreakendID{ch.Links[i].First, ch.Links[i].Second} {
				if cf.replicate {
					uses[be] += ch.Ploidy.Estimate
				} else {
					uses[be]++
				}
			}
		}
	}

	var b *svchain.Breakend
	for be, used := range uses {
		b = cf.cluster.Breakend(be)
		if cf.replicate {
			if used > b.Ploidy.Max() && !cf.options.Tolerance.Equal(used, b.Ploidy.Estimate) {
				return fmt.Errorf("%w: breakend %s used %.2f over ploidy %s",
					ErrInvalidChain, be, used, b.Ploidy)
			}
			continue
		}
		if n = int(used); n > 1 {
			return fmt.Errorf("%w: breakend %s used %d times", ErrInvalidChain, be, n)
		}
	}
	return nil
}

// removeIdenticalChains drops chains repeating another one. The links
// of the kept chain count the repeats.
func (cf *ChainFinder) removeIdenticalChains() {
	if !cf.replicate {
		return
	}

	unique := cf.chains[:0]
	var matched bool
	for _, ch := range cf.chains {
		matched = false
		for _, u := range unique {
			if !u.identical(ch) {
				continue
			}
			cf.logger.Debugf("skipping duplicate chain %d of chain %d", ch.ID, u.ID)
			for i := range u.Links {
				u.Links[i].RepeatCount++
			}
			matched = true
			break
		}
		if !matched {
			unique = append(unique, ch)
		}
	}
	cf.chains = unique
}

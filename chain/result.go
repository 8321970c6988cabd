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
	"github.com/shenwei356/svchain"
)

// Result is the outcome of chaining one cluster.
type Result struct {
	ClusterID int
	Cluster   *svchain.Cluster

	// Chains is nil if chaining failed.
	Chains []*Chain

	Valid bool
	Err   error

	// DoubleMinute means a closed chain covers all double minute SVs.
	DoubleMinute bool
	// FullyChained means every SV is in a chain.
	FullyChained bool
	// Consistent means every chain is closed or has facing open ends.
	Consistent bool

	// Unchained holds ids of SVs not in any chain.
	Unchained []int

	Iterations int
}

func (cf *ChainFinder) result() *Result {
	c := cf.cluster
	r := &Result{
		ClusterID:  c.ID,
		Cluster:    c,
		Valid:      cf.valid,
		Err:        cf.err,
		Iterations: cf.iterations,
	}
	if !cf.valid {
		return r
	}

	r.Chains = make([]*Chain, len(cf.chains))
	copy(r.Chains, cf.chains)
	for i, ch := range r.Chains {
		ch.ID = i
	}

	chained := make(map[int]struct{}, len(c.SVs))
	r.Consistent = true
	for _, ch := range r.Chains {
		for _, sv := range ch.SVs() {
			chained[sv] = struct{}{}
		}
		if !ch.Consistent(c) {
			r.Consistent = false
		}
	}

	var ok bool
	for i, sv := range c.SVs {
		if !cf.isMember(i) {
			continue
		}
		if _, ok = chained[i]; !ok {
			r.Unchained = append(r.Unchained, sv.ID)
		}
	}
	r.FullyChained = len(r.Unchained) == 0

	if len(cf.doubleMinutes) > 0 {
		for _, ch := range r.Chains {
			if ch.Closed && cf.coversDoubleMinutes(ch) {
				r.DoubleMinute = true
				break
			}
		}
	}
	return r
}

func (cf *ChainFinder) coversDoubleMinutes(ch *Chain) bool {
	for _, sv := range cf.doubleMinutes {
		if !ch.HasSV(sv) {
			return false
		}
	}
	return true
}

// UniqueLinks returns links of all chains, each once, in chain order.
func (r *Result) UniqueLinks() []LinkedPair {
	if len(r.Chains) == 0 {
		return nil
	}
	seen := make(map[pairKey]struct{}, 16)
	links := make([]LinkedPair, 0, 16)
	var ok bool
	for _, ch := range r.Chains {
		for _, p := range ch.Links {
			if _, ok = seen[p.key()]; ok {
				continue
			}
			seen[p.key()] = struct{}{}
			links = append(links, p)
		}
	}
	return links
}

// SVCount returns the number of SVs in chains.
func (r *Result) SVCount() int {
	svs := make(map[int]struct{}, 16)
	for _, ch := range r.Chains {
		for _, sv := range ch.SVs() {
			svs[sv] = struct{}{}
		}
	}
	return len(svs)
}

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
	"context"
	"runtime"
	"sync"

	"github.com/shenwei356/svchain"
	"golang.org/x/sync/errgroup"
)

// Threads is the maximum concurrency number for ChainClusters.
var Threads = runtime.NumCPU()

// Chainer chains clusters with recycled chain finders.
// It is safe for concurrent use.
type Chainer struct {
	options *ChainingOptions
	pool    *sync.Pool
}

// NewChainer creates a new chainer.
func NewChainer(options *ChainingOptions) *Chainer {
	if options == nil {
		options = &DefaultChainingOptions
	}
	return &Chainer{
		options: options,
		pool: &sync.Pool{New: func() interface{} {
			return NewChainFinder(options)
		}},
	}
}

// Chain forms the chains of one cluster.
func (ce *Chainer) Chain(c *svchain.Cluster) *Result {
	cf := ce.pool.Get().(*ChainFinder)
	defer func() {
		cf.Reset()
		ce.pool.Put(cf)
	}()

	if err := cf.Initialise(c); err != nil {
		return &Result{ClusterID: c.ID, Cluster: c, Err: err}
	}
	return cf.FormChains()
}

// ChainClusters chains clusters in parallel, with results in the order
// of the input. A failed cluster is reported in its Result.
// onDone, if not nil, is called after each cluster.
func ChainClusters(ctx context.Context, clusters []*svchain.Cluster,
	options *ChainingOptions, onDone func(*Result)) ([]*Result, error) {

	ce := NewChainer(options)
	results := make([]*Result, len(clusters))

	threads := Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	var mu sync.Mutex
	for i, c := range clusters {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := ce.Chain(c)
			results[i] = r
			if onDone != nil {
				mu.Lock()
				onDone(r)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

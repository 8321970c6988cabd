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
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shenwei356/svchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainClusters(t *testing.T) {
	clusters := make([]*svchain.Cluster, 0, 20)
	for i := 0; i < 20; i++ {
		clusters = append(clusters, newTestCluster(t, i,
			del(1, "1", 100, 200, 1),
			del(2, "1", 300, 400, 1),
			del(3, "1", 500, 600, 1)))
	}
	clusters = append(clusters, svchain.NewCluster(20))

	var done int32
	threads := Threads
	Threads = 4
	defer func() { Threads = threads }()

	results, err := ChainClusters(context.Background(), clusters, nil, func(*Result) {
		atomic.AddInt32(&done, 1)
	})
	require.NoError(t, err)
	require.Len(t, results, len(clusters))
	assert.Equal(t, int32(len(clusters)), atomic.LoadInt32(&done))

	for i, r := range results {
		assert.Equal(t, i, r.ClusterID)
		if i == 20 {
			assert.False(t, r.Valid)
			assert.True(t, errors.Is(r.Err, svchain.ErrEmptyCluster))
			continue
		}
		assert.True(t, r.Valid)
		require.Len(t, r.Chains, 1)
		assert.Len(t, r.Chains[0].Links, 2)
	}
}

func TestChainClustersCanceled(t *testing.T) {
	clusters := []*svchain.Cluster{newTestCluster(t, 1, del(1, "1", 100, 200, 1))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := ChainClusters(ctx, clusters, nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
}

func TestChainerReuse(t *testing.T) {
	ce := NewChainer(&DefaultChainingOptions)

	r1 := ce.Chain(newTestCluster(t, 1,
		del(1, "1", 100, 200, 2),
		del(2, "1", 300, 400, 2),
		del(3, "1", 500, 600, 1)))
	r2 := ce.Chain(newTestCluster(t, 2,
		del(1, "1", 100, 200, 1),
		del(2, "1", 300, 400, 1)))

	require.True(t, r1.Valid)
	require.True(t, r2.Valid)
	assert.Len(t, r1.Chains, 2)
	assert.Len(t, r2.Chains, 1)
	assert.Len(t, r2.Chains[0].Links, 1)
	assert.Len(t, r1.Chains[0].Links, 2)
}

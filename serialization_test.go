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

package svchain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clustersYAML = `
id: 1
svs:
  - id: 10
    type: DEL
    start: {chr: "1", pos: 100, orient: 1}
    end: {chr: "1", pos: 200, orient: -1}
    ploidy: 2
    uncertainty: 0.3
  - id: 11
    type: DEL
    start: {chr: "1", pos: 300, orient: 1}
    end: {chr: "1", pos: 400, orient: -1, assembly: [a1]}
    ploidy: 2
    uncertainty: 0.3
    foldback: true
  - id: 12
    type: DEL
    start: {chr: "1", pos: 500, orient: 1, assembly: [a1]}
    end: {chr: "1", pos: 600, orient: -1}
    ploidy: 2
    uncertainty: 0.3
assembly_links:
  - {sv1: 10, start1: false, sv2: 11, start2: true}
allele_profiles:
  "1":
    - {pos: 1, cluster_ap: 1.5}
    - {pos: 450, cluster_ap: 0}
---
id: 2
requires_replication: true
svs:
  - id: 20
    type: dup
    start: {chr: "3", pos: 50000, orient: -1}
    end: {chr: "3", pos: 55000, orient: 1}
    ploidy: 10
    uncertainty: 2
    double_minute: true
  - id: 21
    type: SGL
    start: {chr: "3", pos: 70000, orient: 1}
    ploidy: 1
    uncertainty: 0.5
`

func TestReadClusters(t *testing.T) {
	clusters, err := ReadClusters(strings.NewReader(clustersYAML))
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	c := clusters[0]
	assert.Equal(t, 1, c.ID)
	assert.True(t, c.Finalized())
	require.Len(t, c.SVs, 3)
	// one explicit link and one from the shared tag
	assert.Len(t, c.AssemblyLinks, 2)
	assert.True(t, c.Breakend(BreakendOf(1, false)).Assembled)
	assert.True(t, c.Breakend(BreakendOf(2, true)).Assembled)
	assert.Len(t, c.AlleleProfiles["1"], 2)
	assert.False(t, c.RequiresReplication)
	assert.True(t, c.IsFoldback(1))
	assert.False(t, c.IsFoldback(0))

	c = clusters[1]
	assert.Equal(t, DUP, c.SVs[0].Type)
	assert.True(t, c.IsDoubleMinute(0))
	assert.False(t, c.IsDoubleMinute(1))
	assert.True(t, c.SVs[1].IsSingleEnded())
	assert.True(t, c.RequiresReplication)
}

func TestReadClustersErrors(t *testing.T) {
	_, err := ReadClusters(strings.NewReader("id: [1, 2"))
	assert.True(t, errors.Is(err, ErrInvalidFileFormat))

	_, err = ReadClusters(strings.NewReader(`
id: 1
svs:
  - {id: 1, type: CNV, start: {chr: "1", pos: 1, orient: 1}}
`))
	assert.True(t, errors.Is(err, ErrUnknownSVType))

	_, err = ReadClusters(strings.NewReader(`
id: 1
svs:
  - {id: 1, type: SGL, start: {chr: "1", pos: 1, orient: 1}, ploidy: 1}
assembly_links:
  - {sv1: 1, start1: true, sv2: 9, start2: true}
`))
	assert.True(t, errors.Is(err, ErrUnknownSV))
}

func TestNewClustersFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "clusters.yaml")
	require.NoError(t, os.WriteFile(file, []byte(clustersYAML), 0644))

	clusters, err := NewClustersFromFile(file)
	require.NoError(t, err)
	assert.Len(t, clusters, 2)

	_, err = NewClustersFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

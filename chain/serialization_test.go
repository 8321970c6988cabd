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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResults(t *testing.T) {
	c := newTestCluster(t, 1,
		del(1, "1", 100, 200, 1),
		del(2, "1", 300, 400, 1),
		del(3, "1", 500, 600, 1))
	require.NoError(t, c.AddAssemblyLink(be(0, false), be(1, true)))
	require.NoError(t, c.AddAssemblyLink(be(1, false), be(2, true)))
	r1 := formChains(t, c)

	c2 := newTestCluster(t, 2, del(8, "1", 100, 200, 1), del(9, "2", 100, 200, 1))
	r2 := formChains(t, c2)

	r3 := &Result{ClusterID: 3, Err: errors.New("failed")}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []*Result{r1, r2, r3}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.TrimRight(ResultHeader, "\n"), lines[0])
	assert.Equal(t, "1\t0\t1.00\tfalse\t0\t1e\t2s\t100\tASSEMBLY\ttrue\t1\ttrue\ttrue\tfalse\t-", lines[1])
	assert.Equal(t, "1\t0\t1.00\tfalse\t1\t2e\t3s\t100\tASSEMBLY\ttrue\t1\ttrue\ttrue\tfalse\t-", lines[2])
	assert.Equal(t, "2\t-\t-\t-\t-\t-\t-\t-\t-\t-\t-\ttrue\tfalse\tfalse\t8,9", lines[3])
	assert.Equal(t, "3\t-\t-\t-\t-\t-\t-\t-\t-\t-\t-\tfalse:failed\tfalse\tfalse\t-", lines[4])

	for _, line := range lines {
		assert.Equal(t, 15, len(strings.Split(line, "\t")), line)
	}
}

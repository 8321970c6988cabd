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
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/shenwei356/svchain"
)

// ResultHeader is the header line of the TSV written by WriteResults.
var ResultHeader = "cluster\tchain\tploidy\tclosed\tindex\tfirst\tsecond\tlength\trule\tassembled\trepeat\tvalid\tfully_chained\tdouble_minute\tunchained\n"

// breakendName names a breakend with the external SV id.
func breakendName(c *svchain.Cluster, be svchain.BreakendID) string {
	if c.Breakend(be) == nil {
		return "-"
	}
	if be.IsStart() {
		return strconv.Itoa(c.SVs[be.SV()].ID) + "s"
	}
	return strconv.Itoa(c.SVs[be.SV()].ID) + "e"
}

func joinInts(vs []int) string {
	if len(vs) == 0 {
		return "-"
	}
	buf := make([]byte, 0, len(vs)*4)
	for i, v := range vs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return string(buf)
}

// WriteResults writes one line per link of each chain. A cluster without
// chains gets a single line with empty link columns.
func WriteResults(w io.Writer, results []*Result) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(ResultHeader); err != nil {
		return err
	}

	var summary, status string
	for _, r := range results {
		if r == nil {
			continue
		}
		status = "true"
		if !r.Valid {
			status = "false"
			if r.Err != nil {
				status = "false:" + r.Err.Error()
			}
		}
		summary = fmt.Sprintf("%s\t%v\t%v\t%s", status, r.FullyChained, r.DoubleMinute, joinInts(r.Unchained))

		if len(r.Chains) == 0 {
			fmt.Fprintf(bw, "%d\t-\t-\t-\t-\t-\t-\t-\t-\t-\t-\t%s\n", r.ClusterID, summary)
			continue
		}

		for _, ch := range r.Chains {
			for _, p := range ch.Links {
				fmt.Fprintf(bw, "%d\t%d\t%.2f\t%v\t%d\t%s\t%s\t%d\t%s\t%v\t%d\t%s\n",
					r.ClusterID, ch.ID, ch.Ploidy.Estimate, ch.Closed, p.Index,
					breakendName(r.Cluster, p.First), breakendName(r.Cluster, p.Second),
					p.Length, p.Rule, p.Assembled, p.RepeatCount, summary)
			}
		}
	}
	return bw.Flush()
}

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

// Package svchain models clusters of structural variants (SVs) whose
// breakends are later connected into derivative-chromosome chains by
// the chain package.
//
// Entities are addressed by stable integer identifiers: an SV by its
// index in Cluster.SVs, and a breakend by a BreakendID derived from that
// index. Nothing holds back-pointers, so a finalized cluster can be read
// by many goroutines at once.
package svchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCluster means no SVs were added to a cluster.
var ErrEmptyCluster = errors.New("svchain: empty cluster")

// ErrInvalidBreakend means a breakend is missing or malformed.
var ErrInvalidBreakend = errors.New("svchain: invalid breakend")

// ErrUnknownSVType means the SV type string is not supported.
var ErrUnknownSVType = errors.New("svchain: unknown SV type")

// ErrUnknownSV means an SV referred to by id or index does not exist.
var ErrUnknownSV = errors.New("svchain: unknown SV")

// SVType is the type of a structural variant.
type SVType uint8

const (
	DEL SVType = iota // deletion
	DUP               // tandem duplication
	INV               // inversion
	BND               // translocation
	INS               // insertion
	SGL               // single breakend
	INF               // inferred single breakend
)

var svTypeNames = [...]string{"DEL", "DUP", "INV", "BND", "INS", "SGL", "INF"}

func (t SVType) String() string {
	if int(t) < len(svTypeNames) {
		return svTypeNames[t]
	}
	return "UNKNOWN"
}

// IsSingleEnded tells if SVs of this type have only one breakend.
func (t SVType) IsSingleEnded() bool {
	return t == SGL || t == INF
}

// ParseSVType parses an SV type name, case-insensitive.
func ParseSVType(s string) (SVType, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range svTypeNames {
		if u == name {
			return SVType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownSVType, s)
}

// Orientations of breakends.
// A breakend with orientation -1 is the lower end of a templated insertion,
// and +1 is the upper end.
const (
	OrientLower int8 = -1
	OrientUpper int8 = 1
)

// BreakendID identifies a breakend inside a cluster:
// SV index << 1, with the lowest bit set for the end breakend.
type BreakendID int32

// NoBreakend means no breakend.
const NoBreakend BreakendID = -1

// BreakendOf returns the id of the start or end breakend of the SV.
func BreakendOf(sv int, start bool) BreakendID {
	if start {
		return BreakendID(sv << 1)
	}
	return BreakendID(sv<<1 | 1)
}

// SV returns the index of the owning SV.
func (id BreakendID) SV() int { return int(id >> 1) }

// IsStart tells if it's the start breakend.
func (id BreakendID) IsStart() bool { return id&1 == 0 }

// Other returns the other breakend of the same SV.
func (id BreakendID) Other() BreakendID {
	if id < 0 {
		return NoBreakend
	}
	return id ^ 1
}

func (id BreakendID) String() string {
	if id < 0 {
		return "-"
	}
	if id.IsStart() {
		return fmt.Sprintf("%ds", id.SV())
	}
	return fmt.Sprintf("%de", id.SV())
}

// Breakend is one end of an SV.
type Breakend struct {
	ID          BreakendID
	Chromosome  string
	Position    int64
	Orientation int8
	Arm         Arm

	// Ploidy of the breakend, the SV ploidy is used if it's not set.
	Ploidy Ploidy

	// Assembled means the breakend takes part in an assembly link.
	Assembled bool
	// AssemblyTags are used to pair breakends sharing an assembled contig.
	AssemblyTags []string
	// InexactHomology extends the minimum templated insertion length.
	InexactHomology int

	// Index is the rank in the position-ordered breakends of the chromosome,
	// set by Cluster.Finalize.
	Index int
}

// SV returns the index of the owning SV.
func (b *Breakend) SV() int { return b.ID.SV() }

// IsStart tells if it's the start breakend.
func (b *Breakend) IsStart() bool { return b.ID.IsStart() }

func (b *Breakend) String() string {
	return fmt.Sprintf("%s:%d:%d", b.Chromosome, b.Position, b.Orientation)
}

// SV is a structural variant with one or two breakends.
type SV struct {
	ID        int // external id
	Type      SVType
	Breakends [2]*Breakend // the end breakend is nil for single-ended SVs

	Ploidy    Ploidy
	PloidyMin float64
	PloidyMax float64
}

// IsSingleEnded tells if the SV has only one breakend.
func (v *SV) IsSingleEnded() bool { return v.Breakends[1] == nil }

// Breakend returns the start or end breakend.
func (v *SV) Breakend(start bool) *Breakend {
	if start {
		return v.Breakends[0]
	}
	return v.Breakends[1]
}

func (v *SV) String() string {
	if v.IsSingleEnded() {
		return fmt.Sprintf("%d:%s %s", v.ID, v.Type, v.Breakends[0])
	}
	return fmt.Sprintf("%d:%s %s-%s", v.ID, v.Type, v.Breakends[0], v.Breakends[1])
}

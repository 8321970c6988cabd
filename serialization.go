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
	"fmt"
	"io"

	"github.com/shenwei356/xopen"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFileFormat means invalid file format.
var ErrInvalidFileFormat = errors.New("svchain: invalid cluster file format")

// ClusterDoc is the YAML form of a cluster.
//
//	id: 1
//	requires_replication: false   # optional, computed if absent
//	svs:
//	  - id: 10
//	    type: DEL
//	    start: {chr: "1", pos: 100, orient: 1}
//	    end: {chr: "1", pos: 200, orient: -1, assembly: [asmb01]}
//	    ploidy: 2
//	    uncertainty: 0.3
//	assembly_links:
//	  - {sv1: 10, start1: false, sv2: 11, start2: true}
//	allele_profiles:
//	  "1": [{pos: 1, cluster_ap: 1.0}]
type ClusterDoc struct {
	ID                  int                     `yaml:"id"`
	RequiresReplication *bool                   `yaml:"requires_replication,omitempty"`
	SVs                 []SVDoc                 `yaml:"svs"`
	AssemblyLinks       []AssemblyLinkDoc       `yaml:"assembly_links,omitempty"`
	AlleleProfiles      map[string][]SegmentDoc `yaml:"allele_profiles,omitempty"`
}

// SVDoc is the YAML form of an SV.
type SVDoc struct {
	ID           int          `yaml:"id"`
	Type         string       `yaml:"type"`
	Start        BreakendDoc  `yaml:"start"`
	End          *BreakendDoc `yaml:"end,omitempty"`
	Ploidy       float64      `yaml:"ploidy"`
	Uncertainty  float64      `yaml:"uncertainty"`
	PloidyMin    float64      `yaml:"ploidy_min,omitempty"`
	PloidyMax    float64      `yaml:"ploidy_max,omitempty"`
	Foldback     bool         `yaml:"foldback,omitempty"`
	DoubleMinute bool         `yaml:"double_minute,omitempty"`
}

// BreakendDoc is the YAML form of a breakend.
type BreakendDoc struct {
	Chromosome      string   `yaml:"chr"`
	Position        int64    `yaml:"pos"`
	Orientation     int8     `yaml:"orient"`
	AssemblyTags    []string `yaml:"assembly,omitempty"`
	InexactHomology int      `yaml:"homology,omitempty"`
}

// AssemblyLinkDoc refers to breakends by external SV ids.
type AssemblyLinkDoc struct {
	SV1    int  `yaml:"sv1"`
	Start1 bool `yaml:"start1"`
	SV2    int  `yaml:"sv2"`
	Start2 bool `yaml:"start2"`
}

// SegmentDoc is the YAML form of an AlleleSegment.
type SegmentDoc struct {
	Position  int64   `yaml:"pos"`
	ClusterAP float64 `yaml:"cluster_ap"`
}

// NewClustersFromFile reads clusters from a YAML file,
// optional with file extensions of .gz, .xz, .zst, .bz2.
func NewClustersFromFile(file string) ([]*Cluster, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return ReadClusters(fh)
}

// ReadClusters reads a stream of YAML documents, one cluster each.
// Returned clusters are finalized.
func ReadClusters(r io.Reader) ([]*Cluster, error) {
	dec := yaml.NewDecoder(r)
	clusters := make([]*Cluster, 0, 8)
	for {
		var doc ClusterDoc
		err := dec.Decode(&doc)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %s", ErrInvalidFileFormat, err)
		}

		c, err := doc.Cluster()
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", doc.ID, err)
		}
		clusters = append(clusters, c)
	}
	return clusters, nil
}

func (d *BreakendDoc) breakend() *Breakend {
	return &Breakend{
		Chromosome:      d.Chromosome,
		Position:        d.Position,
		Orientation:     d.Orientation,
		AssemblyTags:    d.AssemblyTags,
		InexactHomology: d.InexactHomology,
	}
}

// Cluster converts the document into a finalized cluster.
func (d *ClusterDoc) Cluster() (*Cluster, error) {
	c := NewCluster(d.ID)

	var hasTags bool
	for _, s := range d.SVs {
		t, err := ParseSVType(s.Type)
		if err != nil {
			return nil, err
		}
		sv := &SV{
			ID:        s.ID,
			Type:      t,
			Ploidy:    Ploidy{Estimate: s.Ploidy, Uncertainty: s.Uncertainty},
			PloidyMin: s.PloidyMin,
			PloidyMax: s.PloidyMax,
		}
		sv.Breakends[0] = s.Start.breakend()
		if s.End != nil {
			sv.Breakends[1] = s.End.breakend()
		}
		idx, err := c.AddSV(sv)
		if err != nil {
			return nil, err
		}
		if s.Foldback {
			if err = c.RegisterFoldback(idx); err != nil {
				return nil, err
			}
		}
		if s.DoubleMinute {
			if err = c.RegisterDoubleMinute(idx); err != nil {
				return nil, err
			}
		}
		hasTags = hasTags || len(s.Start.AssemblyTags) > 0 ||
			(s.End != nil && len(s.End.AssemblyTags) > 0)
	}

	for _, l := range d.AssemblyLinks {
		i1, err := c.SVIndex(l.SV1)
		if err != nil {
			return nil, err
		}
		i2, err := c.SVIndex(l.SV2)
		if err != nil {
			return nil, err
		}
		if err = c.AddAssemblyLink(BreakendOf(i1, l.Start1), BreakendOf(i2, l.Start2)); err != nil {
			return nil, err
		}
	}
	if hasTags {
		c.FormAssemblyLinks()
	}

	for chr, segs := range d.AlleleProfiles {
		profile := make([]AlleleSegment, len(segs))
		for i, s := range segs {
			profile[i] = AlleleSegment{Position: s.Position, ClusterAP: s.ClusterAP}
		}
		c.SetAlleleProfile(chr, profile)
	}

	if d.RequiresReplication != nil {
		c.SetRequiresReplication(*d.RequiresReplication)
	}

	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

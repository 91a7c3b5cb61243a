//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package align

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
)

// ErrMalformedRegion is returned for region text not of the form
// "name:start-end".
var ErrMalformedRegion = errors.New("align: malformed region")

// Region is a 1-based, closed genomic interval in UCSC "name:start-end"
// style.
type Region struct {
	Ref        string
	Start, End int
}

func (rg Region) String() string {
	return fmt.Sprintf("%s:%d-%d", rg.Ref, rg.Start, rg.End)
}

// ParseRegion parses "name:start-end" text.
func ParseRegion(s string) (Region, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, s)
	}
	var rg Region
	rg.Ref = s[:i]
	coords := strings.SplitN(s[i+1:], "-", 2)
	if len(coords) != 2 {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, s)
	}
	var err error
	if rg.Start, err = strconv.Atoi(coords[0]); err != nil {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, s)
	}
	if rg.End, err = strconv.Atoi(coords[1]); err != nil {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, s)
	}
	if rg.Start > rg.End {
		return Region{}, fmt.Errorf("%w: %q", ErrMalformedRegion, s)
	}
	return rg, nil
}

// TileRegion cuts a region into non-overlapping windows of the given width,
// with a shorter final window covering any remainder.
func TileRegion(rname string, start, end, width int) []Region {
	var regions []Region
	for start+width <= end {
		regions = append(regions, Region{Ref: rname, Start: start, End: start + width - 1})
		start += width
	}
	if start < end {
		regions = append(regions, Region{Ref: rname, Start: start, End: end})
	}
	return regions
}

// TileGenome tiles every @SQ sequence of the header into windows of the
// given width.
func (h *Header) TileGenome(width int) ([]Region, error) {
	g, ok := h.groups["@SQ"]
	if !ok {
		return nil, nil
	}
	var regions []Region
	for _, key := range g.keys {
		i := strings.Index(key, ":")
		if i < 0 {
			return nil, fmt.Errorf("%w: @SQ key %q", ErrMalformedRegion, key)
		}
		rname := key[i+1:]
		values := g.values[key]
		if len(values) == 0 || !strings.HasPrefix(values[0], "LN:") {
			return nil, fmt.Errorf("%w: missing LN for %q", ErrMalformedRegion, rname)
		}
		length, err := strconv.Atoi(values[0][len("LN:"):])
		if err != nil {
			return nil, fmt.Errorf("%w: LN of %q", ErrMalformedRegion, rname)
		}
		regions = append(regions, TileRegion(rname, 1, length, width)...)
	}
	return regions, nil
}

// RegionInterval adapts a Region to the biogo interval tree interface as a
// half-open 0-based range.
type RegionInterval struct {
	Start, End int
	UID        uintptr
}

func (i RegionInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i RegionInterval) ID() uintptr { return i.UID }

func (i RegionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

// BuildRegionTrees builds one interval tree per reference from a region
// list.
func BuildRegionTrees(regions []Region) (map[string]*interval.IntTree, error) {
	trees := make(map[string]*interval.IntTree)
	for uid, rg := range regions {
		tree, ok := trees[rg.Ref]
		if !ok {
			tree = &interval.IntTree{}
			trees[rg.Ref] = tree
		}
		iv := RegionInterval{Start: rg.Start - 1, End: rg.End, UID: uintptr(uid)}
		if err := tree.Insert(iv, false); err != nil {
			return nil, err
		}
	}
	for _, tree := range trees {
		tree.AdjustRanges()
	}
	return trees, nil
}

// OverlapsRegion reports whether the record's aligned span overlaps any
// region in the trees. A nil tree map means no restriction.
func (r *Record) OverlapsRegion(trees map[string]*interval.IntTree) (bool, error) {
	if trees == nil {
		return true, nil
	}
	tree, ok := trees[r.Ref]
	if !ok {
		return false, nil
	}
	start, end, err := r.Coords()
	if err != nil {
		return false, err
	}
	query := RegionInterval{Start: start - 1, End: end - 1}
	return len(tree.Get(query)) > 0, nil
}

//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package pileup

import (
	"fmt"
	"io"
	"sort"
)

// Stats tabulates, per reference base, how often each base was observed
// across the whole stream, self-matches included.
type Stats struct {
	counts map[byte]map[byte]int
}

func NewStats() *Stats {
	s := &Stats{counts: make(map[byte]map[byte]int)}
	for i := 0; i < len(Bases); i++ {
		s.counts[Bases[i]] = make(map[byte]int)
	}
	return s
}

// Add folds one emitted row into the table.
func (s *Stats) Add(row Row) {
	counts, ok := s.counts[row.RefBase]
	if !ok {
		counts = make(map[byte]int)
		s.counts[row.RefBase] = counts
	}
	counts[row.RefBase] += row.Match
	for i := 0; i < len(row.MismatchBases); i++ {
		counts[row.MismatchBases[i]]++
	}
}

// WriteTo writes one line per (reference base, observed base) pair:
// reference base, observed base, reference-matching observation count,
// observed-base count and the observed-base percentage of all observations
// at that reference base.
func (s *Stats) WriteTo(w io.Writer) error {
	refs := make([]int, 0, len(s.counts))
	for ref := range s.counts {
		refs = append(refs, int(ref))
	}
	sort.Ints(refs)
	for _, ref := range refs {
		counts := s.counts[byte(ref)]
		var total int
		for _, n := range counts {
			total += n
		}
		for i := 0; i < len(Bases); i++ {
			base := Bases[i]
			var percent float64
			if total > 0 {
				percent = float64(counts[base]) / float64(total) * 100.
			}
			if _, err := fmt.Fprintf(w, "%c\t%c\t%d\t%d\t%.4f%%\n", ref, base, counts[byte(ref)], counts[base], percent); err != nil {
				return err
			}
		}
	}
	return nil
}

//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package pileup

import (
	"github.com/biogo/store/llrb"

	"github.com/bioseqio/sampileup/lib/align"
)

// Bases are the observation categories reported in per-base counts, in
// output column order.
const Bases = "ACTGN-"

// GapChar fills deletion positions in gapped sequences; GapQual is its
// quality counterpart and compares above every encoded quality symbol.
const (
	GapChar = '-'
	GapQual = '~'
)

// BaseIndex returns the column of b in Bases, -1 for symbols outside the
// reported alphabet.
func BaseIndex(b byte) int {
	for i := 0; i < len(Bases); i++ {
		if Bases[i] == b {
			return i
		}
	}
	return -1
}

// Column collects the observations at one reference position. The reference
// base is resolved from the record that first populates the column and
// needs no further access to that record afterwards.
type Column struct {
	Ref     string
	Pos     int
	RefBase byte
	Bases   []byte
	Quals   []byte
}

// Compare orders columns by position for the llrb tree.
func (c *Column) Compare(e llrb.Comparable) int {
	return c.Pos - e.(*Column).Pos
}

// Row is one emitted pileup column: observation counts split into matches
// and mismatches against the reference base, the mismatching observations in
// their original order, and per-base counts over all observations.
type Row struct {
	Ref           string
	Pos           int
	RefBase       byte
	Match         int
	Mismatch      int
	MismatchBases string
	MismatchQuals string
	BaseCounts    [len(Bases)]int
}

func (c *Column) summarize() Row {
	row := Row{Ref: c.Ref, Pos: c.Pos, RefBase: c.RefBase}
	var mbases, mquals []byte
	for i, b := range c.Bases {
		if b == c.RefBase {
			row.Match++
		} else {
			row.Mismatch++
			mbases = append(mbases, b)
			mquals = append(mquals, c.Quals[i])
		}
		if bi := BaseIndex(b); bi >= 0 {
			row.BaseCounts[bi]++
		}
	}
	row.MismatchBases = string(mbases)
	row.MismatchQuals = string(mquals)
	return row
}

// Accumulator aggregates sorted alignment records into pileup columns. The
// column map is ordered by position; correctness of eviction relies on the
// input stream being sorted by leftmost mapped position. One streaming pass
// per accumulator, single goroutine.
type Accumulator struct {
	columns llrb.Tree
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Pending returns the number of resident columns.
func (a *Accumulator) Pending() int {
	return a.columns.Len()
}

// Ingest adds every aligned base of r whose encoded quality symbol strictly
// exceeds minQual to the column at its reference position. Columns are
// created on first touch, resolving their reference base from r.
func (a *Accumulator) Ingest(r *align.Record, minQual byte) error {
	seq, err := r.Gapped("seq", GapChar)
	if err != nil {
		return err
	}
	qual, err := r.Gapped("qual", GapQual)
	if err != nil {
		return err
	}
	for i := 0; i < len(seq); i++ {
		if qual[i] <= minQual {
			continue
		}
		pos := r.Pos + i
		var col *Column
		if e := a.columns.Get(&Column{Pos: pos}); e != nil {
			col = e.(*Column)
		} else {
			refSeq, err := r.RefSeq()
			if err != nil {
				return err
			}
			j, err := r.IndexOf(pos)
			if err != nil {
				return err
			}
			col = &Column{Ref: r.Ref, Pos: pos, RefBase: refSeq[j]}
			a.columns.Insert(col)
		}
		col.Bases = append(col.Bases, seq[i])
		col.Quals = append(col.Quals, qual[i])
	}
	return nil
}

// Evict removes and returns, in strictly increasing position order, every
// column before the given position. Columns at or past it can still receive
// contributions and stay resident.
func (a *Accumulator) Evict(before int) []Row {
	return a.evict(before, false)
}

// Flush removes and returns all remaining columns in position order.
func (a *Accumulator) Flush() []Row {
	return a.evict(0, true)
}

func (a *Accumulator) evict(before int, all bool) []Row {
	var rows []Row
	for a.columns.Len() > 0 {
		col := a.columns.Min().(*Column)
		if !all && col.Pos >= before {
			break
		}
		rows = append(rows, col.summarize())
		a.columns.DeleteMin()
	}
	return rows
}

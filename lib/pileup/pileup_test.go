//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package pileup

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqio/sampileup/lib/align"
)

func record(t *testing.T, name string, pos int, cig, seq, qual, md string) *align.Record {
	t.Helper()
	line := fmt.Sprintf("%s\t0\tchr1\t%d\t60\t%s\t*\t0\t0\t%s\t%s\tMD:Z:%s", name, pos, cig, seq, qual, md)
	r, err := align.ParseRecord(line)
	require.NoError(t, err)
	return r
}

func TestOverlappingMismatch(t *testing.T) {
	a := NewAccumulator()
	r1 := record(t, "r1", 100, "4M", "ACAT", "IIII", "4")
	r2 := record(t, "r2", 102, "2M", "TT", "II", "0A1")

	require.NoError(t, a.Ingest(r1, '!'))
	rows := a.Evict(r2.Pos)
	require.Len(t, rows, 2)
	assert.Equal(t, 100, rows[0].Pos)
	assert.Equal(t, byte('A'), rows[0].RefBase)
	assert.Equal(t, 1, rows[0].Match)
	assert.Equal(t, 101, rows[1].Pos)

	require.NoError(t, a.Ingest(r2, '!'))
	rows = a.Flush()
	require.Len(t, rows, 2)

	col := rows[0]
	assert.Equal(t, "chr1", col.Ref)
	assert.Equal(t, 102, col.Pos)
	// The reference base comes from r1, which populated the column first.
	assert.Equal(t, byte('A'), col.RefBase)
	assert.Equal(t, 1, col.Match)
	assert.Equal(t, 1, col.Mismatch)
	assert.Equal(t, "T", col.MismatchBases)
	assert.Equal(t, "I", col.MismatchQuals)
	assert.Equal(t, 1, col.BaseCounts[BaseIndex('A')])
	assert.Equal(t, 1, col.BaseCounts[BaseIndex('T')])

	// Both reads carry T at the last position; all observations match.
	col = rows[1]
	assert.Equal(t, 103, col.Pos)
	assert.Equal(t, byte('T'), col.RefBase)
	assert.Equal(t, 2, col.Match)
	assert.Equal(t, 0, col.Mismatch)
	assert.Equal(t, "", col.MismatchBases)
	assert.Equal(t, "", col.MismatchQuals)
}

func TestEvictionOrdering(t *testing.T) {
	a := NewAccumulator()
	require.NoError(t, a.Ingest(record(t, "r1", 10, "4M", "ACGT", "IIII", "4"), '!'))
	require.NoError(t, a.Ingest(record(t, "r2", 12, "4M", "GTAC", "IIII", "4"), '!'))
	assert.Equal(t, 6, a.Pending())

	rows := a.Evict(13)
	positions := []int{}
	for _, row := range rows {
		positions = append(positions, row.Pos)
	}
	assert.Equal(t, []int{10, 11, 12}, positions)
	assert.Equal(t, 3, a.Pending())

	rows = a.Flush()
	positions = positions[:0]
	for _, row := range rows {
		positions = append(positions, row.Pos)
	}
	assert.Equal(t, []int{13, 14, 15}, positions)
	assert.Equal(t, 0, a.Pending())
}

func TestQualityThreshold(t *testing.T) {
	a := NewAccumulator()
	require.NoError(t, a.Ingest(record(t, "r1", 10, "4M", "ACGT", "!I!I", "4"), '!'))
	rows := a.Flush()
	require.Len(t, rows, 2)
	assert.Equal(t, 11, rows[0].Pos)
	assert.Equal(t, 13, rows[1].Pos)
}

func TestNoAlignmentContributesNothing(t *testing.T) {
	a := NewAccumulator()
	r := record(t, "r1", 0, "*", "ACGT", "IIII", "4")
	require.NoError(t, a.Ingest(r, '!'))
	assert.Equal(t, 0, a.Pending())
	assert.Nil(t, a.Flush())
}

func TestDeletionColumns(t *testing.T) {
	a := NewAccumulator()
	// 2M1D2M: the deleted position reports a gap observation against a
	// gap reference base, and its pseudo-quality passes any threshold.
	require.NoError(t, a.Ingest(record(t, "r1", 50, "2M1D2M", "ACGT", "IIII", "2^A2"), '!'))
	rows := a.Flush()
	require.Len(t, rows, 5)
	del := rows[2]
	assert.Equal(t, 52, del.Pos)
	assert.Equal(t, byte('-'), del.RefBase)
	assert.Equal(t, 1, del.Match)
	assert.Equal(t, 0, del.Mismatch)
	assert.Equal(t, 1, del.BaseCounts[BaseIndex('-')])
}

func TestMissingMDSurfaces(t *testing.T) {
	a := NewAccumulator()
	r, err := align.ParseRecord("r1\t0\tchr1\t10\t60\t4M\t*\t0\t0\tACGT\tIIII")
	require.NoError(t, err)
	err = a.Ingest(r, '!')
	assert.ErrorIs(t, err, align.ErrNoMDTag)
}

func TestStats(t *testing.T) {
	a := NewAccumulator()
	require.NoError(t, a.Ingest(record(t, "r1", 100, "4M", "ACAT", "IIII", "4"), '!'))
	require.NoError(t, a.Ingest(record(t, "r2", 102, "2M", "TT", "II", "0A1"), '!'))

	stats := NewStats()
	for _, row := range a.Flush() {
		stats.Add(row)
	}
	var buf bytes.Buffer
	require.NoError(t, stats.WriteTo(&buf))
	out := buf.String()
	assert.Contains(t, out, "A\tA\t2\t2\t66.6667%\n")
	assert.Contains(t, out, "A\tT\t2\t1\t33.3333%\n")
	assert.Contains(t, out, "T\tT\t2\t2\t100.0000%\n")
	assert.Contains(t, out, "-\t-\t0\t0\t0.0000%\n")
	// 6x6 grid.
	assert.Equal(t, 36, bytes.Count(buf.Bytes(), []byte{'\n'}))
}

//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cigar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	ops, err := Parse("8M2I4M1D3M")
	require.NoError(t, err)
	assert.Equal(t, []CigarOp{
		{8, Match},
		{2, Insertion},
		{4, Match},
		{1, Deletion},
		{3, Match},
	}, ops)
	assert.Equal(t, 16, RefLength(ops))
	assert.Equal(t, 17, QueryLength(ops))
}

func TestParseStar(t *testing.T) {
	ops, err := Parse("*")
	require.NoError(t, err)
	assert.Nil(t, ops)
	assert.Equal(t, 0, RefLength(ops))
	assert.Equal(t, "*", String(ops))
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"10Y", "3M4", "M", "12"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidOperation, s)
	}
}

func TestConsumes(t *testing.T) {
	tests := []struct {
		op     Op
		query  int
		ref    int
		aligns bool
	}{
		{Match, 1, 1, true},
		{Equal, 1, 1, true},
		{Diff, 1, 1, true},
		{Insertion, 1, 0, false},
		{SoftClip, 1, 0, false},
		{Deletion, 0, 1, false},
		{Skipped, 0, 1, false},
		{HardClip, 0, 0, false},
		{Padded, 0, 0, false},
	}
	for _, tc := range tests {
		con := tc.op.Consumes()
		assert.Equal(t, tc.query, con.Query, string(tc.op))
		assert.Equal(t, tc.ref, con.Reference, string(tc.op))
		assert.Equal(t, tc.aligns, tc.op.Aligns(), string(tc.op))
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"8M2I4M1D3M", "76M", "5S10M2N3M4H"} {
		ops, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, String(ops))
	}
}

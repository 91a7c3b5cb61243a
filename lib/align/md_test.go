//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMD(t *testing.T) {
	blocks, err := ParseMD("5A2^AC3")
	require.NoError(t, err)
	assert.Equal(t, []MDOp{
		{Op: MDMatch, Length: 5},
		{Op: MDMismatch, Length: 1, Seq: []byte("A")},
		{Op: MDMatch, Length: 2},
		{Op: MDDeletion, Length: 2, Seq: []byte("AC")},
		{Op: MDMatch, Length: 3},
	}, blocks)
}

func TestParseMDDeletionThenMismatch(t *testing.T) {
	// After a deletion group, a mismatch may follow with no digits between.
	blocks, err := ParseMD("10^TG0A5")
	require.NoError(t, err)
	assert.Equal(t, []MDOp{
		{Op: MDMatch, Length: 10},
		{Op: MDDeletion, Length: 2, Seq: []byte("TG")},
		{Op: MDMatch, Length: 0},
		{Op: MDMismatch, Length: 1, Seq: []byte("A")},
		{Op: MDMatch, Length: 5},
	}, blocks)
}

func mdRecord(t *testing.T, md string) *Record {
	t.Helper()
	return parseRecord(t, strings.Replace(recordLine, "MD:Z:16", "MD:Z:"+md, 1))
}

func TestRefSeqFullMatch(t *testing.T) {
	r := mdRecord(t, "16")
	ref, err := r.RefSeq()
	require.NoError(t, err)
	gapped, err := r.Gapped("seq", '-')
	require.NoError(t, err)
	assert.Equal(t, gapped, string(ref))
}

func TestRefSeqMismatchAndDeletion(t *testing.T) {
	// 5 matches, one mismatching reference base, 6 matches, the deleted
	// base, 3 matches. The deletion keeps its gap marker; only the
	// mismatch position is overwritten.
	r := mdRecord(t, "5A6^T3")
	ref, err := r.RefSeq()
	require.NoError(t, err)
	assert.Equal(t, "TTAGAAAAGATA-CTG", string(ref))
}

func TestRefSeqMissingMD(t *testing.T) {
	r := parseRecord(t, "r004\t0\tchr1\t7\t30\t4M\t*\t0\t0\tACGT\tIIII\tNH:i:1")
	_, err := r.RefSeq()
	assert.ErrorIs(t, err, ErrNoMDTag)
}

func TestRefSeqInconsistent(t *testing.T) {
	_, err := mdRecord(t, "99").RefSeq()
	assert.ErrorIs(t, err, ErrInconsistentMD)
	_, err = mdRecord(t, "16A").RefSeq()
	assert.ErrorIs(t, err, ErrInconsistentMD)
	_, err = mdRecord(t, "12^TTTTT3").RefSeq()
	assert.ErrorIs(t, err, ErrInconsistentMD)
}

func TestRefSeqCached(t *testing.T) {
	r := mdRecord(t, "5A6^T3")
	ref1, err := r.RefSeq()
	require.NoError(t, err)
	ref2, err := r.RefSeq()
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)
	assert.True(t, &ref1[0] == &ref2[0])
}

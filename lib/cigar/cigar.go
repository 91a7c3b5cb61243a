//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package cigar

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidOperation is returned for operation letters outside MIDNSHP=X
// or for operations missing their length.
var ErrInvalidOperation = errors.New("cigar: invalid operation")

// Op is a CIGAR operation letter.
type Op byte

const (
	Match     Op = 'M'
	Insertion Op = 'I'
	Deletion  Op = 'D'
	Skipped   Op = 'N'
	SoftClip  Op = 'S'
	HardClip  Op = 'H'
	Padded    Op = 'P'
	Equal     Op = '='
	Diff      Op = 'X'
)

// Consume reports how many query and reference positions one unit of an
// operation advances.
type Consume struct {
	Query, Reference int
}

var consumes = map[Op]Consume{
	Match:     {Query: 1, Reference: 1},
	Insertion: {Query: 1, Reference: 0},
	Deletion:  {Query: 0, Reference: 1},
	Skipped:   {Query: 0, Reference: 1},
	SoftClip:  {Query: 1, Reference: 0},
	HardClip:  {Query: 0, Reference: 0},
	Padded:    {Query: 0, Reference: 0},
	Equal:     {Query: 1, Reference: 1},
	Diff:      {Query: 1, Reference: 1},
}

// Valid reports whether op is one of the nine known operations.
func (op Op) Valid() bool {
	_, ok := consumes[op]
	return ok
}

// Consumes returns the query/reference consumption of op.
func (op Op) Consumes() Consume {
	return consumes[op]
}

// Aligns reports whether op copies query symbols to reference coordinates
// (M, = or X).
func (op Op) Aligns() bool {
	con := consumes[op]
	return con.Query == 1 && con.Reference == 1
}

// CigarOp is one length-prefixed operation of a CIGAR string.
type CigarOp struct {
	Length int
	Op     Op
}

func (co CigarOp) String() string {
	return strconv.Itoa(co.Length) + string(co.Op)
}

// Parse decomposes a CIGAR string into operations. The literal "*" denotes
// no alignment information and parses to nil.
func Parse(s string) ([]CigarOp, error) {
	if s == "*" {
		return nil, nil
	}
	var ops []CigarOp
	var length int
	var hasLength bool
	for i := 0; i < len(s); i++ {
		l := s[i]
		if l >= '0' && l <= '9' {
			length = length*10 + int(l-'0')
			hasLength = true
			continue
		}
		op := Op(l)
		if !op.Valid() {
			return nil, fmt.Errorf("%w: %q in %q", ErrInvalidOperation, l, s)
		}
		if !hasLength {
			return nil, fmt.Errorf("%w: missing length for %q in %q", ErrInvalidOperation, l, s)
		}
		ops = append(ops, CigarOp{Length: length, Op: op})
		length = 0
		hasLength = false
	}
	if hasLength {
		return nil, fmt.Errorf("%w: trailing length in %q", ErrInvalidOperation, s)
	}
	return ops, nil
}

// String re-encodes ops, with nil rendered as "*".
func String(ops []CigarOp) string {
	if len(ops) == 0 {
		return "*"
	}
	var b []byte
	for _, co := range ops {
		b = strconv.AppendInt(b, int64(co.Length), 10)
		b = append(b, byte(co.Op))
	}
	return string(b)
}

// RefLength sums the lengths of the reference-consuming operations.
func RefLength(ops []CigarOp) int {
	var length int
	for _, co := range ops {
		length += co.Length * co.Op.Consumes().Reference
	}
	return length
}

// QueryLength sums the lengths of the query-consuming operations.
func QueryLength(ops []CigarOp) int {
	var length int
	for _, co := range ops {
		length += co.Length * co.Op.Consumes().Query
	}
	return length
}

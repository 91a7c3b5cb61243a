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
	"sort"
	"strconv"
	"strings"

	"github.com/bioseqio/sampileup/lib/cigar"
	"github.com/bioseqio/sampileup/lib/tags"
)

var (
	// ErrMalformedRecord is returned for record lines without the 11
	// required fields or with non-numeric numeric fields.
	ErrMalformedRecord = errors.New("align: malformed record")
	// ErrPositionNotInRecord is returned for coordinate lookups before a
	// record's start.
	ErrPositionNotInRecord = errors.New("align: position not in record")
	// ErrAttributeLengthMismatch is returned when a per-base-aligned
	// attribute does not match the sequence length.
	ErrAttributeLengthMismatch = errors.New("align: attribute length mismatch")
	// ErrTagNotFound is returned on read of an absent tag.
	ErrTagNotFound = errors.New("align: tag not found")
)

// Flag bits of the FLAG field.
const (
	FlagPaired    = 0x2
	FlagUnmapped  = 0x4
	FlagReverse   = 0x10
	FlagSecondary = 0x100
	FlagQCFail    = 0x200
	FlagDuplicate = 0x400
)

// Record holds one alignment record. Pos is the 1-based leftmost mapped
// coordinate, 0 when unmapped. Cigar decomposition, the parsed tag map and
// the reconstructed reference are pure functions of the immutable fields and
// are cached on first use.
type Record struct {
	Name    string
	Flags   int
	Ref     string
	Pos     int
	MapQ    int
	Cigar   string
	MateRef string
	MatePos int
	TempLen int
	Seq     string
	Qual    string

	rawTags  []string
	tags     map[string]interface{}
	cigarOps []cigar.CigarOp
	hasOps   bool
	refSeq   []byte
}

// ParseRecord parses one tab-separated record line: 11 required fields
// followed by zero or more tag fields.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 11 {
		return nil, fmt.Errorf("%w: %d field(s)", ErrMalformedRecord, len(fields))
	}
	r := &Record{
		Name:    fields[0],
		Ref:     fields[2],
		Cigar:   fields[5],
		MateRef: fields[6],
		Seq:     fields[9],
		Qual:    fields[10],
	}
	var err error
	for _, fc := range []struct {
		dst   *int
		field string
	}{
		{&r.Flags, fields[1]},
		{&r.Pos, fields[3]},
		{&r.MapQ, fields[4]},
		{&r.MatePos, fields[7]},
		{&r.TempLen, fields[8]},
	} {
		if *fc.dst, err = strconv.Atoi(fc.field); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRecord, fc.field)
		}
	}
	if len(fields) > 11 {
		r.rawTags = fields[11:]
	}
	return r, nil
}

// CigarOps returns the cached cigar decomposition.
func (r *Record) CigarOps() ([]cigar.CigarOp, error) {
	if !r.hasOps {
		ops, err := cigar.Parse(r.Cigar)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		r.cigarOps = ops
		r.hasOps = true
	}
	return r.cigarOps, nil
}

// AlignedLength returns the reference length covered by the alignment, 0 for
// a cigar of "*".
func (r *Record) AlignedLength() (int, error) {
	ops, err := r.CigarOps()
	if err != nil {
		return 0, err
	}
	return cigar.RefLength(ops), nil
}

// IndexOf returns the index of a genomic position relative to the record
// start.
func (r *Record) IndexOf(pos int) (int, error) {
	i := pos - r.Pos
	if i < 0 {
		return 0, fmt.Errorf("%w: %d in %s", ErrPositionNotInRecord, pos, r.Name)
	}
	return i, nil
}

// Coords returns the half-open reference range covered by the alignment.
func (r *Record) Coords() (start, end int, err error) {
	length, err := r.AlignedLength()
	if err != nil {
		return 0, 0, err
	}
	return r.Pos, r.Pos + length, nil
}

// Gapped projects an attribute into reference coordinates: insertions and
// clipped bases are removed and deletions are filled with gapChar. attr is
// "seq", "qual" or the name of a string tag aligned per base; tag attributes
// must match the sequence length. The result length equals AlignedLength.
func (r *Record) Gapped(attr string, gapChar byte) (string, error) {
	var ungapped string
	switch attr {
	case "seq":
		ungapped = r.Seq
	case "qual":
		ungapped = r.Qual
	default:
		value, err := r.Tag(attr)
		if err != nil {
			return "", err
		}
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("%w: tag %s of %s is not text", ErrAttributeLengthMismatch, attr, r.Name)
		}
		ungapped = s
	}
	if attr != "seq" && len(ungapped) != len(r.Seq) {
		return "", fmt.Errorf("%w: %s of %s has length %d, seq %d", ErrAttributeLengthMismatch, attr, r.Name, len(ungapped), len(r.Seq))
	}
	ops, err := r.CigarOps()
	if err != nil {
		return "", err
	}
	var gapped []byte
	var i int
	for _, co := range ops {
		con := co.Op.Consumes()
		switch {
		case co.Op.Aligns():
			if i+co.Length > len(ungapped) {
				return "", fmt.Errorf("%w: cigar %s of %s overruns %s", ErrAttributeLengthMismatch, r.Cigar, r.Name, attr)
			}
			gapped = append(gapped, ungapped[i:i+co.Length]...)
			i += co.Length
		case con.Reference == 1:
			for n := 0; n < co.Length; n++ {
				gapped = append(gapped, gapChar)
			}
		case con.Query == 1:
			i += co.Length
		}
	}
	return string(gapped), nil
}

// Tag returns the typed value of a tag, parsing the raw tag fields on first
// access.
func (r *Record) Tag(name string) (interface{}, error) {
	if err := r.parseTags(); err != nil {
		return nil, err
	}
	value, ok := r.tags[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrTagNotFound, name, r.Name)
	}
	return value, nil
}

// SetTag sets or replaces a tag value.
func (r *Record) SetTag(name string, value interface{}) error {
	if err := r.parseTags(); err != nil {
		return err
	}
	r.tags[name] = value
	return nil
}

func (r *Record) parseTags() error {
	if r.tags != nil {
		return nil
	}
	m, err := tags.ParseAll(r.rawTags)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	r.tags = m
	return nil
}

// Flag predicates.

func (r *Record) Paired() bool    { return r.Flags&FlagPaired != 0 }
func (r *Record) Mapped() bool    { return r.Flags&FlagUnmapped == 0 }
func (r *Record) Reverse() bool   { return r.Flags&FlagReverse != 0 }
func (r *Record) Secondary() bool { return r.Flags&FlagSecondary != 0 }
func (r *Record) Passing() bool   { return r.Flags&FlagQCFail == 0 }
func (r *Record) Duplicate() bool { return r.Flags&FlagDuplicate != 0 }

// SafeName returns the query name without a /1 or /2 pair suffix.
func (r *Record) SafeName() string {
	if len(r.Name) >= 2 && r.Name[len(r.Name)-2] == '/' {
		return r.Name[:len(r.Name)-2]
	}
	return r.Name
}

// Format serializes the record to its 12-field textual form. Once the tag
// map has been parsed, tags are re-encoded sorted by name for determinism;
// otherwise the raw fields pass through unchanged.
func (r *Record) Format() (string, error) {
	tagFields := r.rawTags
	if r.tags != nil {
		names := make([]string, 0, len(r.tags))
		for name := range r.tags {
			names = append(names, name)
		}
		sort.Strings(names)
		tagFields = make([]string, 0, len(names))
		for _, name := range names {
			field, err := tags.Encode(name, r.tags[name])
			if err != nil {
				return "", fmt.Errorf("%s: %w", r.Name, err)
			}
			tagFields = append(tagFields, field)
		}
	}
	fields := []string{
		r.Name,
		strconv.Itoa(r.Flags),
		r.Ref,
		strconv.Itoa(r.Pos),
		strconv.Itoa(r.MapQ),
		r.Cigar,
		r.MateRef,
		strconv.Itoa(r.MatePos),
		strconv.Itoa(r.TempLen),
		r.Seq,
		r.Qual,
	}
	fields = append(fields, tagFields...)
	return strings.Join(fields, "\t"), nil
}

// Less orders records genomically: by reference name, then position, then
// full textual form.
func (r *Record) Less(other *Record) bool {
	if r.Ref != other.Ref {
		return r.Ref < other.Ref
	}
	if r.Pos != other.Pos {
		return r.Pos < other.Pos
	}
	rs, _ := r.Format()
	os, _ := other.Format()
	return rs < os
}

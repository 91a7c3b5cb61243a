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
	"unicode"
)

var (
	// ErrNoMDTag is returned when reference reconstruction is requested
	// for a record without an MD tag.
	ErrNoMDTag = errors.New("align: MD tag not found")
	// ErrInconsistentMD is returned when the MD tag walks past the end of
	// the reconstructed sequence, indicating cigar/MD disagreement.
	ErrInconsistentMD = errors.New("align: inconsistent MD tag")
)

const (
	MDMatch = iota
	MDMismatch
	MDDeletion
)

// MDOp is one block of an MD tag: a run of matches, a single mismatched
// reference base, or a run of reference bases deleted from the query.
type MDOp struct {
	Op     int
	Length int
	Seq    []byte
}

// ParseMD lexes an MD tag into blocks.
func ParseMD(rawTag string) (blocks []MDOp, err error) {
	i := 0
	for i < len(rawTag) {
		l := rawTag[i]
		if l == '^' {
			var block []byte
			i++ // Skipping "^"
			for i < len(rawTag) && unicode.IsLetter(rune(rawTag[i])) {
				block = append(block, rawTag[i])
				i++
			}
			if len(block) == 0 {
				return nil, fmt.Errorf("%w: empty deletion in %q", ErrInconsistentMD, rawTag)
			}
			blocks = append(blocks, MDOp{Op: MDDeletion, Length: len(block), Seq: block})
		} else if unicode.IsLetter(rune(l)) {
			blocks = append(blocks, MDOp{Op: MDMismatch, Length: 1, Seq: []byte{l}})
			i++
		} else {
			var block []byte
			for i < len(rawTag) && unicode.IsNumber(rune(rawTag[i])) {
				block = append(block, rawTag[i])
				i++
			}
			step, cerr := strconv.Atoi(string(block))
			if cerr != nil {
				return nil, fmt.Errorf("%w: %q", ErrInconsistentMD, rawTag)
			}
			blocks = append(blocks, MDOp{Op: MDMatch, Length: step})
		}
	}
	return blocks, nil
}

// RefSeq reconstructs the reference bases under the alignment from the MD
// tag and the gapped sequence. Mismatched reference bases overwrite the read
// base at their position; deletion blocks advance over the gap markers
// already present in the gapped sequence, leaving them in place. The result
// is cached for the record's lifetime; callers must not modify it.
func (r *Record) RefSeq() ([]byte, error) {
	if r.refSeq != nil {
		return r.refSeq, nil
	}
	value, err := r.Tag("MD")
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoMDTag, r.Name)
		}
		return nil, err
	}
	md, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMDTag, r.Name)
	}
	gapped, err := r.Gapped("seq", '-')
	if err != nil {
		return nil, err
	}
	blocks, err := ParseMD(md)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	ref := []byte(gapped)
	var j int
	for _, b := range blocks {
		switch b.Op {
		case MDMatch, MDDeletion:
			j += b.Length
			if j > len(ref) {
				return nil, fmt.Errorf("%w: %s: MD %q walks past position %d of %d", ErrInconsistentMD, r.Name, md, j, len(ref))
			}
		case MDMismatch:
			if j >= len(ref) {
				return nil, fmt.Errorf("%w: %s: MD %q walks past position %d of %d", ErrInconsistentMD, r.Name, md, j, len(ref))
			}
			ref[j] = b.Seq[0]
			j++
		}
	}
	r.refSeq = ref
	return ref, nil
}

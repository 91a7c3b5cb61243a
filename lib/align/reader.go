//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package align

import (
	"bufio"
	"io"
)

const maxLineSize = 4 * 1024 * 1024

// Reader reads textual alignment records from a stream, parsing the header
// section up front.
type Reader struct {
	scanner *bufio.Scanner
	Header  *Header
	spool   string
	every   int
	nLine   int
}

// NewReader consumes the header lines of rd and spools the first record
// line.
func NewReader(rd io.Reader) (*Reader, error) {
	r := &Reader{
		scanner: bufio.NewScanner(rd),
		Header:  NewHeader(),
	}
	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if len(line) > 0 && line[0] == '@' {
			r.Header.Add(line)
		} else {
			r.spool = line
			break
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetSubsample makes Read return only every nth record.
func (r *Reader) SetSubsample(n int) {
	r.every = n
}

// Read returns the next record, io.EOF at end of stream.
func (r *Reader) Read() (*Record, error) {
	for {
		var line string
		if r.spool != "" {
			line = r.spool
			r.spool = ""
		} else {
			if !r.scanner.Scan() {
				if err := r.scanner.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			line = r.scanner.Text()
		}
		if line == "" {
			return nil, io.EOF
		}
		drawn := r.every <= 1 || r.nLine%r.every == 0
		r.nLine++
		if drawn {
			return ParseRecord(line)
		}
	}
}

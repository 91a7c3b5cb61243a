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

	"github.com/biogo/hts/sam"
)

// FromSAM converts a decoded binary record into the textual record model by
// round-tripping through its canonical text form: coordinates move from
// 0-based to 1-based and qualities to their encoded symbols.
func FromSAM(rec *sam.Record) (*Record, error) {
	b, err := rec.MarshalSAM(sam.FlagDecimal)
	if err != nil {
		return nil, err
	}
	return ParseRecord(string(b))
}

// FromSAMHeader converts a decoded binary header into the textual header
// model.
func FromSAMHeader(hdr *sam.Header) (*Header, error) {
	b, err := hdr.MarshalText()
	if err != nil {
		return nil, err
	}
	h := NewHeader()
	for _, line := range strings.Split(string(b), "\n") {
		if len(line) > 0 && line[0] == '@' {
			h.Add(line)
		}
	}
	return h, nil
}

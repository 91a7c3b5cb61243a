//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package align

import (
	"io"
)

// Writer writes a header followed by textual alignment records.
type Writer struct {
	w io.Writer
}

// NewWriter writes the header lines of h to w. A nil header writes a
// minimal @HD line.
func NewWriter(w io.Writer, h *Header) (*Writer, error) {
	if h == nil {
		h = NewHeader()
		h.Group("@HD").Set("VN:1.0", []string{"SO:unknown"})
	}
	for _, line := range h.Lines() {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return nil, err
		}
	}
	return &Writer{w: w}, nil
}

// Write serializes one record.
func (w *Writer) Write(r *Record) error {
	line, err := r.Format()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w.w, line+"\n")
	return err
}

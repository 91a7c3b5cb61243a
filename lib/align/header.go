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
)

// HeaderGroup holds the lines of one header record type, keyed by their
// first field, in insertion order.
type HeaderGroup struct {
	keys   []string
	values map[string][]string
}

// Set inserts or replaces the line keyed by key.
func (g *HeaderGroup) Set(key string, values []string) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = values
}

// Get returns the values stored under key.
func (g *HeaderGroup) Get(key string) ([]string, bool) {
	values, ok := g.values[key]
	return values, ok
}

// Keys returns the line keys in insertion order.
func (g *HeaderGroup) Keys() []string {
	return g.keys
}

// Header models the header section: groups per record type ("@HD", "@SQ",
// ...), each group keyed by the line's first field. Iteration order is
// insertion order at both levels.
type Header struct {
	types  []string
	groups map[string]*HeaderGroup
}

func NewHeader() *Header {
	return &Header{groups: make(map[string]*HeaderGroup)}
}

// Group returns the group for a record type, creating it on first use.
func (h *Header) Group(typ string) *HeaderGroup {
	g, ok := h.groups[typ]
	if !ok {
		g = &HeaderGroup{values: make(map[string][]string)}
		h.groups[typ] = g
		h.types = append(h.types, typ)
	}
	return g
}

// Add parses one raw header line ("@SQ\tSN:chr1\tLN:248956422").
func (h *Header) Add(line string) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < 2 {
		return
	}
	h.Group(fields[0]).Set(fields[1], fields[2:])
}

// Merge copies all lines of other into h, replacing same-keyed lines.
func (h *Header) Merge(other *Header) {
	if other == nil {
		return
	}
	for _, typ := range other.types {
		og := other.groups[typ]
		g := h.Group(typ)
		for _, key := range og.keys {
			g.Set(key, og.values[key])
		}
	}
}

// Lines renders the header back to raw lines in insertion order.
func (h *Header) Lines() []string {
	var lines []string
	for _, typ := range h.types {
		g := h.groups[typ]
		for _, key := range g.keys {
			fields := append([]string{typ, key}, g.values[key]...)
			lines = append(lines, strings.Join(fields, "\t"))
		}
	}
	return lines
}

// Seqs returns the sequence names of the @SQ lines.
func (h *Header) Seqs() []string {
	g, ok := h.groups["@SQ"]
	if !ok {
		return nil
	}
	var names []string
	for _, key := range g.keys {
		if i := strings.Index(key, ":"); i >= 0 {
			names = append(names, key[i+1:])
		}
	}
	return names
}

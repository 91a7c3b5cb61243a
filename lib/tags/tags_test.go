//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   byte
		value interface{}
	}{
		{"YM", 'Z', `#""9O"1@!J`},
		{"XS", 'i', 5},
		{"XF", 'f', 100.5},
	}
	for _, tc := range tests {
		field, err := Encode(tc.name, tc.value)
		require.NoError(t, err)
		name, typ, value, err := Decode(field)
		require.NoError(t, err)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.typ, typ)
		assert.Equal(t, tc.value, value)
	}
}

func TestDecode(t *testing.T) {
	name, typ, value, err := Decode("MD:Z:5A2^AC3")
	require.NoError(t, err)
	assert.Equal(t, "MD", name)
	assert.Equal(t, byte('Z'), typ)
	assert.Equal(t, "5A2^AC3", value)

	// A is a single-character special case of text.
	_, typ, value, err = Decode("XT:A:U")
	require.NoError(t, err)
	assert.Equal(t, byte('A'), typ)
	assert.Equal(t, "U", value)

	// Z values may themselves contain colons.
	_, _, value, err = Decode("PG:Z:bwa:mem")
	require.NoError(t, err)
	assert.Equal(t, "bwa:mem", value)
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, _, err := Decode("XH:H:1AE301")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, _, _, err = Decode("XB:B:i,1,2,3")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDecodeMalformed(t *testing.T) {
	for _, field := range []string{"XS", "XS:i", "XS:i:abc", "XF:f:pi", "XS:q:1"} {
		_, _, _, err := Decode(field)
		assert.ErrorIs(t, err, ErrMalformed, field)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Encode("XX", []int{1, 2})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseAll(t *testing.T) {
	m, err := ParseAll([]string{"NH:i:1", "MD:Z:76", "AS:i:-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"NH": 1, "MD": "76", "AS": -3}, m)
}

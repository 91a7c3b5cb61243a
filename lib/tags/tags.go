//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package tags

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned for tag text that does not parse as
	// NAME:TYPE:VALUE with a value matching its declared type.
	ErrMalformed = errors.New("tags: malformed tag")
	// ErrUnsupportedType is returned for the H and B array types and for
	// values that cannot be encoded as string, integer or float.
	ErrUnsupportedType = errors.New("tags: unsupported tag type")
)

// Encode formats a tag as NAME:TYPE:VALUE, inferring the type letter from
// the value kind: string to Z, integer to i, float to f.
func Encode(name string, value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return name + ":Z:" + v, nil
	case int:
		return name + ":i:" + strconv.Itoa(v), nil
	case int64:
		return name + ":i:" + strconv.FormatInt(v, 10), nil
	case float64:
		return name + ":f:" + strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return name + ":f:" + strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("%w: cannot encode %v (%T)", ErrUnsupportedType, value, value)
	}
}

// Decode parses a NAME:TYPE:VALUE field into its name, type letter and typed
// value. Types i and f parse to int and float64, Z and A pass through as
// text. H and B are recognized but not implemented.
func Decode(field string) (name string, typ byte, value interface{}, err error) {
	parts := strings.SplitN(field, ":", 3)
	if len(parts) != 3 || len(parts[1]) != 1 {
		return "", 0, nil, fmt.Errorf("%w: %q", ErrMalformed, field)
	}
	name, typ = parts[0], parts[1][0]
	raw := parts[2]
	switch typ {
	case 'i':
		i, cerr := strconv.Atoi(raw)
		if cerr != nil {
			return "", 0, nil, fmt.Errorf("%w: %q", ErrMalformed, field)
		}
		return name, typ, i, nil
	case 'f':
		f, cerr := strconv.ParseFloat(raw, 64)
		if cerr != nil {
			return "", 0, nil, fmt.Errorf("%w: %q", ErrMalformed, field)
		}
		return name, typ, f, nil
	case 'Z', 'A':
		return name, typ, raw, nil
	case 'H', 'B':
		return "", 0, nil, fmt.Errorf("%w: %c array tag %q", ErrUnsupportedType, typ, field)
	default:
		return "", 0, nil, fmt.Errorf("%w: %q", ErrMalformed, field)
	}
}

// ParseAll decodes a list of raw tag fields into a name to value map.
func ParseAll(fields []string) (map[string]interface{}, error) {
	m := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		name, _, value, err := Decode(field)
		if err != nil {
			return nil, err
		}
		m[name] = value
	}
	return m, nil
}

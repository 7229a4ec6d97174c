/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package attribute implements deterministic encoding of identity attribute sets.
// The position of an attribute in the encoded vector is the only identifier used
// during selective disclosure, so issuer, holder and verifier must derive the
// same order from the same attribute names. Ordering is lexicographic by name.
package attribute

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Profile is the documented canonical attribute ordering for identity
// credentials: the names below, sorted alphabetically. Credentials are not
// limited to these names; any attribute set is ordered the same way.
var Profile = []string{ //nolint:gochecknoglobals
	"age",
	"country",
	"name",
	"over_18",
	"over_21",
	"timestamp",
	"user_id",
}

// Set is a mapping of attribute names to raw values as received from a caller.
// Values are coerced to canonical strings before encoding.
type Set map[string]interface{}

// Encoded is an attribute set in canonical vector form. Names and Values are
// index-aligned and sorted by name.
type Encoded struct {
	Names  []string
	Values []string
}

// Messages returns the byte vector to be signed, one entry per attribute.
func (e *Encoded) Messages() [][]byte {
	messages := make([][]byte, len(e.Values))

	for i, v := range e.Values {
		messages[i] = []byte(v)
	}

	return messages
}

// IndexOf returns the vector index of the named attribute, or -1.
func (e *Encoded) IndexOf(name string) int {
	for i, n := range e.Names {
		if n == name {
			return i
		}
	}

	return -1
}

// Encode coerces every value of the set to its canonical string form and
// orders the result lexicographically by attribute name. The same logical set
// always yields the same vector regardless of insertion order.
func Encode(set Set) (*Encoded, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("attribute set is empty")
	}

	names := make([]string, 0, len(set))

	for name := range set {
		if name == "" {
			return nil, fmt.Errorf("attribute name is empty")
		}

		names = append(names, name)
	}

	sort.Strings(names)

	values := make([]string, len(names))

	for i, name := range names {
		value, err := CanonicalValue(set[name])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}

		values[i] = value
	}

	return &Encoded{
		Names:  names,
		Values: values,
	}, nil
}

// CanonicalValue coerces a raw attribute value to its canonical string form:
// numbers as decimal ASCII, booleans as "true"/"false", strings verbatim.
func CanonicalValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if math.Trunc(v) == v && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), nil
		}

		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

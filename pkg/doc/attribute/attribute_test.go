/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package attribute_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cainuriel/are-you-kid/pkg/doc/attribute"
)

func TestEncode(t *testing.T) {
	encoded, err := attribute.Encode(attribute.Set{
		"user_id":   "user-123",
		"name":      "alice",
		"age":       25,
		"country":   "ES",
		"over_18":   true,
		"over_21":   true,
		"timestamp": int64(1700000000),
	})
	require.NoError(t, err)

	require.Equal(t, attribute.Profile, encoded.Names)
	require.Equal(t, []string{"25", "ES", "alice", "true", "true", "1700000000", "user-123"},
		encoded.Values)

	messages := encoded.Messages()
	require.Len(t, messages, 7)
	require.Equal(t, []byte("25"), messages[0])
	require.Equal(t, []byte("user-123"), messages[6])
}

func TestEncode_OrderIndependent(t *testing.T) {
	first, err := attribute.Encode(attribute.Set{"b": "2", "a": "1", "c": "3"})
	require.NoError(t, err)

	second, err := attribute.Encode(attribute.Set{"c": "3", "a": "1", "b": "2"})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, []string{"a", "b", "c"}, first.Names)
}

func TestEncode_Failures(t *testing.T) {
	_, err := attribute.Encode(attribute.Set{})
	require.Error(t, err)
	require.EqualError(t, err, "attribute set is empty")

	_, err = attribute.Encode(nil)
	require.Error(t, err)
	require.EqualError(t, err, "attribute set is empty")

	_, err = attribute.Encode(attribute.Set{"": "value"})
	require.Error(t, err)
	require.EqualError(t, err, "attribute name is empty")

	_, err = attribute.Encode(attribute.Set{"age": []string{"25"}})
	require.Error(t, err)
	require.EqualError(t, err, `attribute "age": unsupported value type []string`)
}

func TestCanonicalValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"string verbatim", "alice", "alice"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"int", 25, "25"},
		{"int64", int64(-3), "-3"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"integral float64", float64(25), "25"},
		{"fractional float64", 2.5, "2.5"},
		{"json number", json.Number("42"), "42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, err := attribute.CanonicalValue(tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.expected, value)
		})
	}

	_, err := attribute.CanonicalValue(nil)
	require.Error(t, err)
	require.EqualError(t, err, "unsupported value type <nil>")
}

func TestEncoded_IndexOf(t *testing.T) {
	encoded, err := attribute.Encode(attribute.Set{"age": "25", "name": "alice"})
	require.NoError(t, err)

	require.Equal(t, 0, encoded.IndexOf("age"))
	require.Equal(t, 1, encoded.IndexOf("name"))
	require.Equal(t, -1, encoded.IndexOf("country"))
}

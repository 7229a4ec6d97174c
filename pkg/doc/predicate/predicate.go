/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package predicate evaluates domain conditions against the attribute values
// disclosed by a proof. Evaluation is purely semantic: it never inspects proof
// bytes and runs only after cryptographic validation. A predicate that cannot
// be satisfied from the disclosed values alone evaluates to false, it does not
// error: "not disclosed" is a negative result, not a malformed request.
package predicate

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Supported predicate kinds.
const (
	KindAgeOver         = "age_over"
	KindAgeBetween      = "age_between"
	KindAttributeEquals = "attribute_equals"
	KindAlwaysTrue      = "always_true"
)

// Predicate is a domain condition to evaluate against disclosed attributes.
type Predicate struct {
	Kind   string                 `json:"kind"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type ageOverParams struct {
	Threshold int `mapstructure:"threshold"`
}

type ageBetweenParams struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

type attributeEqualsParams struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// Evaluate checks the predicate against the disclosed attribute values.
// An error means the predicate itself is invalid (unknown kind, bad params);
// a genuine predicate that the disclosed values do not satisfy returns
// (false, nil).
func Evaluate(pred *Predicate, disclosed map[string]string) (bool, error) {
	if pred == nil {
		return false, fmt.Errorf("predicate is not defined")
	}

	switch pred.Kind {
	case KindAgeOver:
		return evaluateAgeOver(pred.Params, disclosed)
	case KindAgeBetween:
		return evaluateAgeBetween(pred.Params, disclosed)
	case KindAttributeEquals:
		return evaluateAttributeEquals(pred.Params, disclosed)
	case KindAlwaysTrue:
		return true, nil
	default:
		return false, fmt.Errorf("unsupported predicate kind %q", pred.Kind)
	}
}

// evaluateAgeOver prefers the boolean flag attribute of the requested
// threshold (over_18, over_21) and falls back to a disclosed numeric age.
// A threshold whose flag was never disclosed is not satisfied, even when a
// lower flag was.
func evaluateAgeOver(rawParams map[string]interface{}, disclosed map[string]string) (bool, error) {
	params := &ageOverParams{}

	if err := decodeParams(rawParams, params); err != nil {
		return false, err
	}

	if params.Threshold <= 0 {
		return false, fmt.Errorf("age_over: threshold must be positive")
	}

	flag := fmt.Sprintf("over_%d", params.Threshold)

	if value, ok := disclosed[flag]; ok {
		return value == "true", nil
	}

	if value, ok := disclosed["age"]; ok {
		age, err := strconv.Atoi(value)
		if err != nil {
			return false, fmt.Errorf("age_over: disclosed age %q is not a number", value)
		}

		return age >= params.Threshold, nil
	}

	return false, nil
}

func evaluateAgeBetween(rawParams map[string]interface{}, disclosed map[string]string) (bool, error) {
	params := &ageBetweenParams{}

	if err := decodeParams(rawParams, params); err != nil {
		return false, err
	}

	if params.Min < 0 || params.Max < params.Min {
		return false, fmt.Errorf("age_between: invalid range [%d, %d]", params.Min, params.Max)
	}

	value, ok := disclosed["age"]
	if !ok {
		return false, nil
	}

	age, err := strconv.Atoi(value)
	if err != nil {
		return false, fmt.Errorf("age_between: disclosed age %q is not a number", value)
	}

	return age >= params.Min && age <= params.Max, nil
}

func evaluateAttributeEquals(rawParams map[string]interface{}, disclosed map[string]string) (bool, error) {
	params := &attributeEqualsParams{}

	if err := decodeParams(rawParams, params); err != nil {
		return false, err
	}

	if params.Name == "" {
		return false, fmt.Errorf("attribute_equals: name is not defined")
	}

	value, ok := disclosed[params.Name]
	if !ok {
		return false, nil
	}

	return value == params.Value, nil
}

func decodeParams(rawParams map[string]interface{}, target interface{}) error {
	if err := mapstructure.Decode(rawParams, target); err != nil {
		return fmt.Errorf("decode predicate params: %w", err)
	}

	return nil
}

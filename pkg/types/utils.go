package types

import (
	"fmt"
	"strconv"
	"strings"

	"storevec/pkg/vector"
)

// CreateFieldFromConstant parses a textual constant into a field of type t.
// Vectors are written as comma-separated components; a single component is
// broadcast to every position.
func CreateFieldFromConstant(t Type, constant string, width int) (Field, error) {
	constant = strings.TrimSpace(constant)

	switch t {
	case IntType:
		v, err := strconv.ParseInt(constant, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer constant %q: %w", constant, err)
		}
		return NewIntField(v), nil

	case RealType:
		v, err := strconv.ParseFloat(constant, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real constant %q: %w", constant, err)
		}
		return NewFloat64Field(v), nil

	case StringType:
		return NewStringField(constant, width), nil

	case VectorType:
		v, err := parseVector(constant)
		if err != nil {
			return nil, err
		}
		return NewVectorField(v), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", t)
	}
}

func parseVector(s string) (vector.Vector, error) {
	parts := strings.Split(strings.Trim(s, "[]"), ",")
	comps := make([]int32, 0, vector.Dim)
	for _, p := range parts {
		x, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return vector.Vector{}, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		comps = append(comps, int32(x))
	}

	if len(comps) == 1 {
		return vector.Fill(comps[0])
	}
	return vector.New(comps)
}

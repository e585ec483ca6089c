package types

import (
	"fmt"
	"strings"
)

// Search filter operators accepted by the CRM search endpoint.
const (
	OperatorEQ               = "EQ"
	OperatorNEQ              = "NEQ"
	OperatorLT               = "LT"
	OperatorLTE              = "LTE"
	OperatorGT               = "GT"
	OperatorGTE              = "GTE"
	OperatorBetween          = "BETWEEN"
	OperatorIn               = "IN"
	OperatorNotIn            = "NOT_IN"
	OperatorHasProperty      = "HAS_PROPERTY"
	OperatorNotHasProperty   = "NOT_HAS_PROPERTY"
	OperatorContainsToken    = "CONTAINS_TOKEN"
	OperatorNotContainsToken = "NOT_CONTAINS_TOKEN"
)

// operatorArity is the number of value slots each operator takes:
// 0 none, 1 Value, 2 Value and HighValue, -1 Values.
var operatorArity = map[string]int{
	OperatorEQ:               1,
	OperatorNEQ:              1,
	OperatorLT:               1,
	OperatorLTE:              1,
	OperatorGT:               1,
	OperatorGTE:              1,
	OperatorBetween:          2,
	OperatorIn:               -1,
	OperatorNotIn:            -1,
	OperatorHasProperty:      0,
	OperatorNotHasProperty:   0,
	OperatorContainsToken:    1,
	OperatorNotContainsToken: 1,
}

// Filter is one condition of a search filter group. Conditions in a
// group are ANDed.
type Filter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	HighValue    string   `json:"highValue,omitempty"`
	Values       []string `json:"values,omitempty"`
}

// IsValidOperator reports whether op is a recognized filter operator.
func IsValidOperator(op string) bool {
	_, ok := operatorArity[op]
	return ok
}

// ParseFilter parses the command-line form "property:OPERATOR[:value]".
// IN and NOT_IN take a comma-separated list; BETWEEN takes "low,high".
func ParseFilter(s string) (Filter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return Filter{}, fmt.Errorf("%w: %q (expected property:OPERATOR[:value])", ErrInvalidFilter, s)
	}
	f := Filter{
		PropertyName: parts[0],
		Operator:     strings.ToUpper(parts[1]),
	}
	arity, ok := operatorArity[f.Operator]
	if !ok {
		return Filter{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, parts[1])
	}
	value := ""
	if len(parts) == 3 {
		value = parts[2]
	}

	switch arity {
	case 0:
		if value != "" {
			return Filter{}, fmt.Errorf("%w: %s takes no value", ErrInvalidFilter, f.Operator)
		}
	case 1:
		if value == "" {
			return Filter{}, fmt.Errorf("%w: %s needs a value", ErrInvalidFilter, f.Operator)
		}
		f.Value = value
	case 2:
		low, high, found := strings.Cut(value, ",")
		if !found || low == "" || high == "" {
			return Filter{}, fmt.Errorf("%w: %s needs low,high", ErrInvalidFilter, f.Operator)
		}
		f.Value, f.HighValue = low, high
	case -1:
		if value == "" {
			return Filter{}, fmt.Errorf("%w: %s needs a value list", ErrInvalidFilter, f.Operator)
		}
		f.Values = strings.Split(value, ",")
	}
	return f, nil
}

package query

import "fmt"

// Operator represents a query operator
type Operator string

const (
	// Comparison operators
	OpEqual              Operator = "$eq"
	OpNotEqual           Operator = "$ne"
	OpGreaterThan        Operator = "$gt"
	OpGreaterThanOrEqual Operator = "$gte"
	OpLessThan           Operator = "$lt"
	OpLessThanOrEqual    Operator = "$lte"
	OpIn                 Operator = "$in"
	OpNotIn              Operator = "$nin"

	// Logical operators
	OpAnd Operator = "$and"
	OpOr  Operator = "$or"
	OpNot Operator = "$not"

	// Element operators
	OpExists Operator = "$exists"
)

// comparisonOps are the operators a field condition may carry
var comparisonOps = map[Operator]bool{
	OpEqual:              true,
	OpNotEqual:           true,
	OpGreaterThan:        true,
	OpGreaterThanOrEqual: true,
	OpLessThan:           true,
	OpLessThanOrEqual:    true,
	OpIn:                 true,
	OpNotIn:              true,
	OpExists:             true,
}

// rangeOps are the operators eligible for the index fast path
var rangeOps = map[Operator]bool{
	OpEqual:              true,
	OpGreaterThan:        true,
	OpGreaterThanOrEqual: true,
	OpLessThan:           true,
	OpLessThanOrEqual:    true,
}

// evaluateOperator evaluates a comparison operator against a resolved
// field value
func evaluateOperator(op Operator, fieldValue, operand interface{}) (bool, error) {
	switch op {
	case OpEqual:
		return valueEqual(fieldValue, operand), nil
	case OpNotEqual:
		return !valueEqual(fieldValue, operand), nil
	case OpGreaterThan:
		return valueLess(operand, fieldValue), nil
	case OpLessThan:
		return valueLess(fieldValue, operand), nil
	case OpGreaterThanOrEqual:
		return valueLess(operand, fieldValue) || valueEqual(fieldValue, operand), nil
	case OpLessThanOrEqual:
		return valueLess(fieldValue, operand) || valueEqual(fieldValue, operand), nil
	case OpIn:
		return valueIn(fieldValue, operand), nil
	case OpNotIn:
		return !valueIn(fieldValue, operand), nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", op)
	}
}

// valueEqual checks scalar equality. Numbers compare as doubles, which
// finds exact matches inserted from identical JSON input.
func valueEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}

	aNum, aOk := a.(float64)
	bNum, bOk := b.(float64)
	if aOk && bOk {
		return aNum == bNum
	}

	aStr, aOk := a.(string)
	bStr, bOk := b.(string)
	if aOk && bOk {
		return aStr == bStr
	}

	aBool, aOk := a.(bool)
	bBool, bOk := b.(bool)
	if aOk && bOk {
		return aBool == bBool
	}

	return false
}

// valueLess checks a < b for scalars of matching type. Mixed or
// non-scalar operands never order.
func valueLess(a, b interface{}) bool {
	aNum, aOk := a.(float64)
	bNum, bOk := b.(float64)
	if aOk && bOk {
		return aNum < bNum
	}

	aStr, aOk := a.(string)
	bStr, bOk := b.(string)
	if aOk && bOk {
		return aStr < bStr
	}

	return false
}

// valueIn checks membership of a field value in an operand array
func valueIn(fieldValue, operand interface{}) bool {
	arr, ok := operand.([]interface{})
	if !ok {
		return false
	}
	for _, item := range arr {
		if valueEqual(fieldValue, item) {
			return true
		}
	}
	return false
}

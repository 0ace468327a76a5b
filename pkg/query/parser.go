package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node is a parsed filter expression
type Node interface {
	node()
}

// MatchAll matches every document (the empty filter)
type MatchAll struct{}

// Condition compares one field against one operand
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

// And matches when all children match
type And struct {
	Children []Node
}

// Or matches when any child matches
type Or struct {
	Children []Node
}

// Not inverts its child
type Not struct {
	Child Node
}

func (MatchAll) node()  {}
func (Condition) node() {}
func (And) node()       {}
func (Or) node()        {}
func (Not) node()       {}

// BasicComparison describes a filter reducible to a single (field,
// operator, scalar literal) triple. The collection uses it to decide
// whether an index can answer the query.
type BasicComparison struct {
	FieldName string
	Op        Operator
	Value     interface{}
}

// Parse parses a filter expression from query text. The language is a
// JSON object: direct equality ({"age": 1}), operator expressions
// ({"age": {"$gt": 18}}), and $and / $or / $not combinators.
func Parse(queryText string) (Node, error) {
	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(queryText), &filter); err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	return parseFilter(filter)
}

func parseFilter(filter map[string]interface{}) (Node, error) {
	if len(filter) == 0 {
		return MatchAll{}, nil
	}

	children := make([]Node, 0, len(filter))
	for key, value := range filter {
		switch Operator(key) {
		case OpAnd:
			sub, err := parseConditionList(OpAnd, value)
			if err != nil {
				return nil, err
			}
			children = append(children, And{Children: sub})
		case OpOr:
			sub, err := parseConditionList(OpOr, value)
			if err != nil {
				return nil, err
			}
			children = append(children, Or{Children: sub})
		case OpNot:
			condMap, ok := value.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("$not requires a filter object")
			}
			sub, err := parseFilter(condMap)
			if err != nil {
				return nil, err
			}
			children = append(children, Not{Child: sub})
		default:
			if strings.HasPrefix(key, "$") {
				return nil, fmt.Errorf("unknown operator %q", key)
			}
			conds, err := parseFieldConditions(key, value)
			if err != nil {
				return nil, err
			}
			children = append(children, conds...)
		}
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return And{Children: children}, nil
}

// parseFieldConditions expands a field entry into condition nodes. A
// plain value is equality; an operator object may carry several
// operators, each its own condition.
func parseFieldConditions(field string, value interface{}) ([]Node, error) {
	opMap, ok := value.(map[string]interface{})
	if !ok || !isOperatorMap(opMap) {
		return []Node{Condition{Field: field, Op: OpEqual, Value: value}}, nil
	}

	conds := make([]Node, 0, len(opMap))
	for opStr, operand := range opMap {
		op := Operator(opStr)
		if !comparisonOps[op] {
			return nil, fmt.Errorf("unknown operator %q for field %q", opStr, field)
		}
		conds = append(conds, Condition{Field: field, Op: op, Value: operand})
	}
	return conds, nil
}

func parseConditionList(op Operator, value interface{}) ([]Node, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s requires an array of conditions", op)
	}

	nodes := make([]Node, 0, len(list))
	for _, item := range list {
		condMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid condition in %s", op)
		}
		n, err := parseFilter(condMap)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// isOperatorMap reports whether every key is a $-operator. A mixed
// object is treated as a literal equality operand.
func isOperatorMap(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if !strings.HasPrefix(key, "$") {
			return false
		}
	}
	return true
}

// ParseBasicComparison recognizes the index fast path: a query that is
// exactly one equality or range comparison of one field against one
// scalar constant. Returns nil for anything else, including queries
// that fail to parse.
func ParseBasicComparison(queryText string) *BasicComparison {
	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(queryText), &filter); err != nil {
		return nil
	}
	if len(filter) != 1 {
		return nil
	}

	for field, value := range filter {
		if strings.HasPrefix(field, "$") {
			return nil
		}

		opMap, ok := value.(map[string]interface{})
		if !ok || !isOperatorMap(opMap) {
			if !isScalar(value) {
				return nil
			}
			return &BasicComparison{FieldName: field, Op: OpEqual, Value: value}
		}

		if len(opMap) != 1 {
			return nil
		}
		for opStr, operand := range opMap {
			op := Operator(opStr)
			if !rangeOps[op] || !isScalar(operand) {
				return nil
			}
			return &BasicComparison{FieldName: field, Op: op, Value: operand}
		}
	}
	return nil
}

// isScalar reports whether a filter operand is a string or a number —
// the only values an index can hold
func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, float64:
		return true
	default:
		return false
	}
}

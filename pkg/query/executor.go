package query

import (
	"github.com/robheffo79/SpinoDB/pkg/document"
)

// Match evaluates a parsed filter expression against a document
func Match(n Node, doc *document.Document) bool {
	switch node := n.(type) {
	case MatchAll:
		return true
	case Condition:
		return matchCondition(node, doc)
	case And:
		for _, child := range node.Children {
			if !Match(child, doc) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range node.Children {
			if Match(child, doc) {
				return true
			}
		}
		return false
	case Not:
		return !Match(node.Child, doc)
	default:
		return false
	}
}

func matchCondition(cond Condition, doc *document.Document) bool {
	fieldValue, exists := doc.Lookup(cond.Field)

	if cond.Op == OpExists {
		want, ok := cond.Value.(bool)
		if !ok {
			return false
		}
		return exists == want
	}

	if !exists {
		return false
	}

	result, err := evaluateOperator(cond.Op, fieldValue, cond.Value)
	if err != nil {
		return false
	}
	return result
}

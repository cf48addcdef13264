package filter

import (
	"encoding/json"
	"fmt"
)

// envelope is the stable wire form of one node. Op discriminates the
// variant; unused fields are omitted. This is the only format cursors
// embed, so changes here invalidate outstanding continuation tokens.
type envelope struct {
	Op       string     `json:"op"`
	Field    string     `json:"field,omitempty"`
	Value    string     `json:"value,omitempty"`
	Values   []string   `json:"values,omitempty"`
	Pattern  string     `json:"pattern,omitempty"`
	Children []envelope `json:"children,omitempty"`
}

const (
	opAnd   = "and"
	opOr    = "or"
	opEq    = "eq"
	opIn    = "in"
	opNin   = "nin"
	opRegex = "regex"
)

func toEnvelope(e Expr) envelope {
	switch v := e.(type) {
	case *AndExpr:
		children := make([]envelope, 0, len(v.Children))
		for _, child := range v.Children {
			children = append(children, toEnvelope(child))
		}
		return envelope{Op: opAnd, Children: children}
	case *OrExpr:
		children := make([]envelope, 0, len(v.Children))
		for _, child := range v.Children {
			children = append(children, toEnvelope(child))
		}
		return envelope{Op: opOr, Children: children}
	case *EqExpr:
		return envelope{Op: opEq, Field: v.Field, Value: v.Value}
	case *InExpr:
		return envelope{Op: opIn, Field: v.Field, Values: v.Values}
	case *NinExpr:
		return envelope{Op: opNin, Field: v.Field, Values: v.Values}
	case *RegexExpr:
		return envelope{Op: opRegex, Field: v.Field, Pattern: v.Pattern}
	default:
		// the variant set is closed, this is a programming error
		panic(fmt.Sprintf("filter: unknown expression type %T", e))
	}
}

func fromEnvelope(env envelope) (Expr, error) {
	switch env.Op {
	case opAnd, opOr:
		children := make([]Expr, 0, len(env.Children))
		for _, child := range env.Children {
			expr, err := fromEnvelope(child)
			if err != nil {
				return nil, err
			}
			children = append(children, expr)
		}
		if env.Op == opAnd {
			return &AndExpr{Children: children}, nil
		}
		return &OrExpr{Children: children}, nil
	case opEq:
		return &EqExpr{Field: env.Field, Value: env.Value}, nil
	case opIn:
		return &InExpr{Field: env.Field, Values: valueSet(env.Values)}, nil
	case opNin:
		return &NinExpr{Field: env.Field, Values: valueSet(env.Values)}, nil
	case opRegex:
		return &RegexExpr{Field: env.Field, Pattern: env.Pattern}, nil
	default:
		return nil, fmt.Errorf("filter: unknown operator %q", env.Op)
	}
}

// valueSet keeps an empty membership set an empty set across the wire:
// the envelope omits empty values, so decoding must not turn "matches
// nothing" into a nil slice the datastore would reject.
func valueSet(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Marshal renders the tree into its stable JSON form.
func Marshal(e Expr) ([]byte, error) {
	return json.Marshal(toEnvelope(e))
}

// Unmarshal is the exact inverse of Marshal.
func Unmarshal(data []byte) (Expr, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("filter: malformed tree: %w", err)
	}
	return fromEnvelope(env)
}

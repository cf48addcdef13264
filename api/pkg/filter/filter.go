// Package filter models datastore filters as a small closed expression
// tree instead of ad-hoc nested maps. The tree has exactly two
// serializations: BSON for the datastore and a stable JSON form that is
// embedded verbatim in pagination cursors and re-applied unchanged.
package filter

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expr is one node of a filter tree.
type Expr interface {
	// BSON renders the node in the datastore's native filter syntax.
	BSON() bson.D
}

type AndExpr struct {
	Children []Expr
}

type OrExpr struct {
	Children []Expr
}

type EqExpr struct {
	Field string
	Value string
}

type InExpr struct {
	Field  string
	Values []string
}

type NinExpr struct {
	Field  string
	Values []string
}

// RegexExpr is always a case-insensitive match; the builder quotes
// keywords so this is a substring test, never a user-supplied pattern.
type RegexExpr struct {
	Field   string
	Pattern string
}

func And(children ...Expr) *AndExpr {
	return &AndExpr{Children: children}
}

func Or(children ...Expr) *OrExpr {
	return &OrExpr{Children: children}
}

func Eq(field, value string) *EqExpr {
	return &EqExpr{Field: field, Value: value}
}

func In(field string, values []string) *InExpr {
	return &InExpr{Field: field, Values: values}
}

func Nin(field string, values []string) *NinExpr {
	return &NinExpr{Field: field, Values: values}
}

func Regex(field, pattern string) *RegexExpr {
	return &RegexExpr{Field: field, Pattern: pattern}
}

func (e *AndExpr) BSON() bson.D {
	children := bson.A{}
	for _, child := range e.Children {
		children = append(children, child.BSON())
	}
	return bson.D{{Key: "$and", Value: children}}
}

func (e *OrExpr) BSON() bson.D {
	children := bson.A{}
	for _, child := range e.Children {
		children = append(children, child.BSON())
	}
	return bson.D{{Key: "$or", Value: children}}
}

func (e *EqExpr) BSON() bson.D {
	return bson.D{{Key: e.Field, Value: e.Value}}
}

// $in and $nin require a real array: a nil slice would marshal to null,
// which the datastore rejects. An empty array is valid and matches
// nothing, which is exactly what an empty visibility set means.
func (e *InExpr) BSON() bson.D {
	return bson.D{{Key: e.Field, Value: bson.D{{Key: "$in", Value: valueArray(e.Values)}}}}
}

func (e *NinExpr) BSON() bson.D {
	return bson.D{{Key: e.Field, Value: bson.D{{Key: "$nin", Value: valueArray(e.Values)}}}}
}

func (e *RegexExpr) BSON() bson.D {
	return bson.D{{Key: e.Field, Value: primitive.Regex{Pattern: e.Pattern, Options: "i"}}}
}

func valueArray(values []string) bson.A {
	out := bson.A{}
	for _, value := range values {
		out = append(out, value)
	}
	return out
}

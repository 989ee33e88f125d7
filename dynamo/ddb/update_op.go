package ddb

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"golang.org/x/exp/constraints"
)

// UpdateOp is a single-attribute mutation applied to an update expression.
type UpdateOp interface {
	Field() string
	Apply(expression.UpdateBuilder) expression.UpdateBuilder
}

type number interface {
	constraints.Integer | constraints.Float
}

// setFieldOp sets the value of a field regardless of any existing value.
type setFieldOp[T any] struct {
	field string
	value T
}

var _ UpdateOp = setFieldOp[string]{}

func SetFieldOp[T any](field string, value T) setFieldOp[T] {
	return setFieldOp[T]{
		field: field,
		value: value,
	}
}

func (o setFieldOp[T]) Field() string {
	return o.field
}

func (o setFieldOp[T]) Apply(expr expression.UpdateBuilder) expression.UpdateBuilder {
	return expr.Set(expression.Name(o.field), expression.Value(o.value))
}

// addNumberOp increments a numeric field. Not idempotent; reserve it for
// counters where replays are acceptable.
type addNumberOp[T number] struct {
	field string
	value T
}

func AddNumberOp[T number](field string, value T) addNumberOp[T] {
	return addNumberOp[T]{
		field: field,
		value: value,
	}
}

func (o addNumberOp[T]) Field() string {
	return o.field
}

func (o addNumberOp[T]) Apply(expr expression.UpdateBuilder) expression.UpdateBuilder {
	return expr.Add(expression.Name(o.field), expression.Value(o.value))
}

// removeFieldOp deletes an attribute from the item.
type removeFieldOp struct {
	field string
}

func RemoveFieldOp(field string) removeFieldOp {
	return removeFieldOp{
		field: field,
	}
}

func (o removeFieldOp) Field() string {
	return o.field
}

func (o removeFieldOp) Apply(expr expression.UpdateBuilder) expression.UpdateBuilder {
	return expr.Remove(expression.Name(o.field))
}

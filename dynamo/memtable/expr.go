package memtable

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Expression evaluation covers exactly what the ddb builders emit:
//
//	condition: attribute_not_exists (#0)   |  attribute_exists (#0)
//	filter:    #0 = :0
//	update:    newline-separated SET / ADD / REMOVE sections, e.g.
//	           "ADD #0 :0\nSET #1 = :1, #2 = :2"
//
// Anything else is rejected so silent misbehavior can't hide in tests.

type exprContext struct {
	names  map[string]string
	values map[string]types.AttributeValue
}

func (c exprContext) resolveName(tok string) (string, error) {
	tok = strings.TrimSpace(tok)
	if !strings.HasPrefix(tok, "#") {
		return tok, nil
	}
	name, ok := c.names[tok]
	if !ok {
		return "", fmt.Errorf("unresolved expression name %q", tok)
	}
	return name, nil
}

func (c exprContext) resolveValue(tok string) (types.AttributeValue, error) {
	tok = strings.TrimSpace(tok)
	if !strings.HasPrefix(tok, ":") {
		return nil, fmt.Errorf("expected value placeholder, got %q", tok)
	}
	v, ok := c.values[tok]
	if !ok {
		return nil, fmt.Errorf("unresolved expression value %q", tok)
	}
	return v, nil
}

// evalCondition evaluates a condition or filter expression against an item.
// A nil item represents an absent document.
func evalCondition(expr string, ctx exprContext, item map[string]types.AttributeValue) (bool, error) {
	expr = strings.TrimSpace(expr)

	for fn, want := range map[string]bool{
		"attribute_not_exists": false,
		"attribute_exists":     true,
	} {
		if strings.HasPrefix(expr, fn) {
			arg := strings.TrimSpace(strings.TrimPrefix(expr, fn))
			arg = strings.TrimSuffix(strings.TrimPrefix(arg, "("), ")")
			name, err := ctx.resolveName(arg)
			if err != nil {
				return false, err
			}
			_, exists := item[name]
			return exists == want, nil
		}
	}

	if lhs, rhs, ok := strings.Cut(expr, "="); ok {
		name, err := ctx.resolveName(lhs)
		if err != nil {
			return false, err
		}
		want, err := ctx.resolveValue(rhs)
		if err != nil {
			return false, err
		}
		got, exists := item[name]
		return exists && avEqual(got, want), nil
	}

	return false, fmt.Errorf("unsupported condition expression %q", expr)
}

// applyUpdate applies an update expression to a copy of the item. The
// expression builder emits one section per verb, newline separated.
func applyUpdate(expr string, ctx exprContext, item map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	updated := make(map[string]types.AttributeValue, len(item)+2)
	for k, v := range item {
		updated[k] = v
	}

	for _, section := range strings.Split(strings.TrimSpace(expr), "\n") {
		verb, rest, ok := strings.Cut(strings.TrimSpace(section), " ")
		if !ok {
			return nil, fmt.Errorf("unsupported update section %q", section)
		}
		for _, clause := range strings.Split(rest, ",") {
			var err error
			switch verb {
			case "SET":
				err = applySet(clause, ctx, updated)
			case "ADD":
				err = applyAdd(clause, ctx, updated)
			case "REMOVE":
				err = applyRemove(clause, ctx, updated)
			default:
				err = fmt.Errorf("unsupported update verb %q", verb)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return updated, nil
}

func applySet(clause string, ctx exprContext, item map[string]types.AttributeValue) error {
	lhs, rhs, ok := strings.Cut(clause, "=")
	if !ok {
		return fmt.Errorf("unsupported SET clause %q", clause)
	}
	name, err := ctx.resolveName(lhs)
	if err != nil {
		return err
	}
	value, err := ctx.resolveValue(rhs)
	if err != nil {
		return err
	}
	item[name] = value
	return nil
}

func applyAdd(clause string, ctx exprContext, item map[string]types.AttributeValue) error {
	lhs, rhs, ok := strings.Cut(strings.TrimSpace(clause), " ")
	if !ok {
		return fmt.Errorf("unsupported ADD clause %q", clause)
	}
	name, err := ctx.resolveName(lhs)
	if err != nil {
		return err
	}
	value, err := ctx.resolveValue(rhs)
	if err != nil {
		return err
	}
	delta, ok := value.(*types.AttributeValueMemberN)
	if !ok {
		return fmt.Errorf("ADD supports numbers only, got %T", value)
	}
	sum, err := addNumbers(item[name], delta)
	if err != nil {
		return fmt.Errorf("ADD %s: %w", name, err)
	}
	item[name] = sum
	return nil
}

func applyRemove(clause string, ctx exprContext, item map[string]types.AttributeValue) error {
	name, err := ctx.resolveName(clause)
	if err != nil {
		return err
	}
	delete(item, name)
	return nil
}

// addNumbers sums two numeric attribute values. A nil existing value counts
// as zero, matching the remote service.
func addNumbers(existing types.AttributeValue, delta *types.AttributeValueMemberN) (types.AttributeValue, error) {
	base := 0.0
	if existing != nil {
		n, ok := existing.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("existing attribute is %T, not a number", existing)
		}
		var err error
		base, err = strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse existing number %q: %w", n.Value, err)
		}
	}
	d, err := strconv.ParseFloat(delta.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("parse addend %q: %w", delta.Value, err)
	}
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(base+d, 'f', -1, 64)}, nil
}

func avEqual(a, b types.AttributeValue) bool {
	return reflect.DeepEqual(a, b)
}

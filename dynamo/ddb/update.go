package ddb

import (
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UpdateItem executes the update and returns the item as stored after the
// write (ReturnValues ALL_NEW).
func (c *Client) UpdateItem(ctx context.Context, u UpdateItemAction) (Item, error) {
	update, err := u.ToUpdateItem()
	if err != nil {
		return nil, fmt.Errorf("failed to convert update to update item: %w", err)
	}
	out, err := c.awsddb.UpdateItem(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return out.Attributes, nil
}

type UpdateItemAction interface {
	ToUpdateItem() (*dynamodbv2.UpdateItemInput, error)
}

var _ UpdateItemAction = &Update{}

// Update mutates individual attributes of an existing item in place.
type Update struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	fields map[string]UpdateOp
	order  []string
}

func NewUpdate(t table.TableDefinition, pk table.PrimaryKey) *Update {
	return &Update{
		Table: t,
		Key:   pk,
	}
}

func (u *Update) TableName() *string {
	return &u.Table.Name
}

func (u *Update) PrimaryKey() table.PrimaryKey {
	return u.Key
}

// AddOp registers an operation on a single attribute. Each attribute may
// only appear once per update.
func (u *Update) AddOp(op UpdateOp) *Update {
	if u.fields == nil {
		u.fields = make(map[string]UpdateOp)
	}
	if _, ok := u.fields[op.Field()]; ok {
		panic(fmt.Sprintf("adding operation: field %s already exists in update of type %T", op.Field(), op))
	}
	u.fields[op.Field()] = op
	u.order = append(u.order, op.Field())
	return u
}

func (u *Update) Build() (expression2.Expression, error) {
	if len(u.fields) == 0 {
		return expression2.Expression{}, fmt.Errorf("update has no operations")
	}
	var ub expression2.UpdateBuilder
	for _, field := range u.order {
		ub = u.fields[field].Apply(ub)
	}
	e, err := expression2.NewBuilder().WithUpdate(ub).Build()
	if err != nil {
		return expression2.Expression{}, fmt.Errorf("build: %w", err)
	}
	return e, nil
}

func (u *Update) ToUpdateItem() (*dynamodbv2.UpdateItemInput, error) {
	e, err := u.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}
	key, err := u.PrimaryKey().DDB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	return &dynamodbv2.UpdateItemInput{
		TableName:                 u.TableName(),
		Key:                       key,
		UpdateExpression:          e.Update(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
		ReturnValues:              types.ReturnValueAllNew,
	}, nil
}

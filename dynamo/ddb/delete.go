package ddb

import (
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func (c *Client) DeleteItem(ctx context.Context, d DeleteItemAction) error {
	del, err := d.ToDeleteItem()
	if err != nil {
		return fmt.Errorf("failed to convert delete to delete item: %w", err)
	}
	_, err = c.awsddb.DeleteItem(ctx, del)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

type DeleteItemAction interface {
	ToDeleteItem() (*dynamodbv2.DeleteItemInput, error)
}

var _ DeleteItemAction = &Delete{}

// Delete removes an item by primary key. Deleting an absent item succeeds.
type Delete struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	c expression2.ConditionBuilder
}

func NewDelete(t table.TableDefinition, pk table.PrimaryKey) *Delete {
	return &Delete{
		Table: t,
		Key:   pk,
	}
}

func (d *Delete) TableName() *string {
	return &d.Table.Name
}

func (d *Delete) PrimaryKey() table.PrimaryKey {
	return d.Key
}

func (d *Delete) WithCondition(c expression2.ConditionBuilder) *Delete {
	if d.c.IsSet() {
		d.c = d.c.And(c)
		return d
	}
	d.c = c
	return d
}

func (d *Delete) Build() (expression2.Expression, error) {
	if !d.c.IsSet() {
		return expression2.Expression{}, nil
	}
	e, err := expression2.NewBuilder().WithCondition(d.c).Build()
	if err != nil {
		return expression2.Expression{}, fmt.Errorf("build: %w", err)
	}
	return e, nil
}

func (d *Delete) ToDeleteItem() (*dynamodbv2.DeleteItemInput, error) {
	e, err := d.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete: %w", err)
	}
	key, err := d.PrimaryKey().DDB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	return &dynamodbv2.DeleteItemInput{
		TableName:                 d.TableName(),
		Key:                       key,
		ConditionExpression:       e.Condition(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
	}, nil
}

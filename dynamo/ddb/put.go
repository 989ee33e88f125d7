package ddb

import (
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func (c *Client) PutItem(ctx context.Context, p PutItemAction) error {
	put, err := p.ToPutItem()
	if err != nil {
		return fmt.Errorf("failed to convert put to put item: %w", err)
	}
	_, err = c.awsddb.PutItem(ctx, put)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// PutItemAction is anything that can be executed as a PutItem call.
type PutItemAction interface {
	ToPutItem() (*dynamodbv2.PutItemInput, error)
}

var _ PutItemAction = &Put{}

// Put writes a whole entity. A plain Put overwrites any item with the same
// key; add conditions with WithCondition or IfNotExists.
type Put struct {
	Table  table.TableDefinition
	Entity any

	c expression2.ConditionBuilder
}

func NewPut(t table.TableDefinition, entity any) *Put {
	return &Put{
		Table:  t,
		Entity: entity,
	}
}

func (p *Put) TableName() *string {
	return &p.Table.Name
}

// WithCondition adds a condition expression. Multiple conditions are ANDed.
func (p *Put) WithCondition(c expression2.ConditionBuilder) *Put {
	if p.c.IsSet() {
		p.c = p.c.And(c)
		return p
	}
	p.c = c
	return p
}

// IfNotExists makes the put fail with a conditional check failure when an
// item with the same partition key already exists.
func (p *Put) IfNotExists() *Put {
	return p.WithCondition(expression2.AttributeNotExists(expression2.Name(p.Table.KeyDefinitions.PartitionKey.Name)))
}

func (p *Put) Build() (expression2.Expression, Item, error) {
	entity, err := attributevalue.MarshalMap(p.Entity)
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("failed to marshal entity to dynamodb map: %w", err)
	}
	if !p.c.IsSet() {
		return expression2.Expression{}, entity, nil
	}
	exp, err := expression2.NewBuilder().WithCondition(p.c).Build()
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("build: %w", err)
	}
	return exp, entity, nil
}

func (p *Put) ToPutItem() (*dynamodbv2.PutItemInput, error) {
	e, entity, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build put: %w", err)
	}
	return &dynamodbv2.PutItemInput{
		TableName:                 p.TableName(),
		Item:                      entity,
		ConditionExpression:       e.Condition(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
	}, nil
}

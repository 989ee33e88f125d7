package ddb

import (
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ScanRequest describes a whole-table scan.
type ScanRequest struct {
	Table table.TableDefinition
	// Filter is applied server-side to each page. Optional.
	Filter expression2.ConditionBuilder
	// PageSize caps each page. Defaults to 25.
	PageSize int32
	// EventuallyConsistent disables the default strongly consistent reads.
	EventuallyConsistent bool
}

type scanner struct {
	awsddb AWSDynamoClient

	req ScanRequest

	// internal, not exposed to user
	lastCursor map[string]types.AttributeValue
}

var _ Scanner = &scanner{}

const defaultPageSize = 25

func NewScanner(ddb AWSDynamoClient, req ScanRequest) *scanner {
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}
	return &scanner{
		awsddb: ddb,
		req:    req,
	}
}

// ScanResult is one page of items. IsDone reports whether the table has been
// fully drained.
type ScanResult struct {
	Items  []Item
	IsDone bool
}

func (s *scanner) Next(ctx context.Context) (*ScanResult, error) {
	input := &dynamodbv2.ScanInput{
		TableName:         &s.req.Table.Name,
		ConsistentRead:    ptr(!s.req.EventuallyConsistent),
		Limit:             ptr(s.req.PageSize),
		ExclusiveStartKey: s.lastCursor,
	}

	if s.req.Filter.IsSet() {
		expr, err := expression2.NewBuilder().WithFilter(s.req.Filter).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build scan expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeValues = expr.Values()
		input.ExpressionAttributeNames = expr.Names()
	}

	res, err := s.awsddb.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.lastCursor = res.LastEvaluatedKey
	return &ScanResult{
		Items:  res.Items,
		IsDone: res.LastEvaluatedKey == nil,
	}, nil
}

// ScanAll drains every page of the table.
func (s *scanner) ScanAll(ctx context.Context) (*ScanResult, error) {
	var allItems []Item
	for {
		res, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, res.Items...)
		if res.IsDone {
			break
		}
	}
	return &ScanResult{
		Items:  allItems,
		IsDone: true,
	}, nil
}

package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AWSDynamoClient is the slice of the AWS SDK v2 DynamoDB client that this
// tool issues requests through. *dynamodb.Client satisfies it, as does the
// in-memory memtable used in tests.
type AWSDynamoClient interface {
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type IO interface {
	Writer
	Reader
}

type Writer interface {
	PutItem(context.Context, PutItemAction) error
	UpdateItem(context.Context, UpdateItemAction) (Item, error)
	DeleteItem(context.Context, DeleteItemAction) error
}

type Reader interface {
	NewScan(ScanRequest) Scanner
	NewLookup(...GetOption) Getter
	DescribeKeySchema(context.Context, string) (KeySchema, error)
}

type Scanner interface {
	Next(context.Context) (*ScanResult, error)
	ScanAll(context.Context) (*ScanResult, error)
}

// ConsistentReads are enabled by default.
// To use EventuallyConsistent reads, add the WithEventualConsistency option.
type Getter interface {
	// GetItem retrieves a single item by primary key.
	// Returns a nil Item when the item does not exist.
	GetItem(context.Context, GetItemRequest) (Item, error)
}

// Item represents a raw DynamoDB item as returned from Get and Scan.
// Callers should use attributevalue.UnmarshalMap to convert to their struct.
type Item = map[string]types.AttributeValue

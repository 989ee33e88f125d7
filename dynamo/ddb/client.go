// Package ddb builds item-level DynamoDB requests and executes them against
// the AWS SDK v2 client. It deals in raw attribute-value maps; callers own
// the marshaling to and from their entity structs.
package ddb

import (
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
)

func New(awsddb AWSDynamoClient) IO {
	return &Client{
		awsddb: awsddb,
	}
}

type Client struct {
	awsddb AWSDynamoClient
}

var _ IO = &Client{}

// NewScan creates a new scanner over a whole table. Page size, filter and
// read consistency are set on the request.
func (c *Client) NewScan(req ScanRequest) Scanner {
	return NewScanner(c.awsddb, req)
}

// NewLookup creates a new getter for direct lookups by primary key.
//
// Options: [WithEventualConsistency]
func (c *Client) NewLookup(opts ...GetOption) Getter {
	return NewGetter(c.awsddb, opts...)
}

// KeySchema is the key layout reported by the remote table.
type KeySchema struct {
	PartitionKey table.KeyDef
	SortKey      table.KeyDef // zero value when the table has no sort key
}

// DescribeKeySchema asks the service for the table's key attribute names and
// kinds. Used to detect key names when the caller did not supply them.
func (c *Client) DescribeKeySchema(ctx context.Context, tableName string) (KeySchema, error) {
	out, err := c.awsddb.DescribeTable(ctx, describeTableInput(tableName))
	if err != nil {
		return KeySchema{}, fmt.Errorf("describe table %q: %w", tableName, err)
	}
	return keySchemaFromDescription(out)
}

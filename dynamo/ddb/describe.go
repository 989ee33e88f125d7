package ddb

import (
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func describeTableInput(tableName string) *dynamodbv2.DescribeTableInput {
	return &dynamodbv2.DescribeTableInput{TableName: &tableName}
}

func keySchemaFromDescription(out *dynamodbv2.DescribeTableOutput) (KeySchema, error) {
	if out == nil || out.Table == nil {
		return KeySchema{}, fmt.Errorf("empty table description")
	}
	kinds := make(map[string]table.KeyKind, len(out.Table.AttributeDefinitions))
	for _, ad := range out.Table.AttributeDefinitions {
		if ad.AttributeName == nil {
			continue
		}
		kinds[*ad.AttributeName] = table.KeyKind(ad.AttributeType)
	}

	var ks KeySchema
	for _, entry := range out.Table.KeySchema {
		if entry.AttributeName == nil {
			continue
		}
		def := table.KeyDef{
			Name: *entry.AttributeName,
			Kind: kindOrDefault(kinds, *entry.AttributeName),
		}
		switch entry.KeyType {
		case types.KeyTypeHash:
			ks.PartitionKey = def
		case types.KeyTypeRange:
			ks.SortKey = def
		}
	}
	if ks.PartitionKey.Name == "" {
		return KeySchema{}, fmt.Errorf("table description has no partition key")
	}
	return ks, nil
}

func kindOrDefault(kinds map[string]table.KeyKind, name string) table.KeyKind {
	if k, ok := kinds[name]; ok {
		return k
	}
	return table.KeyKindS
}

package memtable

import (
	"context"
	"testing"

	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

var (
	hashTable = table.TableDefinition{
		Name: "hash-table",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
		},
	}
	compositeTable = table.TableDefinition{
		Name: "composite-table",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: "user_id", Kind: table.KeyKindS},
		},
	}
)

func newStore(t *testing.T, defs ...table.TableDefinition) *Store {
	t.Helper()
	s, err := New(StoreOptions{InMemory: true}, defs...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func strAV(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

func hashItem(id string, extra map[string]types.AttributeValue) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{"id": strAV(id)}
	for k, v := range extra {
		item[k] = v
	}
	return item
}

func TestPutGetRoundtrip(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	item := hashItem("n1", map[string]types.AttributeValue{
		"title": strAV("first"),
	})
	_, err := s.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(hashTable.Name),
		Item:      item,
	})
	require.NoError(t, err)

	out, err := s.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)
	require.Equal(t, item, out.Item)
}

func TestGetItemAbsent(t *testing.T) {
	s := newStore(t, hashTable)

	out, err := s.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("missing", nil),
	})
	require.NoError(t, err)
	require.Nil(t, out.Item)
}

func TestUnknownTable(t *testing.T) {
	s := newStore(t, hashTable)

	_, err := s.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String("no-such-table"),
		Key:       hashItem("n1", nil),
	})
	var rnf *types.ResourceNotFoundException
	require.ErrorAs(t, err, &rnf)
}

func TestPutItemConditionFailure(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	put := func(title string, cond bool) error {
		in := &dynamodb.PutItemInput{
			TableName: aws.String(hashTable.Name),
			Item: hashItem("n1", map[string]types.AttributeValue{
				"title": strAV(title),
			}),
		}
		if cond {
			in.ConditionExpression = aws.String("attribute_not_exists (#0)")
			in.ExpressionAttributeNames = map[string]string{"#0": "id"}
		}
		_, err := s.PutItem(ctx, in)
		return err
	}

	require.NoError(t, put("first", true))

	err := put("second", true)
	var ccf *types.ConditionalCheckFailedException
	require.ErrorAs(t, err, &ccf)

	// An unconditional put still replaces.
	require.NoError(t, put("third", false))
	out, err := s.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)
	require.Equal(t, strAV("third"), out.Item["title"])
}

func TestUpdateItemCreatesAbsentItem(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	out, err := s.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(hashTable.Name),
		Key:              hashItem("n1", nil),
		UpdateExpression: aws.String("SET #0 = :0"),
		ExpressionAttributeNames: map[string]string{
			"#0": "title",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":0": strAV("created by update"),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	require.NoError(t, err)
	require.Equal(t, strAV("n1"), out.Attributes["id"])
	require.Equal(t, strAV("created by update"), out.Attributes["title"])

	got, err := s.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)
	require.Equal(t, out.Attributes, got.Item)
}

func TestDeleteItem(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	_, err := s.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(hashTable.Name),
		Item:      hashItem("n1", nil),
	})
	require.NoError(t, err)

	_, err = s.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)

	out, err := s.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)
	require.Nil(t, out.Item)

	// Deleting again is a no-op, like the remote service.
	_, err = s.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(hashTable.Name),
		Key:       hashItem("n1", nil),
	})
	require.NoError(t, err)
}

func TestScanPagination(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(hashTable.Name),
			Item:      hashItem(id, nil),
		})
		require.NoError(t, err)
	}

	first, err := s.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(hashTable.Name),
		Limit:     aws.Int32(2),
	})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotNil(t, first.LastEvaluatedKey)
	require.Equal(t, strAV("b"), first.LastEvaluatedKey["id"])

	second, err := s.Scan(ctx, &dynamodb.ScanInput{
		TableName:         aws.String(hashTable.Name),
		Limit:             aws.Int32(2),
		ExclusiveStartKey: first.LastEvaluatedKey,
	})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, strAV("c"), second.Items[0]["id"])
	require.Nil(t, second.LastEvaluatedKey)
}

func TestScanFilterRunsAfterPageCut(t *testing.T) {
	s := newStore(t, hashTable)
	ctx := context.Background()

	for id, owner := range map[string]string{"a": "alice", "b": "bob", "c": "alice"} {
		_, err := s.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(hashTable.Name),
			Item: hashItem(id, map[string]types.AttributeValue{
				"owner": strAV(owner),
			}),
		})
		require.NoError(t, err)
	}

	out, err := s.Scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(hashTable.Name),
		Limit:                    aws.Int32(2),
		FilterExpression:         aws.String("#0 = :0"),
		ExpressionAttributeNames: map[string]string{"#0": "owner"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":0": strAV("alice"),
		},
	})
	require.NoError(t, err)
	// The page holds a and b; the filter drops b afterwards, so the page
	// yields one item but still reports b as the cursor.
	require.Len(t, out.Items, 1)
	require.Equal(t, strAV("a"), out.Items[0]["id"])
	require.Equal(t, strAV("b"), out.LastEvaluatedKey["id"])
}

func TestDescribeTable(t *testing.T) {
	s := newStore(t, hashTable, compositeTable)
	ctx := context.Background()

	out, err := s.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(compositeTable.Name),
	})
	require.NoError(t, err)
	require.Len(t, out.Table.KeySchema, 2)
	require.Equal(t, "id", *out.Table.KeySchema[0].AttributeName)
	require.Equal(t, types.KeyTypeHash, out.Table.KeySchema[0].KeyType)
	require.Equal(t, "user_id", *out.Table.KeySchema[1].AttributeName)
	require.Equal(t, types.KeyTypeRange, out.Table.KeySchema[1].KeyType)

	out, err = s.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(hashTable.Name),
	})
	require.NoError(t, err)
	require.Len(t, out.Table.KeySchema, 1)
}

func TestCompositeKeyIsolation(t *testing.T) {
	s := newStore(t, compositeTable)
	ctx := context.Background()

	item := func(id, user string) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{
			"id":      strAV(id),
			"user_id": strAV(user),
		}
	}
	for _, user := range []string{"alice", "bob"} {
		_, err := s.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(compositeTable.Name),
			Item:      item("n1", user),
		})
		require.NoError(t, err)
	}

	out, err := s.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(compositeTable.Name),
		Key:       item("n1", "alice"),
	})
	require.NoError(t, err)
	require.Equal(t, strAV("alice"), out.Item["user_id"])
}

func TestEvalCondition(t *testing.T) {
	ctx := exprContext{
		names:  map[string]string{"#0": "owner"},
		values: map[string]types.AttributeValue{":0": strAV("alice")},
	}
	item := map[string]types.AttributeValue{"owner": strAV("alice")}

	for _, tc := range []struct {
		expr string
		item map[string]types.AttributeValue
		want bool
	}{
		{"attribute_not_exists (#0)", nil, true},
		{"attribute_not_exists (#0)", item, false},
		{"attribute_exists (#0)", item, true},
		{"attribute_exists (#0)", nil, false},
		{"#0 = :0", item, true},
		{"#0 = :0", map[string]types.AttributeValue{"owner": strAV("bob")}, false},
		{"#0 = :0", nil, false},
	} {
		got, err := evalCondition(tc.expr, ctx, tc.item)
		require.NoError(t, err, tc.expr)
		require.Equal(t, tc.want, got, tc.expr)
	}

	_, err := evalCondition("size (#0) > :0", ctx, item)
	require.Error(t, err)
}

func TestApplyUpdate(t *testing.T) {
	ctx := exprContext{
		names: map[string]string{"#0": "title", "#1": "content"},
		values: map[string]types.AttributeValue{
			":0": strAV("new title"),
			":1": strAV("new content"),
		},
	}
	item := map[string]types.AttributeValue{
		"id":    strAV("n1"),
		"title": strAV("old title"),
	}

	updated, err := applyUpdate("SET #0 = :0, #1 = :1", ctx, item)
	require.NoError(t, err)
	require.Equal(t, strAV("new title"), updated["title"])
	require.Equal(t, strAV("new content"), updated["content"])
	require.Equal(t, strAV("n1"), updated["id"])
	// The input item is left untouched.
	require.Equal(t, strAV("old title"), item["title"])

	_, err = applyUpdate("DELETE #0 :0", ctx, item)
	require.Error(t, err)
}

func TestApplyUpdateAddAndRemove(t *testing.T) {
	ctx := exprContext{
		names: map[string]string{"#0": "views", "#1": "title"},
		values: map[string]types.AttributeValue{
			":0": &types.AttributeValueMemberN{Value: "2"},
		},
	}
	item := map[string]types.AttributeValue{
		"views": &types.AttributeValueMemberN{Value: "40"},
		"title": strAV("gone soon"),
	}

	updated, err := applyUpdate("ADD #0 :0\nREMOVE #1", ctx, item)
	require.NoError(t, err)
	require.Equal(t, &types.AttributeValueMemberN{Value: "42"}, updated["views"])
	require.NotContains(t, updated, "title")

	// ADD on an absent attribute starts from zero.
	updated, err = applyUpdate("ADD #0 :0", ctx, map[string]types.AttributeValue{})
	require.NoError(t, err)
	require.Equal(t, &types.AttributeValueMemberN{Value: "2"}, updated["views"])

	// ADD against a non-numeric attribute is rejected.
	_, err = applyUpdate("ADD #0 :0", ctx, map[string]types.AttributeValue{
		"views": strAV("not a number"),
	})
	require.Error(t, err)
}

func TestSerializeRoundtrip(t *testing.T) {
	item := map[string]types.AttributeValue{
		"s":    strAV("hello"),
		"n":    &types.AttributeValueMemberN{Value: "42"},
		"b":    &types.AttributeValueMemberB{Value: []byte{0x01, 0x02}},
		"bool": &types.AttributeValueMemberBOOL{Value: true},
		"null": &types.AttributeValueMemberNULL{Value: true},
		"ss":   &types.AttributeValueMemberSS{Value: []string{"a", "b"}},
		"list": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			strAV("x"),
			&types.AttributeValueMemberN{Value: "7"},
		}},
		"map": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"nested": strAV("y"),
		}},
	}

	data, err := serializeItem(item)
	require.NoError(t, err)
	got, err := deserializeItem(data)
	require.NoError(t, err)
	require.Equal(t, item, got)

	_, err = deserializeItem([]byte(`{"bad":{"X":"y"}}`))
	require.Error(t, err)
}

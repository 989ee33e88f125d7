package memtable

import (
	"bytes"
	"context"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// PutItem creates or replaces an item, honoring any condition expression.
func (s *Store) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Item == nil {
		return nil, fmt.Errorf("item is required")
	}

	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	pk, err := def.ExtractPrimaryKey(params.Item)
	if err != nil {
		return nil, fmt.Errorf("extract primary key: %w", err)
	}
	key, err := encodeKey(def, pk)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	itemBytes, err := serializeItem(params.Item)
	if err != nil {
		return nil, fmt.Errorf("serialize item: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if params.ConditionExpression != nil {
			existing, err := readItem(txn, key)
			if err != nil {
				return err
			}
			ok, err := evalCondition(*params.ConditionExpression, exprContext{
				names:  params.ExpressionAttributeNames,
				values: params.ExpressionAttributeValues,
			}, existing)
			if err != nil {
				return fmt.Errorf("evaluate condition: %w", err)
			}
			if !ok {
				return &types.ConditionalCheckFailedException{
					Message: ptrStr("The conditional request failed"),
				}
			}
		}
		return txn.Set(key, itemBytes)
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem retrieves a single item by its primary key. Absent items yield an
// empty output, not an error, matching the remote service.
func (s *Store) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Key == nil {
		return nil, fmt.Errorf("key is required")
	}

	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	pk, err := def.ExtractPrimaryKey(params.Key)
	if err != nil {
		return nil, fmt.Errorf("extract primary key: %w", err)
	}
	key, err := encodeKey(def, pk)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	var item map[string]types.AttributeValue
	err = s.db.View(func(txn *badger.Txn) error {
		item, err = readItem(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

// DeleteItem removes an item; deleting an absent item succeeds.
func (s *Store) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Key == nil {
		return nil, fmt.Errorf("key is required")
	}

	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	pk, err := def.ExtractPrimaryKey(params.Key)
	if err != nil {
		return nil, fmt.Errorf("extract primary key: %w", err)
	}
	key, err := encodeKey(def, pk)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if params.ConditionExpression != nil {
			existing, err := readItem(txn, key)
			if err != nil {
				return err
			}
			ok, err := evalCondition(*params.ConditionExpression, exprContext{
				names:  params.ExpressionAttributeNames,
				values: params.ExpressionAttributeValues,
			}, existing)
			if err != nil {
				return fmt.Errorf("evaluate condition: %w", err)
			}
			if !ok {
				return &types.ConditionalCheckFailedException{
					Message: ptrStr("The conditional request failed"),
				}
			}
		}
		return txn.Delete(key)
	})
	if err != nil {
		return nil, err
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// UpdateItem applies a SET update expression. Like the remote service, an
// update against an absent key creates the item.
func (s *Store) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Key == nil {
		return nil, fmt.Errorf("key is required")
	}
	if params.UpdateExpression == nil {
		return nil, fmt.Errorf("update expression is required")
	}

	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	pk, err := def.ExtractPrimaryKey(params.Key)
	if err != nil {
		return nil, fmt.Errorf("extract primary key: %w", err)
	}
	key, err := encodeKey(def, pk)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	var updated map[string]types.AttributeValue
	err = s.db.Update(func(txn *badger.Txn) error {
		existing, err := readItem(txn, key)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = make(map[string]types.AttributeValue, len(params.Key))
		}
		// Key attributes are always part of the stored item.
		for k, v := range params.Key {
			existing[k] = v
		}
		updated, err = applyUpdate(*params.UpdateExpression, exprContext{
			names:  params.ExpressionAttributeNames,
			values: params.ExpressionAttributeValues,
		}, existing)
		if err != nil {
			return fmt.Errorf("apply update: %w", err)
		}
		itemBytes, err := serializeItem(updated)
		if err != nil {
			return fmt.Errorf("serialize item: %w", err)
		}
		return txn.Set(key, itemBytes)
	})
	if err != nil {
		return nil, err
	}

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = updated
	}
	return out, nil
}

// Scan walks a table page by page in badger key order.
func (s *Store) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}

	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	var startAfter []byte
	if params.ExclusiveStartKey != nil {
		pk, err := def.ExtractPrimaryKey(params.ExclusiveStartKey)
		if err != nil {
			return nil, fmt.Errorf("extract exclusive start key: %w", err)
		}
		startAfter, err = encodeKey(def, pk)
		if err != nil {
			return nil, fmt.Errorf("encode exclusive start key: %w", err)
		}
	}

	limit := 0
	if params.Limit != nil {
		limit = int(*params.Limit)
	}

	var page []map[string]types.AttributeValue
	var more bool
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := tablePrefix(def)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			entry := it.Item()
			if startAfter != nil && bytes.Compare(entry.Key(), startAfter) <= 0 {
				continue
			}
			if limit > 0 && len(page) == limit {
				more = true
				return nil
			}
			err := entry.Value(func(val []byte) error {
				item, err := deserializeItem(val)
				if err != nil {
					return err
				}
				page = append(page, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &dynamodb.ScanOutput{}
	if more && len(page) > 0 {
		last, err := def.ExtractPrimaryKey(page[len(page)-1])
		if err != nil {
			return nil, fmt.Errorf("extract last evaluated key: %w", err)
		}
		lek, err := last.DDB()
		if err != nil {
			return nil, fmt.Errorf("marshal last evaluated key: %w", err)
		}
		out.LastEvaluatedKey = lek
	}

	// The filter runs after the page is cut, matching the remote service.
	for _, item := range page {
		if params.FilterExpression != nil {
			ok, err := evalCondition(*params.FilterExpression, exprContext{
				names:  params.ExpressionAttributeNames,
				values: params.ExpressionAttributeValues,
			}, item)
			if err != nil {
				return nil, fmt.Errorf("evaluate filter: %w", err)
			}
			if !ok {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

// DescribeTable reports the registered key schema.
func (s *Store) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	def, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	desc := &types.TableDescription{
		TableName:   &def.Name,
		TableStatus: types.TableStatusActive,
	}
	addKey := func(kd table.KeyDef, keyType types.KeyType) {
		name := kd.Name
		desc.KeySchema = append(desc.KeySchema, types.KeySchemaElement{
			AttributeName: &name,
			KeyType:       keyType,
		})
		desc.AttributeDefinitions = append(desc.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: &name,
			AttributeType: types.ScalarAttributeType(kd.Kind),
		})
	}
	addKey(def.KeyDefinitions.PartitionKey, types.KeyTypeHash)
	if def.KeyDefinitions.SortKey.Name != "" {
		addKey(def.KeyDefinitions.SortKey, types.KeyTypeRange)
	}

	return &dynamodb.DescribeTableOutput{Table: desc}, nil
}

func readItem(txn *badger.Txn, key []byte) (map[string]types.AttributeValue, error) {
	entry, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item map[string]types.AttributeValue
	err = entry.Value(func(val []byte) error {
		item, err = deserializeItem(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

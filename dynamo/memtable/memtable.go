// Package memtable is a BadgerDB-backed, in-process stand-in for the DynamoDB
// item APIs this tool uses. It implements ddb.AWSDynamoClient so stores and
// handlers can be tested without a real table. It only evaluates the narrow
// expression shapes this repository generates: attribute_not_exists
// conditions, single-attribute equality filters, and SET/ADD/REMOVE update
// expressions.
package memtable

import (
	"bytes"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/ddb"
	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

const keySeparator byte = 0x00

// Store is an in-memory DynamoDB-compatible store backed by BadgerDB.
type Store struct {
	db     *badger.DB
	tables map[string]table.TableDefinition
}

var _ ddb.AWSDynamoClient = &Store{}

// StoreOptions configures the BadgerDB store.
type StoreOptions struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
}

// New creates a new BadgerDB-backed store serving the given tables.
func New(opts StoreOptions, defs ...table.TableDefinition) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)

	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	tables := make(map[string]table.TableDefinition)
	for _, def := range defs {
		tables[def.Name] = def
	}

	return &Store{
		db:     db,
		tables: tables,
	}, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getTable(tableName *string) (table.TableDefinition, error) {
	if tableName == nil {
		return table.TableDefinition{}, fmt.Errorf("table name is required")
	}
	def, ok := s.tables[*tableName]
	if !ok {
		return table.TableDefinition{}, &types.ResourceNotFoundException{
			Message: ptrStr(fmt.Sprintf("Requested resource not found: Table: %s not found", *tableName)),
		}
	}
	return def, nil
}

// encodeKey builds the badger key: [table][sep][partition][sep][sort].
func encodeKey(def table.TableDefinition, pk table.PrimaryKey) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(def.Name)
	buf.WriteByte(keySeparator)
	part, err := keyValueString(pk.Values.PartitionKey)
	if err != nil {
		return nil, fmt.Errorf("encode partition key: %w", err)
	}
	buf.WriteString(part)
	if def.KeyDefinitions.SortKey.Name != "" {
		sort, err := keyValueString(pk.Values.SortKey)
		if err != nil {
			return nil, fmt.Errorf("encode sort key: %w", err)
		}
		buf.WriteByte(keySeparator)
		buf.WriteString(sort)
	}
	return buf.Bytes(), nil
}

func tablePrefix(def table.TableDefinition) []byte {
	return append([]byte(def.Name), keySeparator)
}

func keyValueString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("key value is nil")
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

func ptrStr(s string) *string {
	return &s
}

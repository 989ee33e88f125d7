package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/arvidh/dynotes/dynamo/ddb"
	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned by Get when no note has the given key.
	ErrNotFound = errors.New("note not found")
	// ErrSortKeyRequired is returned when the table has a sort key and no
	// user id was supplied to identify the item.
	ErrSortKeyRequired = errors.New("sort key value required")
	// ErrNoFields is returned by Update when neither title nor content is given.
	ErrNoFields = errors.New("at least one of title or content must be provided")
)

// DefaultKeyName is assumed when the table's key schema cannot be read and no
// key name was configured.
const DefaultKeyName = "id"

// Options configure a Store. Empty key names are detected from the table.
type Options struct {
	Table string
	// KeyName is the partition key attribute. Detection from the table's key
	// schema wins over this value; it is the fallback when detection fails.
	KeyName string
	// SortKey is the sort key attribute, for tables that have one. A value
	// given here wins over detection.
	SortKey string
}

// Store performs note CRUD against one table. It holds no mutable state and
// is safe for concurrent use.
type Store struct {
	io  ddb.IO
	def table.TableDefinition
}

// Open builds a Store for the configured table, detecting key attribute names
// from the table's key schema where they were not supplied. Detection failure
// is not fatal; the store falls back to the configured or default names and
// lets the first operation surface any real access problem.
func Open(ctx context.Context, client ddb.AWSDynamoClient, opts Options) *Store {
	io := ddb.New(client)

	keyName := opts.KeyName
	if keyName == "" {
		keyName = DefaultKeyName
	}
	def := table.TableDefinition{
		Name: opts.Table,
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: keyName, Kind: table.KeyKindS},
		},
	}
	if opts.SortKey != "" {
		def.KeyDefinitions.SortKey = table.KeyDef{Name: opts.SortKey, Kind: table.KeyKindS}
	}

	if ks, err := io.DescribeKeySchema(ctx, opts.Table); err == nil {
		def.KeyDefinitions.PartitionKey = ks.PartitionKey
		if opts.SortKey == "" {
			def.KeyDefinitions.SortKey = ks.SortKey
		}
	}

	return &Store{io: io, def: def}
}

// Table returns the table definition the store operates on, including the
// resolved key attribute names.
func (s *Store) Table() table.TableDefinition {
	return s.def
}

// Create writes a new note. When clientID is given it becomes the note id and
// the put is conditional on the id not existing, so replaying the same create
// returns the already-stored note instead of overwriting it.
func (s *Store) Create(ctx context.Context, title, content, userID, clientID string) (*Note, error) {
	id := clientID
	if id == "" {
		id = NewID()
	}
	ts := nowISO()

	keys := s.def.KeyDefinitions
	item := map[string]any{
		keys.PartitionKey.Name: id,
		"title":                title,
		"content":              content,
		"created_at":           ts,
		"updated_at":           ts,
	}
	if s.def.HasSortKey() {
		if userID == "" {
			return nil, fmt.Errorf("table requires sort key %q; provide a user id: %w", keys.SortKey.Name, ErrSortKeyRequired)
		}
		item[keys.SortKey.Name] = userID
	}

	put := ddb.NewPut(s.def, item)
	if clientID != "" {
		put = put.IfNotExists()
	}
	if err := s.io.PutItem(ctx, put); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Idempotent replay: the note already exists under this client id.
			return s.Get(ctx, id, userID)
		}
		return nil, err
	}

	return &Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// Get fetches a single note. Returns ErrNotFound when the item is absent.
func (s *Store) Get(ctx context.Context, id, userID string) (*Note, error) {
	pk, err := s.key(id, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.io.NewLookup().GetItem(ctx, ddb.GetItemRequest{
		Table: s.def,
		Key:   pk,
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return s.decode(item)
}

// List scans the whole table. On tables with a sort key, a non-empty userID
// narrows the scan to that user's notes via a filter expression. Items come
// back in scan order; callers that need a display order sort themselves.
func (s *Store) List(ctx context.Context, userID string) ([]*Note, error) {
	req := ddb.ScanRequest{Table: s.def}
	if userID != "" && s.def.HasSortKey() {
		req.Filter = expression2.Name(s.def.KeyDefinitions.SortKey.Name).Equal(expression2.Value(userID))
	}
	res, err := s.io.NewScan(req).ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Note, 0, len(res.Items))
	for _, item := range res.Items {
		n, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Update mutates title and/or content in place and always refreshes
// updated_at. Returns the note as stored after the write.
func (s *Store) Update(ctx context.Context, id string, title, content *string, userID string) (*Note, error) {
	if title == nil && content == nil {
		return nil, ErrNoFields
	}
	pk, err := s.key(id, userID)
	if err != nil {
		return nil, err
	}

	update := ddb.NewUpdate(s.def, pk).
		AddOp(ddb.SetFieldOp("updated_at", nowISO()))
	if title != nil {
		update = update.AddOp(ddb.SetFieldOp("title", *title))
	}
	if content != nil {
		update = update.AddOp(ddb.SetFieldOp("content", *content))
	}

	item, err := s.io.UpdateItem(ctx, update)
	if err != nil {
		return nil, err
	}
	return s.decode(item)
}

// Delete removes a note. Deleting an absent note succeeds, mirroring the
// remote service.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	pk, err := s.key(id, userID)
	if err != nil {
		return err
	}
	return s.io.DeleteItem(ctx, ddb.NewDelete(s.def, pk))
}

func (s *Store) key(id, userID string) (table.PrimaryKey, error) {
	pk := table.PrimaryKey{
		Definition: s.def.KeyDefinitions,
		Values:     table.PrimaryKeyValues{PartitionKey: id},
	}
	if s.def.HasSortKey() {
		if userID == "" {
			return table.PrimaryKey{}, fmt.Errorf("table has sort key %q; provide a user id to identify the item: %w", s.def.KeyDefinitions.SortKey.Name, ErrSortKeyRequired)
		}
		pk.Values.SortKey = userID
	}
	return pk, nil
}

func (s *Store) decode(item ddb.Item) (*Note, error) {
	var n Note
	if err := attributevalue.UnmarshalMap(item, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	if av, ok := item[s.def.KeyDefinitions.PartitionKey.Name].(*types.AttributeValueMemberS); ok {
		n.ID = av.Value
	}
	if s.def.HasSortKey() {
		if av, ok := item[s.def.KeyDefinitions.SortKey.Name].(*types.AttributeValueMemberS); ok {
			n.UserID = av.Value
		}
	}
	return &n, nil
}

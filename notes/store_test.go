package notes_test

import (
	"context"
	"testing"

	"github.com/arvidh/dynotes/dynamo/memtable"
	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/arvidh/dynotes/notes"
	"github.com/stretchr/testify/require"
)

var (
	simpleDef = table.TableDefinition{
		Name: "notes",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
		},
	}
	perUserDef = table.TableDefinition{
		Name: "notes-per-user",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: "user_id", Kind: table.KeyKindS},
		},
	}
)

func openStore(t *testing.T, def table.TableDefinition) *notes.Store {
	t.Helper()
	client, err := memtable.New(memtable.StoreOptions{InMemory: true}, def)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })
	return notes.Open(context.Background(), client, notes.Options{Table: def.Name})
}

func TestCreateAndGet(t *testing.T) {
	store := openStore(t, simpleDef)
	ctx := context.Background()

	created, err := store.Create(ctx, "groceries", "milk, eggs", "", "")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "groceries", created.Title)
	require.Equal(t, "milk, eggs", created.Content)
	require.NotEmpty(t, created.CreatedAt)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.Get(ctx, created.ID, "")
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	store := openStore(t, simpleDef)
	ctx := context.Background()

	a, err := store.Create(ctx, "one", "first", "", "")
	require.NoError(t, err)
	b, err := store.Create(ctx, "two", "second", "", "")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestCreateWithClientIDIsIdempotent(t *testing.T) {
	store := openStore(t, simpleDef)
	ctx := context.Background()

	first, err := store.Create(ctx, "draft", "v1", "", "tok-123")
	require.NoError(t, err)
	require.Equal(t, "tok-123", first.ID)

	// A replay with the same client id must not overwrite the stored note.
	replay, err := store.Create(ctx, "draft", "v2", "", "tok-123")
	require.NoError(t, err)
	require.Equal(t, first.ID, replay.ID)
	require.Equal(t, "v1", replay.Content)

	got, err := store.Get(ctx, "tok-123", "")
	require.NoError(t, err)
	require.Equal(t, "v1", got.Content)
}

func TestGetNotFound(t *testing.T) {
	store := openStore(t, simpleDef)

	_, err := store.Get(context.Background(), "no-such-note", "")
	require.ErrorIs(t, err, notes.ErrNotFound)
}

func TestSortKeyRequired(t *testing.T) {
	store := openStore(t, perUserDef)
	ctx := context.Background()

	_, err := store.Create(ctx, "t", "c", "", "")
	require.ErrorIs(t, err, notes.ErrSortKeyRequired)

	_, err = store.Get(ctx, "some-id", "")
	require.ErrorIs(t, err, notes.ErrSortKeyRequired)

	err = store.Delete(ctx, "some-id", "")
	require.ErrorIs(t, err, notes.ErrSortKeyRequired)
}

func TestListFiltersByUser(t *testing.T) {
	store := openStore(t, perUserDef)
	ctx := context.Background()

	_, err := store.Create(ctx, "a1", "alice first", "alice", "")
	require.NoError(t, err)
	_, err = store.Create(ctx, "a2", "alice second", "alice", "")
	require.NoError(t, err)
	_, err = store.Create(ctx, "b1", "bob first", "bob", "")
	require.NoError(t, err)

	mine, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, n := range mine {
		require.Equal(t, "alice", n.UserID)
	}

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListEmptyTable(t *testing.T) {
	store := openStore(t, simpleDef)

	got, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestUpdate(t *testing.T) {
	store := openStore(t, simpleDef)
	ctx := context.Background()

	created, err := store.Create(ctx, "original", "body", "", "")
	require.NoError(t, err)

	title := "renamed"
	updated, err := store.Update(ctx, created.ID, &title, nil, "")
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, "body", updated.Content)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotEmpty(t, updated.UpdatedAt)

	content := "rewritten"
	updated, err = store.Update(ctx, created.ID, nil, &content, "")
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, "rewritten", updated.Content)
}

func TestUpdateRequiresFields(t *testing.T) {
	store := openStore(t, simpleDef)

	_, err := store.Update(context.Background(), "some-id", nil, nil, "")
	require.ErrorIs(t, err, notes.ErrNoFields)
}

func TestDelete(t *testing.T) {
	store := openStore(t, simpleDef)
	ctx := context.Background()

	created, err := store.Create(ctx, "doomed", "bye", "", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID, ""))

	_, err = store.Get(ctx, created.ID, "")
	require.ErrorIs(t, err, notes.ErrNotFound)

	// Deleting an absent note is not an error.
	require.NoError(t, store.Delete(ctx, created.ID, ""))
}

func TestOpenDetectsKeySchema(t *testing.T) {
	def := table.TableDefinition{
		Name: "custom-keys",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "note_id", Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: "owner", Kind: table.KeyKindS},
		},
	}
	client, err := memtable.New(memtable.StoreOptions{InMemory: true}, def)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })
	ctx := context.Background()

	// Detection from the table's key schema wins over defaults.
	store := notes.Open(ctx, client, notes.Options{Table: def.Name})
	keys := store.Table().KeyDefinitions
	require.Equal(t, "note_id", keys.PartitionKey.Name)
	require.Equal(t, "owner", keys.SortKey.Name)

	created, err := store.Create(ctx, "t", "c", "alice", "")
	require.NoError(t, err)
	got, err := store.Get(ctx, created.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", got.UserID)
}

func TestOpenFallsBackWhenDescribeFails(t *testing.T) {
	// The table is not registered, so key detection fails and the configured
	// names are kept.
	client, err := memtable.New(memtable.StoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	store := notes.Open(context.Background(), client, notes.Options{
		Table:   "unregistered",
		SortKey: "tenant",
	})
	keys := store.Table().KeyDefinitions
	require.Equal(t, notes.DefaultKeyName, keys.PartitionKey.Name)
	require.Equal(t, "tenant", keys.SortKey.Name)
}

package webui_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/arvidh/dynotes/dynamo/memtable"
	"github.com/arvidh/dynotes/dynamo/table"
	"github.com/arvidh/dynotes/notes"
	"github.com/arvidh/dynotes/webui"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *notes.Store) {
	t.Helper()
	def := table.TableDefinition{
		Name: "notes",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "id", Kind: table.KeyKindS},
		},
	}
	client, err := memtable.New(memtable.StoreOptions{InMemory: true}, def)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	store := notes.Open(context.Background(), client, notes.Options{Table: def.Name})
	mux := http.NewServeMux()
	webui.NewHandler(store, "").RegisterRoutes(mux)
	return mux, store
}

func postForm(mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	mux, store := newTestMux(t)
	_, err := store.Create(context.Background(), "shopping", "milk", "", "")
	require.NoError(t, err)

	rec := get(mux, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "shopping")
}

func TestIndexUnknownPathIs404(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := get(mux, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddRedirectsToIndex(t *testing.T) {
	mux, store := newTestMux(t)

	rec := postForm(mux, "/add", url.Values{
		"title":   {"from the web"},
		"content": {"posted"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	all, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "from the web", all[0].Title)
}

func TestAddRequiresTitleAndContent(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := postForm(mux, "/add", url.Values{"title": {"only a title"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(mux, "/add", url.Values{"content": {"only content"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditForm(t *testing.T) {
	mux, store := newTestMux(t)
	n, err := store.Create(context.Background(), "editable", "old body", "", "")
	require.NoError(t, err)

	rec := get(mux, "/edit?id="+n.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "editable")
	require.Contains(t, rec.Body.String(), "old body")

	rec = get(mux, "/edit?id=missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(mux, "/edit")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditUpdatesNote(t *testing.T) {
	mux, store := newTestMux(t)
	ctx := context.Background()
	n, err := store.Create(ctx, "before", "body", "", "")
	require.NoError(t, err)

	rec := postForm(mux, "/edit", url.Values{
		"id":    {n.ID},
		"title": {"after"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	got, err := store.Get(ctx, n.ID, "")
	require.NoError(t, err)
	require.Equal(t, "after", got.Title)
	require.Equal(t, "body", got.Content)
}

func TestEditRequiresSomeField(t *testing.T) {
	mux, store := newTestMux(t)
	n, err := store.Create(context.Background(), "t", "c", "", "")
	require.NoError(t, err)

	rec := postForm(mux, "/edit", url.Values{"id": {n.ID}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRemovesNote(t *testing.T) {
	mux, store := newTestMux(t)
	ctx := context.Background()
	n, err := store.Create(ctx, "doomed", "c", "", "")
	require.NoError(t, err)

	rec := postForm(mux, "/delete", url.Values{"item_id": {n.ID}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	_, err = store.Get(ctx, n.ID, "")
	require.ErrorIs(t, err, notes.ErrNotFound)

	rec = postForm(mux, "/delete", url.Values{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

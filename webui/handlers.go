package webui

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/arvidh/dynotes/notes"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// Handler serves the HTML pages and form posts.
type Handler struct {
	store         *notes.Store
	defaultUserID string
}

func NewHandler(store *notes.Store, defaultUserID string) *Handler {
	return &Handler{
		store:         store,
		defaultUserID: defaultUserID,
	}
}

// RegisterRoutes registers all routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /add", h.add)
	mux.HandleFunc("GET /edit", h.editForm)
	mux.HandleFunc("POST /edit", h.edit)
	mux.HandleFunc("GET /delete", h.delete)
	mux.HandleFunc("POST /delete", h.delete)
}

type indexData struct {
	Notes         []*notes.Note
	KeyName       string
	DefaultUserID string
}

type editData struct {
	Note          *notes.Note
	KeyName       string
	DefaultUserID string
}

// index lists all notes, newest first.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context(), h.defaultUserID)
	if err != nil {
		h.storeError(w, "list failed", err)
		return
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	h.render(w, "notes.html", indexData{
		Notes:         items,
		KeyName:       h.store.Table().KeyDefinitions.PartitionKey.Name,
		DefaultUserID: h.defaultUserID,
	})
}

// add creates a note from the form and redirects back to the index.
func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" || content == "" {
		http.Error(w, "title and content required", http.StatusBadRequest)
		return
	}
	userID := h.userID(r)
	clientID := r.FormValue("client_id")

	if _, err := h.store.Create(r.Context(), title, content, userID, clientID); err != nil {
		h.storeError(w, "add failed", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// editForm renders the edit page for one note.
func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	note, err := h.store.Get(r.Context(), id, h.userID(r))
	if errors.Is(err, notes.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.storeError(w, "fetch failed", err)
		return
	}
	h.render(w, "edit.html", editData{
		Note:          note,
		KeyName:       h.store.Table().KeyDefinitions.PartitionKey.Name,
		DefaultUserID: h.defaultUserID,
	})
}

// edit applies the posted changes and redirects back to the index.
func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	var title, content *string
	if v := r.FormValue("title"); v != "" {
		title = &v
	}
	if v := r.FormValue("content"); v != "" {
		content = &v
	}
	if title == nil && content == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}
	if _, err := h.store.Update(r.Context(), id, title, content, h.userID(r)); err != nil {
		h.storeError(w, "update failed", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// delete removes a note and redirects back to the index. Accepts the id from
// the query string or the form body.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := h.store.Delete(r.Context(), id, h.userID(r)); err != nil {
		h.storeError(w, "delete failed", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", "template", name, "err", err)
	}
}

// storeError maps store errors onto HTTP statuses. Sort key misuse is the
// caller's mistake; everything else is surfaced as-is.
func (h *Handler) storeError(w http.ResponseWriter, prefix string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, notes.ErrSortKeyRequired) {
		status = http.StatusBadRequest
	}
	http.Error(w, prefix+": "+err.Error(), status)
}

func (h *Handler) userID(r *http.Request) string {
	if v := r.FormValue("user_id"); v != "" {
		return v
	}
	return h.defaultUserID
}

// itemID accepts both id and item_id, from query string or form body.
func itemID(r *http.Request) string {
	if v := r.FormValue("id"); v != "" {
		return v
	}
	return r.FormValue("item_id")
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/remedy/internal/storage"
)

// recordRoutes mounts getAll, getById, create, update and delete for one
// collection. notFound is the message returned when an id has no record.
func recordRoutes[T storage.Record[T]](c *storage.Collection[T], notFound string) http.Handler {
	r := chi.NewRouter()
	h := recordHandlers[T]{c: c, notFound: notFound}

	r.Get("/getAll", h.getAll)
	r.Get("/getById/{id}", h.getByID)
	r.Post("/create", h.create)
	r.Put("/update/{id}", h.update)
	r.Put("/update", h.update)
	r.Delete("/delete/{id}", h.delete)

	return r
}

type recordHandlers[T storage.Record[T]] struct {
	c        *storage.Collection[T]
	notFound string
}

func (h recordHandlers[T]) getAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.c.GetAll()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeEnvelope(w, http.StatusOK, items)
}

func (h recordHandlers[T]) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}
	item, err := h.c.GetByID(id)
	h.respond(w, http.StatusOK, item, err)
}

func (h recordHandlers[T]) create(w http.ResponseWriter, r *http.Request) {
	var in T
	if err := decodeBody(w, r, &in); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	created, err := h.c.Create(in)
	h.respond(w, http.StatusCreated, created, err)
}

// update takes the id from the path, or from the body's "id" field when the
// path has none.
func (h recordHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	var in T
	if err := json.Unmarshal(raw, &in); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	id, err := pathID(r)
	if errors.Is(err, errNoID) {
		id, err = in.RecordID(), nil
		if id == 0 {
			err = errNoID
		}
	}
	if err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}

	updated, err := h.c.Update(id, in)
	h.respond(w, http.StatusOK, updated, err)
}

func (h recordHandlers[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}
	deleted, err := h.c.Delete(id)
	h.respond(w, http.StatusOK, deleted, err)
}

func (h recordHandlers[T]) respond(w http.ResponseWriter, code int, v T, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "%s", h.notFound)
	case err != nil:
		httpError(w, http.StatusInternalServerError, "%v", err)
	default:
		writeEnvelope(w, code, v)
	}
}

var errNoID = errors.New("id is required")

func pathID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return 0, errNoID
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

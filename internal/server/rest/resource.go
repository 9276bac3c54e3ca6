package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/server/services"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/gorilla/mux"
)

// resource serves one entity kind under /{kind}.
type resource[D models.Entity[D]] struct {
	server *RESTServer
	svc    *services.CrudService[D]
	kind   string
}

func newResource[D models.Entity[D]](s *RESTServer, svc *services.CrudService[D]) *resource[D] {
	return &resource[D]{server: s, svc: svc, kind: models.KindOf[D]().String()}
}

func (h *resource[D]) Register(router *mux.Router) {
	collection := "/" + h.kind
	entry := collection + "/{id:[0-9]+}"

	router.Path(collection).Methods(http.MethodHead).HandlerFunc(h.Head)
	router.Path(collection).Methods(http.MethodGet).HandlerFunc(h.List)
	router.Path(collection).Methods(http.MethodPost).HandlerFunc(h.Create)
	router.Path(entry).Methods(http.MethodGet).HandlerFunc(h.Read)
	router.Path(entry).Methods(http.MethodPut).HandlerFunc(h.Update)
	router.Path(entry).Methods(http.MethodDelete).HandlerFunc(h.Delete)
}

func (h *resource[D]) Head(w http.ResponseWriter, r *http.Request) {
	lm, err := h.svc.LastModified(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	setLastModified(w, lm)
	w.WriteHeader(http.StatusOK)
}

func (h *resource[D]) List(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Limit *uint32 `json:"limit"`
	}
	if err := h.server.decodeQuery(r, &query); err != nil {
		writeError(w, err)
		return
	}

	entries, lm, err := h.svc.List(r.Context(), userFrom(r.Context()), query.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.WithID[D]{}
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusOK, entries)
}

func (h *resource[D]) Create(w http.ResponseWriter, r *http.Request) {
	var data D
	if err := h.server.decodeBody(w, r, &data); err != nil {
		writeError(w, err)
		return
	}

	id, lm, err := h.svc.Create(r.Context(), userFrom(r.Context()), data)
	if err != nil {
		writeError(w, err)
		return
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusCreated, id)
}

func (h *resource[D]) Read(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, lm, err := h.svc.Read(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusOK, e)
}

func (h *resource[D]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := unmodifiedSince(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var data D
	if err := h.server.decodeBody(w, r, &data); err != nil {
		writeError(w, err)
		return
	}

	e, lm, err := h.svc.Update(r.Context(), userFrom(r.Context()), id, data, token)
	if err != nil {
		writeError(w, err)
		return
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusOK, e)
}

func (h *resource[D]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := unmodifiedSince(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, lm, err := h.svc.Delete(r.Context(), userFrom(r.Context()), id, token)
	if err != nil {
		writeError(w, err)
		return
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusOK, e)
}

func (s *RESTServer) searchOccurrences(w http.ResponseWriter, r *http.Request) {
	var query store.Search
	if err := s.decodeQuery(r, &query); err != nil {
		writeError(w, err)
		return
	}

	entries, lm, err := s.services.Occurrences.Search(r.Context(), userFrom(r.Context()), query)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.WithID[models.Occurrence]{}
	}
	setLastModified(w, lm)
	writeJSON(w, http.StatusOK, entries)
}

func (s *RESTServer) decodeQuery(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := s.decoder.Decode(dst, r.Form); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *RESTServer) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := r.Body
	if s.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (models.ID, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", errBadRequest)
	}
	return models.ID(id), nil
}

// unmodifiedSince reads the client token. A missing header yields nil,
// which the store treats as out of sync.
func unmodifiedSince(r *http.Request) (*uint64, error) {
	v := r.Header.Get(common.UnmodifiedSinceHeaderName)
	if v == "" {
		return nil, nil
	}
	token, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", errBadRequest, common.UnmodifiedSinceHeaderName)
	}
	return &token, nil
}

func setLastModified(w http.ResponseWriter, lm time.Time) {
	w.Header().Set(common.LastModifiedHeaderName, strconv.FormatUint(store.Millis(lm), 10))
}

package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/getmockd/fieldmap/pkg/httputil"
)

var errEmptyBody = errors.New("request body is empty")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, HealthResponse{Status: "ok", Service: ServiceName})
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (*recordSet, bool) {
	c, ok := s.collections[r.PathValue("collection")]
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Collection not found"})
		return nil, false
	}
	return c, true
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	httputil.WriteOK(w, c.list())
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, found := c.get(r.PathValue("id"))
	if !found {
		httputil.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: c.notFound})
		return
	}
	httputil.WriteOK(w, rec)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	body, err := decodeObject(w, r)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	rec := c.create(body, s.timestamp())
	s.log.Debug("record created", "collection", r.PathValue("collection"), "id", rec["id"])
	httputil.WriteCreated(w, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	body, err := decodeObject(w, r)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	rec, found := c.update(r.PathValue("id"), body, s.timestamp())
	if !found {
		httputil.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: c.notFound})
		return
	}
	httputil.WriteOK(w, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	if !c.remove(r.PathValue("id")) {
		httputil.WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: c.notFound})
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) objectSet(w http.ResponseWriter, r *http.Request) (*objectSet, bool) {
	object := r.PathValue("object")
	set, ok := s.objects[object]
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "Object type not supported",
			Message: fmt.Sprintf("unknown object type %q", object),
		})
		return nil, false
	}
	return set, true
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	set, ok := s.objectSet(w, r)
	if !ok {
		return
	}
	httputil.WriteOK(w, ListResponse{Results: set.list()})
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	set, ok := s.objectSet(w, r)
	if !ok {
		return
	}
	var req BatchCreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Inputs == nil {
		writeInvalid(w, errors.New("inputs is required"))
		return
	}

	started := s.timestamp()
	results := set.createBatch(req.Inputs, started)
	s.log.Debug("batch created", "object", r.PathValue("object"), "count", len(results))
	httputil.WriteCreated(w, BatchResponse{
		Status:      "COMPLETE",
		Results:     results,
		StartedAt:   started,
		CompletedAt: s.timestamp(),
	})
}

// decodeObject reads a single JSON object from the request body.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, err
	}
	if body == nil {
		return nil, errEmptyBody
	}
	return body, nil
}

func writeInvalid(w http.ResponseWriter, err error) {
	httputil.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_input",
		Message: err.Error(),
	})
}

package mockapi

import (
	"maps"
	"sync"

	"github.com/getmockd/fieldmap/internal/id"
)

// CRMObject is a record held by the target CRM API.
type CRMObject struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Archived   bool           `json:"archived"`
}

// BatchInput is one entry of a batch create request.
type BatchInput struct {
	Properties map[string]any `json:"properties"`
}

// BatchCreateRequest is the body of POST /crm/v3/objects/{object}/batch/create.
type BatchCreateRequest struct {
	Inputs []BatchInput `json:"inputs"`
}

// BatchResponse is returned by a batch create.
type BatchResponse struct {
	Status      string      `json:"status"`
	Results     []CRMObject `json:"results"`
	StartedAt   string      `json:"startedAt"`
	CompletedAt string      `json:"completedAt"`
}

// ListResponse is returned by GET /crm/v3/objects/{object}.
type ListResponse struct {
	Results []CRMObject `json:"results"`
}

// crmObjectTypes maps the supported object types to their first generated id.
var crmObjectTypes = map[string]int64{
	"contacts":  10000,
	"deals":     20000,
	"companies": 30000,
}

type objectSet struct {
	mu      sync.RWMutex
	objects []CRMObject
	seq     *id.Sequence
}

func newObjectSets() map[string]*objectSet {
	out := make(map[string]*objectSet, len(crmObjectTypes))
	for name, start := range crmObjectTypes {
		out[name] = &objectSet{seq: id.NewSequence("", start)}
	}
	return out
}

func (s *objectSet) list() []CRMObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CRMObject, 0, len(s.objects))
	for _, o := range s.objects {
		o.Properties = maps.Clone(o.Properties)
		out = append(out, o)
	}
	return out
}

// createBatch stores every input as is and returns the created objects in
// input order. Property names are kept exactly as sent.
func (s *objectSet) createBatch(inputs []BatchInput, now string) []CRMObject {
	created := make([]CRMObject, 0, len(inputs))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range inputs {
		props := maps.Clone(in.Properties)
		if props == nil {
			props = map[string]any{}
		}
		obj := CRMObject{
			ID:         s.seq.Next(),
			Properties: props,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.objects = append(s.objects, obj)
		obj.Properties = maps.Clone(props)
		created = append(created, obj)
	}
	return created
}

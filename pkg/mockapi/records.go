package mockapi

import (
	"maps"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/fieldmap/internal/id"
	"github.com/getmockd/fieldmap/pkg/catalog"
	"github.com/getmockd/fieldmap/pkg/mapping"
)

// Collection describes one source record collection served under /<Name>.
type Collection struct {
	// Name is the URL segment, e.g. "contacts".
	Name string
	// Entity is the entity type the records belong to.
	Entity mapping.EntityType
	// IDPrefix is prepended to generated ids, e.g. "proj_".
	IDPrefix string
	// Seed holds the records present at startup.
	Seed []map[string]any
}

// DefaultCollections returns the source collections seeded with the built-in
// sample records.
func DefaultCollections() []Collection {
	prefixes := map[mapping.EntityType]string{
		mapping.EntityContact:  "",
		mapping.EntityProject:  "proj_",
		mapping.EntityContract: "ctr_",
		mapping.EntityDeal:     "deal_",
		mapping.EntityCompany:  "comp_",
	}
	out := make([]Collection, 0, len(prefixes))
	for _, e := range mapping.BuiltinEntityTypes() {
		out = append(out, Collection{
			Name:     e.Plural(),
			Entity:   e,
			IDPrefix: prefixes[e],
			Seed:     catalog.SampleRecords(e),
		})
	}
	return out
}

// recordSet is an ordered, id-addressed list of records.
type recordSet struct {
	mu       sync.RWMutex
	records  []map[string]any
	seq      *id.Sequence
	notFound string
}

func newRecordSet(c Collection) *recordSet {
	rs := &recordSet{
		seq:      id.NewSequence(c.IDPrefix, 1),
		notFound: singularLabel(c.Entity) + " not found",
	}
	for _, r := range c.Seed {
		rec := maps.Clone(r)
		if v, ok := rec["id"].(string); ok {
			rs.seq.Observe(v)
		} else {
			rec["id"] = rs.seq.Next()
		}
		rs.records = append(rs.records, rec)
	}
	return rs
}

func (s *recordSet) list() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, maps.Clone(r))
	}
	return out
}

func (s *recordSet) indexOf(recordID string) int {
	for i, r := range s.records {
		if v, _ := r["id"].(string); v == recordID {
			return i
		}
	}
	return -1
}

func (s *recordSet) get(recordID string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(recordID)
	if i < 0 {
		return nil, false
	}
	return maps.Clone(s.records[i]), true
}

// create assigns a fresh id and both timestamps, ignoring any id in rec.
func (s *recordSet) create(rec map[string]any, now string) map[string]any {
	rec = maps.Clone(rec)
	rec["id"] = s.seq.Next()
	rec["created_at"] = now
	rec["updated_at"] = now

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return maps.Clone(rec)
}

// update merges patch over the stored record. The id is never changed.
func (s *recordSet) update(recordID string, patch map[string]any, now string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(recordID)
	if i < 0 {
		return nil, false
	}
	merged := maps.Clone(s.records[i])
	maps.Copy(merged, patch)
	merged["id"] = recordID
	merged["updated_at"] = now
	s.records[i] = merged
	return maps.Clone(merged), true
}

func (s *recordSet) remove(recordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(recordID)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

func singularLabel(e mapping.EntityType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(e), "_", " "))
}

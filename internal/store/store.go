// Package store holds the client-visible mirror of cases, offices, clusters,
// and statistics for the lifetime of the process. The server is the sole
// durable owner; nothing here persists or synchronizes across processes.
package store

import (
	"sync"

	"github.com/nagacity/mynaga-console/internal/api"
)

// Filters is the active case-list filter criteria. Empty strings mean "not
// filtering on this field".
type Filters struct {
	Status   string
	Category string
	Barangay string
	Search   string
}

// FilterPatch updates a subset of the filter fields. Nil fields are left as
// they are; filter updates merge, they never replace wholesale.
type FilterPatch struct {
	Status   *string
	Category *string
	Barangay *string
	Search   *string
}

// Store is the single in-memory state container shared by all views. It is
// constructed explicitly and passed by reference; mutations go through the
// methods below and fan out to subscribers.
type Store struct {
	mu       sync.RWMutex
	cases    []api.Case
	offices  []api.Office
	clusters []api.Cluster
	stats    *api.Stats
	filters  Filters

	notifier notifier
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Cases returns a copy of the current case collection, newest first.
func (s *Store) Cases() []api.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// CaseByID returns the case with the given identity, if present.
func (s *Store) CaseByID(id int64) (api.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.ID == id {
			return c, true
		}
	}
	return api.Case{}, false
}

// SetCases replaces the whole case collection, preserving the given order.
func (s *Store) SetCases(cases []api.Case) {
	s.mu.Lock()
	s.cases = make([]api.Case, len(cases))
	copy(s.cases, cases)
	s.mu.Unlock()
	s.notifier.publish(TopicCases)
}

// SetCasesWithFilters replaces the case collection and the filter state in
// one step, for loads that were issued under specific criteria.
func (s *Store) SetCasesWithFilters(cases []api.Case, filters Filters) {
	s.mu.Lock()
	s.cases = make([]api.Case, len(cases))
	copy(s.cases, cases)
	s.filters = filters
	s.mu.Unlock()
	s.notifier.publish(TopicCases)
	s.notifier.publish(TopicFilters)
}

// AddCase prepends a newly created case so the collection stays newest-first.
func (s *Store) AddCase(c api.Case) {
	s.mu.Lock()
	s.cases = append([]api.Case{c}, s.cases...)
	s.mu.Unlock()
	s.notifier.publish(TopicCases)
}

// UpdateCase merges the patch into the case with the given id. Fields the
// patch does not mention are retained; every other case is left untouched.
// The relative order of the collection does not change.
func (s *Store) UpdateCase(id int64, patch api.CasePatch) {
	s.mu.Lock()
	changed := false
	for i := range s.cases {
		if s.cases[i].ID != id {
			continue
		}
		applyPatch(&s.cases[i], patch)
		changed = true
		break
	}
	s.mu.Unlock()
	if changed {
		s.notifier.publish(TopicCases)
	}
}

func applyPatch(c *api.Case, p api.CasePatch) {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Cluster != nil {
		c.Cluster = *p.Cluster
	}
	if p.Barangay != nil {
		c.Barangay = *p.Barangay
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.SenderLocation != nil {
		c.SenderLocation = *p.SenderLocation
	}
	if p.Office != nil {
		c.Office = *p.Office
	}
	if p.MyNagaAppStatus != nil {
		c.MyNagaAppStatus = *p.MyNagaAppStatus
	}
	if p.UpdatesSentToUser != nil {
		c.UpdatesSentToUser = *p.UpdatesSentToUser
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.ReportedBy != nil {
		c.ReportedBy = *p.ReportedBy
	}
	if p.ContactNumber != nil {
		c.ContactNumber = *p.ContactNumber
	}
	if p.RefinedCategory != nil {
		c.RefinedCategory = *p.RefinedCategory
	}
}

// DeleteCase removes the case with the given id. Unknown ids are a no-op.
func (s *Store) DeleteCase(id int64) {
	s.mu.Lock()
	changed := false
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notifier.publish(TopicCases)
	}
}

// Offices returns a copy of the office catalog.
func (s *Store) Offices() []api.Office {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Office, len(s.offices))
	copy(out, s.offices)
	return out
}

// SetOffices replaces the office catalog.
func (s *Store) SetOffices(offices []api.Office) {
	s.mu.Lock()
	s.offices = make([]api.Office, len(offices))
	copy(s.offices, offices)
	s.mu.Unlock()
	s.notifier.publish(TopicOffices)
}

// AddOffice appends a newly created office.
func (s *Store) AddOffice(o api.Office) {
	s.mu.Lock()
	s.offices = append(s.offices, o)
	s.mu.Unlock()
	s.notifier.publish(TopicOffices)
}

// Clusters returns a copy of the cluster collection.
func (s *Store) Clusters() []api.Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Cluster, len(s.clusters))
	copy(out, s.clusters)
	return out
}

// SetClusters replaces the cluster collection.
func (s *Store) SetClusters(clusters []api.Cluster) {
	s.mu.Lock()
	s.clusters = make([]api.Cluster, len(clusters))
	copy(s.clusters, clusters)
	s.mu.Unlock()
	s.notifier.publish(TopicClusters)
}

// AddCluster appends a newly created cluster.
func (s *Store) AddCluster(c api.Cluster) {
	s.mu.Lock()
	s.clusters = append(s.clusters, c)
	s.mu.Unlock()
	s.notifier.publish(TopicClusters)
}

// UpdateCluster replaces the cluster with the matching id.
func (s *Store) UpdateCluster(id int64, updated api.Cluster) {
	s.mu.Lock()
	changed := false
	for i := range s.clusters {
		if s.clusters[i].ID == id {
			updated.ID = id
			s.clusters[i] = updated
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notifier.publish(TopicClusters)
	}
}

// Stats returns the last fetched dashboard aggregate, or nil before the
// first fetch.
func (s *Store) Stats() *api.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil
	}
	cp := *s.stats
	return &cp
}

// SetStats replaces the dashboard aggregate.
func (s *Store) SetStats(stats *api.Stats) {
	s.mu.Lock()
	if stats == nil {
		s.stats = nil
	} else {
		cp := *stats
		s.stats = &cp
	}
	s.mu.Unlock()
	s.notifier.publish(TopicStats)
}

// Filters returns the active filter criteria.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters merges the patch into the active criteria.
func (s *Store) SetFilters(patch FilterPatch) {
	s.mu.Lock()
	if patch.Status != nil {
		s.filters.Status = *patch.Status
	}
	if patch.Category != nil {
		s.filters.Category = *patch.Category
	}
	if patch.Barangay != nil {
		s.filters.Barangay = *patch.Barangay
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	s.mu.Unlock()
	s.notifier.publish(TopicFilters)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nagacity/mynaga-console/internal/api"
	"github.com/nagacity/mynaga-console/internal/store"
)

// fakeBackend is an in-memory stand-in for the dashboard API, close enough
// for end-to-end client/store workflows.
type fakeBackend struct {
	mu      sync.Mutex
	nextID  int64
	cases   map[int64]api.Case
	offices []api.Office
}

func newFakeBackend() *fakeBackend {
	codes := []string{
		"PSO", "GSO", "CEO", "SWMO", "CENRO", "CVO", "CSWD", "NCGH",
		"CHO", "CPRFMO", "CTO", "MEPO", "HSDO", "BCS", "CPDO", "SP-SEC",
		"CEPPIO", "MNWD", "CASURECO", "DOLE", "PSA", "DTI",
	}
	offices := make([]api.Office, 0, len(codes))
	for i, code := range codes {
		offices = append(offices, api.Office{
			ID:       int64(i + 1),
			Name:     code + " Office",
			Code:     code,
			IsActive: true,
		})
	}
	return &fakeBackend{nextID: 1, cases: make(map[int64]api.Case), offices: offices}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/offices", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(b.offices)
	})

	mux.HandleFunc("/clusters", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]api.Cluster{{ID: 1, Name: "Infrastructure"}})
	})

	mux.HandleFunc("/cases", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			out := make([]api.Case, 0, len(b.cases))
			status := r.URL.Query().Get("status")
			for _, c := range b.cases {
				if status != "" && c.Status != status {
					continue
				}
				out = append(out, c)
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var c api.Case
			json.NewDecoder(r.Body).Decode(&c)
			c.ID = b.nextID
			b.nextID++
			b.cases[c.ID] = c
			json.NewEncoder(w).Encode(c)
		}
	})

	mux.HandleFunc("/cases/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/cases/"), 10, 64)
		if err != nil {
			http.Error(w, `{"detail": "invalid id"}`, http.StatusBadRequest)
			return
		}
		c, ok := b.cases[id]
		if !ok {
			http.Error(w, `{"detail": "Case not found"}`, http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(c)
		case http.MethodPut:
			var patch api.CasePatch
			json.NewDecoder(r.Body).Decode(&patch)
			if patch.Status != nil {
				c.Status = *patch.Status
			}
			if patch.Office != nil {
				c.Office = *patch.Office
			}
			if patch.Description != nil {
				c.Description = *patch.Description
			}
			b.cases[id] = c
			json.NewEncoder(w).Encode(c)
		case http.MethodDelete:
			delete(b.cases, id)
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		stats := api.Stats{TotalCases: len(b.cases), TotalOffices: len(b.offices), TotalClusters: 1}
		for _, c := range b.cases {
			switch c.Status {
			case api.StatusOpen:
				stats.OpenCases++
			case api.StatusResolved:
				stats.ResolvedCases++
			case api.StatusForRerouting:
				stats.ReroutingCases++
			}
		}
		json.NewEncoder(w).Encode(stats)
	})

	mux.HandleFunc("/mynaga-stats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		counts := map[string]int{"total": len(b.cases)}
		for _, c := range b.cases {
			if c.MyNagaAppStatus != "" {
				counts[c.MyNagaAppStatus]++
			}
		}
		json.NewEncoder(w).Encode(counts)
	})

	return mux
}

// TestCaseLifecycleWorkflow drives the full client+store path: catalog load,
// case creation, partial update, stats, and deletion against a fake backend.
func TestCaseLifecycleWorkflow(t *testing.T) {
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := api.New(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	st := store.New()

	t.Run("CatalogLoad", func(t *testing.T) {
		offices, err := client.ListOffices(ctx)
		if err != nil {
			t.Fatalf("Failed to list offices: %v", err)
		}
		if len(offices) != 22 {
			t.Fatalf("Expected 22 offices, got %d", len(offices))
		}
		st.SetOffices(offices)

		clusters, err := client.ListClusters(ctx)
		if err != nil {
			t.Fatalf("Failed to list clusters: %v", err)
		}
		st.SetClusters(clusters)

		found := false
		for _, o := range st.Offices() {
			if o.Code == "SWMO" {
				found = true
			}
		}
		if !found {
			t.Error("Office catalog missing SWMO")
		}
	})

	var createdID int64

	t.Run("CreateCase", func(t *testing.T) {
		created, err := client.CreateCase(ctx, api.Case{
			ControlNo:       "2024-1001",
			Category:        "Flooding",
			Barangay:        "Triangulo",
			Description:     "Knee-deep flooding along the service road",
			Status:          api.StatusOpen,
			MyNagaAppStatus: "New",
		})
		if err != nil {
			t.Fatalf("Failed to create case: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("Server did not assign an identity")
		}
		createdID = created.ID
		st.AddCase(*created)

		if got := st.Cases(); len(got) != 1 || got[0].ControlNo != "2024-1001" {
			t.Fatalf("Store did not absorb created case: %+v", got)
		}
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		status := api.StatusResolved
		office := "SWMO Office"
		patch := api.CasePatch{Status: &status, Office: &office}

		if _, err := client.UpdateCase(ctx, createdID, patch); err != nil {
			t.Fatalf("Failed to update case: %v", err)
		}
		st.UpdateCase(createdID, patch)

		c, ok := st.CaseByID(createdID)
		if !ok {
			t.Fatal("Case disappeared from store")
		}
		if c.Status != api.StatusResolved || c.Office != "SWMO Office" {
			t.Errorf("Patch not applied: %+v", c)
		}
		if c.Description != "Knee-deep flooding along the service road" {
			t.Error("Unmentioned field was not retained")
		}

		fresh, err := client.GetCase(ctx, createdID)
		if err != nil {
			t.Fatalf("Failed to refetch case: %v", err)
		}
		if fresh.Status != api.StatusResolved {
			t.Errorf("Server status = %q, want resolved", fresh.Status)
		}
	})

	t.Run("StatsReflectChanges", func(t *testing.T) {
		stats, err := client.Stats(ctx)
		if err != nil {
			t.Fatalf("Failed to fetch stats: %v", err)
		}
		if stats.TotalCases != 1 || stats.ResolvedCases != 1 {
			t.Errorf("Unexpected stats: %+v", stats)
		}
		st.SetStats(stats)

		breakdown, err := client.MyNagaStats(ctx)
		if err != nil {
			t.Fatalf("Failed to fetch breakdown: %v", err)
		}
		if breakdown.Total != 1 || breakdown.Count("New") != 1 {
			t.Errorf("Unexpected breakdown: %+v", breakdown)
		}
	})

	t.Run("DeleteAfterConfirm", func(t *testing.T) {
		if err := client.DeleteCase(ctx, createdID); err != nil {
			t.Fatalf("Failed to delete case: %v", err)
		}
		// store removal happens only after the API confirms
		st.DeleteCase(createdID)

		if len(st.Cases()) != 0 {
			t.Error("Case still present in store after delete")
		}
		if _, err := client.GetCase(ctx, createdID); err == nil {
			t.Error("Deleted case still fetchable")
		}
	})

	t.Run("FilteredListOmitsAbsentParams", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := client.CreateCase(ctx, api.Case{
				ControlNo: fmt.Sprintf("2024-20%02d", i),
				Category:  "Garbage",
				Status:    api.StatusOpen,
			})
			if err != nil {
				t.Fatalf("Failed to seed case: %v", err)
			}
		}
		open, err := client.ListCases(ctx, api.ListCasesOptions{Status: api.StatusOpen})
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(open) != 3 {
			t.Errorf("Expected 3 open cases, got %d", len(open))
		}
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return client, srv
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestListCasesOmitsEmptyFilters(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Case{})
	}))

	_, err := client.ListCases(context.Background(), ListCasesOptions{Status: StatusOpen})
	require.NoError(t, err)

	q := mustParseQuery(t, gotQuery)
	assert.Equal(t, StatusOpen, q.Get("status"))
	assert.Equal(t, "0", q.Get("skip"))
	assert.Equal(t, "10000", q.Get("limit"))
	_, hasCategory := q["category"]
	_, hasBarangay := q["barangay"]
	_, hasSearch := q["search"]
	assert.False(t, hasCategory)
	assert.False(t, hasBarangay)
	assert.False(t, hasSearch)
}

func TestErrorDecodesDetailEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Case not found"}`))
	}))

	_, err := client.GetCase(context.Background(), 42)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Case not found", apiErr.Detail)
}

func TestErrorFallsBackToBodyText(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))

	_, err := client.Stats(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream exploded", apiErr.Detail)
}

func TestFailedRequestIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCreateCaseValidatesRequiredFields(t *testing.T) {
	client, err := New(Options{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.CreateCase(context.Background(), Case{Category: "Roads"})
	assert.ErrorContains(t, err, "control_no")

	_, err = client.CreateCase(context.Background(), Case{ControlNo: "2024-0001"})
	assert.ErrorContains(t, err, "category")
}

func TestUpdateCaseSendsOnlyPatchedFields(t *testing.T) {
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Case{ID: 7})
	}))

	status := StatusResolved
	_, err := client.UpdateCase(context.Background(), 7, CasePatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"status": StatusResolved}, gotBody)
}

func TestAssignOfficeAndClusterHitNestedRoutes(t *testing.T) {
	var gotPaths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotPaths = append(gotPaths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))

	require.NoError(t, client.AssignOffice(context.Background(), 7, 3))
	require.NoError(t, client.AssignCluster(context.Background(), 7, 5))
	assert.Equal(t, []string{"/cases/7/offices/3", "/cases/7/clusters/5"}, gotPaths)
}

func TestAddTagPostsNameAndDeleteTagUsesTagIdentity(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		}
		json.NewEncoder(w).Encode(Tag{ID: 9, TagName: "flooding"})
	}))

	tag, err := client.AddTag(context.Background(), 7, "flooding")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/cases/7/tags", gotPath)
	assert.Equal(t, "flooding", gotBody["tag_name"])
	assert.Equal(t, int64(9), tag.ID)

	require.NoError(t, client.DeleteTag(context.Background(), tag.ID))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/tags/9", gotPath)
}

func TestCatalogWritesUseResourceRoutes(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = map[string]interface{}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 4, "name": gotBody["name"]})
	}))

	office, err := client.CreateOffice(context.Background(), Office{Name: "City Veterinary Office", Code: "CVO"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/offices", gotPath)
	assert.Equal(t, "CVO", gotBody["code"])
	assert.Equal(t, int64(4), office.ID)

	cluster, err := client.CreateCluster(context.Background(), Cluster{Name: "Drainage", Barangay: "Triangulo"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/clusters", gotPath)
	assert.Equal(t, "Triangulo", gotBody["barangay"])
	assert.Equal(t, "Drainage", cluster.Name)

	_, err = client.UpdateCluster(context.Background(), cluster.ID, Cluster{Name: "Drainage & Flood Control"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/clusters/4", gotPath)
	assert.Equal(t, "Drainage & Flood Control", gotBody["name"])
}

func TestTestMyNagaConnectionSendsTokenAsQueryParam(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mynaga/test-connection", r.URL.Path)
		assert.Equal(t, "secret-token", r.URL.Query().Get("auth_token"))
		json.NewEncoder(w).Encode(TestResult{Success: true})
	}))

	res, err := client.TestMyNagaConnection(context.Background(), "secret-token")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestImportExcelRejectsNonExcelFiles(t *testing.T) {
	client, err := New(Options{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.ImportExcel(context.Background(), "cases.csv", strings.NewReader("x"))
	assert.ErrorContains(t, err, "Excel")
}

func TestImportExcelUploadsMultipart(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cases.xlsx", hdr.Filename)
		json.NewEncoder(w).Encode(ImportResult{Success: true, ImportedCount: 12})
	}))

	res, err := client.ImportExcel(context.Background(), "/tmp/cases.xlsx", strings.NewReader("fake workbook"))
	require.NoError(t, err)
	assert.Equal(t, 12, res.ImportedCount)
}

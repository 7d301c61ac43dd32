package importer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagacity/mynaga-console/internal/api"
)

func newTestWatcher(t *testing.T, dir string, handler http.Handler) *Watcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	return New(client, Options{
		Dir:    dir,
		Logger: log.New(io.Discard, "", 0),
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestOneShotUploadsOnlyWorkbooks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cases.xlsx", "workbook-a")
	writeFile(t, dir, "legacy.xls", "workbook-b")
	writeFile(t, dir, "notes.txt", "not a workbook")
	writeFile(t, dir, "data.csv", "also not")

	var uploads atomic.Int32
	var names []string
	w := newTestWatcher(t, dir, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		names = append(names, hdr.Filename)
		uploads.Add(1)
		json.NewEncoder(rw).Encode(api.ImportResult{Success: true, ImportedCount: 3})
	}))

	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, int32(2), uploads.Load())
	assert.ElementsMatch(t, []string{"cases.xlsx", "legacy.xls"}, names)

	imported, errCount := w.Counts()
	assert.Equal(t, 2, imported)
	assert.Zero(t, errCount)
}

func TestUnchangedFileIsNotReuploaded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cases.xlsx", "workbook")

	var uploads atomic.Int32
	w := newTestWatcher(t, dir, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		json.NewEncoder(rw).Encode(api.ImportResult{Success: true, ImportedCount: 1})
	}))

	require.NoError(t, w.scanOnce(context.Background()))
	require.NoError(t, w.scanOnce(context.Background()))

	assert.Equal(t, int32(1), uploads.Load())
}

func TestFailedImportCountsErrorAndRetries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cases.xlsx", "workbook")

	var uploads atomic.Int32
	w := newTestWatcher(t, dir, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte(`{"detail": "Missing required columns"}`))
	}))

	require.NoError(t, w.scanOnce(context.Background()))
	_, errCount := w.Counts()
	assert.Equal(t, 1, errCount)

	// the failed file is not remembered, so the next pass tries again
	require.NoError(t, w.scanOnce(context.Background()))
	assert.Equal(t, int32(2), uploads.Load())
}

func TestMissingDirectoryFails(t *testing.T) {
	w := newTestWatcher(t, "/nonexistent/drop-dir", http.NotFoundHandler())
	assert.Error(t, w.Run(context.Background()))
}

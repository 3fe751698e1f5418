package router_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"docuvault/config"
	"docuvault/internal/document/model"
	"docuvault/internal/document/repository"
	"docuvault/router"
	"docuvault/socket"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewDocumentRepository(db, 5*time.Second)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	hub := socket.NewHub()
	go hub.Run()

	cfg := &config.Config{QueryTimeout: 5 * time.Second}
	server := httptest.NewServer(router.Setup(db, hub, cfg))
	t.Cleanup(server.Close)
	return server
}

func postDoc(t *testing.T, server *httptest.Server, store, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/"+store, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDocumentLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Create two documents in one store.
	resp := postDoc(t, server, "bills", `{"id":"1","amount":10}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ok model.SuccessResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.True(t, ok.Success)

	time.Sleep(10 * time.Millisecond)
	resp = postDoc(t, server, "bills", `{"id":"2","amount":20}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Read them back, most recent first.
	getResp, err := http.Get(server.URL + "/api/bills")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	var docs []map[string]any
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "2", docs[0]["id"])
	assert.Equal(t, "1", docs[1]["id"])

	// Delete one; deleting again stays a success, never a 404.
	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/bills/1", nil)
		require.NoError(t, err)
		delResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		delResp.Body.Close()
		assert.Equal(t, http.StatusOK, delResp.StatusCode)
	}

	getResp, err = http.Get(server.URL + "/api/bills")
	require.NoError(t, err)
	defer getResp.Body.Close()
	docs = nil
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0]["id"])
}

func TestUpsertMissingIDOverHTTP(t *testing.T) {
	server := newTestServer(t)

	resp := postDoc(t, server, "bills", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmptyStoreReturnsEmptyArray(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/nothing-here")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var docs []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&docs))
	assert.Empty(t, docs)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health model.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
}

func TestExportImportOverHTTP(t *testing.T) {
	source := newTestServer(t)

	postDoc(t, source, "bills", `{"id":"1","amount":10}`)
	postDoc(t, source, "bills", `{"id":"2","amount":20}`)
	postDoc(t, source, "members", `{"id":"m1","name":"ana"}`)

	resp, err := http.Get(source.URL + "/api/system/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap model.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 3, snap.RecordCount)
	assert.Len(t, snap.Data["bills"], 2)
	assert.Len(t, snap.Data["members"], 1)

	// Replay the snapshot into a fresh deployment.
	target := newTestServer(t)
	body, err := json.Marshal(snap)
	require.NoError(t, err)

	importResp, err := http.Post(target.URL+"/api/system/import", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer importResp.Body.Close()
	assert.Equal(t, http.StatusOK, importResp.StatusCode)

	var imported model.ImportResponse
	require.NoError(t, json.NewDecoder(importResp.Body).Decode(&imported))
	assert.True(t, imported.Success)
	assert.Equal(t, 3, imported.Imported)

	billsResp, err := http.Get(target.URL + "/api/bills")
	require.NoError(t, err)
	defer billsResp.Body.Close()

	var docs []map[string]any
	require.NoError(t, json.NewDecoder(billsResp.Body).Decode(&docs))
	assert.Len(t, docs, 2)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/bills", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	postDoc(t, server, "bills", `{"id":"1"}`)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package sink

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embertail-io/embertail/internal/models"
)

func testEntries() []models.Entry {
	return []models.Entry{
		{Time: time.Date(2023, 11, 13, 10, 0, 0, 0, time.UTC), Level: "ERROR", Source: "error-blade1-20231113.log", Message: "boom"},
		{Time: time.Date(2023, 11, 13, 10, 0, 1, 0, time.UTC), Level: "INFO", Source: "warn-blade2-20231113.log", Message: "fine"},
	}
}

func TestForwardShipsNDJSON(t *testing.T) {
	var records []forwardRecord
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			var rec forwardRecord
			require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
			records = append(records, rec)
		}
	}))
	defer srv.Close()

	f := NewForward(models.ForwardConfig{URL: srv.URL, AuthToken: "sinktok"})
	require.NoError(t, f.Emit(t.Context(), "logs.example.com", testEntries(), true, false))

	require.Len(t, records, 2)
	assert.Equal(t, "logs.example.com", records[0].Host)
	assert.Equal(t, "boom", records[0].Entry.Message)
	assert.Equal(t, "fine", records[1].Entry.Message)

	assert.Equal(t, "application/x-ndjson", headers.Get("Content-Type"))
	assert.Equal(t, "Bearer sinktok", headers.Get("Authorization"))
	assert.NotEmpty(t, headers.Get("X-Batch-ID"))
	assert.Equal(t, "1", headers.Get("X-First-Batch"))
	assert.Empty(t, headers.Get("X-Debug"))
}

func TestForwardGzipsBatches(t *testing.T) {
	var records []forwardRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		sc := bufio.NewScanner(gz)
		for sc.Scan() {
			var rec forwardRecord
			require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
			records = append(records, rec)
		}
	}))
	defer srv.Close()

	f := NewForward(models.ForwardConfig{URL: srv.URL, Gzip: true})
	require.NoError(t, f.Emit(t.Context(), "logs.example.com", testEntries(), false, true))
	require.Len(t, records, 2)
}

func TestForwardSkipsEmptyBatches(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	f := NewForward(models.ForwardConfig{URL: srv.URL})
	require.NoError(t, f.Emit(t.Context(), "logs.example.com", nil, true, false))
	assert.False(t, called)
}

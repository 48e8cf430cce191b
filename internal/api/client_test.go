package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1", 5*time.Second)
}

func TestWriterList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/writers", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))

		_ = json.NewEncoder(w).Encode([]domain.Writer{
			{ID: 1, Name: "Jane Austen", BirthYear: 1775},
		})
	})

	writers, err := NewWriterService(client).List(context.Background(), 1000, 0)
	require.NoError(t, err)
	require.Len(t, writers, 1)
	assert.Equal(t, "Jane Austen", writers[0].Name)
}

func TestWriterSearchSendsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aus", r.URL.Query().Get("search"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]domain.Writer{})
	})

	_, err := NewWriterService(client).Search(context.Background(), "aus", 20, 0)
	require.NoError(t, err)
}

func TestWriterCreateDecodesAssignedID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var params domain.WriterParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "Mark Twain", params.Name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Writer{ID: 42, Name: params.Name, BirthYear: params.BirthYear})
	})

	writer, err := NewWriterService(client).Create(context.Background(), domain.WriterParams{
		Name:      "Mark Twain",
		BirthYear: 1835,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), writer.ID)
}

func TestErrorBodyIsExtracted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "writer has works"}`))
	})

	err := NewWriterService(client).Delete(context.Background(), 1)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "writer has works", apiErr.Message)
}

func TestUnparseableErrorBodyFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := NewWorkService(client).Get(context.Background(), 99)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	// Closed server: the request never completes.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, time.Second)

	_, err := NewWriterService(client).List(context.Background(), 10, 0)
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestOpinionCompositeKeyRoutes(t *testing.T) {
	var gotPath, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(domain.Opinion{WriterID: 3, WorkID: 9, Quote: "q", Source: "s"})
	})
	svc := NewOpinionService(client)

	_, err := svc.Get(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/opinions/writer/3/work/9", gotPath)

	require.NoError(t, svc.Delete(context.Background(), 3, 9))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/opinions/writer/3/work/9", gotPath)
}

func TestWorksByAuthorRoute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/works/author/7", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]domain.Work{{ID: 1, Title: "Emma", AuthorID: 7}})
	})

	works, err := NewWorkService(client).ByAuthor(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, int64(7), works[0].AuthorID)
}

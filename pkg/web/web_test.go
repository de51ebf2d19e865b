package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func Test_RespondJSON(t *testing.T) {
	testCases := []struct {
		name         string
		status       int
		payload      any
		expectedBody string
		expectedType string
	}{
		{name: "object", status: http.StatusOK, payload: map[string]int{"a": 1}, expectedBody: `{"a":1}`, expectedType: "application/json"},
		{name: "nil payload", status: http.StatusNoContent, payload: nil, expectedBody: ""},
		{name: "unencodable", status: http.StatusOK, payload: func() {}, expectedBody: "Internal Server Error\n", expectedType: "text/plain; charset=utf-8"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondJSON(rr, discard(), tc.status, tc.payload)
			if tc.name == "unencodable" {
				assert.Equal(t, http.StatusInternalServerError, rr.Code)
			} else {
				assert.Equal(t, tc.status, rr.Code)
			}
			assert.Equal(t, tc.expectedBody, rr.Body.String())
			assert.Equal(t, tc.expectedType, rr.Header().Get("Content-Type"))
		})
	}
}

func Test_RespondValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondValidation(rr, discard(), map[string]string{"ciudad": "bad"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"validation_errors":{"ciudad":"bad"}}`, rr.Body.String())
}

func Test_DecodeJSON(t *testing.T) {
	var dst struct {
		Nombre string `json:"nombre"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nombre":"Leche"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "Leche", dst.Nombre)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.ErrorIs(t, DecodeJSON(req, &dst), ErrEmptyBody)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nombre":`))
	assert.Error(t, DecodeJSON(req, &dst))
}

func Test_RequestIDInjector(t *testing.T) {
	var seen string
	h := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestID(r.Context())
	}))

	t.Run("propagates header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", rr.Header().Get(HeaderRequestID))
	})

	t.Run("generates id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	})
}

func Test_Recoverer_And_StructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	r := chi.NewRouter()
	r.Use(StructuredLogger(log), Recoverer(log))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var completed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &completed))
	assert.Equal(t, "Request completed", completed["msg"])
	assert.EqualValues(t, http.StatusInternalServerError, completed["status"])
}

func Test_PathParam(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/productos/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathParam(w, r, discard(), "id")
		require.True(t, ok)
		_, _ = w.Write([]byte(id))
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/productos/42", nil))
	assert.Equal(t, "42", rr.Body.String())
}

package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/catalog/internal/backend/config"
	"github.com/abgdnv/catalog/internal/backend/store"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SetupHttpHandler(t *testing.T) {
	// given
	deps := SetupDependencies(store.NewInMemoryStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(SetupHttpHandler(deps))
	defer srv.Close()

	// when
	resp, err := http.Post(srv.URL+"/tiendas", "application/json", strings.NewReader(`{"nombre":"Centro","ciudad":"BOG","direccion":"Calle 1"}`))

	// then
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(web.HeaderRequestID), "request id middleware is installed")
}

func Test_SetupHttpServer(t *testing.T) {
	deps := SetupDependencies(store.NewInMemoryStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{}
	cfg.HTTPServer.Port = 8081
	cfg.HTTPServer.MaxHeaderBytes = 4096

	srv := SetupHttpServer(deps, cfg)

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 4096, srv.MaxHeaderBytes)
	assert.NotNil(t, srv.Handler)
}

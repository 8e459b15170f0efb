package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/server"
	"github.com/headline-goat/clip-goat/internal/store"
	"github.com/headline-goat/clip-goat/internal/testutil"
)

func setupTestServer(t *testing.T, opts ...experiment.Option) (*server.Server, *experiment.Engine, *store.SQLiteStore) {
	t.Helper()
	s := testutil.SetupTestStore(t)
	e := testutil.SetupTestEngine(t, s, opts...)
	return server.New(e, s, nil, 0, ""), e, s
}

// do sends an authenticated request.
func do(t *testing.T, srv *server.Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return send(t, srv, method, target, body, "Bearer "+srv.Token())
}

func send(t *testing.T, srv *server.Server, method, target string, body any, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createExperiment(t *testing.T, e *experiment.Engine) *experiment.Experiment {
	t.Helper()
	exp, err := e.Create(t.Context(), experiment.Definition{
		Name: "hero title",
		Variants: []experiment.VariantDefinition{
			{Name: "A", Type: experiment.TypeTitle, Value: "Ship faster"},
			{Name: "B", Type: experiment.TypeTitle, Value: "Build better"},
		},
	})
	require.NoError(t, err)
	return exp
}

func TestHealth(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	createExperiment(t, e)

	w := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	health := decode[server.HealthResponse](t, w)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, 1, health.ExperimentsCount)
	require.GreaterOrEqual(t, health.UptimeSeconds, int64(0))
	require.Positive(t, health.DBSizeBytes)
}

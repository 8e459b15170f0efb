package server_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/server"
)

type listResponse struct {
	Experiments []experiment.Experiment `json:"experiments"`
}

type assignResult struct {
	Variant            experiment.Variant `json:"variant"`
	Final              bool               `json:"final"`
	ImpressionRecorded bool               `json:"impression_recorded"`
}

type eventResult struct {
	Recorded bool   `json:"recorded"`
	Outcome  string `json:"outcome"`
}

func TestCreateExperiment(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/experiments", map[string]any{
		"name": "hook test",
		"variants": []map[string]any{
			{"name": "A", "type": "title", "value": "one"},
			{"name": "B", "type": "title", "value": "two"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	exp := decode[experiment.Experiment](t, w)
	assert.NotEmpty(t, exp.ID)
	assert.Equal(t, experiment.StatusActive, exp.Status)
	assert.Equal(t, []float64{50, 50}, exp.TrafficSplit)
	require.Len(t, exp.Variants, 2)
	assert.Equal(t, "two", exp.Variants[1].Value)
}

func TestCreateExperiment_Rejected(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/experiments", map[string]any{
		"name":     "lonely",
		"variants": []map[string]any{{"name": "A"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/experiments", map[string]any{"variants": []map[string]any{{"name": "A"}, {"name": "B"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/api/experiments", nil)
	assert.Empty(t, decode[listResponse](t, w).Experiments)
}

func TestListExperiments_StatusFilter(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	first := createExperiment(t, e)
	createExperiment(t, e)
	require.True(t, e.Stop(t.Context(), first.ID))

	w := do(t, srv, http.MethodGet, "/api/experiments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[listResponse](t, w).Experiments, 2)

	w = do(t, srv, http.MethodGet, "/api/experiments?status=active", nil)
	active := decode[listResponse](t, w).Experiments
	require.Len(t, active, 1)
	assert.NotEqual(t, first.ID, active[0].ID)

	w = do(t, srv, http.MethodGet, "/api/experiments?status=weird", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetExperiment_NonFiniteNumbersAreNull(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	exp := createExperiment(t, e)

	// no engagement anywhere: percent difference is 0/0
	w := do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"percent_diff":null`)
	assert.Contains(t, w.Body.String(), `"confidence":null`)

	rs := decode[server.ResultsResponse](t, w)
	assert.Nil(t, rs.Analysis.PercentDiff)
	assert.False(t, rs.Analysis.HasWinner)
	assert.Len(t, rs.Variants, 2)

	w = do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[server.ReportResponse](t, w)
	assert.Nil(t, report.Confidence)
	assert.Equal(t, "hero title", report.TestName)
}

func TestGetExperiment_NotFound(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	for _, path := range []string{"/api/experiments/nope", "/api/experiments/nope/report"} {
		w := do(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestEvents(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	exp := createExperiment(t, e)
	a := exp.Variants[0].ID
	base := "/api/experiments/" + exp.ID + "/events"

	cases := []struct {
		body    map[string]any
		outcome experiment.Outcome
	}{
		{map[string]any{"variant_id": a, "type": "impression"}, experiment.Recorded},
		{map[string]any{"variant_id": a, "type": "view"}, experiment.Recorded},
		{map[string]any{"variant_id": a, "type": "like"}, experiment.Recorded},
		{map[string]any{"variant_id": a, "type": "share", "amount": 3}, experiment.Recorded},
		{map[string]any{"variant_id": a, "type": "comment", "amount": 0}, experiment.Invalid},
		{map[string]any{"variant_id": "B", "type": "view"}, experiment.VariantNotFound},
	}
	for _, tc := range cases {
		w := do(t, srv, http.MethodPost, base, tc.body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[eventResult](t, w)
		assert.Equal(t, string(tc.outcome), got.Outcome, "%v", tc.body)
		assert.Equal(t, tc.outcome == experiment.Recorded, got.Recorded)
	}

	w := do(t, srv, http.MethodPost, "/api/experiments/missing/events", map[string]any{"variant_id": a, "type": "view"})
	assert.Equal(t, string(experiment.ExperimentNotFound), decode[eventResult](t, w).Outcome)

	w = do(t, srv, http.MethodPost, base, map[string]any{"variant_id": a, "type": "dislike"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, _ := e.Get(exp.ID)
	r := got.Variants[0].Results
	assert.Equal(t, 1, r.Impressions)
	assert.Equal(t, 1, r.Views)
	assert.Equal(t, 1, r.Likes)
	assert.Equal(t, 3, r.Shares)
	assert.Equal(t, 0, r.Comments)
}

func TestAssign(t *testing.T) {
	srv, e, _ := setupTestServer(t, experiment.WithRandom(func() float64 { return 0.9 }))
	exp := createExperiment(t, e)

	w := do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/assign?impression=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[assignResult](t, w)
	assert.Equal(t, "B", resp.Variant.Name)
	assert.True(t, resp.ImpressionRecorded)
	assert.False(t, resp.Final)

	got, _ := e.Get(exp.ID)
	assert.Equal(t, 1, got.Variants[1].Results.Impressions)

	w = do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/assign", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got, _ = e.Get(exp.ID)
	assert.Equal(t, 1, got.Variants[1].Results.Impressions)

	require.True(t, e.Stop(t.Context(), exp.ID))
	w = do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/assign", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodGet, "/api/experiments/missing/assign", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopAndDelete(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	exp := createExperiment(t, e)

	w := do(t, srv, http.MethodPost, "/api/experiments/"+exp.ID+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, "/api/experiments/"+exp.ID+"/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, "/api/experiments/missing/stop", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for range 2 {
		w = do(t, srv, http.MethodDelete, "/api/experiments/"+exp.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	w = do(t, srv, http.MethodDelete, "/api/experiments/never-existed", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, ok := e.Get(exp.ID)
	assert.False(t, ok)
}

func TestContentAndAutoCreate(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/content", map[string]any{
		"title":    "My cat learned to open doors",
		"hashtags": "#cats #pets",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c := decode[experiment.Content](t, w)
	require.NotEmpty(t, c.ID)

	w = do(t, srv, http.MethodGet, "/api/content/"+c.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "My cat learned to open doors", decode[experiment.Content](t, w).Title)

	w = do(t, srv, http.MethodGet, "/api/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), c.ID)

	// default kind is title
	w = do(t, srv, http.MethodPost, "/api/content/"+c.ID+"/experiments", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	exp := decode[experiment.Experiment](t, w)
	assert.Equal(t, `Auto Test: title for "My cat learned to open doors"`, exp.Name)
	assert.Len(t, exp.Variants, 4)
	assert.Equal(t, c.ID, exp.ContentID)

	w = do(t, srv, http.MethodPost, "/api/content/"+c.ID+"/experiments", map[string]any{"kind": "time"})
	require.Equal(t, http.StatusCreated, w.Code)

	// no thumbnail to vary
	w = do(t, srv, http.MethodPost, "/api/content/"+c.ID+"/experiments", map[string]any{"kind": "thumbnail"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodPost, "/api/content/"+c.ID+"/experiments", map[string]any{"kind": "audio"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/content/missing/experiments", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/api/content/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPost, "/api/content", map[string]any{"title": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvents_CompleteExperimentThroughAPI(t *testing.T) {
	srv, e, _ := setupTestServer(t, experiment.WithMinSampleSize(2))
	exp := createExperiment(t, e)
	a, b := exp.Variants[0].ID, exp.Variants[1].ID
	base := "/api/experiments/" + exp.ID + "/events"

	do(t, srv, http.MethodPost, base, map[string]any{"variant_id": a, "type": "like", "amount": 4})
	do(t, srv, http.MethodPost, base, map[string]any{"variant_id": b, "type": "like", "amount": 1})
	for range 2 {
		do(t, srv, http.MethodPost, base, map[string]any{"variant_id": a, "type": "view"})
		do(t, srv, http.MethodPost, base, map[string]any{"variant_id": b, "type": "view"})
	}
	w := do(t, srv, http.MethodPost, base, map[string]any{"variant_id": a, "type": "like"})
	require.True(t, decode[eventResult](t, w).Recorded)

	w = do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/report", nil)
	report := decode[server.ReportResponse](t, w)
	assert.Equal(t, experiment.StatusCompleted, report.Status)
	assert.Equal(t, "A", report.WinnerName)
	require.NotNil(t, report.Confidence)
	assert.Equal(t, 95.0, *report.Confidence)

	// closed experiments stop counting
	w = do(t, srv, http.MethodPost, base, map[string]any{"variant_id": b, "type": "view"})
	assert.Equal(t, string(experiment.Closed), decode[eventResult](t, w).Outcome)

	// and always serve their winner
	w = do(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/assign", nil)
	assert.Contains(t, w.Body.String(), `"final":true`)
	assert.Contains(t, w.Body.String(), a)
}

func TestAPI_MutationsRequireToken(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	exp := createExperiment(t, e)
	created := map[string]any{
		"name":     "hook test",
		"variants": []map[string]any{{"name": "A"}, {"name": "B"}},
	}

	mutations := []struct {
		method, target string
		body           any
	}{
		{http.MethodPost, "/api/experiments", created},
		{http.MethodDelete, "/api/experiments/" + exp.ID, nil},
		{http.MethodPost, "/api/experiments/" + exp.ID + "/stop", nil},
		{http.MethodPost, "/api/content", map[string]any{"title": "Door cat"}},
		{http.MethodPost, "/api/content/any/experiments", nil},
	}
	for _, m := range mutations {
		w := send(t, srv, m.method, m.target, m.body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", m.method, m.target)

		w = send(t, srv, m.method, m.target, m.body, "Bearer wrong")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", m.method, m.target)
	}

	got, ok := e.Get(exp.ID)
	require.True(t, ok, "unauthenticated delete must not remove the experiment")
	assert.Equal(t, experiment.StatusActive, got.Status)
	assert.Len(t, e.List(), 1)

	w := send(t, srv, http.MethodPost, "/api/experiments", created, "Bearer "+srv.Token())
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(t, srv, http.MethodPost, "/api/experiments/"+exp.ID+"/stop", nil, "Bearer "+srv.Token())
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(t, srv, http.MethodDelete, "/api/experiments/"+exp.ID, nil, "Bearer "+srv.Token())
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAPI_PlayerRoutesArePublic(t *testing.T) {
	srv, e, _ := setupTestServer(t)
	exp := createExperiment(t, e)

	w := send(t, srv, http.MethodGet, "/api/experiments/"+exp.ID+"/assign", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(t, srv, http.MethodPost, "/api/experiments/"+exp.ID+"/events",
		map[string]any{"variant_id": exp.Variants[0].ID, "type": "view"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[eventResult](t, w).Recorded)

	w = send(t, srv, http.MethodGet, "/api/experiments", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/render"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func exampleDataset() domain.Dataset {
	return domain.Dataset{
		{Name: "zero", Forks: 0, Stars: 5, Issues: 1, PullRequests: 0, Contributors: 1, Language: "Go"},
		{Name: "hundred", Forks: 100, Stars: 50, Issues: 4, PullRequests: 2, Contributors: 3, Language: "Python"},
		{Name: "four-hundred", Forks: 400, Stars: 60, Issues: 2, PullRequests: 6, Contributors: 8, Language: "Go"},
	}
}

func newTestServer(ds domain.Dataset) *Server {
	logger := log.New(io.Discard, "", 0)
	reporter := usecase.NewReporter(ds, render.NewPNGRenderer(480, 320), logger, usecase.DefaultOptions())
	return New(reporter, logger)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(exampleDataset())

	testCases := []struct {
		name         string
		target       string
		expectedCode int
		contains     []string
		notContains  []string
	}{
		{
			name:         "default section and category",
			target:       "/",
			expectedCode: http.StatusOK,
			contains:     []string{"1. Repository Activity Analysis", `id="top-stars"`, `<option value="stars" selected>`, "data:image/png;base64,"},
		},
		{
			name:         "activity with category",
			target:       "/?section=activity&category=language",
			expectedCode: http.StatusOK,
			contains:     []string{`id="top-language"`, `<option value="language" selected>`},
		},
		{
			name:         "contributor section",
			target:       "/?section=contributors",
			expectedCode: http.StatusOK,
			contains:     []string{"2. Contributor Analysis", "Total contributors: 12", `id="contribution-types"`},
			notContains:  []string{"<select"},
		},
		{
			name:         "feature section",
			target:       "/?section=features",
			expectedCode: http.StatusOK,
			contains:     []string{`id="language-distribution"`, `id="forks-vs-stars"`, `id="correlation-matrix"`},
		},
		{name: "unknown section", target: "/?section=overview", expectedCode: http.StatusBadRequest},
		{name: "unknown category", target: "/?category=watchers", expectedCode: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, s, tc.target)
			assert.Equal(t, tc.expectedCode, w.Code)
			for _, want := range tc.contains {
				assert.Contains(t, w.Body.String(), want)
			}
			for _, unwanted := range tc.notContains {
				assert.NotContains(t, w.Body.String(), unwanted)
			}
		})
	}
}

func TestServer_IndexDegradedFit(t *testing.T) {
	ds := domain.Dataset{
		{Name: "a", Stars: 3, Issues: 1, PullRequests: 2, Contributors: 1, Language: "Go"},
		{Name: "b", Stars: 9, Issues: 4, PullRequests: 1, Contributors: 5, Language: "C"},
	}
	w := get(t, newTestServer(ds), "/?section=features")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="degraded"`)
	assert.Contains(t, w.Body.String(), "forks do not vary")
	assert.Contains(t, w.Body.String(), `id="correlation-matrix"`)
}

func TestServer_Chart(t *testing.T) {
	s := newTestServer(exampleDataset())

	for _, target := range []string{"/charts/top-forks.png", "/charts/correlation-matrix", "/charts/contribution-types.png"} {
		t.Run(target, func(t *testing.T) {
			w := get(t, s, target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			cfg, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
			require.NoError(t, err)
			assert.Positive(t, cfg.Width)
		})
	}

	t.Run("unknown chart", func(t *testing.T) {
		w := get(t, s, "/charts/bogus.png")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("fit failure", func(t *testing.T) {
		flat := newTestServer(domain.Dataset{{Name: "a", Stars: 1}, {Name: "b", Stars: 2}})
		w := get(t, flat, "/charts/forks-vs-stars.png")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "curve fit failed")
	})
}

func TestServer_API(t *testing.T) {
	s := newTestServer(exampleDataset())

	t.Run("top repositories", func(t *testing.T) {
		w := get(t, s, "/api/top/forks")
		require.Equal(t, http.StatusOK, w.Code)
		var sel usecase.Selection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
		assert.Equal(t, domain.FieldForks, sel.Category)
		require.Len(t, sel.Records, 3)
		assert.Equal(t, "four-hundred", sel.Records[2].Name)
	})

	t.Run("top languages", func(t *testing.T) {
		w := get(t, s, "/api/top/language")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"category":"language","languages":[{"value":"Python","count":1},{"value":"Go","count":2}]}`, w.Body.String())
	})

	t.Run("unknown category", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, s, "/api/top/watchers").Code)
	})

	t.Run("correlation with undefined cells", func(t *testing.T) {
		flat := newTestServer(domain.Dataset{{Name: "a", Stars: 1, Forks: 2, Contributors: 3}, {Name: "b", Stars: 2, Forks: 5, Contributors: 3}})
		w := get(t, flat, "/api/correlation")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Fields []string     `json:"fields"`
			Cells  [][]*float64 `json:"cells"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []string{"stars", "forks", "issues", "pull_requests", "contributors"}, body.Fields)
		require.NotNil(t, body.Cells[0][1])
		assert.InDelta(t, 1.0, *body.Cells[0][1], 1e-9)
		assert.Nil(t, body.Cells[0][4])
		require.NotNil(t, body.Cells[4][4])
	})

	t.Run("health", func(t *testing.T) {
		w := get(t, s, "/healthz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","records":3}`, w.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		w := get(t, s, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ghreport_http_requests_total")
	})
}

func TestServer_Run(t *testing.T) {
	s := newTestServer(exampleDataset())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

package dataforseo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, wantPath, body string, gotTask *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, wantPath, r.URL.Path)

		login, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "login", login)
		assert.Equal(t, "secret", password)

		if gotTask != nil {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var tasks []map[string]any
			require.NoError(t, json.Unmarshal(raw, &tasks))
			require.Len(t, tasks, 1)
			*gotTask = tasks[0]
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(url string) *Client {
	return New(Config{Login: "login", Password: "secret", BaseURL: url})
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(Config{Login: "login"})
	assert.False(t, c.Configured())

	_, err := c.KeywordIdeas(context.Background(), "seo", Locale{}, 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestKeywordIdeas(t *testing.T) {
	var task map[string]any
	srv := newTestServer(t, keywordIdeasPath, `{
		"status_code": 20000,
		"status_message": "Ok.",
		"tasks": [{
			"status_code": 20000,
			"status_message": "Ok.",
			"result": [{"items": [
				{"keyword": "seo audit", "keyword_info": {"search_volume": 1900, "cpc": 12.5, "competition": 0.42}, "keyword_properties": {"keyword_difficulty": 37}},
				{"keyword": "seo audit tool", "keyword_info": {"search_volume": null, "cpc": null, "competition": null}, "keyword_properties": {}}
			]}]
		}]
	}`, &task)

	ideas, err := testClient(srv.URL).KeywordIdeas(context.Background(), "seo audit", Locale{Location: "Canada"}, 25)
	require.NoError(t, err)
	require.Len(t, ideas, 2)

	assert.Equal(t, "seo audit", ideas[0].Keyword)
	assert.Equal(t, int64(1900), *ideas[0].SearchVolume)
	assert.Equal(t, 12.5, *ideas[0].CPC)
	assert.InDelta(t, 42.0, *ideas[0].CompetitionIndex, 0.0001)
	assert.Equal(t, 37.0, *ideas[0].DifficultyScore)

	assert.Nil(t, ideas[1].SearchVolume)
	assert.Nil(t, ideas[1].CompetitionIndex)

	assert.Equal(t, []any{"seo audit"}, task["keywords"])
	assert.Equal(t, "Canada", task["location_name"])
	assert.Equal(t, defaultLanguage, task["language_name"])
	assert.Equal(t, float64(25), task["limit"])
}

func TestKeywordMetrics(t *testing.T) {
	srv := newTestServer(t, searchVolumePath, `{
		"status_code": 20000,
		"tasks": [{
			"status_code": 20000,
			"result": [{
				"keyword": "plumber near me",
				"search_volume": 5000,
				"cpc": 8.1,
				"competition_index": 88,
				"monthly_searches": [
					{"year": 2024, "month": 3, "search_volume": 300},
					{"year": 2024, "month": 2, "search_volume": 200},
					{"year": 2024, "month": 1, "search_volume": null}
				]
			}]
		}]
	}`, nil)

	metrics, err := testClient(srv.URL).KeywordMetrics(context.Background(), []string{"plumber near me"}, Locale{})
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 88.0, *metrics[0].Competition)
	assert.Equal(t, []int64{0, 200, 300}, metrics[0].Trend)
}

func TestBusinessListings(t *testing.T) {
	srv := newTestServer(t, mapsSearchPath, `{
		"status_code": 20000,
		"tasks": [{
			"status_code": 20000,
			"result": [{"items": [
				{"type": "maps_search", "title": "Acme Plumbing", "category": "Plumber", "phone": "+1 555", "domain": "acme.example", "rating": {"value": 4.6, "votes_count": 120}},
				{"type": "maps_paid_item", "title": "Ad"},
				{"type": "maps_search", "title": "Best Pipes", "url": "https://pipes.example/"},
				{"type": "maps_search", "title": "Third"}
			]}]
		}]
	}`, nil)

	listings, err := testClient(srv.URL).BusinessListings(context.Background(), "plumber", "Austin,Texas,United States", 2)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Acme Plumbing", listings[0].Title)
	assert.Equal(t, "https://acme.example", listings[0].Website)
	assert.Equal(t, 4.6, *listings[0].Rating)
	assert.Equal(t, int64(120), *listings[0].Reviews)
	assert.Equal(t, "https://pipes.example/", listings[1].Website)
	assert.Nil(t, listings[1].Rating)
}

func TestClient_EnvelopeErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"top level", `{"status_code": 40100, "status_message": "You are not authorized"}`, 40100},
		{"task level", `{"status_code": 20000, "tasks": [{"status_code": 40501, "status_message": "Invalid Field"}]}`, 40501},
		{"no tasks", `{"status_code": 20000, "tasks": []}`, 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, keywordIdeasPath, tt.body, nil)
			_, err := testClient(srv.URL).KeywordIdeas(context.Background(), "x", Locale{}, 0)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.wantCode, apiErr.StatusCode)
		})
	}
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).KeywordMetrics(context.Background(), []string{"x"}, Locale{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "gateway down", apiErr.Message)
}

func TestClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient("http://127.0.0.1:1").KeywordIdeas(ctx, "x", Locale{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencydesk/internal/leads"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
)

type stubListings struct {
	configured bool
	listings   []dataforseo.Listing
	limit      int
}

func (s *stubListings) Configured() bool { return s.configured }

func (s *stubListings) BusinessListings(_ context.Context, _, _ string, limit int) ([]dataforseo.Listing, error) {
	s.limit = limit
	return s.listings, nil
}

func newLeadApp(t *testing.T, source leads.ListingSource, router *llm.Router) *fiber.App {
	t.Helper()
	h := NewLeadHandler(leads.NewService(source, router, testCatalogue(t), zap.NewNop()), zap.NewNop())
	app := fiber.New()
	app.Post("/api/lead-generator", h.Generate)
	app.Post("/api/lead-enrich", h.Enrich)
	return app
}

func TestLeadGenerator(t *testing.T) {
	source := &stubListings{configured: true, listings: []dataforseo.Listing{
		{Title: "Bright Smiles Dental", Website: "https://brightsmiles.example"},
		{Title: "bright smiles dental"},
		{Title: "Harbor Dentistry"},
	}}
	router := testRouter(`{"leads":[{"name":"Harbor Dentistry","score":91,"reason":"No booking page"},{"name":"Bright Smiles Dental","score":40,"reason":"Strong site"}]}`)
	app := newLeadApp(t, source, router)

	status, data := do(t, app, http.MethodPost, "/api/lead-generator",
		`{"query":"dentist","location":"Austin, TX","limit":500,"score":true}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, maxLeadLimit, source.limit)

	resp := decodeBody[models.LeadsResponse](t, data)
	assert.True(t, resp.Scored)
	require.Len(t, resp.Leads, 2)
	assert.Equal(t, "Harbor Dentistry", resp.Leads[0].Name)
	require.NotNil(t, resp.Leads[0].Score)
	assert.InDelta(t, 91, *resp.Leads[0].Score, 0.001)
}

func TestLeadGenerator_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		source *stubListings
		body   string
		status int
	}{
		{"missing query", &stubListings{configured: true}, `{"location":"Austin"}`, http.StatusBadRequest},
		{"malformed body", &stubListings{configured: true}, `{"query":`, http.StatusBadRequest},
		{"no credentials", &stubListings{}, `{"query":"dentist"}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLeadApp(t, tt.source, testRouter(""))
			status, data := do(t, app, http.MethodPost, "/api/lead-generator", tt.body)
			assert.Equal(t, tt.status, status, string(data))
		})
	}
}

func TestLeadEnrich(t *testing.T) {
	t.Run("scores supplied leads", func(t *testing.T) {
		app := newLeadApp(t, nil, testRouter(`{"leads":[{"name":"Harbor Dentistry","score":77,"reason":"Slow site"}]}`))
		status, data := do(t, app, http.MethodPost, "/api/lead-enrich",
			`{"leads":[{"name":" Harbor Dentistry "}],"goal":"website redesign"}`)
		require.Equal(t, http.StatusOK, status, string(data))

		resp := decodeBody[models.LeadsResponse](t, data)
		assert.True(t, resp.Scored)
		require.Len(t, resp.Leads, 1)
		require.NotNil(t, resp.Leads[0].Reason)
		assert.Equal(t, "Slow site", *resp.Leads[0].Reason)
	})

	t.Run("blank lead name", func(t *testing.T) {
		app := newLeadApp(t, nil, testRouter(`{}`))
		status, data := do(t, app, http.MethodPost, "/api/lead-enrich", `{"leads":[{"name":"  "}]}`)
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(data), "leads[0].name")
	})

	t.Run("unparseable reply", func(t *testing.T) {
		app := newLeadApp(t, nil, testRouter("I cannot score these."))
		status, data := do(t, app, http.MethodPost, "/api/lead-enrich", `{"leads":[{"name":"Harbor Dentistry"}]}`)
		require.Equal(t, http.StatusInternalServerError, status)
		assert.Contains(t, string(data), "I cannot score these.")
	})

	t.Run("no provider", func(t *testing.T) {
		app := newLeadApp(t, nil, testRouter(""))
		status, _ := do(t, app, http.MethodPost, "/api/lead-enrich", `{"leads":[{"name":"Harbor Dentistry"}]}`)
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})
}

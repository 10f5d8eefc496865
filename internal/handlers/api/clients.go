package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/validation"
)

const maxNameLength = 200

// ClientHandler handles client CRUD operations via JSON API.
type ClientHandler struct {
	store  ClientStore
	logger *zap.Logger
}

// NewClientHandler creates a new API client handler.
func NewClientHandler(store ClientStore, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{store: store, logger: logger}
}

// List returns all clients.
func (h *ClientHandler) List(c fiber.Ctx) error {
	clients, err := h.store.ListClients(c.Context())
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch clients")
	}
	return c.JSON(clients)
}

// Get returns a single client by ID.
func (h *ClientHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid client id")
	}

	client, err := h.store.GetClientByID(c.Context(), id)
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch client")
	}
	return c.JSON(client)
}

// Create creates a new client.
func (h *ClientHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name     string  `json:"name"`
		Website  *string `json:"website"`
		Industry *string `json:"industry"`
		Notes    *string `json:"notes"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	body.Name = strings.TrimSpace(body.Name)
	switch {
	case body.Name == "":
		errs.Add("name", "is required")
	case len(body.Name) > maxNameLength:
		errs.Add("name", "must be at most 200 characters")
	}

	website := trimmed(body.Website)
	if website != nil {
		normalized := validation.NormalizeURL(*website)
		if ok, msg := validation.ValidateURL(normalized); !ok {
			errs.Add("website", msg)
		}
		website = &normalized
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid client")
	}

	client := &models.Client{
		Name:     body.Name,
		Website:  website,
		Industry: trimmed(body.Industry),
		Notes:    trimmed(body.Notes),
	}
	if err := h.store.CreateClient(c.Context(), client); err != nil {
		return writeError(c, h.logger, err, "failed to create client")
	}
	return c.JSON(client)
}

// trimmed returns s trimmed, or nil when s is nil or blank.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

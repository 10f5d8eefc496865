package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/validation"
)

const (
	defaultAssetLimit = 50
	maxAssetLimit     = 200
	maxTags           = 20
)

// AssetHandler handles client asset operations via JSON API.
type AssetHandler struct {
	store  AssetStore
	logger *zap.Logger
}

// NewAssetHandler creates a new API asset handler.
func NewAssetHandler(store AssetStore, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{store: store, logger: logger}
}

// List returns assets newest first, filtered by clientId and type query parameters.
func (h *AssetHandler) List(c fiber.Ctx) error {
	errs := validation.FieldErrors{}

	clientID, ok := validation.ParseOptionalUUID(c.Query("clientId"))
	if !ok {
		errs.Add("clientId", "must be a UUID")
	}

	var assetType *string
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		if !slices.Contains(models.AssetTypes, t) {
			errs.Add("type", "must be one of "+strings.Join(models.AssetTypes, ", "))
		}
		assetType = &t
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid filter")
	}

	assets, err := h.store.ListClientAssets(c.Context(), models.AssetFilter{
		ClientID: clientID,
		Type:     assetType,
		Limit:    validation.ClampLimit(queryInt(c, "limit"), defaultAssetLimit, maxAssetLimit),
	})
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch assets")
	}
	return c.JSON(assets)
}

// Get returns a single asset by ID.
func (h *AssetHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid asset id")
	}

	asset, err := h.store.GetClientAssetByID(c.Context(), id)
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch asset")
	}
	return c.JSON(asset)
}

// Create validates the payload against its type and stores a new asset.
func (h *AssetHandler) Create(c fiber.Ctx) error {
	var body struct {
		ClientID *string         `json:"clientId"`
		Type     string          `json:"type"`
		Title    string          `json:"title"`
		Summary  string          `json:"summary"`
		Payload  json.RawMessage `json:"payload"`
		Tags     []string        `json:"tags"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}

	var clientID *uuid.UUID
	if body.ClientID != nil {
		var ok bool
		if clientID, ok = validation.ParseOptionalUUID(*body.ClientID); !ok {
			errs.Add("clientId", "must be a UUID")
		}
	}

	body.Title = strings.TrimSpace(body.Title)
	switch {
	case body.Title == "":
		errs.Add("title", "is required")
	case len(body.Title) > maxNameLength:
		errs.Add("title", "must be at most 200 characters")
	}

	tags := make([]string, 0, len(body.Tags))
	for _, t := range body.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	if len(tags) > maxTags {
		errs.Add("tags", "at most 20 tags are allowed")
	}

	body.Type = strings.TrimSpace(body.Type)
	var payload json.RawMessage
	if p, err := models.DecodePayload(body.Type, body.Payload); err != nil {
		var pe *models.PayloadError
		if errors.As(err, &pe) {
			errs.Add(pe.Field, pe.Message)
		} else {
			errs.Add("payload", err.Error())
		}
	} else if payload, err = storedPayload(body.Payload, p); err != nil {
		return writeError(c, h.logger, err, "failed to encode payload")
	}

	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid asset")
	}

	asset := &models.ClientAsset{
		ClientID: clientID,
		Type:     body.Type,
		Title:    body.Title,
		Summary:  strings.TrimSpace(body.Summary),
		Payload:  payload,
		Tags:     tags,
	}
	if err := h.store.CreateClientAsset(c.Context(), asset); err != nil {
		return writeError(c, h.logger, err, "failed to create asset")
	}
	return c.JSON(asset)
}

// storedPayload keeps the caller's payload as sent, keys the typed variant does
// not know included. An absent payload is stored as the variant's zero value.
func storedPayload(raw json.RawMessage, p models.AssetPayload) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.EncodePayload(p)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Delete removes an asset by ID.
func (h *AssetHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid asset id")
	}

	if err := h.store.DeleteClientAsset(c.Context(), id); err != nil {
		return writeError(c, h.logger, err, "failed to delete asset")
	}
	return c.JSON(fiber.Map{"id": id, "deleted": true})
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "github.com/taskhive/taskhive-backend/internal/adapters/primary/http/middleware"
	"github.com/taskhive/taskhive-backend/internal/adapters/primary/validation"
	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// FeatureHandler handles HTTP requests for features.
type FeatureHandler struct {
	featureService ports.FeatureService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewFeatureHandler creates a new FeatureHandler.
func NewFeatureHandler(
	featureService ports.FeatureService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *FeatureHandler {
	return &FeatureHandler{
		featureService: featureService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "feature"),
	}
}

// Router sets up a new chi Router for feature routes.
func (h *FeatureHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the feature endpoints. These routes are relative
// to /api/v1/projects/{projectID}/features
func (h *FeatureHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListFeatures)
	r.Post("/", h.HandleCreateFeature)

	r.Route("/{featureID}", func(r chi.Router) {
		r.Patch("/", h.HandleUpdateFeature)
		r.Delete("/", h.HandleDeleteFeature)
	})
}

// --- Request DTOs ---

// CreateFeatureRequest defines the expected JSON body for creating a feature
type CreateFeatureRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate validates the create feature request
func (r *CreateFeatureRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateFeatureRequest defines the expected JSON body for patching a feature
type UpdateFeatureRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Position    *int32  `json:"position"`
}

// Validate validates the update feature request
func (r *UpdateFeatureRequest) Validate() error {
	v := validation.NewValidator()

	if r.Title != nil {
		v.Required("title", *r.Title).
			MaxLength("title", *r.Title, domain.MaxTitleLength)
	}

	if r.Description != nil {
		v.MaxLength("description", *r.Description, domain.MaxDescriptionLength)
	}

	if r.Position != nil {
		v.Position("position", *r.Position)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleListFeatures handles GET /projects/{projectID}/features
func (h *FeatureHandler) HandleListFeatures(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	features, err := h.featureService.ListFeatures(r.Context(), projectID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	snapshots := make([]domain.FeatureSnapshot, 0, len(features))
	for _, feature := range features {
		snapshots = append(snapshots, domain.NewFeatureSnapshot(feature))
	}

	WriteList(w, snapshots)
}

// HandleCreateFeature handles POST /projects/{projectID}/features
func (h *FeatureHandler) HandleCreateFeature(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateFeatureRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateFeatureParams{
		ProjectID:   projectID,
		ActorID:     claims.UserID,
		Title:       req.Title,
		Description: req.Description,
	}

	feature, err := h.featureService.CreateFeature(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("feature created",
		"feature_id", feature.ID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, domain.NewFeatureSnapshot(feature))
}

// HandleUpdateFeature handles PATCH /projects/{projectID}/features/{featureID}
func (h *FeatureHandler) HandleUpdateFeature(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	featureID, err := h.parseFeatureID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateFeatureRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateFeatureParams{
		ProjectID: projectID,
		FeatureID: featureID,
		ActorID:   claims.UserID,
		Update: domain.FeatureUpdate{
			Title:       req.Title,
			Description: req.Description,
			Position:    req.Position,
		},
	}

	feature, err := h.featureService.UpdateFeature(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("feature updated",
		"feature_id", featureID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, domain.NewFeatureSnapshot(feature))
}

// HandleDeleteFeature handles DELETE /projects/{projectID}/features/{featureID}
func (h *FeatureHandler) HandleDeleteFeature(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	featureID, err := h.parseFeatureID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.featureService.DeleteFeature(r.Context(), projectID, featureID, claims.UserID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("feature deleted",
		"feature_id", featureID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *FeatureHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}

// parseFeatureID extracts and validates the feature ID from the URL
func (h *FeatureHandler) parseFeatureID(r *http.Request) (int64, error) {
	featureIDStr := chi.URLParam(r, "featureID")
	featureID, err := strconv.ParseInt(featureIDStr, 10, 64)
	if err != nil || featureID <= 0 {
		v := validation.NewValidator()
		v.Custom("featureID", false, "Invalid feature ID")
		return 0, v.Errors()
	}
	return featureID, nil
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/taskhive/taskhive-backend/internal/adapters/primary/http/middleware"
	"github.com/taskhive/taskhive-backend/internal/adapters/primary/validation"
	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// TicketHandler handles HTTP requests for tickets. All routes are nested
// under a project, so every operation is scoped to the board it belongs to.
type TicketHandler struct {
	ticketService  ports.TicketService
	commentHandler *CommentHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	commentHandler *CommentHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService:  ticketService,
		commentHandler: commentHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "ticket"),
	}
}

// Router sets up a new chi Router for all ticket-related routes.
func (h *TicketHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all ticket endpoints. The parent
// router provides the {projectID} URL parameter.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)
	r.Patch("/reposition", h.HandleRepositionTickets)

	// Routes for a specific ticket
	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Patch("/", h.HandleUpdateTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Post("/verify", h.HandleVerifyTicket)

		// Mount the comment routes nested under /tickets/{ticketID}
		if h.commentHandler != nil {
			r.Mount("/comments", h.commentHandler.Router())
		}
	})
}

// --- Request/Response DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	TicketType     string  `json:"ticketType"`
	TicketPriority string  `json:"ticketPriority"`
	FeatureID      *int64  `json:"featureId"`
	DueAt          *string `json:"dueAt"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	v.Required("ticketType", r.TicketType).
		TicketType("ticketType", r.TicketType)

	v.Required("ticketPriority", r.TicketPriority).
		TicketPriority("ticketPriority", r.TicketPriority)

	if r.FeatureID != nil {
		v.PositiveID("featureId", *r.FeatureID)
	}

	if r.DueAt != nil {
		v.Timestamp("dueAt", *r.DueAt)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateTicketRequest defines the expected JSON body for patching a ticket.
// Absent fields are untouched; the clear flags drop optional associations.
type UpdateTicketRequest struct {
	Title                 *string `json:"title"`
	Description           *string `json:"description"`
	TicketType            *string `json:"ticketType"`
	TicketPriority        *string `json:"ticketPriority"`
	TicketStatus          *string `json:"ticketStatus"`
	FeatureID             *int64  `json:"featureId"`
	AssignedContributorID *string `json:"assignedContributorId"`
	DueAt                 *string `json:"dueAt"`
	ClearFeature          bool    `json:"clearFeature"`
	ClearAssignee         bool    `json:"clearAssignee"`
	ClearDueAt            bool    `json:"clearDueAt"`
}

// Validate validates the update ticket request
func (r *UpdateTicketRequest) Validate() error {
	v := validation.NewValidator()

	if r.Title != nil {
		v.Required("title", *r.Title).
			MaxLength("title", *r.Title, domain.MaxTitleLength)
	}

	if r.Description != nil {
		v.MaxLength("description", *r.Description, domain.MaxDescriptionLength)
	}

	if r.TicketType != nil {
		v.TicketType("ticketType", *r.TicketType)
	}

	if r.TicketPriority != nil {
		v.TicketPriority("ticketPriority", *r.TicketPriority)
	}

	if r.TicketStatus != nil {
		v.TicketStatus("ticketStatus", *r.TicketStatus)
	}

	if r.FeatureID != nil {
		v.PositiveID("featureId", *r.FeatureID)
	}

	if r.AssignedContributorID != nil {
		v.UUID("assignedContributorId", *r.AssignedContributorID)
	}

	if r.DueAt != nil {
		v.Timestamp("dueAt", *r.DueAt)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TicketMoveRequest is one entry of a board rearrangement batch.
type TicketMoveRequest struct {
	TicketID int64  `json:"ticketId"`
	Position int32  `json:"position"`
	Status   string `json:"status"`
}

// RepositionTicketsRequest defines the expected JSON body for a batch
// board rearrangement.
type RepositionTicketsRequest struct {
	Moves []TicketMoveRequest `json:"moves"`
}

// Validate validates the reposition request
func (r *RepositionTicketsRequest) Validate() error {
	v := validation.NewValidator()

	if len(r.Moves) == 0 {
		v.Custom("moves", false, "At least one move is required")
	}

	for i, move := range r.Moves {
		field := "moves[" + strconv.Itoa(i) + "]"
		v.PositiveID(field+".ticketId", move.TicketID)
		v.Position(field+".position", move.Position)
		v.Required(field+".status", move.Status).
			TicketStatus(field+".status", move.Status)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleListTickets handles GET /projects/{projectID}/tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets, err := h.ticketService.ListTickets(r.Context(), projectID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, domain.NewTicketSnapshots(tickets))
}

// HandleCreateTicket handles POST /projects/{projectID}/tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateTicketParams{
		ProjectID:      projectID,
		Title:          req.Title,
		Description:    req.Description,
		TicketType:     domain.TicketType(req.TicketType),
		TicketPriority: domain.TicketPriority(req.TicketPriority),
		FeatureID:      req.FeatureID,
		CreatorID:      claims.UserID,
	}

	if req.DueAt != nil {
		dueAt, _ := time.Parse(time.RFC3339, *req.DueAt)
		params.DueAt = &dueAt
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket created",
		"ticket_id", ticket.ID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, domain.NewTicketSnapshot(ticket))
}

// HandleGetTicket handles GET /projects/{projectID}/tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), projectID, ticketID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// HandleUpdateTicket handles PATCH /projects/{projectID}/tickets/{ticketID}
func (h *TicketHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	update := domain.TicketUpdate{
		Title:         req.Title,
		Description:   req.Description,
		FeatureID:     req.FeatureID,
		ClearFeature:  req.ClearFeature,
		ClearAssignee: req.ClearAssignee,
		ClearDueAt:    req.ClearDueAt,
	}

	if req.TicketType != nil {
		ticketType := domain.TicketType(*req.TicketType)
		update.TicketType = &ticketType
	}
	if req.TicketPriority != nil {
		priority := domain.TicketPriority(*req.TicketPriority)
		update.TicketPriority = &priority
	}
	if req.TicketStatus != nil {
		status := domain.TicketStatus(*req.TicketStatus)
		update.TicketStatus = &status
	}
	if req.AssignedContributorID != nil {
		assigneeID, parseErr := uuid.Parse(*req.AssignedContributorID)
		if parseErr != nil {
			// This shouldn't happen since we validated the UUID format
			h.errorHandler.Handle(w, r, parseErr)
			return
		}
		update.AssignedContributorID = &assigneeID
	}
	if req.DueAt != nil {
		dueAt, _ := time.Parse(time.RFC3339, *req.DueAt)
		update.DueAt = &dueAt
	}

	params := ports.UpdateTicketParams{
		ProjectID: projectID,
		TicketID:  ticketID,
		ActorID:   claims.UserID,
		Update:    update,
	}

	ticket, err := h.ticketService.UpdateTicket(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket updated",
		"ticket_id", ticketID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// HandleRepositionTickets handles PATCH /projects/{projectID}/tickets/reposition
func (h *TicketHandler) HandleRepositionTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[RepositionTicketsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	moves := make([]ports.TicketMove, 0, len(req.Moves))
	for _, move := range req.Moves {
		moves = append(moves, ports.TicketMove{
			TicketID: move.TicketID,
			Position: move.Position,
			Status:   domain.TicketStatus(move.Status),
		})
	}

	params := ports.RepositionTicketsParams{
		ProjectID: projectID,
		ActorID:   claims.UserID,
		Moves:     moves,
	}

	tickets, err := h.ticketService.RepositionTickets(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("tickets repositioned",
		"project_id", projectID,
		"move_count", len(moves),
		"user_id", claims.UserID,
	)

	WriteList(w, domain.NewTicketSnapshots(tickets))
}

// HandleDeleteTicket handles DELETE /projects/{projectID}/tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.ticketService.DeleteTicket(r.Context(), projectID, ticketID, claims.UserID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket deleted",
		"ticket_id", ticketID,
		"project_id", projectID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

// HandleVerifyTicket handles POST /projects/{projectID}/tickets/{ticketID}/verify
func (h *TicketHandler) HandleVerifyTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseProjectID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.VerifyTicket(r.Context(), projectID, ticketID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket verified",
		"ticket_id", ticketID,
		"project_id", projectID,
		"verifier_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, domain.NewTicketSnapshot(ticket))
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *TicketHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

// parseTicketID extracts and validates the ticket ID from the URL
func (h *TicketHandler) parseTicketID(r *http.Request) (int64, error) {
	ticketIDStr := chi.URLParam(r, "ticketID")
	ticketID, err := strconv.ParseInt(ticketIDStr, 10, 64)
	if err != nil || ticketID <= 0 {
		v := validation.NewValidator()
		v.Custom("ticketID", false, "Invalid ticket ID")
		return 0, v.Errors()
	}
	return ticketID, nil
}

// parseProjectID extracts and validates the project ID from the URL
func parseProjectID(r *http.Request) (uuid.UUID, error) {
	projectIDStr := chi.URLParam(r, "projectID")
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("projectID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return projectID, nil
}

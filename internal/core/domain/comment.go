package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

// MaxCommentBodyLength bounds comment bodies.
const MaxCommentBodyLength = 5000

// Comment is a user-authored note on a ticket.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

// CommentParams holds the caller-supplied fields for creating a comment.
type CommentParams struct {
	TicketID int64
	AuthorID uuid.UUID
	Body     string
}

// NewComment creates a valid comment.
func NewComment(params CommentParams) (*Comment, error) {
	if strings.TrimSpace(params.Body) == "" {
		return nil, apperrors.ErrCommentBodyRequired
	}
	if len(params.Body) > MaxCommentBodyLength {
		return nil, apperrors.ErrCommentBodyTooLong
	}
	if params.TicketID <= 0 {
		return nil, apperrors.ErrTicketIDRequired
	}
	if params.AuthorID == uuid.Nil {
		return nil, apperrors.ErrAuthorIDRequired
	}

	return &Comment{
		TicketID:  params.TicketID,
		AuthorID:  params.AuthorID,
		Body:      params.Body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

package http

import (
	"encoding/json"
	"net/http"
)

// ListResponse wraps a collection endpoint's payload. Board reads return
// the whole set every time (a project's tickets, features, or a ticket's
// comments) so there is no pagination envelope; the count lets clients
// sanity-check a render against the frame stream.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The header is already sent; nothing useful can be written now.
		return
	}
}

// WriteCreated writes a 201 with the newly created record. Used by the
// register, project, feature, ticket and comment create endpoints; the
// body matches the snapshot shape the room broadcast carries.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204. Deletes respond with no body; the room
// frame is what tells other boards which record disappeared.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteList writes a 200 with the full collection.
func WriteList[T any](w http.ResponseWriter, data []T) {
	WriteJSON(w, http.StatusOK, ListResponse[T]{
		Data:  data,
		Count: len(data),
	})
}

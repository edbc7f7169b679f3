package handler

import (
	"net/http"

	"medbook/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// pathUUID parses a mux path variable, writing a 400 when it is not a UUID
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

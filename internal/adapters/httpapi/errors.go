package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/offroadmga/club-manager-api/internal/app/events"
	"github.com/offroadmga/club-manager-api/internal/app/finance"
	"github.com/offroadmga/club-manager-api/internal/app/garage"
	"github.com/offroadmga/club-manager-api/internal/app/members"
	"github.com/offroadmga/club-manager-api/internal/app/session"
)

// ErrorResponse is the API error envelope shared by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps an application-layer error onto the envelope. Anything
// that is not a recognized app error is reported opaquely.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*members.Error)(nil); errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if ae := (*events.Error)(nil); errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if ae := (*finance.Error)(nil); errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if ae := (*garage.Error)(nil); errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if ae := (*session.Error)(nil); errors.As(err, &ae) {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

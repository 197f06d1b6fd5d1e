package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"campusexplorer/errs"

	"go.uber.org/zap"
)

type M map[string]any

// RespondWithJSON writes data with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondOK wraps one entity in the success envelope: {"success":true,"<name>":v}.
func RespondOK(w http.ResponseWriter, statusCode int, name string, v any) {
	RespondWithJSON(w, statusCode, M{"success": true, name: v})
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"success": false, "message": msg})
}

// RespondWithErr reports err to the client. Domain errors keep their message,
// field and key; anything else is logged and answered with a bare 500.
func RespondWithErr(w http.ResponseWriter, log *zap.Logger, err error) {
	var de *errs.Error
	if !errors.As(err, &de) {
		log.Error("request failed", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := M{"success": false, "message": de.Message, "kind": de.Kind}
	if de.Field != "" {
		body["field"] = de.Field
	}
	if de.Key != "" {
		body["key"] = de.Key
	}
	RespondWithJSON(w, de.Kind.HTTPStatus(), body)
}

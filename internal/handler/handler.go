package handler

import (
	"encoding/json"
	"net/http"

	"voucher-pool/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a domain error onto an HTTP status.
func writeDomainError(w http.ResponseWriter, derr *model.DomainError, logger zerolog.Logger) {
	status := http.StatusBadRequest
	switch derr.Code {
	case model.ErrCodeOfferNotFound, model.ErrCodeCustomerNotFound, model.ErrCodeVoucherNotFound:
		status = http.StatusNotFound
	case model.ErrCodeNoCustomers, model.ErrCodeNothingToGenerate:
		status = http.StatusConflict
	}
	writeError(w, status, derr.Code, derr.Message, logger)
}

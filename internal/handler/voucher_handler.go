package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voucher-pool/internal/model"
	"voucher-pool/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VoucherHandler handles voucher-related HTTP requests.
type VoucherHandler struct {
	service service.VoucherService
	logger  zerolog.Logger
}

// NewVoucherHandler creates a new voucher handler.
func NewVoucherHandler(service service.VoucherService, logger zerolog.Logger) *VoucherHandler {
	return &VoucherHandler{
		service: service,
		logger:  logger.With().Str("handler", "voucher").Logger(),
	}
}

// Generate handles POST /api/vouchers/generate requests.
func (h *VoucherHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateVouchersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	offerID, err := uuid.Parse(req.SpecialOfferID)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid special offer ID", h.logger)
		return
	}

	expirationDate, err := time.Parse(time.RFC3339, req.ExpirationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidExpiration, "expiration date must be RFC 3339", h.logger)
		return
	}

	count, err := h.service.Generate(r.Context(), offerID, expirationDate)
	if err != nil {
		var derr *model.DomainError
		if errors.As(err, &derr) {
			writeDomainError(w, derr, h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to generate vouchers", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.GenerateVouchersResponse{Generated: count})
}

// Validate handles POST /api/vouchers/validate requests.
func (h *VoucherHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, false)
}

// Redeem handles POST /api/vouchers/redeem requests.
func (h *VoucherHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, true)
}

// check decodes a validate/redeem payload and runs the requested operation.
// Rejections come back as 200 responses with accepted=false; only storage
// failures produce error statuses.
func (h *VoucherHandler) check(w http.ResponseWriter, r *http.Request, redeem bool) {
	var req model.VoucherCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.Code == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "code and email are required", h.logger)
		return
	}

	var (
		result *model.RedemptionResult
		err    error
	)
	if redeem {
		result, err = h.service.Redeem(r.Context(), req.Code, req.Email)
	} else {
		result, err = h.service.Check(r.Context(), req.Code, req.Email)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to process voucher", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListByCustomer handles GET /api/vouchers/customer/{email} requests.
func (h *VoucherHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "email is required", h.logger)
		return
	}

	vouchers, err := h.service.ListActive(r.Context(), email)
	if err != nil {
		var derr *model.DomainError
		if errors.As(err, &derr) {
			writeDomainError(w, derr, h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to list vouchers", h.logger)
		return
	}

	if vouchers == nil {
		vouchers = []model.CustomerVoucher{}
	}

	writeJSON(w, http.StatusOK, vouchers)
}

// GetAll handles GET /api/vouchers requests.
func (h *VoucherHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.service.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to list vouchers", h.logger)
		return
	}

	if vouchers == nil {
		vouchers = []model.Voucher{}
	}

	writeJSON(w, http.StatusOK, vouchers)
}

// GetByID handles GET /api/vouchers/{id} requests.
func (h *VoucherHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid voucher ID format", h.logger)
		return
	}

	voucher, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve voucher", h.logger)
		return
	}

	if voucher == nil {
		writeDomainError(w, model.ErrVoucherNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, voucher)
}

// Delete handles DELETE /api/vouchers/{id} requests.
func (h *VoucherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid voucher ID format", h.logger)
		return
	}

	deleted, err := h.service.Remove(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to delete voucher", h.logger)
		return
	}

	if !deleted {
		writeDomainError(w, model.ErrVoucherNotFound, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

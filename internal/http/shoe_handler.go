package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trananhvu/shoe-catalog/internal/apperr"
	"github.com/trananhvu/shoe-catalog/internal/model"
	"github.com/trananhvu/shoe-catalog/internal/service"
	"github.com/trananhvu/shoe-catalog/pkg/validator"
)

type shoePayloadRequest struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	ShoeURL  string `json:"shoe_url"`
	Price    int16  `json:"price"`
	Quantity string `json:"quantity"`
}

func (req shoePayloadRequest) toPayload() model.ShoePayload {
	return model.ShoePayload{
		Name:     req.Name,
		Size:     req.Size,
		ShoeURL:  req.ShoeURL,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
}

type rateShoeRequest struct {
	Rate *float32 `json:"rate" validate:"required"`
}

type shoeResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	ShoeURL   string  `json:"shoe_url"`
	Price     int16   `json:"price"`
	Quantity  string  `json:"quantity"`
	Rating    float32 `json:"rating"`
	CreatedAt uint64  `json:"created_at"`
	UpdatedAt *uint64 `json:"updated_at,omitempty"`
}

func shoeToResponse(shoe model.Shoe) shoeResponse {
	return shoeResponse{
		ID:        shoe.ID,
		Name:      shoe.Name,
		Size:      shoe.Size,
		ShoeURL:   shoe.ShoeURL,
		Price:     shoe.Price,
		Quantity:  shoe.Quantity,
		Rating:    shoe.Rating,
		CreatedAt: shoe.CreatedAt,
		UpdatedAt: shoe.UpdatedAt,
	}
}

func shoesToResponse(shoes []model.Shoe) []shoeResponse {
	items := make([]shoeResponse, 0, len(shoes))
	for _, shoe := range shoes {
		items = append(items, shoeToResponse(shoe))
	}
	return items
}

type shoeHandler struct {
	logger    *slog.Logger
	validator validator.Validator
	shoeSvc   service.ShoeService
}

func newShoeHandler(logger *slog.Logger, v validator.Validator, shoeSvc service.ShoeService) *shoeHandler {
	return &shoeHandler{
		logger:    logger,
		validator: v,
		shoeSvc:   shoeSvc,
	}
}

func (h *shoeHandler) createShoe(w http.ResponseWriter, r *http.Request) {
	var req shoePayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	shoe, err := h.shoeSvc.CreateShoe(r.Context(), req.toPayload())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusCreated, shoeToResponse(shoe))
}

func (h *shoeHandler) listShoes(w http.ResponseWriter, r *http.Request) {
	shoes, err := h.shoeSvc.ListAllShoes(r.Context())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoesToResponse(shoes))
}

func (h *shoeHandler) getShoe(w http.ResponseWriter, r *http.Request) {
	shoe, err := h.shoeSvc.GetShoe(r.Context(), chi.URLParam(r, "shoeID"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoeToResponse(shoe))
}

func (h *shoeHandler) updateShoe(w http.ResponseWriter, r *http.Request) {
	var req shoePayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	shoe, err := h.shoeSvc.UpdateShoe(r.Context(), chi.URLParam(r, "shoeID"), req.toPayload())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoeToResponse(shoe))
}

func (h *shoeHandler) deleteShoe(w http.ResponseWriter, r *http.Request) {
	shoe, err := h.shoeSvc.DeleteShoe(r.Context(), chi.URLParam(r, "shoeID"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoeToResponse(shoe))
}

func (h *shoeHandler) searchShoes(w http.ResponseWriter, r *http.Request) {
	shoes, err := h.shoeSvc.SearchShoes(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoesToResponse(shoes))
}

func (h *shoeHandler) rateShoe(w http.ResponseWriter, r *http.Request) {
	var req rateShoeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validator.Validate(req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	shoe, err := h.shoeSvc.RateShoe(r.Context(), chi.URLParam(r, "shoeID"), *req.Rate)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	respondJSON(h.logger, w, r, http.StatusOK, shoeToResponse(shoe))
}

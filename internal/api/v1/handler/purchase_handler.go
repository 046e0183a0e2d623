package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
	validate        *validator.Validate
}

func NewPurchaseHandler(purchaseService service.PurchaseService, v *validator.Validate) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, validate: v}
}

// RegisterRoutes mounts v1 purchase routes.
func (h *PurchaseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/purchases", authMw(http.HandlerFunc(h.handlePurchases)))
}

func (h *PurchaseHandler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createPurchase(w, r)
	case http.MethodGet:
		h.listPurchases(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func toPurchaseDTO(p model.Purchase) dto.PurchaseResponseDTO {
	resp := dto.PurchaseResponseDTO{ID: p.ID, CreatedAt: p.CreatedAt}
	if p.Product != nil {
		d := toProductDTO(*p.Product)
		resp.Product = &d
	}
	return resp
}

// createPurchase godoc
// @Summary Buy a product
// @Description Records a purchase for the authenticated user. Payment is simulated.
// @Tags purchases
// @Accept json
// @Produce json
// @Success 201 {object} dto.PurchaseResponseDTO
// @Failure 400 {string} string "Duplicate purchase or unknown product"
// @Router /purchases [post]
func (h *PurchaseHandler) createPurchase(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CreatePurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(r.Context(), userID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicatePurchase),
			errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrProductNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to create purchase: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPurchaseDTO(*purchase))
}

// listPurchases godoc
// @Summary List own purchases
// @Description Returns the authenticated user's purchases with products populated.
// @Tags purchases
// @Produce json
// @Success 200 {array} dto.PurchaseResponseDTO
// @Router /purchases [get]
func (h *PurchaseHandler) listPurchases(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}
	purchases, err := h.purchaseService.GetUserPurchases(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list purchases: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.PurchaseResponseDTO, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toPurchaseDTO(p))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

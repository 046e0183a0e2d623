package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
)

// maxUploadBytes bounds multipart product uploads.
const maxUploadBytes = 32 << 20

type ProductHandler struct {
	productService service.ProductService
	validate       *validator.Validate
}

func NewProductHandler(productService service.ProductService, v *validator.Validate) *ProductHandler {
	return &ProductHandler{productService: productService, validate: v}
}

// RegisterRoutes mounts v1 product routes. Method dispatch happens inside
// the handlers because admin-only checks depend on the verb.
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/products", authMw(http.HandlerFunc(h.handleProducts)))
	mux.Handle("/products/", authMw(http.HandlerFunc(h.handleProduct)))
}

func (h *ProductHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		h.createProduct(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProductHandler) handleProduct(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch r.Method {
	case http.MethodGet:
		if strings.HasSuffix(path, "/file") {
			h.downloadFile(w, r)
			return
		}
		if strings.HasPrefix(path, "/products/purchased/") {
			h.listPurchased(w, r)
			return
		}
		h.getProduct(w, r)
	case http.MethodPatch:
		h.updateProduct(w, r)
	case http.MethodDelete:
		h.removeProduct(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProductHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !middleware.RoleAllowed([]string{model.RoleAdmin}, middleware.Role(r.Context())) {
		http.Error(w, "Access denied: insufficient role", http.StatusForbidden)
		return false
	}
	return true
}

func productIDFromPath(path string) (int64, error) {
	idStr := strings.TrimPrefix(path, "/products/")
	idStr = strings.TrimSuffix(idStr, "/file")
	return strconv.ParseInt(idStr, 10, 64)
}

func toProductDTO(p model.Product) dto.ProductResponseDTO {
	return dto.ProductResponseDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// listProducts godoc
// @Summary List the catalog
// @Description Returns catalog metadata with a purchased flag for the caller.
// @Tags products
// @Produce json
// @Success 200 {array} dto.ProductResponseDTO
// @Router /products [get]
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	items, err := h.productService.FindAll(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list products: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.ProductResponseDTO, 0, len(items))
	for _, item := range items {
		d := toProductDTO(item.Product)
		d.Purchased = item.Purchased
		resp = append(resp, d)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// createProduct godoc
// @Summary Create a product
// @Description Creates a product from a multipart form with its PDF payload. Admin only.
// @Tags products
// @Accept mpfd
// @Produce json
// @Success 201 {object} dto.MessageResponseDTO
// @Failure 400 {string} string "File is required"
// @Failure 403 {string} string "Access denied"
// @Router /products [post]
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	title, description, price, file, err := parseProductForm(r, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p := &model.Product{Title: title, Description: description, Price: price}
	if err := h.productService.Create(r.Context(), p, file); err != nil {
		switch {
		case errors.Is(err, service.ErrFileRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to create product: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: "product created"})
}

// getProduct godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} dto.ProductResponseDTO
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	p, err := h.productService.FindOne(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProductDTO(*p))
}

// updateProduct godoc
// @Summary Update a product
// @Description Edits a product that has not been purchased yet. Admin only.
// @Tags products
// @Accept mpfd
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {string} string "Product already purchased"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [patch]
func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := productIDFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	title, description, price, file, err := parseProductForm(r, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.productService.Update(r.Context(), id, title, description, price, file); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, service.ErrAlreadyPurchased):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to update product: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: "product updated"})
}

// removeProduct godoc
// @Summary Delete a product
// @Description Deletes a product that has never been purchased. Admin only.
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {string} string "Product has purchases"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [delete]
func (h *ProductHandler) removeProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := productIDFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	if err := h.productService.Remove(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, service.ErrProductHasPurchases):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to remove product: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: "product removed"})
}

// downloadFile godoc
// @Summary Download a product file
// @Description Streams the PDF payload when the caller purchased the product or is an admin.
// @Tags products
// @Produce application/pdf
// @Param id path int true "Product ID"
// @Success 200 {file} binary
// @Failure 403 {object} dto.MessageResponseDTO
// @Failure 404 {object} dto.MessageResponseDTO
// @Router /products/{id}/file [get]
func (h *ProductHandler) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	requesterID := middleware.UserID(r.Context())
	role := middleware.Role(r.Context())

	data, err := h.productService.GetFileIfPurchased(r.Context(), id, requesterID, role)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case errors.Is(err, service.ErrUnauthenticated),
			errors.Is(err, service.ErrNotPurchased),
			errors.Is(err, service.ErrQuotaExhausted):
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: err.Error()})
		default:
			// Any other cause, the missing product included, is masked as a
			// generic missing file.
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: "file not found"})
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="produto_%d.pdf"`, id))
	w.Write(data)
}

// listPurchased godoc
// @Summary List products purchased by a user
// @Tags products
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} dto.ProductResponseDTO
// @Failure 404 {string} string "User not found"
// @Router /products/purchased/{userId} [get]
func (h *ProductHandler) listPurchased(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/products/purchased/")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	products, err := h.productService.FindPurchasedByUser(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, "Failed to list purchased products: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	resp := make([]dto.ProductResponseDTO, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductDTO(p))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// parseProductForm extracts title, description, price and the optional
// payload from a multipart form. The payload is mandatory when
// fileRequired is set.
func parseProductForm(r *http.Request, fileRequired bool) (string, *string, float64, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, 0, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	title := r.FormValue("title")
	if title == "" {
		return "", nil, 0, nil, errors.New("title is required")
	}
	var description *string
	if v := r.FormValue("description"); v != "" {
		description = &v
	}
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return "", nil, 0, nil, errors.New("price must be a non-negative number")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		if fileRequired {
			return "", nil, 0, nil, errors.New("product file is required")
		}
		return title, description, price, nil, nil
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, 0, nil, fmt.Errorf("reading uploaded file: %w", err)
	}
	return title, description, price, data, nil
}

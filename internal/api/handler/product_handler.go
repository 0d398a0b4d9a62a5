package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
	abilities      abilityResolver
}

func NewProductHandler(productService service.IProductService, userService service.IUserService) *ProductHandler {
	if productService == nil || userService == nil {
		panic("product handler missing required service")
	}
	return &ProductHandler{
		productService: productService,
		abilities:      abilityResolver{userService: userService},
	}
}

// @Summary list products
// @Tags product
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} api.Response{data=[]dto.ProductDTO} "success"
// @Router /products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)

	products, err := h.productService.GetAllProducts(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		result = append(result, convertProductToDTO(&products[i]))
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary get one product
// @Tags product
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} api.Response{data=dto.ProductDTO} "success"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertProductToDTO(product), nil)
}

// @Summary create a product
// @Tags product
// @Accept mpfd
// @Produce json
// @Param name formData string true "product name"
// @Param description formData string true "description"
// @Param price formData string true "price, decimal string"
// @Param quantity formData int true "stock quantity"
// @Param photo formData file false "product image"
// @Success 200 {object} api.Response{data=dto.ProductDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, user, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if user == nil || !ability.Can(authz.Create, authz.SubjectProduct) {
		writeForbidden(w)
		return
	}

	photo, err := readImageFile(r, "photo")
	if err != nil {
		writeErr(w, err)
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		writeBadRequest(w, er.New(er.BadRequestCode, "invalid quantity"))
		return
	}
	createDTO := dto.CreateProductDTO{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Quantity:    quantity,
	}
	if err := dto.Validate(createDTO); err != nil {
		writeBadRequest(w, err)
		return
	}
	price, err := decimal.NewFromString(createDTO.Price)
	if err != nil || price.IsNegative() {
		writeBadRequest(w, er.New(er.BadRequestCode, "invalid price"))
		return
	}

	product, err := h.productService.CreateProduct(ctx, user.ID, service.CreateProductInput{
		Name:        createDTO.Name,
		Description: createDTO.Description,
		Price:       price,
		Quantity:    createDTO.Quantity,
		Photo:       photo,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertProductToDTO(product), nil)
}

// @Summary update own product
// @Tags product
// @Accept json
// @Produce json
// @Param id path int true "product id"
// @Param product body dto.UpdateProductDTO true "fields to update"
// @Success 200 {object} api.Response{data=dto.ProductDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Update, product) {
		writeForbidden(w)
		return
	}

	var updateDTO dto.UpdateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(updateDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	input := service.UpdateProductInput{
		Name:        updateDTO.Name,
		Description: updateDTO.Description,
		Quantity:    updateDTO.Quantity,
	}
	if updateDTO.Price != nil {
		price, err := decimal.NewFromString(*updateDTO.Price)
		if err != nil || price.IsNegative() {
			writeBadRequest(w, er.New(er.BadRequestCode, "invalid price"))
			return
		}
		input.Price = &price
	}

	updated, err := h.productService.UpdateProduct(ctx, id, input)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertProductToDTO(updated), nil)
}

// @Summary replace the product image
// @Tags product
// @Accept mpfd
// @Produce json
// @Param id path int true "product id"
// @Param photo formData file true "product image"
// @Success 200 {object} api.Response{data=dto.ProductDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /products/{id}/photo [put]
func (h *ProductHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Update, product) {
		writeForbidden(w)
		return
	}

	photo, err := readImageFile(r, "photo")
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(photo) == 0 {
		writeBadRequest(w, er.New(er.BadRequestCode, "photo file is required"))
		return
	}

	updated, err := h.productService.UpdateProduct(ctx, id, service.UpdateProductInput{Photo: photo})
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertProductToDTO(updated), nil)
}

// @Summary delete own product
// @Tags product
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} api.Response{data=string} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Delete, product) {
		writeForbidden(w)
		return
	}

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, nil, nil)
}

// @Summary list products of a user
// @Tags product
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} api.Response{data=[]dto.ProductDTO} "success"
// @Router /users/{id}/products [get]
func (h *ProductHandler) ListUserProducts(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePaging(r)

	products, err := h.productService.GetProductsByUserID(r.Context(), id, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		result = append(result, convertProductToDTO(&products[i]))
	}
	api.SuccessJSON(w, result, nil)
}

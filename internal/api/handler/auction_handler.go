package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/shopspring/decimal"
)

type AuctionHandler struct {
	auctionService service.IAuctionService
	bidService     service.IBidService
	abilities      abilityResolver
}

func NewAuctionHandler(auctionService service.IAuctionService, bidService service.IBidService, userService service.IUserService) *AuctionHandler {
	if auctionService == nil || bidService == nil || userService == nil {
		panic("auction handler missing required service")
	}
	return &AuctionHandler{
		auctionService: auctionService,
		bidService:     bidService,
		abilities:      abilityResolver{userService: userService},
	}
}

// @Summary list auctions
// @Tags auction
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} api.Response{data=[]dto.AuctionDTO} "success"
// @Router /auctions [get]
func (h *AuctionHandler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)

	auctions, err := h.auctionService.GetAllAuctions(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.AuctionDTO, 0, len(auctions))
	for i := range auctions {
		result = append(result, convertAuctionToDTO(&auctions[i]))
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary get one auction
// @Tags auction
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} api.Response{data=dto.AuctionDTO} "success"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Router /auctions/{id} [get]
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	auction, err := h.auctionService.GetAuction(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertAuctionToDTO(auction), nil)
}

// @Summary create an auction
// @Tags auction
// @Accept mpfd
// @Produce json
// @Param name formData string true "auction name"
// @Param description formData string true "description"
// @Param price formData string true "starting price, decimal string"
// @Param bidStart formData string true "bid window start, RFC3339"
// @Param bidEnd formData string true "bid window end, RFC3339"
// @Param photo formData file false "auction image"
// @Success 200 {object} api.Response{data=dto.AuctionDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /auctions [post]
func (h *AuctionHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, user, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if user == nil || !ability.Can(authz.Create, authz.SubjectAuction) {
		writeForbidden(w)
		return
	}

	photo, err := readImageFile(r, "photo")
	if err != nil {
		writeErr(w, err)
		return
	}

	bidStart, err := time.Parse(time.RFC3339, r.FormValue("bidStart"))
	if err != nil {
		writeBadRequest(w, er.New(er.BadRequestCode, "invalid bidStart"))
		return
	}
	bidEnd, err := time.Parse(time.RFC3339, r.FormValue("bidEnd"))
	if err != nil {
		writeBadRequest(w, er.New(er.BadRequestCode, "invalid bidEnd"))
		return
	}

	createDTO := dto.CreateAuctionDTO{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		BidStart:    bidStart,
		BidEnd:      bidEnd,
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

	auction, err := h.auctionService.CreateAuction(ctx, user.ID, service.CreateAuctionInput{
		Name:        createDTO.Name,
		Description: createDTO.Description,
		Price:       price,
		BidStart:    createDTO.BidStart,
		BidEnd:      createDTO.BidEnd,
		Photo:       photo,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertAuctionToDTO(auction), nil)
}

// @Summary update own auction
// @Tags auction
// @Accept json
// @Produce json
// @Param id path int true "auction id"
// @Param auction body dto.UpdateAuctionDTO true "fields to update"
// @Success 200 {object} api.Response{data=dto.AuctionDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /auctions/{id} [put]
func (h *AuctionHandler) UpdateAuction(w http.ResponseWriter, r *http.Request) {
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

	auction, err := h.auctionService.GetAuction(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Update, auction) {
		writeForbidden(w)
		return
	}

	var updateDTO dto.UpdateAuctionDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(updateDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	input := service.UpdateAuctionInput{
		Name:        updateDTO.Name,
		Description: updateDTO.Description,
		BidStart:    updateDTO.BidStart,
		BidEnd:      updateDTO.BidEnd,
	}
	if updateDTO.Price != nil {
		price, err := decimal.NewFromString(*updateDTO.Price)
		if err != nil || price.IsNegative() {
			writeBadRequest(w, er.New(er.BadRequestCode, "invalid price"))
			return
		}
		input.Price = &price
	}

	updated, err := h.auctionService.UpdateAuction(ctx, id, input)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertAuctionToDTO(updated), nil)
}

// @Summary replace the auction image
// @Tags auction
// @Accept mpfd
// @Produce json
// @Param id path int true "auction id"
// @Param photo formData file true "auction image"
// @Success 200 {object} api.Response{data=dto.AuctionDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /auctions/{id}/photo [put]
func (h *AuctionHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
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

	auction, err := h.auctionService.GetAuction(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Update, auction) {
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

	updated, err := h.auctionService.UpdateAuction(ctx, id, service.UpdateAuctionInput{Photo: photo})
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertAuctionToDTO(updated), nil)
}

// @Summary delete own auction
// @Tags auction
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} api.Response{data=string} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /auctions/{id} [delete]
func (h *AuctionHandler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
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

	auction, err := h.auctionService.GetAuction(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Delete, auction) {
		writeForbidden(w)
		return
	}

	if err := h.auctionService.DeleteAuction(ctx, id); err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, nil, nil)
}

// @Summary list bids of an auction, ordered by bid time
// @Tags auction
// @Produce json
// @Param id path int true "auction id"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} api.Response{data=[]dto.BidDTO} "success"
// @Router /auctions/{id}/bids [get]
func (h *AuctionHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePaging(r)

	bids, err := h.bidService.GetBidsByAuctionID(r.Context(), id, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.BidDTO, 0, len(bids))
	for i := range bids {
		result = append(result, convertBidToDTO(&bids[i]))
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary get the current highest bid of an auction
// @Tags auction
// @Produce json
// @Param id path int true "auction id"
// @Success 200 {object} api.Response{data=dto.HighBidResponse} "success"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Router /auctions/{id}/high-bid [get]
func (h *AuctionHandler) GetHighBid(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	high, err := h.auctionService.GetHighBid(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, dto.HighBidResponse{AuctionID: id, HighBid: high.String()}, nil)
}

// @Summary list auctions of a user
// @Tags auction
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} api.Response{data=[]dto.AuctionDTO} "success"
// @Router /users/{id}/auctions [get]
func (h *AuctionHandler) ListUserAuctions(w http.ResponseWriter, r *http.Request) {
	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, offset := parsePaging(r)

	auctions, err := h.auctionService.GetAuctionsByUserID(r.Context(), id, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.AuctionDTO, 0, len(auctions))
	for i := range auctions {
		result = append(result, convertAuctionToDTO(&auctions[i]))
	}
	api.SuccessJSON(w, result, nil)
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/internal/util"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/go-chi/chi/v5"
)

// 圖片上傳上限
const maxImageSize = 8 << 20

// writeErr 把service層錯誤轉成統一的JSON錯誤回應
func writeErr(w http.ResponseWriter, err error) {
	var appErr *er.Err
	if errors.As(err, &appErr) {
		api.ErrorJSON(w, int(appErr.Code), appErr, er.ErrStrMap[appErr.Code])
		return
	}
	api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
}

func writeForbidden(w http.ResponseWriter) {
	api.ErrorJSON(w, int(er.ForbiddenCode), er.New(er.ForbiddenCode, "you are not allowed to do this"), er.ErrStrMap[er.ForbiddenCode])
}

func writeBadRequest(w http.ResponseWriter, err error) {
	api.ErrorJSON(w, int(er.BadRequestCode), err, er.ErrStrMap[er.BadRequestCode])
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, er.Newf(er.BadRequestCode, "invalid %s", name)
	}
	return uint(id), nil
}

// parsePaging 解析limit/offset, 沒給用預設值
func parsePaging(r *http.Request) (limit, offset int) {
	limit = constants.DefaultPagingLimit
	offset = constants.DefaultPagingOffset
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// readImageFile 從multipart form取出圖片bytes, 沒附檔回傳nil
func readImageFile(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, er.New(er.BadRequestCode, "invalid multipart form")
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, er.New(er.BadRequestCode, "invalid image file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, er.New(er.BadRequestCode, "read image file failed")
	}
	if len(data) > maxImageSize {
		return nil, er.New(er.BadRequestCode, "image file too large")
	}
	return data, nil
}

// abilityResolver 依請求的token claims載入使用者角色並編譯能力
// 匿名請求回傳匿名能力而不是錯誤
type abilityResolver struct {
	userService service.IUserService
}

func (a *abilityResolver) resolve(ctx context.Context) (*authz.Ability, *model.User, error) {
	claims := util.GetTokenClaimsFromContext(ctx)
	if claims == nil {
		return authz.NewAbility(nil), nil, nil
	}

	user, err := a.userService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		// token有效但使用者已被刪除, 視為未認證
		return nil, nil, er.New(er.UnauthenticatedCode, "user no longer exists")
	}
	return authz.NewAbility(authz.ActorFromUser(user)), user, nil
}

func convertUserToDTO(u *model.User) dto.UserDTO {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r.Value))
	}
	return dto.UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Photo: u.Photo,
		Roles: roles,
	}
}

func convertProductToDTO(p *model.Product) dto.ProductDTO {
	d := dto.ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    p.Quantity,
		Photo:       p.Photo,
		UserID:      p.UserID,
	}
	if p.Seller != nil {
		seller := convertUserToDTO(p.Seller)
		d.Seller = &seller
	}
	return d
}

func convertAuctionToDTO(a *model.Auction) dto.AuctionDTO {
	d := dto.AuctionDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price.String(),
		Photo:       a.Photo,
		BidStart:    a.BidStart,
		BidEnd:      a.BidEnd,
		UserID:      a.UserID,
	}
	if a.Seller != nil {
		seller := convertUserToDTO(a.Seller)
		d.Seller = &seller
	}
	return d
}

func convertBidToDTO(b *model.Bid) dto.BidDTO {
	d := dto.BidDTO{
		ID:        b.ID,
		Amount:    b.Amount.String(),
		Time:      b.Time,
		UserID:    b.UserID,
		AuctionID: b.AuctionID,
	}
	if b.Bidder != nil {
		bidder := convertUserToDTO(b.Bidder)
		d.Bidder = &bidder
	}
	return d
}

func convertOrderItemToDTO(item *model.OrderItem) dto.OrderItemDTO {
	d := dto.OrderItemDTO{
		ID:          item.ID,
		Price:       item.Price.String(),
		Quantity:    item.Quantity,
		OrderStatus: string(item.OrderStatus),
		ProductID:   item.ProductID,
		OrderID:     item.OrderID,
	}
	if item.Product != nil {
		p := convertProductToDTO(item.Product)
		d.Product = &p
	}
	return d
}

func convertOrderToDTO(o *model.Order) dto.OrderDTO {
	items := make([]dto.OrderItemDTO, 0, len(o.OrderItems))
	for i := range o.OrderItems {
		items = append(items, convertOrderItemToDTO(&o.OrderItems[i]))
	}
	return dto.OrderDTO{
		ID:                o.ID,
		TotalSum:          o.TotalSum.String(),
		TransactionStatus: string(o.TransactionStatus),
		Country:           o.Country,
		City:              o.City,
		Address:           o.Address,
		Phone:             o.Phone,
		OrderDate:         o.OrderDate,
		DeliveryDate:      o.DeliveryDate,
		UserID:            o.UserID,
		OrderItems:        items,
	}
}

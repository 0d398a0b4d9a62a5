package dto

type ProductDTO struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"` //十進位字串, 避免浮點誤差
	Quantity    int      `json:"quantity"`
	Photo       string   `json:"photo,omitempty"`
	UserID      uint     `json:"userId"`
	Seller      *UserDTO `json:"seller,omitempty"`
}

// CreateProductDTO 走multipart form, 圖片檔與欄位一起送
type CreateProductDTO struct {
	Name        string `json:"name" validate:"required,max=40"`
	Description string `json:"description" validate:"required,max=40"`
	Price       string `json:"price" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateProductDTO struct {
	Name        *string `json:"name" validate:"omitempty,max=40"`
	Description *string `json:"description" validate:"omitempty,max=40"`
	Price       *string `json:"price"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
}

package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // buyer / seller
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateProductRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price"` // decimal as string
}

type InitiatePaymentRequest struct {
	ProductID string `json:"product_id"`
	Reference string `json:"reference"` // gateway correlation id
	Amount    string `json:"amount"`    // decimal as string; gateway-settled amount wins
}

type ConfirmOrderRequest struct {
	Party string `json:"party"` // buyer / seller
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

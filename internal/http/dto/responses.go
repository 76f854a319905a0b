package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type ConfirmResponse struct {
	OK       bool `json:"ok"`
	Order    any  `json:"order"`
	Released bool `json:"released"`
}

type WalletResponse struct {
	SellerID string `json:"seller_id"`
	Balance  string `json:"balance"`
}

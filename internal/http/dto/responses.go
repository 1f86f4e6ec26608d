package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type AuthResponse struct {
	Token         string `json:"token"`
	WalletAddress string `json:"walletAddress"`
	IsAdmin       bool   `json:"isAdmin"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

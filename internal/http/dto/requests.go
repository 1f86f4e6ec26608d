package dto

type ConnectWalletRequest struct {
	WalletAddress string  `json:"walletAddress"`
	Signature     string  `json:"signature"`
	Message       string  `json:"message"`
	Email         *string `json:"email,omitempty"`
}

type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty"`
}

type CreateEscrowRequest struct {
	ProductID    string  `json:"productId"`
	Amount       float64 `json:"amount"`
	PaymentToken string  `json:"paymentToken"`
	Quantity     int     `json:"quantity"`
}

type PatchEscrowRequest struct {
	Status          string `json:"status"`
	ContractAddress string `json:"contractAddress"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type SendMessageRequest struct {
	ProductID  string  `json:"productId"`
	ReceiverID *string `json:"receiverId,omitempty"`
	Body       string  `json:"body"`
}

package models

// PaystackResponse represents the envelope returned by the Paystack
// transaction verify endpoint
type PaystackResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    PaystackTransaction `json:"data"`
}

// PaystackTransaction carries the fields of the verified transaction we
// actually look at. Status is "success" for a settled payment; anything
// else ("failed", "abandoned", "pending", ...) is not an authorization.
type PaystackTransaction struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

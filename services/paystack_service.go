package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/rescuenear/rescuenear_backend/models"
)

const paystackBaseURL = "https://api.paystack.co"

// PaymentVerifier asks the external payment authority for a transaction's
// status. The authority is the single source of truth for authorization;
// its answer is fetched fresh on every call and never cached.
type PaymentVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (string, error)
}

// PaystackService handles interactions with the Paystack API
type PaystackService struct {
	client  *resty.Client
	baseURL string
	secret  string
}

// NewPaystackService creates a Paystack client configured from the
// PAYSTACK_SECRET_KEY environment variable
func NewPaystackService() *PaystackService {
	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		log.Printf("WARNING: PAYSTACK_SECRET_KEY is missing, payment verification will fail")
	}

	return &PaystackService{
		client:  resty.New(),
		baseURL: paystackBaseURL,
		secret:  secret,
	}
}

// NewPaystackServiceWithBaseURL creates a Paystack client pointed at a
// custom base URL, used against sandbox or local test servers
func NewPaystackServiceWithBaseURL(baseURL, secret string) *PaystackService {
	return &PaystackService{
		client:  resty.New(),
		baseURL: baseURL,
		secret:  secret,
	}
}

// VerifyTransaction performs a single synchronous verify round trip and
// returns the transaction status reported by Paystack. Transport failures
// and non-2xx answers are returned as errors; there are no retries.
func (s *PaystackService) VerifyTransaction(ctx context.Context, reference string) (string, error) {
	if s.secret == "" {
		return "", fmt.Errorf("missing Paystack credentials. Please set PAYSTACK_SECRET_KEY environment variable")
	}

	var verifyResp models.PaystackResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.secret).
		SetResult(&verifyResp).
		Get(fmt.Sprintf("%s/transaction/verify/%s", s.baseURL, reference))
	if err != nil {
		return "", fmt.Errorf("failed to reach Paystack: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paystack verify error: %s", resp.Status())
	}
	if !verifyResp.Status {
		return "", fmt.Errorf("paystack verify rejected: %s", verifyResp.Message)
	}

	return verifyResp.Data.Status, nil
}

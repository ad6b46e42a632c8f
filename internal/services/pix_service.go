package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"boost-service/internal/config"
	"boost-service/pkg/common"
)

// ChargeRequest is everything the provider needs for an expiring PIX QR code.
type ChargeRequest struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	TaxID     string  `json:"taxId"`
	Phone     string  `json:"phone"`
	ExpiresIn int     `json:"expiresIn"` // seconds
}

type Charge struct {
	ID        string    `json:"id"`
	QRCode    string    `json:"qrCode"`
	CopyPaste string    `json:"copyPaste"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PayoutRequest struct {
	Reference  string  `json:"reference"`
	Amount     float64 `json:"amount"`
	PixKey     string  `json:"pixKey"`
	PixKeyType string  `json:"pixKeyType"`
}

type PayoutReceipt struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Receipt       string `json:"receipt"`
}

// PixAPI is the provider boundary. Order cancellation, payment creation and
// payouts go through it; tests substitute a fake.
type PixAPI interface {
	CreateCharge(req ChargeRequest) (*Charge, error)
	CheckStatus(providerID string) (string, error)
	Refund(providerID string, amount float64) error
	CreateWithdrawal(req PayoutRequest) (*PayoutReceipt, error)
}

// PixService talks to the PIX payment provider's REST API.
type PixService struct {
	BaseURL       string
	ApiKey        string
	WebhookSecret string
}

func NewPixService(cfg *config.Config) *PixService {
	return &PixService{
		BaseURL:       cfg.PixBaseURL,
		ApiKey:        cfg.PixApiKey,
		WebhookSecret: cfg.PixWebhookSecret,
	}
}

func (s *PixService) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + s.ApiKey,
		"Accept":        "application/json",
	}
}

func (s *PixService) CreateCharge(req ChargeRequest) (*Charge, error) {
	var charge Charge
	err := common.PostJSON(fmt.Sprintf("%s/v1/pix/qrcodes", s.BaseURL), req, s.headers(), &charge)
	if err != nil {
		return nil, fmt.Errorf("pix create charge: %w", err)
	}
	return &charge, nil
}

func (s *PixService) CheckStatus(providerID string) (string, error) {
	var charge Charge
	err := common.GetJSON(fmt.Sprintf("%s/v1/pix/qrcodes/%s", s.BaseURL, providerID), s.headers(), &charge)
	if err != nil {
		return "", fmt.Errorf("pix check status: %w", err)
	}
	return charge.Status, nil
}

func (s *PixService) Refund(providerID string, amount float64) error {
	payload := map[string]interface{}{"amount": amount}
	err := common.PostJSON(fmt.Sprintf("%s/v1/pix/qrcodes/%s/refund", s.BaseURL, providerID), payload, s.headers(), nil)
	if err != nil {
		return fmt.Errorf("pix refund: %w", err)
	}
	return nil
}

func (s *PixService) CreateWithdrawal(req PayoutRequest) (*PayoutReceipt, error) {
	var receipt PayoutReceipt
	err := common.PostJSON(fmt.Sprintf("%s/v1/pix/withdrawals", s.BaseURL), req, s.headers(), &receipt)
	if err != nil {
		return nil, fmt.Errorf("pix create withdrawal: %w", err)
	}
	return &receipt, nil
}

// VerifySignature checks the provider's HMAC-SHA256 signature over the raw
// webhook body. An unset secret disables the check (test environments).
func (s *PixService) VerifySignature(body []byte, signature string) bool {
	if s.WebhookSecret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"github.com/otterfood/storefront-app/models"
)

// QrisConfig holds the payment gateway credentials and merchant identity.
type QrisConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
	MerchantName string
	Acquirer     string
}

// QrisService wraps the Midtrans Core API for QRIS charges. The gateway is
// treated as opaque: QR generation and settlement happen entirely on its
// side, the storefront only stores what it returns.
type QrisService struct {
	config *QrisConfig
	client coreapi.Client
}

var (
	qrisService *QrisService
	qrisOnce    sync.Once
)

// GetQrisService returns the singleton configured from environment variables.
func GetQrisService() *QrisService {
	qrisOnce.Do(func() {
		config := &QrisConfig{
			ServerKey:    os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey:    os.Getenv("MIDTRANS_CLIENT_KEY"),
			IsProduction: os.Getenv("MIDTRANS_ENV") == "production",
			MerchantName: os.Getenv("MIDTRANS_MERCHANT_NAME"),
			Acquirer:     os.Getenv("MIDTRANS_QRIS_ACQUIRER"),
		}
		if config.MerchantName == "" {
			config.MerchantName = "Otter Storefront"
		}
		if config.Acquirer == "" {
			config.Acquirer = "gojek"
		}
		qrisService = NewQrisService(config)
	})
	return qrisService
}

// NewQrisService creates a new instance of QrisService.
func NewQrisService(config *QrisConfig) *QrisService {
	s := &QrisService{config: config}

	env := midtrans.Sandbox
	if config.IsProduction {
		env = midtrans.Production
	}
	s.client.New(config.ServerKey, env)

	return s
}

// ValidateConfig validates the gateway configuration.
func (s *QrisService) ValidateConfig() error {
	if s.config.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not set")
	}
	if s.config.ClientKey == "" {
		return fmt.Errorf("MIDTRANS_CLIENT_KEY is not set")
	}
	return nil
}

// QrisCharge is the subset of the gateway response the storefront stores.
type QrisCharge struct {
	ReferenceID string
	QRCode      string
	QRImageURL  string
	ExpiresAt   *time.Time
}

// CreateCharge opens a QRIS transaction for the order's grand total.
func (s *QrisService) CreateCharge(order models.Order) (*QrisCharge, error) {
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.PaymentReference(),
			GrossAmt: order.Total,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    order.PaymentReference(),
				Name:  "Order Payment",
				Price: order.Total,
				Qty:   1,
			},
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FName: order.CustomerName,
			Email: order.CustomerEmail,
		},
		Qris: &coreapi.QrisDetails{Acquirer: s.config.Acquirer},
	}

	resp, midErr := s.client.ChargeTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans charge: %w", midErr)
	}

	charge := &QrisCharge{
		ReferenceID: resp.TransactionID,
		QRCode:      resp.QRString,
	}
	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			charge.QRImageURL = action.URL
			break
		}
	}
	if expiry, err := time.ParseInLocation("2006-01-02 15:04:05", resp.ExpiryTime, time.Local); err == nil {
		charge.ExpiresAt = &expiry
	}

	return charge, nil
}

// CheckStatus asks the gateway for a transaction's current state and maps it
// to a storefront payment status.
func (s *QrisService) CheckStatus(reference string) (string, error) {
	resp, midErr := s.client.CheckTransaction(reference)
	if midErr != nil {
		return "", fmt.Errorf("midtrans status: %w", midErr)
	}
	return MapTransactionStatus(resp.TransactionStatus), nil
}

// ValidateSignature checks a gateway callback's SHA-512 signature.
func (s *QrisService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	payload := fmt.Sprintf("%s%s%s%s", orderID, statusCode, grossAmount, s.config.ServerKey)
	hash := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(hash[:]) == signature
}

// MapTransactionStatus maps a Midtrans transaction status to internal status.
func MapTransactionStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return PaymentStatusSuccess
	case "pending", "authorize":
		return PaymentStatusPending
	case "deny", "cancel", "failure":
		return PaymentStatusFailed
	case "expire":
		return PaymentStatusExpired
	default:
		return "unknown"
	}
}

package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/utils"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCancelled = "cancelled"
)

// Order statuses
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCancelled      = "cancelled"
	OrderStatusCompleted      = "completed"
)

// PaymentService keeps payment and order status in sync.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

func (s *PaymentService) GetPaymentByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) GetPaymentByOrderID(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus updates a payment and its order inside one
// transaction, so the storefront never shows a paid order with a pending
// payment or the reverse.
func (s *PaymentService) UpdatePaymentStatus(paymentID uint, status string) error {
	tx := s.db.Begin()

	var payment models.Payment
	if err := tx.First(&payment, paymentID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find payment: %w", err)
	}

	payment.Status = status
	if status == PaymentStatusSuccess && payment.PaymentTime == nil {
		now := time.Now()
		payment.PaymentTime = &now
	}
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	var order models.Order
	if err := tx.First(&order, payment.OrderID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find order: %w", err)
	}

	switch status {
	case PaymentStatusSuccess:
		order.Status = OrderStatusPaid
	case PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCancelled:
		order.Status = OrderStatusCancelled
	}

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// StartTimeoutChecker runs the expiry sweep in the background.
func (s *PaymentService) StartTimeoutChecker() {
	go s.paymentTimeoutChecker()
	utils.InfoLogger.Println("Payment timeout checker started")
}

func (s *PaymentService) paymentTimeoutChecker() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.CheckExpiredPayments()
	}
}

// CheckExpiredPayments expires pending payments whose gateway deadline has
// passed and re-checks the gateway for payments close to that deadline, in
// case a settlement callback was missed.
func (s *PaymentService) CheckExpiredPayments() {
	var payments []models.Payment
	if err := s.db.Where("status = ?", PaymentStatusPending).Find(&payments).Error; err != nil {
		utils.ErrorLogger.Printf("Error checking expired payments: %v", err)
		return
	}

	now := time.Now()
	for _, payment := range payments {
		if payment.ExpiredAt == nil || payment.ExpiredAt.IsZero() {
			continue
		}

		if now.After(*payment.ExpiredAt) {
			if err := s.UpdatePaymentStatus(payment.ID, PaymentStatusExpired); err != nil {
				utils.ErrorLogger.Printf("Error expiring payment %d: %v", payment.ID, err)
				continue
			}
			utils.InfoLogger.Printf("Payment %d expired and order %d cancelled", payment.ID, payment.OrderID)
			continue
		}

		// Close to expiry: ask the gateway for the truth.
		if now.After(payment.ExpiredAt.Add(-10 * time.Minute)) {
			status, err := GetQrisService().CheckStatus(payment.ReferenceID)
			if err != nil {
				utils.ErrorLogger.Printf("Error checking transaction status for payment %d: %v", payment.ID, err)
				continue
			}
			if status != payment.Status && status != "unknown" {
				if err := s.UpdatePaymentStatus(payment.ID, status); err != nil {
					utils.ErrorLogger.Printf("Error syncing payment %d from gateway: %v", payment.ID, err)
					continue
				}
				utils.InfoLogger.Printf("Updated payment %d status to %s from gateway", payment.ID, status)
			}
		}
	}
}

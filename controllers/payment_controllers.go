package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/services"
	"github.com/otterfood/storefront-app/utils"
	"github.com/otterfood/storefront-app/ws"
)

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{
		DB:       db,
		Payments: services.NewPaymentService(db),
	}
}

// CreatePayment -> open a QRIS charge for a pending order. Calling it again
// while a pending charge exists returns that charge instead of opening a
// second one.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := pc.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.SessionKey != middlewares.SessionKey(c) {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	if order.Status != services.OrderStatusPendingPayment {
		utils.RespondError(c, http.StatusConflict, errors.New("order is not awaiting payment"))
		return
	}

	if existing, err := pc.Payments.GetPaymentByOrderID(order.ID); err == nil &&
		existing.Status == services.PaymentStatusPending {
		utils.RespondJSON(c, http.StatusOK, "Payment already pending", existing)
		return
	}

	qris := services.GetQrisService()
	if err := qris.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Payment gateway misconfigured: %v", err)
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("payment gateway unavailable"))
		return
	}

	charge, err := qris.CreateCharge(order)
	if err != nil {
		utils.ErrorLogger.Printf("QRIS charge failed for order %d: %v", order.ID, err)
		utils.RespondError(c, http.StatusBadGateway, errors.New("failed to create payment"))
		return
	}

	payment := models.Payment{
		OrderID:       order.ID,
		Amount:        order.Total,
		Status:        services.PaymentStatusPending,
		PaymentMethod: "qris",
		ReferenceID:   charge.ReferenceID,
		QRCode:        charge.QRCode,
		QRImageURL:    charge.QRImageURL,
		ExpiredAt:     charge.ExpiresAt,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("QRIS payment %d opened for order %d (ref=%s)",
		payment.ID, order.ID, payment.ReferenceID)
	ws.BroadcastPaymentPending(order, payment)

	utils.RespondJSON(c, http.StatusCreated, "Payment created", payment)
}

// GetPaymentStatus -> current payment state; a pending payment is re-checked
// against the gateway first so the customer never waits on the callback.
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := pc.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.SessionKey != middlewares.SessionKey(c) {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	payment, err := pc.Payments.GetPaymentByOrderID(order.ID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no payment for this order"))
		return
	}

	if payment.Status == services.PaymentStatusPending {
		if status, err := services.GetQrisService().CheckStatus(order.PaymentReference()); err == nil &&
			status != payment.Status && status != "unknown" {
			if err := pc.Payments.UpdatePaymentStatus(payment.ID, status); err == nil {
				payment.Status = status
				pc.DB.First(&order, order.ID)
				ws.BroadcastPaymentUpdate(order, *payment)
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", payment)
}

// PaymentCallback -> server-to-server notification from the gateway. The
// SHA-512 signature is verified before anything is trusted.
func (pc *PaymentController) PaymentCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
		TransactionID     string `json:"transaction_id"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	qris := services.GetQrisService()
	if !qris.ValidateSignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.ErrorLogger.Printf("Payment callback with invalid signature for %s", notif.OrderID)
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	orderID, err := parsePaymentReference(notif.OrderID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Payments.GetPaymentByOrderID(orderID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	status := services.MapTransactionStatus(notif.TransactionStatus)
	if status == "unknown" {
		utils.ErrorLogger.Printf("Unhandled transaction status %q for %s", notif.TransactionStatus, notif.OrderID)
		utils.RespondJSON(c, http.StatusOK, "Notification ignored", nil)
		return
	}

	if err := pc.Payments.UpdatePaymentStatus(payment.ID, status); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var order models.Order
	if err := pc.DB.First(&order, orderID).Error; err == nil {
		payment.Status = status
		ws.BroadcastPaymentUpdate(order, *payment)
	}

	utils.InfoLogger.Printf("Payment %d moved to %s via callback", payment.ID, status)
	utils.RespondJSON(c, http.StatusOK, "Notification processed", nil)
}

// parsePaymentReference recovers the order id from a gateway order reference
// of the form OTTER-<restaurant_id>-<order_id>.
func parsePaymentReference(reference string) (uint, error) {
	var restaurantID, orderID uint
	if _, err := fmt.Sscanf(reference, "OTTER-%d-%d", &restaurantID, &orderID); err != nil {
		return 0, fmt.Errorf("malformed payment reference %q", reference)
	}
	return orderID, nil
}

// GetAllPayments -> staff dashboard listing
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	query := pc.DB.Preload("Order").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

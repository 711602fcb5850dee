package Controllers_test

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/controllers"
	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/utils"
)

const testServerKey = "SB-Mid-server-test"

func setupPaymentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(middlewares.SessionMiddleware())

	paymentCtrl := controllers.NewPaymentController(db)
	router.POST("/payments/callback", paymentCtrl.PaymentCallback)
	router.GET("/orders/:order_id/payment", paymentCtrl.GetPaymentStatus)
	return router
}

func callbackSignature(orderID, statusCode, grossAmount string) string {
	hash := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(hash[:])
}

func TestPaymentCallback(t *testing.T) {
	os.Setenv("MIDTRANS_SERVER_KEY", testServerKey)
	os.Setenv("MIDTRANS_CLIENT_KEY", "SB-Mid-client-test")

	utils.InitLogger()
	db := setupTestDBForCarts("payment_callback")
	db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderItemOption{}, &models.Payment{})
	router := setupPaymentRouter(db)

	order := models.Order{
		ID:           42,
		RestaurantID: 1,
		SessionKey:   "sess-pay",
		Status:       "pending_payment",
		Total:        57500,
	}
	db.Create(&order)
	payment := models.Payment{
		OrderID:       order.ID,
		Amount:        order.Total,
		Status:        "pending",
		PaymentMethod: "qris",
		ReferenceID:   "mid-trx-1",
	}
	db.Create(&payment)

	reference := order.PaymentReference()
	assert.Equal(t, "OTTER-1-42", reference)

	// Tampered signature is rejected
	notif := map[string]interface{}{
		"order_id":           reference,
		"status_code":        "200",
		"gross_amount":       "57500.00",
		"signature_key":      "bogus",
		"transaction_status": "settlement",
		"transaction_id":     "mid-trx-1",
	}
	payloadBytes, _ := json.Marshal(notif)
	req, _ := http.NewRequest("POST", "/payments/callback", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid settlement marks the payment and order paid
	notif["signature_key"] = callbackSignature(reference, "200", "57500.00")
	payloadBytes, _ = json.Marshal(notif)
	req, _ = http.NewRequest("POST", "/payments/callback", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var updatedPayment models.Payment
	assert.NoError(t, db.First(&updatedPayment, payment.ID).Error)
	assert.Equal(t, "success", updatedPayment.Status)
	assert.NotNil(t, updatedPayment.PaymentTime)

	var updatedOrder models.Order
	assert.NoError(t, db.First(&updatedOrder, order.ID).Error)
	assert.Equal(t, "paid", updatedOrder.Status)
}

func TestPaymentCallbackUnknownReference(t *testing.T) {
	os.Setenv("MIDTRANS_SERVER_KEY", testServerKey)
	os.Setenv("MIDTRANS_CLIENT_KEY", "SB-Mid-client-test")

	utils.InitLogger()
	db := setupTestDBForCarts("payment_unknown")
	db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderItemOption{}, &models.Payment{})
	router := setupPaymentRouter(db)

	notif := map[string]interface{}{
		"order_id":           "OTTER-1-999",
		"status_code":        "200",
		"gross_amount":       "10000.00",
		"signature_key":      callbackSignature("OTTER-1-999", "200", "10000.00"),
		"transaction_status": "settlement",
		"transaction_id":     "mid-trx-x",
	}
	payloadBytes, _ := json.Marshal(notif)
	req, _ := http.NewRequest("POST", "/payments/callback", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPaymentStatusScopedToSession(t *testing.T) {
	os.Setenv("MIDTRANS_SERVER_KEY", testServerKey)
	os.Setenv("MIDTRANS_CLIENT_KEY", "SB-Mid-client-test")

	utils.InitLogger()
	db := setupTestDBForCarts("payment_scope")
	db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderItemOption{}, &models.Payment{})
	router := setupPaymentRouter(db)

	order := models.Order{
		ID:           7,
		RestaurantID: 1,
		SessionKey:   "sess-owner",
		Status:       "paid",
		Total:        10000,
	}
	db.Create(&order)
	db.Create(&models.Payment{
		OrderID: order.ID,
		Amount:  order.Total,
		Status:  "success",
	})

	req, _ := http.NewRequest("GET", "/orders/7/payment", nil)
	req.Header.Set("X-Session-Key", "sess-owner")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "success", data["status"])

	req, _ = http.NewRequest("GET", "/orders/7/payment", nil)
	req.Header.Set("X-Session-Key", "sess-other")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

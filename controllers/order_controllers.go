package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/cart"
	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/services"
	"github.com/otterfood/storefront-app/utils"
	"github.com/otterfood/storefront-app/ws"
)

type OrderController struct {
	DB    *gorm.DB
	Carts *CartController
}

func NewOrderController(db *gorm.DB, carts *CartController) *OrderController {
	return &OrderController{DB: db, Carts: carts}
}

// Checkout -> turn the session's cart for this restaurant into an order.
// Line items are snapshotted (name, unit price, options) so later menu edits
// never rewrite the order. The cart is cleared once the order is stored.
func (oc *OrderController) Checkout(c *gin.Context) {
	engine, restaurant, err := oc.Carts.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !restaurant.IsOpen {
		utils.RespondError(c, http.StatusConflict, errors.New("restaurant is currently closed"))
		return
	}

	type request struct {
		CustomerName  string `json:"customer_name" binding:"required"`
		CustomerEmail string `json:"customer_email" binding:"required,email"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items := engine.Items()
	if len(items) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cart is empty"))
		return
	}
	totals := engine.Totals()

	order := models.Order{
		RestaurantID:  restaurant.ID,
		SessionKey:    middlewares.SessionKey(c),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        services.OrderStatusPendingPayment,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		ServiceFee:    totals.ServiceFee,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
	}
	for _, item := range items {
		order.OrderItems = append(order.OrderItems, snapshotItem(item))
	}

	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	engine.ClearCart()

	utils.InfoLogger.Printf("Order %d created for restaurant %d (total=%s)",
		order.ID, order.RestaurantID, utils.FormatRupiah(order.Total))
	ws.BroadcastOrderUpdate(order)

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// snapshotItem copies one cart row into its order-item form.
func snapshotItem(item cart.LineItem) models.OrderItem {
	orderItem := models.OrderItem{
		MenuID:    item.MenuID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice() + item.OptionsTotal(),
		Quantity:  item.Quantity,
		Note:      item.Note,
		LineTotal: item.LineTotal(),
	}
	for _, opts := range item.SelectedOptions {
		for _, opt := range opts {
			orderItem.Options = append(orderItem.Options, models.OrderItemOption{
				OptionID:     opt.ID,
				Name:         opt.Name,
				CategoryName: opt.CategoryName,
				Price:        opt.UnitPrice(),
			})
		}
	}
	return orderItem
}

// GetOrderByID -> order detail; customers may only see their own session's
// orders, staff see everything.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems.Options").Preload("Restaurant").
		First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if _, isStaff := c.Get("user_id"); !isStaff {
		if order.SessionKey != middlewares.SessionKey(c) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetSessionOrders -> the customer's own order history
func (oc *OrderController) GetSessionOrders(c *gin.Context) {
	sessionKey := middlewares.SessionKey(c)
	if sessionKey == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing session key"))
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems.Options").Preload("Restaurant").
		Where("session_key = ?", sessionKey).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetAllOrders -> staff dashboard listing, optionally filtered by status
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> staff moves an order through its lifecycle
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Status {
	case services.OrderStatusPendingPayment,
		services.OrderStatusPaid,
		services.OrderStatusCancelled,
		services.OrderStatusCompleted:
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order status"))
		return
	}

	order.Status = req.Status
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ws.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

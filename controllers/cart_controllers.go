package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/cart"
	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/utils"
)

// CartController exposes the cart engine over HTTP. One engine per storefront
// session, hydrated lazily from its database snapshot and cached for the
// process lifetime; the engine itself persists every mutation back.
type CartController struct {
	DB      *gorm.DB
	mu      sync.Mutex
	engines map[string]*cart.Engine
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{
		DB:      db,
		engines: make(map[string]*cart.Engine),
	}
}

// engineFor returns the session's engine, creating and hydrating it on first
// use.
func (cc *CartController) engineFor(sessionKey string) *cart.Engine {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if engine, ok := cc.engines[sessionKey]; ok {
		return engine
	}
	engine := cart.New(cart.NewSessionStorage(cc.DB, sessionKey))
	cc.engines[sessionKey] = engine
	return engine
}

// engineForRestaurant resolves the restaurant from the URL slug and activates
// it on the session's engine.
func (cc *CartController) engineForRestaurant(c *gin.Context) (*cart.Engine, *models.Restaurant, error) {
	sessionKey := middlewares.SessionKey(c)
	if sessionKey == "" {
		return nil, nil, errors.New("missing session key")
	}

	var restaurant models.Restaurant
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&restaurant).Error; err != nil {
		return nil, nil, errors.New("restaurant not found")
	}

	engine := cc.engineFor(sessionKey)
	engine.SetRestaurant(&cart.RestaurantInfo{
		ID:                restaurant.ID,
		TaxPercentage:     restaurant.TaxPercentage,
		ServicePercentage: restaurant.ServicePercentage,
	})
	return engine, &restaurant, nil
}

// cartState is the response body every cart mutation returns, so the PWA can
// re-render without a follow-up fetch.
func cartState(engine *cart.Engine) gin.H {
	totals := engine.Totals()
	return gin.H{
		"items":      engine.Items(),
		"item_count": engine.ItemCount(),
		"totals":     totals,
	}
}

// GetCart -> current cart contents and totals for one restaurant
func (cc *CartController) GetCart(c *gin.Context) {
	engine, _, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart contents", cartState(engine))
}

type cartItemRequest struct {
	MenuID   uint            `json:"menu_id" binding:"required"`
	Quantity int             `json:"quantity"`
	Note     string          `json:"note"`
	Options  map[uint][]uint `json:"options"` // category_id -> chosen option ids
}

// resolveSelection maps the requested option ids onto the menu's own option
// definitions and enforces each category's min/max bounds. Unknown categories
// or options are rejected outright.
func resolveSelection(menu models.Menu, req cartItemRequest) (map[uint][]models.MenuOption, error) {
	categories := make(map[uint]models.MenuOptionCategory, len(menu.OptionCategories))
	for _, cat := range menu.OptionCategories {
		categories[cat.ID] = cat
	}

	selected := make(map[uint][]models.MenuOption)
	for categoryID, optionIDs := range req.Options {
		cat, ok := categories[categoryID]
		if !ok {
			return nil, fmt.Errorf("unknown option category %d", categoryID)
		}
		for _, optionID := range optionIDs {
			found := false
			for _, opt := range cat.Options {
				if opt.ID == optionID {
					selected[categoryID] = append(selected[categoryID], opt)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("unknown option %d in category %q", optionID, cat.Name)
			}
		}
	}

	for _, cat := range menu.OptionCategories {
		count := len(selected[cat.ID])
		if count < cat.MinAmount {
			return nil, fmt.Errorf("category %q requires at least %d option(s)", cat.Name, cat.MinAmount)
		}
		if cat.MaxAmount > 0 && count > cat.MaxAmount {
			return nil, fmt.Errorf("category %q allows at most %d option(s)", cat.Name, cat.MaxAmount)
		}
	}

	return selected, nil
}

// AddItem -> add a customized menu item to the cart. Same-signature rows
// merge inside the engine.
func (cc *CartController) AddItem(c *gin.Context) {
	engine, restaurant, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !restaurant.IsOpen {
		utils.RespondError(c, http.StatusConflict, errors.New("restaurant is currently closed"))
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := cc.DB.Preload("OptionCategories.Options").
		Where("restaurant_id = ?", restaurant.ID).
		First(&menu, req.MenuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	selected, err := resolveSelection(menu, req)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := cart.NewLineItem(menu, selected, req.Note)
	if req.Quantity > 1 {
		item.Quantity = req.Quantity
	}
	engine.AddToCart(item)

	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", cartState(engine))
}

// UpdateItem -> replace an existing row's customization. When the new
// customization matches another row, the engine folds them together.
func (cc *CartController) UpdateItem(c *gin.Context) {
	engine, restaurant, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	itemKey := c.Param("item_key")
	var current *cart.LineItem
	for _, item := range engine.Items() {
		if item.Key == itemKey {
			current = &item
			break
		}
	}
	if current == nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("cart item not found"))
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.MenuID == 0 {
		req.MenuID = current.MenuID
	}

	var menu models.Menu
	if err := cc.DB.Preload("OptionCategories.Options").
		Where("restaurant_id = ?", restaurant.ID).
		First(&menu, req.MenuID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	selected, err := resolveSelection(menu, req)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated := cart.NewLineItem(menu, selected, req.Note)
	updated.Quantity = current.Quantity
	if req.Quantity >= 1 {
		updated.Quantity = req.Quantity
	}

	engine.SetEditing(current)
	engine.UpdateCartItem(updated)

	utils.RespondJSON(c, http.StatusOK, "Cart item updated", cartState(engine))
}

// UpdateQuantity -> set a row's quantity; below 1 is rejected
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	engine, _, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity must be at least 1"))
		return
	}

	engine.UpdateItemQuantity(cart.LineItem{Key: c.Param("item_key")}, req.Quantity)

	utils.RespondJSON(c, http.StatusOK, "Quantity updated", cartState(engine))
}

// RemoveItem -> delete one row
func (cc *CartController) RemoveItem(c *gin.Context) {
	engine, _, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	engine.RemoveItem(cart.LineItem{Key: c.Param("item_key")})

	utils.RespondJSON(c, http.StatusOK, "Item removed", cartState(engine))
}

// ClearCart -> drop the whole cart for this restaurant
func (cc *CartController) ClearCart(c *gin.Context) {
	engine, _, err := cc.engineForRestaurant(c)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	engine.ClearCart()

	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cartState(engine))
}

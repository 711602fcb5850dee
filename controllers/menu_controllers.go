package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetMenusByRestaurant -> the storefront menu listing, grouped by the client
// from the flat category string. Option categories ride along so the item
// detail sheet can render without a second request.
func (mc *MenuController) GetMenusByRestaurant(c *gin.Context) {
	slug := c.Param("slug")

	var restaurant models.Restaurant
	if err := mc.DB.Where("slug = ?", slug).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var menus []models.Menu
	query := mc.DB.Preload("OptionCategories.Options").
		Where("restaurant_id = ?", restaurant.ID)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of menus", gin.H{
		"restaurant": restaurant,
		"menus":      menus,
	})
}

// GetMenuByID -> detail for the add-to-cart sheet
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	var menu models.Menu
	if err := mc.DB.Preload("OptionCategories.Options").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// CreateMenu -> admin only
func (mc *MenuController) CreateMenu(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	type optionReq struct {
		Name          string `json:"name" binding:"required"`
		Price         int64  `json:"price"`
		DiscountPrice *int64 `json:"discount_price"`
	}
	type categoryReq struct {
		Name      string      `json:"name" binding:"required"`
		Type      string      `json:"type"`
		MinAmount int         `json:"min_amount"`
		MaxAmount int         `json:"max_amount"`
		Options   []optionReq `json:"options"`
	}
	type request struct {
		RestaurantID     uint          `json:"restaurant_id" binding:"required"`
		Category         string        `json:"category"`
		Name             string        `json:"name" binding:"required"`
		Description      string        `json:"description"`
		Price            int64         `json:"price" binding:"required"`
		DiscountPrice    *int64        `json:"discount_price"`
		ImageUrl         *string       `json:"image_url"`
		Stock            int           `json:"stock"`
		OptionCategories []categoryReq `json:"menu_option_category"`
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		RestaurantID:  req.RestaurantID,
		Category:      req.Category,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ImageUrl:      req.ImageUrl,
		Stock:         req.Stock,
	}
	for _, cat := range req.OptionCategories {
		optCategory := models.MenuOptionCategory{
			Name:      cat.Name,
			Type:      cat.Type,
			MinAmount: cat.MinAmount,
			MaxAmount: cat.MaxAmount,
		}
		if optCategory.Type == "" {
			optCategory.Type = "single"
		}
		for _, opt := range cat.Options {
			optCategory.Options = append(optCategory.Options, models.MenuOption{
				Name:          opt.Name,
				Price:         opt.Price,
				DiscountPrice: opt.DiscountPrice,
			})
		}
		menu.OptionCategories = append(menu.OptionCategories, optCategory)
	}

	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// UpdateMenu -> admin only; scalar fields only, option categories are
// managed through menu re-creation
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	var menu models.Menu
	if err := mc.DB.Preload("OptionCategories.Options").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	type request struct {
		Category      *string `json:"category"`
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		Price         *int64  `json:"price"`
		DiscountPrice *int64  `json:"discount_price"`
		ImageUrl      *string `json:"image_url"`
		Stock         *int    `json:"stock"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Category != nil {
		menu.Category = *req.Category
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.Price != nil {
		menu.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		menu.DiscountPrice = req.DiscountPrice
	}
	if req.ImageUrl != nil {
		menu.ImageUrl = req.ImageUrl
	}
	if req.Stock != nil {
		menu.Stock = *req.Stock
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", menu)
}

// DeleteMenu -> admin only
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	if err := mc.DB.Delete(&models.Menu{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": id})
}

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

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// GetAllRestaurants -> public storefront directory
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := rc.DB.Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantBySlug -> the storefront landing page data
func (rc *RestaurantController) GetRestaurantBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var restaurant models.Restaurant
	if err := rc.DB.Where("slug = ?", slug).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// CreateRestaurant -> admin only
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	type request struct {
		Name              string  `json:"name" binding:"required"`
		Slug              string  `json:"slug" binding:"required"`
		Address           string  `json:"address"`
		ImageUrl          *string `json:"image_url"`
		TaxPercentage     float64 `json:"tax_percentage"`
		ServicePercentage float64 `json:"service_percentage"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		Name:              req.Name,
		Slug:              req.Slug,
		Address:           req.Address,
		ImageUrl:          req.ImageUrl,
		TaxPercentage:     req.TaxPercentage,
		ServicePercentage: req.ServicePercentage,
		IsOpen:            true,
	}

	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant created: %s (slug=%s)", restaurant.Name, restaurant.Slug)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// UpdateRestaurant -> admin only; partial update via pointer fields
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("restaurant_id")
	id, _ := strconv.Atoi(idStr)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	type request struct {
		Name              *string  `json:"name"`
		Address           *string  `json:"address"`
		ImageUrl          *string  `json:"image_url"`
		TaxPercentage     *float64 `json:"tax_percentage"`
		ServicePercentage *float64 `json:"service_percentage"`
		IsOpen            *bool    `json:"is_open"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.ImageUrl != nil {
		restaurant.ImageUrl = req.ImageUrl
	}
	if req.TaxPercentage != nil {
		restaurant.TaxPercentage = *req.TaxPercentage
	}
	if req.ServicePercentage != nil {
		restaurant.ServicePercentage = *req.ServicePercentage
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

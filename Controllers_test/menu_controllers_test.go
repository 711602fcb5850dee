package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/controllers"
	"github.com/otterfood/storefront-app/utils"
)

// asAdmin stands in for the auth middleware on admin routes.
func asAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", "admin")
		c.Next()
	}
}

func setupMenuRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	menuCtrl := controllers.NewMenuController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)

	router.GET("/restaurants/:slug", restaurantCtrl.GetRestaurantBySlug)
	router.GET("/restaurants/:slug/menus", menuCtrl.GetMenusByRestaurant)
	router.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	admin := router.Group("/admin")
	admin.Use(asAdmin())
	admin.POST("/menus", menuCtrl.CreateMenu)
	admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
	admin.PATCH("/restaurants/:restaurant_id", restaurantCtrl.UpdateRestaurant)
	return router
}

func TestStorefrontMenuBrowse(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("menu_browse")
	router := setupMenuRouter(db)

	req, _ := http.NewRequest("GET", "/restaurants/otter-cafe/menus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	menus := data["menus"].([]interface{})
	assert.Len(t, menus, 1)

	menu := menus[0].(map[string]interface{})
	assert.Equal(t, "Iced Otter Latte", menu["name"])
	categories := menu["menu_option_category"].([]interface{})
	assert.Len(t, categories, 2)
	size := categories[0].(map[string]interface{})
	assert.Equal(t, "Size", size["name"])
	assert.Len(t, size["options"].([]interface{}), 2)

	// Unknown slug
	req, _ = http.NewRequest("GET", "/restaurants/nope/menus", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuAdminCRUD(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("menu_crud")
	router := setupMenuRouter(db)

	payload := map[string]interface{}{
		"restaurant_id": 1,
		"category":      "Food",
		"name":          "Otter Rice Bowl",
		"price":         35000,
		"stock":         20,
		"menu_option_category": []map[string]interface{}{
			{
				"name":       "Spice Level",
				"type":       "single",
				"min_amount": 1,
				"max_amount": 1,
				"options": []map[string]interface{}{
					{"name": "Mild", "price": 0},
					{"name": "Hot", "price": 0},
				},
			},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/admin/menus", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &createResp)
	assert.NoError(t, err)
	data := createResp["data"].(map[string]interface{})
	menuID := int(data["id"].(float64))

	url := "/menus/" + strconv.Itoa(menuID)
	req, _ = http.NewRequest("GET", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var detailResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &detailResp)
	assert.NoError(t, err)
	detail := detailResp["data"].(map[string]interface{})
	categories := detail["menu_option_category"].([]interface{})
	assert.Len(t, categories, 1)

	updatePayload := map[string]interface{}{
		"name":  "Otter Rice Bowl XL",
		"price": 42000,
	}
	payloadBytes, _ = json.Marshal(updatePayload)
	req, _ = http.NewRequest("PATCH", "/admin/menus/"+strconv.Itoa(menuID), bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("DELETE", "/admin/menus/"+strconv.Itoa(menuID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRestaurantUpdate(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("restaurant_update")
	router := setupMenuRouter(db)

	payload := map[string]interface{}{
		"tax_percentage": 11.0,
		"is_open":        false,
	}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PATCH", "/admin/restaurants/1", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/restaurants/otter-cafe", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 11.0, data["tax_percentage"])
	assert.Equal(t, false, data["is_open"])
}

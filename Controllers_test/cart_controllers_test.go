package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/controllers"
	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/models"
	"github.com/otterfood/storefront-app/utils"
)

func ptrInt64(v int64) *int64 { return &v }

func setupTestDBForCarts(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Restaurant{},
		&models.Menu{},
		&models.MenuOptionCategory{},
		&models.MenuOption{},
		&models.CartSnapshot{},
	)
	if err != nil {
		panic(err)
	}

	restaurant := models.Restaurant{
		ID:                1,
		Name:              "Otter Cafe",
		Slug:              "otter-cafe",
		TaxPercentage:     10,
		ServicePercentage: 5,
		IsOpen:            true,
	}
	db.Create(&restaurant)

	menu := models.Menu{
		ID:           1,
		RestaurantID: 1,
		Category:     "Drinks",
		Name:         "Iced Otter Latte",
		Price:        20000,
		Stock:        100,
		OptionCategories: []models.MenuOptionCategory{
			{
				ID:        1,
				Name:      "Size",
				Type:      "single",
				MinAmount: 1,
				MaxAmount: 1,
				Options: []models.MenuOption{
					{ID: 1, Name: "Regular", Price: 0},
					{ID: 2, Name: "Large", Price: 3000},
				},
			},
			{
				ID:        2,
				Name:      "Topping",
				Type:      "multiple",
				MinAmount: 0,
				MaxAmount: 2,
				Options: []models.MenuOption{
					{ID: 3, Name: "Boba", Price: 2000},
					{ID: 4, Name: "Grass Jelly", Price: 2500, DiscountPrice: ptrInt64(1500)},
				},
			},
		},
	}
	db.Create(&menu)

	return db
}

func setupCartRouter(db *gorm.DB) (*gin.Engine, *controllers.CartController) {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(middlewares.SessionMiddleware())

	cartCtrl := controllers.NewCartController(db)
	router.GET("/restaurants/:slug/cart", cartCtrl.GetCart)
	router.POST("/restaurants/:slug/cart/items", cartCtrl.AddItem)
	router.PATCH("/restaurants/:slug/cart/items/:item_key", cartCtrl.UpdateItem)
	router.PATCH("/restaurants/:slug/cart/items/:item_key/quantity", cartCtrl.UpdateQuantity)
	router.DELETE("/restaurants/:slug/cart/items/:item_key", cartCtrl.RemoveItem)
	router.DELETE("/restaurants/:slug/cart", cartCtrl.ClearCart)
	return router, cartCtrl
}

func doCartRequest(router *gin.Engine, method, url, session string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		payloadBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(payloadBytes)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Key", session)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cartData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	data, ok := resp["data"].(map[string]interface{})
	assert.True(t, ok, "data response must be a map")
	return data
}

func TestCartAddMergesSameCustomization(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_merge")
	router, _ := setupCartRouter(db)

	payload := map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {1}},
	}

	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-merge", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same menu, same options, same note: merges into the existing row
	w = doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-merge", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := cartData(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(2), data["item_count"])

	// A different size is a different customization: new row
	payload["options"] = map[string][]uint{"1": {2}}
	w = doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-merge", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	data = cartData(t, w)
	items = data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, float64(3), data["item_count"])
}

func TestCartTotals(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_totals")
	router, _ := setupCartRouter(db)

	// Large + Boba + discounted Grass Jelly: 20000 + 3000 + 2000 + 1500 = 26500
	payload := map[string]interface{}{
		"menu_id":  1,
		"quantity": 2,
		"options":  map[string][]uint{"1": {2}, "2": {3, 4}},
	}
	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-totals", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := cartData(t, w)
	totals := data["totals"].(map[string]interface{})
	assert.Equal(t, float64(53000), totals["subtotal"])
	assert.Equal(t, float64(5300), totals["tax"])
	assert.Equal(t, float64(2650), totals["service_fee"])
	assert.Equal(t, float64(0), totals["delivery_fee"])
	assert.Equal(t, float64(60950), totals["total"])
}

func TestCartOptionValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_validation")
	router, _ := setupCartRouter(db)

	// Size requires exactly one choice
	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-valid", map[string]interface{}{
		"menu_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Two sizes exceed the category maximum
	w = doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-valid", map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {1, 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown option id
	w = doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-valid", map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {99}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was added
	w = doCartRequest(router, "GET", "/restaurants/otter-cafe/cart", "sess-valid", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := cartData(t, w)
	assert.Equal(t, float64(0), data["item_count"])
}

func TestCartQuantityAndRemove(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_quantity")
	router, _ := setupCartRouter(db)

	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-qty", map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := cartData(t, w)
	items := data["items"].([]interface{})
	itemKey := items[0].(map[string]interface{})["key"].(string)

	w = doCartRequest(router, "PATCH", "/restaurants/otter-cafe/cart/items/"+itemKey+"/quantity", "sess-qty", map[string]interface{}{
		"quantity": 5,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	assert.Equal(t, float64(5), data["item_count"])

	// Zero quantity is rejected, not treated as removal
	w = doCartRequest(router, "PATCH", "/restaurants/otter-cafe/cart/items/"+itemKey+"/quantity", "sess-qty", map[string]interface{}{
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doCartRequest(router, "DELETE", "/restaurants/otter-cafe/cart/items/"+itemKey, "sess-qty", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	assert.Equal(t, float64(0), data["item_count"])
	totals := data["totals"].(map[string]interface{})
	assert.Equal(t, float64(0), totals["total"])
}

func TestCartUpdateItemFoldsIntoMatchingRow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_update")
	router, _ := setupCartRouter(db)

	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-update", map[string]interface{}{
		"menu_id":  1,
		"quantity": 2,
		"options":  map[string][]uint{"1": {1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-update", map[string]interface{}{
		"menu_id":  1,
		"quantity": 3,
		"options":  map[string][]uint{"1": {2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := cartData(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	largeKey := items[1].(map[string]interface{})["key"].(string)

	// Editing the Large row down to Regular makes it match the first row,
	// so the two rows collapse into one
	w = doCartRequest(router, "PATCH", "/restaurants/otter-cafe/cart/items/"+largeKey, "sess-update", map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {1}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	items = data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(5), data["item_count"])
}

func TestCartSessionIsolation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_isolation")
	router, _ := setupCartRouter(db)

	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-a", map[string]interface{}{
		"menu_id": 1,
		"options": map[string][]uint{"1": {1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doCartRequest(router, "GET", "/restaurants/otter-cafe/cart", "sess-b", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := cartData(t, w)
	assert.Equal(t, float64(0), data["item_count"])
}

func TestCartSurvivesRestart(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForCarts("cart_restart")
	router, _ := setupCartRouter(db)

	w := doCartRequest(router, "POST", "/restaurants/otter-cafe/cart/items", "sess-restart", map[string]interface{}{
		"menu_id":  1,
		"quantity": 3,
		"options":  map[string][]uint{"1": {2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// A fresh controller has no cached engines and must hydrate from the
	// stored snapshot
	freshRouter, _ := setupCartRouter(db)
	w = doCartRequest(freshRouter, "GET", "/restaurants/otter-cafe/cart", "sess-restart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := cartData(t, w)
	assert.Equal(t, float64(3), data["item_count"])
}

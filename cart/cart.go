package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/otterfood/storefront-app/models"
)

// DefaultStorageKey is the well-known key the engine persists carts under.
const DefaultStorageKey = "otter-cart"

// fallbackItemName replaces menu names that are empty after trimming.
const fallbackItemName = "Menu Item"

// SelectedOption is one chosen option on a cart line item, carrying the
// price snapshot taken when the item was added.
type SelectedOption struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	CategoryID    uint   `json:"category_id"`
	CategoryName  string `json:"category_name"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`
}

// UnitPrice returns the effective price: the discounted price when present.
func (o SelectedOption) UnitPrice() int64 {
	if o.DiscountPrice != nil {
		return *o.DiscountPrice
	}
	return o.Price
}

// LineItem is one row in a restaurant's cart. Key is a stable identifier
// assigned at creation and used for every lookup; MenuID stays constant
// across edits of the same underlying menu item.
type LineItem struct {
	Key             string                    `json:"key"`
	MenuID          uint                      `json:"menu_id"`
	Name            string                    `json:"name"`
	Image           string                    `json:"image"`
	Price           int64                     `json:"price"`
	DiscountPrice   *int64                    `json:"discount_price,omitempty"`
	Quantity        int                       `json:"quantity"`
	Note            string                    `json:"note"`
	SelectedOptions map[uint][]SelectedOption `json:"selected_options"`
}

// UnitPrice returns the effective price of the menu item itself, without
// options.
func (li LineItem) UnitPrice() int64 {
	if li.DiscountPrice != nil {
		return *li.DiscountPrice
	}
	return li.Price
}

// OptionsTotal sums the effective price of every selected option across all
// categories.
func (li LineItem) OptionsTotal() int64 {
	var sum int64
	for _, opts := range li.SelectedOptions {
		for _, opt := range opts {
			sum += opt.UnitPrice()
		}
	}
	return sum
}

// LineTotal is (unit price + options) multiplied by quantity.
func (li LineItem) LineTotal() int64 {
	return (li.UnitPrice() + li.OptionsTotal()) * int64(li.Quantity)
}

// Signature derives the key that decides whether two line items represent
// the same customization and must be merged. Option order within a category
// and category order do not matter; the note is an exact-string
// differentiator.
func (li LineItem) Signature() string {
	ids := make([]string, 0, len(li.SelectedOptions))
	for _, opts := range li.SelectedOptions {
		for _, opt := range opts {
			ids = append(ids, strconv.FormatUint(uint64(opt.ID), 10))
		}
	}
	sort.Strings(ids)

	return strings.Join([]string{
		strconv.FormatUint(uint64(li.MenuID), 10),
		strings.Join(ids, ","),
		li.Note,
	}, "|")
}

// RestaurantCart holds the ordered line items of one restaurant's cart. A
// restaurant with zero line items is never retained in the collection.
type RestaurantCart struct {
	RestaurantID uint       `json:"restaurant_id"`
	Items        []LineItem `json:"items"`
}

// RestaurantInfo is the restaurant context mutating operations target. It is
// supplied by the caller; the engine never fetches restaurants itself.
type RestaurantInfo struct {
	ID                uint
	TaxPercentage     float64
	ServicePercentage float64
}

// NewLineItem builds a cart line item from a menu item and the options the
// customer picked per option category, with quantity fixed at 1. Category
// display names are resolved against the menu item's own option-category
// definitions; an unknown category yields an empty name rather than an
// error. Whether the selection honors min/max constraints is the caller's
// responsibility.
func NewLineItem(menu models.Menu, selected map[uint][]models.MenuOption, note string) LineItem {
	name := strings.TrimSpace(menu.Name)
	if name == "" {
		name = fallbackItemName
	}

	image := ""
	if menu.ImageUrl != nil {
		image = *menu.ImageUrl
	}

	options := make(map[uint][]SelectedOption, len(selected))
	for categoryID, opts := range selected {
		categoryName := ""
		for _, cat := range menu.OptionCategories {
			if cat.ID == categoryID {
				categoryName = cat.Name
				break
			}
		}
		for _, opt := range opts {
			options[categoryID] = append(options[categoryID], SelectedOption{
				ID:            opt.ID,
				Name:          opt.Name,
				CategoryID:    categoryID,
				CategoryName:  categoryName,
				Price:         opt.Price,
				DiscountPrice: opt.DiscountPrice,
			})
		}
	}

	return LineItem{
		Key:             uuid.NewString(),
		MenuID:          menu.ID,
		Name:            name,
		Image:           image,
		Price:           menu.Price,
		DiscountPrice:   menu.DiscountPrice,
		Quantity:        1,
		Note:            note,
		SelectedOptions: options,
	}
}

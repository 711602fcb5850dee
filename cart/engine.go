package cart

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine owns every cart a storefront session has open, one per restaurant.
// Mutating operations target the active restaurant set via SetRestaurant and
// are silent no-ops while no restaurant is active: the engine is driven by
// UI event handlers, which may fire before state is ready, and must never
// crash the interaction.
//
// Each successful mutation re-serializes the whole cart collection to the
// injected storage; a storage failure is logged and swallowed.
type Engine struct {
	mu         sync.Mutex
	storage    Storage
	storageKey string
	restaurant *RestaurantInfo
	carts      []RestaurantCart
	editing    *LineItem
	toDelete   *LineItem
}

// New hydrates an engine from storage under DefaultStorageKey. An absent or
// unparseable snapshot yields an empty cart; it is never an error.
func New(storage Storage) *Engine {
	return NewWithKey(storage, DefaultStorageKey)
}

func NewWithKey(storage Storage, key string) *Engine {
	e := &Engine{storage: storage, storageKey: key}
	e.hydrate()
	return e
}

// SetRestaurant supplies the active restaurant context. Passing nil
// deactivates every mutating operation.
func (e *Engine) SetRestaurant(info *RestaurantInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restaurant = info
}

func (e *Engine) Restaurant() *RestaurantInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restaurant
}

// Items returns a copy of the active restaurant's line items.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.cartIndex()
	if idx < 0 {
		return nil
	}
	items := make([]LineItem, len(e.carts[idx].Items))
	copy(items, e.carts[idx].Items)
	return items
}

// ItemCount is the sum of quantities in the active restaurant's cart.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.cartIndex()
	if idx < 0 {
		return 0
	}
	count := 0
	for _, item := range e.carts[idx].Items {
		count += item.Quantity
	}
	return count
}

// Carts returns a copy of the whole collection, across restaurants.
func (e *Engine) Carts() []RestaurantCart {
	e.mu.Lock()
	defer e.mu.Unlock()

	carts := make([]RestaurantCart, len(e.carts))
	for i, c := range e.carts {
		items := make([]LineItem, len(c.Items))
		copy(items, c.Items)
		carts[i] = RestaurantCart{RestaurantID: c.RestaurantID, Items: items}
	}
	return carts
}

// AddToCart inserts a line item into the active restaurant's cart. An item
// whose signature matches an existing row accumulates into that row's
// quantity; otherwise it is appended as a new row.
func (e *Engine) AddToCart(item LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restaurant == nil {
		return
	}
	item = normalize(item)

	idx := e.cartIndex()
	if idx < 0 {
		e.carts = append(e.carts, RestaurantCart{
			RestaurantID: e.restaurant.ID,
			Items:        []LineItem{item},
		})
		e.persist()
		return
	}

	sig := item.Signature()
	items := make([]LineItem, len(e.carts[idx].Items))
	copy(items, e.carts[idx].Items)

	merged := false
	for i, existing := range items {
		if existing.Signature() == sig {
			existing.Quantity += item.Quantity
			items[i] = existing
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	e.carts[idx].Items = items
	e.persist()
}

// UpdateCartItem applies an edit to the line item previously marked via
// SetEditing. When the edit makes the item's signature equal to another
// existing row's, the edited row folds into that row (quantities combine,
// the merge target's other fields stay untouched) so the cart never shows
// two rows with the same customization. The pending-edit reference is
// cleared once the edit has been applied.
func (e *Engine) UpdateCartItem(updated LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restaurant == nil || e.editing == nil {
		return
	}
	idx := e.cartIndex()
	if idx < 0 {
		return
	}

	updated = normalize(updated)
	updated.Key = e.editing.Key
	sig := updated.Signature()

	items := make([]LineItem, len(e.carts[idx].Items))
	copy(items, e.carts[idx].Items)

	editIdx := -1
	mergeIdx := -1
	for i, existing := range items {
		if existing.Key == updated.Key {
			editIdx = i
			continue
		}
		if mergeIdx < 0 && existing.Signature() == sig {
			mergeIdx = i
		}
	}
	if editIdx < 0 {
		// The row under edit no longer exists; drop the stale reference.
		e.editing = nil
		return
	}

	if mergeIdx >= 0 {
		target := items[mergeIdx]
		target.Quantity += updated.Quantity
		items[mergeIdx] = target
		items = append(items[:editIdx], items[editIdx+1:]...)
	} else {
		items[editIdx] = updated
	}

	e.carts[idx].Items = items
	e.editing = nil
	e.persist()
}

// UpdateItemQuantity replaces the quantity of the given line item. A
// quantity below 1 is rejected and leaves the item unchanged.
func (e *Engine) UpdateItemQuantity(item LineItem, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restaurant == nil || quantity < 1 {
		return
	}
	idx := e.cartIndex()
	if idx < 0 {
		return
	}

	items := make([]LineItem, len(e.carts[idx].Items))
	copy(items, e.carts[idx].Items)
	for i, existing := range items {
		if existing.Key == item.Key {
			existing.Quantity = quantity
			items[i] = existing
			e.carts[idx].Items = items
			e.persist()
			return
		}
	}
}

// RemoveItem deletes the given line item from the active restaurant's cart.
// Removing the last item drops the restaurant's entry from the collection
// entirely.
func (e *Engine) RemoveItem(item LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restaurant == nil {
		return
	}
	idx := e.cartIndex()
	if idx < 0 {
		return
	}

	items := make([]LineItem, 0, len(e.carts[idx].Items))
	for _, existing := range e.carts[idx].Items {
		if existing.Key != item.Key {
			items = append(items, existing)
		}
	}

	if len(items) == 0 {
		e.carts = append(e.carts[:idx], e.carts[idx+1:]...)
	} else {
		e.carts[idx].Items = items
	}
	if e.toDelete != nil && e.toDelete.Key == item.Key {
		e.toDelete = nil
	}
	e.persist()
}

// ClearCart drops the active restaurant's entire cart entry and the
// pending-edit reference.
func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restaurant == nil {
		return
	}
	idx := e.cartIndex()
	if idx >= 0 {
		e.carts = append(e.carts[:idx], e.carts[idx+1:]...)
	}
	e.editing = nil
	e.persist()
}

// Totals recomputes the money breakdown for the active restaurant's cart.
// It is derived on demand and never cached; with no restaurant active all
// amounts are zero.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()

	var t Totals
	if e.restaurant == nil {
		return t
	}
	t.TaxPercentage = e.restaurant.TaxPercentage
	t.ServicePercentage = e.restaurant.ServicePercentage

	if idx := e.cartIndex(); idx >= 0 {
		for _, item := range e.carts[idx].Items {
			t.Subtotal += item.LineTotal()
		}
	}

	t.Tax = roundPercent(t.Subtotal, t.TaxPercentage)
	t.ServiceFee = roundPercent(t.Subtotal, t.ServicePercentage)
	t.DeliveryFee = 0
	t.Total = t.Subtotal + t.Tax + t.ServiceFee + t.DeliveryFee
	return t
}

// SetEditing marks the line item a subsequent UpdateCartItem call targets.
func (e *Engine) SetEditing(item *LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = item
}

func (e *Engine) Editing() *LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing
}

// SetItemToDelete marks the line item awaiting delete confirmation in the UI.
func (e *Engine) SetItemToDelete(item *LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toDelete = item
}

func (e *Engine) ItemToDelete() *LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toDelete
}

// cartIndex returns the position of the active restaurant's cart, or -1.
// Callers must hold e.mu.
func (e *Engine) cartIndex() int {
	if e.restaurant == nil {
		return -1
	}
	for i, c := range e.carts {
		if c.RestaurantID == e.restaurant.ID {
			return i
		}
	}
	return -1
}

// normalize fills the defaults AddToCart and UpdateCartItem rely on: a
// stable key, a non-nil options map and an empty note instead of absent.
func normalize(item LineItem) LineItem {
	if item.Key == "" {
		item.Key = uuid.NewString()
	}
	if item.SelectedOptions == nil {
		item.SelectedOptions = map[uint][]SelectedOption{}
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return item
}

func (e *Engine) hydrate() {
	if e.storage == nil {
		return
	}
	blob, err := e.storage.Get(e.storageKey)
	if err != nil {
		logrus.Warnf("cart: read snapshot %q: %v", e.storageKey, err)
		return
	}
	if blob == "" {
		return
	}
	var carts []RestaurantCart
	if err := json.Unmarshal([]byte(blob), &carts); err != nil {
		logrus.Warnf("cart: discarding unparseable snapshot %q: %v", e.storageKey, err)
		return
	}
	e.carts = carts
}

// persist writes the whole collection back to storage, best effort. Callers
// must hold e.mu.
func (e *Engine) persist() {
	if e.storage == nil {
		return
	}
	blob, err := json.Marshal(e.carts)
	if err != nil {
		logrus.Errorf("cart: marshal snapshot: %v", err)
		return
	}
	if err := e.storage.Set(e.storageKey, string(blob)); err != nil {
		logrus.Errorf("cart: persist snapshot: %v", err)
	}
}

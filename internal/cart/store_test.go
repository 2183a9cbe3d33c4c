package cart

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
	"github.com/vladislavdragonenkov/sweetcart/internal/persistence"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/memory"
)

type recordingPersister struct {
	stored domain.Cart
	writes int
}

func (p *recordingPersister) Read() domain.Cart { return p.stored.Clone() }

func (p *recordingPersister) Write(c domain.Cart) {
	p.writes++
	p.stored = c.Clone()
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger.WithField("component", "cart-test")
}

func newTestStore(t *testing.T) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{stored: domain.NewCart()}
	return NewStore(p, testLogger(), nil), p
}

func sweet(id int64, price string, stock int) domain.Sweet {
	return domain.Sweet{
		ID:          id,
		Name:        "sweet",
		Price:       decimal.RequireFromString(price),
		PricingType: domain.PricingPerItem,
		Quantity:    stock,
		IsAvailable: true,
	}
}

func assertTotals(t *testing.T, c domain.Cart, items int, amount string) {
	t.Helper()
	if c.TotalItems != items {
		t.Fatalf("expected totalItems %d, got %d", items, c.TotalItems)
	}
	if !c.TotalAmount.Equal(decimal.RequireFromString(amount)) {
		t.Fatalf("expected totalAmount %s, got %s", amount, c.TotalAmount)
	}
}

func TestStore_AddItemToEmptyCart(t *testing.T) {
	store, p := newTestStore(t)

	got := store.AddItem(sweet(1, "10", 5), 2, "")

	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	assertTotals(t, got, 2, "20.00")
	if p.writes != 1 {
		t.Fatalf("expected one write-through, got %d", p.writes)
	}
	assertTotals(t, p.stored, 2, "20")
}

func TestStore_AddItemMergesExisting(t *testing.T) {
	store, _ := newTestStore(t)
	sw := sweet(1, "10", 5)
	store.AddItem(sw, 2, "")

	got := store.AddItem(sw, 3, "")

	if len(got.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", got.Items[0].Quantity)
	}
	assertTotals(t, got, 5, "50.00")
}

func TestStore_AddItemNotes(t *testing.T) {
	store, _ := newTestStore(t)
	sw := sweet(1, "10", 5)

	store.AddItem(sw, 1, "no nuts")
	got := store.AddItem(sw, 1, "")
	if got.Items[0].Notes != "no nuts" {
		t.Fatalf("empty notes must keep the old ones, got %q", got.Items[0].Notes)
	}

	got = store.AddItem(sw, 1, "gift wrap")
	if got.Items[0].Notes != "gift wrap" {
		t.Fatalf("non-empty notes must overwrite, got %q", got.Items[0].Notes)
	}
}

func TestStore_AddItemDoesNotCheckStock(t *testing.T) {
	store, _ := newTestStore(t)

	got := store.AddItem(sweet(1, "10", 1), 7, "")

	if got.Items[0].Quantity != 7 {
		t.Fatalf("add must be permissive, got quantity %d", got.Items[0].Quantity)
	}
}

func TestStore_AddItemPreservesInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(3, "1", 9), 1, "")
	store.AddItem(sweet(1, "1", 9), 1, "")
	got := store.AddItem(sweet(3, "1", 9), 1, "")

	if got.Items[0].Sweet.ID != 3 || got.Items[1].Sweet.ID != 1 {
		t.Fatalf("unexpected order: %d, %d", got.Items[0].Sweet.ID, got.Items[1].Sweet.ID)
	}
}

func TestStore_ValidateStockExceeded(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 3), 5, "")

	res := store.Validate()

	if res.IsValid {
		t.Fatal("expected invalid cart")
	}
	if len(res.Errors) != 1 || res.Errors[0] != domain.MsgStockExceededItems {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestStore_ValidateEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	res := store.Validate()

	if res.IsValid || len(res.Errors) != 1 || res.Errors[0] != domain.MsgCartEmpty {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStore_UpdateQuantityToZeroRemoves(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "")

	got := store.UpdateQuantity(1, 0)

	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
	assertTotals(t, got, 0, "0")
}

func TestStore_UpdateQuantityNegativeRemoves(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "")
	store.AddItem(sweet(2, "1", 5), 1, "")

	got := store.UpdateQuantity(1, -3)

	if len(got.Items) != 1 || got.Items[0].Sweet.ID != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestStore_UpdateQuantitySetsAbsolute(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "2.50", 5), 2, "")

	got := store.UpdateQuantity(1, 4)

	if got.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", got.Items[0].Quantity)
	}
	assertTotals(t, got, 4, "10.00")
}

func TestStore_ClearResetsEverything(t *testing.T) {
	store, p := newTestStore(t)
	store.AddItem(sweet(1, "5", 9), 2, "")
	store.AddItem(sweet(2, "3", 9), 1, "")

	got := store.Clear()

	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %+v", got.Items)
	}
	assertTotals(t, got, 0, "0")
	if len(p.stored.Items) != 0 {
		t.Fatal("cleared cart must be persisted")
	}
}

func TestStore_NotFoundIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	before := store.AddItem(sweet(1, "10", 5), 2, "keep")

	cases := []struct {
		name string
		op   func() domain.Cart
	}{
		{name: "remove", op: func() domain.Cart { return store.RemoveItem(99) }},
		{name: "update quantity", op: func() domain.Cart { return store.UpdateQuantity(99, 4) }},
		{name: "update notes", op: func() domain.Cart { return store.UpdateNotes(99, "x") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.op()
			if len(got.Items) != 1 || got.Items[0].Quantity != 2 || got.Items[0].Notes != "keep" {
				t.Fatalf("cart changed: %+v", got.Items)
			}
			assertTotals(t, got, before.TotalItems, before.TotalAmount.String())
		})
	}
}

func TestStore_RemoveTwiceEqualsOnce(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "")
	store.AddItem(sweet(2, "1", 5), 1, "")

	once := store.RemoveItem(1)
	twice := store.RemoveItem(1)

	if len(once.Items) != len(twice.Items) || !once.TotalAmount.Equal(twice.TotalAmount) {
		t.Fatalf("remove is not idempotent: %+v vs %+v", once, twice)
	}
}

func TestStore_UpdateNotesCanClear(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 1, "old")

	got := store.UpdateNotes(1, "")

	if got.Items[0].Notes != "" {
		t.Fatalf("expected notes cleared, got %q", got.Items[0].Notes)
	}
}

func TestStore_SyncWithCatalog(t *testing.T) {
	store, p := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "a")
	store.AddItem(sweet(2, "4", 5), 1, "")
	store.AddItem(sweet(3, "7", 5), 1, "")

	repriced := sweet(1, "12", 8)
	unavailable := sweet(2, "4", 5)
	unavailable.IsAvailable = false

	got := store.SyncWithCatalog([]domain.Sweet{repriced, unavailable})

	if len(got.Items) != 1 {
		t.Fatalf("expected only sweet 1 to survive, got %+v", got.Items)
	}
	item := got.Items[0]
	if item.Sweet.ID != 1 || item.Quantity != 2 || item.Notes != "a" {
		t.Fatalf("unexpected surviving item: %+v", item)
	}
	if item.Sweet.Quantity != 8 {
		t.Fatalf("expected fresh stock 8, got %d", item.Sweet.Quantity)
	}
	assertTotals(t, got, 2, "24.00")
	assertTotals(t, p.stored, 2, "24")
}

func TestStore_SyncWithEmptyCatalogDropsAll(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "")

	got := store.SyncWithCatalog(nil)

	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
}

func TestStore_SyncRecordsDroppedItems(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetricsWithRegisterer(reg)
	store := NewStore(&recordingPersister{stored: domain.NewCart()}, testLogger(), m)
	store.AddItem(sweet(1, "10", 5), 1, "")
	store.AddItem(sweet(2, "10", 5), 1, "")

	store.SyncWithCatalog([]domain.Sweet{sweet(1, "10", 5)})

	expected := `
# HELP sweetcart_sync_dropped_items_total Total number of cart items dropped during catalog sync
# TYPE sweetcart_sync_dropped_items_total counter
sweetcart_sync_dropped_items_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "sweetcart_sync_dropped_items_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestStore_ConvertToOrderItems(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(4, "1", 9), 3, "gift")
	store.AddItem(sweet(2, "1", 9), 1, "")

	items := store.ConvertToOrderItems()

	want := []domain.OrderItemRequest{
		{SweetID: 4, Quantity: 3, Notes: "gift"},
		{SweetID: 2, Quantity: 1},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestStore_ReturnedCartIsACopy(t *testing.T) {
	store, _ := newTestStore(t)
	got := store.AddItem(sweet(1, "10", 5), 2, "")

	got.Items[0].Quantity = 100

	if q := store.ItemQuantity(1); q != 2 {
		t.Fatalf("store state leaked through returned cart, quantity %d", q)
	}
}

func TestStore_Lookups(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 1, "")

	if !store.IsItemInCart(1) || store.IsItemInCart(2) {
		t.Fatal("unexpected IsItemInCart result")
	}
	if store.ItemQuantity(1) != 1 || store.ItemQuantity(2) != 0 {
		t.Fatal("unexpected ItemQuantity result")
	}
	summary := store.Summary()
	if summary.ItemCount != 1 || summary.ItemsText != "item" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestStore_LoadHydratesFromAdapter(t *testing.T) {
	kv := memory.NewKVStore()
	adapter := persistence.NewAdapter(kv, testLogger())
	first := NewStore(adapter, testLogger(), nil)
	first.Load()
	first.AddItem(sweet(1, "10", 5), 2, "note")

	second := NewStore(persistence.NewAdapter(kv, testLogger()), testLogger(), nil)
	got := second.Load()

	if len(got.Items) != 1 || got.Items[0].Notes != "note" {
		t.Fatalf("unexpected hydrated cart: %+v", got.Items)
	}
	assertTotals(t, got, 2, "20")
}

func TestStore_LoadCorruptBlobStartsEmpty(t *testing.T) {
	kv := memory.NewKVStore()
	if err := kv.Set(persistence.DefaultCartKey, []byte("][")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(persistence.NewAdapter(kv, testLogger()), testLogger(), nil)

	got := store.Load()

	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
}

func TestStore_ExportImport(t *testing.T) {
	source, _ := newTestStore(t)
	source.AddItem(sweet(1, "10", 5), 2, "x")
	source.AddItem(sweet(2, "1.25", 5), 4, "")

	exported := source.Export()

	target, p := newTestStore(t)
	got, err := target.Import([]byte(exported))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Notes != "x" {
		t.Fatalf("unexpected imported cart: %+v", got.Items)
	}
	assertTotals(t, got, 6, "25")
	if p.writes != 1 {
		t.Fatalf("import must persist, writes %d", p.writes)
	}
}

func TestStore_ImportSanitizes(t *testing.T) {
	store, _ := newTestStore(t)
	payload, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"sweet": map[string]any{"id": 1, "price": "2"}, "quantity": 1},
			{"sweet": map[string]any{"id": 2, "price": "2"}, "quantity": 0},
			{"sweet": map[string]any{"id": 1, "price": "2"}, "quantity": 2},
		},
		"totalItems":  500,
		"totalAmount": "9999",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := store.Import(payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	assertTotals(t, got, 3, "6")
}

func TestStore_ImportInvalidKeepsCart(t *testing.T) {
	store, p := newTestStore(t)
	store.AddItem(sweet(1, "10", 5), 2, "")

	got, err := store.Import([]byte("not json"))

	if err == nil {
		t.Fatal("expected decode error")
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("cart changed on invalid import: %+v", got.Items)
	}
	if p.writes != 1 {
		t.Fatalf("invalid import must not persist, writes %d", p.writes)
	}
}

func TestStore_ExportEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	var decoded domain.Cart
	if err := json.Unmarshal([]byte(store.Export()), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded.Items) != 0 {
		t.Fatalf("expected no items, got %+v", decoded.Items)
	}
}

func TestStore_RecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetricsWithRegisterer(reg)
	store := NewStore(&recordingPersister{stored: domain.NewCart()}, testLogger(), m)

	store.AddItem(sweet(1, "10", 5), 2, "")
	store.AddItem(sweet(1, "10", 5), 1, "")
	store.Clear()

	expected := `
# HELP sweetcart_cart_operations_total Total number of cart store operations by kind
# TYPE sweetcart_cart_operations_total counter
sweetcart_cart_operations_total{op="add"} 2
sweetcart_cart_operations_total{op="clear"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "sweetcart_cart_operations_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

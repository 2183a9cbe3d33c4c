package cart

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/persistence"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/memory"
)

var catalogPrices = []string{"10", "2.50", "0.99", "123.45", "7.333"}

// applyEncoded раскладывает число в операцию над корзиной: вид, id сладости, количество.
func applyEncoded(store *Store, v int) domain.Cart {
	kind := v % 4
	id := int64((v/4)%len(catalogPrices)) + 1
	qty := (v/20)%15 - 4

	switch kind {
	case 0:
		if qty <= 0 {
			qty = 1
		}
		return store.AddItem(sweet(id, catalogPrices[id-1], 100), qty, "")
	case 1:
		return store.RemoveItem(id)
	case 2:
		return store.UpdateQuantity(id, qty)
	default:
		return store.UpdateNotes(id, "n")
	}
}

func cartInvariantsHold(c domain.Cart) bool {
	seen := make(map[int64]struct{}, len(c.Items))
	items := 0
	amount := decimal.Zero
	for _, item := range c.Items {
		if _, dup := seen[item.Sweet.ID]; dup {
			return false
		}
		seen[item.Sweet.ID] = struct{}{}
		if item.Quantity <= 0 {
			return false
		}
		items += item.Quantity
		amount = amount.Add(item.Sweet.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return c.TotalItems == items && c.TotalAmount.Equal(amount.Round(2))
}

func TestStoreProperty_InvariantsAfterAnySequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("totals match items and ids stay unique", prop.ForAll(
		func(ops []int) bool {
			store, _ := newTestStore(t)
			for _, v := range ops {
				if !cartInvariantsHold(applyEncoded(store, v)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 299)),
	))

	properties.TestingRun(t)
}

func TestStoreProperty_AddIsAdditive(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("add(a) then add(b) equals add(a+b)", prop.ForAll(
		func(a, b int) bool {
			sw := sweet(1, "3.75", 1000)

			split, _ := newTestStore(t)
			split.AddItem(sw, a, "")
			got := split.AddItem(sw, b, "")

			whole, _ := newTestStore(t)
			want := whole.AddItem(sw, a+b, "")

			return got.Items[0].Quantity == want.Items[0].Quantity &&
				got.TotalAmount.Equal(want.TotalAmount)
		},
		gen.IntRange(1, 50),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestStoreProperty_IdempotentOperations(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("remove, clear and sync are idempotent", prop.ForAll(
		func(ops []int, id int64) bool {
			store, _ := newTestStore(t)
			for _, v := range ops {
				applyEncoded(store, v)
			}

			once := store.RemoveItem(id)
			twice := store.RemoveItem(id)
			if !sameCart(once, twice) {
				return false
			}

			catalog := []domain.Sweet{sweet(1, "10", 5), sweet(3, "0.99", 5)}
			synced := store.SyncWithCatalog(catalog)
			if !sameCart(synced, store.SyncWithCatalog(catalog)) {
				return false
			}

			return sameCart(store.Clear(), store.Clear())
		},
		gen.SliceOf(gen.IntRange(0, 299)),
		gen.Int64Range(1, 5),
	))

	properties.TestingRun(t)
}

func TestStoreProperty_PersistenceRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("a fresh store loads what the previous one wrote", prop.ForAll(
		func(ops []int) bool {
			kv := memory.NewKVStore()
			writer := NewStore(persistence.NewAdapter(kv, testLogger()), testLogger(), nil)
			last := writer.Load()
			for _, v := range ops {
				last = applyEncoded(writer, v)
			}

			reader := NewStore(persistence.NewAdapter(kv, testLogger()), testLogger(), nil)
			return sameCart(last, reader.Load())
		},
		gen.SliceOf(gen.IntRange(0, 299)),
	))

	properties.TestingRun(t)
}

func sameCart(a, b domain.Cart) bool {
	if len(a.Items) != len(b.Items) || a.TotalItems != b.TotalItems || !a.TotalAmount.Equal(b.TotalAmount) {
		return false
	}
	for i := range a.Items {
		x, y := a.Items[i], b.Items[i]
		if x.Sweet.ID != y.Sweet.ID || x.Quantity != y.Quantity || x.Notes != y.Notes || !x.Sweet.Price.Equal(y.Sweet.Price) {
			return false
		}
	}
	return true
}

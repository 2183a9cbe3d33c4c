// Package cart реализует хранилище активной корзины сессии.
//
// Store держит единственную авторитетную корзину в памяти, пересчитывает
// итоги после каждой операции и синхронно сохраняет результат через
// Persister. Каждая операция возвращает новое значение корзины; изменение
// возвращённого значения не влияет на состояние Store.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
)

// Имена операций для логов и метрик.
const (
	opLoad           = "load"
	opAdd            = "add"
	opRemove         = "remove"
	opUpdateQuantity = "update_quantity"
	opUpdateNotes    = "update_notes"
	opClear          = "clear"
	opSync           = "sync"
	opImport         = "import"
)

// Persister — долговечное хранилище сериализованной корзины.
// Реализация сама поглощает ошибки (см. persistence.Adapter).
type Persister interface {
	Read() domain.Cart
	Write(cart domain.Cart)
}

// Store — хранилище корзины текущей сессии.
type Store struct {
	mu      sync.Mutex
	cart    domain.Cart
	persist Persister
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// NewStore создаёт Store с пустой корзиной. Для гидрации вызовите Load.
func NewStore(persist Persister, logger *log.Entry, m *metrics.CartMetrics) *Store {
	if logger == nil {
		logger = log.WithField("component", "cart-store")
	}
	return &Store{
		cart:    domain.NewCart(),
		persist: persist,
		logger:  logger,
		metrics: m,
	}
}

// Load загружает корзину из хранилища. Отсутствующие или битые данные дают пустую корзину.
func (s *Store) Load() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = s.persist.Read()
	s.observe(opLoad)
	return s.cart.Clone()
}

// Cart возвращает копию текущей корзины.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

// AddItem добавляет quantity единиц сладости. Если позиция уже есть, количество
// увеличивается, а заметка перезаписывается только непустым notes.
// Проверка quantity > 0 и остатков — на вызывающей стороне и в Validate.
func (s *Store) AddItem(sweet domain.Sweet, quantity int, notes string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Clone()
	if idx := next.IndexOf(sweet.ID); idx >= 0 {
		next.Items[idx].Quantity += quantity
		if notes != "" {
			next.Items[idx].Notes = notes
		}
	} else {
		next.Items = append(next.Items, domain.CartItem{
			Sweet:    sweet,
			Quantity: quantity,
			Notes:    notes,
		})
	}

	s.logger.WithFields(log.Fields{
		"sweet_id": sweet.ID,
		"quantity": quantity,
	}).Debug("item added to cart")

	return s.commit(opAdd, next)
}

// RemoveItem удаляет позицию. Отсутствие позиции не ошибка.
func (s *Store) RemoveItem(sweetID int64) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(opRemove, removeItem(s.cart, sweetID))
}

// UpdateQuantity выставляет абсолютное количество. quantity <= 0 удаляет позицию.
func (s *Store) UpdateQuantity(sweetID int64, quantity int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.commit(opUpdateQuantity, removeItem(s.cart, sweetID))
	}

	next := s.cart.Clone()
	if idx := next.IndexOf(sweetID); idx >= 0 {
		next.Items[idx].Quantity = quantity
	}
	return s.commit(opUpdateQuantity, next)
}

// UpdateNotes заменяет заметку позиции, в том числе на пустую.
func (s *Store) UpdateNotes(sweetID int64, notes string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Clone()
	if idx := next.IndexOf(sweetID); idx >= 0 {
		next.Items[idx].Notes = notes
	}
	return s.commit(opUpdateNotes, next)
}

// Clear очищает корзину и сохраняет пустое состояние.
func (s *Store) Clear() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(opClear, domain.NewCart())
}

// SyncWithCatalog заменяет снимки сладостей актуальными данными каталога.
// Позиции, которых нет в каталоге или которые недоступны, удаляются.
func (s *Store) SyncWithCatalog(sweets []domain.Sweet) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]domain.Sweet, len(sweets))
	for _, sw := range sweets {
		byID[sw.ID] = sw
	}

	next := domain.Cart{Items: make([]domain.CartItem, 0, len(s.cart.Items))}
	var dropped []int64
	for _, item := range s.cart.Items {
		fresh, ok := byID[item.Sweet.ID]
		if !ok || !fresh.IsAvailable {
			dropped = append(dropped, item.Sweet.ID)
			continue
		}
		item.Sweet = fresh
		next.Items = append(next.Items, item)
	}

	if len(dropped) > 0 {
		s.logger.WithField("sweet_ids", dropped).Info("unavailable items removed from cart during sync")
		s.metrics.RecordSyncDropped(len(dropped))
	}

	return s.commit(opSync, next)
}

// Validate проверяет корзину перед оформлением. Состояние не меняется.
func (s *Store) Validate() domain.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Validate()
}

// ConvertToOrderItems возвращает позиции в формате запроса на создание заказа.
// Валидацию не выполняет.
func (s *Store) ConvertToOrderItems() []domain.OrderItemRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.OrderItems()
}

// IsItemInCart сообщает, есть ли сладость в корзине.
func (s *Store) IsItemInCart(sweetID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.IndexOf(sweetID) >= 0
}

// ItemQuantity возвращает количество сладости в корзине или 0.
func (s *Store) ItemQuantity(sweetID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.cart.IndexOf(sweetID); idx >= 0 {
		return s.cart.Items[idx].Quantity
	}
	return 0
}

// Summary возвращает сводку для отображения.
func (s *Store) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Summary()
}

// Export сериализует корзину в JSON. При ошибке возвращает "{}".
func (s *Store) Export() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(s.cart)
	if err != nil {
		s.logger.WithError(err).Error("failed to export cart")
		return "{}"
	}
	return string(raw)
}

// Import заменяет корзину данными из data (формат Export). Позиции с
// количеством <= 0 отбрасываются, дубли склеиваются, итоги пересчитываются.
// Невалидный JSON оставляет корзину без изменений.
func (s *Store) Import(data []byte) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var incoming domain.Cart
	if err := json.Unmarshal(data, &incoming); err != nil {
		s.logger.WithError(err).Warn("failed to import cart")
		return s.cart.Clone(), fmt.Errorf("decode cart: %w", err)
	}

	next := domain.Cart{Items: make([]domain.CartItem, 0, len(incoming.Items))}
	for _, item := range incoming.Items {
		if item.Quantity <= 0 {
			continue
		}
		next.Items = append(next.Items, item)
	}

	return s.commit(opImport, next.MergeDuplicates()), nil
}

// commit пересчитывает итоги, делает next текущей корзиной и сохраняет её.
// Вызывается под s.mu.
func (s *Store) commit(op string, next domain.Cart) domain.Cart {
	s.cart = next.Recalculate()
	s.persist.Write(s.cart)
	s.observe(op)
	return s.cart.Clone()
}

func (s *Store) observe(op string) {
	s.metrics.RecordOperation(op)
	s.metrics.SetCartState(s.cart.TotalItems, s.cart.TotalAmount)
}

func removeItem(c domain.Cart, sweetID int64) domain.Cart {
	next := domain.Cart{Items: make([]domain.CartItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if item.Sweet.ID != sweetID {
			next.Items = append(next.Items, item)
		}
	}
	return next
}

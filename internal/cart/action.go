package cart

import "github.com/vladislavdragonenkov/sweetcart/internal/domain"

// Action — команда для Store.Dispatch. Набор закрыт: реализации есть только в этом пакете.
type Action interface {
	isAction()
}

// LoadCart перечитывает корзину из хранилища.
type LoadCart struct{}

// AddToCart добавляет сладость в корзину.
type AddToCart struct {
	Sweet    domain.Sweet
	Quantity int
	Notes    string
}

// RemoveFromCart удаляет позицию.
type RemoveFromCart struct {
	SweetID int64
}

// UpdateQuantity выставляет количество позиции.
type UpdateQuantity struct {
	SweetID  int64
	Quantity int
}

// UpdateNotes заменяет заметку позиции.
type UpdateNotes struct {
	SweetID int64
	Notes   string
}

// ClearCart очищает корзину.
type ClearCart struct{}

// SyncWithSweets синхронизирует корзину с каталогом.
type SyncWithSweets struct {
	Sweets []domain.Sweet
}

func (LoadCart) isAction()       {}
func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (UpdateQuantity) isAction() {}
func (UpdateNotes) isAction()    {}
func (ClearCart) isAction()      {}
func (SyncWithSweets) isAction() {}

// Dispatch применяет действие и возвращает новую корзину.
// Неизвестное или nil-действие возвращает текущую корзину без изменений.
func (s *Store) Dispatch(action Action) domain.Cart {
	switch a := action.(type) {
	case LoadCart:
		return s.Load()
	case AddToCart:
		return s.AddItem(a.Sweet, a.Quantity, a.Notes)
	case RemoveFromCart:
		return s.RemoveItem(a.SweetID)
	case UpdateQuantity:
		return s.UpdateQuantity(a.SweetID, a.Quantity)
	case UpdateNotes:
		return s.UpdateNotes(a.SweetID, a.Notes)
	case ClearCart:
		return s.Clear()
	case SyncWithSweets:
		return s.SyncWithCatalog(a.Sweets)
	default:
		return s.Cart()
	}
}

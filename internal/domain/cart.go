package domain

import "github.com/shopspring/decimal"

// amountPrecision — число знаков после запятой у итоговой суммы корзины.
const amountPrecision = 2

// Цены и суммы пишутся в JSON числами: сохранённая корзина и тела запросов
// совпадают по форме с тем, что отдаёт и принимает API магазина.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CartItem — одна позиция корзины.
type CartItem struct {
	Sweet    Sweet  `json:"sweet"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Cart — клиентская корзина до оформления заказа.
// TotalItems и TotalAmount — производные поля, их пересчитывает Recalculate.
type Cart struct {
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Summary — краткая сводка корзины для отображения.
type Summary struct {
	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemsText   string          `json:"itemsText"`
}

// NewCart возвращает пустую корзину с нулевыми итогами.
func NewCart() Cart {
	return Cart{
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
	}
}

// Recalculate возвращает копию корзины с пересчитанными итогами.
// Значения итогов из входной корзины игнорируются.
func (c Cart) Recalculate() Cart {
	out := c.Clone()

	var totalItems int
	totalAmount := decimal.Zero
	for _, item := range out.Items {
		totalItems += item.Quantity
		totalAmount = totalAmount.Add(item.Sweet.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	out.TotalItems = totalItems
	out.TotalAmount = totalAmount.Round(amountPrecision)
	return out
}

// Clone делает глубокую копию списка позиций.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{
		Items:       items,
		TotalItems:  c.TotalItems,
		TotalAmount: c.TotalAmount,
	}
}

// MergeDuplicates склеивает позиции с одинаковым ID сладости: количество суммируется,
// позиция остаётся на месте первого вхождения, непустые заметки более поздних дублей
// перекрывают ранние. Нужен для данных, пришедших не через операции корзины.
func (c Cart) MergeDuplicates() Cart {
	out := Cart{Items: make([]CartItem, 0, len(c.Items)), TotalItems: c.TotalItems, TotalAmount: c.TotalAmount}
	index := make(map[int64]int, len(c.Items))
	for _, item := range c.Items {
		if pos, ok := index[item.Sweet.ID]; ok {
			out.Items[pos].Quantity += item.Quantity
			if item.Notes != "" {
				out.Items[pos].Notes = item.Notes
			}
			continue
		}
		index[item.Sweet.ID] = len(out.Items)
		out.Items = append(out.Items, item)
	}
	return out
}

// IsEmpty сообщает, что в корзине нет позиций.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IndexOf возвращает индекс позиции со сладостью sweetID или -1.
func (c Cart) IndexOf(sweetID int64) int {
	for i, item := range c.Items {
		if item.Sweet.ID == sweetID {
			return i
		}
	}
	return -1
}

// Summary формирует сводку по текущим итогам.
func (c Cart) Summary() Summary {
	text := "items"
	if c.TotalItems == 1 {
		text = "item"
	}
	return Summary{
		ItemCount:   c.TotalItems,
		TotalAmount: c.TotalAmount,
		ItemsText:   text,
	}
}

// OrderItems проецирует позиции корзины в формат запроса на создание заказа.
func (c Cart) OrderItems() []OrderItemRequest {
	items := make([]OrderItemRequest, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItemRequest{
			SweetID:  item.Sweet.ID,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		})
	}
	return items
}

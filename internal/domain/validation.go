package domain

// Сообщения валидации корзины. Тексты показываются пользователю как есть.
const (
	MsgCartEmpty          = "Cart is empty"
	MsgInvalidQuantities  = "Some items have invalid quantities"
	MsgInvalidPrices      = "Some items have invalid prices"
	MsgUnavailableItems   = "Some items are no longer available"
	MsgStockExceededItems = "Some items exceed available stock"
)

// ValidationResult — результат проверки корзины перед оформлением.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate проверяет корзину и накапливает все нарушения. Корзину не меняет.
// Каждое правило даёт не больше одного сообщения, сколько бы позиций его ни нарушало.
func (c Cart) Validate() ValidationResult {
	if c.IsEmpty() {
		return ValidationResult{IsValid: false, Errors: []string{MsgCartEmpty}}
	}

	var invalidQty, invalidPrice, unavailable, overStock bool
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			invalidQty = true
		}
		if !item.Sweet.Price.IsPositive() {
			invalidPrice = true
		}
		if !item.Sweet.IsAvailable {
			unavailable = true
		}
		if item.Quantity > item.Sweet.Quantity {
			overStock = true
		}
	}

	errs := make([]string, 0, 4)
	if invalidQty {
		errs = append(errs, MsgInvalidQuantities)
	}
	if invalidPrice {
		errs = append(errs, MsgInvalidPrices)
	}
	if unavailable {
		errs = append(errs, MsgUnavailableItems)
	}
	if overStock {
		errs = append(errs, MsgStockExceededItems)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

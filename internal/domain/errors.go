package domain

import "errors"

var (
	// ErrKeyNotFound возвращается KV-хранилищем, если ключа нет.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUnauthorized — API отклонил токен сессии (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound — запрошенный ресурс отсутствует в API (HTTP 404).
	ErrNotFound = errors.New("resource not found")
	// ErrCatalogUnavailable — не удалось получить каталог для синхронизации.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrOrderRejected — сервис заказов не создал заказ.
	ErrOrderRejected = errors.New("order rejected")
	// ErrCartInvalid — корзина не прошла проверку перед оформлением.
	ErrCartInvalid = errors.New("cart is not valid for checkout")
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email покупателя.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// Ошибка отсутствующего телефона покупателя.
	ErrCustomerPhoneRequired = errors.New("customer phone is required")
	// Ошибка отсутствующего адреса доставки.
	ErrDeliveryAddressRequired = errors.New("delivery address is required")
)

// IsCustomerDetailsError проверяет, относится ли ошибка к незаполненным данным покупателя.
func IsCustomerDetailsError(err error) bool {
	return errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrCustomerEmailRequired) ||
		errors.Is(err, ErrCustomerPhoneRequired) ||
		errors.Is(err, ErrDeliveryAddressRequired)
}

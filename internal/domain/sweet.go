package domain

import "github.com/shopspring/decimal"

// PricingType описывает единицу, к которой относится цена сладости.
type PricingType string

const (
	// PricingPerItem — цена за штуку.
	PricingPerItem PricingType = "PER_ITEM"
	// PricingPerKg — цена за килограмм.
	PricingPerKg PricingType = "PER_KG"
)

// SweetCategory — категория товара в каталоге.
type SweetCategory string

const (
	CategoryMilkBased       SweetCategory = "MILK_BASED"
	CategoryDryFruit        SweetCategory = "DRY_FRUIT"
	CategorySyrupBased      SweetCategory = "SYRUP_BASED"
	CategoryFlourBased      SweetCategory = "FLOUR_BASED"
	CategoryGrainBased      SweetCategory = "GRAIN_BASED"
	CategoryCoconutBased    SweetCategory = "COCONUT_BASED"
	CategoryFestivalSpecial SweetCategory = "FESTIVAL_SPECIAL"
	CategoryBengali         SweetCategory = "BENGALI"
	CategorySouthIndian     SweetCategory = "SOUTH_INDIAN"
	CategorySugarFree       SweetCategory = "SUGAR_FREE"
	CategoryOther           SweetCategory = "OTHER"
)

// Sweet — запись каталога. Корзина хранит денормализованную копию
// на момент последней синхронизации и не изменяет её сама.
type Sweet struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    SweetCategory   `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	PricingType PricingType     `json:"pricingType,omitempty"`
	// Quantity — доступный остаток на складе.
	Quantity    int  `json:"quantity"`
	IsAvailable bool `json:"isAvailable"`

	ImageURL        string `json:"imageUrl,omitempty"`
	Ingredients     string `json:"ingredients,omitempty"`
	Allergens       string `json:"allergens,omitempty"`
	NutritionalInfo string `json:"nutritionalInfo,omitempty"`
	// Временные метки приходят из каталога строками, корзина их не интерпретирует.
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

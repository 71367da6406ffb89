package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryFruits     ProductCategory = "FRUITS"
	CategoryVegetables ProductCategory = "VEGETABLES"
	CategoryGrains     ProductCategory = "GRAINS"
	CategoryTubers     ProductCategory = "TUBERS"
	CategoryHerbs      ProductCategory = "HERBS"
	CategoryDairy      ProductCategory = "DAIRY"
	CategoryMeat       ProductCategory = "MEAT"
	CategorySeafood    ProductCategory = "SEAFOOD"
	CategoryProcessed  ProductCategory = "PROCESSED"
	CategoryBeverages  ProductCategory = "BEVERAGES"
	CategoryOrganic    ProductCategory = "ORGANIC"
	CategoryOthers     ProductCategory = "OTHERS"
)

var productCategories = map[ProductCategory]bool{
	CategoryFruits: true, CategoryVegetables: true, CategoryGrains: true,
	CategoryTubers: true, CategoryHerbs: true, CategoryDairy: true,
	CategoryMeat: true, CategorySeafood: true, CategoryProcessed: true,
	CategoryBeverages: true, CategoryOrganic: true, CategoryOthers: true,
}

func ParseCategory(s string) (ProductCategory, bool) {
	c := ProductCategory(s)
	return c, productCategories[c]
}

// ProductUnit is the unit of sale a product is priced in.
type ProductUnit string

const (
	UnitKilogram   ProductUnit = "KG"
	UnitGram       ProductUnit = "G"
	UnitPiece      ProductUnit = "PC"
	UnitSack       ProductUnit = "SACK"
	UnitBunch      ProductUnit = "BUNCH"
	UnitLitre      ProductUnit = "LITRE"
	UnitMillilitre ProductUnit = "ML"
	UnitDozen      ProductUnit = "DOZEN"
	UnitPack       ProductUnit = "PACK"
	UnitBox        ProductUnit = "BOX"
)

var productUnits = map[ProductUnit]bool{
	UnitKilogram: true, UnitGram: true, UnitPiece: true, UnitSack: true,
	UnitBunch: true, UnitLitre: true, UnitMillilitre: true, UnitDozen: true,
	UnitPack: true, UnitBox: true,
}

func ParseUnit(s string) (ProductUnit, bool) {
	u := ProductUnit(s)
	return u, productUnits[u]
}

// Product is a seller-owned listing. Ownership is fixed at creation.
// ImageKey is an opaque storage key resolved to a URL by the media backend.
type Product struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    ProductCategory
	Unit        ProductUnit
	ImageKey    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

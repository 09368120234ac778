// Package catalog holds the fixed list of products the store sells.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a purchasable item and its unit price.
type Product struct {
	Name  string
	Price decimal.Decimal
}

// Category groups products for selection. Product names are unique within a category.
type Category struct {
	Key      string
	Label    string
	Products []Product
}

const (
	CategoryBodyLotions = "bodyLotions"
	CategorySoaps       = "soaps"
	CategoryCreams      = "creams"
	CategorySerumsOils  = "serumsOils"
)

func p(name string, price int64) Product {
	return Product{Name: name, Price: decimal.NewFromInt(price)}
}

var categories = []Category{
	{
		Key:   CategoryBodyLotions,
		Label: "Body Lotions / Fade Milks",
		Products: []Product{
			p("Bio Claire Lightening Body Lotion (12.1 fl.oz / 350ml)", 4500),
			p("CAROTIS Body Lotion Double Nutrition (8.4 fl.oz / 250ml)", 3200),
			p("Diva Maxima Maxi Tone Fade Milk (11.8 fl.oz / 350ml)", 4200),
			p("Carotone 3-in-1 Brightening Body Lotion (550ml)", 5500),
			p("Dawmy Lightening Body Lotion (16.91 fl.oz / 500ml)", 4800),
		},
	},
	{
		Key:   CategorySoaps,
		Label: "Soaps / Beauty Bars",
		Products: []Product{
			p("Bio Claire Lightening Care Soap (190g / 6.7oz)", 800),
			p("Carotone Brightening Soap (190g / 6.7oz)", 850),
			p("CAROTIS Beauty Soap Double Nutrition (200g / 7oz)", 900),
			p("Diva Maxima Maxi Tone Clearing Soap (100g / 3.5oz)", 600),
			p("Dawmy Purifying Beauty Soap (200g / 7oz)", 750),
			p("Maxi Light Beauty Soap (3.8oz / 108g)", 700),
			p("Pure Skin Vanishing Care Body Soap (190g / 6.7oz)", 850),
			p("G&G Dynamiclair Beauty Soap (190g / 6.7oz)", 800),
			p("Pharmaderm Herbal Family Soap (190g / 6.7oz)", 750),
		},
	},
	{
		Key:   CategoryCreams,
		Label: "Tubs / Jars / Cream Pots",
		Products: []Product{
			p("Carotone 3-in-1 Crème Pot/Jar (Brightening)", 6500),
			p("Dawmy Lightening Body Cream (10.1 fl.oz / 300g)", 5800),
			p("Maxi Light Lightening & Purifying Body Crème (325ml)", 6200),
		},
	},
	{
		Key:   CategorySerumsOils,
		Label: "Serums & Oils",
		Products: []Product{
			p("Carotone Black Spot Corrector Serum B.S.C. (30ml)", 3500),
			p("Carotone 3-in-1 Huile Serum Collagen (65ml)", 4200),
			p("G&G Teint Uniforme Lightening Beauty Oil (150ml)", 4800),
		},
	},
}

// Categories returns the catalog in display order. The result is a copy.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c
		out[i].Products = append([]Product(nil), c.Products...)
	}

	return out
}

// CategoryByKey returns the category with the given key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range categories {
		if c.Key == key {
			c.Products = append([]Product(nil), c.Products...)
			return c, true
		}
	}

	return Category{}, false
}

// Lookup finds a product by name. An empty category searches the whole catalog.
func Lookup(category, name string) (Product, bool) {
	if name == "" {
		return Product{}, false
	}

	for _, c := range categories {
		if category != "" && c.Key != category {
			continue
		}

		for _, prod := range c.Products {
			if prod.Name == name {
				return prod, true
			}
		}
	}

	return Product{}, false
}

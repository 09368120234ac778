package builder

import (
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
)

// DefaultQuantity is what the quantity field holds before and after each add.
const DefaultQuantity = "1"

// Picker holds the product selection that feeds Draft.AddItem.
type Picker struct {
	Category string
	Product  string
	Quantity string
}

func NewPicker() *Picker {
	return &Picker{Quantity: DefaultQuantity}
}

// SelectCategory switches category and clears the product so the two never disagree.
func (p *Picker) SelectCategory(key string) {
	if key != p.Category {
		p.Product = ""
	}

	p.Category = key
}

func (p *Picker) SelectProduct(name string) {
	p.Product = name
}

// Products lists the products of the selected category.
func (p *Picker) Products() []catalog.Product {
	c, ok := catalog.CategoryByKey(p.Category)
	if !ok {
		return nil
	}

	return c.Products
}

// Add moves the current selection into d. After a successful add the picker is reset.
func (p *Picker) Add(d *Draft) bool {
	qty, ok := ParseQuantity(p.Quantity)
	if !ok {
		return false
	}

	if _, ok := d.AddItem(p.Category, p.Product, qty); !ok {
		return false
	}

	p.Category = ""
	p.Product = ""
	p.Quantity = DefaultQuantity

	return true
}

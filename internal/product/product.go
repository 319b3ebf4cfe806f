package product

import (
	"encoding/json"
	"math"
	"strings"
)

type Availability string

const (
	InStock    Availability = "InStock"
	OutOfStock Availability = "OutOfStock"
)

// Categories offered by the product forms.
var Categories = []string{
	"electronics",
	"jewelery",
	"men's clothing",
	"women's clothing",
}

func KnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID           string
	Title        string
	Price        float64
	Description  string
	Category     string
	Image        string
	Rating       float64
	RatingCount  int
	Availability Availability
}

// New returns a draft product without an id, as built from user input.
func New(title, description string, price float64, category string) (Product, error) {
	p := Product{
		Title:        title,
		Description:  description,
		Category:     category,
		Availability: InStock,
	}
	if err := p.SetPrice(price); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Validate reports whether title, price and category are usable.
func (p Product) Validate() bool {
	return strings.TrimSpace(p.Title) != "" &&
		p.Price >= 0 &&
		strings.TrimSpace(p.Category) != ""
}

func (p *Product) SetPrice(v float64) error {
	if math.IsNaN(v) || v < 0 {
		return &ValidationError{Field: "price", Msg: "price cannot be negative"}
	}
	p.Price = v
	return nil
}

func (p Product) InStock() bool {
	return strings.EqualFold(string(p.Availability), string(InStock))
}

func (p Product) StockLabel() string {
	if p.InStock() {
		return "In stock"
	}
	return "Out of stock"
}

// wireProduct is the request body shape. Required fields are always
// written, optional ones only when set.
type wireProduct struct {
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Description  string  `json:"description,omitempty"`
	Image        string  `json:"image,omitempty"`
	Availability string  `json:"availability,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireProduct{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		Category:     p.Category,
		Description:  p.Description,
		Image:        p.Image,
		Availability: string(p.Availability),
	})
}

func (p *Product) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

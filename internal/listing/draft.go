package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ProductDesk/internal/product"
)

// Draft holds raw form input for a product.
type Draft struct {
	Title       string `validate:"required"`
	Description string
	Price       string `validate:"required"`
	Category    string `validate:"required,category"`
	Image       string `validate:"omitempty,url"`
}

var validate = newValidator()

// newValidator registers the "category" tag, which accepts only the entries
// of product.Categories.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return product.KnownCategory(fl.Field().String())
	})
	return v
}

func (d Draft) normalized() Draft {
	return Draft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Price:       strings.TrimSpace(d.Price),
		Category:    strings.TrimSpace(d.Category),
		Image:       strings.TrimSpace(d.Image),
	}
}

// apply validates d and copies its fields onto base.
func (d Draft) apply(base product.Product) (product.Product, error) {
	d = d.normalized()

	if err := validate.Struct(d); err != nil {
		return product.Product{}, draftError(err)
	}

	price, err := strconv.ParseFloat(d.Price, 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
		return product.Product{}, &product.ValidationError{Field: "price", Msg: "invalid price"}
	}

	p := base
	p.Title = d.Title
	p.Description = d.Description
	p.Category = d.Category
	if d.Image != "" {
		p.Image = d.Image
	}
	if p.Availability == "" {
		p.Availability = product.InStock
	}
	if err := p.SetPrice(price); err != nil {
		return product.Product{}, &product.ValidationError{Field: "price", Msg: "price must be positive"}
	}
	return p, nil
}

func draftError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &product.ValidationError{Msg: err.Error()}
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		if field == "title" || field == "price" {
			return &product.ValidationError{Field: field, Msg: "title and price are required"}
		}
		return &product.ValidationError{Field: field, Msg: field + " is required"}
	case "category":
		return &product.ValidationError{Field: field, Msg: "unknown category"}
	case "url":
		return &product.ValidationError{Field: field, Msg: "image must be a url"}
	default:
		return &product.ValidationError{Field: field, Msg: "invalid " + field}
	}
}

package service

import (
	"net/url"
	"strconv"

	"shopfront/internal/domain"
)

// SizeService reads size and pricing fields from a submitted form and
// applies them to a product. Plain two-argument call; no builder chaining.
type SizeService interface {
	Apply(values url.Values, product *domain.Product) error
}

type sizeService struct{}

// NewSizeService creates the form-driven SizeService.
func NewSizeService() SizeService {
	return &sizeService{}
}

// Apply binds price and weight when present, then upserts one Size record
// per submitted sizename. The three size fields are parallel arrays: the
// i-th sizeinstock/sizeactive values belong to the i-th sizename. Size
// records are matched by name; unfamiliar names become new records, known
// names are updated in place. Sizes absent from the form are left alone.
func (s *sizeService) Apply(values url.Values, product *domain.Product) error {
	if values.Has("price") {
		price, err := strconv.ParseFloat(values.Get("price"), 64)
		if err != nil {
			return &domain.ValidationError{Field: "price", Message: "must be a number"}
		}
		product.Price = price
	}

	if values.Has("weight") {
		weight, err := strconv.ParseFloat(values.Get("weight"), 64)
		if err != nil {
			return &domain.ValidationError{Field: "weight", Message: "must be a number"}
		}
		product.Weight = weight
	}

	names := values["sizename"]
	inStock := values["sizeinstock"]
	active := values["sizeactive"]

	for i, name := range names {
		if name == "" {
			continue
		}

		record := product.SizeNamed(name)
		if record == nil {
			product.Sizes = append(product.Sizes, domain.Size{
				ProductID: product.ID,
				Name:      name,
			})
			record = &product.Sizes[len(product.Sizes)-1]
		}

		if i < len(inStock) {
			record.InStock = parseFormBool(inStock[i])
		}
		if i < len(active) {
			record.Active = parseFormBool(active[i])
		}
	}

	return nil
}

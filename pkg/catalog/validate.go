package catalog

import (
	"errors"
	"fmt"

	herrors "github.com/yourusername/hivestore/pkg/errors"
)

// Validate checks the data-integrity rules of a single product.
// All violations are reported, joined into one error.
func (p Product) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: product %q: %s", herrors.ErrInvalidProduct, p.ID, fmt.Sprintf(format, args...)))
	}

	if p.ID == "" {
		fail("id is empty")
	}
	if p.Slug == "" {
		fail("slug is empty")
	}
	if p.Name == "" {
		fail("name is empty")
	}
	if p.Price.Amount < 0 {
		fail("price %.2f is negative", p.Price.Amount)
	}
	if p.OriginalPrice != nil {
		if p.OriginalPrice.Amount <= p.Price.Amount {
			fail("original price %.2f does not exceed price %.2f", p.OriginalPrice.Amount, p.Price.Amount)
		}
		if p.OriginalPrice.Currency != p.Price.Currency {
			fail("original price currency %s differs from %s", p.OriginalPrice.Currency, p.Price.Currency)
		}
	}
	if !p.Category.Valid() {
		fail("unknown category %q", p.Category)
	}
	if !p.Status.Valid() {
		fail("unknown status %q", p.Status)
	}
	if len(p.Images) == 0 {
		fail("no images")
	}
	if p.Rating.Average < 0 || p.Rating.Average > 5 {
		fail("rating %.2f outside [0,5]", p.Rating.Average)
	}
	if p.SoldCount < 0 {
		fail("sold count %d is negative", p.SoldCount)
	}

	return errors.Join(errs...)
}

// ValidateCollection validates every product and the uniqueness of ids and slugs.
func ValidateCollection(products []Product) error {
	var errs []error
	ids := make(map[string]struct{}, len(products))
	slugs := make(map[string]struct{}, len(products))

	for _, p := range products {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate id %q", herrors.ErrInvalidProduct, p.ID))
		}
		ids[p.ID] = struct{}{}
		if _, dup := slugs[p.Slug]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate slug %q", herrors.ErrInvalidProduct, p.Slug))
		}
		slugs[p.Slug] = struct{}{}
	}

	return errors.Join(errs...)
}

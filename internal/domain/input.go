package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name             *string          `json:"product_name" validate:"required,min=1,max=255"`
	Availability     *Availability    `json:"availability" validate:"required,oneof=InStock OutOfStock"`
	Price            *decimal.Decimal `json:"price" validate:"required,gte=0"`
	ShortDescription *string          `json:"short_description" validate:"required,max=1000"`
	DateCreated      *Date            `json:"date_created" validate:"required"`
}

type ReplaceProductInput struct {
	Name             *string          `json:"product_name" validate:"required,min=1,max=255"`
	Availability     *Availability    `json:"availability" validate:"required,oneof=InStock OutOfStock"`
	Price            *decimal.Decimal `json:"price" validate:"required,gte=0"`
	ShortDescription *string          `json:"short_description" validate:"required,max=1000"`
}

type UpdateProductInput struct {
	Name             *string          `json:"product_name" validate:"omitnil,min=1,max=255"`
	Availability     *Availability    `json:"availability" validate:"omitnil,oneof=InStock OutOfStock"`
	Price            *decimal.Decimal `json:"price" validate:"omitnil,gte=0"`
	ShortDescription *string          `json:"short_description" validate:"omitnil,max=1000"`
}

// Assignments returns the set fields in canonical column order.
func (in *UpdateProductInput) Assignments() []Assignment {
	var res []Assignment

	if in.Name != nil {
		res = append(res, Assignment{Column: ColumnProductName, Value: *in.Name})
	}
	if in.Availability != nil {
		res = append(res, Assignment{Column: ColumnAvailability, Value: *in.Availability})
	}
	if in.Price != nil {
		res = append(res, Assignment{Column: ColumnPrice, Value: *in.Price})
	}
	if in.ShortDescription != nil {
		res = append(res, Assignment{Column: ColumnShortDescription, Value: *in.ShortDescription})
	}

	return res
}

func DecodeCreate(body map[string]any) (*CreateProductInput, error) {
	f, err := decodeFields(body, CreateColumns)
	if err != nil {
		return nil, err
	}

	return &CreateProductInput{
		Name:             f.name,
		Availability:     f.availability,
		Price:            f.price,
		ShortDescription: f.shortDescription,
		DateCreated:      f.dateCreated,
	}, nil
}

func DecodeReplace(body map[string]any) (*ReplaceProductInput, error) {
	f, err := decodeFields(body, MutableColumns)
	if err != nil {
		return nil, err
	}

	return &ReplaceProductInput{
		Name:             f.name,
		Availability:     f.availability,
		Price:            f.price,
		ShortDescription: f.shortDescription,
	}, nil
}

func DecodePatch(body map[string]any) (*UpdateProductInput, error) {
	if len(body) == 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"body": "at least one field is required",
		}}
	}

	f, err := decodeFields(body, MutableColumns)
	if err != nil {
		return nil, err
	}

	return &UpdateProductInput{
		Name:             f.name,
		Availability:     f.availability,
		Price:            f.price,
		ShortDescription: f.shortDescription,
	}, nil
}

type fields struct {
	name             *string
	availability     *Availability
	price            *decimal.Decimal
	shortDescription *string
	dateCreated      *Date
}

func decodeFields(body map[string]any, allowed []Column) (fields, error) {
	var f fields
	verr := &ValidationError{}

	for key, raw := range body {
		col := Column(key)
		if !col.in(allowed) {
			verr.add(key, fmt.Sprintf("%s is not an assignable field", key))
			continue
		}

		if raw == nil {
			verr.add(key, fmt.Sprintf("%s must not be null", key))
			continue
		}

		switch col {
		case ColumnProductName, ColumnShortDescription:
			s, ok := raw.(string)
			if !ok {
				verr.add(key, fmt.Sprintf("%s must be a string", key))
				continue
			}
			if col == ColumnProductName {
				f.name = &s
			} else {
				f.shortDescription = &s
			}
		case ColumnAvailability:
			s, ok := raw.(string)
			if !ok {
				verr.add(key, fmt.Sprintf("%s must be a string", key))
				continue
			}
			a := Availability(s)
			f.availability = &a
		case ColumnPrice:
			d, err := toDecimal(raw)
			if err != nil {
				verr.add(key, fmt.Sprintf("%s must be a number", key))
				continue
			}
			if msg := checkPrice(d); msg != "" {
				verr.add(key, fmt.Sprintf("%s %s", key, msg))
				continue
			}
			f.price = &d
		case ColumnDateCreated:
			s, ok := raw.(string)
			if !ok {
				verr.add(key, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", key))
				continue
			}
			d, err := ParseDate(s)
			if err != nil {
				verr.add(key, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", key))
				continue
			}
			f.dateCreated = &d
		}
	}

	if !verr.empty() {
		return fields{}, verr
	}

	return f, nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported price type %T", raw)
	}
}

// checkPrice reports why d does not fit the price column, or "" when it does.
// Exponents are compared before any rescaling so huge exponents stay cheap.
func checkPrice(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	exp := int64(d.Exponent())
	digits := int64(d.NumDigits())

	if exp > PriceIntegerDigits || digits+exp > PriceIntegerDigits {
		return fmt.Sprintf("must be less than %s", MaxPrice)
	}

	if exp < -PriceScale {
		if -exp-PriceScale > digits || !d.Round(PriceScale).Equal(d) {
			return fmt.Sprintf("must have at most %d decimal places", PriceScale)
		}
	}

	return ""
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Availability string

const (
	InStock    Availability = "InStock"
	OutOfStock Availability = "OutOfStock"
)

func (a Availability) Valid() bool {
	return a == InStock || a == OutOfStock
}

// Price bounds of the NUMERIC(12, 2) column.
const (
	PriceIntegerDigits = 10
	PriceScale         = 2
)

var MaxPrice = decimal.New(1, PriceIntegerDigits)

const DateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}

	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}

	*d = parsed
	return nil
}

type Product struct {
	ID               int64           `db:"product_id" json:"product_id"`
	Name             string          `db:"product_name" json:"product_name"`
	Availability     Availability    `db:"availability" json:"availability"`
	Price            decimal.Decimal `db:"price" json:"price"`
	ShortDescription string          `db:"short_description" json:"short_description"`
	DateCreated      Date            `db:"date_created" json:"date_created"`
}

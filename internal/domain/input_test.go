package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCreate(t *testing.T) {
	body := map[string]any{
		"product_name":      "Lamp",
		"availability":      "InStock",
		"price":             json.Number("19.99"),
		"short_description": "desk lamp",
		"date_created":      "2025-03-02",
	}

	in, err := DecodeCreate(body)
	require.NoError(t, err)

	assert.Equal(t, "Lamp", *in.Name)
	assert.Equal(t, InStock, *in.Availability)
	assert.True(t, decimal.RequireFromString("19.99").Equal(*in.Price))
	assert.Equal(t, "desk lamp", *in.ShortDescription)
	assert.Equal(t, "2025-03-02", in.DateCreated.String())
}

func TestDecodeCreate_RejectsBadFields(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "unknown key",
			body:  map[string]any{"product_id": json.Number("7")},
			field: "product_id",
		},
		{
			name:  "null value",
			body:  map[string]any{"product_name": nil},
			field: "product_name",
		},
		{
			name:  "name not a string",
			body:  map[string]any{"product_name": json.Number("5")},
			field: "product_name",
		},
		{
			name:  "price not a number",
			body:  map[string]any{"price": "cheap"},
			field: "price",
		},
		{
			name:  "bad date",
			body:  map[string]any{"date_created": "02/03/2025"},
			field: "date_created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCreate(tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCheckPrice(t *testing.T) {
	tests := []struct {
		price string
		fits  bool
	}{
		{price: "0", fits: true},
		{price: "19.99", fits: true},
		{price: "19.990", fits: true},
		{price: "9999999999.99", fits: true},
		{price: "1e3", fits: true},
		{price: "10000000000", fits: false},
		{price: "12345678901.23", fits: false},
		{price: "1e400", fits: false},
		{price: "0.001", fits: false},
		{price: "19.999", fits: false},
		{price: "1e-1000000", fits: false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			msg := checkPrice(decimal.RequireFromString(tt.price))
			if tt.fits {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestDecodePatch_PriceOutOfRange(t *testing.T) {
	for _, raw := range []string{"12345678901.23", "1e400", "0.005"} {
		_, err := DecodePatch(map[string]any{"price": json.Number(raw)})
		require.Error(t, err, raw)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "price", raw)
	}
}

func TestDecodeReplace_RejectsDateCreated(t *testing.T) {
	_, err := DecodeReplace(map[string]any{
		"product_name": "Lamp",
		"date_created": "2025-03-02",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date_created")
}

func TestDecodePatch(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, err := DecodePatch(map[string]any{})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("assignments follow column order", func(t *testing.T) {
		in, err := DecodePatch(map[string]any{
			"short_description": "new",
			"price":             json.Number("50"),
			"product_name":      "Lamp 2",
		})
		require.NoError(t, err)

		assignments := in.Assignments()
		require.Len(t, assignments, 3)
		assert.Equal(t, ColumnProductName, assignments[0].Column)
		assert.Equal(t, ColumnPrice, assignments[1].Column)
		assert.Equal(t, ColumnShortDescription, assignments[2].Column)
		assert.True(t, decimal.NewFromInt(50).Equal(assignments[1].Value.(decimal.Decimal)))
	})

	t.Run("price only", func(t *testing.T) {
		in, err := DecodePatch(map[string]any{"price": float64(50)})
		require.NoError(t, err)

		assignments := in.Assignments()
		require.Len(t, assignments, 1)
		assert.Equal(t, ColumnPrice, assignments[0].Column)
	})
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-02"`), &d))
	assert.Equal(t, "2025-03-02", d.String())

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03-02"`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`"March 2"`), &d))
}

func TestProductJSON(t *testing.T) {
	date, err := ParseDate("2025-03-02")
	require.NoError(t, err)

	p := Product{
		ID:               1,
		Name:             "Lamp",
		Availability:     OutOfStock,
		Price:            decimal.RequireFromString("19.99"),
		ShortDescription: "desk lamp",
		DateCreated:      date,
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product_id": 1,
		"product_name": "Lamp",
		"availability": "OutOfStock",
		"price": 19.99,
		"short_description": "desk lamp",
		"date_created": "2025-03-02"
	}`, string(raw))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(map[string]string{
		"price":        "price must be a number",
		"availability": "availability is required",
	})

	assert.Equal(t, "invalid request: availability is required; price must be a number", err.Error())
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestColumnIsMutable(t *testing.T) {
	assert.True(t, ColumnPrice.IsMutable())
	assert.False(t, ColumnDateCreated.IsMutable())
	assert.False(t, Column("product_id").IsMutable())
	assert.True(t, InStock.Valid())
	assert.False(t, Availability("Backorder").Valid())
}

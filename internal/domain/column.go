package domain

// Column names a product table column that a request may assign.
type Column string

const (
	ColumnProductName      Column = "product_name"
	ColumnAvailability     Column = "availability"
	ColumnPrice            Column = "price"
	ColumnShortDescription Column = "short_description"
	ColumnDateCreated      Column = "date_created"
)

const (
	TableName      = "product"
	ColumnIdentity = "product_id"
)

// MutableColumns is the allow-list for full and partial updates, in canonical order.
var MutableColumns = []Column{
	ColumnProductName,
	ColumnAvailability,
	ColumnPrice,
	ColumnShortDescription,
}

// CreateColumns lists the columns bound by an insert, in statement order.
var CreateColumns = []Column{
	ColumnProductName,
	ColumnAvailability,
	ColumnPrice,
	ColumnShortDescription,
	ColumnDateCreated,
}

func (c Column) IsMutable() bool {
	return c.in(MutableColumns)
}

func (c Column) in(set []Column) bool {
	for _, col := range set {
		if c == col {
			return true
		}
	}

	return false
}

// Assignment binds one mutable column to its new value.
type Assignment struct {
	Column Column
	Value  any
}

package domain

const (
	EventProductCreated  = "ProductCreated"
	EventProductReplaced = "ProductReplaced"
	EventProductPatched  = "ProductPatched"
	EventProductDeleted  = "ProductDeleted"

	ProductEventsTopic = "product_events"
	AggregateProduct   = "Product"
)

type ProductChangedEvent struct {
	ProductID int64    `json:"product_id"`
	Columns   []Column `json:"columns,omitempty"`
}

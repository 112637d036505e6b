package model

// OrderRequest describes a new order to create on the merchant backend.
// Amount uses the Taler amount format ("CURRENCY:value", e.g. "EUR:9.50").
type OrderRequest struct {
	OrderID            string
	Amount             string
	Summary            string
	FulfillmentMessage string
}

// OrderStatus is the merchant backend's view of an order after creation.
// PayURI is set only while the order is unpaid.
type OrderStatus struct {
	OrderID string
	Status  string
	PayURI  string
}

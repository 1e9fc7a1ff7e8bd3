package models

import "github.com/shopspring/decimal"

// Receipt is the print-ready projection of an order, shaped for the kitchen
// printer endpoint.
type ReceiptLine struct {
	Name         string          `json:"name"`
	Quantity     uint            `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Toppings     string          `json:"toppings,omitempty"`
	Instructions string          `json:"specialInstructions,omitempty"`
}

type ReceiptCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type ReceiptCopies struct {
	Customer bool `json:"customer"`
	Kitchen  bool `json:"kitchen"`
	Delivery bool `json:"delivery"`
}

type Receipt struct {
	Header       string          `json:"header"`
	OrderNumber  string          `json:"orderNumber"`
	Timestamp    string          `json:"timestamp"`
	Customer     ReceiptCustomer `json:"customer"`
	OrderType    OrderType       `json:"orderType"`
	Status       OrderStatus     `json:"status"`
	Items        []ReceiptLine   `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	DeliveryInfo *DeliveryInfo   `json:"deliveryInfo,omitempty"`
	Footer       string          `json:"footer"`
	Copies       ReceiptCopies   `json:"copies"`
	UpdateType   string          `json:"updateType,omitempty"`
}

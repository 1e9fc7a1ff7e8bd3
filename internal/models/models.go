package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

// ToppingSelection is one topping line inside a customization, priced per unit.
type ToppingSelection struct {
	ToppingID string          `json:"toppingId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  uint            `json:"quantity"`
}

type ExtraSelection struct {
	ExtraID  string          `json:"extraId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity uint            `json:"quantity"`
}

// Customization captures everything that distinguishes one cart line from
// another for the same product. Instructions are free text and do not take
// part in line identity.
type Customization struct {
	Size         string             `json:"size,omitempty"`
	Crust        string             `json:"crust,omitempty"`
	Toppings     []ToppingSelection `json:"toppings,omitempty"`
	Extras       []ExtraSelection   `json:"extraItems,omitempty"`
	Instructions string             `json:"specialInstructions,omitempty"`
}

// CartItem is a fully resolved cart line. UnitPrice is computed once when the
// line is built and never re-derived from its parts afterwards.
type CartItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"price"`
	Quantity      uint            `json:"quantity"`
	Customization *Customization  `json:"customization,omitempty"`
}

// LineTotal is UnitPrice multiplied by Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the wire and storage shape of a cart: just its lines. Origin and
// derived totals live in the state container, not in the document.
type Cart struct {
	Items []CartItem `json:"items"`
}

type PriceOption struct {
	Name  string          `json:"name"`
	Delta decimal.Decimal `json:"delta"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	BasePrice   decimal.Decimal `json:"price"`
	Sizes       []PriceOption   `json:"sizes,omitempty"`
	Crusts      []PriceOption   `json:"crusts,omitempty"`
	Popular     bool            `json:"popular"`
	Available   bool            `json:"available"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Topping struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type ExtraItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category,omitempty"`
	ExtraType string          `json:"extraType,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type DeliveryZone struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	Active         bool            `json:"active"`
}

type TimeSlot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// DeliveryAvailability is the server's verdict for a coordinates + order
// amount pair. Zone is set only when Available is true.
type DeliveryAvailability struct {
	Available bool          `json:"available"`
	Zone      *DeliveryZone `json:"zone,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

type DeliveryInfo struct {
	Address  string `json:"address"`
	Phone    string `json:"phone,omitempty"`
	Zone     string `json:"zone,omitempty"`
	TimeSlot string `json:"timeSlot,omitempty"`
}

type PickupInfo struct {
	Location string `json:"location"`
	TimeSlot string `json:"timeSlot,omitempty"`
}

// Order is built by the backend. Items are a snapshot of the cart at purchase
// time, not a live reference.
type Order struct {
	ID            string        `json:"id"`
	Number        string        `json:"orderNumber"`
	UserID        string        `json:"userId"`
	Items         []CartItem    `json:"items"`
	Status        OrderStatus   `json:"status"`
	Totals        OrderTotals   `json:"total"`
	OrderType     OrderType     `json:"orderType"`
	DeliveryInfo  *DeliveryInfo `json:"deliveryInfo,omitempty"`
	PickupInfo    *PickupInfo   `json:"pickupInfo,omitempty"`
	PaymentMethod string        `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type PrinterSettings struct {
	IsEnabled            bool   `json:"isEnabled"`
	HeaderText           string `json:"headerText"`
	FooterText           string `json:"footerText"`
	PrintCustomerCopy    bool   `json:"printCustomerCopy"`
	PrintKitchenCopy     bool   `json:"printKitchenCopy"`
	PrintDeliveryCopy    bool   `json:"printDeliveryCopy"`
	PrintOnNewOrder      bool   `json:"printOnNewOrder"`
	PrintOnOrderUpdate   bool   `json:"printOnOrderUpdate"`
	PrintOnOrderComplete bool   `json:"printOnOrderComplete"`
	PrintOnOrderCancel   bool   `json:"printOnOrderCancel"`
}

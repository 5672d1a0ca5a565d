package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentBankTransfer  PaymentMethod = "transfer"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentBankTransfer || m == PaymentMobilePayment
}

// CustomerInfo is the shipping/contact snapshot embedded in an order,
// plus the customer's unverified payment declaration (reference number,
// date and issuing bank of a transfer they claim to have made).
type CustomerInfo struct {
	FullName string `json:"full_name"`
	Cedula   string `json:"cedula"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"order_number"`
	Date          time.Time     `json:"date"`
	Customer      CustomerInfo  `json:"customer"`
	PaymentDate   *time.Time    `json:"fecha_pago"`
	Voucher       string        `json:"comprobante"`
	IssuingBank   string        `json:"banco_emisor"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	Items         []OrderItem   `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem is a snapshotted cart line, decoupled from live Product state.
type OrderItem struct {
	ID           int64     `json:"id"`
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice float64   `json:"product_price"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

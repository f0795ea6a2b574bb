package domain

import "time"

// OrderStatus is the delivery state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

// PaymentType is the payment method chosen by the customer.
// Values match the labels stored by earlier deployments.
type PaymentType string

const (
	PaymentCash PaymentType = "Naqd"
	PaymentCard PaymentType = "Karta"
)

// OrderItem is a cart line frozen at checkout
type OrderItem struct {
	ProductID string `json:"product_id" bson:"productId"`
	Name      string `json:"name" bson:"name"`
	Price     int64  `json:"price" bson:"price"`
}

// Order represents a finalized cart
type Order struct {
	ID            string      `json:"id" db:"id"`
	CustomerName  string      `json:"client_name" db:"client_name"`
	CustomerPhone string      `json:"client_phone" db:"client_phone"`
	ChatID        int64       `json:"chat_id" db:"chat_id"`
	Items         []OrderItem `json:"cart" db:"cart"`
	PaymentType   PaymentType `json:"payment_type" db:"payment_type"`
	ProofImage    string      `json:"check_file_id,omitempty" db:"check_file_id"`
	ProofNote     string      `json:"card_reference,omitempty" db:"card_reference"`
	Status        OrderStatus `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty" db:"delivered_at"`
}

// Total returns the sum of item prices
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}

// IsDelivered reports whether the order reached its final state
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// Customer is the registered profile of a customer conversation
type Customer struct {
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

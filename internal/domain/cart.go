package domain

import "time"

// Cart holds the quantity-per-product mapping for one identity.
// Version is the optimistic concurrency token: every successful write
// increments it, and a write conditioned on a stale version is rejected
// by the store instead of silently overwriting a concurrent mutation.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	Identity  string     `bson:"identity" json:"identity"`
	Items     []CartItem `bson:"items" json:"items"`
	Version   int64      `bson:"version" json:"version"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem is one cart line. Name and unit price are snapshotted at
// add-time so a later catalog edit does not change what the shopper saw.
type CartItem struct {
	ProductID   string    `bson:"product_id" json:"product_id"`
	ProductName string    `bson:"product_name" json:"product_name"`
	UnitPrice   float64   `bson:"unit_price" json:"unit_price"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

// Total sums unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ItemCount sums quantities over all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Line returns the index of the line holding productID, or -1.
func (c *Cart) Line(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

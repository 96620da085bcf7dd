package model

import "time"

// Product represents an item in the catalogue. Price and discount are
// read at checkout time only; orders freeze their own copy.
type Product struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Discount      int       `json:"discount" db:"discount"`
	NumberInStock int       `json:"numberInStock" db:"number_in_stock"`
	ImageURL      string    `json:"imageUrl" db:"image_url"`
	Category      string    `json:"category" db:"category"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

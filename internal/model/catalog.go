package model

import "time"

// CatalogItem represents a tool offered by the storefront.
type CatalogItem struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Image            string    `json:"image,omitempty"`
	Price            float64   `json:"price"`
	Quantity         int64     `json:"quantity"`
	MinOrderQuantity int64     `json:"minOrderQuantity"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Document converts the item to its stored form. The id is never part of
// the document body; the store owns id assignment.
func (t CatalogItem) Document() Document {
	return Document{
		"name":             t.Name,
		"description":      t.Description,
		"image":            t.Image,
		"price":            t.Price,
		"quantity":         t.Quantity,
		"minOrderQuantity": t.MinOrderQuantity,
		"createdAt":        t.CreatedAt,
	}
}

package model

// DefaultRating is assigned to every shoe at creation.
const DefaultRating float32 = 1.0

// Shoe is one catalog record as persisted in the durable map.
// The stored layout is fixed: price is a 16-bit integer, rating a 32-bit
// float, timestamps 64-bit unsigned nanoseconds. UpdatedAt is absent until
// the first update.
type Shoe struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	ShoeURL   string  `json:"shoe_url"`
	Price     int16   `json:"price"`
	Quantity  string  `json:"quantity"`
	Rating    float32 `json:"rating"`
	CreatedAt uint64  `json:"created_at"`
	UpdatedAt *uint64 `json:"updated_at,omitempty"`
}

// ShoePayload is the caller-supplied subset of fields used for create and
// update. It carries no id, rating, or timestamps.
type ShoePayload struct {
	Name     string
	Size     string
	ShoeURL  string
	Price    int16
	Quantity string
}

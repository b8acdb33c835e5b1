package event

// Topics produced by the catalog but consumed elsewhere (stock and pricing
// systems); no in-process handler is registered for them.
const (
	TopicShoeUpdated = "shoe.updated"
	TopicShoeDeleted = "shoe.deleted"
)

type ShoeUpdatedEvent struct {
	ShoeID   string `json:"shoe_id"`
	Name     string `json:"name"`
	Size     string `json:"size"`
	ShoeURL  string `json:"shoe_url"`
	Price    int16  `json:"price"`
	Quantity string `json:"quantity"`
}

type ShoeDeletedEvent struct {
	ShoeID string `json:"shoe_id"`
}

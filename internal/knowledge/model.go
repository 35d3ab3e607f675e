package knowledge

// Document is a knowledge-base entry. IDs are globally unique in the store;
// re-adding an existing ID overwrites it.
type Document struct {
	ID       string            `json:"id" validate:"required,min=1"`
	Content  string            `json:"content" validate:"required,min=1"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IndexRequest is the API payload for the ingestion endpoint.
type IndexRequest struct {
	Documents []Document `json:"documents" validate:"required,min=1,dive"`
}

// IndexResponse reports how many documents were embedded and stored.
type IndexResponse struct {
	Indexed int `json:"indexed"`
}

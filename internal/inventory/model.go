package inventory

import "time"

// Item is one medicine line in the stock inventory. Medicine names are
// unique case-insensitively; quantity is the on-hand unit count.
type Item struct {
	ID             int       `json:"id"`
	MedicineName   string    `json:"medicine_name"`
	Quantity       int       `json:"quantity"`
	ExpirationDate *string   `json:"expiration_date"` // YYYY-MM-DD
	LastUpdated    time.Time `json:"last_updated"`
}

// Movement is an audit row for every stock change that has a cause
// beyond manual editing (prescription issue, prescription deletion).
type Movement struct {
	ID           int64
	StockID      int
	MedicineName string
	ChangeQty    int
	Reason       string
	RefTable     string
	RefID        string
	CreatedAt    time.Time
}

// UpsertMode controls what a POST with an existing medicine name does.
type UpsertMode string

const (
	ModeAdd UpsertMode = "add" // add to the stored quantity
	ModeSet UpsertMode = "set" // replace the stored quantity
)

type UpsertInput struct {
	MedicineName   string
	Quantity       int
	ExpirationDate string
	Mode           UpsertMode
}

// UpdateInput patches a single item; nil fields are left unchanged.
type UpdateInput struct {
	MedicineName   *string
	Quantity       *int
	ExpirationDate *string
}

// SortOrder for listing by medicine name.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

package domain

import "time"

// Event types
const (
	EventTypeAccountCreated = "account.created"
	EventTypeEntryPosted    = "entry.posted"
	EventTypeAPRReduced     = "apr.reduced"
)

// Aggregate types
const (
	AggregateTypeAccount = "loan_account"
	AggregateTypeEntry   = "ledger_entry"
)

// OutboxEvent represents an event to be published. Payload holds one of the
// typed payload structs below and is stored as JSON.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID   string `json:"account_id"`
	OwnerID     string `json:"owner_id"`
	Currency    string `json:"currency"`
	CreditLimit string `json:"credit_limit"`
	APR         string `json:"apr"`
}

// EntryPostedEvent payload
type EntryPostedEvent struct {
	EntryID    string `json:"entry_id"`
	AccountID  string `json:"account_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Balance    string `json:"balance"`
	OccurredOn string `json:"occurred_on"`
}

// APRReducedEvent payload
type APRReducedEvent struct {
	AdjustmentID string `json:"adjustment_id"`
	AccountID    string `json:"account_id"`
	OldAPR       string `json:"old_apr"`
	NewAPR       string `json:"new_apr"`
	AdjustedOn   string `json:"adjusted_on"`
}

package domain

import "time"

// MessageSide identifies which side of a thread authored a message.
type MessageSide string

const (
	SideAgency   MessageSide = "agency"
	SideCustomer MessageSide = "customer"
)

// MessageThread is a conversation between the agency and one customer.
type MessageThread struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	Subject       string     `json:"subject"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// UnreadCount is filled per-viewer when listing threads.
	UnreadCount int `json:"unread_count"`
}

// Message is one entry in a thread. Read flags are tracked per side so both
// the admin and the client portal can show unread badges.
type Message struct {
	ID             string      `json:"id"`
	ThreadID       string      `json:"thread_id"`
	Sender         MessageSide `json:"sender"`
	AuthorUserID   int         `json:"author_user_id,omitempty"`
	Body           string      `json:"body"`
	SentAt         time.Time   `json:"sent_at"`
	ReadByAgency   bool        `json:"read_by_agency"`
	ReadByCustomer bool        `json:"read_by_customer"`
}

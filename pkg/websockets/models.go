package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeVaultUpdate is pushed after every committed ledger mutation.
	MessageTypeVaultUpdate MessageType = "vaultUpdate"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// VaultUpdatePayload is the payload for a vaultUpdate message. Amounts are decimal strings.
type VaultUpdatePayload struct {
	CustomerID       string `json:"customer_id"`
	TransactionID    string `json:"transaction_id"`
	Reason           string `json:"reason"`
	Change           string `json:"change"`
	AvailableCredits string `json:"available_credits"`
	Version          int64  `json:"version"`
}

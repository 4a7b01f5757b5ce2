package model

// Role identifies the author of a chat message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn in the visible transcript. The same shape is
// sent to the assistant service as ordered history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WalletSummary is the optional wallet context attached to assistant
// requests. Balances and prices are decimal strings; rendering layers never
// do arithmetic on them.
type WalletSummary struct {
	Address      string `json:"address"`
	SolBalance   string `json:"sol_balance,omitempty"`
	SolPrice     string `json:"sol_price,omitempty"`
	SonicBalance string `json:"sonic_balance,omitempty"`
	SonicPrice   string `json:"sonic_price,omitempty"`
}

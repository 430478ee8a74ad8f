package event

const (
	AuthCodeIssuedDestination     string = "auth.code.issued"
	AuthSessionCreatedDestination string = "auth.session.created"
	AuthSessionRevokedDestination string = "auth.session.revoked"
)

// AuthCodeIssuedMessage never carries the code itself.
type AuthCodeIssuedMessage struct {
	EventID    string `json:"event_id"`
	IssuanceID int64  `json:"issuance_id"`
	IssuedAt   int64  `json:"issued_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

type AuthSessionCreatedMessage struct {
	EventID    string `json:"event_id"`
	IssuanceID int64  `json:"issuance_id"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

type AuthSessionRevokedMessage struct {
	EventID   string `json:"event_id"`
	RevokedAt int64  `json:"revoked_at"`
}

package domain

import "time"

// CodeTTL is how long an activation code stays redeemable.
const CodeTTL = 45 * 24 * time.Hour

// ActivationCode is one persisted one-time code.
type ActivationCode struct {
	Code       string    `bson:"code_plain" json:"code_plain"`
	Label      string    `bson:"label" json:"label"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	EndMessage string    `bson:"end_message" json:"end_message"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

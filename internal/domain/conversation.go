package domain

import "time"

// Conversation groups messages between exactly two members. Members are
// stored canonically ordered; never mutated, never deleted.
type Conversation struct {
	ID        string    `json:"id"`
	MemberA   string    `json:"memberA"`
	MemberB   string    `json:"memberB"`
	CreatedAt time.Time `json:"createdAt"`
}

// Members returns the member pair in canonical order.
func (c Conversation) Members() []string {
	return []string{c.MemberA, c.MemberB}
}

// Has reports whether the identity is one of the two members.
func (c Conversation) Has(identity string) bool {
	return identity == c.MemberA || identity == c.MemberB
}

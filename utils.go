package pingme

// CanonicalPair orders two member identities so that (a, b) and (b, a)
// address the same conversation row. The ordered pair backs the storage
// level uniqueness constraint.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Counterpart returns the other member of a two-party conversation, or
// false when the given identity is not a member at all.
func Counterpart(memberA, memberB, self string) (string, bool) {
	switch self {
	case memberA:
		return memberB, true
	case memberB:
		return memberA, true
	default:
		return "", false
	}
}

package models

// Friendship is a symmetric relation between two users.
// It is stored once per unordered pair with UserOne < UserTwo.
type Friendship struct {
	UserOne string
	UserTwo string

	// ActionUser is the user who created the relation.
	ActionUser string

	CreatedAt int64
}

// FriendPair orders two user IDs the way friendships are keyed.
func FriendPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the member of the friendship that is not userID.
func (f Friendship) Other(userID string) string {
	if f.UserOne == userID {
		return f.UserTwo
	}
	return f.UserOne
}

package models

// A user's profile record. Display name, username and avatar belong to the
// identity provider and get merged in at read time; the bio is the only
// thing we store ourselves.
type Profile struct {
	UserID string `db:"user_id"`
	Bio    string `db:"bio"`
}

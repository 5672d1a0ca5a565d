package domain

// Identity names the owner of a cart: an authenticated user id, or a
// device id for guests browsing without an account.
type Identity struct {
	UserID   string
	DeviceID string
}

func (id Identity) IsGuest() bool {
	return id.UserID == ""
}

func (id Identity) IsZero() bool {
	return id.UserID == "" && id.DeviceID == ""
}

// Key is the storage key for this identity's cart.
func (id Identity) Key() string {
	if id.UserID != "" {
		return id.UserID
	}
	return "guest:" + id.DeviceID
}

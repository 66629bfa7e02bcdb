// File: internal/domain/identity.go
package domain

// Identity is the authenticated account the bridge acts as.
type Identity struct {
	UserID    int64
	FirstName string
	LastName  string
	Phone     string
}

// PhoneSuffix returns at most the last 4 characters of the phone number,
// or nil when the number is unknown.
func (i *Identity) PhoneSuffix() *string {
	if i == nil || i.Phone == "" {
		return nil
	}
	suffix := i.Phone
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return &suffix
}

package domain

// ProviderType identifies how an identity signed in.
type ProviderType string

const (
	ProviderBasic  ProviderType = "BASIC"
	ProviderGoogle ProviderType = "GOOGLE"
)

// Provider ids attached to identities.
const (
	ProviderIDPassword = "password"
	ProviderIDGoogle   = "google.com"
)

// ParseProviderType returns the provider for a stored name.
func ParseProviderType(value string) (ProviderType, bool) {
	switch ProviderType(value) {
	case ProviderBasic, ProviderGoogle:
		return ProviderType(value), true
	default:
		return "", false
	}
}

// Identity is the authenticated caller. A nil *Identity means no one is signed in.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	ProviderIDs   []string
	EmailVerified bool
}

// AuthorName is the label written on comments.
func (i *Identity) AuthorName() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}

// HasProvider reports whether the identity is linked to providerID.
func (i *Identity) HasProvider(providerID string) bool {
	for _, p := range i.ProviderIDs {
		if p == providerID {
			return true
		}
	}
	return false
}

// Provider maps the linked providers to a session provider type.
func (i *Identity) Provider() ProviderType {
	if i.HasProvider(ProviderIDGoogle) {
		return ProviderGoogle
	}
	return ProviderBasic
}

// Session is the last-known sign-in kept for resumption.
type Session struct {
	Email    string
	Provider ProviderType
}

package service

import "strings"

// Providers that ignore dots and +tags in the local part of an address.
var aliasFoldingDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// CanonicalizeEmail is the uniqueness key stored in users.canonical_email.
// Addresses compare case-insensitively; Gmail aliases fold onto one mailbox.
func CanonicalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || !aliasFoldingDomains[domain] {
		return email
	}

	local, _, _ = strings.Cut(local, "+")
	return strings.ReplaceAll(local, ".", "") + "@" + domain
}

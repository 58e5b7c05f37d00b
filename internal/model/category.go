package model

// Categories offered by the client. The server stores whatever it receives.
var Categories = []string{
	"Electronics",
	"Bag",
	"Key",
	"Document",
	"Wallet",
	"Other",
}

const DefaultCategory = "Other"

// IsKnownCategory reports whether name is one of Categories (exact, case-sensitive).
func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

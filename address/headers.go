package address

import (
	"strings"
)

var addressHeaders = []string{
	"From", "Sender", "Reply-To",
	"To", "Cc", "Bcc",
	"Resent-From", "Resent-Sender", "Resent-To", "Resent-Cc", "Resent-Bcc",
}

// AddressHeaders returns the names of the header fields whose value is an
// address list.
func AddressHeaders() []string {
	return append([]string(nil), addressHeaders...)
}

// IsAddressHeader reports whether name is one of AddressHeaders. The
// comparison is case-insensitive and exact.
func IsAddressHeader(name string) bool {
	for _, h := range addressHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

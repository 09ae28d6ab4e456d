package queue

import "regexp"

// Error text from a submission capability frequently embeds raw transaction
// material: private-key-shaped 64-hex blobs, 20-byte addresses, calldata.
// None of that may cross the observability boundary, so high-entropy hex
// substrings are replaced with placeholders before an error string is handed
// to Events or a logger.
var (
	// 32 bytes or more of hex, with or without the 0x prefix. Private keys
	// and transaction hashes fall in this bucket.
	hexSecretPattern = regexp.MustCompile(`(0x)?[0-9a-fA-F]{64,}`)

	// Exactly 20 bytes of 0x-prefixed hex: an address.
	hexAddressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

	// Any remaining 0x-prefixed hex run of 8 bytes or more: calldata
	// fragments, topics, and similar.
	hexRunPattern = regexp.MustCompile(`0x[0-9a-fA-F]{16,}`)
)

// SanitizeError renders an error as a string safe for the observability
// boundary. A nil error yields the empty string.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error())
}

func sanitize(s string) string {
	s = hexSecretPattern.ReplaceAllString(s, "[REDACTED]")
	s = hexAddressPattern.ReplaceAllString(s, "[REDACTED]")
	s = hexRunPattern.ReplaceAllString(s, "[REDACTED]")
	return s
}

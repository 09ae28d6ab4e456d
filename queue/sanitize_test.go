package queue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "private key shaped hex",
			in:   "invalid key 4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d",
			want: "invalid key [REDACTED]",
		},
		{
			name: "prefixed private key",
			in:   "rejected 0x4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d",
			want: "rejected [REDACTED]",
		},
		{
			name: "address",
			in:   "nonce too low for 0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1",
			want: "nonce too low for [REDACTED]",
		},
		{
			name: "calldata fragment",
			in:   "revert at 0xa9059cbb00000000000000aabbccdd",
			want: "revert at [REDACTED]",
		},
		{
			name: "short hex untouched",
			in:   "chain id 0x1 selector 0xa9059cbb",
			want: "chain id 0x1 selector 0xa9059cbb",
		},
		{
			name: "plain text untouched",
			in:   "connection refused",
			want: "connection refused",
		},
		{
			name: "multiple secrets",
			in: "from 0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1 to 0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0",
			want: "from [REDACTED] to [REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(errors.New(tt.in))
			if got != tt.want {
				t.Errorf("SanitizeError(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeErrorNil(t *testing.T) {
	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}
}

func TestSanitizeErrorNeverLeaksLongHex(t *testing.T) {
	// Whatever the surrounding text, a 64-char hex run must not survive.
	secret := strings.Repeat("ab", 32)
	for _, format := range []string{"%s", "key=%s", "[%s]", "%s: signing failed"} {
		err := fmt.Errorf(format, secret)
		if strings.Contains(SanitizeError(err), secret) {
			t.Errorf("secret survived sanitization in %q", format)
		}
	}
}

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{"plain address", "ada@example.org", "ada@example.org", true},
		{"trims and lowercases domain", "  Ada.Lovelace@Example.ORG ", "Ada.Lovelace@example.org", true},
		{"plus tag kept", "ops+ledger@charity.org.uk", "ops+ledger@charity.org.uk", true},
		{"missing at", "ada.example.org", "", false},
		{"bare host", "ada@localhost", "", false},
		{"display name rejected", "Ada <ada@example.org>", "", false},
		{"empty", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

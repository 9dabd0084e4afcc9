package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   string
	}{
		{"plain digits", "4111111111111234", "xxxx-xxxx-xxxx-1234"},
		{"with spaces", "4111 1111 1111 1234", "xxxx-xxxx-xxxx-1234"},
		{"with dashes", "4111-1111-1111-1234", "xxxx-xxxx-xxxx-1234"},
		{"exactly four digits", "1234", "xxxx-xxxx-xxxx-1234"},
		{"too short", "123", ""},
		{"empty", "", ""},
		{"non-digit noise", "card: 4111.1111.1111.9876", "xxxx-xxxx-xxxx-9876"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskCardNumber(tt.number))
		})
	}
}

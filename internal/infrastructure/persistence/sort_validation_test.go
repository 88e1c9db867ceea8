package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSort_OrderBy(t *testing.T) {
	tests := []struct {
		name  string
		field string
		dir   string
		want  string
	}{
		{"defaults to newest first", "", "", "created_at DESC"},
		{"whitelisted field", "amount", "desc", "amount DESC"},
		{"ascending", "confirmed_at", "asc", "confirmed_at ASC"},
		{"direction is case insensitive", "status", " ASC ", "status ASC"},
		{"unknown field falls back", "customer_email", "asc", "created_at ASC"},
		{"json column is not sortable", "metadata", "", "created_at DESC"},
		{"field names are case sensitive", "AMOUNT", "", "created_at DESC"},
		{"unknown direction is DESC", "amount", "sideways", "amount DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paymentSort.orderBy(tt.field, tt.dir))
		})
	}
}

func TestPaymentSort_RejectsInjection(t *testing.T) {
	payloads := []string{
		"amount; DROP TABLE payments;--",
		"amount' OR '1'='1",
		"amount UNION SELECT * FROM orders",
		"(SELECT customer_email FROM payments)",
		"amount\n; DELETE FROM payments",
	}
	for _, p := range payloads {
		assert.Equal(t, "created_at DESC", paymentSort.orderBy(p, p), "payload %q", p)
	}
}

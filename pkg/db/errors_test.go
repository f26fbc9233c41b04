package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{
			name:       "postgres names the constraint",
			err:        errors.New(`duplicate key value violates unique constraint "ux_coupon_redemptions_issuance"`),
			constraint: "ux_coupon_redemptions_issuance",
			want:       true,
		},
		{
			name:       "sqlite reports the column list without the constraint name",
			err:        errors.New("UNIQUE constraint failed: coupon_redemptions.issuance_id"),
			constraint: "ux_coupon_redemptions_issuance",
			want:       true,
		},
		{
			name:       "generic match without a constraint name",
			err:        errors.New("duplicate key value violates unique constraint"),
			constraint: "",
			want:       true,
		},
		{
			name:       "unrelated database error",
			err:        errors.New("connection reset by peer"),
			constraint: "ux_coupon_redemptions_issuance",
			want:       false,
		},
		{
			name:       "nil error",
			err:        nil,
			constraint: "ux_coupon_redemptions_issuance",
			want:       false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}

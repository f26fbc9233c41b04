package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookhaven/bookstore-backend/pkg/migrate"
)

func TestCouponMigrationEnforcesSingleRedemption(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_coupons.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no coupons migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS coupon_redemptions",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_coupon_redemptions_issuance ON coupon_redemptions (issuance_id)",
		"FOREIGN KEY (issuance_id) REFERENCES coupon_issuances(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS coupon_redemptions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPointsMigrationKeepsBalanceNonNegative(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_points.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no points migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (balance >= 0)") {
		t.Error("expected non-negative balance check on point_balances")
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

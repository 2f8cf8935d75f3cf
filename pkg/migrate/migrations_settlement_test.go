package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beezio/settlement-backend/pkg/migrate"
)

func TestMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestTransactionsMigrationContainsGuards(t *testing.T) {
	content := readMigration(t, "*_create_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_payment_intent",
		"status transaction_status NOT NULL DEFAULT 'pending'",
		"DROP TABLE IF EXISTS transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentEventsMigrationContainsReplayGuard(t *testing.T) {
	content := readMigration(t, "*_create_payment_events.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payment_events",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_payment_events_stripe_event_id",
		"DROP TABLE IF EXISTS payment_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDistributionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_distributions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS distributions",
		"CHECK (amount_cents >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_distributions_tx_recipient",
		"REFERENCES transactions(id)",
		"DROP TABLE IF EXISTS distributions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumMigrationCoversSettlementStates(t *testing.T) {
	content := readMigration(t, "*_create_settlement_enums.sql")

	checks := []string{
		"CREATE TYPE transaction_status AS ENUM",
		"'dispute_won'",
		"'dispute_lost'",
		"CREATE TYPE distribution_status AS ENUM ('held', 'pending', 'completed')",
		"CREATE TYPE recipient_type AS ENUM ('seller', 'affiliate', 'platform')",
		"CREATE TYPE event_type_enum AS ENUM",
		"'order_settled'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Invoicer store.
var Migrations = migrate.NewGroup("invoicer")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_invoicer_sequence",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_sequence (
    name  TEXT PRIMARY KEY,
    value BIGINT NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_sequence`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_invoicer_invoices",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_invoices (
    id              TEXT PRIMARY KEY,
    owner_id        TEXT NOT NULL DEFAULT '',
    number          TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'draft',
    currency        TEXT NOT NULL DEFAULT '',
    client_name     TEXT NOT NULL DEFAULT '',
    client_email    TEXT NOT NULL DEFAULT '',
    client_address  TEXT NOT NULL DEFAULT '',
    items           JSONB NOT NULL DEFAULT '[]',
    total_amount    TEXT NOT NULL DEFAULT '0',
    total_currency  TEXT NOT NULL DEFAULT '',
    issue_date      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    due_date        TIMESTAMPTZ,
    sent_at         TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_invoicer_invoices_owner ON invoicer_invoices (owner_id);
CREATE INDEX IF NOT EXISTS idx_invoicer_invoices_status ON invoicer_invoices (owner_id, status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_invoicer_invoices_number ON invoicer_invoices (number);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_invoicer_delivery_attempts",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_delivery_attempts (
    id         TEXT PRIMARY KEY,
    invoice_id TEXT NOT NULL DEFAULT '',
    recipient  TEXT NOT NULL DEFAULT '',
    succeeded  BOOLEAN NOT NULL DEFAULT FALSE,
    error      TEXT NOT NULL DEFAULT '',
    at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_invoicer_attempts_invoice ON invoicer_delivery_attempts (invoice_id, at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_delivery_attempts`)
				return err
			},
		},
	)
}

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL DEFAULT '',
  first_name    TEXT        NOT NULL DEFAULT '',
  last_name     TEXT        NOT NULL DEFAULT '',
  password_hash TEXT        NOT NULL,
  is_staff      BOOLEAN     NOT NULL DEFAULT false,
  is_active     BOOLEAN     NOT NULL DEFAULT true,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  user_id    UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  position   TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_document_categories",
		SQL: `CREATE TABLE IF NOT EXISTS document_categories (
  id          UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        VARCHAR(100) NOT NULL CHECK (name <> ''),
  description TEXT,
  created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_storage_locations",
		SQL: `CREATE TABLE IF NOT EXISTS storage_locations (
  id         UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       VARCHAR(100) NOT NULL,
  room       VARCHAR(50)  NOT NULL,
  shelf      VARCHAR(50)  NOT NULL,
  box        VARCHAR(50),
  created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                  UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  title               VARCHAR(200) NOT NULL,
  document_type       VARCHAR(20)  NOT NULL,
  document_number     VARCHAR(50)  NOT NULL,
  category_id         UUID         REFERENCES document_categories (id) ON DELETE SET NULL,
  issue_date          DATE         NOT NULL,
  expiry_date         DATE,
  storage_location_id UUID         REFERENCES storage_locations (id) ON DELETE SET NULL,
  description         TEXT,
  file_key            TEXT,
  file_name           TEXT,
  file_size           BIGINT       CHECK (file_size >= 0),
  file_content_type   TEXT,
  created_by          UUID         REFERENCES users (id) ON DELETE SET NULL,
  created_at          TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);`,
	},
	{
		Name: "create_index_documents_issue_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_issue_date ON documents (issue_date);`,
	},
	{
		Name: "create_index_documents_category_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_category_id ON documents (category_id);`,
	},
	{
		Name: "create_index_documents_storage_location_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_storage_location_id ON documents (storage_location_id);`,
	},
	{
		Name: "create_table_document_history",
		SQL: `CREATE TABLE IF NOT EXISTS document_history (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  user_id     UUID        REFERENCES users (id) ON DELETE SET NULL,
  action      VARCHAR(10) NOT NULL,
  timestamp   TIMESTAMPTZ NOT NULL DEFAULT now(),
  details     TEXT
);`,
	},
	{
		Name: "create_index_document_history_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_history_document_id ON document_history (document_id, timestamp DESC);`,
	},
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id           UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  title        VARCHAR(200) NOT NULL,
  report_type  VARCHAR(20)  NOT NULL,
  parameters   JSONB,
  file_key     TEXT,
  file_name    TEXT,
  file_size    BIGINT,
  content_type TEXT,
  created_by   UUID         REFERENCES users (id) ON DELETE SET NULL,
  created_at   TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated applies every step not yet recorded in schema_migrations.
// Steps are idempotent DDL, so a partially applied run is safe to repeat.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logrus.Logger, dbHost string) error {
	start := time.Now()
	entry := log.WithFields(logrus.Fields{"component": "database", "db_host": dbHost})

	entry.WithField("status", "starting").Info("db_migration_check")

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		entry.WithFields(logrus.Fields{
			"status":      "error",
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Error("db_migration_failed")
		return fmt.Errorf("create migration ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		entry.WithFields(logrus.Fields{
			"status":      "error",
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Error("db_migration_failed")
		return err
	}

	pending := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		pending++
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			entry.WithFields(logrus.Fields{
				"status":           "error",
				"migration_step":   step.Name,
				"error":            err.Error(),
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).Error("db_migration_failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
			return fmt.Errorf("record migration step %s: %w", step.Name, err)
		}
		entry.WithFields(logrus.Fields{
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("db_migration_step")
	}

	if pending == 0 {
		entry.WithFields(logrus.Fields{
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("db_migration_skip")
		return nil
	}

	entry.WithFields(logrus.Fields{
		"status":      "success",
		"steps":       pending,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("db_migration_success")
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

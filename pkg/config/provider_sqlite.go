package config

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS channel_configs (
	channel          TEXT PRIMARY KEY,
	low_clip         REAL NOT NULL,
	high_clip        REAL NOT NULL,
	low_clip2        REAL NOT NULL,
	high_clip2       REAL NOT NULL,
	smoothing_width1 REAL NOT NULL,
	smoothing_width2 REAL NOT NULL,
	use_absolute1    INTEGER NOT NULL,
	use_absolute2    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS torque_config (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	contact_threshold      REAL NOT NULL,
	full_contact_threshold REAL NOT NULL,
	unit_scale             REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Rows that are not present in the database keep their default values.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the configuration tables if they do not exist
func (s *SQLiteProvider) InitSchema() error {
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create config schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := Defaults()

	// Load analysis
	if err := s.loadAnalysis(&config.Analysis); err != nil {
		return nil, err
	}

	// Load input and output settings
	if err := s.loadSettings(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (s *SQLiteProvider) loadAnalysis(analysis *AnalysisData) error {
	query := `
		SELECT channel, low_clip, high_clip, low_clip2, high_clip2,
		       smoothing_width1, smoothing_width2, use_absolute1, use_absolute2
		FROM channel_configs
		ORDER BY channel
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query channel configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel string
		var d DerivativeData

		err := rows.Scan(
			&channel, &d.LowClip, &d.HighClip, &d.LowClip2, &d.HighClip2,
			&d.SmoothingWidth1, &d.SmoothingWidth2, &d.UseAbsolute1, &d.UseAbsolute2,
		)
		if err != nil {
			return fmt.Errorf("failed to scan channel config row: %w", err)
		}

		target := analysis.Channel(channel)
		if target == nil {
			return fmt.Errorf("unknown channel %q in channel_configs", channel)
		}
		*target = d
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating channel configs: %w", err)
	}

	var t TorqueData
	err = s.db.QueryRow(
		`SELECT contact_threshold, full_contact_threshold, unit_scale FROM torque_config WHERE id = 1`,
	).Scan(&t.ContactThreshold, &t.FullContactThreshold, &t.UnitScale)
	switch {
	case err == sql.ErrNoRows:
		// Keep defaults
	case err != nil:
		return fmt.Errorf("failed to query torque config: %w", err)
	default:
		analysis.Torque = t
	}

	return nil
}

func (s *SQLiteProvider) loadSettings(config *ConfigData) error {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan setting row: %w", err)
		}

		switch key {
		case "input.extension":
			config.Input.Extension = value
		case "input.workers":
			workers, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid input.workers %q: %w", value, err)
			}
			config.Input.Workers = workers
		case "output.xlsx":
			config.Output.XLSX = value
		case "output.csv":
			config.Output.CSV = value
		case "output.json":
			config.Output.JSON = value
		case "output.msgpack":
			config.Output.MsgPack = value
		case "output.sqlite":
			config.Output.SQLite = value
		case "output.postgres":
			config.Output.Postgres = value
		case "output.metrics-textfile":
			config.Output.MetricsTextfile = value
		case "output.table":
			config.Output.Table = value == "true"
		}
	}

	return rows.Err()
}

// SaveConfig writes c into the database, replacing existing rows
func (s *SQLiteProvider) SaveConfig(c *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range []string{ChannelForce, ChannelSpeed, ChannelPosition} {
		d := c.Analysis.Channel(name)
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO channel_configs
			    (channel, low_clip, high_clip, low_clip2, high_clip2,
			     smoothing_width1, smoothing_width2, use_absolute1, use_absolute2)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, d.LowClip, d.HighClip, d.LowClip2, d.HighClip2,
			d.SmoothingWidth1, d.SmoothingWidth2, d.UseAbsolute1, d.UseAbsolute2,
		)
		if err != nil {
			return fmt.Errorf("failed to save %s channel config: %w", name, err)
		}
	}

	t := c.Analysis.Torque
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO torque_config (id, contact_threshold, full_contact_threshold, unit_scale)
		VALUES (1, ?, ?, ?)`,
		t.ContactThreshold, t.FullContactThreshold, t.UnitScale,
	)
	if err != nil {
		return fmt.Errorf("failed to save torque config: %w", err)
	}

	settings := map[string]string{
		"input.extension":         c.Input.Extension,
		"input.workers":           strconv.Itoa(c.Input.Workers),
		"output.xlsx":             c.Output.XLSX,
		"output.csv":              c.Output.CSV,
		"output.json":             c.Output.JSON,
		"output.msgpack":          c.Output.MsgPack,
		"output.sqlite":           c.Output.SQLite,
		"output.postgres":         c.Output.Postgres,
		"output.metrics-textfile": c.Output.MetricsTextfile,
		"output.table":            strconv.FormatBool(c.Output.Table),
	}
	for key, value := range settings {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

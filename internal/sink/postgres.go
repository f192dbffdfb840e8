package sink

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/weldphase/internal/log"
)

// postgresBatchSize is the number of rows per INSERT
const postgresBatchSize = 200

// PostgresSink appends the report to the weld_records table of a PostgreSQL
// (or TimescaleDB) database
type PostgresSink struct {
	db *gorm.DB
}

// NewPostgresSink connects to the database at connectionString
func NewPostgresSink(connectionString string) (*PostgresSink, error) {
	db, err := openPostgres(connectionString, &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, err
	}
	return &PostgresSink{db: db}, nil
}

func openPostgres(connectionString string, config *gorm.Config) (*gorm.DB, error) {
	log.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(connectionString), config)
	if err != nil {
		log.Warnf("unable to create a PostgreSQL connection: %v", err)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("PostgreSQL connection successful")
	return db, nil
}

func gormLogger() logger.Interface {
	return logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func (s *PostgresSink) Name() string {
	return "postgres"
}

// Write migrates weld_records and inserts every record of r in batches
func (s *PostgresSink) Write(ctx context.Context, r *Report) error {
	db := s.db.WithContext(ctx)

	if err := db.AutoMigrate(&WeldRecord{}); err != nil {
		return fmt.Errorf("failed to migrate weld_records: %w", err)
	}

	rows := weldRecords(r)
	if len(rows) == 0 {
		return nil
	}

	if err := db.CreateInBatches(rows, postgresBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert weld records: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func weldRecords(r *Report) []WeldRecord {
	runID := r.RunID.String()
	records := r.Records()

	rows := make([]WeldRecord, len(records))
	for i, rec := range records {
		rows[i] = NewWeldRecord(runID, r.CreatedAt, rec)
	}
	return rows
}

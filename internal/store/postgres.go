package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"Bingo2Gether/internal/model"
)

// gameRecord is the row layout created by db/migrations.
type gameRecord struct {
	CoupleID  string    `gorm:"column:couple_id;primaryKey"`
	State     []byte    `gorm:"column:state;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (gameRecord) TableName() string { return "games" }

// PostgresStore keeps game documents in Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects and pings the database. The schema comes from Migrator.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: gdb}, nil
}

func (s *PostgresStore) Load(ctx context.Context, coupleID string) (*model.GameState, error) {
	if err := validID(coupleID); err != nil {
		return nil, err
	}
	var rec gameRecord
	err := s.db.WithContext(ctx).Where("couple_id = ?", coupleID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", coupleID, err)
	}
	return decode(rec.State)
}

func (s *PostgresStore) Save(ctx context.Context, coupleID string, state model.GameState) error {
	if err := validID(coupleID); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	rec := gameRecord{CoupleID: coupleID, State: data, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "couple_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save game %s: %w", coupleID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, coupleID string) error {
	if err := s.db.WithContext(ctx).Where("couple_id = ?", coupleID).Delete(&gameRecord{}).Error; err != nil {
		return fmt.Errorf("delete game %s: %w", coupleID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	sdb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sdb.Close()
}

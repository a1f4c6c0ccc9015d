package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

type teamRow struct {
	Position  int `gorm:"primaryKey;autoIncrement:false"`
	IntroTm   string
	ClaimTm   string
	Player    string
	Amt       int
	MoneyLeft int
}

func (teamRow) TableName() string { return "draft_teams" }

type roundRow struct {
	Position int `gorm:"primaryKey;autoIncrement:false"`
	Tm       string
	Amt      int
}

func (roundRow) TableName() string { return "draft_round_entries" }

type metaRow struct {
	ID            int `gorm:"primaryKey;autoIncrement:false"`
	LastChannelID string
}

func (metaRow) TableName() string { return "draft_meta" }

const metaID = 1

// PostgresStore keeps the snapshot in three tables and rewrites all of them
// in a single transaction on every Save.
type PostgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres store needs DATABASE_URL")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&teamRow{}, &roundRow{}, &metaRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{db: db, log: logger.Named("pgstore")}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (engine.State, error) {
	db := s.db.WithContext(ctx)

	var teams []teamRow
	if err := db.Order("position").Find(&teams).Error; err != nil {
		return engine.NewEmptyState(), fmt.Errorf("load teams: %w", err)
	}
	var round []roundRow
	if err := db.Order("position").Find(&round).Error; err != nil {
		return engine.NewEmptyState(), fmt.Errorf("load round: %w", err)
	}
	var meta metaRow
	err := db.First(&meta, metaID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.NewEmptyState(), fmt.Errorf("load meta: %w", err)
	}

	return fromRows(teams, round, meta), nil
}

func (s *PostgresStore) Save(ctx context.Context, state engine.State) error {
	teams, round, meta := toRows(state)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&teamRow{}).Error; err != nil {
			return fmt.Errorf("clear teams: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&roundRow{}).Error; err != nil {
			return fmt.Errorf("clear round: %w", err)
		}
		if len(teams) > 0 {
			if err := tx.Create(&teams).Error; err != nil {
				return fmt.Errorf("insert teams: %w", err)
			}
		}
		if len(round) > 0 {
			if err := tx.Create(&round).Error; err != nil {
				return fmt.Errorf("insert round: %w", err)
			}
		}
		if err := tx.Save(&meta).Error; err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRows(s engine.State) ([]teamRow, []roundRow, metaRow) {
	teams := make([]teamRow, 0, len(s.Draft))
	for i, e := range s.Draft {
		teams = append(teams, teamRow{
			Position:  i,
			IntroTm:   e.IntroTm,
			ClaimTm:   e.ClaimTm,
			Player:    e.Player,
			Amt:       e.Amt,
			MoneyLeft: e.MoneyLeft,
		})
	}
	round := make([]roundRow, 0, len(s.Round))
	for i, e := range s.Round {
		round = append(round, roundRow{Position: i, Tm: e.Tm, Amt: e.Amt})
	}
	return teams, round, metaRow{ID: metaID, LastChannelID: s.LastChannelID.String()}
}

// fromRows expects rows already ordered by position.
func fromRows(teams []teamRow, round []roundRow, meta metaRow) engine.State {
	s := engine.NewEmptyState()
	for _, r := range teams {
		s.Draft = append(s.Draft, engine.TeamEntry{
			IntroTm:   r.IntroTm,
			ClaimTm:   r.ClaimTm,
			Player:    r.Player,
			Amt:       r.Amt,
			MoneyLeft: r.MoneyLeft,
		})
	}
	for _, r := range round {
		s.Round = append(s.Round, engine.RoundEntry{Tm: r.Tm, Amt: r.Amt})
	}
	s.LastChannelID = engine.ChannelID(meta.LastChannelID)
	return s
}

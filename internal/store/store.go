// Package store persists runs, controller snapshots and condition samples
// with gorm, on SQLite or Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/Ship-Sense/internal/ai"
	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/geom"
	"github.com/Garsondee/Ship-Sense/internal/orders"
	"github.com/Garsondee/Ship-Sense/internal/world"
)

// ErrNoSnapshot is returned when a run has no saved snapshot.
var ErrNoSnapshot = errors.New("store: no snapshot")

const batchSize = 500

// Store wraps a migrated gorm connection.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the configured backend and migrates the schema.
func Open(cfg config.Store, log zerolog.Logger) (*Store, error) {
	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gcfg)
		if err != nil {
			break
		}
		// One connection keeps an in-memory database alive and shared.
		sqlDB, derr := db.DB()
		if derr != nil {
			return nil, fmt.Errorf("store: sqlite handle: %w", derr)
		}
		sqlDB.SetMaxOpenConns(1)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	log.Info().Str("driver", cfg.Driver).Msg("store ready")
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return sqlDB.Close()
}

// StartRun records a new run and returns its id.
func (s *Store) StartRun(ctx context.Context, scenario string, seed int64) (uint, error) {
	run := Run{Scenario: scenario, Seed: seed, StartedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, fmt.Errorf("store: start run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stamps a run with its length and summary.
func (s *Store) FinishRun(ctx context.Context, id uint, ticks int, summary string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]any{
		"ticks":       ticks,
		"finished_at": &now,
		"summary":     summary,
	}).Error
	if err != nil {
		return fmt.Errorf("store: finish run %d: %w", id, err)
	}
	return nil
}

// Runs lists runs, newest first.
func (s *Store) Runs(ctx context.Context, scenario string) ([]Run, error) {
	q := s.db.WithContext(ctx).Order("id desc")
	if scenario != "" {
		q = q.Where("scenario = ?", scenario)
	}
	var out []Run
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

// SaveSnapshot writes a controller snapshot under a run.
func (s *Store) SaveSnapshot(ctx context.Context, runID uint, snap ai.Snapshot) (uint, error) {
	head := SnapshotRow{
		RunID:            runID,
		Tick:             snap.Tick,
		Launching:        snap.Launching,
		EscortsUseAmmo:   snap.EscortsUseAmmo,
		EscortsAreFrugal: snap.EscortsAreFrugal,
		Autopilot:        uint64(snap.Autopilot),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&head).Error; err != nil {
			return err
		}
		if len(snap.Ships) > 0 {
			rows := make([]ShipStateRow, len(snap.Ships))
			for i, st := range snap.Ships {
				rows[i] = shipRow(head.ID, st)
			}
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return err
			}
		}
		if len(snap.Ledger) > 0 {
			rows := make([]LedgerRow, len(snap.Ledger))
			for i, r := range snap.Ledger {
				rows[i] = LedgerRow{
					SnapshotID: head.ID,
					Kind:       string(r.Kind),
					Actor:      uint64(r.Actor),
					Target:     uint64(r.Target),
					Government: r.Government,
					Events:     uint32(r.Events),
				}
			}
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: save snapshot for run %d: %w", runID, err)
	}
	s.log.Debug().Uint("run", runID).Int("tick", snap.Tick).Int("ships", len(snap.Ships)).
		Int("ledger", len(snap.Ledger)).Msg("snapshot saved")
	return head.ID, nil
}

// LoadSnapshot reads the latest snapshot of a run.
func (s *Store) LoadSnapshot(ctx context.Context, runID uint) (ai.Snapshot, error) {
	db := s.db.WithContext(ctx)
	var head SnapshotRow
	err := db.Where("run_id = ?", runID).Order("tick desc, id desc").First(&head).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ai.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return ai.Snapshot{}, fmt.Errorf("store: load snapshot for run %d: %w", runID, err)
	}

	var ships []ShipStateRow
	if err := db.Where("snapshot_id = ?", head.ID).Order("ship_id").Find(&ships).Error; err != nil {
		return ai.Snapshot{}, fmt.Errorf("store: load ship states: %w", err)
	}
	var ledger []LedgerRow
	if err := db.Where("snapshot_id = ?", head.ID).Order("id").Find(&ledger).Error; err != nil {
		return ai.Snapshot{}, fmt.Errorf("store: load ledger: %w", err)
	}

	snap := ai.Snapshot{
		Tick:             head.Tick,
		Launching:        head.Launching,
		EscortsUseAmmo:   head.EscortsUseAmmo,
		EscortsAreFrugal: head.EscortsAreFrugal,
		Autopilot:        world.Command(head.Autopilot),
	}
	for _, r := range ships {
		snap.Ships = append(snap.Ships, shipState(r))
	}
	for _, r := range ledger {
		snap.Ledger = append(snap.Ledger, ai.LedgerRow{
			Kind:       ai.LedgerKind(r.Kind),
			Actor:      world.ShipID(r.Actor),
			Target:     world.ShipID(r.Target),
			Government: r.Government,
			Events:     world.EventType(r.Events),
		})
	}
	return snap, nil
}

// RecordConditions appends one tick of derived conditions.
func (s *Store) RecordConditions(ctx context.Context, runID uint, tick int, conds []ai.Condition) error {
	if len(conds) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]ConditionSample, len(conds))
	for i, c := range conds {
		rows[i] = ConditionSample{RunID: runID, Tick: tick, Name: c.Name, Value: c.Value, Time: now}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("store: record conditions for run %d: %w", runID, err)
	}
	return nil
}

// ConditionSeries returns one condition's samples for a run in tick order.
func (s *Store) ConditionSeries(ctx context.Context, runID uint, name string) ([]ConditionSample, error) {
	var out []ConditionSample
	err := s.db.WithContext(ctx).Where("run_id = ? AND name = ?", runID, name).Order("tick").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("store: condition series %q: %w", name, err)
	}
	return out, nil
}

func shipRow(snapshotID uint, st ai.ShipState) ShipStateRow {
	return ShipStateRow{
		SnapshotID:      snapshotID,
		ShipID:          uint64(st.ID),
		FenceCount:      st.FenceCount,
		SwarmCount:      st.SwarmCount,
		SwarmTarget:     uint64(st.SwarmTarget),
		ScanCount:       st.ScanCount,
		ScanTime:        st.ScanTime,
		MiningTime:      st.MiningTime,
		MiningAngle:     uint32(st.MiningAngle),
		Appeasement:     st.Appeasement,
		BoardingPartner: uint64(st.BoardingPartner),
		Helper:          uint64(st.Helper),
		Strength:        st.Strength,
		HasOrders:       st.HasOrders,
		OrderTypes:      uint16(st.OrderTypes),
		OrderShip:       uint64(st.OrderShip),
		OrderX:          st.OrderPoint.X,
		OrderY:          st.OrderPoint.Y,
		OrderSystem:     st.OrderSystem,
	}
}

func shipState(r ShipStateRow) ai.ShipState {
	return ai.ShipState{
		ID:              world.ShipID(r.ShipID),
		FenceCount:      r.FenceCount,
		SwarmCount:      r.SwarmCount,
		SwarmTarget:     world.ShipID(r.SwarmTarget),
		ScanCount:       r.ScanCount,
		ScanTime:        r.ScanTime,
		MiningTime:      r.MiningTime,
		MiningAngle:     geom.Angle(r.MiningAngle),
		Appeasement:     r.Appeasement,
		BoardingPartner: world.ShipID(r.BoardingPartner),
		Helper:          world.ShipID(r.Helper),
		Strength:        r.Strength,
		HasOrders:       r.HasOrders,
		OrderTypes:      orders.Type(r.OrderTypes),
		OrderShip:       world.ShipID(r.OrderShip),
		OrderPoint:      geom.Pt(r.OrderX, r.OrderY),
		OrderSystem:     r.OrderSystem,
	}
}

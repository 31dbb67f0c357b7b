package store

import (
	"time"

	"gorm.io/gorm"
)

// Models is every table the store migrates.
var Models = []any{
	&Run{},
	&SnapshotRow{},
	&ShipStateRow{},
	&LedgerRow{},
	&ConditionSample{},
}

// Run is one headless or interactive session.
type Run struct {
	gorm.Model
	Scenario   string `gorm:"size:64;index:idx_run_scenario"`
	Seed       int64
	Ticks      int
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    string `gorm:"size:4000"`
}

// SnapshotRow is the header of a saved controller snapshot.
type SnapshotRow struct {
	gorm.Model
	RunID            uint `gorm:"index:idx_snapshot_run"`
	Run              Run  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:RunID"`
	Tick             int  `gorm:"index:idx_snapshot_tick"`
	Launching        bool
	EscortsUseAmmo   bool
	EscortsAreFrugal bool
	Autopilot        uint64
}

// ShipStateRow is one ship's controller bookkeeping in a snapshot.
type ShipStateRow struct {
	ID              uint `gorm:"primarykey"`
	SnapshotID      uint `gorm:"index:idx_shipstate_snapshot"`
	ShipID          uint64
	FenceCount      int
	SwarmCount      int
	SwarmTarget     uint64
	ScanCount       int
	ScanTime        int
	MiningTime      int
	MiningAngle     uint32
	Appeasement     float64
	BoardingPartner uint64
	Helper          uint64
	Strength        int64

	HasOrders   bool
	OrderTypes  uint16
	OrderShip   uint64
	OrderX      float64
	OrderY      float64
	OrderSystem string `gorm:"size:127"`
}

// LedgerRow is one flattened ledger entry in a snapshot.
type LedgerRow struct {
	ID         uint   `gorm:"primarykey"`
	SnapshotID uint   `gorm:"index:idx_ledger_snapshot"`
	Kind       string `gorm:"size:16"`
	Actor      uint64
	Target     uint64
	Government string `gorm:"size:127"`
	Events     uint32
}

// ConditionSample is one derived value at one tick.
type ConditionSample struct {
	ID    uint   `gorm:"primarykey"`
	RunID uint   `gorm:"index:idx_condition_run"`
	Tick  int    `gorm:"index:idx_condition_tick"`
	Name  string `gorm:"size:127;index:idx_condition_name"`
	Value int64
	Time  time.Time
}

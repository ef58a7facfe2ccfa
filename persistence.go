package pairengine

import (
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenStore opens (creating if absent) a pure-Go SQLite-backed gorm
// connection for PairCore snapshots and makes sure the table exists.
// Uses glebarez/sqlite, a pure-Go, cgo-free SQLite driver, rather than
// mattn/go-sqlite3.
func OpenStore(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PairCore{}); err != nil {
		return nil, err
	}
	return db, nil
}

// LoadPair reads the most recently flushed snapshot for pairAddress,
// rehydrating the in-memory tick graph, position table and oracle ring
// buffer from their JSON-blob columns (TickManager/PositionManager/Oracle
// each implement gorm's Scanner/Valuer), the dual of PairCore.Flush.
func LoadPair(db *gorm.DB, pairAddress string) (*PairCore, error) {
	var p PairCore
	err := db.Where("pair_address = ?", pairAddress).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if p.TickManager == nil {
		p.TickManager = NewTickManager(p.TickSpacing)
	}
	if p.PositionManager == nil {
		p.PositionManager = NewPositionManager()
	}
	if p.Oracle == nil {
		p.Oracle = NewOracle()
	}
	p.HasCreated = true
	return &p, nil
}

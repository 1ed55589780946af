package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"otc_go/internal/domain"
	"otc_go/internal/event"
)

// MarketState is the single durable row of process-wide market state.
type MarketState struct {
	ID            uint   `gorm:"primaryKey"`
	Owner         string `json:"owner"`
	OracleAddress string `json:"oracle_address"`
	OfferCounter  uint64 `json:"offer_counter"`
	EventSeq      uint64 `json:"event_seq"`
	UpdatedAt     time.Time
}

// JournalEntry is one persisted notification, appended in emit order.
type JournalEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Seq       uint64 `gorm:"index" json:"seq"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
	CreatedAt time.Time
}

// Storage persists the offer ledger, market state and the notification
// journal in a SQLite database (pure Go driver).
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at path and migrates the
// schema.
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Offer{}, &MarketState{}, &JournalEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// SaveOffer upserts the full offer record.
func (s *Storage) SaveOffer(off *domain.Offer) error {
	return s.db.Save(off).Error
}

// LoadOffers returns every persisted offer, open and closed, ordered by id.
func (s *Storage) LoadOffers() ([]*domain.Offer, error) {
	var offers []*domain.Offer
	if err := s.db.Order("id").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// SaveState upserts the singleton market state row.
func (s *Storage) SaveState(owner, oracleAddress string, offerCounter, eventSeq uint64) error {
	state := MarketState{
		ID:            1,
		Owner:         owner,
		OracleAddress: oracleAddress,
		OfferCounter:  offerCounter,
		EventSeq:      eventSeq,
	}
	return s.db.Save(&state).Error
}

// LoadState returns the persisted market state, or nil when none exists yet.
func (s *Storage) LoadState() (*MarketState, error) {
	var state MarketState
	err := s.db.First(&state, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// AppendEvent journals a notification as JSON.
func (s *Storage) AppendEvent(ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	entry := JournalEntry{
		Seq:     ev.GetSeq(),
		Type:    ev.GetType(),
		Payload: string(payload),
	}
	return s.db.Create(&entry).Error
}

// Journal returns all journal entries in append order, for audit and tests.
func (s *Storage) Journal() ([]JournalEntry, error) {
	var entries []JournalEntry
	if err := s.db.Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

package cart

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otterfood/storefront-app/models"
)

// SessionStorage persists cart snapshots to the database, one row per
// (session, storage key) pair, so a storefront session survives reconnects
// and new devices. Last writer wins; no cross-tab coordination is attempted.
type SessionStorage struct {
	db         *gorm.DB
	sessionKey string
}

func NewSessionStorage(db *gorm.DB, sessionKey string) *SessionStorage {
	return &SessionStorage{db: db, sessionKey: sessionKey}
}

func (s *SessionStorage) Get(key string) (string, error) {
	var snap models.CartSnapshot
	err := s.db.
		Where("session_key = ? AND storage_key = ?", s.sessionKey, key).
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return snap.Blob, nil
}

func (s *SessionStorage) Set(key, value string) error {
	snap := models.CartSnapshot{
		SessionKey: s.sessionKey,
		StorageKey: key,
		Blob:       value,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&snap).Error
}

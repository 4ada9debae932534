package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"freshops/internal"
	"freshops/internal/storage"
)

// MailStoreService persists fetched mail: the raw RFC 5322 bytes under a
// content-hash filename, plus an intake row keyed by provider+messageId.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewMailStoreService(db *storage.DB, rawMailDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir}
}

// Store writes one fetched message and returns its intake row. A message the
// store already holds with the same content hash is left untouched, status
// included, so refetching an overlapping window never resets rows the
// processor has already worked through. The second return value reports
// whether the message was new.
func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.IntakeRow, bool, error) {
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.db.GetIntakeByProviderMessageID(msg.Provider, msg.MessageID)
	if err != nil {
		return internal.IntakeRow{}, false, err
	}
	if existing != nil && existing.Hash == hash {
		return *existing, false, nil
	}

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.IntakeRow{}, false, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.IntakeRow{}, false, err
		}
	}

	row, err := s.db.UpsertIntake(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
	if err != nil {
		return internal.IntakeRow{}, false, err
	}
	return row, true, nil
}

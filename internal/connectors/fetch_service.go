package connectors

import (
	"time"

	"freshops/internal/storage"
)

const cursorKeyPrefix = "intake.cursor."

// FetchService pulls the intake mailbox incrementally. The newest receive
// time seen per provider is kept in the metadata table and passed back to
// the connector as the search window, so a poll cycle only asks the mailbox
// for mail the store has not seen yet. Messages that slip through the
// window anyway (providers with date-granular search) are recognized by
// content hash and counted as known instead of stored twice.
type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	Known   int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(provider, label string, max int) (FetchResult, error) {
	since, err := s.cursor(provider)
	if err != nil {
		return FetchResult{}, err
	}

	messages, err := s.connector.Fetch(FetchRequest{Label: label, Since: since, Max: max})
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	newest := since
	for _, msg := range messages {
		_, stored, err := s.store.Store(msg)
		if err != nil {
			return result, err
		}
		if stored {
			result.Stored++
		} else {
			result.Known++
		}
		if received, err := time.Parse(time.RFC3339, msg.ReceivedAt); err == nil && received.After(newest) {
			newest = received
		}
	}

	if newest.After(since) {
		if err := s.db.SetMetadata(cursorKeyPrefix+provider, newest.UTC().Format(time.RFC3339)); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *FetchService) cursor(provider string) (time.Time, error) {
	value, err := s.db.GetMetadata(cursorKeyPrefix + provider)
	if err != nil || value == nil {
		return time.Time{}, err
	}
	cursor, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		// Unreadable cursor: fall back to a full-window fetch rather
		// than failing the cycle.
		return time.Time{}, nil
	}
	return cursor, nil
}

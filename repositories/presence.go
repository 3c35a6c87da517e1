//go:generate go run go.uber.org/mock/mockgen -source=presence.go -destination=../mocks/mock_presence_repository.go -package=mocks
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"presence-lab/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

// IPresenceRepository is the durable mirror of last-known participant
// state, keyed by username. The in-memory registry stays the source of
// truth while the process lives; this store only has to survive restarts
// and reconnections.
type IPresenceRepository interface {
	Load(ctx context.Context, username string) (domain.PersistedRecord, bool, error)
	Save(ctx context.Context, username string, record domain.PersistedRecord) error
}

type PresenceRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPresenceRepository(db *badger.DB, log *slog.Logger) PresenceRepository {
	return PresenceRepository{db: db, log: log}
}

// diskRecord is the CBOR shape stored in BadgerDB. Kept separate from
// domain.PersistedRecord so the storage encoding can evolve without
// touching the domain.
type diskRecord struct {
	X       float64 `cbor:"x"`
	Y       float64 `cbor:"y"`
	Message string  `cbor:"message"`
}

func presenceKey(username string) []byte {
	return []byte(fmt.Sprintf("presence:%s", username))
}

// Load retrieves the last-known record for a username. The boolean is
// false when no record exists yet, which is not an error: the caller
// seeds spawn defaults.
func (r PresenceRepository) Load(_ context.Context, username string) (domain.PersistedRecord, bool, error) {
	var disk diskRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(presenceKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.PersistedRecord{}, false, nil
	}
	if err != nil {
		return domain.PersistedRecord{}, false, err
	}
	return domain.PersistedRecord{
		Position: domain.Position{X: disk.X, Y: disk.Y},
		Message:  disk.Message,
	}, true, nil
}

// Save overwrites the record for a username. Records are never deleted by
// the presence core.
func (r PresenceRepository) Save(_ context.Context, username string, record domain.PersistedRecord) error {
	bytes, err := cbor.Marshal(diskRecord{
		X:       record.Position.X,
		Y:       record.Position.Y,
		Message: record.Message,
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(presenceKey(username), bytes)
	})
}

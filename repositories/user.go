//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	Upsert(profile domain.Profile) error
	Get(id string) (domain.Profile, error)
	SetPresence(id string, online bool, lastSeen *time.Time) error
	All() ([]domain.Profile, error)
	SearchByName(name, excludeID string) ([]domain.Profile, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// profileDoc is the stored document shape for a user profile.
// The fields mirror what the identity provider writes; this core only
// mutates isOnline and lastSeen.
type profileDoc struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Image     string     `json:"image"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func userKey(id string) []byte {
	return []byte("user:" + id)
}

func (u UserRepository) Upsert(profile domain.Profile) error {
	data, err := json.Marshal(fromProfile(profile))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(profile.ID), data)
	})
}

func (u UserRepository) Get(id string) (domain.Profile, error) {
	var doc profileDoc
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Profile{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return toProfile(doc), nil
}

// SetPresence updates only the presence fields of a profile document.
// A read-modify-write inside one transaction keeps the rest of the
// document untouched.
func (u UserRepository) SetPresence(id string, online bool, lastSeen *time.Time) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		var doc profileDoc
		if err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}
		doc.IsOnline = online
		if lastSeen != nil {
			doc.LastSeen = lastSeen
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), data)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrUserNotFound
	}
	return err
}

func (u UserRepository) All() ([]domain.Profile, error) {
	return u.scan(func(doc profileDoc) bool { return true })
}

// SearchByName returns profiles whose name contains the query,
// case-insensitively, excluding the caller. A plain substring scan:
// relevance ranking belongs to a search engine, not this store.
func (u UserRepository) SearchByName(name, excludeID string) ([]domain.Profile, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	return u.scan(func(doc profileDoc) bool {
		if doc.ID == excludeID {
			return false
		}
		return strings.Contains(strings.ToLower(doc.Name), needle)
	})
}

func (u UserRepository) scan(keep func(profileDoc) bool) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc profileDoc
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}
			if keep(doc) {
				profiles = append(profiles, toProfile(doc))
			}
		}
		return nil
	})
	return profiles, err
}

func fromProfile(profile domain.Profile) profileDoc {
	return profileDoc{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Image:     profile.Image,
		IsOnline:  profile.IsOnline,
		LastSeen:  profile.LastSeen,
		CreatedAt: profile.CreatedAt.UTC(),
	}
}

func toProfile(doc profileDoc) domain.Profile {
	return domain.Profile{
		ID:        doc.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		Image:     doc.Image,
		IsOnline:  doc.IsOnline,
		LastSeen:  doc.LastSeen,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}

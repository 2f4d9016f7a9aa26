package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IFriendRepository interface {
	GetOrCreateRequest(senderID, receiverID string) (domain.FriendRequest, bool, error)
	GetRequest(id uuid.UUID) (domain.FriendRequest, error)
	PendingFor(receiverID string) ([]domain.FriendRequest, error)
	UpdateStatus(id uuid.UUID, status domain.FriendRequestStatus) (domain.FriendRequest, error)
	DeleteRequest(id uuid.UUID) error
	AddEdge(a, b string) error
	RemoveEdge(a, b string) error
	FriendsOf(id string) ([]string, error)
}

type FriendRepository struct {
	db *badger.DB
}

func NewFriendRepository(db *badger.DB) IFriendRepository {
	return &FriendRepository{db: db}
}

// requestDoc is the stored document shape for a friend request.
type requestDoc struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func requestKey(id string) []byte {
	return []byte("freq:" + id)
}

// requestIndexKey maps an exact (sender, receiver) pair to the request id,
// so GetOrCreateRequest stays an O(1) lookup.
func requestIndexKey(senderID, receiverID string) []byte {
	return []byte(fmt.Sprintf("freqidx:%s:%s", senderID, receiverID))
}

func edgeKey(id string) []byte {
	return []byte("friends:" + id)
}

// GetOrCreateRequest returns the existing pending/answered request between
// sender and receiver, creating a fresh pending one when none exists.
// The boolean reports whether a new request was created.
func (f FriendRepository) GetOrCreateRequest(senderID, receiverID string) (domain.FriendRequest, bool, error) {
	var doc requestDoc
	created := false
	err := f.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(requestIndexKey(senderID, receiverID))
		if err == nil {
			var requestID []byte
			if requestID, err = item.ValueCopy(nil); err != nil {
				return err
			}
			return f.readRequest(txn, string(requestID), &doc)
		}
		if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now().Unix()
		doc = requestDoc{
			ID:        uuid.New().String(),
			Sender:    senderID,
			Receiver:  receiverID,
			Status:    string(domain.FriendRequestPending),
			CreatedAt: now,
			UpdatedAt: now,
		}
		created = true
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err = txn.Set(requestKey(doc.ID), data); err != nil {
			return err
		}
		return txn.Set(requestIndexKey(senderID, receiverID), []byte(doc.ID))
	})
	if err != nil {
		return domain.FriendRequest{}, false, err
	}
	request, err := toFriendRequest(doc)
	return request, created, err
}

func (f FriendRepository) GetRequest(id uuid.UUID) (domain.FriendRequest, error) {
	var doc requestDoc
	err := f.db.View(func(txn *badger.Txn) error {
		return f.readRequest(txn, id.String(), &doc)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.FriendRequest{}, errors.ErrRequestNotFound
	}
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return toFriendRequest(doc)
}

// PendingFor returns the pending requests addressed to receiverID,
// a prefix scan over the request documents.
func (f FriendRepository) PendingFor(receiverID string) ([]domain.FriendRequest, error) {
	var requests []domain.FriendRequest
	err := f.db.View(func(txn *badger.Txn) error {
		prefix := []byte("freq:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc requestDoc
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}
			if doc.Receiver != receiverID || doc.Status != string(domain.FriendRequestPending) {
				continue
			}
			request, err := toFriendRequest(doc)
			if err != nil {
				return err
			}
			requests = append(requests, request)
		}
		return nil
	})
	return requests, err
}

func (f FriendRepository) UpdateStatus(id uuid.UUID, status domain.FriendRequestStatus) (domain.FriendRequest, error) {
	var doc requestDoc
	err := f.db.Update(func(txn *badger.Txn) error {
		if err := f.readRequest(txn, id.String(), &doc); err != nil {
			return err
		}
		doc.Status = string(status)
		doc.UpdatedAt = time.Now().Unix()
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(requestKey(doc.ID), data)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.FriendRequest{}, errors.ErrRequestNotFound
	}
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return toFriendRequest(doc)
}

// DeleteRequest removes the request and its pair index. Deleting a request
// that is already gone is a no-op.
func (f FriendRepository) DeleteRequest(id uuid.UUID) error {
	return f.db.Update(func(txn *badger.Txn) error {
		var doc requestDoc
		err := f.readRequest(txn, id.String(), &doc)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err = txn.Delete(requestIndexKey(doc.Sender, doc.Receiver)); err != nil {
			return err
		}
		return txn.Delete(requestKey(doc.ID))
	})
}

// AddEdge records the friendship in both users' edge documents.
func (f FriendRepository) AddEdge(a, b string) error {
	return f.db.Update(func(txn *badger.Txn) error {
		if err := addToEdgeDoc(txn, a, b); err != nil {
			return err
		}
		return addToEdgeDoc(txn, b, a)
	})
}

// RemoveEdge removes the friendship from both users' edge documents.
func (f FriendRepository) RemoveEdge(a, b string) error {
	return f.db.Update(func(txn *badger.Txn) error {
		if err := removeFromEdgeDoc(txn, a, b); err != nil {
			return err
		}
		return removeFromEdgeDoc(txn, b, a)
	})
}

func (f FriendRepository) FriendsOf(id string) ([]string, error) {
	var friends []string
	err := f.db.View(func(txn *badger.Txn) error {
		found, err := readEdgeDoc(txn, id)
		if err != nil {
			return err
		}
		friends = found
		return nil
	})
	return friends, err
}

func (f FriendRepository) readRequest(txn *badger.Txn, id string, doc *requestDoc) error {
	item, err := txn.Get(requestKey(id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, doc)
	})
}

func readEdgeDoc(txn *badger.Txn, id string) ([]string, error) {
	item, err := txn.Get(edgeKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var friends []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &friends)
	})
	return friends, err
}

func addToEdgeDoc(txn *badger.Txn, owner, friend string) error {
	friends, err := readEdgeDoc(txn, owner)
	if err != nil {
		return err
	}
	if lo.Contains(friends, friend) {
		return nil
	}
	data, err := json.Marshal(append(friends, friend))
	if err != nil {
		return err
	}
	return txn.Set(edgeKey(owner), data)
}

func removeFromEdgeDoc(txn *badger.Txn, owner, friend string) error {
	friends, err := readEdgeDoc(txn, owner)
	if err != nil {
		return err
	}
	kept := lo.Without(friends, friend)
	if len(kept) == len(friends) {
		return nil
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return txn.Set(edgeKey(owner), data)
}

func toFriendRequest(doc requestDoc) (domain.FriendRequest, error) {
	parsedID, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return domain.FriendRequest{
		ID:         parsedID,
		SenderID:   doc.Sender,
		ReceiverID: doc.Receiver,
		Status:     domain.FriendRequestStatus(doc.Status),
		CreatedAt:  time.Unix(doc.CreatedAt, 0).UTC(),
		UpdatedAt:  time.Unix(doc.UpdatedAt, 0).UTC(),
	}, nil
}

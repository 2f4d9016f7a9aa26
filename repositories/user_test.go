package repositories

import (
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func newProfile(id, name string) domain.Profile {
	return domain.Profile{
		ID:        id,
		Name:      name,
		Email:     name + "@example.com",
		Image:     "https://cdn.example.com/" + id + ".png",
		CreatedAt: time.Now().UTC(),
	}
}

func TestUserRepository_Upsert_Then_Get(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)
	profile := newProfile("u1", "Alice")

	req.NoError(repository.Upsert(profile))

	found, err := repository.Get("u1")
	req.NoError(err)
	req.Equal(profile.ID, found.ID)
	req.Equal(profile.Name, found.Name)
	req.Equal(profile.Email, found.Email)
	req.False(found.IsOnline)
}

func TestUserRepository_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.Get("ghost")

	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_SetPresence_Preserves_The_Rest_Of_The_Document(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)
	profile := newProfile("u1", "Alice")
	req.NoError(repository.Upsert(profile))

	// When the user goes online
	req.NoError(repository.SetPresence("u1", true, nil))

	found, err := repository.Get("u1")
	req.NoError(err)
	req.True(found.IsOnline)
	req.Nil(found.LastSeen)
	req.Equal("Alice", found.Name)
	req.Equal(profile.Email, found.Email)

	// When the user goes offline with a last-seen timestamp
	lastSeen := time.Now().UTC().Truncate(time.Second)
	req.NoError(repository.SetPresence("u1", false, &lastSeen))

	found, err = repository.Get("u1")
	req.NoError(err)
	req.False(found.IsOnline)
	req.NotNil(found.LastSeen)
	req.Equal(lastSeen, found.LastSeen.UTC())
}

func TestUserRepository_SetPresence_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)

	err := repository.SetPresence("ghost", true, nil)

	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_All_Lists_Every_Profile(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)
	req.NoError(repository.Upsert(newProfile("u1", "Alice")))
	req.NoError(repository.Upsert(newProfile("u2", "Bob")))

	profiles, err := repository.All()

	req.NoError(err)
	req.Len(profiles, 2)
}

func TestUserRepository_SearchByName(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repository := NewUserRepository(db)
	req.NoError(repository.Upsert(newProfile("u1", "Alice Martin")))
	req.NoError(repository.Upsert(newProfile("u2", "Bob Martinez")))
	req.NoError(repository.Upsert(newProfile("u3", "Carol")))

	t.Run("matches case-insensitively on substrings", func(t *testing.T) {
		profiles, err := repository.SearchByName("martin", "u3")
		req.NoError(err)
		req.Len(profiles, 2)
	})

	t.Run("excludes the caller from the results", func(t *testing.T) {
		profiles, err := repository.SearchByName("martin", "u1")
		req.NoError(err)
		req.Len(profiles, 1)
		req.Equal("u2", profiles[0].ID)
	})

	t.Run("returns nothing when no name matches", func(t *testing.T) {
		profiles, err := repository.SearchByName("zelda", "u1")
		req.NoError(err)
		req.Empty(profiles)
	})
}

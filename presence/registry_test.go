package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_Then_Deregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	connID := uuid.NewString()

	// Given an empty registry
	req.False(registry.IsOnline(identity))
	req.Empty(registry.Roster())

	// When the identity registers
	roster, replaced := registry.Register(identity, connID)

	// Then it is online and part of the roster
	req.False(replaced)
	req.Equal([]string{identity}, roster)
	req.True(registry.IsOnline(identity))

	// When it deregisters
	removed, roster := registry.Deregister(identity, connID)

	// Then it is gone
	req.True(removed)
	req.Empty(roster)
	req.False(registry.IsOnline(identity))
}

func TestRegistry_Deregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	connID := uuid.NewString()

	registry.Register(identity, connID)
	removed, _ := registry.Deregister(identity, connID)
	req.True(removed)

	// A duplicate disconnect must not fail
	removed, roster := registry.Deregister(identity, connID)
	req.False(removed)
	req.Empty(roster)
}

func TestRegistry_Second_Session_Overwrites_First(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	firstConn := uuid.NewString()
	secondConn := uuid.NewString()

	// Given a registered session
	registry.Register(identity, firstConn)

	// When the same identity opens a second session
	roster, replaced := registry.Register(identity, secondConn)

	// Then the entry is overwritten, not duplicated
	req.True(replaced)
	req.Equal([]string{identity}, roster)

	// And the displaced connection's disconnect cannot clobber it
	removed, _ := registry.Deregister(identity, firstConn)
	req.False(removed)
	req.True(registry.IsOnline(identity))

	removed, _ = registry.Deregister(identity, secondConn)
	req.True(removed)
	req.False(registry.IsOnline(identity))
}

func TestRegistry_Concurrent_Registrations_Yield_Distinct_Roster(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.Register(fmt.Sprintf("user-%02d", i), uuid.NewString())
		}(i)
	}
	wg.Wait()

	// The roster contains exactly the n distinct identities, sorted
	roster := registry.Roster()
	req.Len(roster, n)
	seen := make(map[string]struct{}, n)
	for _, identity := range roster {
		seen[identity] = struct{}{}
	}
	req.Len(seen, n)
	req.Equal(n, registry.Len())
}

func TestRegistry_Shutdown_Clears_Entries(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register("u1", uuid.NewString())
	registry.Register("u2", uuid.NewString())

	registry.Shutdown()

	req.Empty(registry.Roster())
	req.False(registry.IsOnline("u1"))
}

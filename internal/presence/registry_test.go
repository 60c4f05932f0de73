package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type stubSession struct {
	id     string
	mu     sync.Mutex
	pushed []domain.Notification
}

func (s *stubSession) ID() string { return s.id }

func (s *stubSession) Push(notification domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, notification)
	return nil
}

func TestMarkOnlineLastConnectionWins(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := &stubSession{id: "sess-1"}
	second := &stubSession{id: "sess-2"}

	registry.MarkOnline("jvaldez", first)
	registry.MarkOnline("jvaldez", second)

	current, ok := registry.Lookup("jvaldez")
	require.True(t, ok)
	assert.Equal(t, "sess-2", current.ID())
}

func TestMarkOnlineIgnoresEmptyInput(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MarkOnline("", &stubSession{id: "sess-1"})
	registry.MarkOnline("jvaldez", nil)

	assert.Empty(t, registry.Online())
}

func TestRemoveIfCurrentIgnoresStaleDisconnect(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	old := &stubSession{id: "sess-old"}
	fresh := &stubSession{id: "sess-fresh"}

	registry.MarkOnline("jvaldez", old)
	registry.MarkOnline("jvaldez", fresh)

	// The old connection's teardown fires after the reconnect. It must
	// not evict the fresh session.
	removed := registry.RemoveIfCurrent("jvaldez", "sess-old")
	assert.False(t, removed)

	current, ok := registry.Lookup("jvaldez")
	require.True(t, ok)
	assert.Equal(t, "sess-fresh", current.ID())

	removed = registry.RemoveIfCurrent("jvaldez", "sess-fresh")
	assert.True(t, removed)
	_, ok = registry.Lookup("jvaldez")
	assert.False(t, ok)
}

func TestRemoveIfCurrentUnknownAdmin(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	assert.False(t, registry.RemoveIfCurrent("nobody", "sess-1"))
}

func TestRemoveSessionFindsOwner(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MarkOnline("jvaldez", &stubSession{id: "sess-1"})
	registry.MarkOnline("mgarcia", &stubSession{id: "sess-2"})

	admin, ok := registry.RemoveSession("sess-2")
	require.True(t, ok)
	assert.Equal(t, "mgarcia", admin)

	_, ok = registry.RemoveSession("sess-2")
	assert.False(t, ok)
	assert.Equal(t, []string{"jvaldez"}, registry.Online())
}

func TestOnlineSorted(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MarkOnline("mgarcia", &stubSession{id: "s1"})
	registry.MarkOnline("alopez", &stubSession{id: "s2"})
	registry.MarkOnline("jvaldez", &stubSession{id: "s3"})

	assert.Equal(t, []string{"alopez", "jvaldez", "mgarcia"}, registry.Online())
}

func TestRegistryConcurrentChurn(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			admin := fmt.Sprintf("admin-%d", i%4)
			sessionID := fmt.Sprintf("sess-%d", i)
			registry.MarkOnline(admin, &stubSession{id: sessionID})
			registry.Lookup(admin)
			registry.Online()
			registry.RemoveIfCurrent(admin, sessionID)
		}(i)
	}
	wg.Wait()

	// Whatever survived the churn must still be a consistent view.
	for _, admin := range registry.Online() {
		_, ok := registry.Lookup(admin)
		assert.True(t, ok)
	}
}

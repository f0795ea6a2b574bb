package session

import (
	"sync"
	"testing"
	"time"

	"order-bot/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(ttl, zap.NewNop())
	store.now = clock.Now
	return store, clock
}

func TestGet_CreatesFreshSession(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	key := Key{Persona: domain.PersonaCustomer, ChatID: 42}

	sess := store.Get(key)
	if sess.Step != StepStart {
		t.Errorf("expected step %s, got %s", StepStart, sess.Step)
	}
	if sess.Cart == nil || len(sess.Cart) != 0 {
		t.Errorf("expected empty non-nil cart, got %v", sess.Cart)
	}
	if sess.Key != key {
		t.Errorf("expected key %v, got %v", key, sess.Key)
	}

	if again := store.Get(key); again != sess {
		t.Error("expected the same session on second lookup")
	}
}

func TestGet_PersonasDoNotShareSessions(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	customer := store.Get(Key{Persona: domain.PersonaCustomer, ChatID: 7})
	admin := store.Get(Key{Persona: domain.PersonaAdmin, ChatID: 7})

	if customer == admin {
		t.Fatal("expected separate sessions for the same chat id on different personas")
	}

	customer.Name = "Alice"
	if admin.Name != "" {
		t.Errorf("admin session picked up customer state: %q", admin.Name)
	}
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	store, clock := newTestStore(time.Hour)

	store.Get(Key{Persona: domain.PersonaCustomer, ChatID: 1})
	clock.Advance(30 * time.Minute)
	store.Get(Key{Persona: domain.PersonaCustomer, ChatID: 2})
	clock.Advance(45 * time.Minute)

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 remaining session, got %d", store.Len())
	}
}

func TestSweep_KeepsHeldSessions(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	key := Key{Persona: domain.PersonaCustomer, ChatID: 1}

	sess, release := store.Acquire(key)
	clock.Advance(time.Hour)

	if removed := store.Sweep(); removed != 0 {
		t.Fatalf("expected held session to survive, %d removed", removed)
	}

	release()
	release() // second call is a no-op

	if store.Get(key) != sess {
		t.Error("expected session to still be registered after release")
	}
}

func TestAcquire_SerializesSameKey(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	key := Key{Persona: domain.PersonaCustomer, ChatID: 99}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			sess, release := store.Acquire(key)
			defer release()

			// Read-modify-write that would lose lines without exclusion
			cart := sess.Cart
			time.Sleep(time.Microsecond)
			sess.Cart = append(cart, CartLine{Name: "Cola", Price: 10000})
		}()
	}
	wg.Wait()

	if got := len(store.Get(key).Cart); got != workers {
		t.Errorf("expected %d cart lines, got %d", workers, got)
	}
}

func TestProperty_CartTotalIsSumOfLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cart total equals the sum of added prices", prop.ForAll(
		func(prices []int64) bool {
			sess := newSession(Key{Persona: domain.PersonaCustomer, ChatID: 1}, time.Now())

			var want int64
			for i, price := range prices {
				sess.AddProduct(&domain.Product{ID: string(rune('a' + i%26)), Name: "p", Price: price, Stock: 1})
				want += price
			}

			return sess.CartTotal() == want && len(sess.Cart) == len(prices)
		},
		gen.SliceOf(gen.Int64Range(0, 1000000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestClearCheckout_KeepsProfile(t *testing.T) {
	sess := newSession(Key{Persona: domain.PersonaCustomer, ChatID: 1}, time.Now())
	sess.Name = "Alice"
	sess.Phone = "+998901234567"
	sess.AddProduct(&domain.Product{ID: "P1", Name: "Cola", Price: 10000, Stock: 3})
	sess.PaymentType = domain.PaymentCard
	sess.ProofImage = "file-1"

	sess.ClearCheckout()

	if len(sess.Cart) != 0 || sess.PaymentType != "" || sess.ProofImage != "" {
		t.Errorf("checkout state not cleared: %+v", sess)
	}
	if sess.Name != "Alice" || sess.Phone != "+998901234567" {
		t.Errorf("profile fields were cleared: %+v", sess)
	}
}

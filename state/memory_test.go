package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fairplayServer/game"
)

func newSession(user string) Session {
	return Session{
		UserAddress:    user,
		ServerSeed:     "seed",
		ServerSeedHash: "hash",
		ClientSeed:     "client",
		Balance:        1000,
		CreatedAt:      time.Now(),
	}
}

func TestMemorySessionStoreGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if _, err := store.Get(ctx, "0xabc"); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	created := 0
	create := func() (Session, error) {
		created++
		return newSession("0xabc"), nil
	}

	s, isNew, err := store.GetOrCreate(ctx, "0xabc", create)
	if err != nil || !isNew {
		t.Fatalf("GetOrCreate: new=%v err=%v", isNew, err)
	}
	if s.Balance != 1000 {
		t.Errorf("balance = %v", s.Balance)
	}

	_, isNew, err = store.GetOrCreate(ctx, "0xabc", create)
	if err != nil || isNew {
		t.Fatalf("second GetOrCreate: new=%v err=%v", isNew, err)
	}
	if created != 1 {
		t.Errorf("create called %d times", created)
	}
}

func TestMemorySessionStoreReplace(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	prev, err := store.Replace(ctx, "0xabc", newSession("0xabc"))
	if err != nil || prev != nil {
		t.Fatalf("first Replace: prev=%v err=%v", prev, err)
	}

	next := newSession("0xabc")
	next.ServerSeed = "seed2"
	prev, err = store.Replace(ctx, "0xabc", next)
	if err != nil {
		t.Fatal(err)
	}
	if prev == nil || prev.ServerSeed != "seed" {
		t.Fatalf("expected previous session to be returned, got %+v", prev)
	}

	got, _ := store.Get(ctx, "0xabc")
	if got.ServerSeed != "seed2" {
		t.Errorf("session not replaced: %+v", got)
	}
}

func TestMemorySessionStoreAtomicUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	store.Replace(ctx, "0xabc", newSession("0xabc"))

	t.Run("commit", func(t *testing.T) {
		s, err := store.AtomicUpdate(ctx, "0xabc", func(cur Session) (Session, error) {
			cur.Nonce++
			cur.Balance -= 10
			return cur, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if s.Nonce != 1 || s.Balance != 990 {
			t.Errorf("got nonce %d balance %v", s.Nonce, s.Balance)
		}
	})

	t.Run("abort leaves state", func(t *testing.T) {
		_, err := store.AtomicUpdate(ctx, "0xabc", func(cur Session) (Session, error) {
			return cur, game.ErrInsufficientBalance
		})
		if !errors.Is(err, game.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		s, _ := store.Get(ctx, "0xabc")
		if s.Nonce != 1 || s.Balance != 990 {
			t.Errorf("state changed on abort: %+v", s)
		}
	})

	t.Run("nonce must advance by one", func(t *testing.T) {
		_, err := store.AtomicUpdate(ctx, "0xabc", func(cur Session) (Session, error) {
			cur.Nonce += 2
			return cur, nil
		})
		if !errors.Is(err, game.ErrInternal) {
			t.Fatalf("expected ErrInternal, got %v", err)
		}
	})

	t.Run("commitment is fixed", func(t *testing.T) {
		_, err := store.AtomicUpdate(ctx, "0xabc", func(cur Session) (Session, error) {
			cur.Nonce++
			cur.ServerSeed = "other"
			return cur, nil
		})
		if !errors.Is(err, game.ErrInternal) {
			t.Fatalf("expected ErrInternal, got %v", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := store.AtomicUpdate(ctx, "0xdef", func(cur Session) (Session, error) {
			t.Fatal("fn called without a session")
			return cur, nil
		})
		if !errors.Is(err, game.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestMemorySessionStoreConcurrentSpend(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	store.Replace(ctx, "0xabc", newSession("0xabc"))

	// 30 stakes of 40 against 1000: exactly 25 fit.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		nonces   = make(map[uint64]bool)
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.AtomicUpdate(ctx, "0xabc", func(cur Session) (Session, error) {
				if cur.Balance < 40 {
					return cur, game.ErrInsufficientBalance
				}
				cur.Balance -= 40
				cur.Nonce++
				return cur, nil
			})
			if err != nil {
				return
			}
			mu.Lock()
			accepted++
			nonces[s.Nonce] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if accepted != 25 {
		t.Errorf("accepted %d wagers, want 25", accepted)
	}
	if len(nonces) != accepted {
		t.Errorf("nonce reused: %d unique for %d wagers", len(nonces), accepted)
	}
	s, _ := store.Get(ctx, "0xabc")
	if s.Balance != 0 || s.Nonce != 25 {
		t.Errorf("final state balance=%v nonce=%d", s.Balance, s.Nonce)
	}
}

func TestMemorySessionStoreUsersIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	for i := 0; i < 10; i++ {
		user := fmt.Sprintf("0x%02d", i)
		store.Replace(ctx, user, newSession(user))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		user := fmt.Sprintf("0x%02d", i)
		for j := 0; j < 20; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				store.AtomicUpdate(ctx, user, func(cur Session) (Session, error) {
					cur.Nonce++
					cur.Balance--
					return cur, nil
				})
			}()
		}
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		s, _ := store.Get(ctx, fmt.Sprintf("0x%02d", i))
		if s.Nonce != 20 || s.Balance != 980 {
			t.Errorf("user %d: nonce=%d balance=%v", i, s.Nonce, s.Balance)
		}
	}
}

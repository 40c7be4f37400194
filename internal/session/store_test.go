package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetOrCreateUnknownKey(t *testing.T) {
	store := NewStore(0)

	snap := store.GetOrCreate("fresh")
	if snap.ID != "fresh" {
		t.Errorf("snapshot ID = %q, want %q", snap.ID, "fresh")
	}
	if snap.CurrentDish != "" || snap.CurrentRecipeText != "" {
		t.Error("new session should have empty dish and recipe state")
	}
	if len(snap.History) != 0 {
		t.Errorf("new session history length = %d, want 0", len(snap.History))
	}
}

func TestAppendTurnSlidingWindow(t *testing.T) {
	store := NewStore(0)

	for i := 0; i < 10; i++ {
		store.AppendTurn("s1", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))

		snap := store.GetOrCreate("s1")
		if len(snap.History) > maxHistoryLines {
			t.Fatalf("after turn %d: history length = %d, want <= %d", i, len(snap.History), maxHistoryLines)
		}
	}

	snap := store.GetOrCreate("s1")
	if len(snap.History) != maxHistoryLines {
		t.Fatalf("history length = %d, want %d", len(snap.History), maxHistoryLines)
	}

	// The retained lines must be the most recent three pairs, in order.
	for pair := 0; pair < HistoryPairs; pair++ {
		turn := 10 - HistoryPairs + pair
		user := snap.History[pair*2]
		assistant := snap.History[pair*2+1]

		if user.Role != RoleUser || user.Content != fmt.Sprintf("question %d", turn) {
			t.Errorf("pair %d user line = %+v, want question %d", pair, user, turn)
		}
		if assistant.Role != RoleAssistant || assistant.Content != fmt.Sprintf("answer %d", turn) {
			t.Errorf("pair %d assistant line = %+v, want answer %d", pair, assistant, turn)
		}
	}
}

func TestDishAndRecipeState(t *testing.T) {
	store := NewStore(0)

	store.SetDish("s1", "Spicy Chicken Rice")
	store.SetRecipeText("s1", "1. Cook the rice.\n2. Fry the chicken.")

	snap := store.GetOrCreate("s1")
	if snap.CurrentDish != "Spicy Chicken Rice" {
		t.Errorf("CurrentDish = %q", snap.CurrentDish)
	}
	if snap.CurrentRecipeText == "" {
		t.Error("CurrentRecipeText should be set")
	}

	// A later recipe run replaces both fields.
	store.SetDish("s1", "Chicken Curry")
	store.SetRecipeText("s1", "1. Make the curry.")
	snap = store.GetOrCreate("s1")
	if snap.CurrentDish != "Chicken Curry" {
		t.Errorf("CurrentDish after replace = %q", snap.CurrentDish)
	}
}

func TestSessionIsolation(t *testing.T) {
	store := NewStore(0)

	store.SetDish("a", "Omelette")
	store.AppendTurn("a", "hi", "hello")
	store.SetDish("b", "Ratatouille")

	a := store.GetOrCreate("a")
	b := store.GetOrCreate("b")

	if a.CurrentDish != "Omelette" || b.CurrentDish != "Ratatouille" {
		t.Errorf("dishes crossed sessions: a=%q b=%q", a.CurrentDish, b.CurrentDish)
	}
	if len(b.History) != 0 {
		t.Errorf("session b history length = %d, want 0", len(b.History))
	}

	// Mutating a snapshot must not leak back into the store.
	a.History[0].Content = "tampered"
	again := store.GetOrCreate("a")
	if again.History[0].Content != "hi" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestCapacityEviction(t *testing.T) {
	store := NewStore(3)

	for i := 0; i < 3; i++ {
		store.GetOrCreate(fmt.Sprintf("s%d", i))
	}
	// Touch s1 and s2 so s0 is the eviction candidate.
	store.GetOrCreate("s1")
	store.GetOrCreate("s2")

	store.SetDish("s3", "Paella")
	if got := store.Len(); got != 3 {
		t.Errorf("store length = %d, want 3", got)
	}

	// s0 was evicted; referencing it again yields a fresh session.
	s0 := store.GetOrCreate("s0")
	if s0.CurrentDish != "" {
		t.Error("evicted session came back with stale state")
	}
}

func TestConcurrentSessionsDoNotInterfere(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			for j := 0; j < 50; j++ {
				store.AppendTurn(id, "u", "a")
				store.SetDish(id, id)
				store.GetOrCreate(id)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("s%d", i)
		snap := store.GetOrCreate(id)
		if snap.CurrentDish != id {
			t.Errorf("session %s dish = %q", id, snap.CurrentDish)
		}
		if len(snap.History) != maxHistoryLines {
			t.Errorf("session %s history length = %d, want %d", id, len(snap.History), maxHistoryLines)
		}
	}
}

func TestGuardPinsSessionAgainstEviction(t *testing.T) {
	store := NewStore(1)

	// Churn fresh sessions so the guarded one is always the oldest and
	// therefore the eviction candidate.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			store.GetOrCreate(fmt.Sprintf("churn%d", i))
		}
	}()

	for i := 0; i < 500; i++ {
		release := store.Guard("hot")
		store.AppendTurn("hot", "question", "answer")
		if got := len(store.GetOrCreate("hot").History); got == 0 {
			release()
			close(stop)
			wg.Wait()
			t.Fatalf("iteration %d: guarded session was evicted mid-turn", i)
		}
		release()
	}
	close(stop)
	wg.Wait()
}

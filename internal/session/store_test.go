package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Devam42/Answerly-chatbot/internal/models"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	store := NewStore()

	first := store.GetOrCreate("alice")
	second := store.GetOrCreate("alice")

	if first != second {
		t.Error("Expected the same session instance for repeated GetOrCreate calls")
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Count())
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	store := NewStore()

	alice := store.GetOrCreate("alice")
	bob := store.GetOrCreate("bob")

	alice.Lock()
	alice.Put(models.KindWebsite, "https://example.com", "alice content")
	alice.Unlock()

	bob.Lock()
	defer bob.Unlock()
	if _, ok := bob.Cached(models.KindWebsite, "https://example.com"); ok {
		t.Error("Expected bob's session to not see alice's cached content")
	}
}

func TestPutDoesNotOverwrite(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("alice")

	sess.Lock()
	defer sess.Unlock()

	sess.Put(models.KindVideo, "abc123def45", "first transcript")
	sess.Put(models.KindVideo, "abc123def45", "second transcript")

	text, ok := sess.Cached(models.KindVideo, "abc123def45")
	if !ok {
		t.Fatal("Expected cached transcript")
	}
	if text != "first transcript" {
		t.Errorf("Expected first cached value to survive, got %q", text)
	}
	if sess.CachedCount() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", sess.CachedCount())
	}
}

func TestEndClearsSession(t *testing.T) {
	store := NewStore()

	sess := store.GetOrCreate("alice")
	sess.Lock()
	sess.Put(models.KindFile, "notes.txt", "some text")
	sess.AppendHistory("question", "answer")
	sess.Unlock()

	store.End("alice")
	if store.Count() != 0 {
		t.Errorf("Expected 0 sessions after End, got %d", store.Count())
	}

	fresh := store.GetOrCreate("alice")
	fresh.Lock()
	defer fresh.Unlock()
	if _, ok := fresh.Cached(models.KindFile, "notes.txt"); ok {
		t.Error("Expected fresh session to have an empty cache")
	}
	if fresh.HistoryLen() != 0 {
		t.Errorf("Expected fresh session to have no history, got %d entries", fresh.HistoryLen())
	}
}

func TestEndUnknownUserIsNoOp(t *testing.T) {
	store := NewStore()
	store.End("nobody")

	if store.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", store.Count())
	}
}

func TestRecentHistoryWindow(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("alice")

	sess.Lock()
	defer sess.Unlock()

	for i := 1; i <= 8; i++ {
		sess.AppendHistory(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	recent := sess.RecentHistory(5)
	if len(recent) != 5 {
		t.Fatalf("Expected 5 history entries, got %d", len(recent))
	}
	if recent[0].Question != "q4" {
		t.Errorf("Expected oldest entry in window to be q4, got %s", recent[0].Question)
	}
	if recent[4].Question != "q8" {
		t.Errorf("Expected newest entry to be q8, got %s", recent[4].Question)
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", n%5)
			sess := store.GetOrCreate(user)
			sess.Lock()
			sess.Put(models.KindWikipedia, fmt.Sprintf("Title %d", n), "text")
			sess.Unlock()
		}(i)
	}
	wg.Wait()

	if store.Count() != 5 {
		t.Errorf("Expected 5 sessions, got %d", store.Count())
	}
}

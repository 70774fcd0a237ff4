package state

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/five82/booth/internal/market"
)

func TestStore_NewStoreSeedsToken(t *testing.T) {
	s := NewStore("persisted")
	snap := s.Snapshot()
	if snap.Session.Token != "persisted" {
		t.Fatalf("Token = %q, want persisted", snap.Session.Token)
	}
	if !snap.Session.Authenticated() {
		t.Fatal("Authenticated() = false, want true")
	}
	if snap.Session.User != nil {
		t.Fatalf("User = %#v, want nil", snap.Session.User)
	}
}

func TestStore_SnapshotClones(t *testing.T) {
	s := NewStore("")
	s.UpdateStudios(func(st Studios) Studios {
		return st.Listed([]market.Studio{{ID: "s1", Amenities: []string{"AC"}}})
	})
	s.UpdateStudios(func(st Studios) Studios {
		return st.Fetched(market.Studio{ID: "s1", Name: "Loft"})
	})
	s.UpdateSession(func(se Session) Session {
		return se.Fulfilled(market.AuthResponse{User: &market.User{ID: "u1"}, AccessToken: "a"})
	})

	snap := s.Snapshot()
	snap.Studios.Items[0].ID = "mutated"
	snap.Studios.Items[0].Amenities[0] = "mutated"
	snap.Studios.Current.Name = "mutated"
	snap.Session.User.ID = "mutated"

	again := s.Snapshot()
	if again.Studios.Items[0].ID != "s1" || again.Studios.Items[0].Amenities[0] != "AC" {
		t.Fatalf("Snapshot should clone items; got %#v", again.Studios.Items[0])
	}
	if again.Studios.Current.Name != "Loft" {
		t.Fatalf("Snapshot should clone current; got %q", again.Studios.Current.Name)
	}
	if again.Session.User.ID != "u1" {
		t.Fatalf("Snapshot should clone user; got %q", again.Session.User.ID)
	}
}

func TestStore_RecordPoll(t *testing.T) {
	s := NewStore("")

	origErr := errors.New("boom")
	s.RecordPoll(origErr)
	if snap := s.Snapshot(); snap.IsOffline() {
		t.Fatal("IsOffline() = true after one failure, want false")
	}
	s.RecordPoll(origErr)
	snap := s.Snapshot()
	if !snap.IsOffline() {
		t.Fatalf("IsOffline() = false with %d failures, want true", snap.ConsecutiveFailures)
	}
	if snap.LastPollError == nil || snap.LastPollError.Error() != "boom" {
		t.Fatalf("LastPollError = %v, want boom", snap.LastPollError)
	}
	if reflect.ValueOf(snap.LastPollError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatal("Snapshot should clone error instance")
	}

	s.RecordPoll(nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastPollError != nil {
		t.Fatalf("after success failures = %d err = %v, want 0 nil", snap.ConsecutiveFailures, snap.LastPollError)
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore("a")
	s.UpdateStudios(func(st Studios) Studios { return st.Listed([]market.Studio{{ID: "s1"}}) })
	s.Reset()

	snap := s.Snapshot()
	if snap.Session.Authenticated() {
		t.Fatal("session still authenticated after Reset")
	}
	if len(snap.Studios.Items) != 0 {
		t.Fatalf("Items = %#v, want empty", snap.Studios.Items)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewStore("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.UpdateStudios(func(st Studios) Studios { return st.Created(market.Studio{ID: "x"}) })
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	if got := len(s.Snapshot().Studios.Items); got != 50 {
		t.Fatalf("len(Items) = %d, want 50", got)
	}
}

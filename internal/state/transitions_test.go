package state

import (
	"reflect"
	"testing"

	"github.com/five82/booth/internal/market"
)

func ids(items []market.Studio) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestStudios_PendingClearsError(t *testing.T) {
	st := Studios{Error: "old"}.Pending()
	if !st.Loading || st.Error != "" {
		t.Fatalf("Pending() = loading %v error %q, want true \"\"", st.Loading, st.Error)
	}
}

func TestStudios_ListedReplaces(t *testing.T) {
	st := Studios{Items: []market.Studio{{ID: "old"}}}.Pending()
	st = st.Listed([]market.Studio{{ID: "s1", Location: "Bangalore"}})

	if got := ids(st.Items); !reflect.DeepEqual(got, []string{"s1"}) {
		t.Fatalf("Items = %v, want [s1]", got)
	}
	if st.Loading || st.Error != "" {
		t.Fatalf("loading = %v error = %q, want false \"\"", st.Loading, st.Error)
	}
}

func TestStudios_FetchedTouchesOnlyCurrent(t *testing.T) {
	st := Studios{Items: []market.Studio{{ID: "s1", Name: "A"}}}
	st = st.Fetched(market.Studio{ID: "s1", Name: "B"})
	if st.Current == nil || st.Current.Name != "B" {
		t.Fatalf("Current = %#v, want name B", st.Current)
	}
	if st.Items[0].Name != "A" {
		t.Fatalf("Items[0].Name = %q, want A", st.Items[0].Name)
	}
}

func TestStudios_CreatedAppendsDuplicates(t *testing.T) {
	st := Studios{}
	st = st.Created(market.Studio{ID: "s1"})
	st = st.Created(market.Studio{ID: "s1"})
	if got := ids(st.Items); !reflect.DeepEqual(got, []string{"s1", "s1"}) {
		t.Fatalf("Items = %v, want [s1 s1]", got)
	}
}

func TestStudios_UpdatedReplacesMatchInPlace(t *testing.T) {
	st := Studios{Items: []market.Studio{{ID: "a"}, {ID: "b", Name: "old"}, {ID: "c"}}}
	before := st.Items
	st = st.Updated(market.Studio{ID: "b", Name: "new"})

	if got := ids(st.Items); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Items = %v, want [a b c]", got)
	}
	if st.Items[1].Name != "new" {
		t.Fatalf("Items[1].Name = %q, want new", st.Items[1].Name)
	}
	if st.Current == nil || st.Current.Name != "new" {
		t.Fatalf("Current = %#v, want name new", st.Current)
	}
	if before[1].Name != "old" {
		t.Fatal("Updated mutated the previous slice")
	}
}

func TestStudios_UpdatedMissingLeavesItems(t *testing.T) {
	st := Studios{Items: []market.Studio{{ID: "a"}}}
	st = st.Updated(market.Studio{ID: "zzz", Name: "ghost"})
	if got := ids(st.Items); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Items = %v, want [a]", got)
	}
	if st.Current == nil || st.Current.ID != "zzz" {
		t.Fatalf("Current = %#v, want zzz", st.Current)
	}
}

func TestStudios_DeletedRemovesAllAndClearsCurrent(t *testing.T) {
	cur := market.Studio{ID: "x"}
	st := Studios{Items: []market.Studio{{ID: "x"}, {ID: "y"}, {ID: "x"}}, Current: &cur}
	st = st.Deleted("x")
	if got := ids(st.Items); !reflect.DeepEqual(got, []string{"y"}) {
		t.Fatalf("Items = %v, want [y]", got)
	}
	if st.Current != nil {
		t.Fatalf("Current = %#v, want nil", st.Current)
	}

	other := market.Studio{ID: "y"}
	st = Studios{Items: []market.Studio{{ID: "y"}}, Current: &other}.Deleted("missing")
	if st.Current == nil || len(st.Items) != 1 {
		t.Fatalf("deleting a missing id changed state: %#v", st)
	}
}

func TestStudios_ClearCurrentAndError(t *testing.T) {
	cur := market.Studio{ID: "x"}
	st := Studios{Current: &cur, Error: "boom"}
	st = st.ClearCurrent().ClearError()
	if st.Current != nil || st.Error != "" {
		t.Fatalf("ClearCurrent/ClearError left %#v", st)
	}
}

// Loading is shared across operations, so the first of two overlapping
// operations to settle clears it while the second is still running.
func TestStudios_SharedLoadingLastSettleWins(t *testing.T) {
	st := Studios{}
	st = st.Pending() // list dispatched
	st = st.Pending() // delete dispatched
	st = st.Deleted("x")
	if st.Loading {
		t.Fatal("Loading = true after first settle, want false")
	}
	st = st.Rejected("list failed")
	if st.Error != "list failed" || st.Loading {
		t.Fatalf("after second settle loading = %v error = %q", st.Loading, st.Error)
	}
}

func TestSession_Transitions(t *testing.T) {
	se := Session{Error: "old"}.Pending()
	if !se.Loading || se.Error != "" {
		t.Fatalf("Pending() = %#v", se)
	}

	se = se.Rejected("Invalid credentials")
	if se.Loading || se.Error != "Invalid credentials" || se.User != nil {
		t.Fatalf("Rejected() = %#v", se)
	}

	se = se.Pending().Fulfilled(market.AuthResponse{
		User:        &market.User{ID: "u1", Email: "a@b.c"},
		AccessToken: "access",
	})
	if se.Loading || se.User == nil || se.User.ID != "u1" || se.Token != "access" {
		t.Fatalf("Fulfilled() = %#v", se)
	}

	se = se.LoggedOut()
	if se.User != nil || se.Token != "" || se.Authenticated() {
		t.Fatalf("LoggedOut() = %#v", se)
	}
}

func TestSession_FulfilledWithoutTokensKeepsPrevious(t *testing.T) {
	se := Session{Token: "keep"}.Pending().Fulfilled(market.AuthResponse{})
	if se.Token != "keep" || se.Loading {
		t.Fatalf("Fulfilled(empty) = %#v", se)
	}
}

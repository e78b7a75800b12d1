package catalog

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

type mockLoader struct {
	loadFn func() (Snapshot, error)
}

func (m *mockLoader) LoadSnapshot() (Snapshot, error) {
	if m.loadFn != nil {
		return m.loadFn()
	}
	return NewSnapshot(nil), nil
}

func TestSimilar_EndToEnd(t *testing.T) {
	loader := &mockLoader{loadFn: func() (Snapshot, error) {
		return NewSnapshot(map[string]Attributes{
			"Acme Phone Lite": attrs("Acme", "smartphone", "budget"),
			"Rival One":       attrs("Rival", "smartphone", "flagship"),
		}), nil
	}}
	lookup := &mockLookup{
		lookupFn: func(_ context.Context, name string) (string, Attributes, error) {
			return "Acme Phone X", fullAttrs(), nil
		},
	}
	f := NewFinder(NewResolver(newMockStore(), lookup), loader)

	got := f.Similar(context.Background(), "acme phone x")
	if !reflect.DeepEqual(got.SameBrand, []string{"acme phone lite"}) {
		t.Errorf("SameBrand = %v", got.SameBrand)
	}
	if !reflect.DeepEqual(got.Competitors, []string{"rival one"}) {
		t.Errorf("Competitors = %v", got.Competitors)
	}
}

func TestSimilar_UnresolvedProductGivesEmptyBuckets(t *testing.T) {
	loader := &mockLoader{loadFn: func() (Snapshot, error) {
		return NewSnapshot(map[string]Attributes{
			"Rival One": attrs("Rival", "smartphone", "flagship"),
		}), nil
	}}
	lookup := &mockLookup{
		lookupFn: func(_ context.Context, name string) (string, Attributes, error) {
			return "", Attributes{}, fmt.Errorf("not found")
		},
	}
	f := NewFinder(NewResolver(newMockStore(), lookup), loader)

	got := f.Similar(context.Background(), "unknown widget")
	if !reflect.DeepEqual(got, EmptyBuckets()) {
		t.Errorf("got %+v, want empty buckets", got)
	}
}

func TestSimilar_SnapshotLoadFailureFailsSoft(t *testing.T) {
	loader := &mockLoader{loadFn: func() (Snapshot, error) {
		return Snapshot{}, fmt.Errorf("database locked")
	}}
	lookup := &mockLookup{}
	f := NewFinder(NewResolver(newMockStore(), lookup), loader)

	got := f.Similar(context.Background(), "acme phone x")
	if !reflect.DeepEqual(got, EmptyBuckets()) {
		t.Errorf("got %+v, want empty buckets", got)
	}
	if lookup.calls != 0 {
		t.Errorf("no resolution should happen without a snapshot, got %d lookup calls", lookup.calls)
	}
}

package stockmon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))

	state := emptyState()
	state.RunID = "a1b2c3d4"
	state.LastRun = "2025-06-01T09:30:00+05:30"
	state.RunCount = 7
	state.NotificationsSent = 3
	state.Products["Butter 500g"] = Observation{
		Available:   true,
		Price:       "₹275.00",
		LastChecked: "2025-06-01T09:30:00+05:30",
		StatusCode:  200,
	}
	state.Products["Milk Powder"] = Observation{
		Available:   false,
		LastChecked: "2025-06-01T09:30:02+05:30",
		Error:       "unexpected status code 503",
	}

	if err := store.Save(state); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load()
	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Fatalf("state round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAbsentFile(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "does-not-exist.json"))

	state := store.Load()
	require.Empty(t, state.Products)
	require.Equal(t, 0, state.RunCount)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{this is not json"), 0644); err != nil {
		t.Fatal(err)
	}

	state := NewStateStore(path).Load()
	require.Empty(t, state.Products)
}

func TestSaveOverwrites(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))

	first := emptyState()
	first.RunCount = 1
	require.NoError(t, store.Save(first))

	second := emptyState()
	second.RunCount = 2
	require.NoError(t, store.Save(second))

	require.Equal(t, 2, store.Load().RunCount)
}

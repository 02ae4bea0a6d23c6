package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/netstats-history/netdelta/internal/models"
)

func createTestDuckStore(t *testing.T, opts DuckStoreOptions) *DuckStore {
	t.Helper()
	store, err := NewDuckStore(opts)
	if err != nil {
		t.Fatalf("Failed to create DuckStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewDuckStore(t *testing.T) {
	t.Run("in memory by default", func(t *testing.T) {
		store := createTestDuckStore(t, DuckStoreOptions{})
		if store.dbPath != "" {
			t.Errorf("Expected in-memory database, got %s", store.dbPath)
		}
		if store.batchSize != defaultDuckBatchSize {
			t.Errorf("Expected batch size %d, got %d", defaultDuckBatchSize, store.batchSize)
		}
	})

	t.Run("file in temp dir removed on close", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewDuckStore(DuckStoreOptions{TempDir: dir, MemoryLimit: "256MB", Threads: 2})
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		if _, err := os.Stat(store.dbPath); err != nil {
			t.Fatalf("Expected database file: %v", err)
		}
		if filepath.Dir(store.dbPath) != dir {
			t.Errorf("Expected database under %s, got %s", dir, store.dbPath)
		}
		store.Close()
		if _, err := os.Stat(store.dbPath); !os.IsNotExist(err) {
			t.Error("Expected database file to be removed on Close")
		}
	})
}

func TestDuckStore_RoundTrip(t *testing.T) {
	// A batch size of 2 forces flushes mid-ingestion and a partial final batch.
	store := createTestDuckStore(t, DuckStoreOptions{BatchSize: 2})
	want := testSamples()
	want = append(want, models.Sample{Line: 5, Timestamp: want[2].Timestamp})

	for _, s := range want {
		if err := store.Append(s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if store.Len() != len(want) {
		t.Errorf("Expected %d samples, got %d", len(want), store.Len())
	}

	if _, err := store.Samples(context.Background()); err != ErrNotFrozen {
		t.Errorf("Expected ErrNotFrozen before Freeze, got %v", err)
	}
	if err := store.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if err := store.Append(want[0]); err != ErrFrozen {
		t.Errorf("Expected ErrFrozen after Freeze, got %v", err)
	}

	got, err := store.Samples(context.Background())
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Line != want[i].Line {
			t.Errorf("sample %d: line %d, want %d", i, got[i].Line, want[i].Line)
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("sample %d: timestamp %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
		_, gotOff := got[i].Timestamp.Zone()
		_, wantOff := want[i].Timestamp.Zone()
		if gotOff != wantOff {
			t.Errorf("sample %d: zone offset %d, want %d", i, gotOff, wantOff)
		}
		if len(got[i].Interfaces) != len(want[i].Interfaces) {
			t.Fatalf("sample %d: %d interfaces, want %d", i, len(got[i].Interfaces), len(want[i].Interfaces))
		}
		for j := range want[i].Interfaces {
			if got[i].Interfaces[j] != want[i].Interfaces[j] {
				t.Errorf("sample %d interface %d: %+v, want %+v", i, j, got[i].Interfaces[j], want[i].Interfaces[j])
			}
		}
	}
}

func TestDuckStore_LargeCounters(t *testing.T) {
	store := createTestDuckStore(t, DuckStoreOptions{})
	s := testSamples()[0]
	s.Interfaces = []models.InterfaceCounters{{Name: "eth0", RX: ^uint64(0), TX: 1 << 63}}
	if err := store.Append(s); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	got, err := store.Samples(context.Background())
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if got[0].Interfaces[0] != s.Interfaces[0] {
		t.Errorf("Expected %+v, got %+v", s.Interfaces[0], got[0].Interfaces[0])
	}
}

func TestDuckStore_Interfaces(t *testing.T) {
	store := createTestDuckStore(t, DuckStoreOptions{})
	for _, s := range testSamples() {
		if err := store.Append(s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := store.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	names, err := store.Interfaces(context.Background())
	if err != nil {
		t.Fatalf("Interfaces failed: %v", err)
	}
	if len(names) != 2 || names[0] != "eth0" || names[1] != "lo" {
		t.Errorf("Expected [eth0 lo], got %v", names)
	}
}

package assistant

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bizlens/bizlens/internal/query"
)

func TestMemoryCacheGetPut(t *testing.T) {
	cache := NewMemoryCache(0)
	if _, ok := cache.Get("q"); ok {
		t.Fatal("expected miss on empty cache")
	}
	cache.Put("q", Outcome{Success: true, SQL: "SELECT 1"})
	got, ok := cache.Get("q")
	if !ok || got.SQL != "SELECT 1" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}
	if _, ok := cache.Get("q "); ok {
		t.Fatal("keys must match byte for byte")
	}
	cache.Put("q", Outcome{Success: true, SQL: "SELECT 2"})
	got, _ = cache.Get("q")
	if got.SQL != "SELECT 2" || cache.Len() != 1 {
		t.Fatalf("overwrite failed: %+v len=%d", got, cache.Len())
	}
}

func TestMemoryCacheUnboundedByDefault(t *testing.T) {
	cache := NewMemoryCache(0)
	for i := 0; i < 500; i++ {
		cache.Put(fmt.Sprintf("q%d", i), Outcome{})
	}
	if cache.Len() != 500 {
		t.Fatalf("Len() = %d", cache.Len())
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(2)
	cache.Put("a", Outcome{SQL: "a"})
	cache.Put("b", Outcome{SQL: "b"})
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected a")
	}
	cache.Put("c", Outcome{SQL: "c"})

	if _, ok := cache.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := cache.Get(key); !ok {
			t.Fatalf("expected %s to survive", key)
		}
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("q%d", i%8)
			cache.Put(key, Outcome{SQL: key})
			if got, ok := cache.Get(key); ok && got.SQL != key {
				t.Errorf("Get(%s) = %q", key, got.SQL)
			}
		}(i)
	}
	wg.Wait()
	if cache.Len() > 16 {
		t.Fatalf("Len() = %d", cache.Len())
	}
}

func TestMemoryCacheReturnsIndependentCopies(t *testing.T) {
	for _, maxEntries := range []int{0, 4} {
		cache := NewMemoryCache(maxEntries)
		stored := Outcome{
			Success:  true,
			Rows:     []query.Row{row(query.Field{Name: "product_name", Value: "Laptop"})},
			Metadata: &Metadata{RowCount: 1, ColumnNames: []string{"product_name"}, QueryType: SimpleSelect},
		}
		cache.Put("q", stored)
		stored.Rows[0][0].Value = "mutated before read"

		first, _ := cache.Get("q")
		first.Rows[0][0].Value = "mutated"
		first.Rows = append(first.Rows, row())
		first.Metadata.RowCount = 99
		first.Metadata.ColumnNames[0] = "mutated"

		second, ok := cache.Get("q")
		if !ok {
			t.Fatalf("maxEntries=%d: expected hit", maxEntries)
		}
		if len(second.Rows) != 1 || second.Rows[0][0].Value != "Laptop" {
			t.Fatalf("maxEntries=%d: rows changed through a returned copy: %+v", maxEntries, second.Rows)
		}
		if second.Metadata.RowCount != 1 || second.Metadata.ColumnNames[0] != "product_name" {
			t.Fatalf("maxEntries=%d: metadata changed through a returned copy: %+v", maxEntries, second.Metadata)
		}
	}
}

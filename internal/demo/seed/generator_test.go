package seed

import (
	"reflect"
	"testing"
	"time"
)

func newTestGenerator(seed int64) *Generator {
	g := NewGenerator(seed)
	g.now = func() time.Time { return time.Date(2026, time.March, 10, 15, 4, 5, 0, time.UTC) }
	return g
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{Products: 8, Customers: 10, Sales: 50, Days: 90}
	a := newTestGenerator(42).Generate(cfg)
	b := newTestGenerator(42).Generate(cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different datasets")
	}
	c := newTestGenerator(43).Generate(cfg)
	if reflect.DeepEqual(a.Sales, c.Sales) {
		t.Fatal("different seeds produced identical sales")
	}
}

func TestGenerateKeepsReferencesAndRanges(t *testing.T) {
	cfg := Config{Products: 30, Customers: 12, Sales: 200, Days: 30}
	ds := newTestGenerator(1).Generate(cfg)

	if len(ds.Products) != 30 || len(ds.Customers) != 12 || len(ds.Sales) != 200 {
		t.Fatalf("sizes = %d/%d/%d", len(ds.Products), len(ds.Customers), len(ds.Sales))
	}

	names := map[string]struct{}{}
	for _, p := range ds.Products {
		if _, dup := names[p.ProductName]; dup {
			t.Fatalf("duplicate product name %q", p.ProductName)
		}
		names[p.ProductName] = struct{}{}
		if _, ok := productCatalog[p.Category]; !ok {
			t.Fatalf("unknown category %q", p.Category)
		}
		if p.Price <= 0 {
			t.Fatalf("price = %v", p.Price)
		}
	}

	segments := map[string]bool{"Premium": true, "Standard": true, "Basic": true}
	for _, c := range ds.Customers {
		if !segments[c.CustomerSegment] {
			t.Fatalf("segment = %q", c.CustomerSegment)
		}
	}

	earliest := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -cfg.Days+1)
	for _, s := range ds.Sales {
		if s.ProductID < 1 || s.ProductID > 30 {
			t.Fatalf("product_id = %d", s.ProductID)
		}
		if s.CustomerID < 1 || s.CustomerID > 12 {
			t.Fatalf("customer_id = %d", s.CustomerID)
		}
		if s.Quantity < 1 || s.Revenue <= 0 {
			t.Fatalf("quantity/revenue = %d/%v", s.Quantity, s.Revenue)
		}
		if s.SaleDate.Before(earliest) || s.SaleDate.Hour() != 0 {
			t.Fatalf("sale_date = %v", s.SaleDate)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := round2(12.3456); got != 12.35 {
		t.Fatalf("round2() = %v", got)
	}
}

package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

type Product struct {
	ID           int64
	ProductName  string
	Category     string
	Price        float64
	Description  string
	Manufacturer string
}

type Customer struct {
	ID              int64
	CustomerName    string
	Email           string
	Phone           string
	Address         string
	City            string
	Country         string
	CustomerSegment string
}

type Sale struct {
	ID          int64
	ProductID   int64
	SaleDate    time.Time
	Revenue     float64
	Quantity    int
	CustomerID  int64
	Region      string
	SalesPerson string
}

// Dataset is one consistent copy of the three warehouse tables.
type Dataset struct {
	Products  []Product
	Customers []Customer
	Sales     []Sale
}

type catalogItem struct {
	name         string
	manufacturer string
	minPrice     float64
	maxPrice     float64
}

var productCatalog = map[string][]catalogItem{
	"Electronics": {
		{"Laptop Pro 15", "Northwind", 900, 2200},
		{"Smartphone X", "Contoso", 400, 1200},
		{"Wireless Earbuds", "Fabrikam", 40, 250},
		{"4K Monitor", "Northwind", 250, 900},
		{"Tablet Air", "Contoso", 300, 800},
		{"Smartwatch", "Fabrikam", 150, 450},
	},
	"Appliances": {
		{"Espresso Machine", "Tailspin", 150, 900},
		{"Air Purifier", "Litware", 90, 400},
		{"Robot Vacuum", "Tailspin", 200, 700},
		{"Blender Max", "Litware", 40, 180},
		{"Microwave Oven", "Proseware", 80, 300},
	},
	"Accessories": {
		{"USB-C Hub", "Adatum", 20, 90},
		{"Laptop Sleeve", "Adatum", 15, 60},
		{"Wireless Mouse", "Fabrikam", 15, 80},
		{"Mechanical Keyboard", "Northwind", 60, 220},
		{"Phone Case", "Contoso", 10, 50},
	},
	"Furniture": {
		{"Standing Desk", "Woodgrove", 300, 900},
		{"Ergonomic Chair", "Woodgrove", 200, 1100},
		{"Bookshelf", "Coho", 80, 350},
		{"Desk Lamp", "Coho", 20, 120},
		{"Filing Cabinet", "Woodgrove", 90, 300},
	},
}

var categoryOrder = []string{"Electronics", "Appliances", "Accessories", "Furniture"}

var (
	firstNames = []string{"Alice", "Bruno", "Chen", "Dana", "Elif", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Kira", "Luis", "Maya", "Nils", "Olga", "Priya"}
	lastNames  = []string{"Andersen", "Baker", "Costa", "Dubois", "Evans", "Fischer", "Garcia", "Hansen", "Ito", "Jensen", "Kowalski", "Lopez"}
	locations  = []struct{ city, country string }{
		{"New York", "USA"}, {"Chicago", "USA"}, {"Toronto", "Canada"}, {"London", "UK"},
		{"Berlin", "Germany"}, {"Paris", "France"}, {"Madrid", "Spain"}, {"Tokyo", "Japan"},
	}
	streets      = []string{"Main St", "Oak Ave", "Maple Rd", "Harbor Blvd", "King St", "Park Lane"}
	regions      = []string{"North", "South", "East", "West"}
	salesPeople  = []string{"John Smith", "Sarah Johnson", "Mike Davis", "Emily Brown", "David Wilson", "Lisa Anderson"}
	segmentOrder = []string{"Premium", "Standard", "Basic"}
)

type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds a dataset with referentially valid sales. Sale dates fall
// within the cfg.Days days ending today.
func (g *Generator) Generate(cfg Config) Dataset {
	products := g.products(cfg.Products)
	customers := g.customers(cfg.Customers)

	today := truncateDay(g.now())
	sales := make([]Sale, 0, cfg.Sales)
	for i := 0; i < cfg.Sales; i++ {
		product := products[g.rnd.Intn(len(products))]
		customer := customers[g.rnd.Intn(len(customers))]
		quantity := g.quantity(customer.CustomerSegment)
		discount := 1 - float64(g.rnd.Intn(16))/100
		sales = append(sales, Sale{
			ID:          int64(i + 1),
			ProductID:   product.ID,
			SaleDate:    today.AddDate(0, 0, -g.rnd.Intn(cfg.Days)),
			Revenue:     round2(product.Price * float64(quantity) * discount),
			Quantity:    quantity,
			CustomerID:  customer.ID,
			Region:      pickOne(g.rnd, regions),
			SalesPerson: pickOne(g.rnd, salesPeople),
		})
	}

	return Dataset{Products: products, Customers: customers, Sales: sales}
}

func (g *Generator) products(count int) []Product {
	out := make([]Product, 0, count)
	for i := 0; i < count; i++ {
		category := categoryOrder[i%len(categoryOrder)]
		items := productCatalog[category]
		item := items[(i/len(categoryOrder))%len(items)]
		name := item.name
		if edition := i / (len(categoryOrder) * len(items)); edition > 0 {
			name = fmt.Sprintf("%s Gen %d", item.name, edition+1)
		}
		out = append(out, Product{
			ID:           int64(i + 1),
			ProductName:  name,
			Category:     category,
			Price:        round2(item.minPrice + g.rnd.Float64()*(item.maxPrice-item.minPrice)),
			Description:  fmt.Sprintf("%s by %s", name, item.manufacturer),
			Manufacturer: item.manufacturer,
		})
	}
	return out
}

func (g *Generator) customers(count int) []Customer {
	out := make([]Customer, 0, count)
	for i := 0; i < count; i++ {
		first := pickOne(g.rnd, firstNames)
		last := pickOne(g.rnd, lastNames)
		location := locations[g.rnd.Intn(len(locations))]
		out = append(out, Customer{
			ID:              int64(i + 1),
			CustomerName:    first + " " + last,
			Email:           fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Phone:           fmt.Sprintf("+1-555-%04d", g.rnd.Intn(10000)),
			Address:         fmt.Sprintf("%d %s", 1+g.rnd.Intn(999), pickOne(g.rnd, streets)),
			City:            location.city,
			Country:         location.country,
			CustomerSegment: g.segment(),
		})
	}
	return out
}

func (g *Generator) segment() string {
	p := g.rnd.Intn(100)
	switch {
	case p < 20:
		return segmentOrder[0]
	case p < 70:
		return segmentOrder[1]
	default:
		return segmentOrder[2]
	}
}

func (g *Generator) quantity(segment string) int {
	switch segment {
	case "Premium":
		return 1 + g.rnd.Intn(8)
	case "Standard":
		return 1 + g.rnd.Intn(4)
	default:
		return 1 + g.rnd.Intn(2)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

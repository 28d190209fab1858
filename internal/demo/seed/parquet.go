package seed

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Table names match the warehouse schema so the DuckDB executor can expose
// each snapshot as a view under the same name.
const (
	TableProducts  = "products"
	TableCustomers = "customers"
	TableSales     = "sales"
)

type productRecord struct {
	ID           int64   `parquet:"id"`
	ProductName  string  `parquet:"product_name"`
	Category     string  `parquet:"category"`
	Price        float64 `parquet:"price"`
	Description  string  `parquet:"description"`
	Manufacturer string  `parquet:"manufacturer"`
}

type customerRecord struct {
	ID              int64  `parquet:"id"`
	CustomerName    string `parquet:"customer_name"`
	Email           string `parquet:"email"`
	Phone           string `parquet:"phone"`
	Address         string `parquet:"address"`
	City            string `parquet:"city"`
	Country         string `parquet:"country"`
	CustomerSegment string `parquet:"customer_segment"`
}

type saleRecord struct {
	ID          int64   `parquet:"id"`
	ProductID   int64   `parquet:"product_id"`
	SaleDate    int32   `parquet:"sale_date,date"`
	Revenue     float64 `parquet:"revenue"`
	Quantity    int32   `parquet:"quantity"`
	CustomerID  int64   `parquet:"customer_id"`
	Region      string  `parquet:"region"`
	SalesPerson string  `parquet:"sales_person"`
}

// ParquetFiles maps a table name to its encoded Parquet snapshot.
type ParquetFiles map[string][]byte

func EncodeParquet(ds Dataset) (ParquetFiles, error) {
	products := make([]productRecord, 0, len(ds.Products))
	for _, p := range ds.Products {
		products = append(products, productRecord{
			ID:           p.ID,
			ProductName:  p.ProductName,
			Category:     p.Category,
			Price:        p.Price,
			Description:  p.Description,
			Manufacturer: p.Manufacturer,
		})
	}
	customers := make([]customerRecord, 0, len(ds.Customers))
	for _, c := range ds.Customers {
		customers = append(customers, customerRecord{
			ID:              c.ID,
			CustomerName:    c.CustomerName,
			Email:           c.Email,
			Phone:           c.Phone,
			Address:         c.Address,
			City:            c.City,
			Country:         c.Country,
			CustomerSegment: c.CustomerSegment,
		})
	}
	sales := make([]saleRecord, 0, len(ds.Sales))
	for _, s := range ds.Sales {
		sales = append(sales, saleRecord{
			ID:          s.ID,
			ProductID:   s.ProductID,
			SaleDate:    epochDays(s.SaleDate),
			Revenue:     s.Revenue,
			Quantity:    int32(s.Quantity),
			CustomerID:  s.CustomerID,
			Region:      s.Region,
			SalesPerson: s.SalesPerson,
		})
	}

	files := ParquetFiles{}
	var err error
	if files[TableProducts], err = encodeRows(products); err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableProducts, err)
	}
	if files[TableCustomers], err = encodeRows(customers); err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableCustomers, err)
	}
	if files[TableSales], err = encodeRows(sales); err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableSales, err)
	}
	return files, nil
}

func encodeRows[T any](rows []T) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[T](buf)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return nil, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func epochDays(t time.Time) int32 {
	return int32(truncateDay(t).Unix() / 86400)
}

package seed

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	insertProductSQL  = `INSERT INTO products (id, product_name, category, price, description, manufacturer) VALUES ($1, $2, $3, $4, $5, $6)`
	insertCustomerSQL = `INSERT INTO customers (id, customer_name, email, phone, address, city, country, customer_segment) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertSaleSQL     = `INSERT INTO sales (id, product_id, sale_date, revenue, quantity, customer_id, region, sales_person) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// WritePostgres replaces the warehouse tables with ds in a single transaction.
// Identity sequences are advanced past the explicit ids afterwards.
func WritePostgres(ctx context.Context, db *sql.DB, ds Dataset) (err error) {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `TRUNCATE TABLE sales, customers, products RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("truncate warehouse tables: %w", err)
	}

	for _, p := range ds.Products {
		if _, err = tx.ExecContext(ctx, insertProductSQL, p.ID, p.ProductName, p.Category, p.Price, p.Description, p.Manufacturer); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	for _, c := range ds.Customers {
		if _, err = tx.ExecContext(ctx, insertCustomerSQL, c.ID, c.CustomerName, c.Email, c.Phone, c.Address, c.City, c.Country, c.CustomerSegment); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	for _, s := range ds.Sales {
		if _, err = tx.ExecContext(ctx, insertSaleSQL, s.ID, s.ProductID, s.SaleDate, s.Revenue, s.Quantity, s.CustomerID, s.Region, s.SalesPerson); err != nil {
			return fmt.Errorf("insert sale %d: %w", s.ID, err)
		}
	}

	for _, table := range []string{"products", "customers", "sales"} {
		stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`, table, table)
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

package prompt

// SchemaDocument describes the warehouse tables the generator may reference.
// It is hand-maintained and must stay in sync with the migrations package.
const SchemaDocument = `Database Schema:

Tables:
1. products:
   - id (INTEGER, Primary Key)
   - product_name (VARCHAR) - Name of the product
   - category (VARCHAR) - Product category (Electronics, Appliances, Accessories, Furniture)
   - price (DECIMAL) - Product price
   - description (TEXT) - Product description
   - manufacturer (VARCHAR) - Product manufacturer

2. sales:
   - id (INTEGER, Primary Key)
   - product_id (INTEGER, Foreign Key to products.id)
   - sale_date (DATE) - Date of sale
   - revenue (DECIMAL) - Revenue from the sale
   - quantity (INTEGER) - Quantity sold
   - customer_id (INTEGER, Foreign Key to customers.id)
   - region (VARCHAR) - Sales region
   - sales_person (VARCHAR) - Name of sales person

3. customers:
   - id (INTEGER, Primary Key)
   - customer_name (VARCHAR) - Customer name
   - email (VARCHAR) - Customer email
   - phone (VARCHAR) - Customer phone
   - address (TEXT) - Customer address
   - city (VARCHAR) - Customer city
   - country (VARCHAR) - Customer country
   - customer_segment (VARCHAR) - Customer segment (Premium, Standard, Basic)

Important Notes:
- Use 'product_name' column for products table
- Always join tables properly using foreign keys
- Use appropriate date filtering for time-based queries`

// Example pairs a natural-language request with the statement the generator
// is expected to produce for it.
type Example struct {
	Request string
	SQL     string
}

// Examples are rendered into every prompt, in this order.
var Examples = []Example{
	{
		Request: "top 5 products by revenue",
		SQL:     "SELECT p.product_name, SUM(s.revenue) AS total_revenue FROM products p JOIN sales s ON p.id = s.product_id GROUP BY p.product_name ORDER BY total_revenue DESC LIMIT 5;",
	},
	{
		Request: "list all customers",
		SQL:     "SELECT * FROM customers;",
	},
	{
		Request: "revenue by category",
		SQL:     "SELECT p.category, SUM(s.revenue) AS total_revenue FROM products p JOIN sales s ON p.id = s.product_id GROUP BY p.category ORDER BY total_revenue DESC;",
	},
	{
		Request: "average order value by customer segment",
		SQL:     "SELECT c.customer_segment, AVG(order_total) AS avg_order_value FROM customers c JOIN (SELECT customer_id, SUM(p.price * s.quantity) AS order_total FROM sales s JOIN products p ON s.product_id = p.id GROUP BY customer_id) AS orders ON c.id = orders.customer_id GROUP BY c.customer_segment;",
	},
	{
		Request: "monthly sales trends",
		SQL:     "SELECT EXTRACT(YEAR FROM sale_date) AS year, EXTRACT(MONTH FROM sale_date) AS month, SUM(revenue) AS monthly_revenue FROM sales GROUP BY EXTRACT(YEAR FROM sale_date), EXTRACT(MONTH FROM sale_date) ORDER BY year, month;",
	},
}

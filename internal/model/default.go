package model

// Default returns the built-in demonstration star schema: two fact tables
// and four dimensions from a retail sales dataset, with every fact joined
// to every dimension on its surrogate key.
func Default() Schema {
	return Schema{
		Tables: []Table{
			{Name: "fact_sales", Key: "sale_id"},
			{Name: "fact_returns", Key: "return_id"},
			{Name: "dim_product", Key: "product_id"},
			{Name: "dim_customer", Key: "customer_id"},
			{Name: "dim_store", Key: "store_id"},
			{Name: "dim_time", Key: "date_id"},
		},
		Relationships: []Relationship{
			{From: "fact_sales", To: "dim_product", FromColumn: "product_id", ToColumn: "product_id"},
			{From: "fact_sales", To: "dim_customer", FromColumn: "customer_id", ToColumn: "customer_id"},
			{From: "fact_sales", To: "dim_store", FromColumn: "store_id", ToColumn: "store_id"},
			{From: "fact_sales", To: "dim_time", FromColumn: "date_id", ToColumn: "date_id"},
			{From: "fact_returns", To: "dim_product", FromColumn: "product_id", ToColumn: "product_id"},
			{From: "fact_returns", To: "dim_customer", FromColumn: "customer_id", ToColumn: "customer_id"},
			{From: "fact_returns", To: "dim_store", FromColumn: "store_id", ToColumn: "store_id"},
			{From: "fact_returns", To: "dim_time", FromColumn: "date_id", ToColumn: "date_id"},
		},
	}
}

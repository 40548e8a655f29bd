package models

// Product is a read-only catalog record.
type Product struct {
	ID            string  `json:"product_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	Currency      string  `json:"currency"`
	StockStatus   string  `json:"stock_status"`
	StockQuantity int     `json:"stock_quantity"`
	MinOrderQty   int     `json:"min_order_qty"`
	LeadTime      string  `json:"lead_time"`
}

// BatchCode maps a product to its production batch and date code.
type BatchCode struct {
	ProductID      string `json:"product_id"`
	BatchCode      string `json:"batch_code"`
	DateCode       string `json:"dc_code"`
	ProductionDate string `json:"production_date"`
}

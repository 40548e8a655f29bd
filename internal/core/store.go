// Package core contains the business layer of the mail-triage system: the
// CSV-backed data store, the runtime order overlay, the business operations
// exposed to the agent, and configuration loading.
package core

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/valter-silva-au/mail-triage/pkg/models"
	"gopkg.in/yaml.v3"
)

// LoadReport records the outcome of loading each table. A table that fails
// to load is left empty rather than aborting the process; dependent lookups
// then report not-found.
type LoadReport struct {
	Customers        int
	Orders           int
	LineItemOrders   int
	Products         int
	BatchCodes       int
	DocTemplates     int
	InquiryTemplates int
	Errors           []string
}

// Store is the read-only business dataset. Tables are populated once by Load
// and never mutated afterwards; runtime order changes live in the Overlay.
type Store interface {
	// Load populates all tables from the data directory. Per-table failures
	// are recorded in the report, not returned as an error.
	Load() *LoadReport

	Customer(email string) (models.Customer, bool)
	Customers() []models.Customer
	Order(id string) (models.Order, bool)
	Orders() []models.Order
	OrdersByCustomer(email string) []models.Order
	Product(id string) (models.Product, bool)
	Products() []models.Product
	BatchCode(productID string) (models.BatchCode, bool)
	DocumentTemplate(docType string) (models.DocumentTemplate, bool)
	InquiryTemplates() []models.InquiryTemplate
}

type csvStore struct {
	dataDir       string
	templatesFile string

	customers map[string]models.Customer
	orders    map[string]models.Order
	items     map[string][]models.LineItem
	products  map[string]models.Product
	batches   map[string]models.BatchCode
	docs      map[string]models.DocumentTemplate
	inquiries []models.InquiryTemplate
}

// NewStore creates a Store reading CSV tables from dataDir and inquiry
// templates from templatesFile. Call Load before the first lookup.
func NewStore(dataDir, templatesFile string) Store {
	return &csvStore{
		dataDir:       dataDir,
		templatesFile: templatesFile,
		customers:     make(map[string]models.Customer),
		orders:        make(map[string]models.Order),
		items:         make(map[string][]models.LineItem),
		products:      make(map[string]models.Product),
		batches:       make(map[string]models.BatchCode),
		docs:          make(map[string]models.DocumentTemplate),
	}
}

func (s *csvStore) Load() *LoadReport {
	report := &LoadReport{}

	if err := s.loadCustomers(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("customers: %v", err))
	}
	if err := s.loadOrders(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("orders: %v", err))
	}
	if err := s.loadLineItems(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("order products: %v", err))
	}
	if err := s.loadProducts(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("products: %v", err))
	}
	if err := s.loadBatchCodes(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("batch codes: %v", err))
	}
	if err := s.loadDocTemplates(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("document templates: %v", err))
	}
	if err := s.loadInquiryTemplates(); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("inquiry templates: %v", err))
	}

	report.Customers = len(s.customers)
	report.Orders = len(s.orders)
	report.LineItemOrders = len(s.items)
	report.Products = len(s.products)
	report.BatchCodes = len(s.batches)
	report.DocTemplates = len(s.docs)
	report.InquiryTemplates = len(s.inquiries)
	return report
}

// readTable reads a header+rows CSV file and returns each row as a
// column-name → value map.
func readTable(path string) ([]map[string]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path from trusted config
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *csvStore) loadCustomers() error {
	rows, err := readTable(filepath.Join(s.dataDir, "customers.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		c := models.Customer{
			ID:               row["customer_id"],
			Name:             row["name"],
			Email:            row["email"],
			Phone:            row["phone"],
			Company:          row["company"],
			Country:          row["country"],
			RegistrationDate: row["registration_date"],
			VIPLevel:         models.VIPLevel(row["vip_level"]),
		}
		if c.Email != "" {
			s.customers[c.Email] = c
		}
	}
	return nil
}

func (s *csvStore) loadOrders() error {
	rows, err := readTable(filepath.Join(s.dataDir, "orders.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		total, _ := strconv.ParseFloat(row["total_amount"], 64)
		o := models.Order{
			ID:              row["order_id"],
			CustomerID:      row["customer_id"],
			CustomerEmail:   row["customer_email"],
			Status:          row["status"],
			ShippingStatus:  models.ShippingStatus(row["shipping_status"]),
			TotalAmount:     total,
			Currency:        row["currency"],
			TrackingNumber:  row["tracking_number"],
			ShippingAddress: row["shipping_address"],
		}
		if o.ID != "" {
			s.orders[o.ID] = o
		}
	}
	return nil
}

func (s *csvStore) loadLineItems() error {
	rows, err := readTable(filepath.Join(s.dataDir, "order_products.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		qty, _ := strconv.Atoi(row["quantity"])
		price, _ := strconv.ParseFloat(row["unit_price"], 64)
		orderID := row["order_id"]
		if orderID == "" {
			continue
		}
		s.items[orderID] = append(s.items[orderID], models.LineItem{
			ProductID:   row["product_id"],
			ProductName: row["product_name"],
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return nil
}

func (s *csvStore) loadProducts() error {
	rows, err := readTable(filepath.Join(s.dataDir, "products.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		price, _ := strconv.ParseFloat(row["unit_price"], 64)
		stock, _ := strconv.Atoi(row["stock_quantity"])
		minQty, _ := strconv.Atoi(row["min_order_qty"])
		p := models.Product{
			ID:            row["product_id"],
			Name:          row["name"],
			Category:      row["category"],
			UnitPrice:     price,
			Currency:      row["currency"],
			StockStatus:   row["stock_status"],
			StockQuantity: stock,
			MinOrderQty:   minQty,
			LeadTime:      row["lead_time"],
		}
		if p.ID != "" {
			s.products[p.ID] = p
		}
	}
	return nil
}

func (s *csvStore) loadBatchCodes() error {
	rows, err := readTable(filepath.Join(s.dataDir, "batch_codes.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		b := models.BatchCode{
			ProductID:      row["product_id"],
			BatchCode:      row["batch_code"],
			DateCode:       row["dc_code"],
			ProductionDate: row["production_date"],
		}
		if b.ProductID != "" {
			s.batches[b.ProductID] = b
		}
	}
	return nil
}

func (s *csvStore) loadDocTemplates() error {
	rows, err := readTable(filepath.Join(s.dataDir, "document_templates.csv"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		d := models.DocumentTemplate{
			DocType: row["doc_type"],
			Name:    row["name"],
			Body:    row["body"],
		}
		if d.DocType != "" {
			s.docs[d.DocType] = d
		}
	}
	return nil
}

func (s *csvStore) loadInquiryTemplates() error {
	if s.templatesFile == "" {
		return nil
	}
	data, err := os.ReadFile(s.templatesFile) //nolint:gosec // G304: path from trusted config
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.templatesFile, err)
	}

	var doc struct {
		Inquiries []models.InquiryTemplate `yaml:"inquiries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", s.templatesFile, err)
	}
	s.inquiries = doc.Inquiries
	return nil
}

func (s *csvStore) Customer(email string) (models.Customer, bool) {
	c, ok := s.customers[email]
	return c, ok
}

func (s *csvStore) Customers() []models.Customer {
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Order returns the base order with its line items attached. The runtime
// overlay is applied by the operations layer, not here.
func (s *csvStore) Order(id string) (models.Order, bool) {
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, false
	}
	o.Items = append([]models.LineItem(nil), s.items[id]...)
	return o, true
}

func (s *csvStore) Orders() []models.Order {
	out := make([]models.Order, 0, len(s.orders))
	for id, o := range s.orders {
		o.Items = append([]models.LineItem(nil), s.items[id]...)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *csvStore) OrdersByCustomer(email string) []models.Order {
	var out []models.Order
	for id, o := range s.orders {
		if o.CustomerEmail == email {
			o.Items = append([]models.LineItem(nil), s.items[id]...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *csvStore) Product(id string) (models.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s *csvStore) Products() []models.Product {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *csvStore) BatchCode(productID string) (models.BatchCode, bool) {
	b, ok := s.batches[productID]
	return b, ok
}

func (s *csvStore) DocumentTemplate(docType string) (models.DocumentTemplate, bool) {
	d, ok := s.docs[docType]
	return d, ok
}

func (s *csvStore) InquiryTemplates() []models.InquiryTemplate {
	return s.inquiries
}

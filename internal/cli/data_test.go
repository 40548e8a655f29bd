package cli

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// fakeDataStore implements core.Store over fixed slices.
type fakeDataStore struct {
	customers []models.Customer
	orders    []models.Order
	products  []models.Product
}

func (s *fakeDataStore) Load() *core.LoadReport { return &core.LoadReport{} }

func (s *fakeDataStore) Customer(email string) (models.Customer, bool) {
	for _, c := range s.customers {
		if c.Email == email {
			return c, true
		}
	}
	return models.Customer{}, false
}

func (s *fakeDataStore) Customers() []models.Customer { return s.customers }

func (s *fakeDataStore) Order(id string) (models.Order, bool) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (s *fakeDataStore) Orders() []models.Order { return s.orders }

func (s *fakeDataStore) OrdersByCustomer(email string) []models.Order {
	var out []models.Order
	for _, o := range s.orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out
}

func (s *fakeDataStore) Product(id string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *fakeDataStore) Products() []models.Product { return s.products }

func (s *fakeDataStore) BatchCode(string) (models.BatchCode, bool) {
	return models.BatchCode{}, false
}

func (s *fakeDataStore) DocumentTemplate(string) (models.DocumentTemplate, bool) {
	return models.DocumentTemplate{}, false
}

func (s *fakeDataStore) InquiryTemplates() []models.InquiryTemplate { return nil }

func TestDataCommandsNilStore(t *testing.T) {
	origStore := DataStore
	defer func() { DataStore = origStore }()
	DataStore = nil

	for _, cmd := range []struct {
		name string
		run  func() error
	}{
		{"customers", func() error { return dataCustomersCmd.RunE(dataCustomersCmd, nil) }},
		{"orders", func() error { return dataOrdersCmd.RunE(dataOrdersCmd, nil) }},
		{"products", func() error { return dataProductsCmd.RunE(dataProductsCmd, nil) }},
	} {
		err := cmd.run()
		if err == nil {
			t.Errorf("%s: expected error with nil store", cmd.name)
			continue
		}
		if !strings.Contains(err.Error(), "data store not initialized") {
			t.Errorf("%s: unexpected error: %v", cmd.name, err)
		}
	}
}

func TestDataCommandsListWithoutError(t *testing.T) {
	origStore := DataStore
	origOverlay := Overlay
	defer func() {
		DataStore = origStore
		Overlay = origOverlay
	}()

	DataStore = &fakeDataStore{
		customers: []models.Customer{{ID: "CU001", Name: "Maria Lopez", Email: "maria@example.com"}},
		orders:    []models.Order{{ID: "LC100001", CustomerEmail: "maria@example.com", Status: "Paid"}},
		products:  []models.Product{{ID: "C25804", Name: "Resistor 10k", Currency: "USD"}},
	}
	Overlay = core.NewOverlay()

	if err := dataCustomersCmd.RunE(dataCustomersCmd, nil); err != nil {
		t.Errorf("customers: unexpected error: %v", err)
	}
	if err := dataOrdersCmd.RunE(dataOrdersCmd, nil); err != nil {
		t.Errorf("orders: unexpected error: %v", err)
	}
	if err := dataProductsCmd.RunE(dataProductsCmd, nil); err != nil {
		t.Errorf("products: unexpected error: %v", err)
	}
}

func TestDataResetClearsOverlay(t *testing.T) {
	origOverlay := Overlay
	defer func() { Overlay = origOverlay }()

	Overlay = core.NewOverlay()
	Overlay.Set("LC100001", core.OrderOverride{ShippingStatus: models.ShippingIntercepted})

	if err := dataResetCmd.RunE(dataResetCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Overlay.Len() != 0 {
		t.Errorf("expected empty overlay after reset, got %d entries", Overlay.Len())
	}
}

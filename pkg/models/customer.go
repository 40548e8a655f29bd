package models

// VIPLevel represents a customer's service tier.
type VIPLevel string

const (
	VIPBronze VIPLevel = "Bronze"
	VIPSilver VIPLevel = "Silver"
	VIPGold   VIPLevel = "Gold"
)

// Customer is a read-only customer record keyed by email address.
type Customer struct {
	ID               string   `json:"customer_id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone,omitempty"`
	Company          string   `json:"company,omitempty"`
	Country          string   `json:"country,omitempty"`
	RegistrationDate string   `json:"registration_date,omitempty"`
	VIPLevel         VIPLevel `json:"vip_level"`
}

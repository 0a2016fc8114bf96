package ledger

import (
	"strings"

	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Client represents a company extended credit. A client owns its invoices;
// deleting a client cascades to invoices and their payments.
type Client struct {
	shared.BaseEntity
	CompanyName   string
	ContactPerson string
	Phone         string
	Email         string
	CreditLimit   decimal.Decimal
}

// NewClient creates a new client with the required company name
func NewClient(companyName string) (*Client, error) {
	companyName = strings.TrimSpace(companyName)
	if err := validateCompanyName(companyName); err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyName: companyName,
		CreditLimit: decimal.Zero,
	}, nil
}

// Rename changes the company name
func (c *Client) Rename(companyName string) error {
	companyName = strings.TrimSpace(companyName)
	if err := validateCompanyName(companyName); err != nil {
		return err
	}
	c.CompanyName = companyName
	c.Touch()
	return nil
}

// SetContact updates the contact details
func (c *Client) SetContact(person, phone, email string) {
	c.ContactPerson = strings.TrimSpace(person)
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
	c.Touch()
}

// SetCreditLimit sets the client's credit limit
func (c *Client) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.Touch()
	return nil
}

func validateCompanyName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

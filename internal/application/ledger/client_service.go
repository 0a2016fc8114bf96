package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo  ledger.ClientRepository
	invoiceRepo ledger.InvoiceRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo ledger.ClientRepository, invoiceRepo ledger.InvoiceRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger.Named("clients"),
		now:         time.Now,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	if _, err := s.clientRepo.FindByName(ctx, req.CompanyName); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this company name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	client, err := ledger.NewClient(req.CompanyName)
	if err != nil {
		return nil, err
	}

	if req.ContactPerson != "" || req.Phone != "" || req.Email != "" {
		client.SetContact(req.ContactPerson, req.Phone, req.Email)
	}
	if req.CreditLimit != nil {
		if err := client.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("Client created", zap.String("company_name", client.CompanyName))

	response := ToClientResponse(client, nil)
	return &response, nil
}

// GetByID retrieves a client with its aggregated balance summary
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.BalanceRows(ctx, ledger.BalanceFilter{ClientID: &id})
	if err != nil {
		return nil, err
	}

	totals := ledger.SummarizeByClient(rows, s.now())
	response := ToClientResponse(client, totals[id])
	return &response, nil
}

// List lists clients matching the search term, each with its balance summary.
// The summaries come from one grouped query over all invoices, not a query
// per client.
func (s *ClientService) List(ctx context.Context, search string) ([]ClientResponse, error) {
	clients, err := s.clientRepo.Search(ctx, search)
	if err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.BalanceRows(ctx, ledger.BalanceFilter{})
	if err != nil {
		return nil, err
	}
	totals := ledger.SummarizeByClient(rows, s.now())

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i], totals[clients[i].ID])
	}
	return responses, nil
}

// Update updates a client's mutable fields
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil && *req.CompanyName != client.CompanyName {
		if existing, err := s.clientRepo.FindByName(ctx, *req.CompanyName); err == nil && existing.ID != id {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A client with this company name already exists")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := client.Rename(*req.CompanyName); err != nil {
			return nil, err
		}
	}

	if req.ContactPerson != nil || req.Phone != nil || req.Email != nil {
		contact := client.ContactPerson
		phone := client.Phone
		email := client.Email
		if req.ContactPerson != nil {
			contact = *req.ContactPerson
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		client.SetContact(contact, phone, email)
	}

	if req.CreditLimit != nil {
		if err := client.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a client; its invoices and their payments cascade
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}

package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
)

// ClientService exposes the firm's client registry
type ClientService struct {
	clients intake.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clients intake.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

// List pages through the firm's clients
func (s *ClientService) List(ctx context.Context, firmID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	domainFilter.Normalize()
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	clients, total, err := s.clients.ListForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToClientResponses(clients), total, nil
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, firmID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clients.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// Update applies a partial update
func (s *ClientService) Update(ctx context.Context, firmID, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clients.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}

	update := intake.ClientUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.Status != nil {
		status := intake.ClientStatus(*req.Status)
		update.Status = &status
	}
	if err := client.Update(update); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

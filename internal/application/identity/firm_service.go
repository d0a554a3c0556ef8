package identity

import (
	"context"

	"github.com/lexflow/backend/internal/domain/identity"
	"github.com/lexflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrFirmAdminRequired is returned when a non-administrator edits firm settings
var ErrFirmAdminRequired = shared.NewDomainError(shared.CodeForbidden, "Only firm administrators can update firm settings")

// FirmService reads and updates the caller's firm profile
type FirmService struct {
	firmRepo identity.FirmRepository
	logger   *zap.Logger
}

// NewFirmService creates a new FirmService
func NewFirmService(firmRepo identity.FirmRepository, logger *zap.Logger) *FirmService {
	return &FirmService{firmRepo: firmRepo, logger: logger}
}

// GetFirm returns the caller's firm
func (s *FirmService) GetFirm(ctx context.Context, p Principal) (*FirmResponse, error) {
	firm, err := s.firmRepo.FindByID(ctx, p.FirmID)
	if err != nil {
		return nil, err
	}
	resp := ToFirmResponse(firm)
	return &resp, nil
}

// UpdateFirm applies a partial profile update. Only super-users may do this.
func (s *FirmService) UpdateFirm(ctx context.Context, p Principal, req UpdateFirmRequest) (*FirmResponse, error) {
	if !p.IsSuperuser || !p.IsActive {
		return nil, ErrFirmAdminRequired
	}

	firm, err := s.firmRepo.FindByID(ctx, p.FirmID)
	if err != nil {
		return nil, err
	}

	if err := firm.Update(identity.FirmUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Branding: req.Branding,
	}); err != nil {
		return nil, err
	}

	if err := s.firmRepo.Save(ctx, firm); err != nil {
		return nil, err
	}

	s.logger.Info("Firm profile updated",
		zap.String("firm_id", firm.ID.String()),
		zap.String("user_id", p.UserID.String()))

	resp := ToFirmResponse(firm)
	return &resp, nil
}

package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/identity"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockFirmRepository is a mock implementation of identity.FirmRepository
type MockFirmRepository struct {
	mock.Mock
}

func (m *MockFirmRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Firm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Firm), args.Error(1)
}

func (m *MockFirmRepository) Save(ctx context.Context, firm *identity.Firm) error {
	args := m.Called(ctx, firm)
	return args.Error(0)
}

func newTestFirm(t *testing.T) *identity.Firm {
	t.Helper()
	firm, err := identity.NewFirm("Smith Law", "office@smithlaw.com")
	require.NoError(t, err)
	return firm
}

func strPtr(s string) *string { return &s }

func TestFirmService_GetFirm(t *testing.T) {
	firms := new(MockFirmRepository)
	svc := NewFirmService(firms, zap.NewNop())
	ctx := context.Background()
	firm := newTestFirm(t)

	firms.On("FindByID", ctx, firm.ID).Return(firm, nil)

	resp, err := svc.GetFirm(ctx, Principal{FirmID: firm.ID, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Smith Law", resp.Name)
	assert.Equal(t, "trial", resp.SubscriptionStatus)
	assert.NotNil(t, resp.Branding)
}

func TestFirmService_UpdateFirm_Superuser(t *testing.T) {
	firms := new(MockFirmRepository)
	svc := NewFirmService(firms, zap.NewNop())
	ctx := context.Background()
	firm := newTestFirm(t)

	firms.On("FindByID", ctx, firm.ID).Return(firm, nil)
	firms.On("Save", ctx, firm).Return(nil)

	resp, err := svc.UpdateFirm(ctx, Principal{FirmID: firm.ID, IsSuperuser: true, IsActive: true}, UpdateFirmRequest{
		Name:     strPtr("Smith & Partners"),
		Phone:    strPtr("555-0100"),
		Branding: map[string]any{"primary_color": "#123456"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Smith & Partners", resp.Name)
	assert.Equal(t, "555-0100", resp.Phone)
	assert.Equal(t, "#123456", resp.Branding["primary_color"])
	firms.AssertExpectations(t)
}

func TestFirmService_UpdateFirm_RequiresSuperuser(t *testing.T) {
	firms := new(MockFirmRepository)
	svc := NewFirmService(firms, zap.NewNop())

	_, err := svc.UpdateFirm(context.Background(), Principal{FirmID: uuid.New(), IsActive: true}, UpdateFirmRequest{
		Name: strPtr("Hijacked"),
	})
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
	firms.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestFirmService_UpdateFirm_InvalidEmail(t *testing.T) {
	firms := new(MockFirmRepository)
	svc := NewFirmService(firms, zap.NewNop())
	ctx := context.Background()
	firm := newTestFirm(t)

	firms.On("FindByID", ctx, firm.ID).Return(firm, nil)

	_, err := svc.UpdateFirm(ctx, Principal{FirmID: firm.ID, IsSuperuser: true, IsActive: true}, UpdateFirmRequest{
		Email: strPtr("not-an-email"),
	})
	require.Error(t, err)
	firms.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestFirmService_UpdateFirm_Conflict(t *testing.T) {
	firms := new(MockFirmRepository)
	svc := NewFirmService(firms, zap.NewNop())
	ctx := context.Background()
	firm := newTestFirm(t)

	firms.On("FindByID", ctx, firm.ID).Return(firm, nil)
	firms.On("Save", ctx, firm).Return(shared.ErrConcurrencyConflict)

	_, err := svc.UpdateFirm(ctx, Principal{FirmID: firm.ID, IsSuperuser: true, IsActive: true}, UpdateFirmRequest{
		Address: strPtr("1 Main St"),
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

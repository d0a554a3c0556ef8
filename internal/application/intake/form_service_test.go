package intake

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestFormService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active form", func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.formSvc.Create(ctx, env.firmID, CreateFormRequest{
			Name:                "Family Law Intake",
			Description:         "Divorce and custody matters",
			FieldsSchema:        map[string]any{"fields": []any{"email"}},
			RetainerTemplateURL: "https://files.smithlaw.com/family.pdf",
			RetainerAmount:      strPtr("1500.5"),
		})
		require.NoError(t, err)
		assert.Equal(t, env.firmID, resp.FirmID)
		assert.True(t, resp.IsActive)
		assert.True(t, resp.PaymentRequired)
		require.NotNil(t, resp.RetainerAmount)
		assert.Equal(t, "1500.50", *resp.RetainerAmount)

		stored, err := env.forms.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, "Family Law Intake", stored.Name)
	})

	t.Run("rejects bad amount", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.formSvc.Create(ctx, env.firmID, CreateFormRequest{Name: "Intake", RetainerAmount: strPtr("12.345")})
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, "INVALID_AMOUNT"))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.formSvc.Create(ctx, env.firmID, CreateFormRequest{Name: "   "})
		assert.Error(t, err)
	})
}

func TestFormService_PublicVisibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	form := env.retainerForm(t)

	public, err := env.formSvc.GetPublic(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, public.HasRetainerTemplate)
	assert.Equal(t, "500.00", *public.RetainerAmount)

	require.NoError(t, env.formSvc.Delete(ctx, env.firmID, form.ID))

	_, err = env.formSvc.GetPublic(ctx, form.ID)
	assert.ErrorIs(t, err, intake.ErrFormNotFound)

	owner, err := env.formSvc.Get(ctx, env.firmID, form.ID)
	require.NoError(t, err)
	assert.False(t, owner.IsActive)

	// deleting twice is harmless
	require.NoError(t, env.formSvc.Delete(ctx, env.firmID, form.ID))
}

func TestFormService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	form := env.retainerForm(t)

	resp, err := env.formSvc.Update(ctx, env.firmID, form.ID, UpdateFormRequest{
		Name:            strPtr("PI Intake v2"),
		PaymentRequired: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "PI Intake v2", resp.Name)
	assert.False(t, resp.PaymentRequired)
	assert.Equal(t, "500.00", *resp.RetainerAmount)

	_, err = env.formSvc.Update(ctx, uuid.New(), form.ID, UpdateFormRequest{Name: strPtr("stolen")})
	assert.ErrorIs(t, err, intake.ErrFormNotFound)
}

func TestFormService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	active := env.retainerForm(t)
	inactive := env.plainForm(t)
	require.NoError(t, env.formSvc.Delete(ctx, env.firmID, inactive.ID))

	all, total, err := env.formSvc.List(ctx, env.firmID, FormListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	onlyActive, total, err := env.formSvc.List(ctx, env.firmID, FormListFilter{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	none, _, err := env.formSvc.List(ctx, uuid.New(), FormListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClientService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sub := env.seedSubmission(t, env.retainerForm(t))

	t.Run("get", func(t *testing.T) {
		client, err := env.clientSvc.Get(ctx, env.firmID, sub.ClientID)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", client.Email)
		assert.Equal(t, "pending", client.Status)

		_, err = env.clientSvc.Get(ctx, uuid.New(), sub.ClientID)
		assert.ErrorIs(t, err, intake.ErrClientNotFound)
	})

	t.Run("update", func(t *testing.T) {
		client, err := env.clientSvc.Update(ctx, env.firmID, sub.ClientID, UpdateClientRequest{
			Phone:  strPtr(" 555-0199 "),
			Status: strPtr("active"),
		})
		require.NoError(t, err)
		assert.Equal(t, "555-0199", client.Phone)
		assert.Equal(t, "active", client.Status)
		assert.Equal(t, intake.ClientActive, env.clients.status(sub.ClientID))
	})

	t.Run("list by status", func(t *testing.T) {
		items, total, err := env.clientSvc.List(ctx, env.firmID, ClientListFilter{Status: "active"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)

		items, _, err = env.clientSvc.List(ctx, env.firmID, ClientListFilter{Status: "rejected"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

package intake

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFromFormData(t *testing.T) {
	profile, err := ProfileFromFormData(map[string]any{
		"email":     " A@X.com ",
		"firstName": "Ada",
		"last_name": "Lovelace",
		"phone":     "555-0100",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
	assert.Equal(t, "555-0100", profile.Phone)

	_, err = ProfileFromFormData(map[string]any{"first_name": "Ada"})
	assert.Error(t, err)

	_, err = ProfileFromFormData(map[string]any{"email": 42})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	firmID := uuid.New()
	data := map[string]any{"email": "a@x.com", "matter": "lease"}

	client, err := NewClient(firmID, ClientProfile{Email: "A@x.com", FirstName: "Ada", LastName: "Lovelace"}, data)
	require.NoError(t, err)

	assert.Equal(t, firmID, client.FirmID)
	assert.Equal(t, "a@x.com", client.Email)
	assert.Equal(t, ClientPending, client.Status)
	assert.Equal(t, "Ada Lovelace", client.FullName())
	assert.Equal(t, "lease", client.IntakeData["matter"])
}

func TestClient_Update(t *testing.T) {
	client, err := NewClient(uuid.New(), ClientProfile{Email: "a@x.com"}, nil)
	require.NoError(t, err)

	active := ClientActive
	phone := "555"
	require.NoError(t, client.Update(ClientUpdate{Status: &active, Phone: &phone}))
	assert.Equal(t, ClientActive, client.Status)
	assert.Equal(t, "555", client.Phone)

	bogus := ClientStatus("vip")
	assert.Error(t, client.Update(ClientUpdate{Status: &bogus}))
}

func TestStatusForSubmission(t *testing.T) {
	status, ok := StatusForSubmission(&Submission{Status: StatusCompleted})
	assert.True(t, ok)
	assert.Equal(t, ClientActive, status)

	status, ok = StatusForSubmission(&Submission{Status: StatusAwaitingPayment, SignatureStatus: SignatureSigned})
	assert.True(t, ok)
	assert.Equal(t, ClientSigned, status)

	_, ok = StatusForSubmission(&Submission{Status: StatusSubmitted})
	assert.False(t, ok)
}

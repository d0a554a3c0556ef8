package storage

import (
	"context"
	"time"

	intakeapp "github.com/lexflow/backend/internal/application/intake"
	"github.com/lexflow/backend/internal/domain/intake"
)

// DisabledObjectStorage stands in when no storage backend is configured.
// Every operation fails with a storage gateway error.
type DisabledObjectStorage struct{}

var _ intakeapp.ObjectStorage = DisabledObjectStorage{}

// NewDisabledObjectStorage creates a DisabledObjectStorage
func NewDisabledObjectStorage() DisabledObjectStorage {
	return DisabledObjectStorage{}
}

func errNotConfigured() error {
	return intake.NewGatewayError(provider, "storage not configured", nil)
}

func (DisabledObjectStorage) Upload(context.Context, string, []byte, string) error {
	return errNotConfigured()
}

func (DisabledObjectStorage) Download(context.Context, string) ([]byte, error) {
	return nil, errNotConfigured()
}

func (DisabledObjectStorage) GenerateDownloadURL(context.Context, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, errNotConfigured()
}

func (DisabledObjectStorage) DeleteObject(context.Context, string) error {
	return errNotConfigured()
}

func (DisabledObjectStorage) GetBucket() string {
	return ""
}

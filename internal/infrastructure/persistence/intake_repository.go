package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFormRepository implements intake.FormRepository
type GormFormRepository struct {
	db *gorm.DB
}

// NewGormFormRepository creates a new GormFormRepository
func NewGormFormRepository(db *gorm.DB) *GormFormRepository {
	return &GormFormRepository{db: db}
}

// Create inserts a new form
func (r *GormFormRepository) Create(ctx context.Context, form *intake.IntakeForm) error {
	return r.db.WithContext(ctx).Create(models.IntakeFormModelFromDomain(form)).Error
}

// Save writes a form under optimistic locking
func (r *GormFormRepository) Save(ctx context.Context, form *intake.IntakeForm) error {
	m := models.IntakeFormModelFromDomain(form)
	err := saveWithVersion(ctx, r.db, &models.IntakeFormModel{}, form.ID, form.Version, map[string]any{
		"name":                  m.Name,
		"description":           m.Description,
		"fields_schema":         m.FieldsSchema,
		"retainer_template_url": m.RetainerTemplateURL,
		"retainer_amount":       m.RetainerAmount,
		"payment_required":      m.PaymentRequired,
		"is_active":             m.IsActive,
		"updated_at":            m.UpdatedAt,
	})
	if err != nil {
		return err
	}
	form.IncrementVersion()
	return nil
}

// FindByIDForFirm returns a form owned by firmID, active or not
func (r *GormFormRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*intake.IntakeForm, error) {
	var model models.IntakeFormModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrFormNotFound)
	}
	return model.ToDomain(), nil
}

// FindActiveByID returns an active form; inactive and missing look the same
func (r *GormFormRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*intake.IntakeForm, error) {
	var model models.IntakeFormModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrFormNotFound)
	}
	return model.ToDomain(), nil
}

// FindByID returns a form regardless of firm or active flag
func (r *GormFormRepository) FindByID(ctx context.Context, id uuid.UUID) (*intake.IntakeForm, error) {
	var model models.IntakeFormModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, intake.ErrFormNotFound)
	}
	return model.ToDomain(), nil
}

// ListForFirm pages through a firm's forms, including inactive ones
func (r *GormFormRepository) ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.IntakeForm, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.IntakeFormModel{}).Scopes(FirmScope(firmID))
	if active, ok := filterString(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active == "true")
	}

	var rows []models.IntakeFormModel
	total, err := paginate(query, filter, FormSortFields, &rows)
	if err != nil {
		return nil, 0, err
	}
	forms := make([]*intake.IntakeForm, len(rows))
	for i := range rows {
		forms[i] = rows[i].ToDomain()
	}
	return forms, total, nil
}

// GormClientRepository implements intake.ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// GetOrCreate inserts candidate unless (firm_id, email) already exists, then
// returns the stored row. The unique index arbitrates concurrent callers.
func (r *GormClientRepository) GetOrCreate(ctx context.Context, candidate *intake.Client) (*intake.Client, bool, error) {
	db := r.db.WithContext(ctx)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "firm_id"}, {Name: "email"}},
		DoNothing: true,
	}).Create(models.ClientModelFromDomain(candidate))
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return candidate, true, nil
	}

	var existing models.ClientModel
	if err := db.Where("firm_id = ? AND email = ?", candidate.FirmID, candidate.Email).
		First(&existing).Error; err != nil {
		return nil, false, notFound(err, intake.ErrClientNotFound)
	}
	return existing.ToDomain(), false, nil
}

// FindByIDForFirm returns a client owned by firmID
func (r *GormClientRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*intake.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrClientNotFound)
	}
	return model.ToDomain(), nil
}

// ListForFirm pages through a firm's clients, optionally by status
func (r *GormClientRepository) ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(FirmScope(firmID))
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}

	var rows []models.ClientModel
	total, err := paginate(query, filter, ClientSortFields, &rows)
	if err != nil {
		return nil, 0, err
	}
	clients := make([]*intake.Client, len(rows))
	for i := range rows {
		clients[i] = rows[i].ToDomain()
	}
	return clients, total, nil
}

// Save writes a client under optimistic locking
func (r *GormClientRepository) Save(ctx context.Context, client *intake.Client) error {
	m := models.ClientModelFromDomain(client)
	err := saveWithVersion(ctx, r.db, &models.ClientModel{}, client.ID, client.Version, map[string]any{
		"first_name":  m.FirstName,
		"last_name":   m.LastName,
		"phone":       m.Phone,
		"intake_data": m.IntakeData,
		"status":      m.Status,
		"updated_at":  m.UpdatedAt,
	})
	if err != nil {
		return err
	}
	client.IncrementVersion()
	return nil
}

// UpdateStatus leaves the contact fields untouched, so it cannot revert a
// concurrent edit. The version bump makes a stale full Save conflict.
func (r *GormClientRepository) UpdateStatus(ctx context.Context, firmID, id uuid.UUID, status intake.ClientStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid client status")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Scopes(FirmScope(firmID)).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return intake.ErrClientNotFound
	}
	return nil
}

// GormSubmissionRepository implements intake.SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewGormSubmissionRepository creates a new GormSubmissionRepository
func NewGormSubmissionRepository(db *gorm.DB) *GormSubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Create inserts a new submission
func (r *GormSubmissionRepository) Create(ctx context.Context, s *intake.Submission) error {
	return duplicate(r.db.WithContext(ctx).Create(models.SubmissionModelFromDomain(s)).Error)
}

// SaveWithLock saves a submission with optimistic locking (version check).
// On success the in-memory version is advanced to match the row.
func (r *GormSubmissionRepository) SaveWithLock(ctx context.Context, s *intake.Submission) error {
	m := models.SubmissionModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.SubmissionModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(m.LockedUpdates(s.Version + 1))
	if result.Error != nil {
		return duplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	s.IncrementVersion()
	return nil
}

// FindByID returns a submission without firm scoping (public and webhook paths)
func (r *GormSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*intake.Submission, error) {
	var model models.SubmissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, intake.ErrSubmissionNotFound)
	}
	return model.ToDomain(), nil
}

// FindByIDForFirm returns a submission owned by firmID
func (r *GormSubmissionRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*intake.Submission, error) {
	var model models.SubmissionModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrSubmissionNotFound)
	}
	return model.ToDomain(), nil
}

// FindByEnvelopeID resolves a signature correlation id
func (r *GormSubmissionRepository) FindByEnvelopeID(ctx context.Context, envelopeID string) (*intake.Submission, error) {
	return r.findByCorrelation(ctx, "envelope_id", envelopeID)
}

// FindByCheckoutSessionID resolves a payment correlation id
func (r *GormSubmissionRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*intake.Submission, error) {
	return r.findByCorrelation(ctx, "checkout_session_id", sessionID)
}

func (r *GormSubmissionRepository) findByCorrelation(ctx context.Context, column, value string) (*intake.Submission, error) {
	if value == "" {
		return nil, intake.ErrSubmissionNotFound
	}
	var model models.SubmissionModel
	if err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrSubmissionNotFound)
	}
	return model.ToDomain(), nil
}

// ListForFirm pages through a firm's submissions, by form_id and status
func (r *GormSubmissionRepository) ListForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]*intake.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubmissionModel{}).Scopes(FirmScope(firmID))
	if formID, ok := filterString(filter, "form_id"); ok {
		id, err := uuid.Parse(formID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "form_id must be a UUID")
		}
		query = query.Where("form_id = ?", id)
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}

	var rows []models.SubmissionModel
	total, err := paginate(query, filter, SubmissionSortFields, &rows)
	if err != nil {
		return nil, 0, err
	}
	subs := make([]*intake.Submission, len(rows))
	for i := range rows {
		subs[i] = rows[i].ToDomain()
	}
	return subs, total, nil
}

// GormDocumentRepository implements intake.DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts document metadata
func (r *GormDocumentRepository) Create(ctx context.Context, doc *intake.Document) error {
	return r.db.WithContext(ctx).Create(models.DocumentModelFromDomain(doc)).Error
}

// FindByIDForFirm returns a document whose submission belongs to firmID
func (r *GormDocumentRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*intake.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN submissions ON submissions.id = documents.submission_id").
		Where("documents.id = ? AND submissions.firm_id = ?", id, firmID).
		First(&model).Error; err != nil {
		return nil, notFound(err, intake.ErrDocumentNotFound)
	}
	return model.ToDomain(), nil
}

// ListBySubmission returns a submission's documents, oldest first
func (r *GormDocumentRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*intake.Document, error) {
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]*intake.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// FindRetainer returns the most recent signable document for a submission
func (r *GormDocumentRepository) FindRetainer(ctx context.Context, submissionID uuid.UUID) (*intake.Document, error) {
	var model models.DocumentModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND document_type IN ?", submissionID, intake.RetainerDocumentTypes).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, intake.ErrNoRetainerDocument
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes document metadata
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return intake.ErrDocumentNotFound
	}
	return nil
}

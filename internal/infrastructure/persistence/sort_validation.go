package persistence

import (
	"fmt"
	"strings"

	"github.com/lexflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (default)
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, else defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// FormSortFields contains allowed sort fields for intake forms
var FormSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"is_active":  true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"email":      true,
	"last_name":  true,
	"status":     true,
}

// SubmissionSortFields contains allowed sort fields for submissions
var SubmissionSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"signed_at":  true,
	"paid_at":    true,
}

// paginate applies ordering and paging from filter to a counted query.
// The total is counted before limit/offset are applied.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, dest any) (int64, error) {
	filter.Normalize()
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, allowed, "created_at")
	order := fmt.Sprintf("%s %s", orderBy, ValidateSortOrder(filter.OrderDir))
	if err := query.Order(order).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// filterString reads a non-empty string filter value
func filterString(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	return s, s != ""
}

package repository

import (
	"fmt"
	"strings"

	"github.com/Elmamis69/jatrack/internal/domain"
)

// sortColumns whitelists the external sort field names and maps them
// to columns. Anything else is rejected before a query is built.
var sortColumns = map[string]string{
	"id":          "id",
	"company":     "company",
	"roleTitle":   "role_title",
	"status":      "status",
	"appliedDate": "applied_date",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

const selectApplicationColumns = `id, user_id, company, role_title, status, applied_date, contact_email, job_url, notes, created_at, updated_at`

// buildSearchQuery composes the owner-scoped search statement and its
// companion count statement. The owner predicate is always the first
// clause; status and text predicates are appended only when supplied,
// so the no-filter case stays a plain owner-scoped scan. Both
// statements share the same argument list prefix; limit and offset are
// appended only to the page query.
func buildSearchQuery(ownerID int64, filter domain.SearchFilter, page domain.PageRequest) (query, countQuery string, args []any, err error) {
	column, ok := sortColumns[page.SortBy]
	if !ok {
		return "", "", nil, fmt.Errorf("%w: %q", domain.ErrInvalidSortField, page.SortBy)
	}
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	var where strings.Builder
	where.WriteString("WHERE user_id = $1")
	args = append(args, ownerID)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		fmt.Fprintf(&where, " AND status = $%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		fmt.Fprintf(&where,
			" AND (company ILIKE $%[1]d OR role_title ILIKE $%[1]d OR COALESCE(notes, '') ILIKE $%[1]d OR COALESCE(contact_email, '') ILIKE $%[1]d OR COALESCE(job_url, '') ILIKE $%[1]d)", n)
	}

	countQuery = "SELECT COUNT(*) FROM applications " + where.String()

	args = append(args, page.Size, page.Offset())
	query = fmt.Sprintf("SELECT %s FROM applications %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		selectApplicationColumns, where.String(), column, direction, len(args)-1, len(args))

	return query, countQuery, args, nil
}

// escapeLike neutralizes LIKE metacharacters so the user's query is
// matched as a literal substring.
func escapeLike(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(q)
}

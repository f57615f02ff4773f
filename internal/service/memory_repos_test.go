package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/repository"
)

// In-memory repository fakes mirroring the Postgres contracts,
// including ownership scoping and the search predicate rules.

var (
	_ repository.UserRepository        = (*memoryUserRepo)(nil)
	_ repository.ApplicationRepository = (*memoryAppRepo)(nil)
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[int64]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]domain.User)}
}

func (m *memoryUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memoryUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memoryUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.User{}, domain.ErrDuplicateEmail
		}
	}
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = user
	return user, nil
}

type memoryAppRepo struct {
	mu   sync.Mutex
	apps map[int64]domain.Application
}

func newMemoryAppRepo() *memoryAppRepo {
	return &memoryAppRepo{apps: make(map[int64]domain.Application)}
}

func (m *memoryAppRepo) Create(_ context.Context, app domain.Application) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	m.apps[app.ID] = app
	return app, nil
}

func (m *memoryAppRepo) GetByIDAndOwner(_ context.Context, id, ownerID int64) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok || app.UserID != ownerID {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

func (m *memoryAppRepo) Update(_ context.Context, app domain.Application) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return domain.Application{}, domain.ErrNotFound
	}
	existing.Company = app.Company
	existing.RoleTitle = app.RoleTitle
	existing.Status = app.Status
	existing.AppliedDate = app.AppliedDate
	existing.ContactEmail = app.ContactEmail
	existing.JobURL = app.JobURL
	existing.Notes = app.Notes
	existing.UpdatedAt = time.Now().UTC()
	m.apps[app.ID] = existing
	return existing, nil
}

func (m *memoryAppRepo) Delete(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok || app.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

var memorySortFields = map[string]struct{}{
	"id": {}, "company": {}, "roleTitle": {}, "status": {},
	"appliedDate": {}, "createdAt": {}, "updatedAt": {},
}

func (m *memoryAppRepo) Search(_ context.Context, ownerID int64, filter domain.SearchFilter, page domain.PageRequest) (domain.Page, error) {
	if _, ok := memorySortFields[page.SortBy]; !ok {
		return domain.Page{}, domain.ErrInvalidSortField
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Application
	for _, app := range m.apps {
		if app.UserID != ownerID {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" && !matchesQuery(app, q) {
			continue
		}
		matched = append(matched, app)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessBy(page.SortBy, matched[i], matched[j])
		if page.SortDesc {
			return lessBy(page.SortBy, matched[j], matched[i])
		}
		return less
	})

	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}

	return domain.NewPage(matched[start:end], page, total), nil
}

func matchesQuery(app domain.Application, q string) bool {
	needle := strings.ToLower(q)
	for _, field := range []string{app.Company, app.RoleTitle, app.Notes, app.ContactEmail, app.JobURL} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func lessBy(field string, a, b domain.Application) bool {
	switch field {
	case "company":
		return a.Company < b.Company
	case "roleTitle":
		return a.RoleTitle < b.RoleTitle
	case "status":
		return a.Status < b.Status
	case "appliedDate":
		return a.AppliedDate.Before(b.AppliedDate.Time)
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.ID < b.ID
	}
}

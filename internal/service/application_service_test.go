package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/service"
)

const (
	aliceID int64 = 100
	bobID   int64 = 200
)

func newApplicationService(t *testing.T) (*service.ApplicationService, *memoryAppRepo) {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	repo := newMemoryAppRepo()
	return service.NewApplicationService(repo, node, zap.NewNop()), repo
}

func draft(company, roleTitle string, status domain.Status) domain.Application {
	return domain.Application{
		Company:     company,
		RoleTitle:   roleTitle,
		Status:      status,
		AppliedDate: domain.NewDate(2024, time.January, 1),
	}
}

func TestCreateAssignsOwnerFromCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	// A draft carrying someone else's owner id is ignored.
	d := draft("Acme", "Engineer", domain.StatusApplied)
	d.UserID = bobID
	d.ID = 999

	created, err := svc.Create(ctx, aliceID, d)
	require.NoError(t, err)
	require.Equal(t, aliceID, created.UserID)
	require.NotEqual(t, int64(999), created.ID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	var validation *domain.ValidationError

	_, err := svc.Create(ctx, aliceID, draft("", "Engineer", domain.StatusApplied))
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "company", validation.Field)

	_, err = svc.Create(ctx, aliceID, draft("Acme", "", domain.StatusApplied))
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "roleTitle", validation.Field)

	_, err = svc.Create(ctx, aliceID, draft("Acme", "Engineer", ""))
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "status", validation.Field)

	_, err = svc.Create(ctx, aliceID, draft("Acme", "Engineer", "HIRED"))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	created, err := svc.Create(ctx, aliceID, draft("Acme", "Engineer", domain.StatusApplied))
	require.NoError(t, err)

	// Bob sees Alice's record exactly as if it did not exist.
	_, err = svc.Get(ctx, bobID, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, bobID, created.ID, draft("Evil", "Intruder", domain.StatusOffer))
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, bobID, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Alice's record is untouched.
	got, err := svc.Get(ctx, aliceID, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Company)
}

func TestUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	created, err := svc.Create(ctx, aliceID, draft("Acme", "Engineer", domain.StatusApplied))
	require.NoError(t, err)

	patch := domain.Application{
		Company:      "Globex",
		RoleTitle:    "Staff Engineer",
		Status:       domain.StatusInterview,
		AppliedDate:  domain.NewDate(2024, time.February, 15),
		ContactEmail: "hr@globex.test",
		JobURL:       "https://globex.test/jobs/1",
		Notes:        "second round scheduled",
	}

	updated, err := svc.Update(ctx, aliceID, created.ID, patch)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, aliceID, updated.UserID)

	got, err := svc.Get(ctx, aliceID, created.ID)
	require.NoError(t, err)
	require.Equal(t, patch.Company, got.Company)
	require.Equal(t, patch.RoleTitle, got.RoleTitle)
	require.Equal(t, patch.Status, got.Status)
	require.Equal(t, patch.AppliedDate.String(), got.AppliedDate.String())
	require.Equal(t, patch.ContactEmail, got.ContactEmail)
	require.Equal(t, patch.JobURL, got.JobURL)
	require.Equal(t, patch.Notes, got.Notes)
}

func TestDeleteThenDeleteAgain(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	created, err := svc.Create(ctx, aliceID, draft("Acme", "Engineer", domain.StatusApplied))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, aliceID, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, aliceID, created.ID), domain.ErrNotFound)
}

func TestSearchScopesToCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, aliceID, draft(fmt.Sprintf("Alice Co %d", i), "Engineer", domain.StatusApplied))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bobID, draft("Bob Co", "Engineer", domain.StatusApplied))
	require.NoError(t, err)

	page, err := svc.Search(ctx, aliceID, domain.SearchFilter{}, domain.DefaultPageRequest())
	require.NoError(t, err)
	require.Equal(t, int64(3), page.TotalElements)
	require.Len(t, page.Content, 3)
	for _, app := range page.Content {
		require.Equal(t, aliceID, app.UserID)
	}
}

func TestSearchStatusPartitionsRecords(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	counts := map[domain.Status]int{
		domain.StatusApplied:   3,
		domain.StatusInterview: 2,
		domain.StatusOffer:     1,
	}
	total := 0
	for status, n := range counts {
		for i := 0; i < n; i++ {
			_, err := svc.Create(ctx, aliceID, draft("Acme", "Engineer", status))
			require.NoError(t, err)
			total++
		}
	}

	var sum int64
	for _, status := range domain.Statuses {
		s := status
		page, err := svc.Search(ctx, aliceID, domain.SearchFilter{Status: &s}, domain.DefaultPageRequest())
		require.NoError(t, err)
		require.Equal(t, int64(counts[status]), page.TotalElements)
		for _, app := range page.Content {
			require.Equal(t, status, app.Status)
		}
		sum += page.TotalElements
	}
	require.Equal(t, int64(total), sum)
}

func TestSearchQueryIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	_, err := svc.Create(ctx, aliceID, draft("Acme Corp", "Engineer", domain.StatusApplied))
	require.NoError(t, err)
	_, err = svc.Create(ctx, aliceID, draft("Globex", "Engineer", domain.StatusApplied))
	require.NoError(t, err)

	page, err := svc.Search(ctx, aliceID, domain.SearchFilter{Query: "ACME"}, domain.DefaultPageRequest())
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	require.Equal(t, "Acme Corp", page.Content[0].Company)
}

func TestSearchPaginationMetadata(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	for i := 0; i < 7; i++ {
		d := draft(fmt.Sprintf("Company %d", i), "Engineer", domain.StatusApplied)
		d.AppliedDate = domain.NewDate(2024, time.January, i+1)
		_, err := svc.Create(ctx, aliceID, d)
		require.NoError(t, err)
	}

	req := domain.PageRequest{Page: 1, Size: 3, SortBy: "appliedDate", SortDesc: true}
	page, err := svc.Search(ctx, aliceID, domain.SearchFilter{}, req)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 3, page.Size)
	require.Equal(t, int64(7), page.TotalElements)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 3)

	// Newest applied date first: page 1 holds days 4, 3, 2.
	require.Equal(t, "2024-01-04", page.Content[0].AppliedDate.String())
}

func TestSearchEmptyPageKeepsMetadata(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	status := domain.StatusOffer
	page, err := svc.Search(ctx, aliceID, domain.SearchFilter{Status: &status}, domain.DefaultPageRequest())
	require.NoError(t, err)
	require.NotNil(t, page.Content)
	require.Empty(t, page.Content)
	require.Equal(t, int64(0), page.TotalElements)
	require.Equal(t, 0, page.TotalPages)
	require.Equal(t, domain.DefaultPageSize, page.Size)
}

func TestSearchInvalidSortField(t *testing.T) {
	ctx := context.Background()
	svc, _ := newApplicationService(t)

	req := domain.PageRequest{Page: 0, Size: 10, SortBy: "secret"}
	_, err := svc.Search(ctx, aliceID, domain.SearchFilter{}, req)
	require.ErrorIs(t, err, domain.ErrInvalidSortField)
}

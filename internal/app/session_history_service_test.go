package app

import (
	"context"
	"errors"
	"testing"

	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// mockSessionRepository implements secondary.SessionRepository for testing.
type mockSessionRepository struct {
	sessions    []*secondary.SessionRecord
	lastFilters secondary.SessionFilters
	listErr     error
}

func (m *mockSessionRepository) List(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	m.lastFilters = filters
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.SessionRecord
	for _, s := range m.sessions {
		if filters.Participant != "" && s.Participant != filters.Participant {
			continue
		}
		result = append(result, s)
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func newTestSessionHistoryService() (*SessionHistoryServiceImpl, *mockSessionRepository) {
	repo := &mockSessionRepository{
		sessions: []*secondary.SessionRecord{
			{ID: "s2", Participant: "P02", AgeGroup: "child", PrimeListName: "B", TrialCount: 20, PrimeCount: 40, CreatedAt: "2024-03-06T10:00:00Z"},
			{ID: "s1", Participant: "P01", AgeGroup: "adult", BlocksReversed: true, PrimeListName: "A", TrialCount: 18, CreatedAt: "2024-03-05T14:30:00Z"},
		},
	}
	return NewSessionHistoryService(repo), repo
}

func TestListSessions(t *testing.T) {
	service, _ := newTestSessionHistoryService()

	entries, err := service.ListSessions(context.Background(), primary.SessionFilters{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	e := entries[1]
	if e.ID != "s1" || !e.BlocksReversed || e.Trials != 18 || e.PrimeAnswers != 0 || e.AgeGroup != "adult" {
		t.Errorf("entry = %+v", e)
	}
}

func TestListSessions_PassesFilters(t *testing.T) {
	service, repo := newTestSessionHistoryService()

	entries, err := service.ListSessions(context.Background(), primary.SessionFilters{Participant: "P02", Limit: 5})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if repo.lastFilters.Participant != "P02" || repo.lastFilters.Limit != 5 {
		t.Errorf("filters = %+v", repo.lastFilters)
	}
	if len(entries) != 1 || entries[0].PrimeAnswers != 40 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestListSessions_RepositoryError(t *testing.T) {
	service, repo := newTestSessionHistoryService()
	repo.listErr = errors.New("database is locked")

	if _, err := service.ListSessions(context.Background(), primary.SessionFilters{}); err == nil {
		t.Error("expected error")
	}
}

package jira

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenity-go/serenity-jira/internal/models"
)

type stubGateway struct {
	issues    map[string]models.IssueSummary
	findErr   error
	findCalls int
}

func (s *stubGateway) FindByKey(key string) (*models.IssueSummary, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	if issue, ok := s.issues[key]; ok {
		return &issue, nil
	}
	return nil, fmt.Errorf("issue %s: %w", key, ErrNoSuchIssue)
}

func (s *stubGateway) FindByJQL(string) ([]models.IssueSummary, error) { return nil, nil }

func (s *stubGateway) GetTestSteps(int64) ([]TestStepDetail, error) { return nil, nil }

func (s *stubGateway) GetExecutionSchedule(int64) (*ExecutionSchedule, error) { return nil, nil }

func TestIssueCache_FetchesOnceAndMemoizes(t *testing.T) {
	gateway := &stubGateway{
		issues: map[string]models.IssueSummary{
			"PROJ-1": {ID: 1, Key: "PROJ-1", Type: "Epic", Summary: "Selling stuff"},
		},
	}
	cache := NewIssueCache(gateway)

	first, err := cache.IssueWithKey("PROJ-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.IssueWithKey("PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gateway.findCalls)
}

func TestIssueCache_CachesAbsence(t *testing.T) {
	gateway := &stubGateway{}
	cache := NewIssueCache(gateway)

	issue, err := cache.IssueWithKey("PROJ-404")
	require.NoError(t, err)
	assert.Nil(t, issue)

	issue, err = cache.IssueWithKey("PROJ-404")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, 1, gateway.findCalls, "known-missing keys must not be re-fetched")
}

func TestIssueCache_DoesNotCacheTransportErrors(t *testing.T) {
	gateway := &stubGateway{findErr: errors.New("connection refused")}
	cache := NewIssueCache(gateway)

	_, err := cache.IssueWithKey("PROJ-1")
	require.Error(t, err)

	gateway.findErr = nil
	gateway.issues = map[string]models.IssueSummary{
		"PROJ-1": {ID: 1, Key: "PROJ-1", Type: "Epic", Summary: "Selling stuff"},
	}

	issue, err := cache.IssueWithKey("PROJ-1")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, 2, gateway.findCalls)
}

package jira

import (
	"errors"

	"github.com/serenity-go/serenity-jira/internal/config"
	"github.com/serenity-go/serenity-jira/internal/models"
)

// ErrNoSuchIssue reports that a single-issue lookup referenced an issue the
// server does not know. Callers use errors.Is to tell expected absence apart
// from transport or auth failures.
var ErrNoSuchIssue = errors.New("no such issue")

// TestStepDetail is one manual-test step definition from the Zephyr extension.
type TestStepDetail struct {
	OrderID int64  `json:"orderId"`
	Step    string `json:"htmlStep"`
}

// ScheduleEntry is one recorded execution attempt of a manual test.
// ExecutedOn is the human-formatted Zephyr timestamp and may be empty.
type ScheduleEntry struct {
	ExecutionStatus string `json:"executionStatus"`
	ExecutedOn      string `json:"executedOn,omitempty"`
}

// ExecutionStatus is the display name behind a Zephyr status code.
type ExecutionStatus struct {
	Name string `json:"name"`
}

// ExecutionSchedule is the execution history of one manual test: schedule
// entries ordered most recent first, plus the status-code legend.
type ExecutionSchedule struct {
	Schedules []ScheduleEntry            `json:"schedules"`
	Status    map[string]ExecutionStatus `json:"status"`
}

// Gateway defines the read-only query operations the requirements provider
// and the Zephyr adaptor need from a Jira server.
type Gateway interface {
	// FindByKey looks up a single issue. It returns an error wrapping
	// ErrNoSuchIssue when the server reports the issue does not exist.
	FindByKey(key string) (*models.IssueSummary, error)
	// FindByJQL runs a JQL search and returns the matching issues in
	// server order.
	FindByJQL(jql string) ([]models.IssueSummary, error)
	// GetTestSteps returns the ordered step definitions of a manual test.
	GetTestSteps(issueID int64) ([]TestStepDetail, error)
	// GetExecutionSchedule returns the execution history of a manual test.
	GetExecutionSchedule(issueID int64) (*ExecutionSchedule, error)
}

// NewGateway creates a Gateway backed by the Jira REST API.
func NewGateway(cfg *config.Config) Gateway {
	return NewClient(cfg)
}

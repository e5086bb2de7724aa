// Package zephyr reads manual test results from the Jira Zephyr extension
// and converts them into reporting-tool test outcomes.
package zephyr

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/serenity-go/serenity-jira/internal/config"
	"github.com/serenity-go/serenity-jira/internal/jira"
	"github.com/serenity-go/serenity-jira/internal/logging"
	"github.com/serenity-go/serenity-jira/internal/models"
)

// defaultStory groups manual tests with no associated issue.
const defaultStory = "Manual tests"

// testStatusMap maps Zephyr execution status names onto test results.
// Unrecognized names fall back to pending.
var testStatusMap = map[string]models.TestResult{
	"PASS":       models.ResultSuccess,
	"FAIL":       models.ResultFailure,
	"WIP":        models.ResultPending,
	"BLOCKED":    models.ResultSkipped,
	"UNEXECUTED": models.ResultIgnored,
}

// Adaptor synthesizes manual-test outcomes from issues of type Test and
// their Zephyr execution records.
type Adaptor struct {
	gateway    jira.Gateway
	issues     *jira.IssueCache
	projectKey string
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewAdaptor creates an adaptor for the configured project.
func NewAdaptor(gateway jira.Gateway, cfg *config.Config) *Adaptor {
	return &Adaptor{
		gateway:    gateway,
		issues:     jira.NewIssueCache(gateway),
		projectKey: cfg.ProjectKey,
		log:        logging.Named("zephyr"),
		now:        time.Now,
	}
}

// executionRecord is the most recent execution of a manual test.
type executionRecord struct {
	result     models.TestResult
	executedOn *time.Time
}

// LoadOutcomes fetches every issue of type Test in the project and builds a
// test outcome for each. Unlike the requirements provider, this path is not
// resilient: a malformed execution record or a failing query aborts with an
// error, since it indicates a broken Zephyr contract worth surfacing.
func (a *Adaptor) LoadOutcomes() ([]models.TestOutcome, error) {
	manualTests, err := a.gateway.FindByJQL(a.manualTestsJQL())
	if err != nil {
		return nil, fmt.Errorf("failed to load Zephyr manual tests: %w", err)
	}

	outcomes := make([]models.TestOutcome, 0, len(manualTests))
	for _, issue := range manualTests {
		outcome, err := a.outcomeFrom(issue)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (a *Adaptor) manualTestsJQL() string {
	return "type = Test and project = " + a.projectKey
}

func (a *Adaptor) outcomeFrom(issue models.IssueSummary) (models.TestOutcome, error) {
	associated := a.issuesMatchingLabels(issue)

	outcome := models.TestOutcome{
		Title:       fmt.Sprintf("Manual test - %s (%s)", issue.Summary, issue.Key),
		Story:       storyFrom(associated),
		Description: issue.RenderedDescription,
		Tags:        models.TagSet{},
		Manual:      true,
	}
	for _, related := range associated {
		outcome.IssueKeys = append(outcome.IssueKeys, related.Key)
		outcome.Tags.Add(models.TestTag{Name: related.Key, Type: "issue"})
	}

	record, err := a.executionRecordFor(issue.ID)
	if err != nil {
		return models.TestOutcome{}, err
	}

	steps, err := a.gateway.GetTestSteps(issue.ID)
	if err != nil {
		return models.TestOutcome{}, fmt.Errorf("failed to get test steps for %s: %w", issue.Key, err)
	}
	// Zephyr steps carry no individual status: each recorded step gets the
	// overall execution result.
	for _, step := range steps {
		outcome.Steps = append(outcome.Steps, models.TestStep{
			Description: step.Step,
			Result:      record.result,
		})
	}
	outcome.Result = record.result
	outcome.StartTime = record.executedOn
	return outcome, nil
}

// executionRecordFor reads the most recent schedule entry for the issue.
// A test that was never scheduled is pending with no timestamp.
func (a *Adaptor) executionRecordFor(issueID int64) (*executionRecord, error) {
	schedule, err := a.gateway.GetExecutionSchedule(issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get execution schedule for issue %d: %w", issueID, err)
	}
	if len(schedule.Schedules) == 0 {
		return &executionRecord{result: models.ResultPending}, nil
	}

	latest := schedule.Schedules[0]
	record := &executionRecord{
		result: resultFrom(latest.ExecutionStatus, schedule.Status),
	}
	if latest.ExecutedOn != "" {
		executedOn, err := ParseExecutionDate(latest.ExecutedOn, a.now())
		if err != nil {
			return nil, fmt.Errorf("issue %d: %w", issueID, err)
		}
		record.executedOn = &executedOn
	}
	return record, nil
}

func resultFrom(statusCode string, statusNames map[string]jira.ExecutionStatus) models.TestResult {
	if status, ok := statusNames[statusCode]; ok {
		if result, ok := testStatusMap[status.Name]; ok {
			return result
		}
	}
	return models.ResultPending
}

// issuesMatchingLabels tries each label of the test issue as an issue key
// and returns the issues that exist. Misses and lookup failures are skipped.
func (a *Adaptor) issuesMatchingLabels(issue models.IssueSummary) []models.IssueSummary {
	var matching []models.IssueSummary
	for _, label := range issue.Labels {
		related, err := a.issues.IssueWithKey(label)
		if err != nil {
			a.log.Warnw("could not resolve label to an issue", "label", label, "error", err)
			continue
		}
		if related != nil {
			matching = append(matching, *related)
		}
	}
	return matching
}

func storyFrom(associated []models.IssueSummary) models.Story {
	if len(associated) > 0 {
		return models.Story{Name: associated[0].Summary}
	}
	return models.Story{Name: defaultStory}
}

package jira

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/serenity-go/serenity-jira/internal/config"
	"github.com/serenity-go/serenity-jira/internal/models"
)

const (
	issueAPIPath  = "/rest/api/2/issue/"
	searchAPIPath = "/rest/api/2/search"
	zephyrAPIPath = "/rest/zephyr/1.0"

	searchPageSize = 50
)

// Client is a Jira and Zephyr API client backed by net/http.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new Jira client from the connection settings.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	return &Client{
		baseURL:  cfg.JiraBaseURL,
		username: cfg.JiraUsername,
		apiToken: cfg.JiraAPIToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// issueResponse is the relevant subset of a Jira issue payload.
type issueResponse struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	Fields         issueFields    `json:"fields"`
	RenderedFields renderedFields `json:"renderedFields"`
}

type issueFields struct {
	Summary   string   `json:"summary"`
	IssueType namedRef `json:"issuetype"`
	Labels    []string `json:"labels"`
}

type namedRef struct {
	Name string `json:"name"`
}

type renderedFields struct {
	Description string `json:"description"`
}

// searchResponse is the relevant subset of a Jira search payload.
type searchResponse struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	Issues     []issueResponse `json:"issues"`
}

// FindByKey fetches a single issue by key or numeric id. A 400 or 404
// response wraps ErrNoSuchIssue so callers can treat absence as expected.
func (c *Client) FindByKey(key string) (*models.IssueSummary, error) {
	query := url.Values{"expand": []string{"renderedFields"}}
	body, status, err := c.get(issueAPIPath+url.PathEscape(key), query)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		return nil, fmt.Errorf("issue %s: %w", key, ErrNoSuchIssue)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to get issue %s: status %d, body: %s", key, status, string(body))
	}

	var raw issueResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issue %s: %w", key, err)
	}
	issue, err := issueSummaryFrom(raw)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// FindByJQL runs a JQL search, following startAt pagination until every
// matching issue has been collected.
func (c *Client) FindByJQL(jql string) ([]models.IssueSummary, error) {
	var issues []models.IssueSummary
	startAt := 0
	for {
		query := url.Values{
			"jql":        []string{jql},
			"expand":     []string{"renderedFields"},
			"startAt":    []string{strconv.Itoa(startAt)},
			"maxResults": []string{strconv.Itoa(searchPageSize)},
		}
		body, status, err := c.get(searchAPIPath, query)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("search %q failed: status %d, body: %s", jql, status, string(body))
		}

		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
		}
		for _, raw := range page.Issues {
			issue, err := issueSummaryFrom(raw)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return issues, nil
		}
	}
}

// GetTestSteps fetches the ordered manual-test step definitions from the
// Zephyr extension.
func (c *Client) GetTestSteps(issueID int64) ([]TestStepDetail, error) {
	body, status, err := c.get(fmt.Sprintf("%s/teststep/%d", zephyrAPIPath, issueID), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to get test steps for issue %d: status %d, body: %s", issueID, status, string(body))
	}

	var steps []TestStepDetail
	if err := json.Unmarshal(body, &steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal test steps for issue %d: %w", issueID, err)
	}
	return steps, nil
}

// GetExecutionSchedule fetches the execution history of a manual test from
// the Zephyr extension.
func (c *Client) GetExecutionSchedule(issueID int64) (*ExecutionSchedule, error) {
	query := url.Values{"issueId": []string{strconv.FormatInt(issueID, 10)}}
	body, status, err := c.get(zephyrAPIPath+"/schedule", query)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to get execution schedule for issue %d: status %d, body: %s", issueID, status, string(body))
	}

	var schedule ExecutionSchedule
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution schedule for issue %d: %w", issueID, err)
	}
	return &schedule, nil
}

// get performs an authenticated GET and returns the body and status code.
func (c *Client) get(path string, query url.Values) ([]byte, int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// addAuthHeader adds authentication headers to the request
func (c *Client) addAuthHeader(req *http.Request) {
	if c.username == "" && c.apiToken == "" {
		return
	}
	// Basic authentication with username and API token
	auth := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.apiToken))
	req.Header.Set("Authorization", "Basic "+auth)
}

func issueSummaryFrom(raw issueResponse) (models.IssueSummary, error) {
	id, err := strconv.ParseInt(raw.ID, 10, 64)
	if err != nil {
		return models.IssueSummary{}, fmt.Errorf("issue %s has malformed id %q: %w", raw.Key, raw.ID, err)
	}
	return models.IssueSummary{
		ID:                  id,
		Key:                 raw.Key,
		Type:                raw.Fields.IssueType.Name,
		Summary:             raw.Fields.Summary,
		RenderedDescription: raw.RenderedFields.Description,
		Labels:              raw.Fields.Labels,
	}, nil
}

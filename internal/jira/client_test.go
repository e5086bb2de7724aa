package jira

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenity-go/serenity-jira/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.Config{
		JiraBaseURL:  serverURL,
		JiraUsername: "jane",
		JiraAPIToken: "secret-token",
	})
}

func issueJSON(id int64, key, issueType, summary, description string, labels ...string) map[string]interface{} {
	if labels == nil {
		labels = []string{}
	}
	return map[string]interface{}{
		"id":  strconv.FormatInt(id, 10),
		"key": key,
		"fields": map[string]interface{}{
			"summary":   summary,
			"issuetype": map[string]string{"name": issueType},
			"labels":    labels,
		},
		"renderedFields": map[string]string{"description": description},
	}
}

func TestFindByKey_Success(t *testing.T) {
	var receivedAuth, receivedExpand string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		receivedExpand = r.URL.Query().Get("expand")
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(issueJSON(10001, "PROJ-1", "Epic", "Selling stuff", "<p>Sell things</p>", "web"))
	}))
	defer server.Close()

	issue, err := newTestClient(server.URL).FindByKey("PROJ-1")
	require.NoError(t, err)

	assert.Equal(t, int64(10001), issue.ID)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "Epic", issue.Type)
	assert.Equal(t, "Selling stuff", issue.Summary)
	assert.Equal(t, "<p>Sell things</p>", issue.RenderedDescription)
	assert.Equal(t, []string{"web"}, issue.Labels)

	assert.Equal(t, "renderedFields", receivedExpand)
	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("jane:secret-token"))
	assert.Equal(t, expectedAuth, receivedAuth)
}

func TestFindByKey_NotFound(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"errorMessages":["Issue Does Not Exist"]}`))
		}))

		_, err := newTestClient(server.URL).FindByKey("PROJ-404")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoSuchIssue, "status %d must map to ErrNoSuchIssue", status)
		server.Close()
	}
}

func TestFindByKey_ServerErrorIsNotNoSuchIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessages":["not authorized"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FindByKey("PROJ-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuchIssue)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFindByKey_MalformedIDIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(issueJSON(1, "PROJ-1", "Epic", "Selling stuff", ""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FindByKey("PROJ-1")
	require.NoError(t, err)

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-number","key":"PROJ-1","fields":{"summary":"x","issuetype":{"name":"Epic"}}}`))
	}))
	defer badServer.Close()

	_, err = newTestClient(badServer.URL).FindByKey("PROJ-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed id")
}

func TestFindByJQL_SendsQueryAndCollectsIssues(t *testing.T) {
	var receivedJQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		receivedJQL = r.URL.Query().Get("jql")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"startAt":    0,
			"maxResults": 50,
			"total":      2,
			"issues": []interface{}{
				issueJSON(1, "PROJ-1", "Epic", "Selling stuff", ""),
				issueJSON(2, "PROJ-2", "Epic", "Shipping stuff", ""),
			},
		})
	}))
	defer server.Close()

	issues, err := newTestClient(server.URL).FindByJQL("issuetype = epic and project = PROJ")
	require.NoError(t, err)

	assert.Equal(t, "issuetype = epic and project = PROJ", receivedJQL)
	require.Len(t, issues, 2)
	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "PROJ-2", issues[1].Key)
}

func TestFindByJQL_FollowsPagination(t *testing.T) {
	pages := map[string][]interface{}{
		"0": {
			issueJSON(1, "PROJ-1", "Epic", "First", ""),
			issueJSON(2, "PROJ-2", "Epic", "Second", ""),
		},
		"2": {
			issueJSON(3, "PROJ-3", "Epic", "Third", ""),
		},
	}
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		startAt := r.URL.Query().Get("startAt")
		issues, ok := pages[startAt]
		require.True(t, ok, "unexpected startAt %s", startAt)
		startAtNum, err := strconv.Atoi(startAt)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"startAt": startAtNum,
			"total":   3,
			"issues":  issues,
		})
	}))
	defer server.Close()

	issues, err := newTestClient(server.URL).FindByJQL("project = PROJ")
	require.NoError(t, err)

	assert.Equal(t, 2, callCount)
	require.Len(t, issues, 3)
	assert.Equal(t, "PROJ-3", issues[2].Key)
}

func TestFindByJQL_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["The JQL query is invalid"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FindByJQL("not valid jql (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestGetTestSteps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/zephyr/1.0/teststep/100", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `[{"orderId":1,"htmlStep":"Open the login page"},{"orderId":2,"htmlStep":"Enter credentials"}]`)
	}))
	defer server.Close()

	steps, err := newTestClient(server.URL).GetTestSteps(100)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "Open the login page", steps[0].Step)
	assert.Equal(t, int64(2), steps[1].OrderID)
}

func TestGetExecutionSchedule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/zephyr/1.0/schedule", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("issueId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{
			"schedules": [{"executionStatus":"1","executedOn":"05/Jan/15 9:15 AM"}],
			"status": {"1":{"name":"PASS"},"2":{"name":"FAIL"}}
		}`)
	}))
	defer server.Close()

	schedule, err := newTestClient(server.URL).GetExecutionSchedule(100)
	require.NoError(t, err)
	require.Len(t, schedule.Schedules, 1)
	assert.Equal(t, "1", schedule.Schedules[0].ExecutionStatus)
	assert.Equal(t, "05/Jan/15 9:15 AM", schedule.Schedules[0].ExecutedOn)
	assert.Equal(t, "PASS", schedule.Status["1"].Name)
}

func TestClient_NoCredentialsSendsNoAuthHeader(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(issueJSON(1, "PROJ-1", "Epic", "x", ""))
	}))
	defer server.Close()

	client := NewClient(&config.Config{JiraBaseURL: server.URL})
	_, err := client.FindByKey("PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, receivedAuth)
}

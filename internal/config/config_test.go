package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "epic", cfg.RootIssueType)
	assert.Equal(t, []string{"Epic Link"}, cfg.RequirementsLinks)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestNewConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("JIRA_URL", "https://jira.example.com/")
	t.Setenv("JIRA_PROJECT", "DEMO")
	t.Setenv("JIRA_ROOT_ISSUE_TYPE", "initiative")

	cfg := NewConfig()

	assert.Equal(t, "https://jira.example.com", cfg.JiraBaseURL, "trailing slash is trimmed")
	assert.Equal(t, "DEMO", cfg.ProjectKey)
	assert.Equal(t, "initiative", cfg.RootIssueType)
}

func TestNewConfig_SplitsRequirementsLinks(t *testing.T) {
	t.Setenv("JIRA_REQUIREMENTS_LINKS", "Epic Link, parent of ,")

	cfg := NewConfig()

	assert.Equal(t, []string{"Epic Link", "parent of"}, cfg.RequirementsLinks)
}

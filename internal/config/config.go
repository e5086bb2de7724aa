package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the Jira connection and requirements-structure settings.
type Config struct {
	// Jira connection
	JiraBaseURL  string
	JiraUsername string
	JiraAPIToken string

	// Requirements structure
	ProjectKey    string
	RootIssueType string
	// RequirementsLinks names the issue-link relation used at each level of
	// the requirements hierarchy (level 0 = children of root requirements).
	RequirementsLinks []string

	// HTTP client
	RequestTimeout time.Duration
}

// init loads environment variables from a .env file when one is present.
func init() {
	if err := godotenv.Load(); err != nil {
		if err = godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found. Using environment variables or defaults.")
		}
	}
}

// NewConfig creates a configuration from environment variables, applying
// defaults for everything except credentials.
func NewConfig() *Config {
	v := viper.New()
	v.SetDefault("jira_url", "https://your-jira-instance.atlassian.net")
	v.SetDefault("jira_username", "")
	v.SetDefault("jira_api_token", "")
	v.SetDefault("jira_project", "")
	v.SetDefault("jira_root_issue_type", "epic")
	v.SetDefault("jira_requirements_links", "Epic Link")
	v.SetDefault("jira_request_timeout", "30s")
	v.AutomaticEnv()

	return &Config{
		JiraBaseURL:       strings.TrimRight(v.GetString("jira_url"), "/"),
		JiraUsername:      v.GetString("jira_username"),
		JiraAPIToken:      v.GetString("jira_api_token"),
		ProjectKey:        v.GetString("jira_project"),
		RootIssueType:     v.GetString("jira_root_issue_type"),
		RequirementsLinks: splitLinks(v.GetString("jira_requirements_links")),
		RequestTimeout:    v.GetDuration("jira_request_timeout"),
	}
}

// splitLinks parses the comma-separated link-relation list.
func splitLinks(value string) []string {
	var links []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			links = append(links, part)
		}
	}
	return links
}

package jira

import (
	"errors"
	"sync"

	"github.com/serenity-go/serenity-jira/internal/models"
)

// IssueCache memoizes single-issue lookups for the lifetime of its owner.
// Known-missing keys are cached too, so repeated lookups of an absent issue
// never hit the server again. Entries are never evicted.
type IssueCache struct {
	gateway Gateway

	mu      sync.RWMutex
	entries map[string]*models.IssueSummary // nil entry = known absent
}

// NewIssueCache creates an empty cache backed by the given gateway.
func NewIssueCache(gateway Gateway) *IssueCache {
	return &IssueCache{
		gateway: gateway,
		entries: make(map[string]*models.IssueSummary),
	}
}

// IssueWithKey returns the summary for key, fetching it on first use.
// A missing issue yields (nil, nil). Transport errors are returned without
// caching, so a later call may still succeed. Two racing callers may both
// fetch the same key; the duplicate fetch is harmless.
func (c *IssueCache) IssueWithKey(key string) (*models.IssueSummary, error) {
	c.mu.RLock()
	issue, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return issue, nil
	}

	issue, err := c.gateway.FindByKey(key)
	if err != nil {
		if !errors.Is(err, ErrNoSuchIssue) {
			return nil, err
		}
		issue = nil
	}
	c.mu.Lock()
	c.entries[key] = issue
	c.mu.Unlock()
	return issue, nil
}

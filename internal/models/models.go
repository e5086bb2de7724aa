package models

import (
	"encoding/json"
	"sort"
	"time"
)

// IssueSummary represents a flat Jira issue record as returned by the gateway.
// Instances are immutable once built; caching happens in the consumers.
type IssueSummary struct {
	ID                  int64    `json:"id"`
	Key                 string   `json:"key"`
	Type                string   `json:"type"`
	Summary             string   `json:"summary"`
	RenderedDescription string   `json:"renderedDescription,omitempty"`
	Labels              []string `json:"labels,omitempty"`
}

// Requirement is a node in the hierarchy derived from Jira issues
// (epics, stories, etc.). Children are owned by their parent; no parent
// pointers are stored, so traversal always runs from the roots downward.
type Requirement struct {
	Name          string        `json:"name"`
	CardNumber    string        `json:"cardNumber,omitempty"`
	Type          string        `json:"type"`
	NarrativeText string        `json:"narrativeText,omitempty"`
	Children      []Requirement `json:"children,omitempty"`
}

// TestTag is a (name, type) classification label attached to a test outcome.
// Tags compare by value, so they can be used directly as set members.
type TestTag struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TagSet is a set of test tags keyed by value equality.
type TagSet map[TestTag]struct{}

// Add inserts the tag into the set.
func (s TagSet) Add(tag TestTag) {
	s[tag] = struct{}{}
}

// Contains reports whether the tag is in the set.
func (s TagSet) Contains(tag TestTag) bool {
	_, ok := s[tag]
	return ok
}

// Slice returns the tags ordered by type then name.
func (s TagSet) Slice() []TestTag {
	tags := make([]TestTag, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Type != tags[j].Type {
			return tags[i].Type < tags[j].Type
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// MarshalJSON renders the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// TestResult is the overall outcome of a test or test step.
type TestResult int

const (
	ResultPending TestResult = iota
	ResultSuccess
	ResultFailure
	ResultSkipped
	ResultIgnored
)

var resultNames = map[TestResult]string{
	ResultPending: "PENDING",
	ResultSuccess: "SUCCESS",
	ResultFailure: "FAILURE",
	ResultSkipped: "SKIPPED",
	ResultIgnored: "IGNORED",
}

func (r TestResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "PENDING"
}

// MarshalJSON renders the result by name.
func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// TestStep is one recorded step of a manual test.
type TestStep struct {
	Description string     `json:"description"`
	Result      TestResult `json:"result"`
}

// Story is the grouping a test outcome reports under.
type Story struct {
	Name string `json:"name"`
}

// TestOutcome is a single test result as consumed by the reporting tool,
// enriched with tags, steps, and execution metadata.
type TestOutcome struct {
	Title       string     `json:"title"`
	Story       Story      `json:"story"`
	Description string     `json:"description,omitempty"`
	IssueKeys   []string   `json:"issueKeys,omitempty"`
	Tags        TagSet     `json:"tags,omitempty"`
	Steps       []TestStep `json:"steps,omitempty"`
	Result      TestResult `json:"result"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	Manual      bool       `json:"manual"`
}

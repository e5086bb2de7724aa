package requirements

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/serenity-go/serenity-jira/internal/config"
	"github.com/serenity-go/serenity-jira/internal/jira"
	"github.com/serenity-go/serenity-jira/internal/logging"
	"github.com/serenity-go/serenity-jira/internal/models"
)

// Provider reconstructs the requirements hierarchy (epics, stories, etc.)
// from Jira issues and answers tag and ancestor queries against it.
//
// The forest is built once per Provider and then reused; there is no
// invalidation, so a consumer needing fresh data creates a new Provider.
type Provider struct {
	gateway           jira.Gateway
	issues            *jira.IssueCache
	projectKey        string
	rootIssueType     string
	requirementsLinks []string
	log               *zap.SugaredLogger

	mu           sync.Mutex
	built        bool
	requirements []models.Requirement
}

// NewProvider creates a requirements provider for the configured project.
func NewProvider(gateway jira.Gateway, cfg *config.Config) *Provider {
	links := cfg.RequirementsLinks
	if len(links) == 0 {
		links = []string{"Epic Link"}
	}
	return &Provider{
		gateway:           gateway,
		issues:            jira.NewIssueCache(gateway),
		projectKey:        cfg.ProjectKey,
		rootIssueType:     cfg.RootIssueType,
		requirementsLinks: links,
		log:               logging.Named("requirements"),
	}
}

// GetRequirements returns the root requirements with their descendants
// attached. The forest is built on first call and memoized. A failing root
// query degrades to an empty result; it never surfaces as an error.
func (p *Provider) GetRequirements() []models.Requirement {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.built {
		return p.requirements
	}

	roots, err := p.gateway.FindByJQL(p.rootRequirementsJQL())
	if err != nil {
		p.log.Warnw("no root requirements found", "jql", p.rootRequirementsJQL(), "error", err)
	}
	requirements := make([]models.Requirement, 0, len(roots))
	for _, issue := range roots {
		requirement := requirementFrom(issue)
		requirement.Children = p.findChildrenFor(requirement, 0)
		requirements = append(requirements, requirement)
	}
	p.requirements = requirements
	p.built = true
	return p.requirements
}

// findChildrenFor queries the issues linked to parent through the relation
// configured for the given level. Recursive calls pass level 0 while the
// termination check uses the incoming level, which reproduces the provider's
// long-standing behavior: only the first link relation ever drives child
// discovery, and recursion stops when the data runs out of children.
func (p *Provider) findChildrenFor(parent models.Requirement, level int) []models.Requirement {
	childIssues, err := p.gateway.FindByJQL(p.childIssuesJQL(parent, level))
	if err != nil {
		p.log.Warnw("no children found for requirement", "requirement", parent.CardNumber, "error", err)
	}
	children := make([]models.Requirement, 0, len(childIssues))
	for _, issue := range childIssues {
		child := requirementFrom(issue)
		if p.moreRequirements(level) {
			child.Children = p.findChildrenFor(child, 0)
		}
		children = append(children, child)
	}
	return children
}

func (p *Provider) moreRequirements(level int) bool {
	return level+1 < len(p.requirementsLinks)
}

func (p *Provider) rootRequirementsJQL() string {
	return fmt.Sprintf("issuetype = %s and project = %s", p.rootIssueType, p.projectKey)
}

func (p *Provider) childIssuesJQL(parent models.Requirement, level int) string {
	return fmt.Sprintf("'%s' = %s", p.requirementsLinks[level], parent.CardNumber)
}

// GetParentRequirementOfOutcome projects the outcome's first associated
// issue into a requirement. It returns nil when the outcome carries no issue
// keys or the issue does not exist; other lookup failures are returned.
func (p *Provider) GetParentRequirementOfOutcome(outcome *models.TestOutcome) (*models.Requirement, error) {
	if len(outcome.IssueKeys) == 0 {
		return nil, nil
	}
	key := outcome.IssueKeys[0]
	issue, err := p.gateway.FindByKey(key)
	if err != nil {
		if errors.Is(err, jira.ErrNoSuchIssue) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up parent issue %s: %w", key, err)
	}
	requirement := requirementFrom(*issue)
	return &requirement, nil
}

// GetParentRequirementOf finds the requirement in the built forest whose
// children contain the given card number. Unlike the outcome variant, this
// is a structural search, not a remote lookup.
func (p *Provider) GetParentRequirementOf(key string) *models.Requirement {
	for _, requirement := range p.FlattenedRequirements() {
		if containsRequirementWithKey(key, requirement.Children) {
			return &requirement
		}
	}
	return nil
}

// GetRequirementFor finds the requirement matching the tag's type and name.
func (p *Provider) GetRequirementFor(tag models.TestTag) *models.Requirement {
	for _, requirement := range p.FlattenedRequirements() {
		if requirement.Type == tag.Type && requirement.Name == tag.Name {
			return &requirement
		}
	}
	return nil
}

// GetTagsFor derives the full tag set for a test outcome: one tag per
// associated issue plus one per ancestor requirement of that issue.
func (p *Provider) GetTagsFor(outcome *models.TestOutcome) models.TagSet {
	tags := models.TagSet{}
	for _, issueKey := range outcome.IssueKeys {
		p.addTagsFromIssue(tags, issueKey)
	}
	return tags
}

func (p *Provider) addTagsFromIssue(tags models.TagSet, issueKey string) {
	decodedKey := p.decoded(issueKey)
	p.addIssueTags(tags, decodedKey)
	p.addRequirementTags(tags, decodedKey)
}

func (p *Provider) addIssueTags(tags models.TagSet, issueKey string) {
	issue, err := p.issues.IssueWithKey(issueKey)
	if err != nil {
		p.log.Warnw("could not read tags for issue", "issue", issueKey, "error", err)
		return
	}
	if issue != nil {
		tags.Add(models.TestTag{Name: issue.Summary, Type: issue.Type})
	}
}

// addRequirementTags walks the ancestors of the issue through the built
// forest. The walk always moves root-to-leaf through stored children, so it
// terminates even if the remote link data forms a loop.
func (p *Provider) addRequirementTags(tags models.TagSet, issueKey string) {
	for parent := p.GetParentRequirementOf(issueKey); parent != nil; parent = p.GetParentRequirementOf(parent.CardNumber) {
		tags.Add(models.TestTag{Name: parent.Name, Type: parent.Type})
	}
}

// decoded normalizes an issue reference: a leading '#' is stripped, and a
// purely numeric remainder is prefixed with the project key.
func (p *Provider) decoded(issueKey string) string {
	key := issueKey
	if len(key) > 0 && key[0] == '#' {
		key = key[1:]
	}
	if isNumeric(key) {
		key = p.projectKey + "-" + key
	}
	return key
}

// FlattenedRequirements linearizes the forest depth-first, parents before
// children. It is recomputed per call from the memoized forest.
func (p *Provider) FlattenedRequirements() []models.Requirement {
	return flatten(p.GetRequirements())
}

func flatten(requirements []models.Requirement) []models.Requirement {
	var flattened []models.Requirement
	for _, requirement := range requirements {
		flattened = append(flattened, requirement)
		flattened = append(flattened, flatten(requirement.Children)...)
	}
	return flattened
}

func containsRequirementWithKey(key string, requirements []models.Requirement) bool {
	for _, requirement := range requirements {
		if requirement.CardNumber == key {
			return true
		}
	}
	return false
}

func requirementFrom(issue models.IssueSummary) models.Requirement {
	return models.Requirement{
		Name:          issue.Summary,
		CardNumber:    issue.Key,
		Type:          issue.Type,
		NarrativeText: issue.RenderedDescription,
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

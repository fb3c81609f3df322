package lint

import (
	"fmt"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/frontmatter"
	"github.com/inkpress/inkpress/internal/post"
)

func isMarkdownFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// recognizedKeys is the front-matter schema; anything else is flagged.
var recognizedKeys = map[string]struct{}{
	"title":      {},
	"date":       {},
	"draft":      {},
	"authors":    {},
	"categories": {},
	"comments":   {},
	"slug":       {},
}

// FrontMatterRule checks that posts carry valid front matter with the
// required fields.
type FrontMatterRule struct{}

func (r *FrontMatterRule) Name() string { return "frontmatter" }
func (r *FrontMatterRule) AppliesTo(filePath string) bool { return isMarkdownFile(filePath) }

func (r *FrontMatterRule) Check(filePath string, content []byte) ([]Issue, error) {
	var issues []Issue

	meta, _, had, _, err := frontmatter.Split(content)
	if err != nil {
		return []Issue{{
			FilePath:    filePath,
			Line:        1,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     "Front matter has no closing delimiter",
			Explanation: "The YAML header must be closed with a --- line",
			Fix:         "Add the closing --- after the metadata block",
		}}, nil
	}
	if !had {
		return []Issue{{
			FilePath:    filePath,
			Line:        1,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     "Missing front matter",
			Explanation: "Every post needs a YAML header with title and date",
			Fix:         "Add a --- delimited YAML block with title and date",
		}}, nil
	}

	fields, err := frontmatter.ParseYAML(meta)
	if err != nil {
		return []Issue{{
			FilePath:    filePath,
			Line:        1,
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Invalid front matter: %v", err),
			Explanation: "Front matter must be valid YAML between --- delimiters",
			Fix:         "Fix the YAML syntax errors",
		}}, nil
	}

	for _, required := range []string{"title", "date"} {
		if v, ok := fields[required]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
			issues = append(issues, Issue{
				FilePath: filePath,
				Line:     1,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("Missing required field %q", required),
				Fix:      fmt.Sprintf("Add %s to the front matter", required),
			})
		}
	}

	for key := range fields {
		if _, ok := recognizedKeys[key]; !ok {
			issues = append(issues, Issue{
				FilePath: filePath,
				Line:     1,
				Severity: SeverityWarning,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("Unknown front matter key %q", key),
				Fix:      "Remove the key or check its spelling",
			})
		}
	}

	return issues, nil
}

// DateRule validates the date field parses as an ISO calendar date.
type DateRule struct{}

func (r *DateRule) Name() string { return "date" }
func (r *DateRule) AppliesTo(filePath string) bool { return isMarkdownFile(filePath) }

func (r *DateRule) Check(filePath string, content []byte) ([]Issue, error) {
	fields, ok := parseFields(content)
	if !ok {
		return nil, nil // FrontMatterRule reports structural problems
	}
	raw, ok := fields["date"]
	if !ok {
		return nil, nil
	}

	str := fmt.Sprintf("%v", raw)
	// yaml.v3 decodes unquoted ISO dates as time.Time already.
	if _, isTime := raw.(time.Time); isTime {
		return nil, nil
	}
	if _, err := time.Parse(post.DateLayout, str); err != nil {
		return []Issue{{
			FilePath: filePath,
			Line:     1,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("Date %q is not a valid ISO date", str),
			Fix:      "Use the YYYY-MM-DD format",
		}}, nil
	}
	return nil, nil
}

// ExcerptRule checks published posts for the excerpt boundary marker.
// Only registered when the site config requires excerpts.
type ExcerptRule struct{}

func (r *ExcerptRule) Name() string { return "excerpt" }
func (r *ExcerptRule) AppliesTo(filePath string) bool { return isMarkdownFile(filePath) }

func (r *ExcerptRule) Check(filePath string, content []byte) ([]Issue, error) {
	fields, ok := parseFields(content)
	if !ok {
		return nil, nil
	}
	if draft, _ := fields["draft"].(bool); draft {
		return nil, nil
	}
	if strings.Contains(string(content), post.ExcerptMarker) {
		return nil, nil
	}
	return []Issue{{
		FilePath:    filePath,
		Line:        1,
		Severity:    SeverityError,
		Rule:        r.Name(),
		Message:     "Published post has no excerpt marker",
		Explanation: "The blog plugin requires an explicit excerpt boundary for every published post",
		Fix:         fmt.Sprintf("Insert %s after the introduction", post.ExcerptMarker),
	}}, nil
}

// DraftAgeRule flags drafts whose date has already passed. Usually a post
// that was meant to be published and never was.
type DraftAgeRule struct {
	Now time.Time // zero value means time.Now
}

func (r *DraftAgeRule) Name() string                   { return "draft-age" }
func (r *DraftAgeRule) AppliesTo(filePath string) bool { return isMarkdownFile(filePath) }

func (r *DraftAgeRule) Check(filePath string, content []byte) ([]Issue, error) {
	fields, ok := parseFields(content)
	if !ok {
		return nil, nil
	}
	if draft, _ := fields["draft"].(bool); !draft {
		return nil, nil
	}

	date, ok := fieldDate(fields["date"])
	if !ok {
		return nil, nil
	}
	now := r.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !date.Before(now.Truncate(24 * time.Hour)) {
		return nil, nil
	}
	return []Issue{{
		FilePath:    filePath,
		Line:        1,
		Severity:    SeverityInfo,
		Rule:        r.Name(),
		Message:     fmt.Sprintf("Draft is dated %s in the past", date.Format(post.DateLayout)),
		Explanation: "The date has passed but the post is still a draft",
		Fix:         "Publish the post or update its date",
	}}, nil
}

func fieldDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		d, err := time.Parse(post.DateLayout, v)
		if err != nil {
			return time.Time{}, false
		}
		return d, true
	default:
		return time.Time{}, false
	}
}

func parseFields(content []byte) (map[string]any, bool) {
	meta, _, had, _, err := frontmatter.Split(content)
	if err != nil || !had {
		return nil, false
	}
	fields, err := frontmatter.ParseYAML(meta)
	if err != nil {
		return nil, false
	}
	return fields, true
}

// Package lint validates content files without building the site.
package lint

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/inkpress/inkpress/internal/config"
)

// Linter applies a rule set to a content tree.
type Linter struct {
	rules []Rule
}

// New builds the rule set for a site configuration. The excerpt rule only
// runs when the blog plugin declares post_excerpt: required.
func New(cfg *config.Config) *Linter {
	rules := []Rule{
		&FrontMatterRule{},
		&DateRule{},
		&DraftAgeRule{},
	}
	if cfg.ExcerptPolicy() == config.ExcerptRequired {
		rules = append(rules, &ExcerptRule{})
	}
	return &Linter{rules: rules}
}

// Run lints every content file under the blog directory and returns all
// findings sorted by file path.
func (l *Linter) Run(cfg *config.Config) ([]Issue, error) {
	root := filepath.Join(cfg.ContentDir, cfg.BlogDir())

	var issues []Issue
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}

		rel, relErr := filepath.Rel(cfg.ContentDir, path)
		if relErr != nil {
			return relErr
		}

		for _, rule := range l.rules {
			if !rule.AppliesTo(path) {
				continue
			}
			found, checkErr := rule.Check(rel, content)
			if checkErr != nil {
				return fmt.Errorf("rule %s on %s: %w", rule.Name(), rel, checkErr)
			}
			issues = append(issues, found...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].FilePath != issues[j].FilePath {
			return issues[i].FilePath < issues[j].FilePath
		}
		return issues[i].Rule < issues[j].Rule
	})
	return issues, nil
}

// HasErrors reports whether any finding is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Format writes findings in a compact file:line style.
func Format(w io.Writer, issues []Issue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "%s:%d: %s [%s] %s\n", issue.FilePath, issue.Line, issue.Severity, issue.Rule, issue.Message)
		if issue.Fix != "" {
			fmt.Fprintf(w, "    fix: %s\n", issue.Fix)
		}
	}
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inkpress/inkpress/internal/post"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Title string `arg:"" help:"Title of the new post"`
	Draft bool   `help:"Mark the post as a draft"`
	Date  string `help:"Publication date (YYYY-MM-DD, defaults to today)"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	date := n.Date
	if date == "" {
		date = time.Now().Format(post.DateLayout)
	} else if _, err := time.Parse(post.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: use the YYYY-MM-DD format", date)
	}

	slug := post.Slugify(n.Title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", n.Title)
	}

	path := filepath.Join(cfg.ContentDir, cfg.BlogDir(), slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	content := fmt.Sprintf("---\ntitle: %s\ndate: %q\n", n.Title, date)
	if n.Draft {
		content += "draft: true\n"
	}
	content += "---\nWrite the introduction here.\n\n" + post.ExcerptMarker + "\n\nAnd the rest here.\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}

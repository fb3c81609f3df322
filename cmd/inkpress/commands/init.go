package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

const starterConfig = `site_name: My Blog
site_url: https://blog.example.org
site_description: Notes on things I build

content_dir: content
output_dir: site

theme:
  name: plain
  palette: [light, dark]

plugins:
  - name: blog
    options:
      post_excerpt: required

markdown:
  extensions: [gfm, footnote, typographer, attributes]

# publish:
#   pages:
#     remote_url: https://example.org/you/blog.git
#     branch: gh-pages
#     token: ${INKPRESS_PAGES_TOKEN}
#   bucket:
#     bucket: store/blog
`

const starterPost = `---
title: Hello World
date: "2024-01-01"
---
Welcome to the new blog.

<!-- more -->

This paragraph only appears on the post page itself.
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Println("Initializing site")

	if _, err := os.Stat(root.Config); err == nil && !i.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", root.Config)
	}

	if err := os.WriteFile(root.Config, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	fmt.Printf("Wrote %s\n", root.Config)

	postsDir := filepath.Join("content", "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		return fmt.Errorf("create content tree: %w", err)
	}

	samplePath := filepath.Join(postsDir, "hello-world.md")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(starterPost), 0o644); err != nil {
			return fmt.Errorf("write sample post: %w", err)
		}
		fmt.Printf("Wrote %s\n", samplePath)
	}

	fmt.Println("Initialized successfully")
	return nil
}

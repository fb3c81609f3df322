package commands

import (
	"fmt"
	"os"

	"github.com/inkpress/inkpress/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct{}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	issues, err := lint.New(cfg).Run(cfg)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	lint.Format(os.Stdout, issues)
	if lint.HasErrors(issues) {
		return fmt.Errorf("lint found errors")
	}
	fmt.Println("Only warnings found")
	return nil
}

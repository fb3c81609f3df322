package main

import (
	"github.com/alecthomas/kong"

	"github.com/inkpress/inkpress/cmd/inkpress/commands"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("inkpress"),
		kong.Description("Static blog generator: build, preview, and publish a Markdown blog."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, &cli))
}

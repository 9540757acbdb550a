package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mizuchi-dev/cellar/internal/tool"
)

const usage = `USAGE

	cellar version                 show version information
	cellar journal <subcommand>    inspect the outcome journal
`

var commands = map[string]*tool.Command{
	"version": versionCmd,
	"journal": journalCmd,
}

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, usage)
	}
	flag.Parse()

	if len(flag.Args()) == 0 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	tool.Run(commands)
}

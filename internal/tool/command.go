package tool

import (
	"context"
	"fmt"
	"os"
	"sort"
)

type Command struct {
	Name        string
	Description string
	Help        string
	Fn          func(ctx context.Context, args []string) error
}

func Run(commands map[string]*Command) {
	args := os.Args[1:]
	if len(args) == 0 {
		printCommands(commands)
		os.Exit(1)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		_, _ = fmt.Fprintf(os.Stderr, "command %q not found\n", args[0])
		printCommands(commands)
		os.Exit(1)
	}

	args = args[1:]
	ctx := context.Background()

	if err := cmd.Fn(ctx, args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "command %q failed: %v\n", cmd.Name, err)
		os.Exit(1)
	}
}

func printCommands(commands map[string]*Command) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(os.Stderr, "available commands:")
	for _, name := range names {
		_, _ = fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].Description)
	}
}

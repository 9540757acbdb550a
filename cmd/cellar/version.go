package main

import (
	"context"
	"fmt"

	"github.com/mizuchi-dev/cellar/internal/tool"
	"github.com/mizuchi-dev/cellar/runtime/version"
)

var versionCmd = &tool.Command{
	Name:        "version",
	Description: "show version information",
	Fn: func(ctx context.Context, args []string) error {
		fmt.Printf("cellar %s (journal schema %s)\n", version.ModuleVersion, version.JournalVersion)
		return nil
	},
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mizuchi-dev/cellar/internal/tool"
	"github.com/mizuchi-dev/cellar/runtime"
	"github.com/mizuchi-dev/cellar/runtime/journal"
	"github.com/mizuchi-dev/cellar/runtime/logging"
)

const journalHelp = `USAGE

	cellar journal list    [-db file] [-cell name] [-n limit]
	cellar journal traces  [-db file] [-n limit]
	cellar journal export  [-db file] -o file
`

var journalCmd = &tool.Command{
	Name:        "journal",
	Description: "inspect the outcome journal",
	Help:        journalHelp,
	Fn:          runJournal,
}

func runJournal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		_, _ = fmt.Fprint(os.Stderr, journalHelp)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logging.NewLogHandler(os.Stderr, logging.Options{
		App:       "cellar",
		Component: "cli",
	}, slog.LevelInfo)))

	switch args[0] {
	case "list":
		return journalList(ctx, args[1:])
	case "traces":
		return journalTraces(ctx, args[1:])
	case "export":
		return journalExport(ctx, args[1:])
	default:
		_, _ = fmt.Fprint(os.Stderr, journalHelp)
		os.Exit(1)
		return nil
	}
}

func openJournal(ctx context.Context, dbFile string) (*journal.DB, error) {
	if dbFile == "" {
		file, err := runtime.DefaultJournalFile()
		if err != nil {
			return nil, err
		}
		dbFile = file
	}

	db, err := journal.Open(ctx, dbFile)
	if err != nil {
		return nil, err
	}
	runtime.OnExitSignal(func() { _ = db.Close() })

	return db, nil
}

func journalList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbFile := fs.String("db", "", "journal file, default under the data dir")
	cell := fs.String("cell", "", "only outcomes of this cell")
	limit := fs.Int("n", 50, "max outcomes to list, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openJournal(ctx, *dbFile)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	outcomes, err := db.ListOutcomes(ctx, *cell, *limit)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		state := "ok"
		if !o.OK {
			state = "error"
		}
		fmt.Printf("%s  %-20s %-5s %s\n",
			o.Time.Format(time.DateTime), o.Cell, state, o.Display)
	}

	return nil
}

func journalTraces(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("traces", flag.ExitOnError)
	dbFile := fs.String("db", "", "journal file, default under the data dir")
	limit := fs.Int("n", 50, "max traces to list, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openJournal(ctx, *dbFile)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	traces, err := db.ListTraces(ctx, *limit)
	if err != nil {
		return err
	}

	for _, t := range traces {
		status := t.Status
		if status == "" {
			status = "ok"
		}
		dur := time.Duration(t.EndMicros-t.StartMicros) * time.Microsecond
		fmt.Printf("%s  %-20s %-10s %s\n", t.TraceID, t.Name, dur, status)
	}

	return nil
}

func journalExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbFile := fs.String("db", "", "journal file, default under the data dir")
	out := fs.String("o", "", "destination file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("export: -o is required")
	}

	db, err := openJournal(ctx, *dbFile)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Export(ctx, *out); err != nil {
		return err
	}
	slog.Info("journal exported", "to", *out)

	return nil
}

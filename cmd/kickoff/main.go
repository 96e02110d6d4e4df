package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/five82/kickoff/internal/app"
	"github.com/five82/kickoff/internal/config"
	"github.com/five82/kickoff/internal/export"
	"github.com/five82/kickoff/internal/request"
	"github.com/five82/kickoff/internal/timetable"
)

const commandTimeout = 30 * time.Second

const usage = `usage: kickoff [flags]              run the scheduler UI
       kickoff [flags] save FILE    create or update a record from a TOML document
       kickoff [flags] delete KIND ID
       kickoff [flags] export HASH  save a solution's spreadsheet to download_dir

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kickoff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "override config path (optional)")
	pollEvery := fs.Duration("poll", 0, "status poll interval (optional, defaults to 2s)")
	requestFile := fs.String("request", "", "override the search request file (optional)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rest := fs.Args()
	if len(rest) == 0 {
		opts := app.Options{
			ConfigPath:  *configPath,
			RequestFile: *requestFile,
			PollEvery:   *pollEvery,
		}
		if err := app.Run(ctx, opts); err != nil {
			fmt.Fprintf(stderr, "kickoff: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runCommand(ctx, *configPath, rest, stdout); err != nil {
		fmt.Fprintf(stderr, "kickoff %s: %v\n", rest[0], err)
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fs.Usage()
			return 2
		}
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func runCommand(ctx context.Context, configPath string, args []string, stdout io.Writer) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "save", "delete", "export":
	default:
		return usageError("unknown command " + strconv.Quote(cmd))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := timetable.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init timetable client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	switch cmd {
	case "save":
		if len(args) != 1 {
			return usageError("save takes one FILE argument")
		}
		entity, err := request.LoadEntity(args[0])
		if err != nil {
			return err
		}
		if err := client.SaveEntity(ctx, entity); err != nil {
			return err
		}
		if entity.EntityID() == timetable.NewEntityID {
			fmt.Fprintf(stdout, "created %s\n", entity.Kind())
		} else {
			fmt.Fprintf(stdout, "saved %s %d\n", entity.Kind(), entity.EntityID())
		}

	case "delete":
		if len(args) != 2 {
			return usageError("delete takes KIND and ID arguments")
		}
		kind, err := timetable.ParseEntityKind(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id < 0 {
			return usageError("ID must be a non-negative integer")
		}
		if err := client.DeleteEntity(ctx, kind, id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s %d\n", kind, id)

	case "export":
		if len(args) != 1 {
			return usageError("export takes one HASH argument")
		}
		path, err := export.Save(ctx, client, cfg.DownloadDir, args[0], "")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/gatekeeper/config"
	"github.com/target/gatekeeper/internal/bootstrap"
	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	"github.com/target/gatekeeper/internal/service"
)

type accessAdmin interface {
	Get(ctx context.Context, email string) (*domainaccess.Record, error)
	List(ctx context.Context, limit int) ([]domainaccess.Record, error)
	Grant(ctx context.Context, email string) (*domainaccess.Record, error)
	Revoke(ctx context.Context, email string) (*domainaccess.Record, error)
}

type recordOptions struct {
	Email   string
	JSON    bool
	Timeout time.Duration
}

type listOptions struct {
	Limit   int
	JSON    bool
	Timeout time.Duration
}

func runGrant(cmdCtx *commandContext, args []string) error {
	return runSetAuthorized(cmdCtx, "grant", args, true)
}

func runRevoke(cmdCtx *commandContext, args []string) error {
	return runSetAuthorized(cmdCtx, "revoke", args, false)
}

func runSetAuthorized(cmdCtx *commandContext, name string, args []string, authorized bool) error {
	opts, err := parseRecordFlags(name, args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	access, err := cmdCtx.Access(ctx)
	if err != nil {
		return err
	}

	var rec *domainaccess.Record
	if authorized {
		rec, err = access.Grant(ctx, opts.Email)
	} else {
		rec, err = access.Revoke(ctx, opts.Email)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", name, opts.Email, err)
	}
	return cmdCtx.printRecord(opts.JSON, rec)
}

func runShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseRecordFlags("show", args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	access, err := cmdCtx.Access(ctx)
	if err != nil {
		return err
	}
	rec, err := access.Get(ctx, opts.Email)
	if err != nil {
		return fmt.Errorf("show %s: %w", opts.Email, err)
	}
	return cmdCtx.printRecord(opts.JSON, rec)
}

func runList(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	access, err := cmdCtx.Access(ctx)
	if err != nil {
		return err
	}
	recs, err := access.List(ctx, opts.Limit)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(recs) == 0 && !opts.JSON {
		return writeln(cmdCtx.Out, "No authorization records found.")
	}
	return cmdCtx.printRecords(opts.JSON, recs)
}

func (cmdCtx *commandContext) printRecord(asJSON bool, rec *domainaccess.Record) error {
	if asJSON {
		return cmdCtx.encodeJSON(rec)
	}
	return cmdCtx.printRecords(false, []domainaccess.Record{*rec})
}

func (cmdCtx *commandContext) printRecords(asJSON bool, recs []domainaccess.Record) error {
	if asJSON {
		if recs == nil {
			recs = []domainaccess.Record{}
		}
		return cmdCtx.encodeJSON(recs)
	}

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
	if err := writef(tw, "EMAIL\tAUTHORIZED\tCREATED\tUPDATED\n"); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := writef(tw, "%s\t%t\t%s\t%s\n",
			rec.Email,
			rec.Authorized,
			formatTimestamp(rec.CreatedAt),
			formatTimestamp(rec.UpdatedAt),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (cmdCtx *commandContext) encodeJSON(v any) error {
	enc := json.NewEncoder(cmdCtx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func parseRecordFlags(name string, args []string) (recordOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := recordOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.Email, "email", "", "Email address of the record")
	fs.BoolVar(&opts.JSON, "json", false, "Print the record as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return recordOptions{}, err
	}
	// Allow the email as a positional argument.
	if opts.Email == "" && fs.NArg() > 0 {
		opts.Email = fs.Arg(0)
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return recordOptions{}, errors.New("--email is required")
	}
	if opts.Timeout <= 0 {
		return recordOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseListFlags(args []string) (listOptions, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listOptions{Timeout: defaultCommandTimeout}
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum number of records to print")
	fs.BoolVar(&opts.JSON, "json", false, "Print records as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Limit <= 0 {
		return listOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Timeout <= 0 {
		return listOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

// Access opens the configured record store on first use.
//
//nolint:ireturn // tests substitute the admin service.
func (cmdCtx *commandContext) Access(ctx context.Context) (accessAdmin, error) {
	if cmdCtx.access != nil {
		return cmdCtx.access, nil
	}
	if cmdCtx.Config.Access.Store == config.AccessStoreMemory {
		return nil, errors.New("the memory record store lives inside the server process; configure ACCESS_STORE to administer it")
	}

	infra, err := connectRecordBackend(ctx, &cmdCtx.Config, cmdCtx)
	if err != nil {
		return nil, err
	}
	cmdCtx.infra = infra

	records, err := bootstrap.BuildRecordStore(cmdCtx.Config.Access, infra)
	if err != nil {
		return nil, err
	}
	cmdCtx.access = service.NewAccessService(service.AccessServiceOptions{
		Records: records,
		Key:     domainaccess.KeyFuncFor(cmdCtx.Config.Access.LowercaseKeys),
		Logger:  cmdCtx.Logger,
	})
	return cmdCtx.access, nil
}

// connectRecordBackend connects only the backend holding authorization records.
func connectRecordBackend(ctx context.Context, cfg *config.AppConfig, cmdCtx *commandContext) (*bootstrap.Infrastructure, error) {
	infra := &bootstrap.Infrastructure{}
	switch cfg.Access.Store {
	case config.AccessStorePostgres:
		db, err := bootstrap.ConnectPostgres(ctx, cfg.Postgres, cmdCtx.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.Postgres = db
	case config.AccessStoreMongo:
		db, err := bootstrap.ConnectMongo(ctx, cfg.Mongo, cmdCtx.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		infra.Mongo = db
	case config.AccessStoreRedis:
		client, err := bootstrap.ConnectRedis(ctx, cfg.Redis, cmdCtx.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		infra.Redis = client
	}
	return infra, nil
}

// Close releases connections opened by Access.
func (cmdCtx *commandContext) Close() error {
	if cmdCtx.infra == nil {
		return nil
	}
	return cmdCtx.infra.Close(context.Background())
}

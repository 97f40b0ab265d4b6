// Command backfill runs operator tasks against the configured stores:
// regenerating PENDING rows for past or future dates and minting actor tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"medtransit/internal/app"
	jwttoken "medtransit/internal/jwt_token"
	"medtransit/internal/platform/config"
	"medtransit/internal/platform/logger"
	"medtransit/internal/transfer/generator"
	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
)

// Globals is shared by every command.
type Globals struct {
	Config *config.Config
	Logger *slog.Logger
}

type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Generate GenerateCmd `cmd:"" help:"Generate PENDING status rows for one date or a range"`
	Token    TokenCmd    `cmd:"" help:"Mint a bearer token naming the acting user"`
}

type GenerateCmd struct {
	Date string `help:"Service date (YYYY-MM-DD); defaults to today in the configured timezone" xor:"single"`
	From string `help:"First service date of a range (YYYY-MM-DD)" xor:"single" and:"range"`
	To   string `help:"Last service date of a range (YYYY-MM-DD), inclusive" and:"range"`
}

func (c *GenerateCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	from, to, err := c.dates(g.Config.Location())
	if err != nil {
		return err
	}
	gen, closeFn, err := openGenerator(ctx, g)
	if err != nil {
		return err
	}
	defer closeFn()

	if from.Equal(to) {
		run, err := gen.GenerateForDate(ctx, from, models.TriggerBackfill)
		if err != nil {
			return err
		}
		return printJSON(models.NewGenerationRunResponse(run))
	}

	runs, err := gen.Backfill(ctx, from, to)
	out := make([]models.GenerationRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, models.NewGenerationRunResponse(r))
	}
	if perr := printJSON(out); perr != nil {
		return perr
	}
	return err
}

// dates resolves the flags into a closed range; a single date is a range of one.
func (c *GenerateCmd) dates(loc *time.Location) (from, to time.Time, err error) {
	switch {
	case c.From != "":
		if from, err = models.ParseDate(c.From); err != nil {
			return
		}
		to, err = models.ParseDate(c.To)
		return
	case c.Date != "":
		from, err = models.ParseDate(c.Date)
		return from, from, err
	default:
		today := models.DateOf(time.Now(), loc)
		return today, today, nil
	}
}

type TokenCmd struct {
	Actor string        `arg:"" help:"Acting user identifier"`
	Role  string        `default:"driver" enum:"driver,dispatcher,admin" help:"Role claim"`
	TTL   time.Duration `default:"12h" help:"Token lifetime"`
}

func (c *TokenCmd) Run(g *Globals) error {
	if g.Config.Auth.ActorTokenKey == "" {
		return dErrors.New(dErrors.CodeBadRequest, "ACTOR_TOKEN_KEY is not configured")
	}
	svc := jwttoken.NewJWTService(g.Config.Auth.ActorTokenKey, g.Config.Auth.Issuer)
	token, err := svc.GenerateActorToken(c.Actor, c.Role, c.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}

func openGenerator(ctx context.Context, g *Globals) (*generator.Generator, func(), error) {
	stores, err := app.OpenStores(ctx, g.Config, g.Logger)
	if err != nil {
		return nil, nil, err
	}
	gen := generator.New(stores.Transfer, stores.Tx,
		generator.WithLogger(g.Logger),
		generator.WithLocation(g.Config.Location()),
	)
	return gen, func() { _ = stores.Close() }, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("backfill"),
		kong.Description("Operator tasks for the medtransit dispatch service."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level := cfg.Server.LogLevel
	if cli.Verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, level)

	kctx.FatalIfErrorf(kctx.Run(&Globals{Config: cfg, Logger: log}))
}

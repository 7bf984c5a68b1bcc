package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/keshon/server-warden/datastore"
	"github.com/keshon/server-warden/internal/config"
	"github.com/keshon/server-warden/internal/logging"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/util"
)

func main() {
	app := cli.App{
		Name:  "warden-cli",
		Usage: "inspect and move the bot's stored guild records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Value: config.BackendFile, EnvVars: []string{"STORAGE_BACKEND"}},
			&cli.StringFlag{Name: "path", Value: "bot_data.json", EnvVars: []string{"STORAGE_PATH"}},
			&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}},
			&cli.StringFlag{Name: "redis-url", EnvVars: []string{"REDIS_URL"}},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(cctx *cli.Context) error {
			logging.Setup(cctx.String("log-level"), "")
			return nil
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "guilds",
			Usage:  "list stored guild IDs",
			Action: runGuilds,
		},
		{
			Name:      "show",
			Usage:     "print one guild record as JSON",
			ArgsUsage: "<guild-id>",
			Action:    runShow,
		},
		{
			Name:      "audit",
			Usage:     "print the latest audit entries of a guild",
			ArgsUsage: "<guild-id>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 10},
			},
			Action: runAudit,
		},
		{
			Name:      "warnings",
			Usage:     "print the warnings of one member",
			ArgsUsage: "<guild-id> <user-id>",
			Action:    runWarnings,
		},
		{
			Name:      "migrate",
			Usage:     "copy every guild record to another backend",
			ArgsUsage: "<file|postgres|redis> <path-or-url>",
			Action:    runMigrate,
		},
	}
	app.RunAndExitOnError()
}

func openBackend(cctx *cli.Context, kind, target string) (datastore.Backend, error) {
	switch kind {
	case config.BackendFile:
		return datastore.NewFileStore(datastore.DefaultFileConfig(target))
	case config.BackendPostgres:
		return datastore.NewPostgresStore(cctx.Context, target)
	case config.BackendRedis:
		return datastore.NewRedisStore(cctx.Context, target)
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, kind)
}

func sourceBackend(cctx *cli.Context) (datastore.Backend, error) {
	kind := cctx.String("backend")
	target := cctx.String("path")
	switch kind {
	case config.BackendPostgres:
		target = cctx.String("database-url")
	case config.BackendRedis:
		target = cctx.String("redis-url")
	}
	return openBackend(cctx, kind, target)
}

func openStore(cctx *cli.Context) (*storage.Storage, func(), error) {
	backend, err := sourceBackend(cctx)
	if err != nil {
		return nil, nil, err
	}
	store := storage.New(backend, "?")
	if err := store.Load(cctx.Context); err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, func() { backend.Close() }, nil
}

func guildArg(cctx *cli.Context) (string, error) {
	id := cctx.Args().First()
	if id == "" {
		return "", cli.Exit("need to provide a guild ID as an argument", 1)
	}
	return id, nil
}

func runGuilds(cctx *cli.Context) error {
	store, done, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer done()

	for _, id := range store.Guilds() {
		fmt.Println(id)
	}
	return nil
}

func runShow(cctx *cli.Context) error {
	id, err := guildArg(cctx)
	if err != nil {
		return err
	}
	store, done, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer done()

	if !slices.Contains(store.Guilds(), id) {
		return cli.Exit("unknown guild "+id, 1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(store.Get(id))
}

func runAudit(cctx *cli.Context) error {
	id, err := guildArg(cctx)
	if err != nil {
		return err
	}
	store, done, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer done()

	if !slices.Contains(store.Guilds(), id) {
		return cli.Exit("unknown guild "+id, 1)
	}
	for _, e := range store.RecentAudit(id, cctx.Int("limit")) {
		fmt.Printf("%s  %-16s %s\n", util.FormatDateTpl(e.Timestamp, "YYYY-MM-DD hh:mm:ss"), e.Action, e.Details)
	}
	return nil
}

func runWarnings(cctx *cli.Context) error {
	if cctx.NArg() != 2 {
		return cli.Exit("need a guild ID and a user ID", 1)
	}
	guildID, userID := cctx.Args().Get(0), cctx.Args().Get(1)
	store, done, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer done()

	if !slices.Contains(store.Guilds(), guildID) {
		return cli.Exit("unknown guild "+guildID, 1)
	}
	ws := store.Warnings(guildID, userID)
	if len(ws) == 0 {
		fmt.Println("no warnings")
		return nil
	}
	for i, w := range ws {
		fmt.Printf("%d. %s  by %s: %s\n", i+1, util.FormatDateTpl(w.Timestamp, "YYYY-MM-DD hh:mm:ss"), w.Moderator, w.Reason)
	}
	return nil
}

func runMigrate(cctx *cli.Context) error {
	if cctx.NArg() != 2 {
		return cli.Exit("need a target backend and its path or URL", 1)
	}
	src, err := sourceBackend(cctx)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := openBackend(cctx, cctx.Args().Get(0), cctx.Args().Get(1))
	if err != nil {
		return err
	}
	defer dst.Close()

	snap, err := src.Load(cctx.Context)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if err := dst.Save(cctx.Context, snap); err != nil {
		return fmt.Errorf("write target: %w", err)
	}
	fmt.Printf("copied %d guild records\n", len(snap))
	return nil
}

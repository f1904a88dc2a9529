package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"linguasync/internal/config"
	"linguasync/internal/domain/models"
	"linguasync/internal/indexer"
	"linguasync/internal/indexmeta"
	"linguasync/internal/notify"
	"linguasync/internal/repository/postgres"
	"linguasync/internal/repository/sqlite"
	"linguasync/internal/service/maintenance"
	syncsvc "linguasync/internal/service/sync"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	sync    *syncsvc.Service
	manager *maintenance.Manager

	pool    *pgxpool.Pool
	db      *sql.DB
	logFile *os.File
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func setup(ctx context.Context) (*app, error) {
	// .env is optional; production runs configure through the environment
	_ = godotenv.Load()

	cfg, err := config.LoadWithFile("lsync.yaml")
	if err != nil {
		return nil, err
	}
	if cfg.CentralDBURL == "" {
		return nil, fmt.Errorf("CENTRAL_DB_URL is not set")
	}

	logFile, err := config.SetupLogFile(cfg.LogDir, 10)
	if err != nil {
		return nil, err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("lsync starting",
		"environment", cfg.Environment,
		"table_prefix", cfg.TablePrefix,
		"replica_db", cfg.ReplicaDBPath,
	)

	pool, err := postgres.CreateConnectionPool(ctx, cfg.CentralDBURL)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("connect central store: %w", err)
	}

	db, err := sqlite.Init(cfg.ReplicaDBPath)
	if err != nil {
		pool.Close()
		logFile.Close()
		return nil, fmt.Errorf("open replica store: %w", err)
	}

	repoCfg := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	tms := postgres.NewTMRepository(repoCfg)
	replica := sqlite.NewStore(db, logger)
	notifier := notify.NewSlog(logger)

	svc := syncsvc.NewService(&syncsvc.Config{
		Platforms: postgres.NewPlatformRepository(repoCfg),
		Projects:  postgres.NewProjectRepository(repoCfg),
		Folders:   postgres.NewFolderRepository(repoCfg),
		Files:     postgres.NewFileRepository(repoCfg),
		Rows:      postgres.NewRowRepository(repoCfg),
		TMs:       tms,
		TMEntries: postgres.NewTMEntryRepository(repoCfg),
		Replica:   replica,
		TxManager: postgres.NewTransactionManager(pool),
		Notifier:  notifier,
		Logger:    logger,
	})

	meta := indexmeta.NewReader(cfg.IndexMetaDir)
	manager := maintenance.NewManager(&maintenance.ManagerConfig{
		Detector: maintenance.NewStalenessDetector(tms, meta, logger),
		Queue:    maintenance.NewSyncQueue(),
		Indexer:  indexer.NewLocal(svc, tms, cfg.IndexMetaDir, logger),
		Notifier: notifier,
		Logger:   logger,
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		sync:    svc,
		manager: manager,
		pool:    pool,
		db:      db,
		logFile: logFile,
	}, nil
}

func withApp(fn func(ctx context.Context, a *app, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := setup(c.Context)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(c.Context, a, c)
	}
}

func idFlag(usage string) *cli.Int64Flag {
	return &cli.Int64Flag{Name: "id", Usage: usage, Required: true}
}

func main() {
	cliApp := &cli.App{
		Name:  "lsync",
		Usage: "Sync translation content between the central store and the local replica",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Download central content into the local replica",
				Subcommands: []*cli.Command{
					{
						Name:  "file",
						Usage: "Sync one file and its rows",
						Flags: []cli.Flag{idFlag("Central file id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							stats, err := a.sync.SyncFileToOffline(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							fmt.Printf("file %d: %d inserted, %d updated, %d skipped, %d deleted, %d pushed\n",
								c.Int64("id"), stats.Inserted, stats.Updated, stats.Skipped, stats.Deleted, stats.Pushed)
							return nil
						}),
					},
					{
						Name:  "folder",
						Usage: "Sync a folder subtree",
						Flags: []cli.Flag{idFlag("Central folder id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							stats, err := a.sync.SyncFolderToOffline(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							printTreeStats(stats)
							return nil
						}),
					},
					{
						Name:  "project",
						Usage: "Sync a whole project",
						Flags: []cli.Flag{idFlag("Central project id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							stats, err := a.sync.SyncProjectToOffline(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							printTreeStats(stats)
							return nil
						}),
					},
					{
						Name:  "platform",
						Usage: "Sync every project under a platform",
						Flags: []cli.Flag{idFlag("Central platform id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							stats, err := a.sync.SyncPlatformToOffline(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							printTreeStats(stats)
							return nil
						}),
					},
					{
						Name:  "tm",
						Usage: "Sync a translation memory and its entries",
						Flags: []cli.Flag{idFlag("Central TM id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							merged, err := a.sync.SyncTMToOffline(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							fmt.Printf("tm %d: %d entries merged\n", c.Int64("id"), merged)
							return nil
						}),
					},
				},
			},
			{
				Name:  "push",
				Usage: "Send local edits back to the central store",
				Subcommands: []*cli.Command{
					{
						Name:  "file",
						Usage: "Push dirty rows of one file",
						Flags: []cli.Flag{idFlag("Central file id")},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							pushed, err := a.sync.PushFileChangesToServer(ctx, c.Int64("id"))
							if err != nil {
								return err
							}
							fmt.Printf("file %d: %d rows pushed\n", c.Int64("id"), pushed)
							return nil
						}),
					},
					{
						Name:  "tm",
						Usage: "Push dirty entries of one TM",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "local-id", Usage: "Local TM id", Required: true},
							&cli.Int64Flag{Name: "server-id", Usage: "Central TM id", Required: true},
						},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							pushed, err := a.sync.PushTMChangesToServer(ctx, c.Int64("local-id"), c.Int64("server-id"))
							if err != nil {
								return err
							}
							fmt.Printf("tm %d: %d entries pushed\n", c.Int64("server-id"), pushed)
							return nil
						}),
					},
				},
			},
			{
				Name:  "promote",
				Usage: "Turn local-only content into first-class central records",
				Subcommands: []*cli.Command{
					{
						Name:  "file",
						Usage: "Promote a local-only file",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "file", Usage: "Local file id", Required: true},
							&cli.Int64Flag{Name: "project", Usage: "Destination project id", Required: true},
							&cli.Int64Flag{Name: "folder", Usage: "Destination folder id (omit for project root)"},
							&cli.Int64Flag{Name: "user", Usage: "Acting user id", Required: true},
						},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							req := syncsvc.PromoteFileRequest{
								LocalFileID: c.Int64("file"),
								ProjectID:   c.Int64("project"),
								UserID:      c.Int64("user"),
							}
							if c.IsSet("folder") {
								folderID := c.Int64("folder")
								req.FolderID = &folderID
							}
							res, err := a.sync.SyncFileToCentral(ctx, req)
							if err != nil {
								return err
							}
							fmt.Printf("promoted to central file %d (%d rows)\n", res.NewFileID, res.RowsSynced)
							return nil
						}),
					},
					{
						Name:  "tm",
						Usage: "Promote a local-only TM",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "tm", Usage: "Local TM id", Required: true},
							&cli.Int64Flag{Name: "user", Usage: "Acting user id", Required: true},
						},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							res, err := a.sync.SyncTMToCentral(ctx, c.Int64("tm"), c.Int64("user"))
							if err != nil {
								return err
							}
							fmt.Printf("promoted to central tm %d (%d entries)\n", res.NewTMID, res.EntriesSynced)
							return nil
						}),
					},
				},
			},
			{
				Name:  "maintain",
				Usage: "Check and rebuild stale TM indexes",
				Subcommands: []*cli.Command{
					{
						Name:  "check",
						Usage: "Report TMs whose search index has drifted",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "user", Usage: "Acting user id", Required: true},
							&cli.Int64SliceFlag{Name: "tm", Usage: "Limit the check to specific TM ids"},
							&cli.BoolFlag{Name: "queue", Usage: "Queue stale TMs for re-indexing"},
							&cli.BoolFlag{Name: "offline", Usage: "Check against the replica's TM mirror instead of the central store"},
						},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							var stale []models.StaleTMInfo
							if c.Bool("offline") {
								detector := maintenance.NewStalenessDetector(
									sqlite.NewTMRepo(a.db),
									indexmeta.NewReader(a.cfg.IndexMetaDir),
									a.logger,
								)
								var err error
								stale, err = detector.FindStaleTMs(ctx, c.Int64Slice("tm")...)
								if err != nil {
									return err
								}
							} else {
								stale = a.manager.OnUserLogin(ctx, c.Int64("user"), c.Bool("queue"), c.Int64Slice("tm")...)
							}
							if len(stale) == 0 {
								fmt.Println("all TM indexes are current")
								return nil
							}
							for _, info := range stale {
								fmt.Printf("tm %d (%s): %s, %d pending changes\n",
									info.TMID, info.TMName, info.Status, info.PendingChanges)
							}
							return nil
						}),
					},
					{
						Name:  "run",
						Usage: "Queue stale TMs and re-index them now",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "user", Usage: "Acting user id", Required: true},
							&cli.Int64SliceFlag{Name: "tm", Usage: "Limit the run to specific TM ids"},
						},
						Action: withApp(func(ctx context.Context, a *app, c *cli.Context) error {
							stale := a.manager.OnUserLogin(ctx, c.Int64("user"), true, c.Int64Slice("tm")...)
							if len(stale) == 0 {
								fmt.Println("all TM indexes are current")
								return nil
							}
							if err := a.manager.RunPending(ctx); err != nil {
								return err
							}
							fmt.Printf("re-indexed %d TMs\n", len(stale))
							return nil
						}),
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printTreeStats(stats syncsvc.TreeSyncStats) {
	fmt.Printf("%d projects, %d folders, %d files synced (%d rows)\n",
		stats.ProjectsSynced, stats.FoldersSynced, stats.FilesSynced, stats.TotalRows)
}

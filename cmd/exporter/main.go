package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kesarlabs/milltrack-backend/internal/adjustments"
	"github.com/kesarlabs/milltrack-backend/internal/alerts"
	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/internal/exports"
	"github.com/kesarlabs/milltrack-backend/internal/identity"
	"github.com/kesarlabs/milltrack-backend/internal/production"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/sales"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
	"github.com/kesarlabs/milltrack-backend/pkg/migrate"
)

// exporter writes a full workbook backup of the facility data. The
// -login flag names the requesting user; sales visibility in the
// resulting file follows that user's role.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "exporter"})

	_ = godotenv.Load()

	login := flag.String("login", "", "login ID of the requesting user")
	flag.Parse()

	if *login == "" {
		fmt.Fprintln(os.Stderr, "missing -login")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "exporter",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
	})

	dbClient, err := db.NewClient(cfg.DB)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	gormDB := dbClient.Gorm()

	auditSvc, err := audit.NewService(audit.NewRepository(gormDB))
	requireResource(ctx, logg, "audit service", err)

	identitySvc, err := identity.NewService(dbClient, identity.NewRepository(gormDB), auditSvc, logg, cfg.Password)
	requireResource(ctx, logg, "identity service", err)

	rawSvc, err := rawstock.NewService(dbClient, rawstock.NewRepository(gormDB), auditSvc, logg)
	requireResource(ctx, logg, "raw stock service", err)

	engine, err := stockledger.NewEngine(dbClient, stockledger.NewRepository(gormDB), logg)
	requireResource(ctx, logg, "stock ledger engine", err)

	productionSvc, err := production.NewService(
		dbClient,
		production.NewRepository(gormDB),
		rawSvc,
		engine,
		auditSvc,
		alerts.NewEvaluator(cfg.Alerts),
		logg,
	)
	requireResource(ctx, logg, "production service", err)

	salesSvc, err := sales.NewService(dbClient, sales.NewRepository(gormDB), engine, auditSvc, logg)
	requireResource(ctx, logg, "sales service", err)

	adjustmentsSvc, err := adjustments.NewService(dbClient, adjustments.NewRepository(gormDB), engine, auditSvc, logg)
	requireResource(ctx, logg, "adjustments service", err)

	exportSvc, err := exports.NewService(
		productionSvc,
		rawSvc,
		salesSvc,
		adjustmentsSvc,
		identitySvc,
		auditSvc,
		engine,
		logg,
		cfg.Export,
	)
	requireResource(ctx, logg, "export service", err)

	actor, err := identitySvc.FindByLoginID(ctx, *login)
	requireResource(ctx, logg, "requesting user", err)

	path, err := exportSvc.Export(ctx, actor)
	if err != nil {
		logg.Error(ctx, "export failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, fmt.Sprintf("backup written: %s", path))
	fmt.Println(path)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

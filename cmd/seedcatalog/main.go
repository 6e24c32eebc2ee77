package main

// seedcatalog loads a small demonstration dataset: an administrator account,
// a sample cabinetry catalog with exclusion rules and dependencies, and one
// local customer. Intended for development databases only; every insert is
// skipped if a row with the same natural key already exists.

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"cabinetcpq/internal/config"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/repository"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// ── Administrator ────────────────────────────────────────────────────────
	if _, err := userRepo.FindByUsername(ctx, "admin"); err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("cabinetcpq2026"), 12)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt failed")
		}
		admin := &model.User{
			Username:     "admin",
			Name:         "Administrator",
			PasswordHash: string(hash),
			Role:         "administrador",
			Active:       true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("failed to create admin user")
		}
		log.Info().Msg("admin user created (password: cabinetcpq2026 — change it)")
	}

	// ── Products ─────────────────────────────────────────────────────────────
	mm := func(v int) decimal.Decimal { return decimal.NewFromInt(int64(v)) }
	price := func(s string) decimal.Decimal { d, _ := decimal.NewFromString(s); return d }

	products := []model.Product{
		{Code: "BC-600", Name: "Base cabinet 600mm", Category: "cabinet", BasePrice: price("200.00"),
			Dimensions: &model.Dimensions{Width: mm(600), Height: mm(720), Depth: mm(560)}},
		{Code: "WC-600", Name: "Wall cabinet 600mm", Category: "cabinet", BasePrice: price("150.00"),
			Dimensions: &model.Dimensions{Width: mm(600), Height: mm(400), Depth: mm(320)}},
		{Code: "PN-2440", Name: "Side panel 2440mm", Category: "panel", BasePrice: price("85.00"),
			Dimensions: &model.Dimensions{Width: mm(2440), Height: mm(1220), Depth: mm(18)}},
		{Code: "HG-STD", Name: "Hinge set", Category: "hardware", BasePrice: price("12.50")},
		{Code: "PL-150", Name: "Plinth 150mm", Category: "hardware", BasePrice: price("22.00")},
		{Code: "HANDLE-BAR", Name: "Bar handle", Category: "hardware", BasePrice: price("8.00")},
	}
	byCode := map[string]*model.Product{}
	for i := range products {
		p := &products[i]
		if err := catalogRepo.CreateProduct(ctx, p); err != nil {
			log.Warn().Str("code", p.Code).Err(err).Msg("product skipped (may already exist)")
			continue
		}
		byCode[p.Code] = p
	}

	// ── Processings ──────────────────────────────────────────────────────────
	processings := []model.Processing{
		{Name: "Walnut stain", PricingModel: model.PricingPercentage, Rate: price("15"),
			Categories: []string{"cabinet", "panel"}},
		{Name: "Oak stain", PricingModel: model.PricingPercentage, Rate: price("10"),
			Categories: []string{"cabinet", "panel"}},
		{Name: "Custom paint", PricingModel: model.PricingFixed, Rate: price("75.00"),
			Categories: []string{"cabinet", "panel"}, RequiresOptions: true},
		{Name: "Soft-close hardware", PricingModel: model.PricingPerUnit, Rate: price("18.50"),
			Categories: []string{"cabinet"}},
		{Name: "Custom cut", PricingModel: model.PricingPerDimension, Rate: price("0.05"),
			Categories: []string{"cabinet", "panel"}},
	}
	byName := map[string]*model.Processing{}
	for i := range processings {
		p := &processings[i]
		p.Active = true
		if err := catalogRepo.CreateProcessing(ctx, p); err != nil {
			log.Warn().Str("name", p.Name).Err(err).Msg("processing skipped")
			continue
		}
		byName[p.Name] = p
	}

	// ── Rules ────────────────────────────────────────────────────────────────
	if walnut, oak := byName["Walnut stain"], byName["Oak stain"]; walnut != nil && oak != nil {
		paint := byName["Custom paint"]
		rules := []model.ProcessingRule{
			{Name: "Stains are mutually exclusive", Priority: 10,
				TriggerIDs:  ids(walnut.ID, oak.ID),
				ExcludedIDs: ids(walnut.ID, oak.ID)},
		}
		if paint != nil {
			rules = append(rules, model.ProcessingRule{
				Name: "Stain excludes paint", Priority: 20,
				TriggerIDs:  ids(walnut.ID, oak.ID),
				ExcludedIDs: ids(paint.ID),
			})
		}
		for i := range rules {
			if err := catalogRepo.CreateRule(ctx, &rules[i]); err != nil {
				log.Warn().Str("name", rules[i].Name).Err(err).Msg("rule skipped")
			}
		}
	}

	// ── Dependencies ─────────────────────────────────────────────────────────
	if bc, hg := byCode["BC-600"], byCode["HG-STD"]; bc != nil && hg != nil {
		dep := model.ProductDependency{
			ProductID: bc.ID, RequiredProductID: hg.ID,
			IsAutomatic: true, QuantityFormula: "qty * 2",
		}
		if err := catalogRepo.CreateDependency(ctx, &dep); err != nil {
			log.Warn().Err(err).Msg("dependency skipped")
		}
	}
	if bc, pl := byCode["BC-600"], byCode["PL-150"]; bc != nil && pl != nil {
		dep := model.ProductDependency{
			ProductID: bc.ID, RequiredProductID: pl.ID,
			IsAutomatic: false, QuantityFormula: "1",
		}
		if err := catalogRepo.CreateDependency(ctx, &dep); err != nil {
			log.Warn().Err(err).Msg("dependency skipped")
		}
	}

	// ── Demo customer ────────────────────────────────────────────────────────
	email := "purchasing@acmekitchens.example"
	customer := &model.Customer{
		DirectoryID:      "ACME-001",
		Name:             "Acme Kitchens Ltd",
		Email:            &email,
		ContractDiscount: price("10"),
		CustomerDiscount: price("5"),
	}
	if err := customerRepo.Upsert(ctx, customer); err != nil {
		log.Warn().Err(err).Msg("customer skipped")
	}

	log.Info().Msg("seed complete")
}

func ids(in ...uuid.UUID) []uuid.UUID { return in }

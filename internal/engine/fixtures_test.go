package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/model"
)

// ── Shared catalog fixture ───────────────────────────────────────────────────
// A small cabinetry catalog exercising every pricing model, a mutual
// exclusion between the two stains, and one automatic + one suggested
// dependency on the base cabinet.

var (
	baseCabinetID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	wallCabinetID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	hingeSetID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	plinthID      = uuid.MustParse("44444444-4444-4444-4444-444444444444")

	stainWalnutID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	stainOakID    = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	softCloseID   = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
	customCutID   = uuid.MustParse("dddddddd-dddd-dddd-dddd-dddddddddddd")
	paintColorID  = uuid.MustParse("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProducts() []model.Product {
	return []model.Product{
		{
			ID: baseCabinetID, Code: "BC-600", Name: "Base Cabinet 600", Category: "base",
			BasePrice:  dec("200"),
			Dimensions: &model.Dimensions{Width: dec("600"), Height: dec("720"), Depth: dec("560")},
			Active:     true,
		},
		{
			ID: wallCabinetID, Code: "WC-400", Name: "Wall Cabinet 400", Category: "wall",
			BasePrice: dec("150"),
			Active:    true, // no dimensions on purpose
		},
		{ID: hingeSetID, Code: "HW-HINGE", Name: "Hinge Set", Category: "hardware", BasePrice: dec("12"), Active: true},
		{ID: plinthID, Code: "AC-PLINTH", Name: "Plinth", Category: "accessory", BasePrice: dec("35"), Active: true},
	}
}

func testProcessings() []model.Processing {
	return []model.Processing{
		{ID: stainWalnutID, Name: "Walnut Stain", PricingModel: model.PricingPercentage, Rate: dec("0.15"),
			Categories: []string{"base", "wall"}, Active: true},
		{ID: stainOakID, Name: "Oak Stain", PricingModel: model.PricingPercentage, Rate: dec("0.10"),
			Categories: []string{"base", "wall"}, Active: true},
		{ID: softCloseID, Name: "Soft-Close Hardware", PricingModel: model.PricingPerUnit, Rate: dec("18.50"),
			Categories: []string{"base", "wall"}, Active: true},
		{ID: customCutID, Name: "Custom Cut", PricingModel: model.PricingPerDimension, Rate: dec("0.05"),
			Categories: []string{"base", "wall"}, Active: true},
		{ID: paintColorID, Name: "Custom Paint", PricingModel: model.PricingFixed, Rate: dec("75"),
			Categories: []string{"base", "wall"}, RequiresOptions: true, Active: true},
	}
}

func testRules() []model.ProcessingRule {
	return []model.ProcessingRule{
		// The two stains are mutually exclusive, both directions.
		{ID: uuid.New(), Name: "walnut excludes oak", Priority: 10,
			TriggerIDs: []uuid.UUID{stainWalnutID}, ExcludedIDs: []uuid.UUID{stainOakID}},
		{ID: uuid.New(), Name: "oak excludes walnut", Priority: 10,
			TriggerIDs: []uuid.UUID{stainOakID}, ExcludedIDs: []uuid.UUID{stainWalnutID}},
		// Any stain excludes custom paint.
		{ID: uuid.New(), Name: "stain excludes paint", Priority: 20,
			TriggerIDs: []uuid.UUID{stainWalnutID, stainOakID}, ExcludedIDs: []uuid.UUID{paintColorID}},
	}
}

func testDependencies() []model.ProductDependency {
	return []model.ProductDependency{
		// Every base cabinet needs one hinge set per two cabinets.
		{ID: uuid.New(), ProductID: baseCabinetID, RequiredProductID: hingeSetID,
			IsAutomatic: true, QuantityFormula: "qty"},
		// A plinth is suggested once regardless of quantity.
		{ID: uuid.New(), ProductID: baseCabinetID, RequiredProductID: plinthID,
			IsAutomatic: false, QuantityFormula: "1"},
	}
}

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot(testProducts(), testProcessings(), testRules(), testDependencies())
}

func testEngine() *Engine { return New(testSnapshot()) }

func emptyQuote() model.Quote {
	return model.Quote{
		ID:                uuid.New(),
		CustomerID:        uuid.New(),
		OrderDiscount:     decimal.Zero,
		ApprovalThreshold: dec("10000"),
		Status:            model.StatusDraft,
	}
}

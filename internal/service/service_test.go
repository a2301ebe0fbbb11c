package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"mahotsav/backend/internal/cache"
	"mahotsav/backend/internal/docstore"
	"mahotsav/backend/internal/domain"
	"mahotsav/backend/internal/sales"
	"mahotsav/backend/internal/store"
)

func newTestService() *Service {
	repo := store.New(docstore.NewMemory())
	return New(repo, cache.NoopSettingsCache{}, 5*time.Second)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Role: "admin"})
}

// seedStall registers one stall with the given inventory and returns its id.
func seedStall(t *testing.T, svc *Service, inventory []domain.StallInventoryItem) (exhibitionID, stallID string) {
	t.Helper()
	ctx := adminCtx()

	exhibition, err := svc.CreateExhibition(ctx, domain.ExhibitionCreateRequest{Name: "Winter Fair"})
	if err != nil {
		t.Fatalf("create exhibition: %v", err)
	}
	registration, err := svc.CreateRegistration(ctx, domain.RegistrationCreateRequest{
		ExhibitionID: exhibition.ID,
		StallNumber:  "A-1",
		Participants: []domain.Participant{{Name: "Sunita Mahanta"}},
		Inventory:    inventory,
	})
	if err != nil {
		t.Fatalf("create registration: %v", err)
	}
	return exhibition.ID, registration.ID
}

func TestSubmitDailySaleRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.SubmitDailySale(context.Background(), domain.DailySaleSubmitRequest{
		ExhibitionID: "ex-1",
		StallID:      "stall-1",
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 1, SalesValue: 100},
		},
	})
	if !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
}

func TestSubmitDailySaleStoresLinesAsEnteredWithoutTotal(t *testing.T) {
	svc := newTestService()
	exhibitionID, stallID := seedStall(t, svc, []domain.StallInventoryItem{
		{ProductCategory: "Handloom", ProductName: "Towel"},
	})

	created, err := svc.SubmitDailySale(adminCtx(), domain.DailySaleSubmitRequest{
		ExhibitionID: exhibitionID,
		StallID:      stallID,
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 5, SalesValue: 500},
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(created.Products) != 1 {
		t.Fatalf("expected exactly the entered line, got %d lines", len(created.Products))
	}
	for _, item := range created.Products {
		if item.ProductCategory == sales.DailyTotalCategory {
			t.Fatalf("submission must not inject a total line")
		}
	}
}

func TestSubmitDailySaleRejectsInvalidItems(t *testing.T) {
	svc := newTestService()
	exhibitionID, stallID := seedStall(t, svc, []domain.StallInventoryItem{
		{ProductCategory: "Handloom", ProductName: "Towel"},
	})
	ctx := adminCtx()

	base := domain.DailySaleSubmitRequest{
		ExhibitionID: exhibitionID,
		StallID:      stallID,
		Date:         "2026-01-10",
	}

	req := base
	req.Products = []domain.SaleLineItem{{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 0, SalesValue: 100}}
	_, err := svc.SubmitDailySale(ctx, req)
	var verr *sales.ValidationError
	if !errors.As(err, &verr) || verr.Reason != sales.InvalidQuantity {
		t.Fatalf("expected InvalidQuantity, got %v", err)
	}

	req = base
	req.Products = nil
	if _, err := svc.SubmitDailySale(ctx, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty products, got %v", err)
	}

	req = base
	req.Date = "10-01-2026"
	req.Products = []domain.SaleLineItem{{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 1, SalesValue: 100}}
	if _, err := svc.SubmitDailySale(ctx, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}
}

func TestSubmitDailySaleRejectsUnofferedProduct(t *testing.T) {
	svc := newTestService()
	exhibitionID, stallID := seedStall(t, svc, []domain.StallInventoryItem{
		{ProductCategory: "Handloom", ProductName: "Towel"},
	})

	_, err := svc.SubmitDailySale(adminCtx(), domain.DailySaleSubmitRequest{
		ExhibitionID: exhibitionID,
		StallID:      stallID,
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: "Jewellery", ProductName: "Bangles", QuantitySold: 1, SalesValue: 100},
		},
	})
	if !errors.Is(err, ErrOptionNotOffered) {
		t.Fatalf("expected ErrOptionNotOffered, got %v", err)
	}
}

func TestSubmitDailySaleAcceptsSyntheticTotalSalesLine(t *testing.T) {
	svc := newTestService()
	exhibitionID, stallID := seedStall(t, svc, nil)

	created, err := svc.SubmitDailySale(adminCtx(), domain.DailySaleSubmitRequest{
		ExhibitionID: exhibitionID,
		StallID:      stallID,
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: sales.TotalSalesCategory, ProductName: sales.TotalSalesProduct, QuantitySold: 1, SalesValue: 4200},
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if created.Products[0].SalesValue != 4200 {
		t.Fatalf("unexpected record %+v", created)
	}
}

func TestEditDailySaleRecomputesTotal(t *testing.T) {
	svc := newTestService()
	exhibitionID, stallID := seedStall(t, svc, []domain.StallInventoryItem{
		{ProductCategory: "Handloom", ProductName: "Towel"},
	})
	ctx := adminCtx()

	created, err := svc.SubmitDailySale(ctx, domain.DailySaleSubmitRequest{
		ExhibitionID: exhibitionID,
		StallID:      stallID,
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 5, SalesValue: 500},
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	updated, err := svc.EditDailySale(ctx, created.ID, domain.DailySaleUpdateRequest{
		Products: []domain.SaleLineItem{
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 5, SalesValue: 500},
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 3, SalesValue: 300},
		},
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if len(updated.Products) != 3 {
		t.Fatalf("expected two lines plus the total, got %d", len(updated.Products))
	}
	total := updated.Products[2]
	if total.ProductCategory != sales.DailyTotalCategory || total.SalesValue != 3400 {
		t.Fatalf("unexpected total line %+v", total)
	}

	stored, err := svc.HistoricalSales(ctx, stallID)
	if err != nil {
		t.Fatalf("historical sales: %v", err)
	}
	if len(stored) != 1 || len(stored[0].Products) != 3 {
		t.Fatalf("edit not persisted, got %+v", stored)
	}

	if _, err := svc.EditDailySale(ctx, "missing", domain.DailySaleUpdateRequest{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStallsForExhibitionDeduplicatesByStallNumber(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	exhibition, err := svc.CreateExhibition(ctx, domain.ExhibitionCreateRequest{Name: "Winter Fair"})
	if err != nil {
		t.Fatalf("create exhibition: %v", err)
	}
	for i, number := range []string{"A-1", "A-1", "B-2"} {
		_, err := svc.CreateRegistration(ctx, domain.RegistrationCreateRequest{
			ExhibitionID: exhibition.ID,
			StallNumber:  number,
			Participants: []domain.Participant{{Name: "P" + strconv.Itoa(i)}},
		})
		if err != nil {
			t.Fatalf("create registration: %v", err)
		}
	}

	stalls, err := svc.StallsForExhibition(ctx, exhibition.ID)
	if err != nil {
		t.Fatalf("stalls: %v", err)
	}
	if len(stalls) != 2 {
		t.Fatalf("expected 2 unique stalls, got %d", len(stalls))
	}
	if stalls[0].ParticipantName != "P0" {
		t.Fatalf("expected first registration to win, got %+v", stalls[0])
	}
}

func TestStallOptionsIncludeSyntheticPairAndSortedCategories(t *testing.T) {
	svc := newTestService()
	_, stallID := seedStall(t, svc, []domain.StallInventoryItem{
		{ProductCategory: " Woolen Knit Wear ", ProductName: " Sweater "},
		{ProductCategory: "Handloom", ProductName: "Towel"},
	})

	resp, err := svc.StallOptions(adminCtx(), stallID)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(resp.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(resp.Options))
	}
	last := resp.Options[len(resp.Options)-1]
	if last.ProductCategory != sales.TotalSalesCategory || last.ProductName != sales.TotalSalesProduct {
		t.Fatalf("expected synthetic option last, got %+v", last)
	}
	wantCategories := []string{"Handloom", "Woolen Knit Wear", sales.TotalSalesCategory}
	if len(resp.Categories) != len(wantCategories) {
		t.Fatalf("categories = %v, want %v", resp.Categories, wantCategories)
	}
	for i := range wantCategories {
		if resp.Categories[i] != wantCategories[i] {
			t.Fatalf("categories = %v, want %v", resp.Categories, wantCategories)
		}
	}
}

func TestSubmitFeedbackGrantsDiscountCodeAndStall(t *testing.T) {
	svc := newTestService()

	entry, err := svc.SubmitFeedback(context.Background(), domain.FeedbackSubmitRequest{
		Name:           "Asha Behera",
		Email:          "asha@example.com",
		AreaOfInterest: "Jewellery",
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}

	codePattern := regexp.MustCompile(`^ORMAS-[0-9A-Z]{4}-15$`)
	if !codePattern.MatchString(entry.DiscountCode) {
		t.Fatalf("unexpected discount code %q", entry.DiscountCode)
	}

	stallNumber, err := strconv.Atoi(strings.TrimPrefix(entry.AssignedStall, "Stall "))
	if err != nil {
		t.Fatalf("unexpected assigned stall %q", entry.AssignedStall)
	}
	if stallNumber < 46 || stallNumber > 50 {
		t.Fatalf("jewellery stall %d outside range 46-50", stallNumber)
	}
	if entry.Timestamp == "" || entry.ID == "" {
		t.Fatalf("expected timestamp and id, got %+v", entry)
	}
}

func TestSubmitFeedbackUnknownInterestUsesFullRange(t *testing.T) {
	svc := newTestService()

	entry, err := svc.SubmitFeedback(context.Background(), domain.FeedbackSubmitRequest{
		Name:           "Ravi Das",
		Email:          "ravi@example.com",
		AreaOfInterest: "Something Else",
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	stallNumber, err := strconv.Atoi(strings.TrimPrefix(entry.AssignedStall, "Stall "))
	if err != nil {
		t.Fatalf("unexpected assigned stall %q", entry.AssignedStall)
	}
	if stallNumber < 1 || stallNumber > 50 {
		t.Fatalf("stall %d outside range 1-50", stallNumber)
	}
}

func TestListFeedbackRequiresAdmin(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ListFeedback(context.Background()); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	svc := newTestService()

	settings, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.Title != "Gonasika Kendujhar Mahotsaav" || settings.HeaderColor != "#1e40af" {
		t.Fatalf("unexpected defaults %+v", settings)
	}
	if len(settings.MarqueeMessages) != 2 {
		t.Fatalf("expected 2 default marquee messages, got %d", len(settings.MarqueeMessages))
	}
}

func TestSaveSettingsOverridesDefaults(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	saved, err := svc.SaveSettings(ctx, domain.ExhibitionSettings{
		Title:       "Pallishree Mela",
		Year:        "2026",
		WelcomeText: "Welcome",
		HeaderColor: "#064e3b",
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if saved.MarqueeSpeed != 30 {
		t.Fatalf("expected default marquee speed to be applied, got %d", saved.MarqueeSpeed)
	}

	got, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Title != "Pallishree Mela" || got.Year != "2026" {
		t.Fatalf("expected saved settings back, got %+v", got)
	}
}

func TestListRegistrationsRequiresAdminAndExhibition(t *testing.T) {
	svc := newTestService()
	exhibitionID, _ := seedStall(t, svc, nil)

	if _, err := svc.ListRegistrations(context.Background(), exhibitionID); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
	if _, err := svc.ListRegistrations(adminCtx(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty exhibition, got %v", err)
	}

	registrations, err := svc.ListRegistrations(adminCtx(), exhibitionID)
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	if len(registrations) != 1 || registrations[0].StallNumber != "A-1" {
		t.Fatalf("unexpected registrations %+v", registrations)
	}
}

func TestUpdateEventMergesOnlyProvidedFields(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	created, err := svc.CreateEvent(ctx, domain.EventCreateRequest{
		Title: "Folk Dance",
		Date:  "2026-01-12",
		Venue: "Main Stage",
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	venue := "Open Ground"
	updated, err := svc.UpdateEvent(ctx, created.ID, domain.EventUpdateRequest{Venue: &venue})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if updated.Venue != "Open Ground" || updated.Title != "Folk Dance" || updated.Date != "2026-01-12" {
		t.Fatalf("unexpected event after update %+v", updated)
	}

	badDate := "12-01-2026"
	if _, err := svc.UpdateEvent(ctx, created.ID, domain.EventUpdateRequest{Date: &badDate}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}
}

func TestUpdateFoodMergesOnlyProvidedFields(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	created, err := svc.CreateFood(ctx, domain.FoodCreateRequest{
		Name:        "Chhena Poda",
		PriceRupees: 60,
		IsVeg:       true,
	})
	if err != nil {
		t.Fatalf("create food: %v", err)
	}

	price := int64(80)
	updated, err := svc.UpdateFood(ctx, created.ID, domain.FoodUpdateRequest{PriceRupees: &price})
	if err != nil {
		t.Fatalf("update food: %v", err)
	}
	if updated.PriceRupees != 80 || updated.Name != "Chhena Poda" || !updated.IsVeg {
		t.Fatalf("unexpected food after update %+v", updated)
	}
}

func TestUpdateProductMergesOnlyProvidedFields(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	created, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name:        "Dhokra Horse",
		Category:    "Handicraft",
		PriceRupees: 1200,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	price := int64(1500)
	updated, err := svc.UpdateProduct(ctx, created.ID, domain.ProductUpdateRequest{PriceRupees: &price})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.PriceRupees != 1500 || updated.Name != "Dhokra Horse" || !updated.Available {
		t.Fatalf("unexpected product after update %+v", updated)
	}
}

package store

import (
	"context"
	"errors"
	"testing"

	"mahotsav/backend/internal/docstore"
	"mahotsav/backend/internal/domain"
)

func newTestRepo() *Documents {
	return New(docstore.NewMemory())
}

func TestCreateExhibitionRejectsEmptyName(t *testing.T) {
	repo := newTestRepo()
	if _, err := repo.CreateExhibition(context.Background(), domain.Exhibition{}); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestDailySalesSortedNewestFirst(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for _, date := range []string{"2026-01-08", "2026-01-10", "2026-01-09"} {
		_, err := repo.CreateDailySale(ctx, domain.DailySaleRecord{
			ExhibitionID: "ex-1",
			StallID:      "stall-1",
			Date:         date,
			Products: []domain.SaleLineItem{
				{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 1, SalesValue: 100},
			},
		})
		if err != nil {
			t.Fatalf("create daily sale: %v", err)
		}
	}

	records, err := repo.ListDailySalesByStall(ctx, "stall-1")
	if err != nil {
		t.Fatalf("list daily sales: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []string{"2026-01-10", "2026-01-09", "2026-01-08"}
	for i, record := range records {
		if record.Date != want[i] {
			t.Fatalf("position %d: got date %s, want %s", i, record.Date, want[i])
		}
	}
}

func TestUpdateDailySaleProductsReplacesWholesale(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	created, err := repo.CreateDailySale(ctx, domain.DailySaleRecord{
		ExhibitionID: "ex-1",
		StallID:      "stall-1",
		Date:         "2026-01-10",
		Products: []domain.SaleLineItem{
			{ProductCategory: "Handloom", ProductName: "Towel", QuantitySold: 5, SalesValue: 500},
		},
	})
	if err != nil {
		t.Fatalf("create daily sale: %v", err)
	}

	replacement := []domain.SaleLineItem{
		{ProductCategory: "Handloom", ProductName: "Saree", QuantitySold: 2, SalesValue: 900},
	}
	if err := repo.UpdateDailySaleProducts(ctx, created.ID, replacement); err != nil {
		t.Fatalf("update products: %v", err)
	}

	got, err := repo.GetDailySale(ctx, created.ID)
	if err != nil {
		t.Fatalf("get daily sale: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].ProductName != "Saree" {
		t.Fatalf("products not replaced, got %+v", got.Products)
	}
	if got.Date != "2026-01-10" || got.StallID != "stall-1" {
		t.Fatalf("unrelated fields changed: %+v", got)
	}

	if err := repo.UpdateDailySaleProducts(ctx, "missing", replacement); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrationsQueryByExhibition(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for _, reg := range []domain.Registration{
		{ExhibitionID: "ex-1", StallNumber: "A-1"},
		{ExhibitionID: "ex-2", StallNumber: "Z-1"},
		{ExhibitionID: "ex-1", StallNumber: "A-2"},
	} {
		if _, err := repo.CreateRegistration(ctx, reg); err != nil {
			t.Fatalf("create registration: %v", err)
		}
	}

	got, err := repo.ListRegistrationsByExhibition(ctx, "ex-1")
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(got))
	}
	for _, reg := range got {
		if reg.CreatedAt.IsZero() {
			t.Fatalf("expected createdAt to be stamped")
		}
	}
}

func TestSettingsRoundTripAndNotFound(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	if _, err := repo.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	want := domain.ExhibitionSettings{
		Title:           "Gonasika Kendujhar Mahotsaav",
		Year:            "2026",
		HeaderColor:     "#1e40af",
		MarqueeMessages: []string{"Welcome"},
	}
	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Title != want.Title || got.HeaderColor != want.HeaderColor {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestEventsSortedByDate(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for _, date := range []string{"2026-01-12", "2026-01-10"} {
		if _, err := repo.CreateEvent(ctx, domain.Event{Title: "Folk Dance", Date: date}); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	events, err := repo.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || events[0].Date != "2026-01-10" {
		t.Fatalf("expected ascending date order, got %+v", events)
	}
}

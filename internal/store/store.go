// Package store is the typed repository over the document gateway. It maps
// domain entities onto their collections and owns read shaping such as sort
// order.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"mahotsav/backend/internal/docstore"
	"mahotsav/backend/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// SettingsDocID is the fixed id of the single site settings document.
const SettingsDocID = "exhibition"

type Repository interface {
	CreateExhibition(ctx context.Context, exhibition domain.Exhibition) (*domain.Exhibition, error)
	ListExhibitions(ctx context.Context) ([]domain.Exhibition, error)
	GetExhibition(ctx context.Context, id string) (*domain.Exhibition, error)
	DeleteExhibition(ctx context.Context, id string) error

	CreateRegistration(ctx context.Context, registration domain.Registration) (*domain.Registration, error)
	ListRegistrationsByExhibition(ctx context.Context, exhibitionID string) ([]domain.Registration, error)
	GetRegistration(ctx context.Context, id string) (*domain.Registration, error)

	CreateDailySale(ctx context.Context, record domain.DailySaleRecord) (*domain.DailySaleRecord, error)
	ListDailySalesByStall(ctx context.Context, stallID string) ([]domain.DailySaleRecord, error)
	GetDailySale(ctx context.Context, id string) (*domain.DailySaleRecord, error)
	UpdateDailySaleProducts(ctx context.Context, id string, products []domain.SaleLineItem) error

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SaveProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateEvent(ctx context.Context, event domain.Event) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	SaveEvent(ctx context.Context, event domain.Event) error
	DeleteEvent(ctx context.Context, id string) error

	CreateFood(ctx context.Context, food domain.FoodItem) (*domain.FoodItem, error)
	ListFoods(ctx context.Context) ([]domain.FoodItem, error)
	GetFood(ctx context.Context, id string) (*domain.FoodItem, error)
	SaveFood(ctx context.Context, food domain.FoodItem) error
	DeleteFood(ctx context.Context, id string) error

	CreateFeedback(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error)
	ListFeedback(ctx context.Context) ([]domain.FeedbackEntry, error)

	GetSettings(ctx context.Context) (*domain.ExhibitionSettings, error)
	SaveSettings(ctx context.Context, settings domain.ExhibitionSettings) error
}

// Documents implements Repository on any docstore.Gateway.
type Documents struct {
	gw docstore.Gateway
}

func New(gw docstore.Gateway) *Documents {
	return &Documents{gw: gw}
}

func (d *Documents) CreateExhibition(ctx context.Context, exhibition domain.Exhibition) (*domain.Exhibition, error) {
	if exhibition.Name == "" {
		return nil, ErrInvalidDocument
	}
	exhibition.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionExhibitions, exhibition)
	if err != nil {
		return nil, err
	}
	exhibition.ID = id
	return &exhibition, nil
}

func (d *Documents) ListExhibitions(ctx context.Context) ([]domain.Exhibition, error) {
	exhibitions := make([]domain.Exhibition, 0, 8)
	if err := d.gw.List(ctx, docstore.CollectionExhibitions, &exhibitions); err != nil {
		return nil, err
	}
	return exhibitions, nil
}

func (d *Documents) GetExhibition(ctx context.Context, id string) (*domain.Exhibition, error) {
	var exhibition domain.Exhibition
	if err := d.gw.Get(ctx, docstore.CollectionExhibitions, id, &exhibition); err != nil {
		return nil, mapErr(err)
	}
	return &exhibition, nil
}

func (d *Documents) DeleteExhibition(ctx context.Context, id string) error {
	return mapErr(d.gw.Delete(ctx, docstore.CollectionExhibitions, id))
}

func (d *Documents) CreateRegistration(ctx context.Context, registration domain.Registration) (*domain.Registration, error) {
	if registration.ExhibitionID == "" || registration.StallNumber == "" {
		return nil, ErrInvalidDocument
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now().UTC()
	}
	registration.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionRegistrations, registration)
	if err != nil {
		return nil, err
	}
	registration.ID = id
	return &registration, nil
}

func (d *Documents) ListRegistrationsByExhibition(ctx context.Context, exhibitionID string) ([]domain.Registration, error) {
	registrations := make([]domain.Registration, 0, 32)
	if err := d.gw.Query(ctx, docstore.CollectionRegistrations, "exhibitionId", exhibitionID, &registrations); err != nil {
		return nil, err
	}
	return registrations, nil
}

func (d *Documents) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	var registration domain.Registration
	if err := d.gw.Get(ctx, docstore.CollectionRegistrations, id, &registration); err != nil {
		return nil, mapErr(err)
	}
	return &registration, nil
}

func (d *Documents) CreateDailySale(ctx context.Context, record domain.DailySaleRecord) (*domain.DailySaleRecord, error) {
	if record.ExhibitionID == "" || record.StallID == "" || record.Date == "" {
		return nil, ErrInvalidDocument
	}
	record.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionDailySales, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return &record, nil
}

// ListDailySalesByStall returns a stall's records newest date first.
func (d *Documents) ListDailySalesByStall(ctx context.Context, stallID string) ([]domain.DailySaleRecord, error) {
	records := make([]domain.DailySaleRecord, 0, 32)
	if err := d.gw.Query(ctx, docstore.CollectionDailySales, "stallId", stallID, &records); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records, nil
}

func (d *Documents) GetDailySale(ctx context.Context, id string) (*domain.DailySaleRecord, error) {
	var record domain.DailySaleRecord
	if err := d.gw.Get(ctx, docstore.CollectionDailySales, id, &record); err != nil {
		return nil, mapErr(err)
	}
	return &record, nil
}

func (d *Documents) UpdateDailySaleProducts(ctx context.Context, id string, products []domain.SaleLineItem) error {
	err := d.gw.UpdateFields(ctx, docstore.CollectionDailySales, id, map[string]any{
		"products": products,
	})
	return mapErr(err)
}

func (d *Documents) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" {
		return nil, ErrInvalidDocument
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionProducts, product)
	if err != nil {
		return nil, err
	}
	product.ID = id
	return &product, nil
}

func (d *Documents) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, 64)
	if err := d.gw.List(ctx, docstore.CollectionProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (d *Documents) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := d.gw.Get(ctx, docstore.CollectionProducts, id, &product); err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (d *Documents) SaveProduct(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return ErrInvalidDocument
	}
	return d.gw.Set(ctx, docstore.CollectionProducts, product.ID, product)
}

func (d *Documents) DeleteProduct(ctx context.Context, id string) error {
	return mapErr(d.gw.Delete(ctx, docstore.CollectionProducts, id))
}

func (d *Documents) CreateEvent(ctx context.Context, event domain.Event) (*domain.Event, error) {
	if event.Title == "" || event.Date == "" {
		return nil, ErrInvalidDocument
	}
	event.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionEvents, event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	return &event, nil
}

// ListEvents returns events in ascending date order for the schedule page.
func (d *Documents) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events := make([]domain.Event, 0, 32)
	if err := d.gw.List(ctx, docstore.CollectionEvents, &events); err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

func (d *Documents) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := d.gw.Get(ctx, docstore.CollectionEvents, id, &event); err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (d *Documents) SaveEvent(ctx context.Context, event domain.Event) error {
	if event.ID == "" {
		return ErrInvalidDocument
	}
	return d.gw.Set(ctx, docstore.CollectionEvents, event.ID, event)
}

func (d *Documents) DeleteEvent(ctx context.Context, id string) error {
	return mapErr(d.gw.Delete(ctx, docstore.CollectionEvents, id))
}

func (d *Documents) CreateFood(ctx context.Context, food domain.FoodItem) (*domain.FoodItem, error) {
	if food.Name == "" {
		return nil, ErrInvalidDocument
	}
	food.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionFoods, food)
	if err != nil {
		return nil, err
	}
	food.ID = id
	return &food, nil
}

func (d *Documents) ListFoods(ctx context.Context) ([]domain.FoodItem, error) {
	foods := make([]domain.FoodItem, 0, 32)
	if err := d.gw.List(ctx, docstore.CollectionFoods, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (d *Documents) GetFood(ctx context.Context, id string) (*domain.FoodItem, error) {
	var food domain.FoodItem
	if err := d.gw.Get(ctx, docstore.CollectionFoods, id, &food); err != nil {
		return nil, mapErr(err)
	}
	return &food, nil
}

func (d *Documents) SaveFood(ctx context.Context, food domain.FoodItem) error {
	if food.ID == "" {
		return ErrInvalidDocument
	}
	return d.gw.Set(ctx, docstore.CollectionFoods, food.ID, food)
}

func (d *Documents) DeleteFood(ctx context.Context, id string) error {
	return mapErr(d.gw.Delete(ctx, docstore.CollectionFoods, id))
}

func (d *Documents) CreateFeedback(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	if entry.Name == "" || entry.Email == "" {
		return nil, ErrInvalidDocument
	}
	entry.ID = ""
	id, err := d.gw.Insert(ctx, docstore.CollectionFeedback, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return &entry, nil
}

// ListFeedback returns entries newest first.
func (d *Documents) ListFeedback(ctx context.Context) ([]domain.FeedbackEntry, error) {
	entries := make([]domain.FeedbackEntry, 0, 64)
	if err := d.gw.List(ctx, docstore.CollectionFeedback, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

func (d *Documents) GetSettings(ctx context.Context) (*domain.ExhibitionSettings, error) {
	var settings domain.ExhibitionSettings
	if err := d.gw.Get(ctx, docstore.CollectionSettings, SettingsDocID, &settings); err != nil {
		return nil, mapErr(err)
	}
	return &settings, nil
}

func (d *Documents) SaveSettings(ctx context.Context, settings domain.ExhibitionSettings) error {
	return d.gw.Set(ctx, docstore.CollectionSettings, SettingsDocID, settings)
}

func mapErr(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

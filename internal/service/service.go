package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"mahotsav/backend/internal/cache"
	"mahotsav/backend/internal/domain"
	"mahotsav/backend/internal/sales"
	"mahotsav/backend/internal/store"
)

var (
	ErrAdminRequired    = errors.New("admin role required")
	ErrInvalidInput     = errors.New("invalid input")
	ErrOptionNotOffered = errors.New("product is not offered by this stall")
)

const settingsCacheKey = "settings:exhibition"

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo        store.Repository
	settings    cache.SettingsCache
	settingsTTL time.Duration
}

func New(repo store.Repository, settings cache.SettingsCache, settingsTTL time.Duration) *Service {
	if settings == nil {
		settings = cache.NoopSettingsCache{}
	}
	if settingsTTL < time.Second {
		settingsTTL = time.Minute
	}

	return &Service{
		repo:        repo,
		settings:    settings,
		settingsTTL: settingsTTL,
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return ErrAdminRequired
	}
	return nil
}

func (s *Service) ListExhibitions(ctx context.Context) ([]domain.Exhibition, error) {
	return s.repo.ListExhibitions(ctx)
}

func (s *Service) CreateExhibition(ctx context.Context, req domain.ExhibitionCreateRequest) (domain.Exhibition, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Exhibition{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Exhibition{}, fmt.Errorf("%w: exhibition name is required", ErrInvalidInput)
	}

	created, err := s.repo.CreateExhibition(ctx, domain.Exhibition{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
	})
	if err != nil {
		return domain.Exhibition{}, err
	}
	return *created, nil
}

func (s *Service) DeleteExhibition(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteExhibition(ctx, id)
}

func (s *Service) CreateRegistration(ctx context.Context, req domain.RegistrationCreateRequest) (domain.Registration, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Registration{}, err
	}

	req.ExhibitionID = strings.TrimSpace(req.ExhibitionID)
	req.StallNumber = strings.TrimSpace(req.StallNumber)
	if req.ExhibitionID == "" || req.StallNumber == "" {
		return domain.Registration{}, fmt.Errorf("%w: exhibition and stall number are required", ErrInvalidInput)
	}
	if _, err := s.repo.GetExhibition(ctx, req.ExhibitionID); err != nil {
		return domain.Registration{}, err
	}

	inventory := make([]domain.StallInventoryItem, 0, len(req.Inventory))
	for _, item := range req.Inventory {
		item.ProductCategory = strings.TrimSpace(item.ProductCategory)
		item.ProductName = strings.TrimSpace(item.ProductName)
		if item.ProductCategory == "" || item.ProductName == "" {
			continue
		}
		inventory = append(inventory, item)
	}

	created, err := s.repo.CreateRegistration(ctx, domain.Registration{
		ExhibitionID: req.ExhibitionID,
		StallNumber:  req.StallNumber,
		District:     strings.TrimSpace(req.District),
		Participants: req.Participants,
		Inventory:    inventory,
	})
	if err != nil {
		return domain.Registration{}, err
	}
	return *created, nil
}

// ListRegistrations returns the raw registrations of one exhibition, without
// the stall-number dedupe the sales form applies.
func (s *Service) ListRegistrations(ctx context.Context, exhibitionID string) ([]domain.Registration, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	exhibitionID = strings.TrimSpace(exhibitionID)
	if exhibitionID == "" {
		return nil, fmt.Errorf("%w: exhibition is required", ErrInvalidInput)
	}
	return s.repo.ListRegistrationsByExhibition(ctx, exhibitionID)
}

// StallsForExhibition lists the stalls offered on the sales form. Duplicate
// registrations for the same stall number collapse to the first one seen.
func (s *Service) StallsForExhibition(ctx context.Context, exhibitionID string) ([]domain.Stall, error) {
	registrations, err := s.repo.ListRegistrationsByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(registrations))
	stalls := make([]domain.Stall, 0, len(registrations))
	for _, reg := range registrations {
		if seen[reg.StallNumber] {
			continue
		}
		seen[reg.StallNumber] = true

		participantName := "Unknown"
		if len(reg.Participants) > 0 && reg.Participants[0].Name != "" {
			participantName = reg.Participants[0].Name
		}
		stalls = append(stalls, domain.Stall{
			ID:              reg.ID,
			StallNumber:     reg.StallNumber,
			ParticipantName: participantName,
			Inventory:       reg.Inventory,
		})
	}
	return stalls, nil
}

// StallOptions resolves the selectable (category, product) pairs for a stall
// from its registered inventory.
func (s *Service) StallOptions(ctx context.Context, stallID string) (domain.StallOptionsResponse, error) {
	registration, err := s.repo.GetRegistration(ctx, stallID)
	if err != nil {
		return domain.StallOptionsResponse{}, err
	}

	options := sales.ResolveOptions(registration.Inventory)
	return domain.StallOptionsResponse{
		StallID:    registration.ID,
		Options:    options,
		Categories: sales.Categories(options),
	}, nil
}

// SubmitDailySale validates and persists a new sales record. Line items are
// stored exactly as entered; no synthetic total is injected on submission.
func (s *Service) SubmitDailySale(ctx context.Context, req domain.DailySaleSubmitRequest) (domain.DailySaleRecord, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.DailySaleRecord{}, err
	}

	req.ExhibitionID = strings.TrimSpace(req.ExhibitionID)
	req.StallID = strings.TrimSpace(req.StallID)
	if req.ExhibitionID == "" || req.StallID == "" {
		return domain.DailySaleRecord{}, fmt.Errorf("%w: exhibition and stall are required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return domain.DailySaleRecord{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if len(req.Products) == 0 {
		return domain.DailySaleRecord{}, fmt.Errorf("%w: at least one sale item is required", ErrInvalidInput)
	}
	if err := sales.ValidateLineItems(req.Products); err != nil {
		return domain.DailySaleRecord{}, err
	}

	registration, err := s.repo.GetRegistration(ctx, req.StallID)
	if err != nil {
		return domain.DailySaleRecord{}, err
	}
	options := sales.ResolveOptions(registration.Inventory)
	for _, item := range req.Products {
		if !offered(options, item) {
			return domain.DailySaleRecord{}, fmt.Errorf("%w: %s / %s", ErrOptionNotOffered, item.ProductCategory, item.ProductName)
		}
	}

	created, err := s.repo.CreateDailySale(ctx, domain.DailySaleRecord{
		ExhibitionID: req.ExhibitionID,
		StallID:      req.StallID,
		Date:         req.Date,
		Products:     req.Products,
	})
	if err != nil {
		return domain.DailySaleRecord{}, err
	}

	log.Printf("[service] daily sale recorded stall=%s date=%s items=%d", created.StallID, created.Date, len(created.Products))
	return *created, nil
}

// HistoricalSales returns a stall's prior records, newest date first.
func (s *Service) HistoricalSales(ctx context.Context, stallID string) ([]domain.DailySaleRecord, error) {
	return s.repo.ListDailySalesByStall(ctx, stallID)
}

// EditDailySale replaces a record's line items wholesale. The daily total
// line is recomputed immediately before the write, so a stale total never
// survives an edit.
func (s *Service) EditDailySale(ctx context.Context, id string, req domain.DailySaleUpdateRequest) (domain.DailySaleRecord, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.DailySaleRecord{}, err
	}

	record, err := s.repo.GetDailySale(ctx, id)
	if err != nil {
		return domain.DailySaleRecord{}, err
	}

	products := sales.RecomputeTotal(req.Products)
	if err := s.repo.UpdateDailySaleProducts(ctx, record.ID, products); err != nil {
		return domain.DailySaleRecord{}, err
	}

	record.Products = products
	log.Printf("[service] daily sale edited id=%s items=%d total=%d", record.ID, len(products), sales.DailyTotal(products))
	return *record, nil
}

func offered(options []domain.SaleOption, item domain.SaleLineItem) bool {
	for _, opt := range options {
		if opt.ProductCategory == item.ProductCategory && opt.ProductName == item.ProductName {
			return true
		}
	}
	return false
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" {
		return domain.Product{}, fmt.Errorf("%w: product name and category are required", ErrInvalidInput)
	}
	if req.PriceRupees < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		PriceRupees: req.PriceRupees,
		Available:   true,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		existing.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	if req.ImageURL != nil {
		existing.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.PriceRupees != nil {
		if *req.PriceRupees < 0 {
			return domain.Product{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		existing.PriceRupees = *req.PriceRupees
	}
	if req.Available != nil {
		existing.Available = *req.Available
	}
	if existing.Name == "" || existing.Category == "" {
		return domain.Product{}, fmt.Errorf("%w: product name and category are required", ErrInvalidInput)
	}

	if err := s.repo.SaveProduct(ctx, *existing); err != nil {
		return domain.Product{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *Service) CreateEvent(ctx context.Context, req domain.EventCreateRequest) (domain.Event, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Event{}, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return domain.Event{}, fmt.Errorf("%w: event title is required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return domain.Event{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	created, err := s.repo.CreateEvent(ctx, domain.Event{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       strings.TrimSpace(req.Venue),
		Images:      req.Images,
	})
	if err != nil {
		return domain.Event{}, err
	}
	return *created, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, req domain.EventUpdateRequest) (domain.Event, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Event{}, err
	}

	existing, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	if req.Title != nil {
		existing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return domain.Event{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		existing.Date = *req.Date
	}
	if req.StartTime != nil {
		existing.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		existing.EndTime = *req.EndTime
	}
	if req.Venue != nil {
		existing.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.Images != nil {
		existing.Images = *req.Images
	}
	if existing.Title == "" {
		return domain.Event{}, fmt.Errorf("%w: event title is required", ErrInvalidInput)
	}

	if err := s.repo.SaveEvent(ctx, *existing); err != nil {
		return domain.Event{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, id)
}

func (s *Service) ListFoods(ctx context.Context) ([]domain.FoodItem, error) {
	return s.repo.ListFoods(ctx)
}

func (s *Service) CreateFood(ctx context.Context, req domain.FoodCreateRequest) (domain.FoodItem, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.FoodItem{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.FoodItem{}, fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}
	if req.PriceRupees < 0 {
		return domain.FoodItem{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	created, err := s.repo.CreateFood(ctx, domain.FoodItem{
		Name:        req.Name,
		StallName:   strings.TrimSpace(req.StallName),
		Description: strings.TrimSpace(req.Description),
		PriceRupees: req.PriceRupees,
		IsVeg:       req.IsVeg,
		Images:      req.Images,
	})
	if err != nil {
		return domain.FoodItem{}, err
	}
	return *created, nil
}

func (s *Service) UpdateFood(ctx context.Context, id string, req domain.FoodUpdateRequest) (domain.FoodItem, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.FoodItem{}, err
	}

	existing, err := s.repo.GetFood(ctx, id)
	if err != nil {
		return domain.FoodItem{}, err
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.StallName != nil {
		existing.StallName = strings.TrimSpace(*req.StallName)
	}
	if req.Description != nil {
		existing.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceRupees != nil {
		if *req.PriceRupees < 0 {
			return domain.FoodItem{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		existing.PriceRupees = *req.PriceRupees
	}
	if req.IsVeg != nil {
		existing.IsVeg = *req.IsVeg
	}
	if req.Images != nil {
		existing.Images = *req.Images
	}
	if existing.Name == "" {
		return domain.FoodItem{}, fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}

	if err := s.repo.SaveFood(ctx, *existing); err != nil {
		return domain.FoodItem{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteFood(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteFood(ctx, id)
}

// SubmitFeedback stores a visitor feedback entry and grants a discount code
// plus a suggested stall drawn from the visitor's area of interest.
func (s *Service) SubmitFeedback(ctx context.Context, req domain.FeedbackSubmitRequest) (domain.FeedbackEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return domain.FeedbackEntry{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	entry := domain.FeedbackEntry{
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Name:               req.Name,
		Gender:             req.Gender,
		Email:              req.Email,
		Mobile:             strings.TrimSpace(req.Mobile),
		Location:           strings.TrimSpace(req.Location),
		AreaOfInterest:     req.AreaOfInterest,
		Responses:          req.Responses,
		AdditionalFeedback: strings.TrimSpace(req.AdditionalFeedback),
		DiscountCode:       generateDiscountCode(),
		AssignedStall:      assignStall(req.AreaOfInterest),
	}

	created, err := s.repo.CreateFeedback(ctx, entry)
	if err != nil {
		return domain.FeedbackEntry{}, err
	}
	return *created, nil
}

func (s *Service) ListFeedback(ctx context.Context) ([]domain.FeedbackEntry, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListFeedback(ctx)
}

// GetSettings serves the site settings, falling back to the built-in defaults
// when nothing has been saved yet. Reads go through the settings cache.
func (s *Service) GetSettings(ctx context.Context) (domain.ExhibitionSettings, error) {
	if cached, ok, err := s.settings.Get(ctx, settingsCacheKey); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: settings cache read failed: %v", err)
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			defaults := DefaultSettings()
			return defaults, nil
		}
		return domain.ExhibitionSettings{}, err
	}

	if err := s.settings.Set(ctx, settingsCacheKey, settings, s.settingsTTL); err != nil {
		log.Printf("[service] WARN: settings cache write failed: %v", err)
	}
	return *settings, nil
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.ExhibitionSettings) (domain.ExhibitionSettings, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.ExhibitionSettings{}, err
	}

	settings.Title = strings.TrimSpace(settings.Title)
	if settings.Title == "" {
		return domain.ExhibitionSettings{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if settings.MarqueeSpeed <= 0 {
		settings.MarqueeSpeed = 30
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return domain.ExhibitionSettings{}, err
	}
	if err := s.settings.Invalidate(ctx, settingsCacheKey); err != nil {
		log.Printf("[service] WARN: settings cache invalidation failed: %v", err)
	}
	return settings, nil
}

// DefaultSettings is served until an administrator saves a settings document.
func DefaultSettings() domain.ExhibitionSettings {
	return domain.ExhibitionSettings{
		Title:       "Gonasika Kendujhar Mahotsaav",
		Subtitle:    "and Regional Saras",
		Year:        "2024",
		WelcomeText: "Welcome to the Exhibition",
		HeaderColor: "#1e40af",
		HeaderSize:  "text-3xl",
		MarqueeMessages: []string{
			"🎉 Please fill the Visitor Feedback form and win assured discount at choice of ORMAS store!",
			"🎁 Get a chance to win a bumper prize at lucky draw!",
		},
		MarqueeSpeed: 30,
		MarqueeColor: "#1e40af",
	}
}

const discountCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateDiscountCode returns a code like ORMAS-7K2Q-15; the trailing 15 is
// the discount percentage.
func generateDiscountCode() string {
	code := make([]byte, 4)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(discountCharset))))
		if err != nil {
			code[i] = discountCharset[i]
			continue
		}
		code[i] = discountCharset[n.Int64()]
	}
	return fmt.Sprintf("ORMAS-%s-15", code)
}

// stallRanges maps an area of interest to the stall number block reserved for
// that category on the fairground.
var stallRanges = map[string][2]int{
	"Handloom":                    {1, 10},
	"Handicraft":                  {11, 20},
	"Minor Forest Products (MFP)": {21, 25},
	"Food & Spices":               {26, 30},
	"Home Furnishing":             {31, 35},
	"Woolen Knit Wear":            {36, 40},
	"Leather Products":            {41, 45},
	"Jewellery":                   {46, 50},
}

func assignStall(category string) string {
	r, ok := stallRanges[category]
	if !ok {
		r = [2]int{1, 50}
	}
	span := int64(r[1] - r[0] + 1)
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return fmt.Sprintf("Stall %d", r[0])
	}
	return fmt.Sprintf("Stall %d", r[0]+int(n.Int64()))
}

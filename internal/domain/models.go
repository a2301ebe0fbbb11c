package domain

import "time"

// StallInventoryItem is one sellable (category, product) pair copied from a
// stall's registration. Reference data only; never mutated by the sales flow.
type StallInventoryItem struct {
	ProductName     string `json:"productName"`
	ProductCategory string `json:"productCategory"`
}

// SaleOption is a derived, read-only (category, product) pair a stall may
// report sales against. Regenerated on every lookup, never persisted.
type SaleOption struct {
	ProductCategory string `json:"productCategory"`
	ProductName     string `json:"productName"`
}

// SaleLineItem is one entry in a daily sales submission. QuantitySold and
// SalesValue are whole units and whole rupees, as entered on the form.
type SaleLineItem struct {
	ProductName     string `json:"productName"`
	ProductCategory string `json:"productCategory"`
	QuantitySold    int64  `json:"quantitySold"`
	SalesValue      int64  `json:"salesValue"`
}

// DailySaleRecord is the ordered line-item list for one stall on one date.
// Date is an ISO calendar date (2006-01-02). Edits replace Products wholesale.
type DailySaleRecord struct {
	ID           string         `json:"id"`
	ExhibitionID string         `json:"exhibitionId"`
	StallID      string         `json:"stallId"`
	Date         string         `json:"date"`
	Products     []SaleLineItem `json:"products"`
}

type DailySaleSubmitRequest struct {
	ExhibitionID string         `json:"exhibitionId"`
	StallID      string         `json:"stallId"`
	Date         string         `json:"date"`
	Products     []SaleLineItem `json:"products"`
}

type DailySaleUpdateRequest struct {
	Products []SaleLineItem `json:"products"`
}

type StallOptionsResponse struct {
	StallID    string       `json:"stallId"`
	Options    []SaleOption `json:"options"`
	Categories []string     `json:"categories"`
}

type Participant struct {
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Registration is a stall registration for one exhibition. Inventory is the
// source the sale option set is derived from.
type Registration struct {
	ID           string               `json:"id"`
	ExhibitionID string               `json:"exhibitionId"`
	StallNumber  string               `json:"stallNumber"`
	District     string               `json:"district,omitempty"`
	Participants []Participant        `json:"participants"`
	Inventory    []StallInventoryItem `json:"inventory"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type RegistrationCreateRequest struct {
	ExhibitionID string               `json:"exhibitionId"`
	StallNumber  string               `json:"stallNumber"`
	District     string               `json:"district"`
	Participants []Participant        `json:"participants"`
	Inventory    []StallInventoryItem `json:"inventory"`
}

// Stall is the deduplicated registration view offered on the sales form.
type Stall struct {
	ID              string               `json:"id"`
	StallNumber     string               `json:"stallNumber"`
	ParticipantName string               `json:"participantName"`
	Inventory       []StallInventoryItem `json:"inventory"`
}

type Exhibition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Venue       string `json:"venue,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type ExhibitionCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// ExhibitionSettings drives the public site header and marquee banner.
// Stored as a single well-known document.
type ExhibitionSettings struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Year            string   `json:"year"`
	WelcomeText     string   `json:"welcomeText"`
	HeaderColor     string   `json:"headerColor"`
	HeaderSize      string   `json:"headerSize"`
	MarqueeMessages []string `json:"marqueeMessages"`
	MarqueeSpeed    int      `json:"marqueeSpeed"`
	MarqueeColor    string   `json:"marqueeColor"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PriceRupees int64     `json:"priceRupees"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	PriceRupees int64  `json:"priceRupees"`
}

type ProductUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	PriceRupees *int64  `json:"priceRupees,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type EventCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Venue       string   `json:"venue"`
	Images      []string `json:"images"`
}

type EventUpdateRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Date        *string   `json:"date,omitempty"`
	StartTime   *string   `json:"startTime,omitempty"`
	EndTime     *string   `json:"endTime,omitempty"`
	Venue       *string   `json:"venue,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

type FoodItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	StallName   string   `json:"stallName,omitempty"`
	Description string   `json:"description,omitempty"`
	PriceRupees int64    `json:"priceRupees"`
	IsVeg       bool     `json:"isVeg"`
	Images      []string `json:"images,omitempty"`
}

type FoodCreateRequest struct {
	Name        string   `json:"name"`
	StallName   string   `json:"stallName"`
	Description string   `json:"description"`
	PriceRupees int64    `json:"priceRupees"`
	IsVeg       bool     `json:"isVeg"`
	Images      []string `json:"images"`
}

type FoodUpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	StallName   *string   `json:"stallName,omitempty"`
	Description *string   `json:"description,omitempty"`
	PriceRupees *int64    `json:"priceRupees,omitempty"`
	IsVeg       *bool     `json:"isVeg,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

type FeedbackResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FeedbackEntry struct {
	ID                 string             `json:"id"`
	Timestamp          string             `json:"timestamp"`
	Name               string             `json:"name"`
	Gender             string             `json:"gender,omitempty"`
	Email              string             `json:"email"`
	Mobile             string             `json:"mobile,omitempty"`
	Location           string             `json:"location,omitempty"`
	AreaOfInterest     string             `json:"areaOfInterest"`
	Responses          []FeedbackResponse `json:"responses,omitempty"`
	AdditionalFeedback string             `json:"additionalFeedback,omitempty"`
	DiscountCode       string             `json:"discountCode,omitempty"`
	AssignedStall      string             `json:"assignedStall,omitempty"`
}

type FeedbackSubmitRequest struct {
	Name               string             `json:"name"`
	Gender             string             `json:"gender"`
	Email              string             `json:"email"`
	Mobile             string             `json:"mobile"`
	Location           string             `json:"location"`
	AreaOfInterest     string             `json:"areaOfInterest"`
	Responses          []FeedbackResponse `json:"responses"`
	AdditionalFeedback string             `json:"additionalFeedback"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expiresAt"`
}

// Actor is the authenticated console operator attached to a request context.
type Actor struct {
	Role string
}

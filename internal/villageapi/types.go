package villageapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is an upstream identifier. The API sends numbers for some resources
// and strings for others; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts the date layouts the API mixes across resources.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Amount decodes monetary values sent either as numbers or numeric strings.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	ID        ID     `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type AnnouncementCategory struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Announcement struct {
	ID         ID                    `json:"id"`
	Title      string                `json:"title"`
	Body       string                `json:"body"`
	Date       Timestamp             `json:"date"`
	CategoryID ID                    `json:"categoryId"`
	Category   *AnnouncementCategory `json:"category,omitempty"`
	CreatedAt  Timestamp             `json:"createdAt"`
	UpdatedAt  Timestamp             `json:"updatedAt"`
}

type NewsCategory struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type NewsArticle struct {
	ID            ID             `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Summary       string         `json:"summary"`
	Body          string         `json:"body"`
	ImageURL      string         `json:"imageUrl"`
	IsHighlighted bool           `json:"isHighlighted"`
	Author        string         `json:"author"`
	Date          Timestamp      `json:"date"`
	Categories    []NewsCategory `json:"categories"`
}

type FinanceItem struct {
	ID          ID     `json:"id"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	PeriodID    ID     `json:"periodId"`
}

// FinanceSummary is computed by the API and never recomputed locally.
type FinanceSummary struct {
	TotalIncome      Amount `json:"totalIncome"`
	TotalExpense     Amount `json:"totalExpense"`
	SurplusOrDeficit Amount `json:"surplusOrDeficit"`
	NetFinancing     Amount `json:"netFinancing"`
}

type FinancePeriod struct {
	ID         ID             `json:"id"`
	Year       int            `json:"year"`
	Incomes    []FinanceItem  `json:"incomes"`
	Expenses   []FinanceItem  `json:"expenses"`
	Financings []FinanceItem  `json:"financings"`
	Summary    FinanceSummary `json:"summary"`
}

// FinanceItemKind selects one of the period's child collections.
type FinanceItemKind string

const (
	FinanceIncome    FinanceItemKind = "income"
	FinanceExpense   FinanceItemKind = "expense"
	FinanceFinancing FinanceItemKind = "financing"
)

func (k FinanceItemKind) Valid() bool {
	switch k {
	case FinanceIncome, FinanceExpense, FinanceFinancing:
		return true
	}
	return false
}

type Destination struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
}

type GuestStatus string

const (
	GuestPending  GuestStatus = "PENDING"
	GuestApproved GuestStatus = "APPROVED"
	GuestRejected GuestStatus = "REJECTED"
)

type StayDuration string

const (
	StayUnderOneWeek StayDuration = "KURANG_DARI_1_MINGGU"
	StayOneWeek      StayDuration = "1_MINGGU"
	StayTwoWeeks     StayDuration = "2_MINGGU"
	StayOneMonth     StayDuration = "1_BULAN"
	StayOverOneMonth StayDuration = "LEBIH_DARI_1_BULAN"
)

var StayDurations = []string{
	string(StayUnderOneWeek),
	string(StayOneWeek),
	string(StayTwoWeeks),
	string(StayOneMonth),
	string(StayOverOneMonth),
}

// Label is the Indonesian text shown to visitors and written to exports.
func (d StayDuration) Label() string {
	switch d {
	case StayUnderOneWeek:
		return "Kurang dari 1 minggu"
	case StayOneWeek:
		return "1 minggu"
	case StayTwoWeeks:
		return "2 minggu"
	case StayOneMonth:
		return "1 bulan"
	case StayOverOneMonth:
		return "Lebih dari 1 bulan"
	}
	return string(d)
}

type GuestReport struct {
	ID            ID           `json:"id"`
	TrackingCode  string       `json:"trackingCode"`
	Name          string       `json:"name"`
	NationalID    string       `json:"nationalId"`
	OriginAddress string       `json:"originAddress"`
	Purpose       string       `json:"purpose"`
	StayDuration  StayDuration `json:"stayDuration"`
	StayLocation  string       `json:"stayLocation"`
	Phone         string       `json:"phone"`
	Status        GuestStatus  `json:"status"`
	StatusMessage string       `json:"statusMessage"`
	CreatedAt     Timestamp    `json:"createdAt"`
	UpdatedAt     Timestamp    `json:"updatedAt"`
}

type SubmissionStatus string

const (
	SubmissionProcessing SubmissionStatus = "DIPROSES"
	SubmissionDone       SubmissionStatus = "SELESAI"
)

type Submission struct {
	ID         ID               `json:"id"`
	SenderName string           `json:"senderName"`
	WhatsApp   string           `json:"whatsapp"`
	Category   string           `json:"category"`
	Notes      string           `json:"notes"`
	FileURL    string           `json:"fileUrl"`
	FileName   string           `json:"fileName"`
	Status     SubmissionStatus `json:"status"`
	CreatedAt  Timestamp        `json:"createdAt"`
	UpdatedAt  Timestamp        `json:"updatedAt"`
}

type LetterFormat struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	FileURL       string `json:"fileUrl"`
	DownloadCount int    `json:"downloadCount"`
}

type HeroBanner struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Order    int    `json:"order"`
}

type VillageProfile struct {
	Name       string `json:"name"`
	Vision     string `json:"vision"`
	Mission    string `json:"mission"`
	History    string `json:"history"`
	Address    string `json:"address"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Area       string `json:"area"`
	Population int    `json:"population"`
}

package dto

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/erp-api/internal/models"
)

// Details is the kind-specific payload stored with a document.
type Details interface {
	// DefaultTitle is used when the request leaves the title empty.
	DefaultTitle() string
	// Describe lists label/value pairs for printed sheets.
	Describe() [][2]string
	// Normalize fills derived values before validation and storage.
	Normalize()
}

// NewDetails returns an empty payload for kind.
func NewDetails(kind models.DocumentKindKey) (Details, error) {
	switch kind {
	case models.KindLeave:
		return &LeaveDetails{}, nil
	case models.KindBooking:
		return &BookingDetails{}, nil
	case models.KindEnquiry:
		return &EnquiryDetails{}, nil
	case models.KindQuote:
		return &QuoteDetails{}, nil
	case models.KindOffer:
		return &OfferDetails{}, nil
	}
	return nil, fmt.Errorf("unknown document kind %q", kind)
}

const dateLayout = "2006-01-02"

// LeaveDetails is an employee leave request.
type LeaveDetails struct {
	EmployeeID string    `json:"employeeId" validate:"required"`
	LeaveType  string    `json:"leaveType" validate:"required,oneof=annual sick unpaid maternity paternity other"`
	From       time.Time `json:"from" validate:"required"`
	To         time.Time `json:"to" validate:"required,gtefield=From"`
	Days       int       `json:"days"`
	Reason     string    `json:"reason" validate:"max=500"`
}

func (d *LeaveDetails) DefaultTitle() string {
	kind := d.LeaveType
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return fmt.Sprintf("%s leave %s", kind, d.From.Format(dateLayout))
}

func (d *LeaveDetails) Describe() [][2]string {
	return [][2]string{
		{"Employee", d.EmployeeID},
		{"Type", d.LeaveType},
		{"From", d.From.Format(dateLayout)},
		{"To", d.To.Format(dateLayout)},
		{"Days", fmt.Sprintf("%d", d.Days)},
		{"Reason", d.Reason},
	}
}

func (d *LeaveDetails) Normalize() {
	d.LeaveType = strings.ToLower(strings.TrimSpace(d.LeaveType))
	if d.From.IsZero() || d.To.Before(d.From) {
		d.Days = 0
		return
	}
	from := d.From.Truncate(24 * time.Hour)
	to := d.To.Truncate(24 * time.Hour)
	d.Days = int(to.Sub(from).Hours()/24) + 1
}

// BookingDetails is a customer booking against a unit.
type BookingDetails struct {
	Customer    string    `json:"customer" validate:"required"`
	Unit        string    `json:"unit" validate:"required"`
	BookingDate time.Time `json:"bookingDate" validate:"required"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Currency    string    `json:"currency" validate:"omitempty,len=3"`
}

func (d *BookingDetails) DefaultTitle() string {
	return fmt.Sprintf("%s - %s", d.Customer, d.Unit)
}

func (d *BookingDetails) Describe() [][2]string {
	return [][2]string{
		{"Customer", d.Customer},
		{"Unit", d.Unit},
		{"Booking date", d.BookingDate.Format(dateLayout)},
		{"Amount", formatMoney(d.Amount, d.Currency)},
	}
}

func (d *BookingDetails) Normalize() {
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
}

// EnquiryDetails is a sales enquiry from a prospect.
type EnquiryDetails struct {
	Customer      string  `json:"customer" validate:"required"`
	Source        string  `json:"source" validate:"max=100"`
	Subject       string  `json:"subject" validate:"required,max=200"`
	ExpectedValue float64 `json:"expectedValue" validate:"gte=0"`
}

func (d *EnquiryDetails) DefaultTitle() string { return d.Subject }

func (d *EnquiryDetails) Describe() [][2]string {
	return [][2]string{
		{"Customer", d.Customer},
		{"Source", d.Source},
		{"Subject", d.Subject},
		{"Expected value", formatMoney(d.ExpectedValue, "")},
	}
}

func (d *EnquiryDetails) Normalize() {
	d.Subject = strings.TrimSpace(d.Subject)
}

// QuoteItem is one priced line of a quote.
type QuoteItem struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Amount      float64 `json:"amount"`
}

// QuoteDetails is a sales quotation.
type QuoteDetails struct {
	Customer   string      `json:"customer" validate:"required"`
	ValidUntil time.Time   `json:"validUntil" validate:"required"`
	Currency   string      `json:"currency" validate:"omitempty,len=3"`
	Items      []QuoteItem `json:"items" validate:"required,min=1,dive"`
	Total      float64     `json:"total"`
}

func (d *QuoteDetails) DefaultTitle() string {
	return fmt.Sprintf("Quote for %s", d.Customer)
}

func (d *QuoteDetails) Describe() [][2]string {
	out := [][2]string{
		{"Customer", d.Customer},
		{"Valid until", d.ValidUntil.Format(dateLayout)},
	}
	for i, item := range d.Items {
		out = append(out, [2]string{fmt.Sprintf("Item %d", i+1), fmt.Sprintf("%s x%g @ %.2f", item.Description, item.Quantity, item.UnitPrice)})
	}
	return append(out, [2]string{"Total", formatMoney(d.Total, d.Currency)})
}

// Normalize recomputes line amounts and the total, rounded to cents.
func (d *QuoteDetails) Normalize() {
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	total := 0.0
	for i := range d.Items {
		d.Items[i].Amount = roundCents(d.Items[i].Quantity * d.Items[i].UnitPrice)
		total += d.Items[i].Amount
	}
	d.Total = roundCents(total)
}

// OfferDetails is a recruitment offer letter.
type OfferDetails struct {
	CandidateName string    `json:"candidateName" validate:"required"`
	Position      string    `json:"position" validate:"required"`
	Salary        float64   `json:"salary" validate:"gt=0"`
	JoiningDate   time.Time `json:"joiningDate" validate:"required"`
}

func (d *OfferDetails) DefaultTitle() string {
	return fmt.Sprintf("%s - %s", d.CandidateName, d.Position)
}

func (d *OfferDetails) Describe() [][2]string {
	return [][2]string{
		{"Candidate", d.CandidateName},
		{"Position", d.Position},
		{"Salary", formatMoney(d.Salary, "")},
		{"Joining date", d.JoiningDate.Format(dateLayout)},
	}
}

func (d *OfferDetails) Normalize() {
	d.CandidateName = strings.TrimSpace(d.CandidateName)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatMoney(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

package models

import "strings"

// DocumentKindKey identifies an approvable entity type.
type DocumentKindKey string

const (
	KindLeave   DocumentKindKey = "leave"
	KindBooking DocumentKindKey = "booking"
	KindEnquiry DocumentKindKey = "enquiry"
	KindQuote   DocumentKindKey = "quote"
	KindOffer   DocumentKindKey = "offer"
)

// DocumentKind describes how one entity type maps onto the shared approval workflow.
type DocumentKind struct {
	Key         DocumentKindKey
	Table       string
	Feature     string
	DisplayName string
	Route       string

	// CounterEntity is empty for kinds without a human-readable sequence id.
	CounterEntity string
	DefaultPrefix string

	Stages []ApprovalStatus
	// ClearApprovalsOnReview also clears approved1/approved2 when a document
	// is sent back to reviewed. Historically only verified and acknowledged were cleared.
	ClearApprovalsOnReview bool
}

// Sequenced reports whether documents of this kind carry a sequence id.
func (k DocumentKind) Sequenced() bool {
	return k.CounterEntity != ""
}

var documentKinds = []DocumentKind{
	{
		Key:         KindLeave,
		Table:       "leaves",
		Feature:     "leavemanagement",
		DisplayName: "Leave",
		Route:       "leaves",
		Stages:      SignOffStages,
	},
	{
		Key:           KindBooking,
		Table:         "bookings",
		Feature:       "booking",
		DisplayName:   "Booking",
		Route:         "bookings",
		CounterEntity: "Bookings",
		DefaultPrefix: "BK-",
		Stages:        SignOffStages,
	},
	{
		Key:           KindEnquiry,
		Table:         "enquiries",
		Feature:       "enquiry",
		DisplayName:   "Enquiry",
		Route:         "enquiries",
		CounterEntity: "Enquiries",
		DefaultPrefix: "EN-",
		Stages:        SignOffStages,
	},
	{
		Key:           KindQuote,
		Table:         "quotes",
		Feature:       "quotes",
		DisplayName:   "Quote",
		Route:         "quotes",
		CounterEntity: "Quotes",
		DefaultPrefix: "Q-",
		Stages:        SignOffStages,
	},
	{
		Key:         KindOffer,
		Table:       "recruit_offers",
		Feature:     "offer",
		DisplayName: "Offer Letter",
		Route:       "offers",
		Stages:      []ApprovalStatus{ApprovalReviewed, ApprovalVerified, ApprovalApproved1},
	},
}

// DocumentKinds returns every registered kind.
func DocumentKinds() []DocumentKind {
	out := make([]DocumentKind, len(documentKinds))
	copy(out, documentKinds)
	return out
}

// LookupKind resolves a kind by key.
func LookupKind(key DocumentKindKey) (DocumentKind, bool) {
	for _, kind := range documentKinds {
		if kind.Key == DocumentKindKey(strings.ToLower(string(key))) {
			return kind, true
		}
	}
	return DocumentKind{}, false
}

// ApprovalFeatures lists the feature keys seeded into every organization's approval policy.
func ApprovalFeatures() []string {
	features := make([]string, 0, len(documentKinds))
	for _, kind := range documentKinds {
		features = append(features, kind.Feature)
	}
	return features
}

package leads

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

var validStatuses = map[Status]struct{}{
	StatusNew:     {},
	StatusRead:    {},
	StatusReplied: {},
}

func IsValidStatus(value Status) bool {
	_, ok := validStatuses[value]
	return ok
}

func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !IsValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Pending reports whether the lead still needs an answer.
func (s Status) Pending() bool {
	return s != StatusReplied
}

type Kind string

const (
	KindQuote   Kind = "quote"
	KindEnquiry Kind = "enquiry"
)

var Kinds = []Kind{KindQuote, KindEnquiry}

// Collection is the plural form used in collection names and URLs.
func (k Kind) Collection() string {
	switch k {
	case KindQuote:
		return "quotes"
	case KindEnquiry:
		return "enquiries"
	default:
		return string(k)
	}
}

// ParseKind accepts both the singular and the collection name.
func ParseKind(value string) (Kind, error) {
	switch value {
	case "quote", "quotes":
		return KindQuote, nil
	case "enquiry", "enquiries":
		return KindEnquiry, nil
	default:
		return "", ErrUnknownKind
	}
}

// ElevatorTypes is the catalog offered by the quote form.
var ElevatorTypes = []string{
	"Passenger Lift",
	"Good Lift",
	"Parking Lift",
	"Hydraulic Lift",
	"Capsule Elevator",
	"Home Elevator",
	"Hospital Elevator",
	"Other",
}

// Lead is a quote request or an enquiry. ElevatorType and Floors are only
// set on quotes. CreatedAt stays nil until the store has committed it.
type Lead struct {
	ID           string     `bson:"_id,omitempty" json:"id,omitempty"`
	Kind         Kind       `bson:"-" json:"kind"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	Phone        string     `bson:"phone" json:"phone"`
	ElevatorType string     `bson:"elevatorType,omitempty" json:"elevatorType,omitempty"`
	Floors       string     `bson:"floors,omitempty" json:"floors,omitempty"`
	Message      string     `bson:"message" json:"message"`
	Status       Status     `bson:"status" json:"status"`
	CreatedAt    *time.Time `bson:"createdAt" json:"createdAt"`
}

// Fields are the client supplied values of a new lead. Status, id and
// timestamp are never part of them.
type Fields struct {
	Name         string
	Email        string
	Phone        string
	ElevatorType string
	Floors       string
	Message      string
}

type CreateQuoteRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ElevatorType string `json:"elevatorType"`
	Floors       string `json:"floors"`
	Message      string `json:"message"`
}

type CreateEnquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied"`
}

// Listing is the result of List. Unavailable distinguishes a failed read
// from an empty collection; Items is never nil.
type Listing struct {
	Items       []Lead `json:"items"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

var (
	ErrNotFound      = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrUnknownKind   = errors.New("unknown lead kind")
)

// StoreError reports a failed create, update or delete against the record store.
type StoreError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind.Collection(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

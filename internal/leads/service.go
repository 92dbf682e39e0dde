package leads

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

type Notifier interface {
	SendLeadNotification(ctx context.Context, lead Lead) (string, error)
}

const notifyTimeout = 8 * time.Second

type Service struct {
	repo     Repository
	kind     Kind
	notifier Notifier
	tracker  events.Tracker
	log      *slog.Logger
	notifies sync.WaitGroup
}

func NewService(repo Repository, kind Kind, notifier Notifier, tracker events.Tracker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		kind:     kind,
		notifier: notifier,
		tracker:  tracker,
		log:      log,
	}
}

func (s *Service) Kind() Kind {
	return s.kind
}

// Create persists a new lead with status new and mails it to the inbox in
// the background. The returned lead carries the store assigned id;
// CreatedAt is nil if the read back failed.
func (s *Service) Create(ctx context.Context, fields Fields) (Lead, error) {
	fields = trimFields(fields)
	if s.kind != KindQuote {
		fields.ElevatorType = ""
		fields.Floors = ""
	}

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return Lead{}, &StoreError{Op: "create", Kind: s.kind, Err: err}
	}
	metrics.LeadCreated(string(s.kind))

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Warn(s.kind.Collection()+" create: read back failed",
			slog.String("lead_id", id),
			slog.String("error", err.Error()),
		)
		lead = Lead{
			ID:           id,
			Name:         fields.Name,
			Email:        fields.Email,
			Phone:        fields.Phone,
			ElevatorType: fields.ElevatorType,
			Floors:       fields.Floors,
			Message:      fields.Message,
			Status:       StatusNew,
		}
	}
	lead.Kind = s.kind

	events.Emit(ctx, s.tracker, s.log, events.LeadCreated, string(s.kind))
	s.notifyAsync(lead)
	return lead, nil
}

// notifyAsync sends the notification detached from the request, which may
// end before the mail provider answers.
func (s *Service) notifyAsync(lead Lead) {
	if s.notifier == nil {
		return
	}
	s.notifies.Add(1)
	go func() {
		defer s.notifies.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.NotifyNewLead(ctx, lead); err != nil {
			metrics.IntegrationError("notifications")
			s.log.Warn(s.kind.Collection()+" create: notification failed",
				slog.String("lead_id", lead.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until notifications already started have finished.
func (s *Service) Wait() {
	s.notifies.Wait()
}

// List never fails: a read error is logged and reported through
// Listing.Unavailable with an empty, non-nil Items.
func (s *Service) List(ctx context.Context) Listing {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error(s.kind.Collection()+" list: database error", slog.String("error", err.Error()))
		return Listing{Items: []Lead{}, Unavailable: true}
	}
	if items == nil {
		items = []Lead{}
	}
	SortNewestFirst(items)
	return Listing{Items: items}
}

func (s *Service) Get(ctx context.Context, id string) (Lead, error) {
	lead, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, &StoreError{Op: "get", Kind: s.kind, Err: ErrNotFound}
		}
		return Lead{}, &StoreError{Op: "get", Kind: s.kind, Err: err}
	}
	return lead, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	found, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(id), status)
	if err != nil {
		return &StoreError{Op: "update", Kind: s.kind, Err: err}
	}
	if !found {
		return &StoreError{Op: "update", Kind: s.kind, Err: ErrNotFound}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return &StoreError{Op: "delete", Kind: s.kind, Err: err}
	}
	if !deleted {
		return &StoreError{Op: "delete", Kind: s.kind, Err: ErrNotFound}
	}
	return nil
}

func (s *Service) NotifyNewLead(ctx context.Context, lead Lead) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendLeadNotification(ctx, lead)
	return err
}

// SortNewestFirst orders by createdAt descending. Leads whose timestamp is
// still pending count as the most recent.
func SortNewestFirst(items []Lead) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.After(*b)
		}
	})
}

func trimFields(f Fields) Fields {
	return Fields{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Phone:        strings.TrimSpace(f.Phone),
		ElevatorType: strings.TrimSpace(f.ElevatorType),
		Floors:       strings.TrimSpace(f.Floors),
		Message:      strings.TrimSpace(f.Message),
	}
}

package leads

import (
	"context"
	"fmt"
)

// Registry holds one service per lead kind.
type Registry struct {
	services map[Kind]*Service
}

func NewRegistry(services ...*Service) *Registry {
	r := &Registry{services: make(map[Kind]*Service, len(services))}
	for _, s := range services {
		r.services[s.Kind()] = s
	}
	return r
}

func (r *Registry) Service(kind Kind) (*Service, error) {
	s, ok := r.services[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

func (r *Registry) Create(ctx context.Context, kind Kind, fields Fields) (Lead, error) {
	s, err := r.Service(kind)
	if err != nil {
		return Lead{}, err
	}
	return s.Create(ctx, fields)
}

// Wait blocks until the pending notifications of every service finished.
func (r *Registry) Wait() {
	for _, s := range r.services {
		s.Wait()
	}
}

func (r *Registry) List(ctx context.Context, kind Kind) Listing {
	s, err := r.Service(kind)
	if err != nil {
		return Listing{Items: []Lead{}, Unavailable: true}
	}
	return s.List(ctx)
}

func (r *Registry) Get(ctx context.Context, kind Kind, id string) (Lead, error) {
	s, err := r.Service(kind)
	if err != nil {
		return Lead{}, err
	}
	return s.Get(ctx, id)
}

func (r *Registry) UpdateStatus(ctx context.Context, kind Kind, id string, status Status) error {
	s, err := r.Service(kind)
	if err != nil {
		return err
	}
	return s.UpdateStatus(ctx, id, status)
}

func (r *Registry) Delete(ctx context.Context, kind Kind, id string) error {
	s, err := r.Service(kind)
	if err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

type Stats struct {
	Total        int `json:"total"`
	Quotes       int `json:"quotes"`
	Enquiries    int `json:"enquiries"`
	Pending      int `json:"pending"`
	NewQuotes    int `json:"newQuotes"`
	NewEnquiries int `json:"newEnquiries"`
}

// Summarize counts leads for the dashboard. Pending means not yet replied.
func Summarize(quotes, enquiries []Lead) Stats {
	st := Stats{
		Quotes:    len(quotes),
		Enquiries: len(enquiries),
		Total:     len(quotes) + len(enquiries),
	}
	for _, l := range quotes {
		if l.Status.Pending() {
			st.Pending++
		}
		if l.Status == StatusNew {
			st.NewQuotes++
		}
	}
	for _, l := range enquiries {
		if l.Status.Pending() {
			st.Pending++
		}
		if l.Status == StatusNew {
			st.NewEnquiries++
		}
	}
	return st
}

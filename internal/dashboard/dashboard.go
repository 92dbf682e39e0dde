package dashboard

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"golang.org/x/sync/errgroup"
)

const DeleteConfirmPrompt = "Are you sure you want to delete this item?"

// Store is the record store as seen by the dashboard: leads.Registry in
// process, client.Client over HTTP.
type Store interface {
	List(ctx context.Context, kind leads.Kind) leads.Listing
	UpdateStatus(ctx context.Context, kind leads.Kind, id string, status leads.Status) error
	Delete(ctx context.Context, kind leads.Kind, id string) error
}

type ref struct {
	kind leads.Kind
	id   string
}

// Dashboard is the view model of the admin dashboard. All methods are safe
// for concurrent use; once Close is called, completions of calls still in
// flight no longer touch the state.
type Dashboard struct {
	mu          sync.Mutex
	store       Store
	log         *slog.Logger
	items       map[leads.Kind][]leads.Lead
	unavailable map[leads.Kind]bool
	loading     bool
	loaded      bool
	detail      *ref
	pending     map[ref]uint64
	seq         uint64
	closed      bool
}

func New(store Store, log *slog.Logger) *Dashboard {
	if log == nil {
		log = slog.Default()
	}
	return &Dashboard{
		store:       store,
		log:         log,
		items:       map[leads.Kind][]leads.Lead{},
		unavailable: map[leads.Kind]bool{},
		pending:     map[ref]uint64{},
	}
}

// Load fetches quotes and enquiries concurrently. The lists become visible
// together once both fetches settled.
func (d *Dashboard) Load(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.loading = true
	d.mu.Unlock()

	var quotes, enquiries leads.Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quotes = d.store.List(gctx, leads.KindQuote)
		return nil
	})
	g.Go(func() error {
		enquiries = d.store.List(gctx, leads.KindEnquiry)
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.items[leads.KindQuote] = nonNil(quotes.Items)
	d.items[leads.KindEnquiry] = nonNil(enquiries.Items)
	d.unavailable[leads.KindQuote] = quotes.Unavailable
	d.unavailable[leads.KindEnquiry] = enquiries.Unavailable
	d.loading = false
	d.loaded = true
}

func nonNil(items []leads.Lead) []leads.Lead {
	if items == nil {
		return []leads.Lead{}
	}
	return items
}

func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Ready reports whether the data view can be shown.
func (d *Dashboard) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded && !d.loading
}

// Items returns a copy of the loaded leads of kind.
func (d *Dashboard) Items(kind leads.Kind) []leads.Lead {
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.items[kind]
	out := make([]leads.Lead, len(src))
	copy(out, src)
	return out
}

func (d *Dashboard) Unavailable(kind leads.Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unavailable[kind]
}

func (d *Dashboard) Stats() leads.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return leads.Summarize(d.items[leads.KindQuote], d.items[leads.KindEnquiry])
}

func (d *Dashboard) indexOf(kind leads.Kind, id string) int {
	for i, l := range d.items[kind] {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// ChangeStatus shows the new status right away and persists it. If the store
// rejects it, the entry goes back to its previous status unless another
// change was made to it in the meantime, and the error is returned.
func (d *Dashboard) ChangeStatus(ctx context.Context, kind leads.Kind, id string, status leads.Status) error {
	if !leads.IsValidStatus(status) {
		return leads.ErrInvalidStatus
	}

	key := ref{kind: kind, id: id}
	d.mu.Lock()
	var (
		previous leads.Status
		applied  bool
		mine     uint64
	)
	if !d.closed {
		if i := d.indexOf(kind, id); i >= 0 {
			previous = d.items[kind][i].Status
			d.items[kind][i].Status = status
			applied = true
		}
		d.seq++
		mine = d.seq
		d.pending[key] = mine
	}
	d.mu.Unlock()

	err := d.store.UpdateStatus(ctx, kind, id, status)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return err
	}
	latest := d.pending[key] == mine
	if latest {
		delete(d.pending, key)
	}
	if err != nil {
		d.log.Warn("dashboard: status change failed",
			slog.String("kind", string(kind)),
			slog.String("lead_id", id),
			slog.String("error", err.Error()),
		)
		if applied && latest {
			if i := d.indexOf(kind, id); i >= 0 && d.items[kind][i].Status == status {
				d.items[kind][i].Status = previous
			}
		}
		return err
	}
	return nil
}

// Delete asks confirm first; a declined confirmation does nothing. On success
// the lead leaves the local list and an open detail view of it is closed.
func (d *Dashboard) Delete(ctx context.Context, kind leads.Kind, id string, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}

	if err := d.store.Delete(ctx, kind, id); err != nil {
		d.log.Warn("dashboard: delete failed",
			slog.String("kind", string(kind)),
			slog.String("lead_id", id),
			slog.String("error", err.Error()),
		)
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return true, nil
	}
	if i := d.indexOf(kind, id); i >= 0 {
		list := d.items[kind]
		d.items[kind] = append(list[:i:i], list[i+1:]...)
	}
	if d.detail != nil && d.detail.kind == kind && d.detail.id == id {
		d.detail = nil
	}
	return true, nil
}

// OpenDetail shows one loaded lead. It reports false if the lead is unknown.
func (d *Dashboard) OpenDetail(kind leads.Kind, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(kind, id) < 0 {
		return false
	}
	d.detail = &ref{kind: kind, id: id}
	return true
}

func (d *Dashboard) CloseDetail() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detail = nil
}

// Detail returns the lead of the open detail view with its current status.
func (d *Dashboard) Detail() (leads.Lead, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.detail == nil {
		return leads.Lead{}, false
	}
	i := d.indexOf(d.detail.kind, d.detail.id)
	if i < 0 {
		return leads.Lead{}, false
	}
	return d.items[d.detail.kind][i], true
}

// Close detaches the view model; later completions become no-ops.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// ReplyLink is a mail compose link addressed to the lead.
func ReplyLink(lead leads.Lead) string {
	u := url.URL{Scheme: "mailto", Opaque: lead.Email}
	return u.String()
}

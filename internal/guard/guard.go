package guard

import (
	"sync"

	"github.com/Shravan4507/ise-elevators-website/internal/identity"
)

const (
	LoginView     = "/admin-login"
	DashboardView = "/admin-dashboard"
)

type State int

const (
	Checking State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "checking"
	}
}

// SessionSource delivers the signed-in state; the first callback may arrive
// synchronously from OnSessionChange.
type SessionSource interface {
	OnSessionChange(cb func(*identity.Session)) (unsubscribe func())
}

// Navigator moves the admin to another view.
type Navigator interface {
	Navigate(view string)
}

type NavigatorFunc func(view string)

func (f NavigatorFunc) Navigate(view string) { f(view) }

// Decide returns the view to redirect to, or "" to stay on view.
func Decide(authenticated bool, view string) string {
	if !authenticated {
		if view == LoginView {
			return ""
		}
		return LoginView
	}
	if view == LoginView {
		return DashboardView
	}
	return ""
}

// Guard follows a SessionSource while an admin view is mounted.
type Guard struct {
	mu      sync.Mutex
	state   State
	view    string
	session *identity.Session
	nav     Navigator
	unsub   func()
	closed  bool
}

// Mount subscribes to src for the given view. Nothing is redirected until
// the first state arrives.
func Mount(src SessionSource, view string, nav Navigator) *Guard {
	g := &Guard{state: Checking, view: view, nav: nav}
	unsub := src.OnSessionChange(g.onChange)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		unsub()
		return g
	}
	g.unsub = unsub
	g.mu.Unlock()
	return g
}

func (g *Guard) onChange(s *identity.Session) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.session = s
	if s == nil {
		g.state = Unauthenticated
	} else {
		g.state = Authenticated
	}
	target := Decide(s != nil, g.view)
	if target != "" {
		g.view = target
	}
	g.mu.Unlock()

	if target != "" && g.nav != nil {
		g.nav.Navigate(target)
	}
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Session() *identity.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

func (g *Guard) View() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Teardown releases the subscription. It is safe to call more than once;
// callbacks arriving afterwards are ignored.
func (g *Guard) Teardown() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsub := g.unsub
	g.unsub = nil
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

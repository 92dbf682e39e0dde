package site

import (
	"html/template"
	"net/http"

	"github.com/Shravan4507/ise-elevators-website/internal/events"

	"github.com/go-chi/chi/v5"
)

type copyPage struct {
	Copy     template.HTML
	Products []Product
	Services []Service
}

func (s *Site) home(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.PageViewed, "/")
	s.render(w, r, http.StatusOK, "home", view{Data: copyPage{Copy: s.copy["home"], Products: Products}})
}

func (s *Site) about(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.PageViewed, "/about")
	s.render(w, r, http.StatusOK, "about", view{Title: "About", Data: copyPage{Copy: s.copy["about"]}})
}

func (s *Site) products(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.PageViewed, "/products")
	s.render(w, r, http.StatusOK, "products", view{Title: "Products", Data: copyPage{Products: Products}})
}

type productPage struct {
	Product     Product
	WhatsAppURL string
}

func (s *Site) product(w http.ResponseWriter, r *http.Request) {
	p, ok := productBySlug(chi.URLParam(r, "slug"))
	if !ok {
		s.notFound(w, r)
		return
	}
	s.track(r, events.ProductViewed, p.Name)
	s.render(w, r, http.StatusOK, "product", view{
		Title: p.Name,
		Data: productPage{
			Product:     p,
			WhatsAppURL: WhatsAppURL("Hi ISE Elevator Team! I'm interested in the " + p.Name + ". Please share details and pricing."),
		},
	})
}

func (s *Site) services(w http.ResponseWriter, r *http.Request) {
	s.track(r, events.PageViewed, "/services")
	s.render(w, r, http.StatusOK, "services", view{Title: "Services", Data: copyPage{Copy: s.copy["services"], Services: Services}})
}

package site

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/Shravan4507/ise-elevators-website/internal/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	PhoneNumber    = "8390091984"
	FormattedPhone = "+91 83900 91984"
	WhatsAppNumber = "918390091984"
)

const DefaultWhatsAppMessage = "Hi ISE Elevator Team!\n\n" +
	"I'm interested in your elevator solutions and would like to learn more about your services.\n\n" +
	"Please share details about:\n" +
	"• Available elevator types\n" +
	"• Installation process\n" +
	"• Pricing and quotation\n\n" +
	"Looking forward to hearing from you!\n\n" +
	"Thank you."

// WhatsAppURL is the wa.me deep link with a prefilled message. An empty
// message uses DefaultWhatsAppMessage.
func WhatsAppURL(message string) string {
	if strings.TrimSpace(message) == "" {
		message = DefaultWhatsAppMessage
	}
	return "https://wa.me/" + WhatsAppNumber + "?text=" + url.QueryEscape(message)
}

func CallURL() string {
	return "tel:+91" + PhoneNumber
}

type Product struct {
	Slug         string
	Name         string
	Description  string
	Features     []string
	Applications []string
	// QuoteType preselects the elevator type on the quote form.
	QuoteType string
}

type Service struct {
	Title       string
	Description string
}

var Products = []Product{
	{
		Slug:         "manual-door-elevator",
		Name:         "Manual Door Elevator",
		Description:  "Economical and reliable lift for residential and commercial buildings, built to the shaft size, speed and finish you need.",
		Features:     []string{"Manual door systems", "Built to shaft size", "Variable speed options", "Reliable and economical"},
		Applications: []string{"Residential buildings", "Small commercial buildings", "Budget-friendly projects"},
		QuoteType:    "Passenger Lift",
	},
	{
		Slug:         "automatic-door-elevator",
		Name:         "Automatic Door Elevator",
		Description:  "Center-opening and telescopic automatic doors with modern safety features for smooth daily operation.",
		Features:     []string{"Center-opening or telescopic doors", "Door sensors and overload protection", "Smooth acceleration", "Modern cabin finishes"},
		Applications: []string{"Apartments", "Offices", "Hotels"},
		QuoteType:    "Passenger Lift",
	},
	{
		Slug:         "capsule-elevator",
		Name:         "Capsule / Panoramic Elevator",
		Description:  "Full-glass capsule lifts for hotels, malls, offices and multiplexes.",
		Features:     []string{"Full-glass cabin", "Panoramic view", "Premium finishes", "Quiet ride"},
		Applications: []string{"Hotels", "Shopping malls", "Corporate offices", "Multiplexes"},
		QuoteType:    "Capsule Elevator",
	},
	{
		Slug:         "mrl-elevator",
		Name:         "MRL (Machine Room-Less) Elevator",
		Description:  "Gearless machine in the shaft, no machine room, lower power consumption.",
		Features:     []string{"No machine room", "Gearless traction machine", "Lower power consumption", "Smooth travel"},
		Applications: []string{"New residential towers", "Commercial complexes"},
		QuoteType:    "Passenger Lift",
	},
	{
		Slug:         "home-elevator",
		Name:         "Home Elevator",
		Description:  "Custom-built for homes, bungalows, villas and penthouses with up to 30% energy savings.",
		Features:     []string{"Compact footprint", "Custom cabin design", "Energy efficient", "Low noise"},
		Applications: []string{"Bungalows", "Villas", "Penthouses", "Row houses"},
		QuoteType:    "Home Elevator",
	},
	{
		Slug:         "hospital-elevator",
		Name:         "Hospital Elevator",
		Description:  "Sized for stretchers and medical equipment with smooth, safe vertical transport.",
		Features:     []string{"Stretcher-sized cabin", "Soft start and stop", "Emergency power operation", "Easy-clean interiors"},
		Applications: []string{"Hospitals", "Nursing homes", "Clinics"},
		QuoteType:    "Hospital Elevator",
	},
	{
		Slug:         "goods-elevator",
		Name:         "Goods Elevator",
		Description:  "Heavy-duty lift for goods and materials with durable cabin structures.",
		Features:     []string{"High load capacity", "Reinforced cabin", "Collapsible or shutter doors", "Industrial duty cycle"},
		Applications: []string{"Warehouses", "Factories", "Shops and showrooms"},
		QuoteType:    "Good Lift",
	},
	{
		Slug:         "hydraulic-elevator",
		Name:         "Hydraulic Elevator",
		Description:  "Low-noise hydraulic drive for low-rise buildings.",
		Features:     []string{"Hydraulic drive", "Low noise", "Energy-efficient operation", "Minimal overhead"},
		Applications: []string{"Low-rise buildings", "Parking structures"},
		QuoteType:    "Hydraulic Lift",
	},
	{
		Slug:         "escalators",
		Name:         "Escalators",
		Description:  "Commercial escalators with configurable step width and inclination.",
		Features:     []string{"Configurable step width", "Configurable inclination", "Heavy-duty operation"},
		Applications: []string{"Hotels", "Offices", "Supermarkets", "Airports"},
		QuoteType:    "Other",
	},
}

var Services = []Service{
	{Title: "New Installation", Description: "Design, manufacturing, installation and commissioning of new elevators."},
	{Title: "Modernization", Description: "Upgrade existing elevators with current controls, safety features and better energy efficiency."},
	{Title: "Maintenance", Description: "Maintenance programs for safe, reliable and long-lived elevator systems."},
	{Title: "Emergency Repair", Description: "24/7 breakdown response by our technicians."},
	{Title: "AMC (Annual Maintenance Contract)", Description: "Scheduled inspections, preventive maintenance and priority support."},
	{Title: "Manufacturing", Description: "In-house manufacturing of cabins, doors, control panels and machines."},
}

func productBySlug(slug string) (Product, bool) {
	slug = utils.Slugify(slug)
	for _, p := range Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

//go:embed content/*.md
var contentFS embed.FS

var markdown = goldmark.New(goldmark.WithExtensions(extension.Typographer))

// loadCopy renders every page copy file to HTML, keyed by base name.
func loadCopy() (map[string]template.HTML, error) {
	entries, err := contentFS.ReadDir("content")
	if err != nil {
		return nil, err
	}
	out := make(map[string]template.HTML, len(entries))
	for _, e := range entries {
		raw, err := contentFS.ReadFile("content/" + e.Name())
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := markdown.Convert(raw, &buf); err != nil {
			return nil, err
		}
		// Copy files are part of the binary, not user input.
		out[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = template.HTML(buf.String())
	}
	return out, nil
}

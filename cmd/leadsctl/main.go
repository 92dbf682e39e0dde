package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/client"
	"github.com/Shravan4507/ise-elevators-website/internal/dashboard"
	"github.com/Shravan4507/ise-elevators-website/internal/guard"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
)

type app struct {
	cfgPath string
	cfg     *client.Config
	c       *client.Client
	jsonOut bool
	in      *bufio.Reader
}

func main() {
	configFlag := flag.String("config", client.ConfigPath(), "config file")
	urlFlag := flag.String("url", "", "API base URL (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	yesFlag := flag.Bool("yes", false, "do not ask for confirmation")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := client.LoadConfig(*configFlag)
	if err != nil {
		fatalf("cannot read config %s: %v", *configFlag, err)
	}
	if *urlFlag != "" {
		cfg.BaseURL = *urlFlag
	}

	a := &app{cfgPath: *configFlag, cfg: cfg, jsonOut: *jsonFlag, in: bufio.NewReader(os.Stdin)}
	a.c = client.New(cfg.BaseURL,
		client.WithTokens(identity.Tokens{
			AccessToken:      cfg.AccessToken,
			RefreshToken:     cfg.RefreshToken,
			AccessExpiresAt:  cfg.AccessExpiresAt,
			RefreshExpiresAt: cfg.RefreshExpiresAt,
		}),
		client.WithTokenSink(a.saveTokens),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		a.login(ctx)
	case "logout":
		a.logout(ctx)
	case "whoami":
		a.whoami(ctx)
	case "passwd":
		a.requireSession(ctx)
		a.passwd(ctx)
	case "list":
		need(args, 2, "leadsctl list <quotes|enquiries>")
		a.requireSession(ctx)
		a.list(ctx, parseKind(args[1]))
	case "show":
		need(args, 3, "leadsctl show <quotes|enquiries> <id>")
		a.requireSession(ctx)
		a.show(ctx, parseKind(args[1]), args[2])
	case "status":
		need(args, 4, "leadsctl status <quotes|enquiries> <id> <new|read|replied>")
		a.requireSession(ctx)
		a.status(ctx, parseKind(args[1]), args[2], args[3])
	case "delete":
		need(args, 3, "leadsctl [--yes] delete <quotes|enquiries> <id>")
		a.requireSession(ctx)
		a.delete(ctx, parseKind(args[1]), args[2], *yesFlag)
	case "stats":
		a.requireSession(ctx)
		a.stats(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: leadsctl [--config <path>] [--url <base>] [--json] [--yes] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login                         Sign in as the admin")
	fmt.Fprintln(os.Stderr, "  logout                        Sign out and forget the tokens")
	fmt.Fprintln(os.Stderr, "  whoami                        Show the current session")
	fmt.Fprintln(os.Stderr, "  passwd                        Change the admin password")
	fmt.Fprintln(os.Stderr, "  list <kind>                   List quotes or enquiries")
	fmt.Fprintln(os.Stderr, "  show <kind> <id>              Show one lead")
	fmt.Fprintln(os.Stderr, "  status <kind> <id> <status>   Set new, read or replied")
	fmt.Fprintln(os.Stderr, "  delete <kind> <id>            Delete a lead")
	fmt.Fprintln(os.Stderr, "  stats                         Dashboard counters")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func need(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, "usage: "+usage)
		os.Exit(1)
	}
}

func parseKind(value string) leads.Kind {
	kind, err := leads.ParseKind(value)
	if err != nil {
		fatalf("unknown collection %q (use quotes or enquiries)", value)
	}
	return kind
}

func (a *app) saveTokens(t identity.Tokens) {
	a.cfg.AccessToken = t.AccessToken
	a.cfg.RefreshToken = t.RefreshToken
	a.cfg.AccessExpiresAt = t.AccessExpiresAt
	a.cfg.RefreshExpiresAt = t.RefreshExpiresAt
	if err := client.SaveConfig(a.cfgPath, a.cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot save %s: %v\n", a.cfgPath, err)
	}
}

func (a *app) prompt(label, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}
	line, _ := a.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return fallback
	}
	return line
}

// requireSession resolves the stored session and lets the guard decide
// whether the dashboard commands may run.
func (a *app) requireSession(ctx context.Context) {
	if _, err := a.c.Session(ctx); err != nil {
		fatalf("cannot reach %s: %v", a.cfg.BaseURL, err)
	}
	allowed := true
	g := guard.Mount(a.c, guard.DashboardView, guard.NavigatorFunc(func(view string) {
		allowed = view != guard.LoginView
	}))
	defer g.Teardown()
	if !allowed || g.State() != guard.Authenticated {
		fatalf("not logged in, run: leadsctl login")
	}
}

func (a *app) login(ctx context.Context) {
	email := a.prompt("Email", a.cfg.Email)
	password := a.prompt("Password", "")

	if errs := validation.New().Fields(validation.LoginInput{Email: email, Password: password}); !errs.Valid() {
		for field, msg := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		os.Exit(1)
	}

	session, err := a.c.Login(ctx, email, password)
	if err != nil {
		fatalf("%s", identity.AsSessionError(identity.OpLogin, err).Message())
	}
	a.cfg.Email = session.Email
	a.saveTokens(a.c.Tokens())
	fmt.Printf("Logged in as %s\n", session.Email)
}

func (a *app) logout(ctx context.Context) {
	if err := a.c.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", identity.AsSessionError(identity.OpLogout, err).Message())
	}
	fmt.Println("Logged out")
}

func (a *app) whoami(ctx context.Context) {
	s, err := a.c.Session(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	if s == nil {
		fmt.Println("Not logged in")
		os.Exit(1)
	}
	if a.jsonOut {
		outputJSON(s)
		return
	}
	fmt.Printf("Email:     %s\n", s.Email)
	fmt.Printf("Role:      Administrator\n")
	fmt.Printf("Signed in: %s\n", s.AuthenticatedAt.Local().Format(time.RFC1123))
}

func (a *app) passwd(ctx context.Context) {
	in := validation.ChangePasswordInput{
		CurrentPassword: a.prompt("Current password", ""),
		NewPassword:     a.prompt("New password", ""),
		ConfirmPassword: a.prompt("Confirm new password", ""),
	}
	if errs := validation.New().Fields(in); !errs.Valid() {
		for field, msg := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		os.Exit(1)
	}
	if _, err := a.c.ChangeCredential(ctx, in.CurrentPassword, in.NewPassword); err != nil {
		fatalf("%s", identity.AsSessionError(identity.OpChange, err).Message())
	}
	fmt.Println("Password updated successfully!")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2 Jan 2006, 03:04 pm")
}

func (a *app) list(ctx context.Context, kind leads.Kind) {
	d := dashboard.New(a.c, nil)
	defer d.Close()
	d.Load(ctx)
	if d.Unavailable(kind) {
		fatalf("%s could not be loaded", kind.Collection())
	}
	items := d.Items(kind)
	if a.jsonOut {
		outputJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Printf("No %s yet.\n", kind.Collection())
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tEMAIL\tSTATUS")
	for _, l := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, formatDate(l.CreatedAt), l.Name, l.Email, l.Status)
	}
	_ = tw.Flush()
}

func (a *app) show(ctx context.Context, kind leads.Kind, id string) {
	lead, err := a.c.Get(ctx, kind, id)
	if err != nil {
		fatalf("%v", err)
	}
	if a.jsonOut {
		outputJSON(lead)
		return
	}
	fmt.Printf("Name:    %s\n", lead.Name)
	fmt.Printf("Email:   %s\n", lead.Email)
	fmt.Printf("Phone:   %s\n", orDash(lead.Phone))
	if kind == leads.KindQuote {
		fmt.Printf("Type:    %s\n", lead.ElevatorType)
		fmt.Printf("Floors:  %s\n", lead.Floors)
	}
	fmt.Printf("Status:  %s\n", lead.Status)
	fmt.Printf("Date:    %s\n", formatDate(lead.CreatedAt))
	fmt.Printf("Message: %s\n", orDash(lead.Message))
	fmt.Printf("Reply:   %s\n", dashboard.ReplyLink(lead))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (a *app) status(ctx context.Context, kind leads.Kind, id, value string) {
	status, err := leads.ParseStatus(value)
	if err != nil {
		fatalf("invalid status %q (use new, read or replied)", value)
	}
	d := dashboard.New(a.c, nil)
	defer d.Close()
	if err := d.ChangeStatus(ctx, kind, id, status); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s %s marked %s\n", kind, id, status)
}

func (a *app) delete(ctx context.Context, kind leads.Kind, id string, yes bool) {
	d := dashboard.New(a.c, nil)
	defer d.Close()
	deleted, err := d.Delete(ctx, kind, id, func() bool {
		if yes {
			return true
		}
		answer := a.prompt(dashboard.DeleteConfirmPrompt+" (y/N)", "")
		return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	})
	if err != nil {
		fatalf("%v", err)
	}
	if !deleted {
		fmt.Println("Cancelled")
		return
	}
	fmt.Printf("%s %s deleted\n", kind, id)
}

func (a *app) stats(ctx context.Context) {
	d := dashboard.New(a.c, nil)
	defer d.Close()
	d.Load(ctx)
	st := d.Stats()
	if a.jsonOut {
		outputJSON(st)
		return
	}
	fmt.Printf("Total:     %d\n", st.Total)
	fmt.Printf("Quotes:    %d (%d new)\n", st.Quotes, st.NewQuotes)
	fmt.Printf("Enquiries: %d (%d new)\n", st.Enquiries, st.NewEnquiries)
	fmt.Printf("Pending:   %d\n", st.Pending)
	for _, kind := range leads.Kinds {
		if d.Unavailable(kind) {
			fmt.Fprintf(os.Stderr, "warning: %s could not be loaded\n", kind.Collection())
		}
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("%v", err)
	}
}

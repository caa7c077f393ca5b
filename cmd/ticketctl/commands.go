package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/board"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/view"
)

const timeLayout = "2006-01-02 15:04"

// CLI carries what every command needs.
type CLI struct {
	Auth    *service.AuthService
	Tickets *service.TicketService
	Profile string
	Out     io.Writer
	Logger  *zap.Logger
}

// Command is one ticketctl subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Flags   func() *pflag.FlagSet
	Run     func(ctx context.Context, cli *CLI, flags *pflag.FlagSet) error
}

func commands() []Command {
	return []Command{
		{Name: "signup", Summary: "Create an account and sign in", Usage: "signup --email E --password P [--name N]", Flags: credentialFlags(true), Run: runSignUp},
		{Name: "login", Summary: "Sign in and remember the session", Usage: "login --email E --password P", Flags: credentialFlags(false), Run: runLogin},
		{Name: "logout", Summary: "Forget the remembered session", Usage: "logout", Run: runLogout},
		{Name: "whoami", Summary: "Show the signed-in account", Usage: "whoami", Run: runWhoAmI},
		{Name: "list", Summary: "List your tickets", Usage: "list [--status S] [--query Q] [--sort ORDER]", Flags: viewFlags("list"), Run: runList(false)},
		{Name: "critical", Summary: "List your CRITICAL tickets", Usage: "critical [--status S] [--query Q] [--sort ORDER]", Flags: viewFlags("critical"), Run: runList(true)},
		{Name: "stats", Summary: "Count tickets by status and category", Usage: "stats", Run: runStats},
		{Name: "show", Summary: "Show one ticket with its comments", Usage: "show <id>", Run: runShow},
		{Name: "create", Summary: "Open a new ticket", Usage: "create --title T --description D [--category C] [--priority P]", Flags: createFlags, Run: runCreate},
		{Name: "status", Summary: "Change a ticket's status", Usage: "status <id> <OPEN|IN_PROGRESS|RESOLVED|CLOSED>", Run: runStatus},
		{Name: "comment", Summary: "Add a comment to a ticket", Usage: "comment <id> <text...>", Run: runComment},
		{Name: "delete", Summary: "Delete a ticket you created", Usage: "delete <id> [--undo]", Flags: deleteFlags, Run: runDelete},
	}
}

// Run dispatches args[0] to its command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("command required")
	}
	for _, cmd := range commands() {
		if cmd.Name != args[0] {
			continue
		}
		flags := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
		if cmd.Flags != nil {
			flags = cmd.Flags()
		}
		flags.Usage = func() {
			fmt.Fprintf(os.Stderr, "usage: ticketctl %s\n%s", cmd.Usage, flags.FlagUsages())
		}
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		return cmd.Run(ctx, c, flags)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (c *CLI) caller(ctx context.Context) (*domain.Identity, error) {
	identity, err := c.Auth.Resume(ctx, c.Profile)
	if errors.Is(err, domain.ErrNotAuthenticated) {
		return nil, fmt.Errorf("not signed in; run \"ticketctl login\" first")
	}
	return identity, err
}

func credentialFlags(withName bool) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("credentials", pflag.ContinueOnError)
		flags.String("email", "", "account email")
		flags.String("password", "", "account password (default: $TICKETCTL_PASSWORD)")
		if withName {
			flags.String("name", "", "display name")
		}
		return flags
	}
}

func viewFlags(name string) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
		flags.String("status", "", "only this status (OPEN, IN_PROGRESS, RESOLVED, CLOSED)")
		flags.StringP("query", "q", "", "text to find in title, description or category")
		flags.String("sort", string(view.DefaultSort), "date_desc, date_asc, title_asc or title_desc")
		return flags
	}
}

func createFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	flags.String("title", "", "short summary")
	flags.String("description", "", "what happened")
	flags.String("category", string(domain.CategoryOther), "one of "+joinCategories()+" (free text accepted)")
	flags.String("priority", string(domain.TicketPriorityMedium), "LOW, MEDIUM, HIGH or CRITICAL")
	return flags
}

func deleteFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("delete", pflag.ContinueOnError)
	flags.Bool("undo", false, "put the row back in the local list afterwards (the ticket stays deleted)")
	return flags
}

func password(flags *pflag.FlagSet) string {
	if p, _ := flags.GetString("password"); p != "" {
		return p
	}
	return os.Getenv("TICKETCTL_PASSWORD")
}

func runSignUp(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	email, _ := flags.GetString("email")
	name, _ := flags.GetString("name")
	res, err := c.Auth.SignUp(ctx, c.Profile, email, password(flags), name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Account created. Signed in as %s (%s)\n", res.Identity.AuthorName(), res.Identity.UID)
	return nil
}

func runLogin(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	email, _ := flags.GetString("email")
	res, err := c.Auth.SignIn(ctx, c.Profile, email, password(flags))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Signed in as %s (%s)\n", res.Identity.AuthorName(), res.Identity.UID)
	return nil
}

func runLogout(ctx context.Context, c *CLI, _ *pflag.FlagSet) error {
	if err := c.Auth.SignOut(ctx, c.Profile); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "Signed out")
	return nil
}

func runWhoAmI(ctx context.Context, c *CLI, _ *pflag.FlagSet) error {
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	account, err := c.Auth.Account(ctx, caller)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "UID\t%s\n", caller.UID)
	fmt.Fprintf(w, "Email\t%s\n", caller.Email)
	fmt.Fprintf(w, "Name\t%s\n", caller.DisplayName)
	fmt.Fprintf(w, "Role\t%s\n", account.Role)
	fmt.Fprintf(w, "Provider\t%s\n", caller.Provider())
	return w.Flush()
}

func runList(critical bool) func(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	return func(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
		caller, err := c.caller(ctx)
		if err != nil {
			return err
		}
		repo := c.Tickets.Repository()
		fetch := board.FetchFunc(repo.ListTickets)
		if critical {
			fetch = repo.ListCriticalTickets
		}
		b := board.New(fetch, repo, caller, c.Logger)

		rawStatus, _ := flags.GetString("status")
		if rawStatus != "" {
			status, err := service.ParseStatus(rawStatus)
			if err != nil {
				return err
			}
			b.SetStatus(status)
		}
		query, _ := flags.GetString("query")
		b.SetQuery(query)
		rawSort, _ := flags.GetString("sort")
		order, err := view.ParseSortOrder(rawSort)
		if err != nil {
			return err
		}
		b.SetSort(order)

		if err := b.Load(ctx); err != nil {
			return err
		}
		return printBoard(c.Out, b)
	}
}

func runStats(ctx context.Context, c *CLI, _ *pflag.FlagSet) error {
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	stats, err := c.Tickets.Stats(ctx, caller)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TOTAL\t%d\n\n", stats.Total)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, b := range stats.ByStatus {
		fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
	}
	fmt.Fprintln(w, "\nCATEGORY\tCOUNT")
	for _, b := range stats.ByCategory {
		label := b.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%s\t%d\n", label, b.Count)
	}
	return w.Flush()
}

func runShow(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: ticketctl show <id>")
	}
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	ticket, err := c.Tickets.Get(ctx, flags.Arg(0), caller)
	if err != nil {
		return err
	}
	printTicket(c.Out, ticket)
	return nil
}

func runCreate(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	category, _ := flags.GetString("category")
	priority, _ := flags.GetString("priority")
	ticket, err := c.Tickets.Create(ctx, service.TicketInput{
		Title:       title,
		Description: description,
		Category:    strings.ToUpper(category),
		Priority:    priority,
	}, caller)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Created ticket %s\n", ticket.ID)
	return nil
}

func runStatus(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	if flags.NArg() != 2 {
		return fmt.Errorf("usage: ticketctl status <id> <status>")
	}
	status, err := service.ParseStatus(flags.Arg(1))
	if err != nil {
		return err
	}
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	if err := c.Tickets.UpdateStatus(ctx, flags.Arg(0), status, caller); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Ticket %s is now %s\n", flags.Arg(0), status)
	return nil
}

func runComment(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	if flags.NArg() < 2 {
		return fmt.Errorf("usage: ticketctl comment <id> <text...>")
	}
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	ticket, err := c.Tickets.AddComment(ctx, flags.Arg(0), strings.Join(flags.Args()[1:], " "), caller)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Comment added (%d on ticket %s)\n", len(ticket.Comments), ticket.ID)
	return nil
}

func runDelete(ctx context.Context, c *CLI, flags *pflag.FlagSet) error {
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: ticketctl delete <id> [--undo]")
	}
	caller, err := c.caller(ctx)
	if err != nil {
		return err
	}
	repo := c.Tickets.Repository()
	b := board.New(repo.ListTickets, repo, caller, c.Logger)
	if err := b.Load(ctx); err != nil {
		return err
	}

	ok, err := b.Delete(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delete ticket %s: %w", flags.Arg(0), domain.ErrOperationFailed)
	}
	fmt.Fprintf(c.Out, "Deleted ticket %s\n", flags.Arg(0))

	if undo, _ := flags.GetBool("undo"); undo && b.Undo() {
		fmt.Fprintln(c.Out, "Restored in this list only; the ticket remains deleted in the store.")
		return printBoard(c.Out, b)
	}
	return nil
}

func printBoard(out io.Writer, b *board.Board) error {
	visible := b.Visible()
	counters := b.Counters()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tCATEGORY\tCREATED\tTITLE")
	for _, t := range visible {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, dash(t.Category), t.CreatedAt.Local().Format(timeLayout), t.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(visible) == 0 {
		fmt.Fprintln(out, "No tickets match.")
	}
	fmt.Fprintf(out, "%d shown, %d total, %d unresolved\n", len(visible), counters.Total, counters.Unresolved)
	return nil
}

func printTicket(out io.Writer, t *domain.Ticket) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", t.ID)
	fmt.Fprintf(w, "Title\t%s\n", t.Title)
	fmt.Fprintf(w, "Status\t%s\n", t.Status)
	fmt.Fprintf(w, "Priority\t%s\n", t.Priority)
	fmt.Fprintf(w, "Category\t%s\n", dash(t.Category))
	fmt.Fprintf(w, "Assigned to\t%s\n", dash(t.AssignedTo))
	fmt.Fprintf(w, "Created\t%s\n", t.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Updated\t%s\n", t.UpdatedAt.Local().Format(timeLayout))
	_ = w.Flush()
	fmt.Fprintf(out, "\n%s\n", t.Description)
	if len(t.Comments) == 0 {
		return
	}
	fmt.Fprintln(out, "\nComments:")
	for _, cm := range t.Comments {
		fmt.Fprintf(out, "  [%s] %s: %s\n", cm.CreatedAt.Local().Format(timeLayout), cm.AuthorName, cm.Content)
	}
}

func joinCategories() string {
	names := make([]string, 0, len(domain.TicketCategories))
	for _, c := range domain.TicketCategories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

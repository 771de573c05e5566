// Package console is the interactive line-oriented front end of the expense
// tracker. It owns the tracker service for the lifetime of a session; every
// command runs synchronously on the goroutine that called Run.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/tracker"
)

const (
	budgetWarning    = "Warning: Budget Limit Exceeded!"
	invalidAmount    = "Invalid amount"
	mismatchMessage  = "Passwords do not match!"
	deleteConfirm    = "Are you sure you want to delete this expense? [y/N] "
	emptyLedger      = "No expenses recorded."
	invalidSelection = "Invalid selection"
)

var (
	// errQuit ends the session without error.
	errQuit   = errors.New("quit")
	errLogout = errors.New("logout")
)

type Options struct {
	CurrencySymbol string
	RequireLogin   bool
	Auth           *auth.Authenticator
	Logger         *applog.Logger
}

type Console struct {
	svc      *tracker.Service
	exporter sheets.ExpenseExporter
	auth     *auth.Authenticator
	logger   *applog.Logger
	symbol   string
	login    bool

	in    io.Reader
	out   io.Writer
	lines chan string
}

// New builds a console. exporter may be nil when no spreadsheet is configured.
func New(svc *tracker.Service, exporter sheets.ExpenseExporter, in io.Reader, out io.Writer, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	authn := opts.Auth
	if authn == nil {
		authn = auth.New(logger)
	}
	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = core.DefaultCurrencySymbol
	}
	return &Console{
		svc:      svc,
		exporter: exporter,
		auth:     authn,
		logger:   logger.WithComponent(applog.ComponentConsole),
		symbol:   symbol,
		login:    opts.RequireLogin,
		in:       in,
		out:      out,
	}
}

// Run serves the session until exit, end of input or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	// Stops the reader once the session ends.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.lines = make(chan string)
	go c.readLines(ctx)

	for {
		if c.login {
			if err := c.gate(ctx); err != nil {
				return c.finish(err)
			}
		} else {
			c.println("Welcome to Expense Tracker")
		}

		err := c.loop(ctx)
		if errors.Is(err, errLogout) && c.login {
			continue
		}
		return c.finish(err)
	}
}

func (c *Console) finish(err error) error {
	switch {
	case err == nil, errors.Is(err, errQuit), errors.Is(err, io.EOF), errors.Is(err, errLogout):
		c.println("Goodbye!")
		return nil
	default:
		return err
	}
}

func (c *Console) readLines(ctx context.Context) {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Error("Failed to read input", "error", err)
	}
}

func (c *Console) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// gate blocks until a user logs in.
func (c *Console) gate(ctx context.Context) error {
	for {
		c.println("Welcome to Expense Tracker")
		choice, err := c.ask(ctx, "[l]ogin, [s]ignup or [q]uit: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "l", "login":
			user, err := c.ask(ctx, "Username: ")
			if err != nil {
				return err
			}
			pass, err := c.ask(ctx, "Password: ")
			if err != nil {
				return err
			}
			if c.auth.Authenticate(user, pass) {
				c.printf("Welcome, %s!\n", user)
				return nil
			}
		case "s", "signup":
			user, err := c.ask(ctx, "Username: ")
			if err != nil {
				return err
			}
			pass, err := c.ask(ctx, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := c.ask(ctx, "Confirm password: ")
			if err != nil {
				return err
			}
			if err := c.auth.Signup(user, pass, confirm); err != nil {
				c.println(mismatchMessage)
				continue
			}
			c.println("Account created. Please log in.")
		case "q", "quit", "exit":
			return errQuit
		default:
			c.println(invalidSelection)
		}
	}
}

func (c *Console) loop(ctx context.Context) error {
	c.println("Type 'help' for a list of commands.")
	for {
		line, err := c.ask(ctx, "> ")
		if err != nil {
			return err
		}
		cmd := strings.ToLower(line)

		switch cmd {
		case "":
			continue
		case "add":
			err = c.add(ctx)
		case "list", "ls":
			c.list()
		case "total":
			c.total()
		case "edit":
			err = c.edit(ctx)
		case "delete", "rm":
			err = c.delete(ctx)
		case "budget":
			err = c.budget(ctx)
		case "export":
			c.export(ctx)
		case "help", "?":
			c.help()
		case "logout":
			if c.login {
				return errLogout
			}
			c.println("Login is disabled.")
		case "exit", "quit":
			return errQuit
		default:
			c.printf("Unknown command: %s. Type 'help' for a list of commands.\n", line)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) help() {
	c.println("Commands:")
	c.println("  add     record a new expense")
	c.println("  list    show all expenses")
	c.println("  total   show the total spent")
	c.println("  edit    change an expense")
	c.println("  delete  remove an expense")
	c.println("  budget  change the budget limit")
	c.println("  export  write the expenses to the configured spreadsheet")
	if c.login {
		c.println("  logout  return to the login screen")
	}
	c.println("  exit    quit")
}

func (c *Console) add(ctx context.Context) error {
	desc, err := c.ask(ctx, "Description: ")
	if err != nil {
		return err
	}
	raw, err := c.ask(ctx, "Amount: ")
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		c.println(invalidAmount)
		return nil
	}

	if _, err := c.svc.AddExpense(ctx, desc, amount); err != nil {
		if errors.Is(err, core.ErrBudgetExceeded) {
			c.println(budgetWarning)
			return nil
		}
		c.reportFailure("add expense", err)
		return nil
	}
	c.afterMutation(c.svc.OverBudget())
	return nil
}

func (c *Console) list() {
	expenses := c.svc.Expenses()
	if len(expenses) == 0 {
		c.println(emptyLedger)
		return
	}
	for _, e := range expenses {
		c.println(e.Format(c.symbol))
	}
}

func (c *Console) total() {
	c.printf("Total Expenses: %s\n", core.FormatAmount(c.symbol, c.svc.Total()))
	if c.svc.OverBudget() {
		c.println(budgetWarning)
	}
}

// choose lists the entries numbered from 1 and returns the picked one.
func (c *Console) choose(ctx context.Context) (core.Expense, bool, error) {
	expenses := c.svc.Expenses()
	if len(expenses) == 0 {
		c.println(emptyLedger)
		return core.Expense{}, false, nil
	}
	for i, e := range expenses {
		c.printf("%d. %s\n", i+1, e.Format(c.symbol))
	}
	raw, err := c.ask(ctx, "Select expense number: ")
	if err != nil {
		return core.Expense{}, false, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 1 || n > len(expenses) {
		c.println(invalidSelection)
		return core.Expense{}, false, nil
	}
	return expenses[n-1], true, nil
}

func (c *Console) edit(ctx context.Context) error {
	selected, ok, err := c.choose(ctx)
	if err != nil || !ok {
		return err
	}

	desc, err := c.ask(ctx, fmt.Sprintf("New description [%s]: ", selected.Description))
	if err != nil {
		return err
	}
	if desc == "" {
		desc = selected.Description
	}

	raw, err := c.ask(ctx, fmt.Sprintf("New amount [%s]: ", selected.Amount.StringFixed(2)))
	if err != nil {
		return err
	}
	amount := selected.Amount
	if raw != "" {
		if amount, err = core.ParseAmount(raw); err != nil {
			c.println(invalidAmount)
			return nil
		}
	}

	res, err := c.svc.EditExpense(ctx, selected.Description, desc, amount)
	if err != nil {
		c.reportFailure("edit expense", err)
		return nil
	}
	c.afterMutation(res.OverBudget)
	return nil
}

func (c *Console) delete(ctx context.Context) error {
	selected, ok, err := c.choose(ctx)
	if err != nil || !ok {
		return err
	}

	answer, err := c.ask(ctx, deleteConfirm)
	if err != nil {
		return err
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		c.println("Cancelled.")
		return nil
	}

	res, err := c.svc.DeleteExpense(ctx, selected.Description)
	if err != nil {
		c.reportFailure("delete expense", err)
		return nil
	}
	c.afterMutation(res.OverBudget)
	return nil
}

func (c *Console) budget(ctx context.Context) error {
	c.printf("Current budget: %s\n", core.FormatAmount(c.symbol, c.svc.Budget()))
	raw, err := c.ask(ctx, "New budget (empty keeps current): ")
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		c.println(invalidAmount)
		return nil
	}

	res, err := c.svc.SetBudget(ctx, amount)
	if err != nil {
		c.reportFailure("set budget", err)
		return nil
	}
	c.printf("Budget set to %s\n", core.FormatAmount(c.symbol, amount))
	c.afterMutation(res.OverBudget)
	return nil
}

func (c *Console) export(ctx context.Context) {
	if c.exporter == nil {
		c.println("Export is not configured.")
		return
	}
	expenses := c.svc.Expenses()
	if err := c.exporter.ExportExpenses(ctx, expenses, c.svc.Summary()); err != nil {
		c.logger.ErrorContext(ctx, "Export failed", "operation", applog.OpExport, "error", err)
		c.printf("Export failed: %v\n", err)
		return
	}
	c.printf("Exported %d expenses.\n", len(expenses))
}

// afterMutation re-renders the listing and warns when over budget.
func (c *Console) afterMutation(overBudget bool) {
	c.list()
	if overBudget {
		c.println(budgetWarning)
	}
}

func (c *Console) reportFailure(action string, err error) {
	c.logger.Error("Command failed", "command", action, "error", err)
	c.printf("Could not %s: %v\n", action, err)
}

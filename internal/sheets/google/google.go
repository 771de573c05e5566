package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	ports "expensetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Descriptions are user text; RAW keeps Sheets from evaluating them as
// formulas or numbers.
const valueInputOption = "RAW"

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	AuditSheet         string
	ExportSheet        string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	auditSheet    string
	exportSheet   string
}

// Ensure interface conformance
var (
	_ ports.EventAppender   = (*Client)(nil)
	_ ports.ExpenseExporter = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.AuditSheet == "" {
		cfg.AuditSheet = "Audit"
	}
	if cfg.ExportSheet == "" {
		cfg.ExportSheet = "Expenses"
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "audit_sheet", cfg.AuditSheet, "export_sheet", cfg.ExportSheet)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		auditSheet:    cfg.AuditSheet,
		exportSheet:   cfg.ExportSheet,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	jsonCreds := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if jsonCreds == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case jsonCreds != "":
		return []byte(jsonCreds), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendEvent adds one row to the audit sheet and returns the updated range.
func (c *Client) AppendEvent(ctx context.Context, e events.Event) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:H", c.auditSheet)
	vr := &gsheet.ValueRange{Values: [][]any{eventRow(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.auditSheet, err)
	}
	if resp.Updates == nil {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// ExportExpenses clears the export sheet and writes the listing followed by
// total and budget rows.
func (c *Client) ExportExpenses(ctx context.Context, expenses []core.Expense, summary core.Summary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A:C", c.exportSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	rows := expenseRows(expenses, summary)
	rng := fmt.Sprintf("%s!A1:C%d", c.exportSheet, len(rows))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Exported expenses to Google Sheets", "rows", len(expenses), "sheet", c.exportSheet)
	return nil
}

func eventRow(e events.Event) []any {
	return []any{
		e.OccurredAt.UTC().Format(time.RFC3339),
		string(e.Type),
		e.ID,
		e.ExpenseID,
		e.Description,
		e.Amount.StringFixed(2),
		e.Total.StringFixed(2),
		e.Budget.StringFixed(2),
	}
}

func expenseRows(expenses []core.Expense, summary core.Summary) [][]any {
	rows := make([][]any, 0, len(expenses)+3)
	rows = append(rows, []any{"ID", "Description", "Amount"})
	for _, e := range expenses {
		rows = append(rows, []any{e.ID, e.Description, e.Amount.StringFixed(2)})
	}
	rows = append(rows,
		[]any{"", "Total", summary.Total.StringFixed(2)},
		[]any{"", "Budget", summary.Budget.StringFixed(2)},
	)
	return rows
}

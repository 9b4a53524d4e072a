// Package google mirrors household records to a Google Sheets ledger using
// Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"messbook/internal/core"
	"messbook/internal/ledger"
)

type Client struct {
	svc                *gsheet.Service
	spreadsheetID      string
	expensesSheet      string
	contributionsSheet string
}

var _ ledger.Writer = (*Client)(nil)

// NewFromEnv creates a ledger client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet base names: GOOGLE_EXPENSES_SHEET_NAME (default "Expenses"),
// GOOGLE_CONTRIBUTIONS_SHEET_NAME (default "Contributions"). The current
// year is prefixed to each base name.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expensesBase := strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_SHEET_NAME"))
	if expensesBase == "" {
		expensesBase = "Expenses"
	}
	contributionsBase := strings.TrimSpace(os.Getenv("GOOGLE_CONTRIBUTIONS_SHEET_NAME"))
	if contributionsBase == "" {
		contributionsBase = "Contributions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		expensesSheet:      yearPrefixedName(expensesBase, year),
		contributionsSheet: yearPrefixedName(contributionsBase, year),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets ledger service created")
	return service, nil
}

// AppendExpense writes one expense row: date, member, amount, items,
// description.
func (c *Client) AppendExpense(ctx context.Context, owner core.Profile, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{
		e.Date.Format("2006-01-02"),
		ownerLabel(owner),
		float64(e.Amount.Cents) / 100.0,
		strings.Join(e.Items, ", "),
		e.Description,
	}
	return c.appendRow(ctx, c.expensesSheet, row)
}

// AppendContribution writes one contribution row: date, member, amount,
// status.
func (c *Client) AppendContribution(ctx context.Context, owner core.Profile, contrib core.Contribution) (string, error) {
	if err := contrib.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{
		contrib.Date.Format("2006-01-02"),
		ownerLabel(owner),
		float64(contrib.Amount.Cents) / 100.0,
		string(contrib.Status),
	}
	return c.appendRow(ctx, c.contributionsSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the sheet dimensions.
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:%c%d", sheet, nextRow, 'A'+len(row)-1, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

func ownerLabel(p core.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d %s", year, base)
}

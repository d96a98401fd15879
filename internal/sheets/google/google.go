package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const backendName = "sheets"

// Client stores the ledger in one tab of a Google spreadsheet, using the
// same header and columns as the CSV file.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.LedgerStore = (*Client)(nil)

// Options configures a Client. Credentials are a service account key, given
// inline or as a file path; with neither, GOOGLE_APPLICATION_CREDENTIALS is
// consulted.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	// ClientOptions are appended last and mainly serve tests
	// (endpoint override, no authentication).
	ClientOptions []goption.ClientOption
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(ctx, opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets client ready", "spreadsheet_id", spreadsheetID, "sheet", sheetName)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account file", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("%s!A:D", c.sheetName)
}

// rowsFrom covers columns A to D from the 1-based row to the end of the sheet.
func (c *Client) rowsFrom(row int) string {
	return fmt.Sprintf("%s!A%d:D", c.sheetName, row)
}

// Location identifies the sheet in errors and logs.
func (c *Client) Location() string {
	return c.spreadsheetID + "/" + c.sheetName
}

// Load implements ports.LedgerReader. An empty tab is an empty ledger.
func (c *Client) Load(ctx context.Context) (ledger.Ledger, error) {
	if c.svc == nil {
		return ledger.Ledger{}, c.readErr(errors.New("sheets service not initialized"))
	}
	rng := c.dataRange()
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ledger.Ledger{}, c.readErr(fmt.Errorf("read %s: %w", rng, err))
	}
	if len(resp.Values) == 0 {
		slog.InfoContext(ctx, "Sheet is empty, starting empty ledger", "range", rng)
		return ledger.Ledger{}, nil
	}

	l, err := valuesToLedger(resp.Values)
	if err != nil {
		return ledger.Ledger{}, c.readErr(err)
	}
	return l, nil
}

// Save implements ports.LedgerWriter. The header and records overwrite the
// top of the sheet first; only rows below the new ledger are cleared
// afterwards. A failed update leaves the previous contents in place.
func (c *Client) Save(ctx context.Context, l ledger.Ledger) error {
	if c.svc == nil {
		return c.writeErr(errors.New("sheets service not initialized"))
	}
	values := ledgerToValues(l)

	top := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, top, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return c.writeErr(fmt.Errorf("update %s: %w", top, err))
	}

	stale := c.rowsFrom(len(values) + 1)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, stale, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return c.writeErr(fmt.Errorf("clear %s: %w", stale, err))
	}

	slog.InfoContext(ctx, "Ledger saved to Google Sheets", "range", c.dataRange(), "records", l.Len())
	return nil
}

func (c *Client) readErr(err error) error {
	return &core.StorageReadError{Backend: backendName, Location: c.Location(), Err: err}
}

func (c *Client) writeErr(err error) error {
	return &core.StorageWriteError{Backend: backendName, Location: c.Location(), Err: err}
}

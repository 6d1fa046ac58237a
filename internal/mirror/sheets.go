package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kaskom/internal/core"
)

// SheetsMirror replicates the transaction book to a Google Sheet so the
// treasurers have an out-of-process copy. Replication is best effort: a
// failed mirror run never touches local state.
type SheetsMirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var headerRow = []any{
	"ID", "Tipe", "Jumlah", "Kategori", "Deskripsi", "Bendahara", "Tanggal", "Komentar",
}

// NewFromEnv creates a mirror using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Transaksi"). Credentials come from a
// user OAuth client (GOOGLE_OAUTH_CLIENT_JSON/FILE plus the token saved by
// oauth-init) or from a service account (GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS).
func NewFromEnv(ctx context.Context) (*SheetsMirror, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transaksi"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsMirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ReplaceBook clears the mirrored range and rewrites it from the snapshot,
// one row per transaction, newest first, matching the store's order.
func (m *SheetsMirror) ReplaceBook(ctx context.Context, items []core.Transaction) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A1:H", m.sheetName)
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear mirror range %s: %w", rng, err)
	}

	values := make([][]any, 0, len(items)+1)
	values = append(values, headerRow)
	for _, tx := range items {
		values = append(values, []any{
			tx.ID,
			string(tx.Type),
			tx.Amount,
			tx.Category,
			tx.Description,
			tx.Treasurer,
			tx.Date,
			len(tx.Comments),
		})
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write mirror range %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Mirror updated",
		"spreadsheet_id", m.spreadsheetID,
		"sheet", m.sheetName,
		"rows", len(items))
	return nil
}

// newSheetsService initializes a Sheets service from whatever credentials the
// environment carries. A user OAuth client (bootstrapped with oauth-init)
// takes precedence; otherwise service account credentials are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if ts, ok, err := oauthTokenSource(ctx); err != nil {
		return nil, err
	} else if ok {
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

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

	return service, nil
}

package sheets

import (
	"context"
	"fmt"
	"os"

	"vantry/internal/config"
	"vantry/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client mirrors the inventory into a Google Sheet using a service
// account.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger
}

func NewClient(ctx context.Context, cfg config.SheetsConfig, logger *zerolog.Logger) (*Client, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

// ReplaceInventorySheet clears the sheet and writes the full inventory
// snapshot, one row per item.
func (c *Client) ReplaceInventorySheet(ctx context.Context, items []models.Item) error {
	if _, err := c.service.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := [][]interface{}{
		{"Category", "Item", "Quantity", "Threshold", "Status"},
	}
	for _, item := range items {
		values = append(values, []interface{}{
			item.Category,
			item.Name,
			item.Quantity,
			item.Threshold,
			item.Status().Label(),
		})
	}

	_, err := c.service.Spreadsheets.Values.
		Update(c.spreadsheetID, c.sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write inventory to sheet: %w", err)
	}

	c.logger.Info().Int("rows", len(items)).Msg("inventory mirrored to sheet")
	return nil
}

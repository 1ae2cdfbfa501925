package google

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient maintains the proposal ledger spreadsheet.
type SheetsClient struct {
	service *sheets.Service
}

func NewSheetsClient(ctx context.Context, credentialsFile string) (*SheetsClient, error) {

	if credentialsFile == "" {
		return nil, fmt.Errorf("sheets: credentials file is required")
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &SheetsClient{service: service}, nil
}

func (c *SheetsClient) CreateSpreadsheet(ctx context.Context, title string) (string, error) {

	spreadsheet, err := c.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets: failed to create spreadsheet: %w", err)
	}

	return spreadsheet.SpreadsheetId, nil
}

func (c *SheetsClient) AppendRow(ctx context.Context, spreadsheetID string, row []any) error {

	valueRange := &sheets.ValueRange{Values: [][]any{row}}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, "A1", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: failed to append row: %w", err)
	}
	return nil
}

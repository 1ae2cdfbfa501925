package google

import (
	"context"
	"fmt"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DocsClient creates proposal documents. The Docs API is not safe for
// concurrent document creation from one process; callers serialize access
// through the gate owned by the outreach service.
type DocsClient struct {
	service *docs.Service
}

func NewDocsClient(ctx context.Context, credentialsFile string) (*DocsClient, error) {

	if credentialsFile == "" {
		return nil, fmt.Errorf("docs: credentials file is required")
	}

	service, err := docs.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("docs: failed to create service: %w", err)
	}

	return &DocsClient{service: service}, nil
}

// CreateDocument creates a titled document, inserts the content and returns
// the document's edit URL.
func (c *DocsClient) CreateDocument(ctx context.Context, title string, content string) (string, error) {

	doc, err := c.service.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("docs: failed to create document: %w", err)
	}

	_, err = c.service.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     content,
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("docs: failed to insert content: %w", err)
	}

	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentId), nil
}

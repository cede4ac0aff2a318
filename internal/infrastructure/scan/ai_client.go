package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultAITimeout = 60 * time.Second

// AIClient calls the external bill-extraction service over HTTP. The
// service receives the scan file and returns structured field guesses.
type AIClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewAIClient creates a client for the extraction service
func NewAIClient(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *AIClient {
	if timeout == 0 {
		timeout = defaultAITimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// aiExtractionResponse is the wire format of the extraction service
type aiExtractionResponse struct {
	SupplierName string   `json:"supplier_name"`
	BillNumber   string   `json:"bill_number"`
	BillDate     string   `json:"bill_date"` // RFC 3339 or 2006-01-02
	Subtotal     string   `json:"subtotal"`
	TaxAmount    string   `json:"tax_amount"`
	GrandTotal   string   `json:"grand_total"`
	Confidence   float64  `json:"confidence"`
	RawText      string   `json:"raw_text"`
	Lines        []aiLine `json:"lines"`
}

type aiLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// Extract sends the scan file to the extraction service
func (c *AIClient) Extract(ctx context.Context, scan *purchasing.BillScan, body io.Reader) (purchasing.ExtractionResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", scan.FileName)
	if err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	if err := writer.WriteField("content_type", scan.ContentType); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("extraction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return purchasing.ExtractionResult{}, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, string(payload))
	}

	var wire aiExtractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("invalid extraction service response: %w", err)
	}

	result := purchasing.ExtractionResult{
		SupplierName: wire.SupplierName,
		BillNumber:   wire.BillNumber,
		Subtotal:     parseAmount(wire.Subtotal),
		TaxAmount:    parseAmount(wire.TaxAmount),
		GrandTotal:   parseAmount(wire.GrandTotal),
		Confidence:   clampConfidence(wire.Confidence),
		Engine:       purchasing.ExtractionEngineAI,
		RawText:      wire.RawText,
	}
	if t := parseDate(wire.BillDate); t != nil {
		result.BillDate = t
	}
	for _, line := range wire.Lines {
		result.Lines = append(result.Lines, purchasing.ExtractedLine{
			Description: line.Description,
			Quantity:    parseAmount(line.Quantity),
			UnitPrice:   parseAmount(line.UnitPrice),
			Amount:      parseAmount(line.Amount),
		})
	}

	c.logger.Debug("AI extraction completed",
		zap.String("scan_id", scan.ID.String()),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// parseAmount converts a wire amount string to a decimal, zero on failure
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Package scan implements the bill-scan extraction pipeline: an external
// AI extraction service with a local Tesseract OCR fallback, plus the
// drop-directory watcher that feeds scanner output into the pipeline.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"io"

	purchasingapp "github.com/printcloud/backend/internal/application/purchasing"
	"github.com/printcloud/backend/internal/domain/purchasing"
	infraconfig "github.com/printcloud/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure PipelineExtractor implements ScanExtractor
var _ purchasingapp.ScanExtractor = (*PipelineExtractor)(nil)

// PipelineExtractor tries the AI extraction service first and falls back
// to local OCR when the service is unavailable or not configured.
type PipelineExtractor struct {
	ai     *AIClient // nil when no endpoint is configured
	ocr    *OCRExtractor
	logger *zap.Logger
}

// NewPipelineExtractor builds the extraction pipeline from configuration
func NewPipelineExtractor(cfg *infraconfig.ScanConfig, logger *zap.Logger) *PipelineExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}

	var ai *AIClient
	if cfg != nil && cfg.AIEndpoint != "" {
		ai = NewAIClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AITimeout, logger)
	}

	languages := "eng"
	if cfg != nil && cfg.OCRLanguages != "" {
		languages = cfg.OCRLanguages
	}

	return &PipelineExtractor{
		ai:     ai,
		ocr:    NewOCRExtractor(languages, logger),
		logger: logger,
	}
}

// Extract runs the scan through the pipeline. The body is buffered so both
// engines can read it.
func (p *PipelineExtractor) Extract(ctx context.Context, scan *purchasing.BillScan, body io.Reader) (purchasing.ExtractionResult, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to read scan body: %w", err)
	}
	if len(data) == 0 {
		return purchasing.ExtractionResult{}, fmt.Errorf("scan body is empty")
	}

	if p.ai != nil {
		result, err := p.ai.Extract(ctx, scan, bytes.NewReader(data))
		if err == nil {
			return result, nil
		}
		p.logger.Warn("AI extraction failed, falling back to OCR",
			zap.String("scan_id", scan.ID.String()),
			zap.Error(err))
	}

	return p.ocr.Extract(ctx, scan, bytes.NewReader(data))
}

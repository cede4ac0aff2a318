package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"go.uber.org/zap"
)

// OCRExtractor runs local Tesseract OCR over the scan image and parses
// bill fields out of the recognised text. PDFs are fed to Tesseract
// unmodified; images get light preprocessing first.
type OCRExtractor struct {
	languages string
	logger    *zap.Logger
}

// NewOCRExtractor creates a Tesseract-backed extractor
func NewOCRExtractor(languages string, logger *zap.Logger) *OCRExtractor {
	if languages == "" {
		languages = "eng"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRExtractor{
		languages: languages,
		logger:    logger,
	}
}

// Extract OCRs the scan and parses the text into field guesses
func (e *OCRExtractor) Extract(ctx context.Context, scan *purchasing.BillScan, body io.Reader) (purchasing.ExtractionResult, error) {
	tmpPath, cleanup, err := e.stage(scan, body)
	if err != nil {
		return purchasing.ExtractionResult{}, err
	}
	defer cleanup()

	if err := ctx.Err(); err != nil {
		return purchasing.ExtractionResult{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(e.languages, "+")...); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to configure OCR language: %w", err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("failed to load scan into OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return purchasing.ExtractionResult{}, fmt.Errorf("OCR failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return purchasing.ExtractionResult{}, fmt.Errorf("OCR produced no text")
	}

	result := parseBillText(text)
	result.Engine = purchasing.ExtractionEngineOCR

	e.logger.Debug("OCR extraction completed",
		zap.String("scan_id", scan.ID.String()),
		zap.Int("text_bytes", len(text)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// stage writes the scan to a temp file, preprocessing images for better
// recognition. Returns the file path and a cleanup func.
func (e *OCRExtractor) stage(scan *purchasing.BillScan, body io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "billscan-*"+fileExtension(scan))
	if err != nil {
		return "", nil, fmt.Errorf("failed to stage scan: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to stage scan: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to stage scan: %w", err)
	}

	if isImage(scan.ContentType) {
		if err := preprocessImage(path); err != nil {
			// Preprocessing is best effort; OCR still runs on the original.
			e.logger.Debug("scan preprocessing skipped", zap.Error(err))
		}
	}

	return path, cleanup, nil
}

// preprocessImage converts to grayscale and upscales small images, which
// measurably improves Tesseract recognition on phone photos.
func preprocessImage(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 800 {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}
	return imaging.Save(gray, path)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func fileExtension(scan *purchasing.BillScan) string {
	if idx := strings.LastIndex(scan.FileName, "."); idx != -1 {
		return scan.FileName[idx:]
	}
	switch scan.ContentType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/printcloud/backend/internal/domain/document"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpConfig contains configuration for the chromedp PDF renderer
type ChromedpConfig struct {
	// ChromePath is an explicit Chrome/Chromium binary; empty uses lookup
	ChromePath string
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome instance (optional).
	// If empty, chromedp launches a new browser instance.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpRenderer renders HTML to PDF using the Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a chromedp-based PDF renderer
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer := &ChromedpRenderer{
		config: config,
		logger: logger,
	}
	renderer.initAllocator()

	return renderer, nil
}

func (r *ChromedpRenderer) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)

	if r.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ChromePath))
	}
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// RenderPDF converts HTML to a PDF using the template's page layout
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, tmpl *document.DocTemplate, html string) ([]byte, error) {
	if tmpl == nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "template is nil", nil)
	}
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "HTML content is empty", nil)
	}
	if !tmpl.PaperSize.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(tmpl.PaperSize), nil)
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	doc := buildCompleteHTML(html, tmpl.Name)
	params := buildPrintParams(tmpl)

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithLandscape(params.landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", r.config.DefaultTimeout), err)
		}
		if ctx.Err() == context.Canceled {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}

		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed: "+err.Error(), err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Info("PDF rendered",
		zap.String("template", tmpl.Name),
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", estimatePageCount(pdfData)),
		zap.Duration("duration", time.Since(startTime)))

	return pdfData, nil
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// printParams holds the parameters for PDF printing in inches
type printParams struct {
	paperWidth   float64
	paperHeight  float64
	marginTop    float64
	marginRight  float64
	marginBottom float64
	marginLeft   float64
	landscape    bool
}

func buildPrintParams(tmpl *document.DocTemplate) *printParams {
	width, height := paperDimensions(tmpl.PaperSize)

	params := &printParams{
		paperWidth:   mmToInches(width),
		paperHeight:  mmToInches(height),
		landscape:    tmpl.Orientation == document.OrientationLandscape,
		marginTop:    mmToInches(tmpl.Margins.Top),
		marginRight:  mmToInches(tmpl.Margins.Right),
		marginBottom: mmToInches(tmpl.Margins.Bottom),
		marginLeft:   mmToInches(tmpl.Margins.Left),
	}

	// Receipt paper is continuous: use a very tall page so Chrome does not
	// paginate; the actual content height determines the output.
	if tmpl.PaperSize == document.PaperSizeReceipt80 || tmpl.PaperSize == document.PaperSizeReceipt58 {
		params.paperHeight = mmToInches(3000)
	}

	return params
}

// paperDimensions returns width and height in millimetres for portrait
func paperDimensions(size document.PaperSize) (float64, float64) {
	switch size {
	case document.PaperSizeA4:
		return 210, 297
	case document.PaperSizeA5:
		return 148, 210
	case document.PaperSizeReceipt80:
		return 80, 297
	case document.PaperSizeReceipt58:
		return 58, 297
	default:
		return 210, 297
	}
}

// buildCompleteHTML wraps a fragment in a complete HTML document
func buildCompleteHTML(html, title string) string {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return html
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head>")
	buf.WriteString("<meta charset=\"UTF-8\">")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">")
	if title != "" {
		buf.WriteString("<title>")
		buf.WriteString(title)
		buf.WriteString("</title>")
	}
	buf.WriteString("</head><body>")
	buf.WriteString(html)
	buf.WriteString("</body></html>")

	return buf.String()
}

// mmToInches converts millimetres to inches (Chrome uses inches)
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// estimatePageCount counts page objects in the PDF structure
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Page" also matches "/Type /Pages", subtract the parent objects
	parentCount := bytes.Count(pdfData, []byte("/Type /Pages"))
	count = count - parentCount
	return max(count, 1)
}

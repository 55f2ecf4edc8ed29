package rendering

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// renderTimeout bounds a single browser print.
const renderTimeout = 60 * time.Second

// A4 paper size in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// PDFRenderer prints HTML documents to PDF using a headless Chrome
// instance. CHROME_PATH overrides browser discovery.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// RenderHTMLToPDF prints an HTML document to PDF bytes.
func (r *PDFRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, renderTimeout)
	defer cancelRun()

	// Chrome needs a file URL; data URLs hit length limits on large
	// documents.
	tmpDir, err := os.MkdirTemp("", "resume-optimizer-")
	if err != nil {
		return nil, &Error{Document: "pdf", Message: "failed to create temp directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &Error{Document: "pdf", Message: "failed to write temp HTML", Cause: err}
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Document: "pdf", Message: "browser print failed", Cause: err}
	}
	return pdfBuf, nil
}

// WritePDF renders HTML and writes the PDF to the given path.
func (r *PDFRenderer) WritePDF(ctx context.Context, html, outPath string) error {
	pdf, err := r.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return &Error{Document: "pdf", Message: "failed to create output directory", Cause: err}
	}
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return &Error{Document: "pdf", Message: "failed to write " + outPath, Cause: err}
	}
	return nil
}

// Package docgenpdf converts templated HTML documents to PDF via headless
// Chromium (chromedp) or wkhtmltopdf. The built-in paginated renderer in the
// pdf package does not need a browser; use this package when documents rely
// on full CSS layout from an HTML template.
package docgenpdf

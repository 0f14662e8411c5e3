// Command ocr runs the OCR pipeline once on a local image or PDF and prints
// the response as JSON.
//
// Usage:
//
//	ocr -file page.png [-prompt layout_parsing] [-csv out.csv] [-xlsx out.xlsx] [-html out.html]
//	ocr -file "scan 01.pdf" -export-dir out/   (writes out/scan_01.{csv,xlsx,html})
//	ocr -mint-token SUBJECT [-ttl 1h]
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ocrsvc/internal/app"
	"ocrsvc/internal/config"
	"ocrsvc/internal/domain"
	"ocrsvc/internal/export"
	"ocrsvc/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		file      = flag.String("file", "", "image or PDF to process")
		prompt    = flag.String("prompt", string(domain.DefaultPromptType), "prompt type: layout_parsing, layout_detection, text_only")
		csvOut    = flag.String("csv", "", "write layout elements as CSV to this path")
		xlsxOut   = flag.String("xlsx", "", "write layout elements and markdown as XLSX to this path")
		htmlOut   = flag.String("html", "", "write rendered markdown as HTML to this path")
		exportDir = flag.String("export-dir", "", "write CSV, XLSX and HTML exports named after the input file into this directory")
		mintToken = flag.String("mint-token", "", "print a bearer token for this subject and exit")
		ttl       = flag.Duration("ttl", time.Hour, "lifetime of a minted token")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *mintToken != "" {
		if !cfg.Auth.Enabled() {
			return errors.New("OCRSVC_AUTH_SECRET is not set")
		}
		token, err := middleware.SignToken(&cfg.Auth, *mintToken, *ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	if *file == "" {
		flag.Usage()
		return errors.New("-file is required")
	}
	req, err := requestFromFile(*file, *prompt)
	if err != nil {
		return err
	}

	app.RegisterProviders()
	pipeline, err := app.Build(cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if *exportDir != "" {
		if err := os.MkdirAll(*exportDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", *exportDir, err)
		}
		stem := export.SanitizeFilename(strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file)))
		if stem == "" {
			stem = "ocr"
		}
		base := filepath.Join(*exportDir, stem)
		*csvOut = firstNonEmpty(*csvOut, base+".csv")
		*xlsxOut = firstNonEmpty(*xlsxOut, base+".xlsx")
		*htmlOut = firstNonEmpty(*htmlOut, base+".html")
	}

	resp := pipeline.Service.Process(context.Background(), "", req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if resp.Status == domain.StatusError {
		return fmt.Errorf("ocr failed: %s", resp.Error)
	}

	if *csvOut != "" {
		if err := writeFile(*csvOut, func(w io.Writer) error { return export.WriteCSV(w, resp) }); err != nil {
			return err
		}
	}
	if *xlsxOut != "" {
		if err := writeFile(*xlsxOut, func(w io.Writer) error { return export.WriteXLSX(w, resp) }); err != nil {
			return err
		}
	}
	if *htmlOut != "" {
		html, err := export.RenderHTML(resp.Markdown)
		if err != nil {
			return err
		}
		if err := writeFile(*htmlOut, func(w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// requestFromFile builds a request the same way an HTTP client would, so the
// CLI exercises the full decode path.
func requestFromFile(path, prompt string) (domain.OCRRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.OCRRequest{}, fmt.Errorf("reading %s: %w", path, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	req := domain.OCRRequest{PromptType: domain.PromptType(prompt)}
	if strings.EqualFold(filepath.Ext(path), ".pdf") || bytes.HasPrefix(data, []byte("%PDF-")) {
		req.PDFData = encoded
	} else {
		req.ImageData = encoded
	}
	return req, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return f.Close()
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

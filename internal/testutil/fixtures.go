// Package testutil builds request payload fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
)

// PNG returns a w x h PNG with a dark band across the middle.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if y >= h/3 && y < 2*h/3 {
				c = color.RGBA{A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGBase64 returns PNG(w, h) base64-encoded.
func PNGBase64(w, h int) string {
	return base64.StdEncoding.EncodeToString(PNG(w, h))
}

// PDF returns a minimal valid PDF with the given number of empty pages.
func PDF(pages int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	total := 2 + pages
	offsets := make([]int, total+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages)

	for i := 0; i < pages; i++ {
		n := i + 3
		offsets[n] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", n)
	}

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xrefOffset)
	return []byte(b.String())
}

// PDFBase64 returns PDF(pages) base64-encoded.
func PDFBase64(pages int) string {
	return base64.StdEncoding.EncodeToString(PDF(pages))
}

package util

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Below this many characters the embedded text layer is treated as missing
// and the pages are OCRed instead.
const minTextLayerChars = 50

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf and docx are allowed")
	ErrNoText            = errors.New("no text extracted from document")

	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// ExtractText returns the plain text of a resume. PDFs are read from their
// text layer first and OCRed with tesseract when that layer is empty.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", "":
		text, err := extractPDFText(data)
		if err == nil && len(text) >= minTextLayerChars {
			return text, nil
		}
		if err != nil {
			slog.Debug("pdf text layer unreadable, trying OCR", "file", filename, "error", err)
		}
		ocr, ocrErr := ExtractPDFOCR(data)
		if ocrErr != nil {
			if text != "" {
				return text, nil
			}
			return "", ocrErr
		}
		return ocr, nil
	case ".docx":
		return extractDocxText(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		xml := strings.ReplaceAll(string(raw), "</w:p>", "\n")
		xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
		text := normalizeWhitespace(xmlTags.ReplaceAllString(xml, " "))
		if text == "" {
			return "", ErrNoText
		}
		return text, nil
	}
	return "", errors.New("no document.xml found in docx")
}

func normalizeWhitespace(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// ExtractPDFOCR renders every page and runs tesseract over it.
func ExtractPDFOCR(data []byte) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	tmpDir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			slog.Warn("ocr page skipped", "error", lastErr)
			continue
		}

		pagePath := filepath.Join(tmpDir, fmt.Sprintf("page-%d.png", n+1))
		if err := savePNG(pagePath, img); err != nil {
			lastErr = fmt.Errorf("page %d: failed to save PNG: %w", n+1, err)
			slog.Warn("ocr page skipped", "error", lastErr)
			continue
		}

		out, err := exec.Command("tesseract", pagePath, "stdout", "-l", "eng").CombinedOutput()
		if err != nil {
			lastErr = fmt.Errorf("page %d: tesseract error: %w, output: %s", n+1, err, string(out))
			slog.Warn("ocr page skipped", "error", lastErr)
			continue
		}

		if pageText := strings.TrimSpace(string(out)); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", ErrNoText
	}

	slog.Debug("ocr finished", "pages", doc.NumPage(), "chars", len(result))
	return result, nil
}

func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	tcmp3 "github.com/tcolgate/mp3"
)

// MP3Duration decodes every frame of r and returns the total play time in seconds.
func MP3Duration(r io.Reader) (int, error) {
	var (
		dur     float64
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("decode mp3: %w", err)
		}
		dur += frame.Duration().Seconds()
	}

	return int(dur + 0.5), nil
}

// PDFText returns the plain text of every readable page. Pages that fail to
// decode are skipped.
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
	}

	return strings.TrimSpace(b.String()), nil
}

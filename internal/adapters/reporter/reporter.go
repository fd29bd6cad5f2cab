package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"thumbs3/internal/core/domain"
	"thumbs3/internal/core/port"

	"github.com/rs/zerolog/log"
)

// New returns the reporter for the configured output format. Reports are written to out.
func New(cfg domain.Config, out io.Writer) (port.Reporter, error) {
	switch cfg.Output {
	case domain.OutputText:
		return NewTextReporter(out), nil
	case domain.OutputJSON:
		return NewJSONReporter(out), nil
	case domain.OutputPost:
		return NewPostReporter(cfg.CallbackURL, out), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", domain.ErrConfig, cfg.Output)
	}
}

type TextReporter struct {
	out io.Writer
}

func NewTextReporter(out io.Writer) *TextReporter {
	return &TextReporter{out: out}
}

func (r *TextReporter) Report(_ context.Context, records []domain.UploadRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(r.out, "%s\t%s\t%d\t%d\n", rec.Filename, rec.URL, rec.Width, rec.Height); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

type JSONReporter struct {
	out io.Writer
}

func NewJSONReporter(out io.Writer) *JSONReporter {
	return &JSONReporter{out: out}
}

func (r *JSONReporter) Report(_ context.Context, records []domain.UploadRecord) error {
	body, err := Marshal(records)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(r.out, string(body)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// PostReporter delivers the JSON report as the form field "data" to a callback URL.
type PostReporter struct {
	callbackURL string
	out         io.Writer
}

func NewPostReporter(callbackURL string, out io.Writer) *PostReporter {
	return &PostReporter{callbackURL: callbackURL, out: out}
}

func (r *PostReporter) Report(ctx context.Context, records []domain.UploadRecord) error {
	body, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCallback, err)
	}

	form := url.Values{}
	form.Set("data", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.callbackURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: error creating request: %w", domain.ErrCallback, err)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrCallback, r.callbackURL, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: error reading response: %w", domain.ErrCallback, err)
	}

	log.Debug().Int("status", res.StatusCode).Int("records", len(records)).Msg("posted results to callback")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s: unexpected status code %d", domain.ErrCallback, r.callbackURL, res.StatusCode)
	}

	// the body is echoed as a line, like the text and json reports
	if _, err := fmt.Fprintf(r.out, "%s\n", resBody); err != nil {
		return fmt.Errorf("failed to write callback response: %w", err)
	}
	return nil
}

// Marshal encodes records as a JSON array, never as null.
func Marshal(records []domain.UploadRecord) ([]byte, error) {
	if records == nil {
		records = []domain.UploadRecord{}
	}

	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("error encoding upload records: %w", err)
	}
	return body, nil
}

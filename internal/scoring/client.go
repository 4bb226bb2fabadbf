// Package scoring talks to the visual identification service. The service
// takes one image and answers with the closest known posts.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrScoringUnavailable is returned when the scorer call cannot be completed.
var ErrScoringUnavailable = errors.New("scoring unavailable")

// Candidate is one ranked answer from the scorer. Label is the post id as
// text; Distance is kept raw so the caller decides how to treat bad values.
type Candidate struct {
	Label    string   `json:"label"`
	Distance Distance `json:"distance"`
}

// Distance accepts both a JSON number and a numeric string.
type Distance struct {
	Raw string
}

func (d *Distance) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Raw = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Raw = strings.TrimSpace(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("distance: %w", err)
	}
	d.Raw = n.String()
	return nil
}

// Float parses the distance as a non-negative number.
func (d Distance) Float() (float64, error) {
	v, err := strconv.ParseFloat(d.Raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q: %w", d.Raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite distance %q", d.Raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative distance %v", v)
	}
	return v, nil
}

type identifyResponse struct {
	Result []Candidate `json:"result"`
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ScoreImage uploads the image as the "file" form field and returns the
// candidates in the order the scorer ranked them.
func (c *Client) ScoreImage(ctx context.Context, fileName string, image io.Reader) ([]Candidate, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer request: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", fileName, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build scorer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrScoringUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrScoringUnavailable, err)
	}

	return decoded.Result, nil
}

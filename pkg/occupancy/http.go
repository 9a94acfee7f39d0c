package occupancy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/travigo/bustracker/pkg/ctdf"
)

const defaultDetectorRetries = 3

// HTTPDetector uploads the route image to an external detection service.
// The service answers with a JSON encoded Detection.
type HTTPDetector struct {
	URL            string
	ImageDirectory string
	Client         *http.Client
	MaxRetries     uint64
}

func NewHTTPDetector(url string) *HTTPDetector {
	return &HTTPDetector{
		URL:        url,
		Client:     &http.Client{Timeout: 30 * time.Second},
		MaxRetries: defaultDetectorRetries,
	}
}

func (d *HTTPDetector) imagePath(route *ctdf.RouteDefinition) string {
	if d.ImageDirectory == "" || filepath.IsAbs(route.ImageRef) {
		return route.ImageRef
	}

	return filepath.Join(d.ImageDirectory, route.ImageRef)
}

func (d *HTTPDetector) Detect(ctx context.Context, route *ctdf.RouteDefinition) (Detection, error) {
	imagePath := d.imagePath(route)

	image, err := os.ReadFile(imagePath)
	if errors.Is(err, fs.ErrNotExist) || route.ImageRef == "" {
		return Detection{}, fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
	} else if err != nil {
		return Detection{}, err
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 200 * time.Millisecond
	retryBackoff.MaxElapsedTime = 20 * time.Second

	detection, err := backoff.RetryWithData(func() (Detection, error) {
		return d.request(ctx, route, filepath.Base(imagePath), image)
	}, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, d.MaxRetries), ctx))
	if err != nil {
		return Detection{}, fmt.Errorf("%w: %w", ErrDetectorUnavailable, err)
	}

	return detection, nil
}

func (d *HTTPDetector) request(ctx context.Context, route *ctdf.RouteDefinition, fileName string, image []byte) (Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("route", route.PrimaryIdentifier); err != nil {
		return Detection{}, backoff.Permanent(err)
	}
	if err := writer.WriteField("detected_image", route.DetectedImageRef); err != nil {
		return Detection{}, backoff.Permanent(err)
	}
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		return Detection{}, backoff.Permanent(err)
	}
	if _, err := part.Write(image); err != nil {
		return Detection{}, backoff.Permanent(err)
	}
	if err := writer.Close(); err != nil {
		return Detection{}, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, body)
	if err != nil {
		return Detection{}, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Detection{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return Detection{}, fmt.Errorf("detector returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Detection{}, backoff.Permanent(fmt.Errorf("detector returned %s", resp.Status))
	}

	var detection Detection
	if err := json.NewDecoder(resp.Body).Decode(&detection); err != nil {
		return Detection{}, backoff.Permanent(fmt.Errorf("decode detection: %w", err))
	}
	if detection.OccupantCount < 0 {
		return Detection{}, backoff.Permanent(fmt.Errorf("detector returned negative occupant count %d", detection.OccupantCount))
	}

	return detection, nil
}

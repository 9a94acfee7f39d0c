package history

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bustracker/pkg/ctdf"
	"github.com/ulikunitz/xz"
)

type locationSource interface {
	LocationRecords(ctx context.Context, before time.Time) ([]ctdf.LocationRecord, error)
	DeleteLocationRecords(ctx context.Context, before time.Time) (int64, error)
}

// Archiver moves old location reports out of the database into an xz
// compressed tar bundle with one JSON file per bus and day, optionally
// uploading the bundle to a cloud storage bucket
type Archiver struct {
	OutputDirectory string
	MaxAge          time.Duration
	CloudUpload     bool
	CloudBucketName string
	DeleteArchived  bool

	Source locationSource
	Now    func() time.Time
}

// Perform writes the bundle and returns its file name
func (a *Archiver) Perform(ctx context.Context) (string, error) {
	currentTime := time.Now()
	if a.Now != nil {
		currentTime = a.Now()
	}
	cutOffTime := currentTime.Add(-a.MaxAge)

	log.Info().Time("cutoff", cutOffTime).Msg("Archiving location history")

	records, err := a.Source.LocationRecords(ctx, cutOffTime)
	if err != nil {
		return "", err
	}

	bundleFilename := strings.ReplaceAll(fmt.Sprintf("location-history-%s.tar.xz", currentTime.UTC().Format(time.RFC3339)), ":", "-")
	bundlePath := path.Join(a.OutputDirectory, bundleFilename)

	bundleFile, err := os.Create(bundlePath)
	if err != nil {
		return "", err
	}
	defer bundleFile.Close()

	if err := writeBundle(bundleFile, records, currentTime); err != nil {
		return "", err
	}
	if err := bundleFile.Close(); err != nil {
		return "", err
	}

	log.Info().Int("recordCount", len(records)).Str("bundle", bundlePath).Msg("Location history archive generation complete")

	if a.CloudUpload {
		if err := uploadToStorage(ctx, a.CloudBucketName, bundlePath, bundleFilename); err != nil {
			return bundleFilename, err
		}
	}

	if a.DeleteArchived && len(records) > 0 {
		deleted, err := a.Source.DeleteLocationRecords(ctx, cutOffTime)
		if err != nil {
			return bundleFilename, err
		}
		log.Info().Int64("deleted", deleted).Msg("Removed archived location history")
	}

	return bundleFilename, nil
}

func groupRecords(records []ctdf.LocationRecord) (map[string][]ctdf.LocationRecord, []string) {
	groups := map[string][]ctdf.LocationRecord{}
	var order []string

	for _, record := range records {
		busID := record.BusID
		if busID == "" {
			busID = "unknown"
		}
		filename := fmt.Sprintf("%s/%s.json", strings.ReplaceAll(busID, "/", "_"), record.RecordedAt.UTC().Format("2006-01-02"))

		if _, exists := groups[filename]; !exists {
			order = append(order, filename)
		}
		groups[filename] = append(groups[filename], record)
	}

	return groups, order
}

func writeBundle(w io.Writer, records []ctdf.LocationRecord, modTime time.Time) error {
	xzWriter, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	tarWriter := tar.NewWriter(xzWriter)

	groups, order := groupRecords(records)
	for _, filename := range order {
		contents, err := json.Marshal(groups[filename])
		if err != nil {
			return err
		}

		header := &tar.Header{
			Name:    filename,
			Mode:    0o644,
			Size:    int64(len(contents)),
			ModTime: modTime,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header: %w", err)
		}
		if _, err := tarWriter.Write(contents); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}

	return xzWriter.Close()
}

func uploadToStorage(ctx context.Context, bucketName string, bundlePath string, objectName string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	reader, err := os.Open(bundlePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	object := client.Bucket(bucketName).Object(objectName)
	writer := object.NewWriter(ctx)

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	log.Info().Msgf("Written file %s to bucket %s", object.ObjectName(), object.BucketName())

	return nil
}

package reports

//go:generate go run go.uber.org/mock/mockgen -source=./archiver.go -destination=./mocks/archiver_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/s3"
	"suitesync/shared/constant"
	"suitesync/shared/timezone"
)

// Archiver stores run reports in object storage so operators can inspect
// past sync and audit outcomes after the process exits.
type Archiver interface {
	Archive(ctx context.Context, kind string, report any) (string, error)
}

type archiverImpl struct {
	config *config.Config
	s3     s3.S3
}

func New(cfg *config.Config, storage s3.S3) Archiver {
	return &archiverImpl{
		config: cfg,
		s3:     storage,
	}
}

// Archive uploads the report as JSON and returns the object key. Archiving is
// optional and off by default; when disabled the call is a no-op.
func (a *archiverImpl) Archive(ctx context.Context, kind string, report any) (string, error) {
	if !a.config.Sync.ArchiveReports {
		return "", nil
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s report: %w", kind, err)
	}

	directory := fmt.Sprintf("reports/%s/%s", a.config.App.TenantID, kind)
	fileName := fmt.Sprintf("%s-%s.json", kind, timezone.Now().Format("20060102-150405"))

	key, err := a.s3.UploadBytes(ctx, a.config.Sync.ReportBucketName, directory, fileName, constant.ContentTypeJSON, payload)
	if err != nil {
		return "", fmt.Errorf("failed to archive %s report: %w", kind, err)
	}

	log.Info().Str("key", key).Str("kind", kind).Msg("report archived")

	return key, nil
}

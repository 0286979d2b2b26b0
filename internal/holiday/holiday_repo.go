package holiday

import (
	"context"
	"encoding/json"
	"os"

	holidayerrors "github.com/AkshiGarg/nagarro-leave-manager/internal/holiday/errors"

	"go.uber.org/zap"
)

const DefaultCalendarPath = "resources/holidays.json"

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	All(ctx context.Context) ([]Holiday, error)
}

type fileRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileRepository reads the calendar from the JSON file at path.
// An empty path falls back to HOLIDAYS_FILE, then DefaultCalendarPath.
func NewFileRepository(path string, logger ...*zap.Logger) Repository {
	l := zap.L().Named("holiday.repo")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	if path == "" {
		path = os.Getenv("HOLIDAYS_FILE")
	}
	if path == "" {
		path = DefaultCalendarPath
	}
	return &fileRepository{path: path, logger: l}
}

func (r *fileRepository) All(ctx context.Context) ([]Holiday, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Error("read holiday calendar failed",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, holidayerrors.ErrCalendarUnavailable
	}

	var holidays []Holiday
	if err := json.Unmarshal(raw, &holidays); err != nil {
		r.logger.Error("decode holiday calendar failed",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, holidayerrors.ErrCalendarUnavailable
	}

	return holidays, nil
}

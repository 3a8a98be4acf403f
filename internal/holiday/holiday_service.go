package holiday

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Provider answers "which dates are public holidays" for working-day math.
//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Provider interface {
	Holidays(ctx context.Context, subsidiaryID string, year int) (map[string]string, error)
}

type provider struct {
	repo   Repository
	logger *zap.Logger
}

func NewProvider(repo Repository, logger ...*zap.Logger) Provider {
	l := zap.L().Named("holiday.provider")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.provider")
	}
	return &provider{repo: repo, logger: l}
}

// Holidays returns date -> name keyed by "2006-01-02".
func (p *provider) Holidays(ctx context.Context, subsidiaryID string, year int) (map[string]string, error) {
	rows, err := p.repo.FindByYear(ctx, subsidiaryID, year)
	if err != nil {
		p.logger.Error("holiday lookup failed",
			zap.String("subsidiary_id", subsidiaryID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, h := range rows {
		out[h.Date.Format("2006-01-02")] = h.Name
	}
	return out, nil
}

// DateKey normalizes a date to the map key format used by Holidays.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

package cashier

import (
	"time"

	"github.com/hotelops/backend/internal/domain/cashier"
	"go.uber.org/zap"
)

// Options configures the cashier services
type Options struct {
	Policy         cashier.ClosePolicy
	Roster         []cashier.ShiftType
	ReportCacheTTL time.Duration
	Logger         *zap.Logger
	Metrics        Metrics
	ReportCache    ReportCache
}

// DefaultOptions uses the default close policy and roster without cache or metrics
func DefaultOptions() Options {
	return Options{
		Policy:         cashier.DefaultClosePolicy(),
		Roster:         cashier.DefaultRoster,
		ReportCacheTTL: 5 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Roster) == 0 {
		o.Roster = cashier.DefaultRoster
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics{}
	}
	if o.ReportCache == nil {
		o.ReportCache = nopReportCache{}
	}
	return o
}

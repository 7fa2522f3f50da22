package sqlstore

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-records/internal/model"
)

// Visit dates are dd/mm/yyyy, so substr(visit_date, 4, 7) is mm/yyyy.
// Registration months come from created_date (yyyy-mm-dd hh:mm:ss).
const monthlyBreakdownQuery = `
	SELECT m.month_year, m.new_patients,
	       (SELECT COUNT(*) FROM medical_records r
	        WHERE substr(r.visit_date, 4, 7) = m.month_year) AS visits
	FROM (
		SELECT substr(created_date, 6, 2) || '/' || substr(created_date, 1, 4) AS month_year,
		       COUNT(*) AS new_patients,
		       MIN(substr(created_date, 1, 7)) AS sort_key
		FROM patients
		GROUP BY substr(created_date, 6, 2) || '/' || substr(created_date, 1, 4)
	) m
	ORDER BY m.sort_key DESC
`

type statsRepository struct {
	BaseRepository
}

func (r *statsRepository) Compute(ctx context.Context, today, month string) (_ *model.Stats, err error) {
	defer r.track("stats.compute")(&err)

	stats := &model.Stats{}

	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&stats.TotalPatients, `SELECT COUNT(*) FROM patients`, nil},
		{&stats.TotalVisits, `SELECT COUNT(*) FROM medical_records`, nil},
		{&stats.TodayVisits, `SELECT COUNT(*) FROM medical_records WHERE visit_date = ?`, []interface{}{today}},
		{&stats.MonthVisits, `SELECT COUNT(*) FROM medical_records WHERE substr(visit_date, 4, 7) = ?`, []interface{}{month}},
	}
	for _, c := range counts {
		if err = r.db.GetContext(ctx, c.dest, r.db.Rebind(c.query), c.args...); err != nil {
			return nil, fmt.Errorf("failed to count statistics: %w", err)
		}
	}

	stats.Monthly = []model.MonthlyStat{}
	if err = r.db.SelectContext(ctx, &stats.Monthly, monthlyBreakdownQuery); err != nil {
		return nil, fmt.Errorf("failed to compute monthly breakdown: %w", err)
	}
	for i := range stats.Monthly {
		stats.Monthly[i].Total = stats.Monthly[i].NewPatients + stats.Monthly[i].Visits
	}

	return stats, nil
}

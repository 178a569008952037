package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusmind/campusmind/store"
)

const (
	recentOnboardedCount = 5
	timeseriesDays       = 14
)

type analyticsResponse struct {
	TotalStudents    int64             `json:"total_students"`
	ByDepartment     map[string]int64  `json:"by_department"`
	ActiveLast7Days  int64             `json:"active_last_7_days"`
	RecentOnboarded  []studentResponse `json:"recent_onboarded"`
	JoinedLast14Days []*store.DayCount `json:"joined_last_14_days"`
	ActiveLast14Days []*store.DayCount `json:"active_last_14_days"`
}

// Analytics returns the dashboard numbers: headline totals, the five most
// recent students, and the 14-day join/activity timeseries.
func (s *APIV1Service) Analytics(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now()

	total, err := s.store.CountStudents(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count students")
	}
	byDepartment, err := s.store.CountStudentsByDepartment(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count departments")
	}
	active, err := s.store.CountStudentsActiveSince(ctx, now.AddDate(0, 0, -7).Unix())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count active students")
	}

	limit := recentOnboardedCount
	recent, err := s.store.ListStudents(ctx, &store.FindStudent{Limit: &limit})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list recent students")
	}
	recentOnboarded := make([]studentResponse, 0, len(recent))
	for _, student := range recent {
		recentOnboarded = append(recentOnboarded, toStudentResponse(student))
	}

	since := now.AddDate(0, 0, -timeseriesDays).Unix()
	joined, err := s.store.CountStudentsJoinedByDay(ctx, since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute joined timeseries")
	}
	activeSeries, err := s.store.CountStudentsActiveByDay(ctx, since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute activity timeseries")
	}

	return c.JSON(http.StatusOK, analyticsResponse{
		TotalStudents:    total,
		ByDepartment:     byDepartment,
		ActiveLast7Days:  active,
		RecentOnboarded:  recentOnboarded,
		JoinedLast14Days: joined,
		ActiveLast14Days: activeSeries,
	})
}

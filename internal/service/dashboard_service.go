package service

import (
	"time"

	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/store"
)

// DashboardService builds the home screen summary.
type DashboardService struct {
	store *store.Store
	loc   *time.Location
}

// NewDashboardService creates a new DashboardService. Today is computed in loc.
func NewDashboardService(st *store.Store, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{store: st, loc: loc}
}

// GetDashboardData returns counts, classes, today's lessons and the most
// recent evaluations from one consistent snapshot.
func (s *DashboardService) GetDashboardData() query.Dashboard {
	return query.BuildDashboard(s.store.Snapshot(), s.store.Now().In(s.loc))
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/store"
)

// FeedSource fetches the external calendar feed.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]model.FeedEvent, error)
}

// WeekView is a week of lessons. FeedFailure is set when the feed could not
// be read; the week then shows stored lessons only.
type WeekView struct {
	query.Week
	Offset      int  `json:"offset"`
	FeedFailure bool `json:"feedFailure"`
}

// TimetableService builds week views and imports dated lessons.
type TimetableService struct {
	store *store.Store
	feed  FeedSource
	loc   *time.Location
	log   zerolog.Logger
}

func NewTimetableService(st *store.Store, feed FeedSource, loc *time.Location, log zerolog.Logger) *TimetableService {
	if loc == nil {
		loc = time.UTC
	}
	return &TimetableService{
		store: st,
		feed:  feed,
		loc:   loc,
		log:   log.With().Str("component", "timetable_service").Logger(),
	}
}

// Week returns the week offset weeks away from the current one, merging
// stored lessons with the calendar feed.
func (s *TimetableService) Week(ctx context.Context, offset int) WeekView {
	st := s.store.Snapshot()
	monday := query.WeekStart(s.store.Now().In(s.loc), offset)

	view := WeekView{Offset: offset}
	var events []model.FeedEvent
	if st.ICalURL != "" && s.feed != nil {
		var err error
		events, err = s.feed.Fetch(ctx, st.ICalURL)
		if err != nil {
			view.FeedFailure = true
			events = nil
		}
	}
	view.Week = query.BuildWeek(st, monday, events)
	return view
}

// importedLesson checks the shape of one element before it is decoded.
type importedLesson struct {
	Date  *string `json:"date"`
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// ImportLessons replaces every dated lesson with the JSON array in raw.
// Each element needs a YYYY-MM-DD date and HH:MM start and end; otherwise
// nothing is written. Missing IDs are generated.
func (s *TimetableService) ImportLessons(raw []byte) (int, error) {
	var shapes []importedLesson
	if err := json.Unmarshal(raw, &shapes); err != nil {
		return 0, fmt.Errorf("%w: expected an array of lessons: %w", ErrImportFormat, err)
	}
	if shapes == nil {
		return 0, fmt.Errorf("%w: expected an array of lessons", ErrImportFormat)
	}
	for i, l := range shapes {
		if err := checkLessonShape(l); err != nil {
			return 0, fmt.Errorf("%w: lesson %d: %w", ErrImportFormat, i, err)
		}
	}

	var lessons []model.TimetableLesson
	if err := json.Unmarshal(raw, &lessons); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImportFormat, err)
	}
	for i := range lessons {
		if lessons[i].ID == "" {
			lessons[i].ID = s.store.NewID()
		}
	}

	err := s.store.Apply(func(st *model.AppState) error {
		st.TimetableLessons = lessons
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("count", len(lessons)).Msg("Timetable lessons imported")
	return len(lessons), nil
}

func checkLessonShape(l importedLesson) error {
	if l.Date == nil || l.Start == nil || l.End == nil {
		return fmt.Errorf("date, start and end are required")
	}
	if _, err := time.Parse(query.DateLayout, *l.Date); err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD", *l.Date)
	}
	for _, v := range []string{*l.Start, *l.End} {
		if _, err := time.Parse("15:04", v); err != nil || len(v) != len("15:04") {
			return fmt.Errorf("time %q is not HH:MM", v)
		}
	}
	return nil
}

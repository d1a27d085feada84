package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/seating"
	"github.com/stemsi/classbook-backend/internal/store"
)

// sessionTTL is how long an untouched editing session is kept.
const sessionTTL = 2 * time.Hour

// SeatingService renders seating charts and runs editing sessions. A session
// edits a private copy of a chart's arrangement until it is saved.
type SeatingService struct {
	store *store.Store
	log   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*SeatingSession
}

func NewSeatingService(st *store.Store, log zerolog.Logger) *SeatingService {
	return &SeatingService{
		store:    st,
		log:      log.With().Str("component", "seating_service").Logger(),
		sessions: make(map[string]*SeatingSession),
	}
}

// SeatingSession is one editor over one chart.
type SeatingSession struct {
	ID      string
	ChartID string

	mu       sync.Mutex
	engine   *seating.Engine
	lastUsed time.Time
}

// SessionView is the client-facing state of a session.
type SessionView struct {
	SessionID string              `json:"sessionId"`
	ChartID   string              `json:"chartId"`
	Phase     string              `json:"phase"`
	Selected  string              `json:"selectedDesk,omitempty"`
	PickedUp  string              `json:"pickedUp,omitempty"`
	Layout    query.SeatingLayout `json:"layout"`
}

// Layout renders a stored chart.
func (s *SeatingService) Layout(chartID string) (query.SeatingLayout, error) {
	st := s.store.Snapshot()
	chart, err := findChart(st, chartID)
	if err != nil {
		return query.SeatingLayout{}, err
	}
	layout, ok := query.BuildSeatingLayout(st, chart, chart.Arrangement)
	if !ok {
		return query.SeatingLayout{}, store.NotFound("rooms", chart.RoomID)
	}
	return layout, nil
}

// Open starts an Idle session on the stored arrangement of chartID.
func (s *SeatingService) Open(chartID string) (SessionView, error) {
	st := s.store.Snapshot()
	chart, err := findChart(st, chartID)
	if err != nil {
		return SessionView{}, err
	}
	room, ok := query.RoomOf(st, chart)
	if !ok {
		return SessionView{}, store.NotFound("rooms", chart.RoomID)
	}

	sess := &SeatingSession{
		ID:       s.store.NewID(),
		ChartID:  chart.ID,
		engine:   seating.NewEngine(seating.Grid{Rows: room.Rows, Cols: room.Cols}, chart.Arrangement),
		lastUsed: time.Now(),
	}

	s.mu.Lock()
	s.evictLocked(time.Now())
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug().Str("session_id", sess.ID).Str("chart_id", chart.ID).Msg("Seating session opened")
	return s.view(sess, seating.Transition{State: sess.engine.State()})
}

// Get returns the current state of a session.
func (s *SeatingService) Get(sessionID string) (SessionView, error) {
	return s.do(sessionID, func(e *seating.Engine) (seating.Transition, error) {
		return seating.Transition{State: e.State()}, nil
	})
}

// SelectDesk applies a desk click.
func (s *SeatingService) SelectDesk(sessionID, desk string) (SessionView, error) {
	return s.do(sessionID, func(e *seating.Engine) (seating.Transition, error) {
		return e.SelectDesk(seating.DeskKey(desk))
	})
}

// AssignStudent seats a student at the selected desk.
func (s *SeatingService) AssignStudent(sessionID, studentID string) (SessionView, error) {
	if studentID != "" {
		if _, err := s.store.Students().Get(studentID); err != nil {
			return SessionView{}, err
		}
	}
	return s.do(sessionID, func(e *seating.Engine) (seating.Transition, error) {
		return e.AssignStudent(studentID)
	})
}

// Save writes the session arrangement to its chart. The session stays open.
func (s *SeatingService) Save(sessionID string) (model.SeatingChart, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return model.SeatingChart{}, err
	}
	sess.mu.Lock()
	arrangement := sess.engine.Arrangement()
	sess.lastUsed = time.Now()
	sess.mu.Unlock()

	chart, err := s.store.SeatingCharts().Update(sess.ChartID, func(sc *model.SeatingChart) error {
		sc.Arrangement = arrangement
		return nil
	})
	if err != nil {
		return model.SeatingChart{}, err
	}
	s.log.Info().Str("chart_id", chart.ID).Int("seated", len(arrangement)).Msg("Seating chart saved")
	return chart, nil
}

// Close discards a session.
func (s *SeatingService) Close(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *SeatingService) do(sessionID string, action func(*seating.Engine) (seating.Transition, error)) (SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	t, actionErr := action(sess.engine)
	sess.lastUsed = time.Now()
	sess.mu.Unlock()

	view, err := s.view(sess, t)
	if err != nil {
		return SessionView{}, err
	}
	return view, actionErr
}

func (s *SeatingService) session(id string) (*SeatingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *SeatingService) view(sess *SeatingSession, t seating.Transition) (SessionView, error) {
	st := s.store.Snapshot()
	chart, err := findChart(st, sess.ChartID)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	arrangement := sess.engine.Arrangement()
	sess.mu.Unlock()

	layout, ok := query.BuildSeatingLayout(st, chart, arrangement)
	if !ok {
		return SessionView{}, store.NotFound("rooms", chart.RoomID)
	}
	return SessionView{
		SessionID: sess.ID,
		ChartID:   sess.ChartID,
		Phase:     t.State.Phase.String(),
		Selected:  string(t.State.Desk),
		PickedUp:  t.PickedUp,
		Layout:    layout,
	}, nil
}

func (s *SeatingService) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := now.Sub(sess.lastUsed) > sessionTTL
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
		}
	}
}

func findChart(st *model.AppState, id string) (model.SeatingChart, error) {
	for _, sc := range st.SeatingCharts {
		if sc.ID == id {
			return sc, nil
		}
	}
	return model.SeatingChart{}, store.NotFound("seating_charts", id)
}

// IsSeatingRejection reports whether err is an editor action rejected by
// the state machine rather than a failure.
func IsSeatingRejection(err error) bool {
	return errors.Is(err, seating.ErrNoDeskSelected) ||
		errors.Is(err, seating.ErrNoStudent) ||
		errors.Is(err, seating.ErrDeskOutOfRange) ||
		errors.Is(err, seating.ErrMalformedDeskKey)
}

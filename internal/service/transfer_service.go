package service

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/store"
)

// TransferService exports and imports the whole workbook as JSON.
type TransferService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewTransferService(st *store.Store, log zerolog.Logger) *TransferService {
	return &TransferService{
		store: st,
		log:   log.With().Str("component", "transfer_service").Logger(),
	}
}

// Export returns the workbook document, indented.
func (s *TransferService) Export() ([]byte, error) {
	return json.MarshalIndent(s.store.Snapshot(), "", "  ")
}

// importDocument mirrors model.AppState with every key optional. A key that
// is absent or null leaves the current collection untouched.
type importDocument struct {
	Classes           *[]model.Class            `json:"classes"`
	Students          *[]model.Student          `json:"students"`
	Groups            *[]model.Group            `json:"groups"`
	Evaluations       *[]model.Evaluation       `json:"evaluations"`
	StudentGrades     *[]model.StudentGrade     `json:"student_grades"`
	Absences          *[]model.Absence          `json:"absences"`
	TimetableSlots    *[]model.TimetableSlot    `json:"timetable_slots"`
	Skills            *[]model.Skill            `json:"skills"`
	AcquisitionLevels *[]model.AcquisitionLevel `json:"acquisition_levels"`
	Rooms             *[]model.Room             `json:"rooms"`
	SeatingCharts     *[]model.SeatingChart     `json:"seating_charts"`
	TimetableLessons  *[]model.TimetableLesson  `json:"timetable_lessons"`
	Subjects          *[]string                 `json:"subjects"`
	Periods           *[]string                 `json:"periods"`
	ICalURL           *string                   `json:"icalUrl"`
}

// Import decodes raw completely, then replaces each collection present in
// it. Nothing is written when raw is not a valid workbook document.
func (s *TransferService) Import(raw []byte) ([]string, error) {
	var doc importDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFormat, err)
	}

	var replaced []string
	err := s.store.Apply(func(st *model.AppState) error {
		replace(&replaced, "classes", doc.Classes, &st.Classes)
		replace(&replaced, "students", doc.Students, &st.Students)
		replace(&replaced, "groups", doc.Groups, &st.Groups)
		replace(&replaced, "evaluations", doc.Evaluations, &st.Evaluations)
		replace(&replaced, "student_grades", doc.StudentGrades, &st.StudentGrades)
		replace(&replaced, "absences", doc.Absences, &st.Absences)
		replace(&replaced, "timetable_slots", doc.TimetableSlots, &st.TimetableSlots)
		replace(&replaced, "skills", doc.Skills, &st.Skills)
		replace(&replaced, "acquisition_levels", doc.AcquisitionLevels, &st.AcquisitionLevels)
		replace(&replaced, "rooms", doc.Rooms, &st.Rooms)
		replace(&replaced, "seating_charts", doc.SeatingCharts, &st.SeatingCharts)
		replace(&replaced, "timetable_lessons", doc.TimetableLessons, &st.TimetableLessons)
		replace(&replaced, "subjects", doc.Subjects, &st.Subjects)
		replace(&replaced, "periods", doc.Periods, &st.Periods)
		replace(&replaced, "icalUrl", doc.ICalURL, &st.ICalURL)
		if err := store.CheckInvariants(st); err != nil {
			return fmt.Errorf("%w: %w", ErrImportFormat, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Strs("keys", replaced).Msg("Workbook imported")
	return replaced, nil
}

func replace[T any](replaced *[]string, key string, src *T, dst *T) {
	if src == nil {
		return
	}
	*dst = *src
	*replaced = append(*replaced, key)
}

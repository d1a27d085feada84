package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/logger"
	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/persistence"
	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/seating"
	"github.com/stemsi/classbook-backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "seed-demo")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.Close()

	state, _, err := persistence.LoadOrDefault(ctx, backend.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load workbook")
	}
	st := store.New(state)

	fmt.Println("=== Seeding demo class ===")

	const className = "6e A"

	// Check if class exists
	class, found := findClass(st, className)
	if found {
		fmt.Printf("Found existing class with ID: %s\n", class.ID)
	} else {
		class, err = st.Classes().Create(model.Class{Name: className, Level: "6e", Year: "2025-2026"})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create class")
		}
		fmt.Printf("Created class with ID: %s\n", class.ID)
	}

	names := [][2]string{
		{"Martin", "Léa"}, {"Bernard", "Hugo"}, {"Dubois", "Chloé"}, {"Thomas", "Louis"},
		{"Robert", "Emma"}, {"Richard", "Gabriel"}, {"Petit", "Manon"}, {"Durand", "Jules"},
		{"Leroy", "Camille"}, {"Moreau", "Lucas"}, {"Simon", "Inès"}, {"Laurent", "Arthur"},
		{"Lefebvre", "Jade"}, {"Michel", "Nathan"}, {"Garcia", "Louise"}, {"David", "Raphaël"},
		{"Bertrand", "Alice"}, {"Roux", "Adam"}, {"Vincent", "Lina"}, {"Fournier", "Paul"},
	}

	var students []model.Student
	for i, n := range names {
		genre := "M"
		if i%2 == 0 {
			genre = "F"
		}
		s, err := st.Students().Create(model.Student{LastName: n[0], FirstName: n[1], Genre: genre, ClassID: class.ID})
		if err != nil {
			fmt.Printf("Error creating student %s %s: %v\n", n[1], n[0], err)
			continue
		}
		students = append(students, s)
	}
	fmt.Printf("Created %d students\n", len(students))

	// ─── Evaluations ───────────────────────────────────────────────────
	period := "Trimestre 1"
	if periods := st.Periods().List(); len(periods) > 0 {
		period = periods[0]
	}
	twenty := model.Number(20)
	ev, err := st.Evaluations().Create(model.Evaluation{
		Name:        "Fractions",
		Date:        st.Now().Format(query.DateLayout),
		TargetType:  model.TargetClass,
		TargetID:    class.ID,
		Period:      period,
		Subject:     "Mathématiques",
		Type:        model.EvaluationGrade,
		MaxPoints:   &twenty,
		Coefficient: 1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create evaluation")
	}
	for i, s := range students {
		value := model.GradeValue(fmt.Sprintf("%d", 8+(i*7)%13))
		if _, err := st.Grades().Create(model.StudentGrade{StudentID: s.ID, EvaluationID: ev.ID, Value: value}); err != nil {
			log.Fatal().Err(err).Msg("Failed to create grade")
		}
	}

	// ─── Seating ───────────────────────────────────────────────────────
	room, err := st.Rooms().Create(model.Room{Name: "Salle 12", Rows: 4, Cols: 6})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create room")
	}
	arrangement := make(map[string]string, len(students))
	for i, s := range students {
		arrangement[string(seating.Key(i/room.Cols, i%room.Cols))] = s.ID
	}
	if _, err := st.SeatingCharts().Create(model.SeatingChart{
		Name: "Plan de rentrée", ClassID: class.ID, RoomID: room.ID, Arrangement: arrangement,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to create seating chart")
	}

	if err := backend.Port.Save(ctx, st.Snapshot()); err != nil {
		log.Fatal().Err(err).Msg("Failed to save workbook")
	}
	fmt.Printf("\nSeed completed! Workbook saved to %s storage.\n", backend.Port.Name())
}

func findClass(st *store.Store, name string) (model.Class, bool) {
	for _, c := range st.Classes().List(nil) {
		if c.Name == name {
			return c, true
		}
	}
	return model.Class{}, false
}

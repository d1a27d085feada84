package query

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/stemsi/classbook-backend/internal/model"
)

// DateLayout is the YYYY-MM-DD form used by every stored date.
const DateLayout = "2006-01-02"

var (
	weekdayNames = [7]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}
	monthAbbr    = [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}
)

// Entry sources.
const (
	SourceLesson = "lesson"
	SourceFeed   = "feed"
)

// WeekEntry is one lesson chip of the week view.
type WeekEntry struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Subject   string `json:"subject"`
	ClassName string `json:"className"`
	Location  string `json:"location"`
	Source    string `json:"source"`
	Cancelled bool   `json:"cancelled"`
	Color     string `json:"color"`
}

// WeekDay is one column of the week view.
type WeekDay struct {
	Date    string      `json:"date"`
	Name    string      `json:"name"`
	Entries []WeekEntry `json:"entries"`
}

// Week is the Monday-to-Sunday timetable.
type Week struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Label string    `json:"label"`
	Days  []WeekDay `json:"days"`
}

// WeekStart returns the Monday (at midnight) of the week containing t,
// shifted by offset weeks.
func WeekStart(t time.Time, offset int) time.Time {
	t = t.AddDate(0, 0, offset*7)
	back := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, t.Location())
}

// BuildWeek merges stored lessons and feed events falling in the week that
// starts on monday. Feed events are display-only.
func BuildWeek(st *model.AppState, monday time.Time, feed []model.FeedEvent) Week {
	days := make([]WeekDay, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := monday.AddDate(0, 0, i)
		days[i] = WeekDay{Date: d.Format(DateLayout), Name: weekdayNames[i], Entries: []WeekEntry{}}
		index[days[i].Date] = i
	}

	var entries []WeekEntry
	for _, l := range st.TimetableLessons {
		if _, ok := index[l.Date]; !ok {
			continue
		}
		className := ClassName(st, l.ClassID, "")
		entries = append(entries, WeekEntry{
			Date: l.Date, Start: l.Start, End: l.End, Subject: l.Subject,
			ClassName: className, Location: l.Room, Source: SourceLesson,
			Color: LessonColor(l.Subject, className),
		})
	}
	for _, ev := range feed {
		if _, ok := index[ev.Date]; !ok {
			continue
		}
		entries = append(entries, WeekEntry{
			Date: ev.Date, Start: ev.Start, End: ev.End, Subject: ev.Subject,
			ClassName: ev.Class, Location: ev.Location, Source: SourceFeed,
			Cancelled: ev.IsCancelled, Color: LessonColor(ev.Subject, ev.Class),
		})
	}
	slices.SortStableFunc(entries, func(a, b WeekEntry) int { return strings.Compare(a.Start, b.Start) })
	for _, e := range entries {
		i := index[e.Date]
		days[i].Entries = append(days[i].Entries, e)
	}

	sunday := monday.AddDate(0, 0, 6)
	return Week{
		Start: days[0].Date,
		End:   days[6].Date,
		Label: fmt.Sprintf("Du %d %s au %d %s %d",
			monday.Day(), monthAbbr[monday.Month()-1],
			sunday.Day(), monthAbbr[sunday.Month()-1], sunday.Year()),
		Days: days,
	}
}

// LessonColor derives a stable pastel background from subject and class.
func LessonColor(subject, className string) string {
	source := "default"
	if subject != "" {
		source = subject + className
	}

	var hash int32
	for _, unit := range utf16.Encode([]rune(source)) {
		hash = int32(unit) + ((hash << 5) - hash)
	}

	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		v := int((hash >> (i * 8)) & 0xFF)
		v = (v + 255) / 2
		if v > 200 {
			v = 200
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	return b.String()
}

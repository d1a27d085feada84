// Package calendar reads lessons from an external iCalendar feed.
// Feed events are display-only and never written to the store.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/stemsi/classbook-backend/internal/model"
)

// ErrFeed marks every fetch or parse failure of the feed.
var ErrFeed = errors.New("calendar feed failure")

var classPrefixes = []string{"Classe :", "Groupe :", "Partie de classe :"}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// Parse reads every VEVENT of an iCalendar document. Start and end times
// are expressed in loc. Events without a usable start are skipped.
func Parse(r io.Reader, loc *time.Location) ([]model.FeedEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrFeed, err)
	}
	if loc == nil {
		loc = time.UTC
	}

	events := []model.FeedEvent{}
	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			end = start
		}
		start, end = start.In(loc), end.In(loc)

		rawSummary := propertyText(ev, ics.ComponentPropertySummary)
		description := propertyText(ev, ics.ComponentPropertyDescription)

		events = append(events, model.FeedEvent{
			Date:        start.Format("2006-01-02"),
			Start:       start.Format("15:04"),
			End:         end.Format("15:04"),
			Subject:     cleanSummary(rawSummary),
			Description: description,
			Location:    propertyText(ev, ics.ComponentPropertyLocation),
			Class:       classFromDescription(description),
			IsCancelled: isCancelled(rawSummary) || isCancelled(description),
		})
	}
	return events, nil
}

func propertyText(ev *ics.VEvent, prop ics.ComponentProperty) string {
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return textUnescaper.Replace(p.Value)
}

// cleanSummary keeps the subject of summaries like "Prof : Maths - 6A".
func cleanSummary(s string) string {
	if _, after, ok := strings.Cut(s, " : "); ok {
		s = after
		if before, _, ok := strings.Cut(s, " : "); ok {
			s = before
		}
	}
	if before, _, ok := strings.Cut(s, " - "); ok {
		s = before
	}
	return s
}

// classFromDescription extracts the class or group from the first
// description line starting with one of classPrefixes.
func classFromDescription(desc string) string {
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for _, prefix := range classPrefixes {
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			parts := strings.Split(line, ":")
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

func isCancelled(s string) bool {
	return strings.Contains(strings.ToLower(s), "annulé")
}

package service

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/store"
)

// Catalog lists.
const (
	CatalogSubjects = "subjects"
	CatalogPeriods  = "periods"
)

// CatalogService manages the subject and period lists and the calendar feed
// URL setting.
type CatalogService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewCatalogService(st *store.Store, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		store: st,
		log:   log.With().Str("component", "catalog_service").Logger(),
	}
}

// List returns the named catalog list.
func (s *CatalogService) List(name string) ([]string, error) {
	l, err := s.list(name)
	if err != nil {
		return nil, err
	}
	return l.List(), nil
}

func (s *CatalogService) Add(name, value string) ([]string, error) {
	l, err := s.list(name)
	if err != nil {
		return nil, err
	}
	if err := l.Add(value); err != nil {
		return nil, err
	}
	return l.List(), nil
}

func (s *CatalogService) Rename(name string, index int, value string) ([]string, error) {
	l, err := s.list(name)
	if err != nil {
		return nil, err
	}
	if err := l.Rename(index, value); err != nil {
		return nil, err
	}
	return l.List(), nil
}

func (s *CatalogService) Remove(name string, index int) ([]string, error) {
	l, err := s.list(name)
	if err != nil {
		return nil, err
	}
	if err := l.Remove(index); err != nil {
		return nil, err
	}
	return l.List(), nil
}

func (s *CatalogService) list(name string) (*store.ValueList, error) {
	switch name {
	case CatalogSubjects:
		return s.store.Subjects(), nil
	case CatalogPeriods:
		return s.store.Periods(), nil
	default:
		return nil, store.NotFound("catalogs", name)
	}
}

// ICalURL returns the configured feed URL, empty when unset.
func (s *CatalogService) ICalURL() string {
	return s.store.ICalURL()
}

// SetICalURL stores the feed URL. An empty value disables the feed.
func (s *CatalogService) SetICalURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "webcal") || u.Host == "" {
			return store.Invalid("icalUrl", "icalUrl must be an http(s) or webcal URL")
		}
		if u.Scheme == "webcal" {
			u.Scheme = "https"
			raw = u.String()
		}
	}
	s.store.SetICalURL(raw)
	s.log.Info().Bool("enabled", raw != "").Msg("Calendar feed URL updated")
	return nil
}

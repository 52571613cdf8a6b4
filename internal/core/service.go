package core

import (
	"context"
	"errors"
	"time"

	"orgdirectory/pkg/domain"
)

// ErrStoreRequired is returned by NewService when no store is supplied.
var ErrStoreRequired = errors.New("core: read store is required")

// Service is the directory search engine. It keeps no mutable state between
// calls; every operation runs inside its own storage session.
type Service struct {
	store   domain.ReadStore
	logger  Logger
	metrics MetricsRecorder
	clock   Clock
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger == nil {
			logger = noopLogger{}
		}
		s.logger = logger
	}
}

// WithMetricsRecorder sets the recorder receiving per-operation observations.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder == nil {
			recorder = noopMetrics{}
		}
		s.metrics = recorder
	}
}

// WithClock overrides the time source used for durations.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock == nil {
			clock = ClockFunc(time.Now)
		}
		s.clock = clock
	}
}

// NewService constructs a service over the supplied store.
func NewService(store domain.ReadStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		clock:   ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store returns the underlying read store.
func (s *Service) Store() domain.ReadStore {
	return s.store
}

// Search returns every organisation matching all present filter fields.
func (s *Service) Search(ctx context.Context, filter domain.OrganisationFilter) ([]domain.OrganisationSummary, error) {
	return s.SearchPage(ctx, filter, domain.Page{})
}

// SearchPage is Search with an offset/limit window applied to the id-ordered
// result.
func (s *Service) SearchPage(ctx context.Context, filter domain.OrganisationFilter, page domain.Page) (out []domain.OrganisationSummary, err error) {
	started := s.clock.Now()
	defer func() { s.observe(ctx, "search_organisations", started, err, "results", len(out)) }()

	plan, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}
	if page.Limit < 0 {
		page.Limit = 0
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	var found []domain.OrganisationSummary
	err = s.store.View(ctx, func(sess domain.Session) error {
		var closure []int64
		if root, ok := plan.ActivityRoot(); ok {
			ids, err := expandActivity(ctx, sess, root)
			if err != nil {
				return err
			}
			closure = ids
		}
		res, err := sess.SearchOrganisations(ctx, plan.Query(closure, page))
		if err != nil {
			return err
		}
		found = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []domain.OrganisationSummary{}
	}
	return found, nil
}

// Detail assembles the full view of one organisation. It returns
// domain.ErrNotFound when the id does not exist and never returns a partially
// populated aggregate.
func (s *Service) Detail(ctx context.Context, id int64) (detail domain.OrganisationDetail, err error) {
	started := s.clock.Now()
	defer func() { s.observe(ctx, "organisation_detail", started, err, "organisation_id", id) }()

	var assembled domain.OrganisationDetail
	err = s.store.View(ctx, func(sess domain.Session) error {
		rec, ok, err := sess.FindOrganisation(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityOrganisation, ID: id}
		}
		phones, err := sess.ListPhones(ctx, id)
		if err != nil {
			return err
		}
		links, err := sess.ListActivityLinks(ctx, id)
		if err != nil {
			return err
		}
		assembled = AssembleDetail(rec, phones, links)
		return nil
	})
	if err != nil {
		return domain.OrganisationDetail{}, err
	}
	return assembled, nil
}

// ActivityClosure returns id followed by all of its descendants. A missing
// activity yields the singleton set.
func (s *Service) ActivityClosure(ctx context.Context, id int64) ([]int64, error) {
	return s.activityClosure(ctx, id, false)
}

// ValidatedActivityClosure is ActivityClosure that first checks the activity
// exists and returns domain.ErrNotFound otherwise.
func (s *Service) ValidatedActivityClosure(ctx context.Context, id int64) ([]int64, error) {
	return s.activityClosure(ctx, id, true)
}

func (s *Service) activityClosure(ctx context.Context, id int64, validate bool) (ids []int64, err error) {
	started := s.clock.Now()
	defer func() { s.observe(ctx, "activity_closure", started, err, "activity_id", id, "size", len(ids)) }()

	err = s.store.View(ctx, func(sess domain.Session) error {
		if validate {
			_, ok, err := sess.FindActivity(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrNotFound{Entity: domain.EntityActivity, ID: id}
			}
		}
		closure, err := expandActivity(ctx, sess, id)
		if err != nil {
			return err
		}
		ids = closure
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// expandActivity computes the closure with one child lookup per tree level.
func expandActivity(ctx context.Context, sess domain.Session, root int64) ([]int64, error) {
	return domain.ExpandClosure(root, func(parents []int64) ([]int64, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sess.ChildActivityIDs(ctx, parents)
	})
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/mailer"
)

// maxUpdateAttempts bounds the optimistic read-modify-write loop on one aggregate.
const maxUpdateAttempts = 5

const defaultStoreTimeout = 5 * time.Second

// Common carries what every service needs to talk to the store.
type Common struct {
	Logger       *logrus.Logger
	StoreTimeout time.Duration
	Now          func() time.Time
}

func (c Common) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c Common) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// call runs fn against the store bounded by StoreTimeout.
func (c Common) call(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := c.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(sctx)
}

// storeFailure maps a store error onto the failure taxonomy. Errors that are
// already classified pass through untouched.
func storeFailure(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.StoreUnavailable(err)
}

// mutate loads a document, applies fn and saves it with a version check,
// retrying from a fresh read when another writer got there first. Errors
// returned by fn abort the loop and are returned as is.
func mutate[T any](ctx context.Context, c Common, load func(context.Context) (T, error), fn func(T) error, save func(context.Context, T) error) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		var doc T
		err := c.call(ctx, func(ctx context.Context) error {
			var err error
			doc, err = load(ctx)
			return err
		})
		if err != nil {
			return zero, err
		}
		if err := fn(doc); err != nil {
			return zero, err
		}
		err = c.call(ctx, func(ctx context.Context) error { return save(ctx, doc) })
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return zero, err
		}
		metrics.Add(metricUpdateRetries, 1)
		if attempt >= maxUpdateAttempts {
			return zero, apperr.Wrap(apperr.KindConflict, "resource was modified concurrently, please retry", err)
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
}

// JobPublisher queues background jobs such as outgoing email.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ProfileIndexer keeps the profile search index in step with the store.
type ProfileIndexer interface {
	Index(ctx context.Context, p *entity.Profile) error
	Delete(ctx context.Context, userID string) error
	// Search returns the owning user ids of the best matches, best first.
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// RepoLister fetches public repositories for a GitHub username.
// An unknown username yields repository.ErrNotFound.
type RepoLister interface {
	ListRepos(ctx context.Context, username string) (json.RawMessage, error)
}

// AccountArchiver stores a snapshot of an account before it is deleted and
// returns where it was written.
type AccountArchiver interface {
	Archive(ctx context.Context, snap AccountSnapshot) (string, error)
}

// AccountSnapshot is everything the cascade is about to remove.
type AccountSnapshot struct {
	User       *entity.User    `json:"user"`
	Profile    *entity.Profile `json:"profile,omitempty"`
	Posts      []*entity.Post  `json:"posts"`
	ArchivedAt time.Time       `json:"archived_at"`
}

// enqueueEmail publishes job when a publisher is configured. Failures are logged only.
func enqueueEmail(ctx context.Context, c Common, pub JobPublisher, job mailer.EmailJob) {
	if pub == nil || job.To == "" {
		return
	}
	if err := pub.PublishJSON(ctx, job); err != nil {
		helpers.LogWarn(c.logger(), "enqueue email failed", err, logrus.Fields{"template": job.Template})
	}
}

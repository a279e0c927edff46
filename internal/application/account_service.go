package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/mailer"
	"github.com/oksasatya/devconnector-api/pkg/mailer/templates"
)

// DeletionReport tells the caller how far an account deletion got.
type DeletionReport struct {
	PostsDeleted   int64  `json:"posts_deleted"`
	ProfileDeleted bool   `json:"profile_deleted"`
	UserDeleted    bool   `json:"user_deleted"`
	ArchiveURI     string `json:"archive_uri,omitempty"`
}

// AccountService deletes a user together with the profile and posts it owns.
type AccountService struct {
	Common
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	Posts    repository.PostRepository
	Index    ProfileIndexer
	Archiver AccountArchiver
	Mail     JobPublisher
	AppName  string
}

func NewAccountService(c Common, users repository.UserRepository, profiles repository.ProfileRepository, posts repository.PostRepository) *AccountService {
	return &AccountService{Common: c, Users: users, Profiles: profiles, Posts: posts}
}

// Delete removes posts, then the profile, then the user. The phases are not
// atomic: a failing post phase aborts before anything else is touched, a later
// failure leaves earlier phases applied. The returned report reflects what was
// removed and is attached to the error as Details. Deleting an account that is
// already gone succeeds with an empty report.
func (s *AccountService) Delete(ctx context.Context, userID string) (DeletionReport, error) {
	var report DeletionReport
	if err := requireActor(userID); err != nil {
		return report, err
	}
	log := s.logger().WithField("user_id", userID)

	user := s.archive(ctx, userID, &report)

	err := s.call(ctx, func(ctx context.Context) error {
		n, err := s.Posts.DeleteByUserID(ctx, userID)
		report.PostsDeleted = n
		return err
	})
	if err != nil {
		log.WithError(err).Error("cascade: post phase failed")
		return report, partial(err, report)
	}

	err = s.call(ctx, func(ctx context.Context) error {
		n, err := s.Profiles.DeleteByUserID(ctx, userID)
		report.ProfileDeleted = n > 0
		return err
	})
	if err != nil {
		log.WithError(err).WithField("posts_deleted", report.PostsDeleted).Error("cascade: profile phase failed")
		return report, partial(err, report)
	}

	err = s.call(ctx, func(ctx context.Context) error {
		n, err := s.Users.Delete(ctx, userID)
		report.UserDeleted = n > 0
		return err
	})
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"posts_deleted":   report.PostsDeleted,
			"profile_deleted": report.ProfileDeleted,
		}).Error("cascade: user phase failed")
		return report, partial(err, report)
	}

	if s.Index != nil && report.ProfileDeleted {
		if err := s.Index.Delete(ctx, userID); err != nil {
			log.WithError(err).Warn("profile unindex failed")
		}
	}
	if user != nil && report.UserDeleted {
		metrics.Add(metricCascadeDeletes, 1)
		enqueueEmail(ctx, s.Common, s.Mail, mailer.EmailJob{
			To:       user.Email,
			Template: templates.AccountDeleted,
			Data: templates.EmailData{
				AppName:        s.AppName,
				Name:           user.Name,
				Email:          user.Email,
				Time:           s.now(),
				PostsDeleted:   report.PostsDeleted,
				ProfileDeleted: report.ProfileDeleted,
			},
		})
	}
	log.WithFields(logrus.Fields{
		"posts_deleted":   report.PostsDeleted,
		"profile_deleted": report.ProfileDeleted,
		"user_deleted":    report.UserDeleted,
	}).Info("account deleted")
	return report, nil
}

// archive snapshots the account when an archiver is configured and returns the
// user if it still exists. Nothing here can stop the cascade.
func (s *AccountService) archive(ctx context.Context, userID string, report *DeletionReport) *entity.User {
	snap := AccountSnapshot{ArchivedAt: s.now()}
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		snap.User, err = s.Users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		if !isNotFound(err) {
			s.logger().WithError(err).WithField("user_id", userID).Warn("cascade: user lookup failed")
		}
		return nil
	}
	if s.Archiver == nil {
		return snap.User
	}

	_ = s.call(ctx, func(ctx context.Context) error {
		p, err := s.Profiles.GetByUserID(ctx, userID)
		if err == nil {
			snap.Profile = p
		}
		snap.Posts, err = s.Posts.ListByUserID(ctx, userID)
		return err
	})
	if snap.Posts == nil {
		snap.Posts = []*entity.Post{}
	}
	uri, err := s.Archiver.Archive(ctx, snap)
	if err != nil {
		s.logger().WithError(err).WithField("user_id", userID).Warn("account archive failed")
		return snap.User
	}
	report.ArchiveURI = uri
	return snap.User
}

func partial(err error, report DeletionReport) error {
	e := apperr.StoreUnavailable(err)
	e.Details = report
	return e
}

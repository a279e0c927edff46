package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/config"
	"github.com/oksasatya/devconnector-api/internal/application"
	"github.com/oksasatya/devconnector-api/internal/container"
	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/router"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
)

const seedPassword = "password123"

type seedUser struct {
	name, email string
	profile     entity.ProfileFields
	posts       []string
}

var seedUsers = []seedUser{
	{
		name:  "Demo Developer",
		email: "demo@devconnector.local",
		profile: entity.ProfileFields{
			Company: "Acme", Location: "Jakarta", Status: "Developer",
			Skills: []string{"Go", "PostgreSQL", "Redis"}, GitHubUsername: "octocat",
			Social: entity.SocialLinks{Twitter: "https://twitter.com/demo"},
		},
		posts: []string{"Hello DevConnector!", "Anyone tried pgx v5 yet?"},
	},
	{
		name:  "Second Developer",
		email: "second@devconnector.local",
		profile: entity.ProfileFields{
			Status: "Student or Learning", Skills: []string{"JavaScript", "React"},
		},
		posts: []string{"Looking for a mentor."},
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	container.SetConfig(cfg)
	container.SetLogger(logger)

	ctx := context.Background()
	closeStore, err := container.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	svc := router.BuildServices()
	if err := seed(ctx, svc, logger); err != nil {
		logger.Fatalf("seed: %v", err)
	}
}

// seed registers every seed user (or logs in when they already exist), then
// upserts their profile, writes their posts and has each user like the others' posts.
func seed(ctx context.Context, svc router.Services, logger *logrus.Logger) error {
	var ids []string
	var postIDs []string
	verifier := container.GetJWT()

	for _, u := range seedUsers {
		tok, err := svc.Auth.Register(ctx, application.RegisterInput{Name: u.name, Email: u.email, Password: seedPassword})
		if apperr.KindOf(err) == apperr.KindConflict {
			logger.WithField("email", u.email).Info("user exists; skipping")
			continue
		}
		if err != nil {
			return err
		}
		claims, err := verifier.ParseAccessToken(tok.Token)
		if err != nil {
			return err
		}
		uid := claims.UserID
		ids = append(ids, uid)

		if _, err := svc.Profiles.Upsert(ctx, uid, u.profile); err != nil {
			return err
		}
		if _, err := svc.Profiles.AddExperience(ctx, uid, entity.Experience{
			Title: "Software Engineer", Company: "Acme", From: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Current: true,
		}); err != nil {
			return err
		}
		for _, text := range u.posts {
			p, err := svc.Posts.Create(ctx, uid, text)
			if err != nil {
				return err
			}
			postIDs = append(postIDs, p.ID)
		}
		logger.WithFields(logrus.Fields{"user_id": uid, "email": u.email, "password": seedPassword}).Info("seeded user")
	}

	for _, uid := range ids {
		for _, pid := range postIDs {
			_, err := svc.Posts.Like(ctx, uid, pid)
			if err != nil && !errors.Is(err, entity.ErrAlreadyLiked) {
				return err
			}
		}
	}
	logger.WithFields(logrus.Fields{"users": len(ids), "posts": len(postIDs)}).Info("seed complete")
	return nil
}

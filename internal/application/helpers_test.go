package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/memory"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/mailer"
)

type fixture struct {
	store    *memory.Store
	mail     *fakePublisher
	index    *fakeIndexer
	auth     *AuthService
	profiles *ProfileService
	posts    *PostService
	accounts *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	c := Common{Logger: helpers.NewDiscardLogger(), StoreTimeout: time.Second}
	f := &fixture{store: store, mail: &fakePublisher{}, index: newFakeIndexer()}

	f.auth = NewAuthService(c, store.Users(), helpers.PasswordHasher{Cost: bcrypt.MinCost},
		helpers.NewJWTManager("test-secret", time.Hour), f.mail, "DevConnector")
	f.profiles = NewProfileService(c, store.Profiles(), store.Users())
	f.profiles.Index = f.index
	f.posts = NewPostService(c, store.Posts(), store.Users())
	f.accounts = NewAccountService(c, store.Users(), store.Profiles(), store.Posts())
	f.accounts.Index = f.index
	f.accounts.Mail = f.mail
	return f
}

// register creates a user and returns its id.
func (f *fixture) register(t *testing.T, name, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	u, err := f.store.Users().GetByEmail(ctx, email)
	require.NoError(t, err)
	return u.ID
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fakeIndexer struct {
	mu   sync.Mutex
	docs map[string]*entity.Profile
	hits []string
	err  error
}

func newFakeIndexer() *fakeIndexer { return &fakeIndexer{docs: map[string]*entity.Profile{}} }

func (i *fakeIndexer) Index(_ context.Context, p *entity.Profile) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	i.docs[p.UserID] = p.Clone()
	return nil
}

func (i *fakeIndexer) Delete(_ context.Context, userID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.docs, userID)
	return nil
}

func (i *fakeIndexer) Search(_ context.Context, _ string, size int) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return nil, i.err
	}
	if len(i.hits) > size {
		return i.hits[:size], nil
	}
	return i.hits, nil
}

func (i *fakeIndexer) has(userID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.docs[userID]
	return ok
}

type fakeRepos struct {
	calls int
	body  json.RawMessage
	err   error
}

func (r *fakeRepos) ListRepos(_ context.Context, _ string) (json.RawMessage, error) {
	r.calls++
	return r.body, r.err
}

type fakeArchiver struct {
	snaps []AccountSnapshot
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, snap AccountSnapshot) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.snaps = append(a.snaps, snap)
	return "gs://archive/" + snap.User.ID + ".json", nil
}

var errBoom = errors.New("boom")

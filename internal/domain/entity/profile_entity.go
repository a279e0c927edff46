package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/devconnector-api/internal/domain/collection"
)

// Profile is owned by exactly one user; at most one profile exists per user.
type Profile struct {
	ID             string       `json:"_id"`
	UserID         string       `json:"-"`
	Owner          *Owner       `json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         SocialLinks  `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Version        int64        `json:"-"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type SocialLinks struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type Experience struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

func (e Experience) EntryID() string { return e.ID }

type Education struct {
	ID           string     `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

func (e Education) EntryID() string { return e.ID }

// ProfileFields is a sparse field set for the upsert resolver. Empty strings
// and a nil Skills slice mean "not present in the input".
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         []string
	Social         SocialLinks
}

// ParseSkills turns "go, sql ,docker" into ["go" "sql" "docker"]. Blank items are dropped.
func ParseSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewProfile constructs a profile from f with empty nested collections.
func NewProfile(userID string, f ProfileFields, now time.Time) *Profile {
	p := &Profile{
		UserID:     userID,
		Skills:     []string{},
		Experience: []Experience{},
		Education:  []Education{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.Apply(f, now)
	return p
}

// Apply merges the present fields of f over p; absent fields are left untouched.
func (p *Profile) Apply(f ProfileFields, now time.Time) {
	setIf(&p.Company, f.Company)
	setIf(&p.Website, f.Website)
	setIf(&p.Location, f.Location)
	setIf(&p.Bio, f.Bio)
	setIf(&p.Status, f.Status)
	setIf(&p.GitHubUsername, f.GitHubUsername)
	if f.Skills != nil {
		p.Skills = append([]string{}, f.Skills...)
	}
	setIf(&p.Social.YouTube, f.Social.YouTube)
	setIf(&p.Social.Twitter, f.Social.Twitter)
	setIf(&p.Social.Facebook, f.Social.Facebook)
	setIf(&p.Social.Instagram, f.Social.Instagram)
	setIf(&p.Social.LinkedIn, f.Social.LinkedIn)
	p.UpdatedAt = now
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (p *Profile) OwnerID() string { return p.UserID }

// AddExperience prepends e with a generated id and returns the stored entry.
func (p *Profile) AddExperience(e Experience) Experience {
	e.ID = collection.NewID()
	p.Experience = collection.Prepend(p.Experience, e)
	return e
}

func (p *Profile) RemoveExperience(id string) error {
	rest, _, err := collection.RemoveByID(p.Experience, id)
	if err != nil {
		return err
	}
	p.Experience = rest
	return nil
}

// AddEducation prepends e with a generated id and returns the stored entry.
func (p *Profile) AddEducation(e Education) Education {
	e.ID = collection.NewID()
	p.Education = collection.Prepend(p.Education, e)
	return e
}

func (p *Profile) RemoveEducation(id string) error {
	rest, _, err := collection.RemoveByID(p.Education, id)
	if err != nil {
		return err
	}
	p.Education = rest
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing storage.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Owner != nil {
		o := *p.Owner
		cp.Owner = &o
	}
	cp.Skills = append(make([]string, 0, len(p.Skills)), p.Skills...)
	cp.Experience = make([]Experience, len(p.Experience))
	for i, e := range p.Experience {
		cp.Experience[i] = e
		cp.Experience[i].To = cloneTime(e.To)
	}
	cp.Education = make([]Education, len(p.Education))
	for i, e := range p.Education {
		cp.Education[i] = e
		cp.Education[i].To = cloneTime(e.To)
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/internal/application"
	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/interface/middleware"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/response"
	"github.com/oksasatya/devconnector-api/pkg/validation"
)

type ProfileHandler struct {
	Svc      *application.ProfileService
	Accounts *application.AccountService
	Logger   *logrus.Logger
	Cookies  *helpers.Manager
}

func NewProfileHandler(svc *application.ProfileService, accounts *application.AccountService, logger *logrus.Logger, cookies *helpers.Manager) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Accounts: accounts, Logger: logger, Cookies: cookies}
}

type profileRequest struct {
	Status         string `json:"status" binding:"notblank"`
	Skills         string `json:"skills" binding:"notblank"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

func (r profileRequest) fields() entity.ProfileFields {
	return entity.ProfileFields{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Bio:            r.Bio,
		Status:         r.Status,
		GitHubUsername: r.GitHubUsername,
		Skills:         entity.ParseSkills(r.Skills),
		Social: entity.SocialLinks{
			YouTube:   r.YouTube,
			Twitter:   r.Twitter,
			Facebook:  r.Facebook,
			Instagram: r.Instagram,
			LinkedIn:  r.LinkedIn,
		},
	}
}

type experienceRequest struct {
	Title       string `json:"title" binding:"notblank"`
	Company     string `json:"company" binding:"notblank"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required,date"`
	To          string `json:"to" binding:"omitempty,date"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school" binding:"notblank"`
	Degree       string `json:"degree" binding:"notblank"`
	FieldOfStudy string `json:"fieldofstudy" binding:"notblank"`
	From         string `json:"from" binding:"required,date"`
	To           string `json:"to" binding:"omitempty,date"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// dateRange parses validated from/to values; an empty to stays nil.
func dateRange(from, to string) (time.Time, *time.Time) {
	f, _ := validation.ParseDate(from)
	if to == "" {
		return f, nil
	}
	t, _ := validation.ParseDate(to)
	return f, &t
}

// Me returns the caller's own profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	p, err := h.Svc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

// Upsert creates or updates the caller's profile.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Svc.Upsert(c.Request.Context(), middleware.UserID(c), req.fields())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile saved", nil)
}

func (h *ProfileHandler) List(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "profiles", gin.H{"count": len(out)})
}

func (h *ProfileHandler) ByUser(c *gin.Context) {
	p, err := h.Svc.GetByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

// DeleteAccount removes the caller's posts, profile and user.
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	report, err := h.Accounts.Delete(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success(c, http.StatusOK, report, "User deleted", nil)
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	from, to := dateRange(req.From, req.To)
	p, err := h.Svc.AddExperience(c.Request.Context(), middleware.UserID(c), entity.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "experience added", nil)
}

func (h *ProfileHandler) DeleteExperience(c *gin.Context) {
	p, err := h.Svc.RemoveExperience(c.Request.Context(), middleware.UserID(c), c.Param("exp_id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "experience removed", nil)
}

func (h *ProfileHandler) AddEducation(c *gin.Context) {
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	from, to := dateRange(req.From, req.To)
	p, err := h.Svc.AddEducation(c.Request.Context(), middleware.UserID(c), entity.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "education added", nil)
}

func (h *ProfileHandler) DeleteEducation(c *gin.Context) {
	p, err := h.Svc.RemoveEducation(c.Request.Context(), middleware.UserID(c), c.Param("edu_id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "education removed", nil)
}

// GitHub passes through the latest repositories of a GitHub user.
func (h *ProfileHandler) GitHub(c *gin.Context) {
	repos, err := h.Svc.GitHubRepos(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, repos, "github repositories", nil)
}

// Search runs ?q= against the profile index; ?size= caps the result count.
func (h *ProfileHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	out, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "profiles", gin.H{"count": len(out)})
}

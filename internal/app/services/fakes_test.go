package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/repositories"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/email"
)

var (
	admin    = &models.Caller{UserID: 1, Email: "admin@hackathon.app", Role: models.RoleAdministrator}
	reviewer = &models.Caller{UserID: 2, Email: "rev@hackathon.app", Role: models.RoleReviewer}
)

type fakeApplicationStore struct {
	mu        sync.Mutex
	apps      map[uuid.UUID]*models.Application
	listCalls int
	failIDs   map[uuid.UUID]error
	// afterAcceptedRead runs once the accepted projection has been read, outside the lock
	afterAcceptedRead func()
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{
		apps:    make(map[uuid.UUID]*models.Application),
		failIDs: make(map[uuid.UUID]error),
	}
}

func (s *fakeApplicationStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *app
	s.apps[app.ID] = &cp
	return nil
}

func (s *fakeApplicationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *fakeApplicationStore) List(_ context.Context, q repositories.ListQuery) ([]*models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	var matched []*models.Application
	for _, app := range s.apps {
		if q.Status != "" && app.Status != q.Status {
			continue
		}
		if q.Starred != nil && app.Starred != *q.Starred {
			continue
		}
		if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" &&
			!strings.Contains(strings.ToLower(app.TeamName), term) &&
			!strings.Contains(strings.ToLower(app.School), term) {
			continue
		}
		cp := *app
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Starred != b.Starred {
			return a.Starred
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.After(b.SubmittedAt)
		}
		return a.ID.String() > b.ID.String()
	})

	total := int64(len(matched))
	if q.Limit == 0 {
		return matched, total, nil
	}
	start := int(q.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(q.Limit)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *fakeApplicationStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus, reviewerID int64, at time.Time) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	app.Status = status
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &at
	cp := *app
	return &cp, nil
}

func (s *fakeApplicationStore) ToggleStar(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return false, apperrors.ErrApplicationNotFound
	}
	app.Starred = !app.Starred
	return app.Starred, nil
}

func (s *fakeApplicationStore) Delete(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	delete(s.apps, id)
	return app, nil
}

func (s *fakeApplicationStore) ListAccepted(context.Context, time.Time) ([]models.AcceptedTeam, error) {
	teams := s.readAccepted()
	if hook := s.afterAcceptedRead; hook != nil {
		s.afterAcceptedRead = nil
		hook()
	}
	return teams, nil
}

func (s *fakeApplicationStore) readAccepted() []models.AcceptedTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	var accepted []*models.Application
	for _, app := range s.apps {
		if app.Status == models.StatusAccepted {
			accepted = append(accepted, app)
		}
	}
	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].ReviewedAt.Before(*accepted[j].ReviewedAt)
	})
	teams := make([]models.AcceptedTeam, 0, len(accepted))
	for _, app := range accepted {
		teams = append(teams, models.AcceptedTeam{
			ID:                app.ID,
			TeamName:          app.TeamName,
			School:            app.School,
			ParticipantsCount: app.ParticipantsCount,
			AcceptedAt:        *app.ReviewedAt,
		})
	}
	return teams
}

func (s *fakeApplicationStore) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c models.StatusCounts
	for _, app := range s.apps {
		c.Total++
		switch app.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusAccepted:
			c.Accepted++
		case models.StatusRejected:
			c.Rejected++
		}
		if app.Starred {
			c.Starred++
		}
	}
	return c, nil
}

type fakeSchoolStore struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*models.SchoolApplication
}

func newFakeSchoolStore() *fakeSchoolStore {
	return &fakeSchoolStore{apps: make(map[uuid.UUID]*models.SchoolApplication)}
}

func (s *fakeSchoolStore) Create(_ context.Context, app *models.SchoolApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *app
	s.apps[app.ID] = &cp
	return nil
}

func (s *fakeSchoolStore) GetByID(_ context.Context, id uuid.UUID) (*models.SchoolApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrSchoolApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *fakeSchoolStore) List(_ context.Context, q repositories.ListQuery) ([]*models.SchoolApplication, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SchoolApplication
	for _, app := range s.apps {
		if q.Status != "" && app.Status != q.Status {
			continue
		}
		cp := *app
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (s *fakeSchoolStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus, reviewerID int64, at time.Time) (*models.SchoolApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrSchoolApplicationNotFound
	}
	app.Status = status
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &at
	cp := *app
	return &cp, nil
}

func (s *fakeSchoolStore) ToggleStar(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return false, apperrors.ErrSchoolApplicationNotFound
	}
	app.Starred = !app.Starred
	return app.Starred, nil
}

func (s *fakeSchoolStore) Delete(_ context.Context, id uuid.UUID) (*models.SchoolApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrSchoolApplicationNotFound
	}
	delete(s.apps, id)
	return app, nil
}

func (s *fakeSchoolStore) CountByStatus(context.Context) (models.StatusCounts, error) {
	return models.StatusCounts{}, nil
}

type fakeTemplateStore struct {
	mu        sync.Mutex
	templates []*models.EmailTemplate
	findErr   error
}

func (s *fakeTemplateStore) FindActive(_ context.Context, typ models.NotificationType, audience models.ApplicationKind) (*models.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, t := range s.templates {
		if t.IsActive && t.Type == typ && t.Audience == audience {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperrors.ErrTemplateNotFound
}

func (s *fakeTemplateStore) List(_ context.Context, typ models.NotificationType, audience models.ApplicationKind) ([]*models.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.EmailTemplate
	for _, t := range s.templates {
		if (typ == "" || t.Type == typ) && (audience == "" || t.Audience == audience) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeTemplateStore) find(id int64) *models.EmailTemplate {
	for _, t := range s.templates {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *fakeTemplateStore) GetByID(_ context.Context, id int64) (*models.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return nil, apperrors.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTemplateStore) Create(_ context.Context, tmpl *models.EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmpl.ID = int64(len(s.templates) + 1)
	tmpl.IsActive = false
	cp := *tmpl
	s.templates = append(s.templates, &cp)
	return nil
}

func (s *fakeTemplateStore) Update(_ context.Context, id int64, subject, body string) (*models.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return nil, apperrors.ErrTemplateNotFound
	}
	t.Subject, t.Body = subject, body
	cp := *t
	return &cp, nil
}

func (s *fakeTemplateStore) Activate(_ context.Context, id int64) (*models.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return nil, apperrors.ErrTemplateNotFound
	}
	for _, other := range s.templates {
		if other.Type == t.Type && other.Audience == t.Audience {
			other.IsActive = false
		}
	}
	t.IsActive = true
	cp := *t
	return &cp, nil
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []*models.EmailNotificationLog
	err     error
}

func (s *fakeLogStore) Create(_ context.Context, entry *models.EmailNotificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	entry.ID = int64(len(s.entries) + 1)
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *fakeLogStore) ListByApplication(_ context.Context, kind models.ApplicationKind, id uuid.UUID) ([]*models.EmailNotificationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.EmailNotificationLog, 0)
	for _, e := range s.entries {
		owner := e.ApplicationID
		if kind == models.KindSchool {
			owner = e.SchoolApplicationID
		}
		if owner != nil && *owner == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeLogStore) all() []*models.EmailNotificationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.EmailNotificationLog(nil), s.entries...)
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []email.Message
	err   error
	panic bool
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panic {
		panic("smtp exploded")
	}
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "msg-" + msg.To, nil
}

// fakeCache keeps one entry per generation, like the Redis cache
type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	entries     map[int64][]models.AcceptedTeam
	hit         bool
	invalidated int
}

func (c *fakeCache) Get(context.Context) ([]models.AcceptedTeam, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	teams, ok := c.entries[c.gen]
	return teams, c.gen, ok
}

func (c *fakeCache) Set(_ context.Context, gen int64, teams []models.AcceptedTeam) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[int64][]models.AcceptedTeam)
	}
	c.entries[gen] = teams
	c.hit = gen == c.gen
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.hit = false
	c.invalidated++
}

type fakeDocuments struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (d *fakeDocuments) RemoveIDDocument(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, url)
	return d.err
}

type fakeUserStore struct {
	mu    sync.Mutex
	users []*models.User
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = int64(len(s.users) + 1)
	cp := *user
	s.users = append(s.users, &cp)
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

var errBoom = errors.New("boom")

// harness wires the team application service to fakes with synchronous notifications
type harness struct {
	store     *fakeApplicationStore
	templates *fakeTemplateStore
	logs      *fakeLogStore
	sender    *fakeSender
	cache     *fakeCache
	documents *fakeDocuments
	notifier  *NotificationService
	svc       *ApplicationService
	clock     time.Time
}

func newHarness() *harness {
	h := &harness{
		store:     newFakeApplicationStore(),
		templates: &fakeTemplateStore{},
		logs:      &fakeLogStore{},
		sender:    &fakeSender{},
		cache:     &fakeCache{},
		documents: &fakeDocuments{},
		clock:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.notifier = NewNotificationService(h.templates, h.logs, h.sender, "Hackathon <noreply@hackathon.app>", false, 0, zerolog.Nop())
	h.svc = NewApplicationService(h.store, h.logs, h.notifier, h.cache, h.documents, zerolog.Nop())
	h.svc.now = h.tick
	return h
}

// tick advances the clock one minute per call so timestamps are distinct
func (h *harness) tick() time.Time {
	h.clock = h.clock.Add(time.Minute)
	return h.clock
}

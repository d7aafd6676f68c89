package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/db"
	"github.com/yigit/campusnet/internal/pkg/filestorage"
	"github.com/yigit/campusnet/internal/pkg/websocket"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(e websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc     *Services
	repos   *repositories.Repositories
	events  *recordingPublisher
	storage *filestorage.LocalStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	require.NoError(t, repositories.EnsureCollections(context.Background(), store))
	repos := repositories.NewRepositories(store, zerolog.Nop())
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "", zerolog.Nop())
	require.NoError(t, err)
	events := &recordingPublisher{}
	gate := auth.NewGate(auth.DefaultPolicy(), zerolog.Nop())
	return &fixture{
		svc:     NewServices(repos, gate, storage, events, zerolog.Nop()),
		repos:   repos,
		events:  events,
		storage: storage,
	}
}

var (
	admin    = auth.Principal{ID: "00000000-0000-4000-8000-000000000001", Role: auth.RoleAdmin}
	lecturer = auth.Principal{ID: "00000000-0000-4000-8000-000000000002", Role: auth.RoleFaculty, FacultyRoles: []models.FacultyRole{models.FacultyRoleFaculty}}
)

func as(p auth.Principal) context.Context {
	return auth.WithPrincipal(context.Background(), p)
}

func studentPrincipal(s *models.Student) auth.Principal {
	return auth.Principal{ID: s.ID, Role: auth.RoleStudent}
}

func lecturerWithID(id string) auth.Principal {
	return auth.Principal{ID: id, Role: auth.RoleFaculty, FacultyRoles: []models.FacultyRole{models.FacultyRoleFaculty}}
}

func (f *fixture) student(t *testing.T, roll, email string, stack ...string) *models.Student {
	t.Helper()
	s, err := f.svc.Students.Create(as(admin), models.Student{
		Name:       "Student " + roll,
		Roll:       roll,
		Email:      email,
		Department: "CSE",
		TechStack:  stack,
	})
	require.NoError(t, err)
	return s
}

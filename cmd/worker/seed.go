package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by "worker seed". Users are referenced by email.
type SeedFile struct {
	Users    []SeedUser    `yaml:"users"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

type SeedProject struct {
	Name        string     `yaml:"name"`
	Owner       string     `yaml:"owner"`
	Description string     `yaml:"description"`
	Status      string     `yaml:"status"`
	StartDate   string     `yaml:"start_date"`
	EndDate     string     `yaml:"end_date"`
	Tasks       []SeedTask `yaml:"tasks"`
}

type SeedTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Assignee    string `yaml:"assignee"`
	Priority    string `yaml:"priority"`
	Status      string `yaml:"status"`
	DueDate     string `yaml:"due_date"`
}

// ParseSeed decodes a seed file, rejecting unknown keys.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type SeedUsers interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, string, error)
	Create(ctx context.Context, u *domain.User, passwordHash string) error
	SetAdmin(ctx context.Context, id string, admin bool) error
}

type ProjectCreator interface {
	Create(ctx context.Context, actor domain.Actor, cmd validation.CreateProject) (*domain.Project, error)
}

type TaskCreator interface {
	Create(ctx context.Context, actor domain.Actor, cmd validation.CreateTask) (*domain.TaskView, error)
}

// Seeder loads a SeedFile through the regular services, so seeded data passes
// the same validation and policy checks as API input. Existing users are reused.
type Seeder struct {
	Users    SeedUsers
	Projects ProjectCreator
	Tasks    TaskCreator
}

type SeedResult struct {
	Users    int
	Projects int
	Tasks    int
}

func (s *Seeder) Seed(ctx context.Context, f *SeedFile) (SeedResult, error) {
	var res SeedResult
	byEmail := make(map[string]*domain.User, len(f.Users))

	for _, su := range f.Users {
		u, err := s.ensureUser(ctx, su)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", su.Email, err)
		}
		byEmail[u.Email] = u
		res.Users++
	}

	lookup := func(email string) (*domain.User, error) {
		email = strings.ToLower(strings.TrimSpace(email))
		if u, ok := byEmail[email]; ok {
			return u, nil
		}
		u, _, err := s.Users.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", email, err)
		}
		byEmail[email] = u
		return u, nil
	}

	for _, sp := range f.Projects {
		owner, err := lookup(sp.Owner)
		if err != nil {
			return res, fmt.Errorf("project %q owner: %w", sp.Name, err)
		}
		actor := owner.Actor()

		p, err := s.Projects.Create(ctx, actor, validation.CreateProject{
			Name: sp.Name, Description: sp.Description, Status: sp.Status,
			StartDate: sp.StartDate, EndDate: sp.EndDate,
		})
		if err != nil {
			return res, fmt.Errorf("project %q: %w", sp.Name, err)
		}
		res.Projects++

		for _, st := range sp.Tasks {
			cmd := validation.CreateTask{
				ProjectID: p.ID, Title: st.Title, Description: st.Description,
				Priority: st.Priority, Status: st.Status, DueDate: st.DueDate,
			}
			if st.Assignee != "" {
				a, err := lookup(st.Assignee)
				if err != nil {
					return res, fmt.Errorf("task %q assignee: %w", st.Title, err)
				}
				cmd.AssigneeID = a.ID
			}
			if _, err := s.Tasks.Create(ctx, actor, cmd); err != nil {
				return res, fmt.Errorf("task %q: %w", st.Title, err)
			}
			res.Tasks++
		}
	}
	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, su SeedUser) (*domain.User, error) {
	cmd := validation.Register{Name: su.Name, Email: su.Email, Password: su.Password}
	cmd.Normalize()

	u, _, err := s.Users.GetByEmail(ctx, cmd.Email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		if err := validation.Validate(cmd); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return nil, err
		}
		u = &domain.User{Name: cmd.Name, Email: cmd.Email}
		if err := s.Users.Create(ctx, u, hash); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if su.Admin && !u.IsAdmin {
		if err := s.Users.SetAdmin(ctx, u.ID, true); err != nil {
			return nil, err
		}
		u.IsAdmin = true
	}
	return u, nil
}

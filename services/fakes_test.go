package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/repositories"
)

type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[uuid.UUID]*models.User{}}
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) Create(_ context.Context, user *models.User) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return uuid.Nil, repositories.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	s.users[user.ID] = &cp
	return user.ID, nil
}

func (s *memoryStore) Update(_ context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "otp":
			if v == nil {
				u.OTP = nil
			} else {
				code := v.(string)
				u.OTP = &code
			}
		case "otp_expires_at":
			if v == nil {
				u.OTPExpiresAt = nil
			} else {
				exp := v.(time.Time)
				u.OTPExpiresAt = &exp
			}
		case "is_active":
			u.IsActive = v.(bool)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "role":
			u.Role = v.(models.UserRole)
		case "full_name":
			u.FullName = v.(string)
		case "email":
			u.Email = v.(string)
		}
	}
	return 1, nil
}

func (s *memoryStore) get(email string) *models.User {
	u, _ := s.FindByEmail(context.Background(), email)
	return u
}

type sentMessage struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Body: body})
	return n.err
}

func (n *recordingNotifier) last() sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMessage{}
	}
	return n.sent[len(n.sent)-1]
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

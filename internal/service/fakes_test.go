package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/ilindan-dev/safeguard/internal/sms"
	"sync"
	"time"
)

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts []*model.Contact
	listErr  error
}

func (f *fakeContactRepo) Create(_ context.Context, c *model.Contact) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.contacts {
		if existing.UserID == c.UserID && existing.Phone == c.Phone {
			return nil, repo.ErrDuplicateRecord
		}
	}
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeContactRepo) ListByUser(_ context.Context, userID string) ([]*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.Contact, 0)
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) Delete(_ context.Context, userID string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.contacts {
		if c.UserID == userID && c.ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	getErr   error
}

func (f *fakeProfileRepo) Get(_ context.Context, userID string) (*model.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Upsert(_ context.Context, p *model.Profile) (*model.Profile, error) {
	if f.profiles == nil {
		f.profiles = make(map[string]*model.Profile)
	}
	f.profiles[p.UserID] = p
	return p, nil
}

type fakeAlertRepo struct {
	mu            sync.Mutex
	saved         []*model.Alert
	savedStatuses []model.AlertStatus
	updates       []model.Alert
	saveErr       error
	lastLimit     int
}

func (f *fakeAlertRepo) Save(_ context.Context, a *model.Alert) (*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, a)
	f.savedStatuses = append(f.savedStatuses, a.Status)
	return a, nil
}

func (f *fakeAlertRepo) Update(ctx context.Context, a *model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, *a)
	return nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, userID string, id uuid.UUID) (*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.saved {
		if a.UserID == userID && a.ID == id {
			return a, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAlertRepo) ListByUser(_ context.Context, userID string, limit int) ([]*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := make([]*model.Alert, 0)
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if f.saved[i].UserID == userID {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []*model.AlertEvent
	publishErr error
}

func (f *fakeQueue) Publish(ctx context.Context, e *model.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, e)
	return nil
}

func (f *fakeQueue) PublishRetry(context.Context, *model.AlertEvent, time.Duration) error {
	return errors.New("not expected")
}

type fakeSender struct {
	mu          sync.Mutex
	sent        []sms.Message
	validateErr error
	sendFunc    func(msg sms.Message) (*sms.Receipt, error)
}

func (f *fakeSender) Send(_ context.Context, msg sms.Message) (*sms.Receipt, error) {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	if f.sendFunc != nil {
		return f.sendFunc(msg)
	}
	return &sms.Receipt{SID: "SM-" + msg.To}, nil
}

func (f *fakeSender) Validate() error { return f.validateErr }

func (f *fakeSender) messages() []sms.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sms.Message(nil), f.sent...)
}

package models

import (
	"context"
	"fmt"
	"sync"
)

// UserResource is the remote side of a UserModel.
type UserResource interface {
	FetchUser(ctx context.Context, id ID) (*User, error)
	SaveUser(ctx context.Context, u *User) error
}

// UserModel is a User bound to its remote resource. Every successful fetch
// and every local mutation is announced to subscribers with a snapshot.
// Saves are serialized: a save started while another is in flight waits for
// it and then sends the state current at that moment.
type UserModel struct {
	res UserResource

	mu   sync.RWMutex
	user User

	saveMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(User)
	nextSub int
}

func NewUserModel(id ID, res UserResource) *UserModel {
	return &UserModel{
		res:  res,
		user: User{ID: id},
		subs: make(map[int]func(User)),
	}
}

func (m *UserModel) ID() ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.ID
}

// Snapshot returns a deep copy of the current state.
func (m *UserModel) Snapshot() User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// Fetch replaces the local state with the remote record.
func (m *UserModel) Fetch(ctx context.Context) error {
	id := m.ID()
	u, err := m.res.FetchUser(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch user %s: %w", id, err)
	}
	if u.ID == "" {
		u.ID = id
	}

	m.mu.Lock()
	m.user = u.Clone()
	m.mu.Unlock()

	m.notify()
	return nil
}

// Save sends the full current state to the remote resource.
func (m *UserModel) Save(ctx context.Context) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	u := m.Snapshot()
	if err := m.res.SaveUser(ctx, &u); err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

// Update mutates the local state under the model lock and notifies
// subscribers. fn must not retain the pointer.
func (m *UserModel) Update(fn func(u *User)) {
	m.mu.Lock()
	id := m.user.ID
	fn(&m.user)
	m.user.ID = id
	m.mu.Unlock()

	m.notify()
}

// SetPhoto attaches an uploaded photo.
func (m *UserModel) SetPhoto(p Photo) {
	m.Update(func(u *User) { u.Photo = &p })
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (m *UserModel) Subscribe(fn func(User)) (unsubscribe func()) {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

func (m *UserModel) notify() {
	m.subsMu.Lock()
	fns := make([]func(User), 0, len(m.subs))
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.subsMu.Unlock()

	snap := m.Snapshot()
	for _, fn := range fns {
		fn(snap.Clone())
	}
}

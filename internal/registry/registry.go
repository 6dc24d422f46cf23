// Package registry owns every live room and the reverse index from
// connection id to the room it is bound to.
//
// A Registry is not safe for concurrent use. The relay service serializes
// every call behind its own lock so that each inbound event mutates the
// registry atomically.
package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/weiawesome/camlink/internal/domain"
	"github.com/weiawesome/camlink/internal/roomcode"
)

// DefaultMaxAttempts caps code regeneration on collision.
const DefaultMaxAttempts = 16

// ErrAlreadyBound is returned when a connection that is bound elsewhere
// tries to bind again without releasing first.
var ErrAlreadyBound = errors.New("connection already bound to a room")

// Binding is the reverse index entry of a connection.
type Binding struct {
	RoomCode string
	Role     domain.Role
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithMaxAttempts sets how many candidate codes Create tries.
func WithMaxAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// Registry maps room codes to rooms.
type Registry struct {
	rooms       map[string]*domain.Room
	bindings    map[string]Binding
	gen         roomcode.Generator
	now         func() time.Time
	maxAttempts int
}

// New creates an empty registry drawing codes from gen.
func New(gen roomcode.Generator, opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[string]*domain.Room),
		bindings:    make(map[string]Binding),
		gen:         gen,
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock.
func (r *Registry) Now() time.Time {
	return r.now()
}

// Create inserts a room under a fresh code.
func (r *Registry) Create() (*domain.Room, error) {
	for i := 0; i < r.maxAttempts; i++ {
		code, err := r.gen.Generate()
		if err != nil {
			return nil, err
		}
		code = domain.NormalizeRoomCode(code)
		if _, taken := r.rooms[code]; taken {
			continue
		}

		room := domain.NewRoom(code, r.now())
		r.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("%w after %d attempts", domain.ErrCodeSpaceExhausted, r.maxAttempts)
}

// Get looks a room up by code, ignoring case.
func (r *Registry) Get(code string) (*domain.Room, bool) {
	room, ok := r.rooms[domain.NormalizeRoomCode(code)]
	return room, ok
}

// Delete removes a room and unbinds its members. It returns the removed
// room, or nil when there was none.
func (r *Registry) Delete(code string) *domain.Room {
	code = domain.NormalizeRoomCode(code)
	room, ok := r.rooms[code]
	if !ok {
		return nil
	}
	delete(r.rooms, code)

	for _, id := range room.MemberIDs() {
		if b, ok := r.bindings[id]; ok && b.RoomCode == code {
			delete(r.bindings, id)
		}
	}
	return room
}

// Touch marks a room as active now.
func (r *Registry) Touch(code string) {
	if room, ok := r.Get(code); ok {
		room.LastActivity = r.now()
	}
}

// Sweep removes and returns every room idle for longer than maxIdle.
func (r *Registry) Sweep(maxIdle time.Duration) []*domain.Room {
	now := r.now()

	var idle []string
	for code, room := range r.rooms {
		if room.IdleFor(now) > maxIdle {
			idle = append(idle, code)
		}
	}

	evicted := make([]*domain.Room, 0, len(idle))
	for _, code := range idle {
		evicted = append(evicted, r.Delete(code))
	}
	return evicted
}

// BindHost makes connID the host of the room. A previous host is displaced
// and its id returned; rebinding the current host is a no-op apart from
// touching the room.
func (r *Registry) BindHost(code, connID string) (*domain.Room, string, error) {
	room, ok := r.Get(code)
	if !ok {
		return nil, "", domain.ErrRoomNotFound
	}
	if b, bound := r.bindings[connID]; bound && (b.RoomCode != room.Code || b.Role != domain.RoleHost) {
		return nil, "", ErrAlreadyBound
	}

	displaced := ""
	if room.HostID != "" && room.HostID != connID {
		displaced = room.HostID
		delete(r.bindings, displaced)
	}

	room.HostID = connID
	room.LastActivity = r.now()
	r.bindings[connID] = Binding{RoomCode: room.Code, Role: domain.RoleHost}
	return room, displaced, nil
}

// AddClient tracks connID as a client of the room.
func (r *Registry) AddClient(code, connID string) (*domain.Room, *domain.ClientSession, error) {
	room, ok := r.Get(code)
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	if !room.HasHost() {
		return nil, nil, domain.ErrNoHost
	}
	if _, bound := r.bindings[connID]; bound {
		return nil, nil, ErrAlreadyBound
	}

	now := r.now()
	session := domain.NewClientSession(connID, now)
	room.Clients[connID] = session
	room.LastActivity = now
	r.bindings[connID] = Binding{RoomCode: room.Code, Role: domain.RoleClient}
	return room, session, nil
}

// RemoveClient stops tracking connID in the room.
func (r *Registry) RemoveClient(code, connID string) (*domain.Room, bool) {
	room, ok := r.Get(code)
	if !ok {
		return nil, false
	}
	if _, ok := room.Clients[connID]; !ok {
		return room, false
	}

	delete(room.Clients, connID)
	delete(r.bindings, connID)
	return room, true
}

// Binding returns the room and role connID is bound to.
func (r *Registry) Binding(connID string) (Binding, bool) {
	b, ok := r.bindings[connID]
	return b, ok
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	return len(r.rooms)
}

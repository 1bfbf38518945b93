package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

// fakeTxManager mirrors the commit-gating contract of the real transaction
// manager: events staged during fn are handed to dispatch only when fn
// succeeds, and abandoned when it fails. There is no real database
// transaction underneath, so repository writes are not rolled back.
type fakeTxManager struct {
	mu         sync.Mutex
	dispatched []shared.DomainEvent
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, pending := shared.WithPendingEvents(ctx)
	if err := fn(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.dispatched = append(m.dispatched, pending.Drain()...)
	m.mu.Unlock()
	return nil
}

func (m *fakeTxManager) events() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shared.DomainEvent(nil), m.dispatched...)
}

// stagingPublisher stages events on the context's pending buffer the way the
// async bus does; events published outside a unit of work are rejected
type stagingPublisher struct{}

func (stagingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	pending := shared.PendingEventsFromContext(ctx)
	if pending == nil {
		return shared.NewDomainError("NO_TRANSACTION", "publish outside a unit of work")
	}
	pending.Add(events...)
	return nil
}

// memoryWorkspaceRepository is an in-memory workspace.Repository
type memoryWorkspaceRepository struct {
	mu         sync.Mutex
	workspaces map[uuid.UUID]workspace.Workspace
}

func newMemoryWorkspaceRepository() *memoryWorkspaceRepository {
	return &memoryWorkspaceRepository{workspaces: make(map[uuid.UUID]workspace.Workspace)}
}

func (r *memoryWorkspaceRepository) FindByID(_ context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &ws, nil
}

func (r *memoryWorkspaceRepository) Save(_ context.Context, ws *workspace.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[ws.ID] = *ws
	return nil
}

func (r *memoryWorkspaceRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, id)
	return nil
}

// memoryMemberRepository is an in-memory workspace.MemberRepository
type memoryMemberRepository struct {
	mu      sync.Mutex
	members map[uuid.UUID]workspace.Member
}

func newMemoryMemberRepository() *memoryMemberRepository {
	return &memoryMemberRepository{members: make(map[uuid.UUID]workspace.Member)}
}

func (r *memoryMemberRepository) FindByID(_ context.Context, id uuid.UUID) (*workspace.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &member, nil
}

func (r *memoryMemberRepository) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]workspace.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []workspace.Member
	for _, member := range r.members {
		if member.WorkspaceID == workspaceID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (r *memoryMemberRepository) FindByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			found := member
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryMemberRepository) CountByWorkspace(_ context.Context, workspaceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, member := range r.members {
		if member.WorkspaceID == workspaceID {
			count++
		}
	}
	return count, nil
}

func (r *memoryMemberRepository) Save(_ context.Context, member *workspace.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.GetID()] = *member
	return nil
}

func (r *memoryMemberRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
	return nil
}

// wrappingMemberRepository decorates the in-memory repository, wrapping every
// lookup error the way the gorm repositories do with fmt.Errorf("%w")
type wrappingMemberRepository struct {
	*memoryMemberRepository
}

func (r wrappingMemberRepository) FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	member, err := r.memoryMemberRepository.FindByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

var (
	_ workspace.Repository       = (*memoryWorkspaceRepository)(nil)
	_ workspace.MemberRepository = (*memoryMemberRepository)(nil)
	_ workspace.MemberRepository = (wrappingMemberRepository{})
	_ TransactionManager         = (*fakeTxManager)(nil)
	_ shared.EventPublisher      = (stagingPublisher{})
)

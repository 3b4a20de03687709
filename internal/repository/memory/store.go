package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/repository"
)

// Store keeps users, staff and visitors in process memory. It backs local
// development without Postgres and the service and handler tests.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[int64]domain.User
	staff    map[int64]domain.StaffMember
	visitors map[int64]domain.Visitor
	nextID   map[string]int64
}

func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]domain.User),
		staff:    make(map[int64]domain.StaffMember),
		visitors: make(map[int64]domain.Visitor),
		nextID:   make(map[string]int64),
	}
}

// WithClock replaces the timestamp source used for created/modified fields.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Users() repository.UserRepository       { return userStore{s} }
func (s *Store) Staff() repository.StaffRepository      { return staffStore{s} }
func (s *Store) Visitors() repository.VisitorRepository { return visitorStore{s} }

func (s *Store) allocate(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.ID = u.s.allocate("users")
	user.CreatedAt = u.s.now()
	user.ModifiedAt = user.CreatedAt
	u.s.users[user.ID] = *user
	return nil
}

func (u userStore) Update(_ context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	current, ok := u.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range u.s.users {
		if id != user.ID && existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = current.CreatedAt
	user.ModifiedAt = u.s.now()
	u.s.users[user.ID] = *user
	return nil
}

func (u userStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (u userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.Username == username {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u userStore) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	result := []domain.User{}
	for _, user := range u.s.users {
		if !filter.IncludeInactive && !user.Active {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (u userStore) SetActive(_ context.Context, id int64, active bool) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Active = active
	user.ModifiedAt = u.s.now()
	u.s.users[id] = user
	return &user, nil
}

type staffStore struct{ s *Store }

func (st staffStore) Create(_ context.Context, staff *domain.StaffMember) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	staff.ID = st.s.allocate("staff")
	staff.CreatedAt = st.s.now()
	staff.ModifiedAt = staff.CreatedAt
	st.s.staff[staff.ID] = *staff
	return nil
}

func (st staffStore) Update(_ context.Context, staff *domain.StaffMember) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	current, ok := st.s.staff[staff.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.CreatedAt = current.CreatedAt
	staff.ModifiedAt = st.s.now()
	st.s.staff[staff.ID] = *staff
	return nil
}

func (st staffStore) GetByID(_ context.Context, id int64) (*domain.StaffMember, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	staff, ok := st.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (st staffStore) GetActiveByName(_ context.Context, name string) (*domain.StaffMember, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	var found *domain.StaffMember
	for _, staff := range st.s.staff {
		if staff.Active && staff.Name == name && (found == nil || staff.ID > found.ID) {
			candidate := staff
			found = &candidate
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

func (st staffStore) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	result := []domain.StaffMember{}
	for _, staff := range st.s.staff {
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(staff.Name), search) &&
			!strings.Contains(strings.ToLower(staff.PhoneNumber), search) {
			continue
		}
		result = append(result, staff)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (st staffStore) SetActive(_ context.Context, id int64, active bool) (*domain.StaffMember, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	staff, ok := st.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	staff.Active = active
	staff.ModifiedAt = st.s.now()
	st.s.staff[id] = staff
	return &staff, nil
}

type visitorStore struct{ s *Store }

// joined fills host fields the way the SQL LEFT JOIN does. Callers hold the lock.
func (v visitorStore) joined(visitor domain.Visitor) domain.Visitor {
	visitor.StaffName = nil
	visitor.StaffPhone = nil
	if visitor.StaffID != nil {
		if staff, ok := v.s.staff[*visitor.StaffID]; ok {
			name, phone := staff.Name, staff.PhoneNumber
			visitor.StaffName = &name
			visitor.StaffPhone = &phone
		}
	}
	return visitor
}

func (v visitorStore) Create(_ context.Context, visitor *domain.Visitor) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	visitor.ID = v.s.allocate("visitors")
	visitor.CreatedAt = v.s.now()
	visitor.ModifiedAt = visitor.CreatedAt
	v.s.visitors[visitor.ID] = *visitor
	*visitor = v.joined(*visitor)
	return nil
}

func (v visitorStore) Update(_ context.Context, visitor *domain.Visitor) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	current, ok := v.s.visitors[visitor.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	visitor.CreatedAt = current.CreatedAt
	visitor.ModifiedAt = v.s.now()
	v.s.visitors[visitor.ID] = *visitor
	*visitor = v.joined(*visitor)
	return nil
}

func (v visitorStore) GetByID(_ context.Context, id int64) (*domain.Visitor, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	visitor, ok := v.s.visitors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	joined := v.joined(visitor)
	return &joined, nil
}

func (v visitorStore) GetLatestByPhone(_ context.Context, phone string) (*domain.Visitor, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var found *domain.Visitor
	for _, visitor := range v.s.visitors {
		if visitor.PhoneNumber == phone && (found == nil || visitor.ID > found.ID) {
			joined := v.joined(visitor)
			found = &joined
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

func (v visitorStore) List(_ context.Context, filter repository.VisitorFilter) ([]domain.Visitor, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	return paginate(v.matching(filter), filter.Limit, filter.Offset), nil
}

// matching returns filtered visitors ordered newest first. Callers hold the lock.
func (v visitorStore) matching(filter repository.VisitorFilter) []domain.Visitor {
	search := strings.ToLower(filter.Search)
	result := []domain.Visitor{}
	for _, stored := range v.s.visitors {
		visitor := v.joined(stored)
		if filter.From != nil && visitor.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && visitor.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.Profile != nil && visitor.VisitorProfile != *filter.Profile {
			continue
		}
		if filter.StaffID != nil && (visitor.StaffID == nil || *visitor.StaffID != *filter.StaffID) {
			continue
		}
		if filter.IncludeCheckedOut != nil && !*filter.IncludeCheckedOut && visitor.CheckedOut() {
			continue
		}
		if search != "" && !matchesSearch(visitor, search) {
			continue
		}
		result = append(result, visitor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func matchesSearch(visitor domain.Visitor, search string) bool {
	if strings.Contains(strings.ToLower(visitor.VisitorName), search) ||
		strings.Contains(strings.ToLower(visitor.PhoneNumber), search) {
		return true
	}
	return visitor.StaffName != nil && strings.Contains(strings.ToLower(*visitor.StaffName), search)
}

func (v visitorStore) CheckOut(_ context.Context, id int64, at time.Time) (*domain.Visitor, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	visitor, ok := v.s.visitors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	visitor.CheckedOutAt = &at
	visitor.ModifiedAt = v.s.now()
	v.s.visitors[id] = visitor
	joined := v.joined(visitor)
	return &joined, nil
}

func (v visitorStore) Delete(_ context.Context, id int64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if _, ok := v.s.visitors[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(v.s.visitors, id)
	return nil
}

func (v visitorStore) Stats(_ context.Context, from, to *time.Time, recent int) (*domain.VisitorStats, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	all := v.matching(repository.VisitorFilter{From: from, To: to})
	stats := &domain.VisitorStats{
		TotalVisitors:     int64(len(all)),
		VisitorsByProfile: []domain.VisitorProfileCount{},
		RecentVisitors:    []domain.Visitor{},
	}

	counts := map[domain.VisitorProfile]int64{}
	for _, visitor := range all {
		counts[visitor.VisitorProfile]++
		if visitor.CheckedOut() {
			stats.CheckedOutCount++
		}
	}
	activeOnly := false
	stats.RecentVisitors = paginate(v.matching(repository.VisitorFilter{IncludeCheckedOut: &activeOnly}), recent, 0)
	stats.ActiveVisitors = stats.TotalVisitors - stats.CheckedOutCount

	for profile, count := range counts {
		stats.VisitorsByProfile = append(stats.VisitorsByProfile, domain.VisitorProfileCount{VisitorProfile: profile, Count: count})
	}
	sort.Slice(stats.VisitorsByProfile, func(i, j int) bool {
		return stats.VisitorsByProfile[i].VisitorProfile < stats.VisitorsByProfile[j].VisitorProfile
	})
	return stats, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

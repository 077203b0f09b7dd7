package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"policyvault/internal/model"
	"policyvault/internal/repository"
)

// fakeStore keeps every table in memory with the same ownership rules as the
// SQL store.
type fakeStore struct {
	mu       sync.Mutex
	policies map[string]model.Policy
	claims   map[string]model.Claim
	docs     []model.Document
	logs     []model.LogEntry
	profiles map[string]model.Profile
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		policies: map[string]model.Policy{},
		claims:   map[string]model.Claim{},
		profiles: map[string]model.Profile{},
		clock:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) addProfile(userID, email string, role model.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = model.Profile{ID: uuid.NewString(), UserID: userID, Email: &email, Role: role, CreatedAt: f.tick()}
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListAdminProfiles(context.Context) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Profile{}
	for _, p := range f.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateRole(_ context.Context, target string, role model.Role, entry model.LogEntry) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[target]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	p.Role = role
	f.profiles[target] = p
	entry.ID = uuid.NewString()
	f.logs = append(f.logs, entry)
	return p, nil
}

func (f *fakeStore) ListPolicies(_ context.Context, userID string) ([]model.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Policy{}
	for _, p := range f.policies {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (f *fakeStore) ListPolicyOptions(_ context.Context, userID string) ([]model.PolicySummary, error) {
	policies, _ := f.ListPolicies(context.Background(), userID)
	out := []model.PolicySummary{}
	for _, p := range policies {
		out = append(out, summaryOf(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyNumber < out[j].PolicyNumber })
	return out, nil
}

func (f *fakeStore) GetPolicy(_ context.Context, userID, policyID string) (model.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[policyID]
	if !ok || p.UserID != userID {
		return model.Policy{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreatePolicy(_ context.Context, p model.Policy) (model.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = f.tick()
	p.UpdatedAt = p.CreatedAt
	f.policies[p.ID] = p
	return p, nil
}

func (f *fakeStore) UpdatePolicy(_ context.Context, p model.Policy) (model.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.policies[p.ID]
	if !ok || existing.UserID != p.UserID {
		return model.Policy{}, repository.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = f.tick()
	f.policies[p.ID] = p
	return p, nil
}

func (f *fakeStore) DeletePolicy(_ context.Context, userID, policyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[policyID]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.policies, policyID)
	for id, c := range f.claims {
		if c.PolicyID == policyID {
			delete(f.claims, id)
		}
	}
	return nil
}

func (f *fakeStore) ListClaims(_ context.Context, userID string) ([]model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Claim{}
	for _, c := range f.claims {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetClaim(_ context.Context, userID, claimID string) (model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[claimID]
	if !ok || c.UserID != userID {
		return model.Claim{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CreateClaim(_ context.Context, c model.Claim) (model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[c.PolicyID]
	if !ok || p.UserID != c.UserID {
		return model.Claim{}, repository.ErrNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = f.tick()
	c.UpdatedAt = c.CreatedAt
	summary := summaryOf(p)
	c.Policy = &summary
	f.claims[c.ID] = c
	return c, nil
}

func (f *fakeStore) DeleteClaim(_ context.Context, userID, claimID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[claimID]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.claims, claimID)
	return nil
}

func (f *fakeStore) CreateDocument(_ context.Context, d model.Document) (model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = uuid.NewString()
	d.UploadedAt = f.tick()
	if d.Owner == model.DocumentOwnerPolicy {
		d.PolicyID = d.OwnerID
	} else {
		d.ClaimID = d.OwnerID
	}
	f.docs = append(f.docs, d)
	return d, nil
}

func (f *fakeStore) ListPolicyDocuments(_ context.Context, userID string) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Document{}
	for _, d := range f.docs {
		if p, ok := f.policies[d.PolicyID]; ok && p.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecentLogs(context.Context) ([]model.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.LogEntry, 0, len(f.logs))
	for i := len(f.logs) - 1; i >= 0 && len(out) < 100; i-- {
		entry := f.logs[i]
		if p, ok := f.profiles[entry.UserID]; ok {
			entry.Actor = &model.Actor{FullName: p.FullName, Email: p.Email}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeStore) ListUserLogs(_ context.Context, userID string) ([]model.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.LogEntry{}
	for _, entry := range f.logs {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertLog(_ context.Context, entry model.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = f.tick()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeStore) CountPolicies(ctx context.Context, userID string) (int, error) {
	policies, err := f.ListPolicies(ctx, userID)
	return len(policies), err
}

func (f *fakeStore) CountClaims(ctx context.Context, userID string) (int, error) {
	claims, err := f.ListClaims(ctx, userID)
	return len(claims), err
}

func (f *fakeStore) CountPolicyDocuments(ctx context.Context, userID string) (int, error) {
	docs, err := f.ListPolicyDocuments(ctx, userID)
	return len(docs), err
}

func (f *fakeStore) CountLogs(ctx context.Context, userID string) (int, error) {
	logs, err := f.ListUserLogs(ctx, userID)
	return len(logs), err
}

func summaryOf(p model.Policy) model.PolicySummary {
	return model.PolicySummary{ID: p.ID, PolicyNumber: p.PolicyNumber, PolicyType: p.Type(), InsuredName: p.InsuredName}
}

type memoryObjects struct {
	mu   sync.Mutex
	keys []string
}

func (m *memoryObjects) Put(_ context.Context, bucket, key, _ string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, bucket+"/"+key)
	return nil
}

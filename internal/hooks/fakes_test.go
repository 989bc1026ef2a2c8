package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

const testSecret = "s3cr3t-shared"

type fakeUser struct {
	ID       string
	Username string
}

// fakeDirectory records calls as "Method(args)" strings. Users are keyed by
// username or alias.
type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]*fakeUser
	calls []string
	fail  map[string]error
	newID string
}

func newFakeDirectory(users ...*fakeUser) *fakeDirectory {
	d := &fakeDirectory{users: map[string]*fakeUser{}, fail: map[string]error{}, newID: "DU_NEW"}
	for _, u := range users {
		d.users[u.Username] = u
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) record(method string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf("%s%v", method, args))
	return d.fail[method]
}

func (d *fakeDirectory) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// SortedCalls is for assertions on concurrently issued calls.
func (d *fakeDirectory) SortedCalls() []string {
	calls := d.Calls()
	sort.Strings(calls)
	return calls
}

func (d *fakeDirectory) GetUser(_ context.Context, ref string) (*fakeUser, error) {
	if err := d.record("GetUser", ref); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[ref], nil
}

func (d *fakeDirectory) CreateUser(_ context.Context, user models.InitiatorUser) (string, error) {
	if err := d.record("CreateUser", user.Username, user.Profile.Alias); err != nil {
		return "", err
	}
	return d.newID, nil
}

func (d *fakeDirectory) DeleteUser(_ context.Context, u *fakeUser) error {
	return d.record("DeleteUser", u.ID)
}

func (d *fakeDirectory) UpdateProfile(_ context.Context, u *fakeUser, p models.Profile) error {
	return d.record("UpdateProfile", u.ID, p.Email, p.FirstName, p.LastName)
}

func (d *fakeDirectory) Disable(_ context.Context, u *fakeUser) error {
	return d.record("Disable", u.ID)
}

func (d *fakeDirectory) Reenable(_ context.Context, u *fakeUser) error {
	return d.record("Reenable", u.ID)
}

func (d *fakeDirectory) ResetFactor(_ context.Context, u *fakeUser, factor string) error {
	return d.record("ResetFactor", u.ID, factor)
}

func (d *fakeDirectory) AddUserToGroup(_ context.Context, u *fakeUser, group string, jit bool) error {
	return d.record("AddUserToGroup", u.ID, group, jit)
}

func (d *fakeDirectory) AddUserToGroupByID(_ context.Context, userID, group string, jit bool) error {
	return d.record("AddUserToGroupByID", userID, group, jit)
}

func (d *fakeDirectory) RemoveUserFromGroup(_ context.Context, u *fakeUser, group string) error {
	return d.record("RemoveUserFromGroup", u.ID, group)
}

func (d *fakeDirectory) CreateGroup(_ context.Context, name, alias string) (string, error) {
	return "DG_NEW", d.record("CreateGroup", name, alias)
}

func (d *fakeDirectory) RenameGroup(_ context.Context, alias, name string) error {
	return d.record("RenameGroup", alias, name)
}

func (d *fakeDirectory) DeleteGroup(_ context.Context, ref string) error {
	return d.record("DeleteGroup", ref)
}

var _ Directory[*fakeUser] = (*fakeDirectory)(nil)

type fakeInitiator struct {
	mu      sync.Mutex
	users   map[string]models.InitiatorUser
	groups  map[string][]string
	lookups []string
	fail    error
}

func (i *fakeInitiator) note(what string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lookups = append(i.lookups, what)
}

func (i *fakeInitiator) GetUser(_ context.Context, id string) (models.InitiatorUser, error) {
	i.note("GetUser " + id)
	if i.fail != nil {
		return models.InitiatorUser{}, i.fail
	}
	u, ok := i.users[id]
	if !ok {
		return models.InitiatorUser{}, fmt.Errorf("okta user %s not found", id)
	}
	return u, nil
}

func (i *fakeInitiator) GetProfile(_ context.Context, id string) (models.Profile, error) {
	i.note("GetProfile " + id)
	if i.fail != nil {
		return models.Profile{}, i.fail
	}
	u, ok := i.users[id]
	if !ok {
		return models.Profile{}, fmt.Errorf("okta user %s not found", id)
	}
	return u.Profile, nil
}

func (i *fakeInitiator) GroupNames(_ context.Context, id string) ([]string, error) {
	i.note("GroupNames " + id)
	return i.groups[id], nil
}

// fakeTracker records the dedup lifecycle per event id.
type fakeTracker struct {
	mu       sync.Mutex
	seen     map[string]bool
	checked  []string
	started  []string
	stopped  map[string]error
	startErr error
}

func newFakeTracker(seen ...string) *fakeTracker {
	t := &fakeTracker{seen: map[string]bool{}, stopped: map[string]error{}}
	for _, id := range seen {
		t.seen[id] = true
	}
	return t
}

func (t *fakeTracker) IsDuplicate(_ context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checked = append(t.checked, id)
	return t.seen[id], nil
}

func (t *fakeTracker) StartProcessing(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startErr != nil {
		return t.startErr
	}
	t.started = append(t.started, id)
	return nil
}

func (t *fakeTracker) StopProcessing(_ context.Context, id string, procErr error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped[id] = procErr
	return nil
}

func (t *fakeTracker) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.checked) + len(t.started) + len(t.stopped)
}

func randomUser() *fakeUser {
	return &fakeUser{ID: "auth0|" + strings.ReplaceAll(gofakeit.UUID(), "-", ""), Username: gofakeit.Email()}
}

func authorized(method string, body []byte) Request {
	return Request{
		Method:  method,
		Headers: map[string]string{"authorization": testSecret},
		Body:    body,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

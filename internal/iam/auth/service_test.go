// Copyright (c) 2026 Campora. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campora/campora/internal/iam/auth"
	"github.com/campora/campora/internal/iam/rbac"
	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/sec"
)

// # In-Memory Fakes
//
// The fakes mirror the contracts of the Postgres and Redis repositories,
// including the sentinel errors and the rotation semantics of the ledger.

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[string]*auth.Identity)}
}

func (repo *fakeIdentityRepo) FindByID(_ context.Context, id string) (*auth.Identity, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	identity, ok := repo.identities[id]
	if !ok {
		return nil, apperr.NotFound("Identity")
	}
	copied := *identity
	return &copied, nil
}

func (repo *fakeIdentityRepo) FindByEmail(_ context.Context, email string) (*auth.Identity, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, identity := range repo.identities {
		if strings.EqualFold(identity.Email, email) {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Identity")
}

func (repo *fakeIdentityRepo) Create(_ context.Context, identity *auth.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.identities {
		if strings.EqualFold(existing.Email, identity.Email) {
			return auth.ErrDuplicateEmail
		}
	}
	copied := *identity
	repo.identities[identity.ID] = &copied
	return nil
}

func (repo *fakeIdentityRepo) Update(_ context.Context, identity *auth.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *identity
	repo.identities[identity.ID] = &copied
	return nil
}

func (repo *fakeIdentityRepo) UpdatePassword(_ context.Context, identityID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.identities[identityID]; ok {
		identity.PasswordHash = newHash
	}
	return nil
}

func (repo *fakeIdentityRepo) SetActive(_ context.Context, identityID string, active bool) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.identities[identityID]; ok {
		identity.IsActive = active
	}
	return nil
}

func (repo *fakeIdentityRepo) MarkVerified(_ context.Context, identityID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.identities[identityID]; ok {
		identity.EmailVerified = true
	}
	return nil
}

func (repo *fakeIdentityRepo) TouchLastLogin(_ context.Context, identityID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.identities[identityID]; ok {
		now := time.Now()
		identity.LastLoginAt = &now
	}
	return nil
}

// fakeLedger reproduces the rotation ledger semantics in memory: unique token
// strings, identity-wide revocation on reuse, and single-redemption rotation.
type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]*auth.RefreshToken
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]*auth.RefreshToken)}
}

func (ledger *fakeLedger) Create(_ context.Context, token *auth.RefreshToken) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if _, exists := ledger.entries[token.Token]; exists {
		return auth.ErrTokenCollision
	}
	copied := *token
	ledger.entries[token.Token] = &copied
	return nil
}

func (ledger *fakeLedger) FindByToken(_ context.Context, token string) (*auth.RefreshToken, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	entry, ok := ledger.entries[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	copied := *entry
	return &copied, nil
}

func (ledger *fakeLedger) Rotate(_ context.Context, oldToken string, successor *auth.RefreshToken, revokedByIP string) (*auth.RefreshToken, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	entry, ok := ledger.entries[oldToken]
	if !ok {
		return nil, auth.ErrInvalidToken
	}

	if entry.IsRevoked {
		// Reuse of a spent token: revoke every active token the identity holds.
		now := time.Now()
		for _, other := range ledger.entries {
			if other.IdentityID == entry.IdentityID && !other.IsRevoked {
				other.IsRevoked = true
				other.RevokedAt = &now
				other.RevokedByIP = revokedByIP
			}
		}
		return nil, auth.ErrTokenReuse
	}

	if entry.IsExpired() {
		return nil, auth.ErrTokenExpired
	}

	if _, exists := ledger.entries[successor.Token]; exists {
		return nil, auth.ErrTokenCollision
	}

	now := time.Now()
	entry.IsRevoked = true
	entry.RevokedAt = &now
	entry.RevokedByIP = revokedByIP
	entry.ReplacedByToken = successor.Token

	copied := *successor
	ledger.entries[successor.Token] = &copied

	redeemed := *entry
	return &redeemed, nil
}

func (ledger *fakeLedger) Revoke(_ context.Context, token, revokedByIP string) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if entry, ok := ledger.entries[token]; ok && !entry.IsRevoked {
		now := time.Now()
		entry.IsRevoked = true
		entry.RevokedAt = &now
		entry.RevokedByIP = revokedByIP
	}
	return nil
}

func (ledger *fakeLedger) RevokeAll(_ context.Context, identityID string) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	for _, entry := range ledger.entries {
		if entry.IdentityID == identityID {
			entry.IsRevoked = true
		}
	}
	return nil
}

func (ledger *fakeLedger) RevokeOthers(_ context.Context, identityID, keepToken string) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	for _, entry := range ledger.entries {
		if entry.IdentityID == identityID && entry.Token != keepToken {
			entry.IsRevoked = true
		}
	}
	return nil
}

func (ledger *fakeLedger) DeleteExpired(_ context.Context) (int64, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	var removed int64
	for token, entry := range ledger.entries {
		if entry.IsExpired() {
			delete(ledger.entries, token)
			removed++
		}
	}
	return removed, nil
}

func (ledger *fakeLedger) get(token string) *auth.RefreshToken {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.entries[token]
}

func (ledger *fakeLedger) activeCount(identityID string) int {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	count := 0
	for _, entry := range ledger.entries {
		if entry.IdentityID == identityID && entry.IsActive() {
			count++
		}
	}
	return count
}

// fakeVolatileStore stands in for both Redis-backed token repositories.
type fakeVolatileStore struct {
	mu     sync.Mutex
	tokens map[string]string
	setErr error
}

func newFakeVolatileStore() *fakeVolatileStore {
	return &fakeVolatileStore{tokens: make(map[string]string)}
}

func (store *fakeVolatileStore) Set(_ context.Context, token, identityID string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.setErr != nil {
		return store.setErr
	}
	store.tokens[token] = identityID
	return nil
}

func (store *fakeVolatileStore) Get(_ context.Context, token string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	identityID, ok := store.tokens[token]
	if !ok {
		return "", apperr.Unauthorized("Invalid or expired token")
	}
	return identityID, nil
}

func (store *fakeVolatileStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.tokens, token)
	return nil
}

func (store *fakeVolatileStore) len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.tokens)
}

// fakeTokenProvider signs nothing; it emits a recognizable opaque string.
type fakeTokenProvider struct {
	mu     sync.Mutex
	issued int
}

func (provider *fakeTokenProvider) GenerateAccessToken(identityID, _ string, _ []string, _ time.Duration) (string, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.issued++
	return fmt.Sprintf("access:%s:%d", identityID, provider.issued), nil
}

// fakeRoleDirectory implements the RoleDirectory contract over a fixed role set.
type fakeRoleDirectory struct {
	mu          sync.Mutex
	known       map[string]bool
	assignments map[string][]string
}

func newFakeRoleDirectory() *fakeRoleDirectory {
	return &fakeRoleDirectory{
		known: map[string]bool{
			rbac.RoleAdmin:   true,
			rbac.RoleFaculty: true,
			rbac.RoleStudent: true,
			rbac.RoleParent:  true,
		},
		assignments: make(map[string][]string),
	}
}

func (directory *fakeRoleDirectory) AssignByName(_ context.Context, identityID, roleName string) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	if !directory.known[roleName] {
		return apperr.NotFound("Role")
	}
	directory.assignments[identityID] = append(directory.assignments[identityID], roleName)
	return nil
}

func (directory *fakeRoleDirectory) NamesFor(_ context.Context, identityID string) ([]string, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()
	return directory.assignments[identityID], nil
}

// fakeRegistrar records profile provisioning calls.
type fakeRegistrar struct {
	mu    sync.Mutex
	calls []string
	fail  error
}

func (registrar *fakeRegistrar) RegisterProfile(_ context.Context, identityID string, _ auth.ProfileInput) error {
	registrar.mu.Lock()
	defer registrar.mu.Unlock()
	if registrar.fail != nil {
		return registrar.fail
	}
	registrar.calls = append(registrar.calls, identityID)
	return nil
}

// # Test Harness

type testHarness struct {
	service    *auth.Service
	identities *fakeIdentityRepo
	ledger     *fakeLedger
	resets     *fakeVolatileStore
	verifies   *fakeVolatileStore
	roles      *fakeRoleDirectory
	registrar  *fakeRegistrar
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	harness := &testHarness{
		identities: newFakeIdentityRepo(),
		ledger:     newFakeLedger(),
		resets:     newFakeVolatileStore(),
		verifies:   newFakeVolatileStore(),
		roles:      newFakeRoleDirectory(),
		registrar:  &fakeRegistrar{},
	}

	harness.service = auth.NewService(
		harness.identities,
		harness.ledger,
		harness.resets,
		harness.verifies,
		&fakeTokenProvider{},
		harness.roles,
	)
	harness.service.RegisterProfileRegistrar(rbac.RoleStudent, harness.registrar)

	return harness
}

// register enrolls a student identity and returns it.
func (harness *testHarness) register(t *testing.T, email, password string) *auth.Identity {
	t.Helper()
	identity, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		FullName: "Test Member",
		RoleType: rbac.RoleStudent,
		Profile:  auth.ProfileInput{FirstName: "Test", LastName: "Member"},
	})
	require.NoError(t, err)
	return identity
}

// login opens a session for previously registered credentials.
func (harness *testHarness) login(t *testing.T, email, password string) *auth.LoginSession {
	t.Helper()
	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:     email,
		Password:  password,
		IPAddress: "198.51.100.7",
	})
	require.NoError(t, err)
	return session
}

// # Registration

/*
TestService_Register verifies account creation, role binding, and profile
provisioning for a new member.
*/
func TestService_Register(t *testing.T) {
	harness := newTestHarness(t)

	identity := harness.register(t, "student@campora.io", "s3cret-pass")

	assert.NotEmpty(t, identity.ID)
	assert.True(t, identity.IsActive)
	assert.False(t, identity.EmailVerified)

	// The password must never be stored in plain text.
	assert.NotEqual(t, "s3cret-pass", identity.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("s3cret-pass", identity.PasswordHash))

	// Role bound and profile provisioned.
	roles, err := harness.roles.NamesFor(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.RoleStudent}, roles)
	assert.Equal(t, []string{identity.ID}, harness.registrar.calls)

	// A verification token was parked in the volatile store.
	assert.Equal(t, 1, harness.verifies.len())
}

/*
TestService_Register_VerificationStoreDown ensures a volatile-store outage
does not fail the enrollment; the account is created without a parked
verification token.
*/
func TestService_Register_VerificationStoreDown(t *testing.T) {
	harness := newTestHarness(t)
	harness.verifies.setErr = errors.New("redis: connection refused")

	identity, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "offline@campora.io",
		Password: "s3cret-pass",
		FullName: "Off Line",
		RoleType: rbac.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, identity.ID)
	assert.Zero(t, harness.verifies.len())
}

/*
TestService_Register_NormalizesEmail enrolls with a mixed-case, padded email
and expects the canonical lower-cased form to be the one persisted.
*/
func TestService_Register_NormalizesEmail(t *testing.T) {
	harness := newTestHarness(t)

	identity, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "  MiXeD.Case@Campora.IO ",
		Password: "s3cret-pass",
		FullName: "Mixed Case",
		RoleType: rbac.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@campora.io", identity.Email)

	// The canonical form is what credentials verify against.
	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "mixed.case@campora.io",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@campora.io", session.Identity.Email)
}

/*
TestService_Register_DuplicateEmail ensures the unique email constraint
surfaces as ErrDuplicateEmail, case-insensitively.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	harness := newTestHarness(t)
	harness.register(t, "taken@campora.io", "s3cret-pass")

	_, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "TAKEN@campora.io",
		Password: "other-pass",
		FullName: "Second Member",
		RoleType: rbac.RoleStudent,
	})

	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

/*
TestService_Register_UnknownRole verifies that an unknown role name fails the
whole registration instead of leaving a roleless account.
*/
func TestService_Register_UnknownRole(t *testing.T) {
	harness := newTestHarness(t)

	_, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "nobody@campora.io",
		Password: "s3cret-pass",
		FullName: "No Role",
		RoleType: "Janitor",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.NotFound("Role"))
}

// # Login

/*
TestService_Login covers the credential verification matrix.
*/
func TestService_Login(t *testing.T) {
	harness := newTestHarness(t)
	harness.register(t, "member@campora.io", "correct-pass")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid_credentials", "member@campora.io", "correct-pass", nil},
		{"case_insensitive_email", "MEMBER@campora.io", "correct-pass", nil},
		{"wrong_password", "member@campora.io", "wrong-pass", auth.ErrInvalidCredentials},
		{"unknown_email", "ghost@campora.io", "correct-pass", auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := harness.service.Login(context.Background(), auth.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, session.AccessToken)
			assert.NotEmpty(t, session.RefreshToken)
			assert.Equal(t, []string{rbac.RoleStudent}, session.Roles)
		})
	}
}

/*
TestService_Login_InactiveAccount checks that a deactivated identity cannot
open a session even with valid credentials.
*/
func TestService_Login_InactiveAccount(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "inactive@campora.io", "correct-pass")
	require.NoError(t, harness.service.Deactivate(context.Background(), identity.ID))

	_, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "inactive@campora.io",
		Password: "correct-pass",
	})

	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}

/*
TestService_Login_OpensLedgerEntry ensures each login starts a fresh lineage
in the ledger with the configured lifetime.
*/
func TestService_Login_OpensLedgerEntry(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "ledger@campora.io", "correct-pass")

	session := harness.login(t, "ledger@campora.io", "correct-pass")

	entry := harness.ledger.get(session.RefreshToken)
	require.NotNil(t, entry)
	assert.Equal(t, identity.ID, entry.IdentityID)
	assert.Equal(t, "198.51.100.7", entry.CreatedByIP)
	assert.True(t, entry.IsActive())
	assert.WithinDuration(t, time.Now().Add(auth.RefreshTokenTTL), entry.ExpiresAt, time.Minute)
}

// # Rotation

/*
TestService_Refresh_RotatesChain walks a three-link rotation chain and checks
that each redeemed token is revoked and points at its successor.
*/
func TestService_Refresh_RotatesChain(t *testing.T) {
	harness := newTestHarness(t)
	harness.register(t, "chain@campora.io", "correct-pass")
	session := harness.login(t, "chain@campora.io", "correct-pass")

	first := session.RefreshToken

	second, err := harness.service.Refresh(context.Background(), first, "198.51.100.8")
	require.NoError(t, err)
	assert.NotEqual(t, first, second.RefreshToken)

	third, err := harness.service.Refresh(context.Background(), second.RefreshToken, "198.51.100.8")
	require.NoError(t, err)
	assert.NotEqual(t, second.RefreshToken, third.RefreshToken)

	// The spent links are revoked and chained to their successors.
	firstEntry := harness.ledger.get(first)
	require.NotNil(t, firstEntry)
	assert.True(t, firstEntry.IsRevoked)
	assert.Equal(t, second.RefreshToken, firstEntry.ReplacedByToken)
	assert.Equal(t, "198.51.100.8", firstEntry.RevokedByIP)

	secondEntry := harness.ledger.get(second.RefreshToken)
	require.NotNil(t, secondEntry)
	assert.True(t, secondEntry.IsRevoked)
	assert.Equal(t, third.RefreshToken, secondEntry.ReplacedByToken)

	// Only the newest link remains active.
	thirdEntry := harness.ledger.get(third.RefreshToken)
	require.NotNil(t, thirdEntry)
	assert.True(t, thirdEntry.IsActive())
}

/*
TestService_Refresh_ReuseRevokesAllSessions presents an already-spent token
and expects every active token of the identity to be revoked as a theft
response, including sessions opened on other devices.
*/
func TestService_Refresh_ReuseRevokesAllSessions(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "stolen@campora.io", "correct-pass")
	deviceA := harness.login(t, "stolen@campora.io", "correct-pass")
	deviceB := harness.login(t, "stolen@campora.io", "correct-pass")

	first := deviceA.RefreshToken
	second, err := harness.service.Refresh(context.Background(), first, "198.51.100.8")
	require.NoError(t, err)
	third, err := harness.service.Refresh(context.Background(), second.RefreshToken, "198.51.100.8")
	require.NoError(t, err)

	// Replay the first token, as a thief holding an old capture would.
	_, err = harness.service.Refresh(context.Background(), first, "203.0.113.66")
	assert.ErrorIs(t, err, auth.ErrTokenReuse)

	// The legitimate holder's newest link is dead too.
	thirdEntry := harness.ledger.get(third.RefreshToken)
	require.NotNil(t, thirdEntry)
	assert.True(t, thirdEntry.IsRevoked)

	// And it can no longer be redeemed.
	_, err = harness.service.Refresh(context.Background(), third.RefreshToken, "198.51.100.8")
	assert.ErrorIs(t, err, auth.ErrTokenReuse)

	// The other device's session did not survive the reuse event either.
	deviceBEntry := harness.ledger.get(deviceB.RefreshToken)
	require.NotNil(t, deviceBEntry)
	assert.True(t, deviceBEntry.IsRevoked)
	_, err = harness.service.Refresh(context.Background(), deviceB.RefreshToken, "198.51.100.9")
	assert.ErrorIs(t, err, auth.ErrTokenReuse)
	assert.Zero(t, harness.ledger.activeCount(identity.ID))
}

/*
TestService_Refresh_Expired ensures a token past its lifetime cannot be
redeemed.
*/
func TestService_Refresh_Expired(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "late@campora.io", "correct-pass")

	stale := &auth.RefreshToken{
		ID:         "stale-id",
		IdentityID: identity.ID,
		Token:      "stale-token",
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, harness.ledger.Create(context.Background(), stale))

	_, err := harness.service.Refresh(context.Background(), "stale-token", "198.51.100.8")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

/*
TestService_Refresh_UnknownToken ensures a token absent from the ledger is
rejected as invalid.
*/
func TestService_Refresh_UnknownToken(t *testing.T) {
	harness := newTestHarness(t)

	_, err := harness.service.Refresh(context.Background(), "never-issued", "198.51.100.8")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

/*
TestService_Refresh_InactiveAccount checks that rotation for a deactivated
identity fails and burns every remaining session.
*/
func TestService_Refresh_InactiveAccount(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "benched@campora.io", "correct-pass")
	session := harness.login(t, "benched@campora.io", "correct-pass")

	require.NoError(t, harness.identities.SetActive(context.Background(), identity.ID, false))

	_, err := harness.service.Refresh(context.Background(), session.RefreshToken, "198.51.100.8")
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
	assert.Zero(t, harness.ledger.activeCount(identity.ID))
}

/*
TestService_Refresh_Concurrent races two redemptions of the same token and
expects exactly one winner.
*/
func TestService_Refresh_Concurrent(t *testing.T) {
	harness := newTestHarness(t)
	harness.register(t, "race@campora.io", "correct-pass")
	session := harness.login(t, "race@campora.io", "correct-pass")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = harness.service.Refresh(context.Background(), session.RefreshToken, "198.51.100.8")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, auth.ErrTokenReuse)
		}
	}
	assert.Equal(t, 1, winners)
}

// # Session Teardown

/*
TestService_Logout verifies single-session revocation and its idempotency.
*/
func TestService_Logout(t *testing.T) {
	harness := newTestHarness(t)
	harness.register(t, "leaving@campora.io", "correct-pass")
	session := harness.login(t, "leaving@campora.io", "correct-pass")

	require.NoError(t, harness.service.Logout(context.Background(), session.RefreshToken, "198.51.100.8"))
	entry := harness.ledger.get(session.RefreshToken)
	require.NotNil(t, entry)
	assert.True(t, entry.IsRevoked)

	// Logging out twice, or with garbage, is not an error.
	assert.NoError(t, harness.service.Logout(context.Background(), session.RefreshToken, "198.51.100.8"))
	assert.NoError(t, harness.service.Logout(context.Background(), "unknown-token", "198.51.100.8"))
}

/*
TestService_LogoutAll burns every session the identity holds.
*/
func TestService_LogoutAll(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "everywhere@campora.io", "correct-pass")
	harness.login(t, "everywhere@campora.io", "correct-pass")
	harness.login(t, "everywhere@campora.io", "correct-pass")
	require.Equal(t, 2, harness.ledger.activeCount(identity.ID))

	require.NoError(t, harness.service.LogoutAll(context.Background(), identity.ID))
	assert.Zero(t, harness.ledger.activeCount(identity.ID))
}

// # Password Management

/*
TestService_ChangePassword covers current-password verification and the
revocation of other sessions.
*/
func TestService_ChangePassword(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "rotate@campora.io", "old-pass-123")
	kept := harness.login(t, "rotate@campora.io", "old-pass-123")
	other := harness.login(t, "rotate@campora.io", "old-pass-123")

	// Wrong current password is rejected.
	err := harness.service.ChangePassword(context.Background(), identity.ID, "bad-guess", "new-pass-456", kept.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Successful change keeps the presenting session, burns the rest.
	err = harness.service.ChangePassword(context.Background(), identity.ID, "old-pass-123", "new-pass-456", kept.RefreshToken)
	require.NoError(t, err)

	assert.True(t, harness.ledger.get(kept.RefreshToken).IsActive())
	assert.True(t, harness.ledger.get(other.RefreshToken).IsRevoked)

	// The new password is live.
	harness.login(t, "rotate@campora.io", "new-pass-456")
	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "rotate@campora.io",
		Password: "old-pass-123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

/*
TestService_PasswordResetFlow walks forgot-password end to end: token issue,
redemption, session cleanup, and single use.
*/
func TestService_PasswordResetFlow(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "forgot@campora.io", "old-pass-123")
	harness.login(t, "forgot@campora.io", "old-pass-123")

	token, err := harness.service.RequestPasswordReset(context.Background(), "forgot@campora.io")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, harness.service.ResetPassword(context.Background(), token, "new-pass-456"))

	// All sessions are revoked and the new password is live.
	assert.Zero(t, harness.ledger.activeCount(identity.ID))
	harness.login(t, "forgot@campora.io", "new-pass-456")

	// The token is single use.
	err = harness.service.ResetPassword(context.Background(), token, "sneaky-pass")
	assert.Error(t, err)
}

/*
TestService_RequestPasswordReset_UnknownEmail must stay silent to prevent
account enumeration.
*/
func TestService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	harness := newTestHarness(t)

	token, err := harness.service.RequestPasswordReset(context.Background(), "ghost@campora.io")
	assert.NoError(t, err)
	assert.Empty(t, token)
	assert.Zero(t, harness.resets.len())
}

// # Account Lifecycle

/*
TestService_Deactivate disables the account and burns its sessions; Activate
restores login access.
*/
func TestService_Deactivate(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "pause@campora.io", "correct-pass")
	harness.login(t, "pause@campora.io", "correct-pass")

	require.NoError(t, harness.service.Deactivate(context.Background(), identity.ID))
	assert.Zero(t, harness.ledger.activeCount(identity.ID))

	_, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "pause@campora.io",
		Password: "correct-pass",
	})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)

	require.NoError(t, harness.service.Activate(context.Background(), identity.ID))
	harness.login(t, "pause@campora.io", "correct-pass")
}

/*
TestService_VerifyEmail confirms the address and consumes the token.
*/
func TestService_VerifyEmail(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "confirm@campora.io", "correct-pass")

	// Register parked exactly one verification token; fish it out.
	var token string
	for candidate := range harness.verifies.tokens {
		token = candidate
	}
	require.NotEmpty(t, token)

	require.NoError(t, harness.service.VerifyEmail(context.Background(), token))

	refreshed, err := harness.service.GetIdentity(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.EmailVerified)
	assert.Zero(t, harness.verifies.len())

	// The token is gone.
	assert.Error(t, harness.service.VerifyEmail(context.Background(), token))
}

// # Maintenance

/*
TestService_SweepExpiredTokens removes only entries past their lifetime.
*/
func TestService_SweepExpiredTokens(t *testing.T) {
	harness := newTestHarness(t)
	identity := harness.register(t, "sweep@campora.io", "correct-pass")
	session := harness.login(t, "sweep@campora.io", "correct-pass")

	stale := &auth.RefreshToken{
		ID:         "stale-id",
		IdentityID: identity.ID,
		Token:      "stale-token",
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, harness.ledger.Create(context.Background(), stale))

	removed, err := harness.service.SweepExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	assert.Nil(t, harness.ledger.get("stale-token"))
	assert.NotNil(t, harness.ledger.get(session.RefreshToken))
}

// Compile-time checks that the fakes honor the repository contracts.
var (
	_ auth.IdentityRepository          = (*fakeIdentityRepo)(nil)
	_ auth.RefreshTokenRepository      = (*fakeLedger)(nil)
	_ auth.ResetTokenRepository        = (*fakeVolatileStore)(nil)
	_ auth.VerificationTokenRepository = (*fakeVolatileStore)(nil)
	_ auth.RoleDirectory               = (*fakeRoleDirectory)(nil)
	_ auth.ProfileRegistrar            = (*fakeRegistrar)(nil)
)

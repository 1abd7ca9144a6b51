package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/domain"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/pkg/hash"
	"github.com/daybook-app/daybook/pkg/jwt"
	"github.com/daybook-app/daybook/pkg/totp"
)

// In-memory repository fakes. Each mirrors the contract of its postgres
// counterpart, including the conflict and not-found error shapes, so the
// services under test see the same behavior they would in production.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return &domain.ConflictError{Message: "email already registered"}
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user"}
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user"}
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return &domain.NotFoundError{Resource: "user"}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return &domain.NotFoundError{Resource: "user"}
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) ResetFailedLogins(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.FailedLogins = 0
		user.LockedUntil = nil
	}
	return nil
}

func (r *fakeUserRepo) IncrementFailedLogins(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, &domain.NotFoundError{Resource: "user"}
	}
	user.FailedLogins++
	return user.FailedLogins, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.RefreshTokenHash] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "session"}
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, session := range r.sessions {
		if session.UserID == userID {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[tokenHash]; ok {
		session.Active = false
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Active = false
		}
	}
	return nil
}

func (r *fakeSessionRepo) PruneExpired(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for hash, session := range r.sessions {
		if session.UserID == userID && !session.Usable(now) {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *fakeSessionRepo) activeCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.Active {
			count++
		}
	}
	return count
}

type fakeBackupCodeRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*domain.BackupCode
}

func newFakeBackupCodeRepo() *fakeBackupCodeRepo {
	return &fakeBackupCodeRepo{codes: make(map[uuid.UUID]*domain.BackupCode)}
}

func (r *fakeBackupCodeRepo) Replace(_ context.Context, userID uuid.UUID, codes []*domain.BackupCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, code := range r.codes {
		if code.UserID == userID {
			delete(r.codes, id)
		}
	}
	for _, code := range codes {
		copied := *code
		r.codes[code.ID] = &copied
	}
	return nil
}

func (r *fakeBackupCodeRepo) GetUnused(_ context.Context, userID uuid.UUID) ([]*domain.BackupCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BackupCode
	for _, code := range r.codes {
		if code.UserID == userID && code.UsedAt == nil {
			copied := *code
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBackupCodeRepo) MarkUsed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[id]
	if !ok || code.UsedAt != nil {
		return &domain.NotFoundError{Resource: "backup code"}
	}
	now := time.Now()
	code.UsedAt = &now
	return nil
}

func (r *fakeBackupCodeRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, code := range r.codes {
		if code.UserID == userID {
			delete(r.codes, id)
		}
	}
	return nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*domain.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

// Create mimics the unique (user_id, day_key) constraint atomically
// under the repo mutex, the way the database index does.
func (r *fakeEntryRepo) Create(_ context.Context, entry *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.UserID == entry.UserID && existing.DayKey == entry.DayKey {
			return &domain.ConflictError{Message: "already written today"}
		}
	}
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeEntryRepo) GetByID(_ context.Context, userID, entryID uuid.UUID) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.ID == entryID && entry.UserID == userID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "entry"}
}

func (r *fakeEntryRepo) List(_ context.Context, userID uuid.UUID, filter repository.EntryFilter) ([]*domain.Entry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Entry
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		if filter.Year > 0 && filter.Month > 0 {
			prefix := time.Date(filter.Year, time.Month(filter.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
			if !strings.HasPrefix(entry.DayKey, prefix) {
				continue
			}
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(entry.Content), strings.ToLower(filter.Search)) {
			continue
		}
		copied := *entry
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeEntryRepo) ExistsForDay(_ context.Context, userID uuid.UUID, dayKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.DayKey == dayKey {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEntryRepo) DayKeysSince(_ context.Context, userID uuid.UUID, fromDayKey string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.DayKey >= fromDayKey {
			keys = append(keys, entry.DayKey)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (r *fakeEntryRepo) CalendarDays(_ context.Context, userID uuid.UUID, year, month int) ([]*domain.CalendarDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	var days []*domain.CalendarDay
	for _, entry := range r.entries {
		if entry.UserID == userID && strings.HasPrefix(entry.DayKey, prefix) {
			days = append(days, &domain.CalendarDay{DayKey: entry.DayKey, Mood: entry.Mood})
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayKey < days[j].DayKey })
	return days, nil
}

func (r *fakeEntryRepo) MonthlyStats(_ context.Context, userID uuid.UUID, year int) ([]*domain.MonthlyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buckets := make(map[int]*domain.MonthlyStats)
	totals := make(map[int]int)
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		day, err := time.Parse(domain.DayKeyLayout, entry.DayKey)
		if err != nil || day.Year() != year {
			continue
		}
		month := int(day.Month())
		bucket, ok := buckets[month]
		if !ok {
			bucket = &domain.MonthlyStats{Month: month}
			buckets[month] = bucket
		}
		bucket.Count++
		bucket.TotalWords += entry.WordCount
		bucket.TotalChars += entry.CharCount
		totals[month] += entry.DurationSeconds
	}
	var out []*domain.MonthlyStats
	for month, bucket := range buckets {
		bucket.AvgDuration = float64(totals[month]) / float64(bucket.Count)
		out = append(out, bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *fakeEntryRepo) MoodCounts(_ context.Context, userID uuid.UUID) (map[domain.Mood]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.Mood]int)
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.Mood != nil {
			counts[*entry.Mood]++
		}
	}
	return counts, nil
}

func (r *fakeEntryRepo) CountForUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, entry := range r.entries {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEntryRepo) TotalWords(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, entry := range r.entries {
		if entry.UserID == userID {
			total += entry.WordCount
		}
	}
	return total, nil
}

func (r *fakeEntryRepo) FirstEntryTime(_ context.Context, userID uuid.UUID) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *time.Time
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		created := entry.CreatedAt
		if first == nil || created.Before(*first) {
			first = &created
		}
	}
	return first, nil
}

func (r *fakeEntryRepo) ListAllForUser(_ context.Context, userID uuid.UUID) ([]*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEntryRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, entry := range r.entries {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	r.entries = kept
	return nil
}

// fakeBlacklist records blacklist writes without touching Redis.
type fakeBlacklist struct {
	mu               sync.Mutex
	tokens           []string
	blacklistedUsers []string
}

func (b *fakeBlacklist) AddAccessToken(_ context.Context, token string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = append(b.tokens, token)
	return nil
}

func (b *fakeBlacklist) BlacklistUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blacklistedUsers = append(b.blacklistedUsers, userID)
	return nil
}

// fakeEmailSender records sends; delivery failures are simulated by Err.
type fakeEmailSender struct {
	mu       sync.Mutex
	welcomes []string
	changed  []string
	Err      error
}

func (f *fakeEmailSender) SendWelcomeEmail(_ context.Context, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.welcomes = append(f.welcomes, to)
	return nil
}

func (f *fakeEmailSender) SendPasswordChangedEmail(_ context.Context, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.changed = append(f.changed, to)
	return nil
}

func (f *fakeEmailSender) SendReminderEmail(_ context.Context, to string) error {
	return nil
}

func testRSAKeys(t *testing.T) (privatePEM, publicPEM []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})
	return privatePEM, publicPEM
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			MaxFailedLogins: 5,
			LockDuration:    2 * time.Hour,
			BcryptCost:      4,
			MFAIssuer:       "Daybook",
			MFASkew:         1,
		},
	}
}

// testEnv wires the full service graph over in-memory fakes and a real
// token service signed with a throwaway key.
type testEnv struct {
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	backupRepo  *fakeBackupCodeRepo
	entryRepo   *fakeEntryRepo
	blacklist   *fakeBlacklist
	email       *fakeEmailSender

	hasher       *hash.Hasher
	tokenService *jwt.TokenService
	totp         *totp.Generator

	authService  *AuthService
	userService  *UserService
	mfaService   *MFAService
	entryService *EntryService
	statsService *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	privatePEM, publicPEM := testRSAKeys(t)
	tokenService, err := jwt.NewTokenService(privatePEM, publicPEM, 15*time.Minute, 7*24*time.Hour, "daybook-test")
	require.NoError(t, err)

	cfg := testConfig()
	env := &testEnv{
		userRepo:     newFakeUserRepo(),
		sessionRepo:  newFakeSessionRepo(),
		backupRepo:   newFakeBackupCodeRepo(),
		entryRepo:    newFakeEntryRepo(),
		blacklist:    &fakeBlacklist{},
		email:        &fakeEmailSender{},
		hasher:       hash.NewHasher(cfg.Auth.BcryptCost),
		tokenService: tokenService,
		totp:         totp.NewGenerator(cfg.Auth.MFAIssuer, uint(cfg.Auth.MFASkew)),
	}

	env.mfaService = NewMFAService(env.userRepo, env.backupRepo, env.totp)
	env.authService = NewAuthService(env.userRepo, env.sessionRepo, env.mfaService, tokenService, env.blacklist, env.hasher, cfg)
	env.userService = NewUserService(env.userRepo, env.sessionRepo, env.entryRepo, env.backupRepo, env.mfaService, env.email, env.hasher, cfg)
	env.userService.SetAuthService(env.authService)
	env.entryService = NewEntryService(env.entryRepo)
	env.statsService = NewStatsService(env.entryRepo)

	return env
}

const testPassword = "Str0ng!pass"

// seedUser registers an account directly through the repo so tests
// control every field.
func (e *testEnv) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	passwordHash, err := e.hasher.Hash(testPassword)
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Theme:        domain.ThemeLight,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

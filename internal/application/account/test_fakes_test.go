package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	updatePwdErr  error
	setEnabledErr error

	updatedPwd []struct{ id, hash string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[strings.ToLower(u.Email)] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, exists := f.byEmail[strings.ToLower(u.Email)]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[strings.ToLower(u.Email)] = u
	return u, nil
}

func (f *fakeUserRepo) mutate(userID string, fn func(*domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	f.byID[userID] = u
	f.byEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (f *fakeUserRepo) UpdateDetails(ctx context.Context, userID string, form ProfileUpdate) error {
	return f.mutate(userID, func(u *domain.User) {
		u.FirstName = form.FirstName
		u.LastName = form.LastName
		u.Phone = form.Phone
		u.Address = form.Address
		u.Title = form.Title
		u.Bio = form.Bio
	})
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	err := f.mutate(userID, func(u *domain.User) { u.PasswordHash = newHash })
	if err == nil {
		f.mu.Lock()
		f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
		f.mu.Unlock()
	}
	return err
}

func (f *fakeUserRepo) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	if f.setEnabledErr != nil {
		return f.setEnabledErr
	}
	return f.mutate(userID, func(u *domain.User) { u.Enabled = enabled })
}

func (f *fakeUserRepo) SetAccountSettings(ctx context.Context, userID string, enabled, locked bool) error {
	return f.mutate(userID, func(u *domain.User) {
		u.Enabled = enabled
		u.Locked = locked
	})
}

func (f *fakeUserRepo) SetUsingMFA(ctx context.Context, userID string, using bool) error {
	return f.mutate(userID, func(u *domain.User) { u.UsingMFA = using })
}

func (f *fakeUserRepo) SetRole(ctx context.Context, userID string, role string) error {
	return f.mutate(userID, func(u *domain.User) { u.Role = role })
}

type ledgerKey struct {
	userID string
	kind   domain.VerificationKind
}

type fakeLedger struct {
	mu sync.Mutex

	byKey   map[ledgerKey]domain.VerificationArtifact
	byToken map[domain.VerificationKind]map[string]domain.VerificationArtifact

	replaceErr error
	findErr    error
	deleteErr  error

	replaced []domain.VerificationArtifact
	deleted  []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		byKey:   map[ledgerKey]domain.VerificationArtifact{},
		byToken: map[domain.VerificationKind]map[string]domain.VerificationArtifact{},
	}
}

func (f *fakeLedger) Replace(ctx context.Context, a domain.VerificationArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return f.replaceErr
	}
	key := ledgerKey{userID: a.UserID, kind: a.Kind}
	if old, ok := f.byKey[key]; ok {
		delete(f.byToken[a.Kind], old.Token)
	}
	f.byKey[key] = a
	if f.byToken[a.Kind] == nil {
		f.byToken[a.Kind] = map[string]domain.VerificationArtifact{}
	}
	f.byToken[a.Kind][a.Token] = a
	f.replaced = append(f.replaced, a)
	return nil
}

func (f *fakeLedger) FindByToken(ctx context.Context, kind domain.VerificationKind, token string) (domain.VerificationArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.VerificationArtifact{}, f.findErr
	}
	a, ok := f.byToken[kind][token]
	if !ok {
		switch kind {
		case domain.VerificationPassword:
			return domain.VerificationArtifact{}, domain.ErrResetTokenNotFound()
		case domain.VerificationMFACode:
			return domain.VerificationArtifact{}, domain.ErrCodeNotFound()
		default:
			return domain.VerificationArtifact{}, domain.ErrVerifyTokenNotFound()
		}
	}
	return a, nil
}

func (f *fakeLedger) DeleteByToken(ctx context.Context, kind domain.VerificationKind, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if a, ok := f.byToken[kind][token]; ok {
		delete(f.byToken[kind], token)
		delete(f.byKey, ledgerKey{userID: a.UserID, kind: kind})
	}
	f.deleted = append(f.deleted, token)
	return nil
}

// live returns the single live artifact for (userID, kind), if any.
func (f *fakeLedger) live(userID string, kind domain.VerificationKind) (domain.VerificationArtifact, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byKey[ledgerKey{userID: userID, kind: kind}]
	return a, ok
}

type eventRecord struct {
	email  string
	userID string
	typ    domain.EventType
	device string
	ip     string
}

type fakeEvents struct {
	mu sync.Mutex

	appendErr error
	listErr   error

	records []eventRecord
}

func (f *fakeEvents) AppendByEmail(ctx context.Context, email string, t domain.EventType, device, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, eventRecord{email: email, typ: t, device: device, ip: ip})
	return nil
}

func (f *fakeEvents) AppendByUserID(ctx context.Context, userID string, t domain.EventType, device, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, eventRecord{userID: userID, typ: t, device: device, ip: ip})
	return nil
}

func (f *fakeEvents) ListByUserID(ctx context.Context, userID string) ([]domain.UserEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.UserEvent
	for i, r := range f.records {
		out = append(out, domain.UserEvent{
			ID:     int64(i + 1),
			UserID: userID,
			Type:   r.typ,
			Device: r.device,
		})
	}
	return out, nil
}

func (f *fakeEvents) types() []domain.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EventType, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.typ)
	}
	return out
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	signFn func(userID, role string, ttl time.Duration) (string, error)
}

func (s *fakeSigner) SignAccessToken(userID string, role string, ttl time.Duration) (string, error) {
	if s.signFn != nil {
		return s.signFn(userID, role, ttl)
	}
	return fmt.Sprintf("jwt(%s,%s)", userID, role), nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	return TokenClaims{}, nil
}

type fakeSessions struct {
	mu sync.Mutex

	byToken map[string]string // refreshToken -> userID
	seq     int

	createErr error
	getErr    error

	revoked    []string
	revokedAll []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]string{}}
}

func (s *fakeSessions) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return "", s.createErr
	}
	s.seq++
	tok := fmt.Sprintf("rft%d:%s", s.seq, userID)
	s.byToken[tok] = userID
	return tok, nil
}

func (s *fakeSessions) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return "", s.getErr
	}
	uid, ok := s.byToken[token]
	if !ok {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return uid, nil
}

func (s *fakeSessions) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byToken, token)
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *fakeSessions) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok, uid := range s.byToken {
		if uid == userID {
			delete(s.byToken, tok)
		}
	}
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

type sentEmail struct {
	firstName string
	email     string
	link      string
	kind      domain.VerificationKind
}

type sentSMS struct {
	phone string
	text  string
}

type fakeNotifier struct {
	mu     sync.Mutex
	emails []sentEmail
	sms    []sentSMS
}

func (n *fakeNotifier) SendVerificationEmail(ctx context.Context, firstName, email, link string, kind domain.VerificationKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, sentEmail{firstName: firstName, email: email, link: link, kind: kind})
}

func (n *fakeNotifier) SendSMS(ctx context.Context, phone, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, sentSMS{phone: phone, text: text})
}

/*
Service factory for tests
*/

type testEnv struct {
	svc      *Service
	users    *fakeUserRepo
	ledger   *fakeLedger
	events   *fakeEvents
	hasher   *fakeHasher
	signer   *fakeSigner
	sessions *fakeSessions
	notifier *fakeNotifier
	audits   *[]auditEntry
}

func newSvcForTest(t *testing.T) testEnv {
	t.Helper()

	users := newFakeUserRepo()
	ledger := newFakeLedger()
	events := &fakeEvents{}
	hasher := &fakeHasher{}
	signer := &fakeSigner{}
	sessions := newFakeSessions()
	notifier := &fakeNotifier{}

	audits := &[]auditEntry{}
	cfg := Config{
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           7 * 24 * time.Hour,
		VerifyAccountBaseURL: "https://fe/user/verify/account?token=",
		PasswordResetBaseURL: "https://fe/user/verify/password?token=",
		PasswordResetTTL:     24 * time.Hour,
	}

	svc := NewService(users, ledger, events, hasher, signer, sessions, notifier, cfg).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return testEnv{
		svc:      svc,
		users:    users,
		ledger:   ledger,
		events:   events,
		hasher:   hasher,
		signer:   signer,
		sessions: sessions,
		notifier: notifier,
		audits:   audits,
	}
}

// seedUser stores an enabled, unlocked user with password "pw".
func (e testEnv) seedUser(id, email string) domain.User {
	u := domain.User{
		ID:           id,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "hash:pw",
		Role:         string(domain.RoleUser),
		Enabled:      true,
	}
	e.users.put(u)
	return u
}

/*
Small assertions
*/

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func requireEventTypes(t *testing.T, events *fakeEvents, want ...domain.EventType) {
	t.Helper()
	got := events.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

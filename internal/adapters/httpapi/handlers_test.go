package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	localidentity "github.com/offroadmga/club-manager-api/internal/adapters/identity/local"
	memclock "github.com/offroadmga/club-manager-api/internal/adapters/memory/clock"
	memeventrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/eventrepo"
	memfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/financerepo"
	memgaragerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/garagerepo"
	memkvstore "github.com/offroadmga/club-manager-api/internal/adapters/memory/kvstore"
	memmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/memberrepo"
	"github.com/offroadmga/club-manager-api/internal/app/events"
	"github.com/offroadmga/club-manager-api/internal/app/finance"
	"github.com/offroadmga/club-manager-api/internal/app/garage"
	"github.com/offroadmga/club-manager-api/internal/app/members"
	"github.com/offroadmga/club-manager-api/internal/app/session"
	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/platform/security"
)

type apiFixture struct {
	handler  http.Handler
	provider *localidentity.Provider
	members  *members.Service
	coord    *session.Coordinator
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	clk := memclock.NewManualClock(time.Now().UTC())
	kv := memkvstore.NewStore()
	hasher := security.NewHasher(bcrypt.MinCost)
	tokens := security.NewTokenProvider([]byte("test-secret"), "club-manager-test", time.Hour)
	provider := localidentity.NewProvider(kv, hasher, tokens, clk)

	memberRepo := memmemberrepo.NewRepo()
	memberSvc := members.NewService(memberRepo, memeventrepo.NewRepo(), memfinancerepo.NewRepo(), memgaragerepo.NewRepo(), clk)
	eventSvc := events.NewService(memeventrepo.NewRepo())
	financeSvc := finance.NewService(memfinancerepo.NewRepo(), memberRepo)
	garageSvc := garage.NewService(memgaragerepo.NewRepo(), memberRepo)

	coord := session.NewCoordinator(provider, memberSvc, kv, nil)
	coord.Start(context.Background())
	t.Cleanup(coord.Stop)

	api := NewServer(coord, memberSvc, eventSvc, financeSvc, garageSvc, nil)
	return &apiFixture{
		handler:  NewRouter(api, provider),
		provider: provider,
		members:  memberSvc,
		coord:    coord,
	}
}

// signup registers an account through the API and returns the bearer token.
func (f *apiFixture) signup(t *testing.T, email, password, name string) string {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"email": email, "password": password, "name": name,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.AccessToken == "" {
		t.Fatalf("signup response: %v %s", err, rr.Body.String())
	}
	return resp.AccessToken
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func wantErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status=%d body=%s, want %d", rr.Code, rr.Body.String(), status)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error envelope: %v %s", err, rr.Body.String())
	}
	if er.Error.Code != code {
		t.Fatalf("code=%q, want %q (body=%s)", er.Error.Code, code, rr.Body.String())
	}
	if rid, err := er.Error.RequestId.Get(); err != nil || rid == "" {
		t.Fatalf("missing requestId in envelope: %s", rr.Body.String())
	}
}

func TestHealthz_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestMembers_RequiresBearer(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/members", "", nil)
	wantErrorCode(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	rr = f.do(t, http.MethodGet, "/members", "not-a-real-token", nil)
	wantErrorCode(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestAuth_SignupLoginSessionLogout(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	tok := f.signup(t, "alice@example.com", "secret1", "Alice")

	rr := f.do(t, http.MethodGet, "/members", tok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list members status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Session endpoint reflects the authenticated coordinator state.
	rr = f.do(t, http.MethodGet, "/auth/session", "", nil)
	var snap struct {
		State  string `json:"state"`
		Member *struct {
			Username string `json:"username"`
		} `json:"member"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if snap.State != "authenticated" || snap.Member == nil || snap.Member.Username != "alice" {
		t.Fatalf("session=%s", rr.Body.String())
	}

	rr = f.do(t, http.MethodPost, "/auth/logout", "", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("logout status=%d", rr.Code)
	}
	rr = f.do(t, http.MethodGet, "/auth/session", "", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil || snap.State != "anonymous" {
		t.Fatalf("session after logout=%s err=%v", rr.Body.String(), err)
	}

	// Login again by username.
	rr = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"identifier": "alice", "password": "secret1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuth_LoginBadCredentials(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.signup(t, "alice@example.com", "secret1", "Alice")

	rr := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"identifier": "alice@example.com", "password": "wrong",
	})
	wantErrorCode(t, rr, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func TestEvents_JoinLeaveOwnAttendanceOnly(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	tok := f.signup(t, "alice@example.com", "secret1", "Alice")

	rr := f.do(t, http.MethodPost, "/events", tok, map[string]any{
		"title": "Trail run",
		"date":  "2026-09-12",
		"type":  "soft-trail",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create event status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		Id string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	myID := f.memberIDFor(t, tok)

	rr = f.do(t, http.MethodPut, fmt.Sprintf("/events/%s/attendees/%s", created.Id, myID), tok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("join status=%d body=%s", rr.Code, rr.Body.String())
	}
	var ev struct {
		Attendees []string `json:"attendees"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ev); err != nil || len(ev.Attendees) != 1 {
		t.Fatalf("join body=%s err=%v", rr.Body.String(), err)
	}

	// Managing someone else's attendance is forbidden.
	rr = f.do(t, http.MethodPut, fmt.Sprintf("/events/%s/attendees/%s", created.Id, "someone-else"), tok, nil)
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")

	rr = f.do(t, http.MethodDelete, fmt.Sprintf("/events/%s/attendees/%s", created.Id, myID), tok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("leave status=%d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ev); err != nil || len(ev.Attendees) != 0 {
		t.Fatalf("leave body=%s err=%v", rr.Body.String(), err)
	}
}

func TestEvents_OfficialMeetupAdminOnly(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	tok := f.signup(t, "alice@example.com", "secret1", "Alice")

	rr := f.do(t, http.MethodPost, "/events", tok, map[string]any{
		"title": "AGM",
		"date":  "2026-10-01",
		"type":  "club-official-meetup",
	})
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")
}

func TestMembers_PatchBirthDateTriState(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	tok := f.signup(t, "alice@example.com", "secret1", "Alice")
	myID := f.memberIDFor(t, tok)

	rr := f.do(t, http.MethodPatch, "/members/"+string(myID), tok, map[string]any{
		"birthDate": "1990-04-02",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch status=%d body=%s", rr.Code, rr.Body.String())
	}
	var m struct {
		BirthDate *string `json:"birthDate"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil || m.BirthDate == nil || *m.BirthDate != "1990-04-02" {
		t.Fatalf("birthDate body=%s err=%v", rr.Body.String(), err)
	}

	// Explicit null clears the field.
	rr = f.do(t, http.MethodPatch, "/members/"+string(myID), tok, map[string]any{
		"birthDate": nil,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch null status=%d body=%s", rr.Code, rr.Body.String())
	}
	m.BirthDate = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil || m.BirthDate != nil {
		t.Fatalf("birthDate after null body=%s err=%v", rr.Body.String(), err)
	}
}

func TestMembers_PatchOtherMemberForbidden(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	tokA := f.signup(t, "alice@example.com", "secret1", "Alice")
	tokB := f.signup(t, "bob@example.com", "secret2", "Bob")
	bID := f.memberIDFor(t, tokB)

	rr := f.do(t, http.MethodPatch, "/members/"+string(bID), tokA, map[string]any{
		"name": "Hacked",
	})
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")
}

func TestContributions_AdminOnly(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	tok := f.signup(t, "alice@example.com", "secret1", "Alice")

	rr := f.do(t, http.MethodGet, "/contributions", tok, nil)
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")

	// The member's own slice is readable.
	myID := f.memberIDFor(t, tok)
	rr = f.do(t, http.MethodGet, "/contributions?memberId="+string(myID), tok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("own contributions status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCars_OwnerManagesOwnGarage(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	aliceTok := f.signup(t, "alice@example.com", "secret1", "Alice")
	bobTok := f.signup(t, "bob@example.com", "secret2", "Bob")
	aliceID := f.memberIDFor(t, aliceTok)

	// Omitted owner defaults to the caller's garage.
	rr := f.do(t, http.MethodPost, "/cars", aliceTok, map[string]any{
		"make": "Ford", "model": "Mustang", "year": 1969,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add car status=%d body=%s", rr.Code, rr.Body.String())
	}
	var car struct {
		Id       string `json:"id"`
		MemberId string `json:"memberId"`
		Year     int    `json:"year"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &car); err != nil || car.Id == "" {
		t.Fatalf("car response: %v %s", err, rr.Body.String())
	}
	if car.MemberId != string(aliceID) {
		t.Fatalf("owner=%q, want %q", car.MemberId, aliceID)
	}

	// A member cannot put a car into someone else's garage.
	rr = f.do(t, http.MethodPost, "/cars", bobTok, map[string]any{
		"memberId": string(aliceID), "make": "Jeep", "model": "Wrangler",
	})
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")

	// Nor edit or remove a car they do not own.
	rr = f.do(t, http.MethodPatch, "/cars/"+car.Id, bobTok, map[string]any{"description": "not yours"})
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")
	rr = f.do(t, http.MethodDelete, "/cars/"+car.Id, bobTok, nil)
	wantErrorCode(t, rr, http.StatusForbidden, "UNAUTHORIZED")

	// The garage is browsable by any member.
	rr = f.do(t, http.MethodGet, "/cars?memberId="+string(aliceID), bobTok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rr.Code, rr.Body.String())
	}
	var listing struct {
		Cars []struct {
			Id string `json:"id"`
		} `json:"cars"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listing); err != nil || len(listing.Cars) != 1 {
		t.Fatalf("listing: %v %s", err, rr.Body.String())
	}

	// The owner patches and removes it.
	rr = f.do(t, http.MethodPatch, "/cars/"+car.Id, aliceTok, map[string]any{"year": 1970})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch status=%d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &car); err != nil || car.Year != 1970 {
		t.Fatalf("patched car: %v %s", err, rr.Body.String())
	}
	rr = f.do(t, http.MethodDelete, "/cars/"+car.Id, aliceTok, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func (f *apiFixture) memberIDFor(t *testing.T, token string) domain.MemberID {
	t.Helper()
	ident, err := f.provider.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	m, err := f.members.GetByIdentity(context.Background(), ident.Subject)
	if err != nil {
		t.Fatalf("GetByIdentity: %v", err)
	}
	return m.ID
}

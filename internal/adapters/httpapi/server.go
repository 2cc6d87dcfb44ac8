package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/offroadmga/club-manager-api/internal/app/events"
	"github.com/offroadmga/club-manager-api/internal/app/finance"
	"github.com/offroadmga/club-manager-api/internal/app/garage"
	"github.com/offroadmga/club-manager-api/internal/app/members"
	"github.com/offroadmga/club-manager-api/internal/app/session"
	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Server is the HTTP adapter. Handlers resolve the acting member from the
// bearer identity, delegate to the app services and translate results to
// wire DTOs.
type Server struct {
	Sessions *session.Coordinator
	Members  *members.Service
	Events   *events.Service
	Finance  *finance.Service
	Garage   *garage.Service
	Logger   *log.Logger
}

func NewServer(coord *session.Coordinator, membersSvc *members.Service, eventsSvc *events.Service, financeSvc *finance.Service, garageSvc *garage.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Sessions: coord,
		Members:  membersSvc,
		Events:   eventsSvc,
		Finance:  financeSvc,
		Garage:   garageSvc,
		Logger:   logger,
	}
}

// ---- wire types ----

type memberDTO struct {
	Id        string                                `json:"id"`
	Email     openapi_types.Email                   `json:"email"`
	Username  string                                `json:"username"`
	Name      string                                `json:"name"`
	Role      string                                `json:"role"`
	Status    string                                `json:"status"`
	JoinDate  openapi_types.Date                    `json:"joinDate"`
	BirthDate nullable.Nullable[openapi_types.Date] `json:"birthDate,omitempty"`
	Avatar    string                                `json:"avatar,omitempty"`
	Gender    string                                `json:"gender,omitempty"`
}

type eventDTO struct {
	Id          string             `json:"id"`
	Title       string             `json:"title"`
	Date        openapi_types.Date `json:"date"`
	Location    string             `json:"location"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type"`
	Attendees   []string           `json:"attendees"`
}

type contributionDTO struct {
	Id       string             `json:"id"`
	MemberId string             `json:"memberId"`
	Date     openapi_types.Date `json:"date"`
	Amount   float64            `json:"amount"`
}

type expenseDTO struct {
	Id          string             `json:"id"`
	Date        openapi_types.Date `json:"date"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
}

type carDTO struct {
	Id          string `json:"id"`
	MemberId    string `json:"memberId"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoUrl    string `json:"photoUrl,omitempty"`
}

type identityDTO struct {
	Subject string              `json:"subject"`
	Email   openapi_types.Email `json:"email"`
}

type sessionDTO struct {
	State    string       `json:"state"`
	Identity *identityDTO `json:"identity,omitempty"`
	Member   *memberDTO   `json:"member,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type signupRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Username string              `json:"username,omitempty"`
	Name     string              `json:"name,omitempty"`
}

type authResponse struct {
	AccessToken string     `json:"accessToken"`
	Session     sessionDTO `json:"session"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type createUserRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
	Username string              `json:"username,omitempty"`
	Name     string              `json:"name"`
	Role     string              `json:"role,omitempty"`
	Status   string              `json:"status,omitempty"`
	Gender   string              `json:"gender,omitempty"`
	Avatar   string              `json:"avatar,omitempty"`
}

type createMemberRequest struct {
	Email     openapi_types.Email                   `json:"email"`
	Username  string                                `json:"username,omitempty"`
	Name      string                                `json:"name"`
	Role      string                                `json:"role,omitempty"`
	Status    string                                `json:"status,omitempty"`
	BirthDate nullable.Nullable[openapi_types.Date] `json:"birthDate,omitempty"`
	Gender    string                                `json:"gender,omitempty"`
	Avatar    string                                `json:"avatar,omitempty"`
}

type updateMemberRequest struct {
	Email     *openapi_types.Email                  `json:"email,omitempty"`
	Username  *string                               `json:"username,omitempty"`
	Name      *string                               `json:"name,omitempty"`
	BirthDate nullable.Nullable[openapi_types.Date] `json:"birthDate,omitempty"`
	Avatar    *string                               `json:"avatar,omitempty"`
	Gender    *string                               `json:"gender,omitempty"`
}

type updateMemberStatusRequest struct {
	Status string `json:"status"`
}

type createEventRequest struct {
	Title       string             `json:"title"`
	Date        openapi_types.Date `json:"date"`
	Location    string             `json:"location"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type"`
}

type updateEventRequest struct {
	Title       *string             `json:"title,omitempty"`
	Date        *openapi_types.Date `json:"date,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Description *string             `json:"description,omitempty"`
	Type        *string             `json:"type,omitempty"`
}

type addContributionRequest struct {
	MemberId string             `json:"memberId"`
	Date     openapi_types.Date `json:"date"`
	Amount   float64            `json:"amount"`
}

type addCarRequest struct {
	MemberId    string `json:"memberId,omitempty"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoUrl    string `json:"photoUrl,omitempty"`
}

type updateCarRequest struct {
	Make        *string `json:"make,omitempty"`
	Model       *string `json:"model,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Description *string `json:"description,omitempty"`
	PhotoUrl    *string `json:"photoUrl,omitempty"`
}

type addExpenseRequest struct {
	Date        openapi_types.Date `json:"date"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
}

// ---- auth handlers ----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	ident, err := s.Sessions.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{
		AccessToken: ident.AccessToken,
		Session:     sessionFromSnapshot(s.Sessions.Current()),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !s.decode(w, r, &req) {
		return
	}
	ident, err := s.Sessions.SignUp(r.Context(), string(req.Email), req.Password, session.SignUpMetadata{
		Username: req.Username,
		Name:     req.Name,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{
		AccessToken: ident.AccessToken,
		Session:     sessionFromSnapshot(s.Sessions.Current()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionFromSnapshot(s.Sessions.Current()))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.Sessions.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	in := session.CreateUserInput{
		Email:    string(req.Email),
		Password: req.Password,
		Username: req.Username,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		Status:   domain.MemberStatus(req.Status),
		Gender:   req.Gender,
		Avatar:   req.Avatar,
	}
	if in.Role == "" {
		in.Role = domain.RoleMember
	}
	if in.Status == "" {
		in.Status = domain.MemberStatusActive
	}
	m, err := s.Sessions.CreateUserAsAdmin(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, memberFromDomain(m))
}

// ---- member handlers ----

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	ms, err := s.Members.ListMembers(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]memberDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberFromDomain(m))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"members": out})
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req createMemberRequest
	if !s.decode(w, r, &req) {
		return
	}
	in := members.CreateMemberInput{
		Email:    string(req.Email),
		Username: req.Username,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		Status:   domain.MemberStatus(req.Status),
		Gender:   req.Gender,
		Avatar:   req.Avatar,
	}
	if req.BirthDate.IsSpecified() && !req.BirthDate.IsNull() {
		if d, err := req.BirthDate.Get(); err == nil {
			t := d.Time
			in.BirthDate = &t
		}
	}
	m, err := s.Members.CreateMember(r.Context(), memberActor(me), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, memberFromDomain(m))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	m, err := s.Members.GetMember(r.Context(), domain.MemberID(chi.URLParam(r, "memberId")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, memberFromDomain(m))
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req updateMemberRequest
	if !s.decode(w, r, &req) {
		return
	}

	var in members.UpdateMemberInput
	if req.Email != nil {
		in.Email = members.Some(string(*req.Email))
	}
	if req.Username != nil {
		in.Username = members.Some(*req.Username)
	}
	if req.Name != nil {
		in.Name = members.Some(*req.Name)
	}
	if req.Avatar != nil {
		in.Avatar = members.Some(*req.Avatar)
	}
	if req.Gender != nil {
		in.Gender = members.Some(*req.Gender)
	}
	if req.BirthDate.IsSpecified() {
		if req.BirthDate.IsNull() {
			in.BirthDate = members.Null[time.Time]()
		} else if d, err := req.BirthDate.Get(); err == nil {
			in.BirthDate = members.Some(d.Time)
		}
	}

	m, err := s.Members.UpdateMember(r.Context(), memberActor(me), domain.MemberID(chi.URLParam(r, "memberId")), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, memberFromDomain(m))
}

func (s *Server) handleUpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req updateMemberStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	m, err := s.Members.UpdateStatus(r.Context(), memberActor(me), domain.MemberID(chi.URLParam(r, "memberId")), domain.MemberStatus(req.Status))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, memberFromDomain(m))
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.Members.DeleteMember(r.Context(), memberActor(me), domain.MemberID(chi.URLParam(r, "memberId"))); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- event handlers ----

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	es, err := s.Events.ListEvents(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]eventDTO, 0, len(es))
	for _, e := range es {
		out = append(out, eventFromDomain(e))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req createEventRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.Events.CreateEvent(r.Context(), eventActor(me), events.CreateEventInput{
		Title:       req.Title,
		Date:        req.Date.Time,
		Location:    req.Location,
		Description: req.Description,
		Type:        domain.EventType(req.Type),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, eventFromDomain(e))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	e, err := s.Events.GetEvent(r.Context(), domain.EventID(chi.URLParam(r, "eventId")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, eventFromDomain(e))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req updateEventRequest
	if !s.decode(w, r, &req) {
		return
	}
	var in events.UpdateEventInput
	if req.Title != nil {
		in.Title = events.Some(*req.Title)
	}
	if req.Date != nil {
		in.Date = events.Some(req.Date.Time)
	}
	if req.Location != nil {
		in.Location = events.Some(*req.Location)
	}
	if req.Description != nil {
		in.Description = events.Some(*req.Description)
	}
	if req.Type != nil {
		in.Type = events.Some(domain.EventType(*req.Type))
	}
	e, err := s.Events.UpdateEvent(r.Context(), eventActor(me), domain.EventID(chi.URLParam(r, "eventId")), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, eventFromDomain(e))
}

func (s *Server) handleJoinEvent(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	if string(me.ID) != chi.URLParam(r, "memberId") {
		writeAPIError(w, r, http.StatusForbidden, "UNAUTHORIZED", "members can only manage their own attendance", nil)
		return
	}
	res, err := s.Events.JoinEvent(r.Context(), eventActor(me), domain.EventID(chi.URLParam(r, "eventId")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, eventFromDomain(res.Event))
}

func (s *Server) handleLeaveEvent(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	if string(me.ID) != chi.URLParam(r, "memberId") {
		writeAPIError(w, r, http.StatusForbidden, "UNAUTHORIZED", "members can only manage their own attendance", nil)
		return
	}
	res, err := s.Events.LeaveEvent(r.Context(), eventActor(me), domain.EventID(chi.URLParam(r, "eventId")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, eventFromDomain(res.Event))
}

// ---- finance handlers ----

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	memberID := domain.MemberID(r.URL.Query().Get("memberId"))
	cs, err := s.Finance.ListContributions(r.Context(), financeActor(me), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]contributionDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, contributionFromDomain(c))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"contributions": out})
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req addContributionRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.Finance.AddContribution(r.Context(), financeActor(me), finance.AddContributionInput{
		MemberID: domain.MemberID(req.MemberId),
		Date:     req.Date.Time,
		Amount:   req.Amount,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, contributionFromDomain(c))
}

func (s *Server) handleRemoveContribution(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.Finance.RemoveContribution(r.Context(), financeActor(me), domain.ContributionID(chi.URLParam(r, "contributionId"))); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	xs, err := s.Finance.ListExpenses(r.Context(), financeActor(me))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]expenseDTO, 0, len(xs))
	for _, x := range xs {
		out = append(out, expenseFromDomain(x))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req addExpenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	x, err := s.Finance.AddExpense(r.Context(), financeActor(me), finance.AddExpenseInput{
		Date:        req.Date.Time,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, expenseFromDomain(x))
}

// ---- garage handlers ----

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r); !ok {
		return
	}
	memberID := domain.MemberID(r.URL.Query().Get("memberId"))
	cs, err := s.Garage.ListCars(r.Context(), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]carDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, carFromDomain(c))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"cars": out})
}

func (s *Server) handleAddCar(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req addCarRequest
	if !s.decode(w, r, &req) {
		return
	}
	// Omitted owner means the actor's own garage.
	owner := domain.MemberID(req.MemberId)
	if owner == "" {
		owner = me.ID
	}
	c, err := s.Garage.AddCar(r.Context(), garageActor(me), garage.AddCarInput{
		MemberID:    owner,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Description: req.Description,
		PhotoURL:    req.PhotoUrl,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, carFromDomain(c))
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req updateCarRequest
	if !s.decode(w, r, &req) {
		return
	}

	var in garage.UpdateCarInput
	if req.Make != nil {
		in.Make = garage.Some(*req.Make)
	}
	if req.Model != nil {
		in.Model = garage.Some(*req.Model)
	}
	if req.Year != nil {
		in.Year = garage.Some(*req.Year)
	}
	if req.Description != nil {
		in.Description = garage.Some(*req.Description)
	}
	if req.PhotoUrl != nil {
		in.PhotoURL = garage.Some(*req.PhotoUrl)
	}

	c, err := s.Garage.UpdateCar(r.Context(), garageActor(me), domain.CarID(chi.URLParam(r, "carId")), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, carFromDomain(c))
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	me, ok := s.actor(w, r)
	if !ok {
		return
	}
	if err := s.Garage.DeleteCar(r.Context(), garageActor(me), domain.CarID(chi.URLParam(r, "carId"))); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- helpers ----

// actor resolves the acting member from the bearer identity. A token whose
// subject has no member record cannot act.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (domain.Member, bool) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
		return domain.Member{}, false
	}
	m, err := s.Members.GetByIdentity(r.Context(), ident.Subject)
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "no member profile for the authenticated subject", nil)
		return domain.Member{}, false
	}
	return m, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.Printf("httpapi: encoding response failed: %v", err)
	}
}

func memberActor(m domain.Member) members.Actor {
	return members.Actor{MemberID: m.ID, Role: m.Role}
}

func eventActor(m domain.Member) events.Actor {
	return events.Actor{MemberID: m.ID, Role: m.Role, Status: m.Status}
}

func financeActor(m domain.Member) finance.Actor {
	return finance.Actor{MemberID: m.ID, Role: m.Role}
}

func garageActor(m domain.Member) garage.Actor {
	return garage.Actor{MemberID: m.ID, Role: m.Role}
}

func memberFromDomain(m domain.Member) memberDTO {
	dto := memberDTO{
		Id:       string(m.ID),
		Email:    openapi_types.Email(m.Email),
		Username: m.Username,
		Name:     m.Name,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinDate: openapi_types.Date{Time: m.JoinDate},
		Avatar:   m.Avatar,
		Gender:   m.Gender,
	}
	if m.BirthDate != nil {
		dto.BirthDate = nullable.NewNullableWithValue(openapi_types.Date{Time: *m.BirthDate})
	}
	return dto
}

func eventFromDomain(e domain.Event) eventDTO {
	attendees := make([]string, 0, len(e.Attendees))
	for _, id := range e.Attendees {
		attendees = append(attendees, string(id))
	}
	return eventDTO{
		Id:          string(e.ID),
		Title:       e.Title,
		Date:        openapi_types.Date{Time: e.Date},
		Location:    e.Location,
		Description: e.Description,
		Type:        string(e.Type),
		Attendees:   attendees,
	}
}

func contributionFromDomain(c domain.Contribution) contributionDTO {
	return contributionDTO{
		Id:       string(c.ID),
		MemberId: string(c.MemberID),
		Date:     openapi_types.Date{Time: c.Date},
		Amount:   c.Amount,
	}
}

func carFromDomain(c domain.Car) carDTO {
	return carDTO{
		Id:          string(c.ID),
		MemberId:    string(c.MemberID),
		Make:        c.Make,
		Model:       c.Model,
		Year:        c.Year,
		Description: c.Description,
		PhotoUrl:    c.PhotoURL,
	}
}

func expenseFromDomain(x domain.Expense) expenseDTO {
	return expenseDTO{
		Id:          string(x.ID),
		Date:        openapi_types.Date{Time: x.Date},
		Description: x.Description,
		Amount:      x.Amount,
	}
}

func sessionFromSnapshot(snap session.Snapshot) sessionDTO {
	dto := sessionDTO{State: snap.State.String()}
	if snap.State == session.Authenticated {
		dto.Identity = &identityDTO{
			Subject: string(snap.Session.Identity.Subject),
			Email:   openapi_types.Email(snap.Session.Identity.Email),
		}
		if snap.Session.Profile != nil {
			m := memberFromDomain(*snap.Session.Profile)
			dto.Member = &m
		}
	}
	return dto
}

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/dialogue"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/worker"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Stubs embed the interface so only the methods a test needs are written;
// anything else panics and surfaces as a 500 through Recovery.

type stubAuth struct {
	AuthService
	registerPatient func(*user.RegisterPatientCommand) (*user.User, error)
	login           func(username, password string, role domain.Role) (*domain.Token, error)
}

func (s *stubAuth) RegisterPatient(_ context.Context, cmd *user.RegisterPatientCommand) (*user.User, error) {
	return s.registerPatient(cmd)
}

func (s *stubAuth) Login(_ context.Context, username, password string, role domain.Role) (*domain.Token, error) {
	return s.login(username, password, role)
}

type stubUsers struct {
	UserService
	patientByID func(uuid.UUID) (*user.User, error)
	bySpec      func(string) ([]*user.User, error)
}

func (s *stubUsers) PatientByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.patientByID(id)
}

func (s *stubUsers) DoctorsBySpecialization(_ context.Context, spec string) ([]*user.User, error) {
	return s.bySpec(spec)
}

type stubScheduling struct {
	SchedulingService
	created *timeslot.CreateTimeSlotCommand
}

func (s *stubScheduling) CreateSlot(_ context.Context, cmd *timeslot.CreateTimeSlotCommand) (*timeslot.TimeSlot, error) {
	s.created = cmd
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return &timeslot.TimeSlot{ID: uuid.New(), DoctorID: cmd.DoctorID, StartTime: cmd.StartTime, EndTime: cmd.EndTime, Status: timeslot.StatusAvailable}, nil
}

type stubPrescriptions struct {
	PrescriptionService
	get func(caller *domain.Claims, id uuid.UUID) (*prescription.Prescription, error)
}

func (s *stubPrescriptions) Get(_ context.Context, caller *domain.Claims, id uuid.UUID) (*prescription.Prescription, error) {
	return s.get(caller, id)
}

type stubReminders struct {
	ReminderService
	activate func(patientID, id uuid.UUID) ([]*reminder.Reminder, error)
}

func (s *stubReminders) ActivateForPatient(_ context.Context, patientID, id uuid.UUID) ([]*reminder.Reminder, error) {
	return s.activate(patientID, id)
}

type stubChat struct {
	turn    func(patientID uuid.UUID, msg string) (dialogue.Reply, error)
	forgot  []uuid.UUID
	lastMsg string
}

func (s *stubChat) Turn(_ context.Context, patientID uuid.UUID, msg string) (dialogue.Reply, error) {
	s.lastMsg = msg
	return s.turn(patientID, msg)
}

func (s *stubChat) Forget(_ context.Context, patientID uuid.UUID) error {
	s.forgot = append(s.forgot, patientID)
	return nil
}

type testEnv struct {
	router *gin.Engine
	tokens *auth.JWTManager
	auth   *stubAuth
	users  *stubUsers
	sched  *stubScheduling
	rx     *stubPrescriptions
	rem    *stubReminders
	chat   *stubChat
	inbox  *worker.ReminderQueue
	health map[string]HealthCheck
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Environment: "test"},
		JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", AccessTokenTTL: time.Hour, Issuer: "medibook-test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://app.example"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         time.Hour,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000},
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector("test", reg)

	env := &testEnv{
		tokens: auth.NewJWTManager(cfg.JWT),
		auth:   &stubAuth{},
		users:  &stubUsers{},
		sched:  &stubScheduling{},
		rx:     &stubPrescriptions{},
		rem:    &stubReminders{},
		chat:   &stubChat{},
		inbox:  worker.NewReminderQueue(10, m, zap.NewNop()),
		health: map[string]HealthCheck{"database": func(context.Context) error { return nil }},
	}
	env.router = NewRouter(RouterDeps{
		Config:        cfg,
		Logger:        zap.NewNop(),
		Metrics:       m,
		Gatherer:      reg,
		Health:        env.health,
		Tokens:        env.tokens,
		Auth:          env.auth,
		Users:         env.users,
		Scheduling:    env.sched,
		Prescriptions: env.rx,
		Reminders:     env.rem,
		Chat:          env.chat,
		Inbox:         env.inbox,
	})
	return env
}

func (e *testEnv) token(t *testing.T, id uuid.UUID, role domain.Role) string {
	t.Helper()
	tok, err := e.tokens.GenerateAccessToken(&domain.Claims{UserID: id, Username: "u", Role: role})
	require.NoError(t, err)
	return tok.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestChat_ReturnsReplyAndDoctors(t *testing.T) {
	env := newTestEnv(t)
	patient := uuid.New()
	env.chat.turn = func(id uuid.UUID, msg string) (dialogue.Reply, error) {
		assert.Equal(t, patient, id)
		return dialogue.Reply{
			Response: "Based on your symptoms, I recommend consulting a Cardiologist.",
			Doctors:  []dialogue.DoctorInfo{{FirstName: "John", LastName: "Smith", Specialization: "Cardiologist"}},
		}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, patient, domain.RolePatient),
		map[string]string{"user_message": "I have chest pain"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"response": "Based on your symptoms, I recommend consulting a Cardiologist.",
		"doctors": [{"first_name":"John","last_name":"Smith","specialization":"Cardiologist"}]
	}`, rec.Body.String())
	assert.Equal(t, "I have chest pain", env.chat.lastMsg)
}

func TestChat_OmitsEmptyDoctors(t *testing.T) {
	env := newTestEnv(t)
	env.chat.turn = func(uuid.UUID, string) (dialogue.Reply, error) {
		return dialogue.Reply{Response: "hi"}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, uuid.New(), domain.RolePatient),
		map[string]string{"user_message": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"hi"}`, rec.Body.String())
}

func TestChat_AccessRules(t *testing.T) {
	env := newTestEnv(t)
	env.chat.turn = func(uuid.UUID, string) (dialogue.Reply, error) { return dialogue.Reply{}, nil }
	body := map[string]string{"user_message": "hello"}

	rec := env.do(t, http.MethodPost, "/api/v1/chat", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/chat", "not-a-jwt", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, uuid.New(), domain.RoleDoctor), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, uuid.New(), domain.RolePatient), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_SessionFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	env.chat.turn = func(uuid.UUID, string) (dialogue.Reply, error) {
		return dialogue.Reply{}, errors.New("saving chat session: redis down")
	}

	rec := env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, uuid.New(), domain.RolePatient),
		map[string]string{"user_message": "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestChat_ConcurrentTurnIs409(t *testing.T) {
	env := newTestEnv(t)
	env.chat.turn = func(uuid.UUID, string) (dialogue.Reply, error) {
		return dialogue.Reply{}, fmt.Errorf("locking chat session: %w", dialogue.ErrSessionBusy)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/chat", env.token(t, uuid.New(), domain.RolePatient),
		map[string]string{"user_message": "hello"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_BUSY")
}

func TestChat_ResetAndReminderInbox(t *testing.T) {
	env := newTestEnv(t)
	patient := uuid.New()
	tok := env.token(t, patient, domain.RolePatient)

	rec := env.do(t, http.MethodDelete, "/api/v1/chat", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{patient}, env.chat.forgot)

	env.inbox.Push(patient, worker.Notification{MedicationName: "Amoxicillin", Message: "time to take Amoxicillin"})

	rec = env.do(t, http.MethodGet, "/api/v1/chat/reminders", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse[[]worker.Notification]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Amoxicillin", resp.Data[0].MedicationName)

	rec = env.do(t, http.MethodGet, "/api/v1/chat/reminders", tok, nil)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestRegisterPatient(t *testing.T) {
	env := newTestEnv(t)
	env.auth.registerPatient = func(cmd *user.RegisterPatientCommand) (*user.User, error) {
		if cmd.Username == "taken" {
			return nil, user.ErrUsernameTaken
		}
		if cmd.Password == "short" {
			return nil, &service.ValidationError{Fields: []string{"password must be at least 8 characters"}}
		}
		dob := cmd.DateOfBirth
		return &user.User{ID: uuid.New(), Username: cmd.Username, Role: domain.RolePatient, PasswordHash: "secret-hash", DateOfBirth: &dob, IsActive: true}, nil
	}
	body := map[string]string{
		"username": "jane", "password": "Sup3r-secret", "first_name": "Jane", "last_name": "Doe",
		"phone_number": "5551234567", "date_of_birth": "1990-04-01",
	}

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register/patient", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date_of_birth":"1990-04-01"`)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	body["date_of_birth"] = "01/04/1990"
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register/patient", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body["date_of_birth"] = "1990-04-01"
	body["username"] = "taken"
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register/patient", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	body["username"] = "jane"
	body["password"] = "short"
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register/patient", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at least 8 characters")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.auth.login = func(username, password string, role domain.Role) (*domain.Token, error) {
		if password != "right" {
			return nil, service.ErrInvalidCredentials
		}
		return &domain.Token{AccessToken: "tok", TokenType: "Bearer"}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "a", "password": "wrong", "role": "patient"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "a", "password": "right", "role": "patient"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"tok"`)
}

func TestGetPatient_PatientsSeeOnlyThemselves(t *testing.T) {
	env := newTestEnv(t)
	self := uuid.New()
	env.users.patientByID = func(id uuid.UUID) (*user.User, error) {
		return &user.User{ID: id, Role: domain.RolePatient}, nil
	}

	rec := env.do(t, http.MethodGet, "/api/v1/patients/"+uuid.NewString(), env.token(t, self, domain.RolePatient), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/patients/"+self.String(), env.token(t, self, domain.RolePatient), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/patients/not-a-uuid", env.token(t, self, domain.RoleDoctor), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoctorsBySpecialization(t *testing.T) {
	env := newTestEnv(t)
	env.users.bySpec = func(spec string) ([]*user.User, error) {
		assert.Equal(t, "Cardiologist", spec)
		return []*user.User{{ID: uuid.New(), FirstName: "John", LastName: "Smith", Specialization: spec}}, nil
	}

	rec := env.do(t, http.MethodGet, "/api/v1/doctors?specialization=Cardiologist", env.token(t, uuid.New(), domain.RolePatient), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_name":"John"`)
}

func TestCreateTimeSlot_UsesCallerAsDoctor(t *testing.T) {
	env := newTestEnv(t)
	doctor := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	rec := env.do(t, http.MethodPost, "/api/v1/timeslots", env.token(t, doctor, domain.RoleDoctor),
		map[string]time.Time{"start_time": start, "end_time": start.Add(30 * time.Minute)})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, doctor, env.sched.created.DoctorID)
	assert.Contains(t, rec.Body.String(), `"label":"09:00 AM - 09:30 AM"`)

	rec = env.do(t, http.MethodPost, "/api/v1/timeslots", env.token(t, doctor, domain.RoleDoctor),
		map[string]time.Time{"start_time": start, "end_time": start.Add(-time.Hour)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/timeslots", env.token(t, doctor, domain.RolePatient),
		map[string]time.Time{"start_time": start, "end_time": start.Add(30 * time.Minute)})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPrescriptionGet_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	missing, foreign := uuid.New(), uuid.New()
	env.rx.get = func(_ *domain.Claims, id uuid.UUID) (*prescription.Prescription, error) {
		switch id {
		case missing:
			return nil, prescription.ErrPrescriptionNotFound
		case foreign:
			return nil, service.ErrForbidden
		}
		return &prescription.Prescription{ID: id, MedicationName: "Amoxicillin", Frequency: 2, Duration: 7, IsActive: true}, nil
	}
	tok := env.token(t, uuid.New(), domain.RolePatient)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/prescriptions/"+missing.String(), tok, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/prescriptions/"+foreign.String(), tok, nil).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/prescriptions/"+uuid.NewString(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"medication_name":"Amoxicillin"`)
}

func TestActivateReminders(t *testing.T) {
	env := newTestEnv(t)
	patient, rxID := uuid.New(), uuid.New()
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	env.rem.activate = func(p, id uuid.UUID) ([]*reminder.Reminder, error) {
		assert.Equal(t, patient, p)
		if id != rxID {
			return nil, reminder.ErrNoInactiveReminders
		}
		return []*reminder.Reminder{{ID: uuid.New(), PrescriptionID: id, ReminderTime: "18:00", ReminderDate: &date, Status: reminder.StatusActive}}, nil
	}
	tok := env.token(t, patient, domain.RolePatient)

	rec := env.do(t, http.MethodPost, "/api/v1/prescriptions/"+rxID.String()+"/reminders/activate", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reminder_time":"06:00 PM"`)
	assert.Contains(t, rec.Body.String(), `"reminder_date":"2026-03-03"`)

	rec = env.do(t, http.MethodPost, "/api/v1/prescriptions/"+uuid.NewString()+"/reminders/activate", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, rec.Body.String())

	env.health["database"] = func(context.Context) error { return errors.New("connection refused") }
	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/healthz", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestUnimplementedCollaboratorIsRecovered(t *testing.T) {
	env := newTestEnv(t)

	// stubUsers does not implement ListDoctors.
	rec := env.do(t, http.MethodGet, "/api/v1/doctors", env.token(t, uuid.New(), domain.RoleAdmin), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

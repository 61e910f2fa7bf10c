package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Health   map[string]HealthCheck

	Tokens        TokenValidator
	Auth          AuthService
	Users         UserService
	Scheduling    SchedulingService
	Appointments  AppointmentService
	Prescriptions PrescriptionService
	Reminders     ReminderService
	Chat          ChatService
	Inbox         ReminderInbox
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		Recovery(d.Logger),
		RequestID(),
		RequestLogger(d.Logger),
		Metrics(d.Metrics),
		CORS(d.Config.CORS),
	)

	r.GET("/healthz", healthz(d.Health))
	r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))

	authH := NewAuthHandler(d.Auth, d.Logger)
	dirH := NewDirectoryHandler(d.Users, d.Scheduling)
	clinicH := NewClinicHandler(d.Scheduling, d.Appointments)
	rxH := NewPrescriptionHandler(d.Prescriptions, d.Reminders)
	chatH := NewChatHandler(d.Chat, d.Inbox, d.Logger)
	adminH := NewAdminHandler(d.Users, d.Appointments)

	api := r.Group("/api/v1", RateLimit(d.Config.RateLimit))

	auth := api.Group("/auth")
	{
		auth.POST("/register/patient", authH.RegisterPatient)
		auth.POST("/register/doctor", authH.RegisterDoctor)
		auth.POST("/register/admin", authH.RegisterAdmin)
		auth.POST("/login", authH.Login)
	}

	secured := api.Group("", RequireAuth(d.Tokens))

	patient := RequireRole(domain.RolePatient)
	doctor := RequireRole(domain.RoleDoctor)
	admin := RequireRole(domain.RoleAdmin)

	secured.GET("/doctors", dirH.ListDoctors)
	secured.GET("/doctors/:id", dirH.GetDoctor)
	secured.GET("/doctors/:id/timeslots", dirH.DoctorSlots)
	secured.GET("/patients/:id", dirH.GetPatient)

	secured.POST("/timeslots", doctor, clinicH.CreateTimeSlot)
	secured.POST("/appointments", patient, clinicH.BookAppointment)
	secured.GET("/doctor/appointments", doctor, clinicH.DoctorAppointments)
	secured.PATCH("/appointments/:id/inactive", doctor, clinicH.MarkAppointmentInactive)

	secured.POST("/prescriptions", doctor, rxH.Create)
	secured.GET("/prescriptions/:id", rxH.Get)
	secured.PUT("/prescriptions/:id", doctor, rxH.Update)
	secured.DELETE("/prescriptions/:id", doctor, rxH.Delete)
	secured.POST("/prescriptions/:id/reminders/activate", patient, rxH.ActivateReminders)
	secured.GET("/reminders", patient, rxH.MyReminders)

	chat := secured.Group("/chat", patient)
	{
		chat.POST("", chatH.Message)
		chat.DELETE("", chatH.Reset)
		chat.GET("/reminders", chatH.Reminders)
	}

	adm := secured.Group("/admin", admin)
	{
		adm.GET("/appointments", adminH.Appointments)
		adm.GET("/doctors", adminH.Doctors)
		adm.GET("/patients", adminH.Patients)
		adm.DELETE("/doctors/:id", adminH.DeleteDoctor)
		adm.DELETE("/patients/:id", adminH.DeletePatient)
	}

	return r
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}

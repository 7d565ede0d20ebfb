package router

import (
	"database/sql"
	"net/http"
	"time"

	"vet-clinic/docs"
	mem "vet-clinic/internal/adapters/storage/memory"
	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/domain/accesscode"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/records"
	"vet-clinic/internal/domain/users"
	"vet-clinic/internal/domain/vaccines"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/metrics"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/mail"
	"vet-clinic/internal/ports/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
	// Opcional: si viene (Redis), se usa para sesiones. Si no, in-memory.
	Sessions session.Store

	Mailer           mail.Sender
	ClinicOwnerEmail string

	SessionTTL          time.Duration // default 30m
	SessionCookieSecure bool
	RequestTimeout      time.Duration // default 15s

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log, m))
	r.Use(middleware.Recover)
	r.Use(chimw.Timeout(opts.RequestTimeout))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))

	var (
		petRepo     pets.Repository
		recordsRepo records.Repository
		vaxRepo     vaccines.Repository
		userRepo    users.Repository
	)

	if opts.DB != nil {
		petRepo = pg.NewPetsRepo(opts.DB)
		recordsRepo = pg.NewRecordsRepo(opts.DB)
		vaxRepo = pg.NewVaccinesRepo(opts.DB)
		userRepo = pg.NewUsersRepo(opts.DB)
	} else {
		memPets := mem.NewPetRepo()
		petRepo = memPets
		recordsRepo = mem.NewRecordsRepo(memPets)
		vaxRepo = mem.NewVaccinesRepo(mem.DefaultVaccines)
		userRepo = mem.NewUserRepo()
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = mem.NewSessionStore(opts.SessionTTL)
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	gate := accesscode.NewGate(sessions, opts.Mailer, opts.ClinicOwnerEmail, accesscode.Options{Logger: log, Metrics: m})
	recordsSvc := records.NewService(recordsRepo, petsSvc, gate, records.Options{Logger: log, Metrics: m})
	vaxSvc := vaccines.NewService(vaxRepo, petsSvc, vaccines.Options{Logger: log, Metrics: m})
	usersSvc := users.NewService(userRepo, users.Options{Logger: log})

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, log)
	vaccines.RegisterRoutes(r, vaxSvc, log)
	users.RegisterRoutes(r, usersSvc, log)

	// records y access-code comparten la sesión (cookie vetclinic_sid)
	r.Group(func(sr chi.Router) {
		sr.Use(middleware.Session(sessions, middleware.SessionOptions{
			TTL:    opts.SessionTTL,
			Secure: opts.SessionCookieSecure,
		}))
		records.RegisterRoutes(sr, recordsSvc, log)
		accesscode.RegisterRoutes(sr, gate, log)
	})

	return r
}

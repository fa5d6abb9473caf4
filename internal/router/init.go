package router

import (
	"github.com/mentorcircle/mentorcircle-api/internal/application"
	"github.com/mentorcircle/mentorcircle-api/internal/container"
	pginfra "github.com/mentorcircle/mentorcircle-api/internal/infrastructure/postgres"
	handlers "github.com/mentorcircle/mentorcircle-api/internal/interface/http"
	"github.com/mentorcircle/mentorcircle-api/internal/router/modules"
)

type Deps struct {
	Apps     *pginfra.ApplicationRepository
	Users    *pginfra.UserRepository
	Mentors  *pginfra.MentorProfileRepository
	Students *pginfra.StudentProfileRepository

	Intake *application.IntakeService
	Review *application.ReviewService
	Roles  *application.RoleService
	Auth   *application.AuthService
}

func buildDeps() Deps {
	pool := container.GetPGPool()
	cfg := container.GetConfig()
	logger := container.GetLogger()

	apps := pginfra.NewApplicationRepository(pool)
	users := pginfra.NewUserRepository(pool)
	mentors := pginfra.NewMentorProfileRepository(pool)
	students := pginfra.NewStudentProfileRepository(pool)

	// A typed-nil *RabbitPublisher must not leak into the Notifier interface;
	// services treat a nil interface as "notifications disabled".
	var pub application.Notifier
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	intake := application.NewIntakeService(apps, pub, logger, container.GetGCS(), cfg.GCSBucket, container.GetES(), cfg.ESApplicationsIndex)
	review := application.NewReviewService(apps, users, mentors, pub, logger, container.GetES(), cfg.ESApplicationsIndex)
	roles := application.NewRoleService(users, mentors, students, container.GetRedis(), logger)
	auth := application.NewAuthService(users, container.GetJWT(), container.GetRedis(), logger)

	return Deps{
		Apps:     apps,
		Users:    users,
		Mentors:  mentors,
		Students: students,
		Intake:   intake,
		Review:   review,
		Roles:    roles,
		Auth:     auth,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(deps.Auth, logger, cfg.CookieDomain, cfg.CookieSecure), jwt))
	r.Add(modules.NewIntakeModule(handlers.NewIntakeHandler(deps.Intake, logger), jwt))
	r.Add(modules.NewReviewModule(handlers.NewReviewHandler(deps.Review, logger), jwt))
	r.Add(modules.NewRoleModule(handlers.NewRoleHandler(deps.Roles, logger), jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

package main

import (
	"context"
	"errors"
	"flag"

	"github.com/rs/zerolog/log"

	"hubal/internal/config"
	"hubal/internal/database"
	"hubal/internal/domain/auth"
	"hubal/internal/domain/designer"
	"hubal/internal/domain/roomdesign"
	"hubal/internal/pkg/jwt"
	applog "hubal/internal/pkg/logger"
	"hubal/internal/server"
)

const demoPassword = "password123"

type demoDesigner struct {
	email    string
	name     string
	business string
	city     string
	bio      string
	services []string
	min, max float64
}

var designers = []demoDesigner{
	{
		email: "noura@hubal.local", name: "نورة العتيبي", business: "استوديو نورة", city: "الرياض",
		bio:      "تصميم داخلي سكني بلمسات عصرية دافئة.",
		services: []string{"تصميم داخلي", "غرف معيشة", "إشراف تنفيذ"},
		min:      5000, max: 60000,
	},
	{
		email: "faisal@hubal.local", name: "فيصل الحربي", business: "مساحات", city: "جدة",
		bio:      "مكاتب ومطاعم ومساحات تجارية.",
		services: []string{"تصميم تجاري", "إضاءة"},
		min:      15000, max: 250000,
	},
	{
		email: "sara@hubal.local", name: "سارة القحطاني", business: "بيت الضوء", city: "الدمام",
		bio:      "فلل وشقق بطابع اسكندنافي.",
		services: []string{"فلل", "شقق", "اختيار أثاث"},
		min:      8000, max: 120000,
	},
}

var customers = []struct{ email, name string }{
	{"ahmed@hubal.local", "أحمد السبيعي"},
	{"lama@hubal.local", "لمى الشهري"},
}

func main() {
	dsn := flag.String("dsn", "", "database URL (defaults to DATABASE_URL)")
	flag.Parse()

	cfg := config.MustLoad()
	applog.Setup(cfg.LogLevel, cfg.LogPretty)
	if *dsn == "" {
		*dsn = cfg.DatabaseURL
	}

	db, err := database.Connect(*dsn, database.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := server.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	ctx := log.Logger.WithContext(context.Background())
	authRepo := auth.NewRepository(db)
	designerService := designer.NewService(designer.NewRepository(db), authRepo, nil)
	authService := auth.NewService(authRepo, jwt.New(cfg.JWTSecret, cfg.JWTTTL), designerService)
	designService := roomdesign.NewService(roomdesign.NewRepository(db))

	for _, d := range designers {
		userID, created := ensureUser(ctx, authService, authRepo, d.email, d.name, auth.RoleDesigner)
		if !created {
			continue
		}
		business, bio, minBudget, maxBudget := d.business, d.bio, d.min, d.max
		if _, err := designerService.UpdateMine(ctx, userID, designer.UpdateRequest{
			BusinessName: &business,
			Bio:          &bio,
			City:         d.city,
			MinBudget:    &minBudget,
			MaxBudget:    &maxBudget,
			Services:     d.services,
		}); err != nil {
			log.Fatal().Err(err).Str("email", d.email).Msg("seed designer profile failed")
		}
	}

	for i, c := range customers {
		userID, created := ensureUser(ctx, authService, authRepo, c.email, c.name, auth.RoleCustomer)
		if !created || i > 0 {
			continue
		}
		if _, err := designService.Create(ctx, userID, roomdesign.CreateRequest{
			OriginalImageURL: "https://images.unsplash.com/photo-1586023492125-27b2c045efd7",
			Prompt:           "modern warm living room",
			Publish:          true,
		}); err != nil {
			log.Fatal().Err(err).Msg("seed room design failed")
		}
	}

	log.Info().
		Int("designers", len(designers)).
		Int("customers", len(customers)).
		Str("password", demoPassword).
		Msg("seed completed")
}

// ensureUser registers the account unless the email is already taken.
func ensureUser(ctx context.Context, svc *auth.Service, repo auth.Repository, email, name string, role auth.Role) (int64, bool) {
	res, err := svc.Register(ctx, auth.RegisterRequest{Email: email, Password: demoPassword, Name: name, Role: role})
	if errors.Is(err, auth.ErrEmailTaken) {
		u, err := repo.GetUserByEmail(ctx, email)
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("lookup existing user failed")
		}
		log.Info().Str("email", email).Msg("user exists, skipping")
		return u.ID, false
	}
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("seed user failed")
	}
	log.Info().Str("email", email).Str("role", string(role)).Msg("user created")
	return res.User.ID, true
}

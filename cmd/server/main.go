package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kolade/campus-election/internal/config"
	"github.com/kolade/campus-election/internal/database"
	"github.com/kolade/campus-election/internal/handler"
	"github.com/kolade/campus-election/internal/queue"
	"github.com/kolade/campus-election/internal/repository"
	"github.com/kolade/campus-election/internal/router"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response caching disabled")
	}

	users := repository.NewUserRepo(db)
	departments := repository.NewDepartmentRepo(db)
	offices := repository.NewOfficeRepo(db)
	candidates := repository.NewCandidateRepo(db)
	votes := repository.NewVoteRepo(db)
	eligibility := repository.NewEligibilityRepo(db)
	settings := repository.NewSettingsRepo(db)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, eligibility, departments),
		Vote:        handler.NewVoteHandler(users, eligibility, departments, offices, candidates, votes, settings),
		Admin:       handler.NewAdminHandler(users, departments, offices, candidates, votes, settings),
		Eligibility: handler.NewEligibilityHandler(eligibility, departments),
		Results:     handler.NewPublicResultsHandler(votes, offices, candidates, departments, settings),
	}

	// Audit consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartBallotConsumer(); err != nil {
			log.Printf("ballot consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

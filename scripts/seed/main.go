// Command seed loads a development dataset: one account per role plus a
// handful of programs across the catalog types.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/internal/repository"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/database"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     models.UserRole
}

var seedUsers = []seedUser{
	{"Admin User", "admin@college.edu", "admin123", models.RoleAdmin},
	{"Staff User", "staff@college.edu", "staff123", models.RoleStaff},
	{"Test Student", "student@example.com", "student123", models.RoleStudent},
}

var seedPrograms = []models.Program{
	{
		Name:                "Computer Science Engineering",
		Description:         "B.Tech program in Computer Science Engineering focuses on the theoretical and practical aspects of computer science and its applications.",
		ProgramType:         models.ProgramBTech,
		Department:          "Computer Science",
		DurationYears:       4,
		Seats:               120,
		ApplicationFee:      1000,
		TuitionFee:          125000,
		Eligibility:         "Minimum 60% in 10+2 with PCM",
		ApplicationDeadline: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StartDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:              models.ProgramActive,
	},
	{
		Name:                "Electrical Engineering",
		Description:         "B.Tech program in Electrical Engineering covers the study of electricity, electronics, and electromagnetism.",
		ProgramType:         models.ProgramBTech,
		Department:          "Electrical Engineering",
		DurationYears:       4,
		Seats:               100,
		ApplicationFee:      1000,
		TuitionFee:          120000,
		Eligibility:         "Minimum 60% in 10+2 with PCM",
		ApplicationDeadline: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StartDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:              models.ProgramActive,
	},
	{
		Name:                "Machine Learning & AI",
		Description:         "M.Tech program in Machine Learning & AI focuses on advanced concepts and applications of artificial intelligence.",
		ProgramType:         models.ProgramMTech,
		Department:          "Computer Science",
		DurationYears:       2,
		Seats:               60,
		ApplicationFee:      1500,
		TuitionFee:          150000,
		Eligibility:         "B.Tech in CSE/IT/ECE with minimum 60%",
		ApplicationDeadline: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		StartDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:              models.ProgramActive,
	},
	{
		Name:                "Computer Science PhD",
		Description:         "Doctoral program in Computer Science for advanced research and academic excellence.",
		ProgramType:         models.ProgramPhD,
		Department:          "Computer Science",
		DurationYears:       3,
		Seats:               15,
		ApplicationFee:      2000,
		TuitionFee:          100000,
		Eligibility:         "M.Tech/M.E. in related field with minimum 65%",
		ApplicationDeadline: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		StartDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:              models.ProgramActive,
	},
	{
		Name:                "Information Technology",
		Description:         "Diploma program in Information Technology for entry-level IT professionals.",
		ProgramType:         models.ProgramDiploma,
		Department:          "Information Technology",
		DurationYears:       3,
		Seats:               80,
		ApplicationFee:      800,
		TuitionFee:          75000,
		Eligibility:         "Minimum 55% in 10th standard",
		ApplicationDeadline: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StartDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:              models.ProgramActive,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	programs := repository.NewProgramRepository(db)
	now := time.Now().UTC()

	for _, u := range seedUsers {
		exists, err := users.ExistsEmail(ctx, u.email)
		if err != nil {
			log.Fatalf("failed to check %s: %v", u.email, err)
		}
		if exists {
			log.Printf("skipping %s: already present", u.email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		if err := users.Create(ctx, &models.User{
			ID:           uuid.NewString(),
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		log.Printf("seeded user %s (%s)", u.email, u.role)
	}

	for i := range seedPrograms {
		p := seedPrograms[i]
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := programs.Create(ctx, &p); err != nil {
			log.Fatalf("failed to seed program %s: %v", p.Name, err)
		}
		log.Printf("seeded program %s", p.Name)
	}

	log.Println("seeding complete")
}

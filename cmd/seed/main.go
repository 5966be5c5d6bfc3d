package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"safebox/internal/config"
	"safebox/internal/db"
	"safebox/internal/logger"
	"safebox/internal/repository"
	"safebox/internal/service"
)

// SeedUser is one entry of the seed document.
type SeedUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func main() {
	file := pflag.StringP("file", "f", "", "path to a JSON array of {email, name}")
	url := pflag.StringP("url", "u", "", "URL serving a JSON array of {email, name}")
	pflag.Parse()

	if (*file == "") == (*url == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --file or --url is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Install(zl)()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	var users []SeedUser
	if *file != "" {
		users, err = loadUsersFromFile(*file)
	} else {
		users, err = fetchUsersFromAPI(*url)
	}
	if err != nil {
		zl.Fatal("failed to load seed users", zap.Error(err))
	}
	zl.Info("loaded seed users", zap.Int("count", len(users)))

	svc := service.NewUserService(repository.NewUserRepository(gormDB), nil)
	created, existing, skipped, err := seedUsers(context.Background(), svc, users)
	if err != nil {
		zl.Fatal("failed to seed users", zap.Error(err))
	}

	zl.Info("seed completed",
		zap.Int("created", created),
		zap.Int("existing", existing),
		zap.Int("skipped", skipped))
}

func loadUsersFromFile(path string) ([]SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeUsers(f)
}

// fetchUsersFromAPI fetches the seed document from a remote URL.
func fetchUsersFromAPI(url string) ([]SeedUser, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}
	return decodeUsers(resp.Body)
}

func decodeUsers(r io.Reader) ([]SeedUser, error) {
	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

// seedUsers get-or-creates every entry. Entries without an email are skipped.
func seedUsers(ctx context.Context, svc service.UserService, users []SeedUser) (created, existing, skipped int, err error) {
	for _, u := range users {
		if strings.TrimSpace(u.Email) == "" {
			zap.L().Warn("skipping seed entry without email", zap.String("name", u.Name))
			skipped++
			continue
		}

		_, isNew, err := svc.GetOrCreate(ctx, u.Email, u.Name)
		if err != nil {
			return created, existing, skipped, fmt.Errorf("error seeding user %s: %w", u.Email, err)
		}
		if isNew {
			created++
		} else {
			existing++
		}
	}
	return created, existing, skipped, nil
}

package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	disco "github.com/goliatone/go-disco"
)

type envConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	contextKey      string
}

func (c envConfig) GetSigningKey() string   { return c.signingKey }
func (c envConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c envConfig) GetIssuer() string       { return c.issuer }
func (c envConfig) GetAudience() []string   { return c.audience }
func (c envConfig) GetContextKey() string   { return c.contextKey }

func loadConfig() envConfig {
	expiration := 1
	if raw := os.Getenv("DISCO_TOKEN_EXPIRATION"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			expiration = parsed
		}
	}

	audience := []string{}
	if raw := os.Getenv("DISCO_AUDIENCE"); raw != "" {
		for _, aud := range strings.Split(raw, ",") {
			if aud = strings.TrimSpace(aud); aud != "" {
				audience = append(audience, aud)
			}
		}
	}

	return envConfig{
		signingKey:      getenv("DISCO_SIGNING_KEY", "disco-dev-secret"),
		tokenExpiration: expiration,
		issuer:          getenv("DISCO_ISSUER", "disco"),
		audience:        audience,
		contextKey:      getenv("DISCO_CONTEXT_KEY", "user"),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx)
	if err != nil {
		log.Fatalf("database setup: %v", err)
	}
	defer db.Close()

	repo := disco.NewRepositoryManager(db)

	if os.Getenv("DISCO_SEED") == "true" {
		if err := seed(ctx, repo); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	provider := disco.NewUserProvider(repo.Users())
	auther := disco.NewAuthenticator(provider, cfg)

	server := disco.NewHTTPServer(repo, auther, auther.TokenService(), cfg)

	app := fiber.New(fiber.Config{
		AppName: "disco",
	})
	app.Use(logger.New())
	app.Use(cors.New())

	server.RegisterRoutes(app)

	addr := getenv("DISCO_ADDR", ":3000")
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openDatabase(ctx context.Context) (*bun.DB, error) {
	dsn := getenv("DISCO_DSN", "file:disco.db?cache=shared&_pragma=foreign_keys(1)")

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrationsFS, err := fs.Sub(disco.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// seed creates the development fixtures, a verified user with a known
// password plus one artist. Running it twice is a no-op.
func seed(ctx context.Context, repo disco.RepositoryManager) error {
	email := getenv("DISCO_SEED_EMAIL", "teste@email.com")

	if _, err := repo.Users().GetByEmail(ctx, email); err != nil {
		hash, err := disco.HashPassword(getenv("DISCO_SEED_PASSWORD", "senha123"))
		if err != nil {
			return err
		}

		if _, err := repo.Users().Create(ctx, &disco.User{
			Name:         getenv("DISCO_SEED_NAME", "Teste User"),
			Email:        email,
			PasswordHash: hash,
			Role:         disco.RoleUser,
			IsVerified:   true,
		}); err != nil {
			return err
		}
	}

	artistName := getenv("DISCO_SEED_ARTIST", "Artista Teste")

	if _, err := repo.Artists().GetByName(ctx, artistName); err != nil {
		if _, err := repo.Artists().Create(ctx, &disco.Artist{
			Name: artistName,
			Bio:  "Artista criado para desenvolvimento.",
		}); err != nil {
			return err
		}
	}

	return nil
}

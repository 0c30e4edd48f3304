package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/config"
	"github.com/osouvenir/souvenirs/internal/db"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	AuthService     *service.AuthService
	UserService     *service.UserService
	MemoryService   *service.MemoryService
	PictureService  *service.PictureService
	PlaceService    *service.PlaceService
	LocationService *service.LocationService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, fileStorage), nil
}

// Wire builds the services on an open database and storage.
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) *App {
	store := repository.NewStore(database)

	authService := service.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		AuthService:     authService,
		UserService:     service.NewUserService(store.Users, authService),
		MemoryService:   service.NewMemoryService(store, fileStorage),
		PictureService:  service.NewPictureService(store, fileStorage),
		PlaceService:    service.NewPlaceService(store),
		LocationService: service.NewLocationService(store),
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

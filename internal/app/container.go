package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/api"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/storage"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	PageSize     int
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	StoragePath  string
	Logger       *zap.Logger

	// Optional. Users are read straight from Postgres when nil.
	Redis        *redis.Client
	UserCacheTTL time.Duration

	// Optional. Booking events are dropped when nil.
	Publisher events.Publisher
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// User Module
	var userRepo user.Repository = user.NewPgxRepository(cfg.DBPool)
	if cfg.Redis != nil {
		userRepo = user.NewCachedRepository(userRepo, cfg.Redis, cfg.UserCacheTTL, log.Named("user.cache"))
	}
	userService := user.NewService(userRepo, passwordHasher, log.Named("user"))
	users := userDirectory{users: userService}

	// Item Module repository, shared by the directories below
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	items := itemDirectory{items: itemRepo}

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, users, items, publisher, log.Named("booking"))

	// Comment Module
	commentRepo := comment.NewPgxRepository(cfg.DBPool)
	commentService := comment.NewService(commentRepo, users, items, bookingService, log.Named("comment"))

	// Item Request Module
	requestRepo := itemrequest.NewPgxRepository(cfg.DBPool)
	requestService := itemrequest.NewService(requestRepo, userService, itemRepo, log.Named("itemrequest"))

	// Photo + Item Module
	photoService := photo.NewService(store, photo.DefaultMaxSize, log.Named("photo"))
	itemService := item.NewService(itemRepo, userService, requestService, bookingService, commentService, photoService, log.Named("item"))

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		PageSize:           cfg.PageSize,
		Logger:             log,
		UserService:        userService,
		ItemService:        itemService,
		CommentService:     commentService,
		ItemRequestService: requestService,
		BookingService:     bookingService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}, nil
}

package app

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"admissions-back/internal/api/http/handler"
	"admissions-back/internal/api/http/route"
	"admissions-back/internal/apperrors"
	"admissions-back/internal/config"
	"admissions-back/internal/hub"
	"admissions-back/internal/model"
	"admissions-back/internal/msg/dispatch"
	"admissions-back/internal/msg/ingest"
	"admissions-back/internal/msg/notify"
	"admissions-back/internal/msg/project"
	"admissions-back/internal/msg/relay"
	"admissions-back/internal/repository"
	"admissions-back/internal/service"
	"admissions-back/pkg/jwt"
	"admissions-back/pkg/kafka"
	"admissions-back/pkg/mailer"
	"admissions-back/pkg/postgres"
	"admissions-back/pkg/pushbus"
	"admissions-back/pkg/redis"
	"admissions-back/pkg/search"
	"admissions-back/pkg/server"
)

const (
	consumerBufferSize = 1000

	busDriverPush  = "push"
	busDriverKafka = "kafka"
)

const defaultTimeout = 15 * time.Second

type HealthRepository interface {
	Ping(ctx context.Context) error
	OutboxBacklog(ctx context.Context, ext repository.RepoExtension) (int64, error)
}

type HealthService interface {
	IsOK(ctx context.Context) (bool, error)
	Backlog(ctx context.Context) (int64, error)
}

type HealthHandler interface {
	Ping(c *gin.Context)
	Health(c *gin.Context)
}

type ProspectRepository interface {
	Pool() *pgxpool.Pool
	Insert(ctx context.Context, ext repository.RepoExtension, prospect *model.Prospect) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Prospect, error)
	Update(ctx context.Context, ext repository.RepoExtension, prospect *model.Prospect) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type ProspectService interface {
	Create(ctx context.Context, req model.ProspectCreateRequest) (*model.Prospect, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Prospect, error)
	Update(ctx context.Context, id uuid.UUID, req model.ProspectUpdateRequest) (*model.Prospect, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProspectHandler interface {
	CreateProspect(c *gin.Context)
	GetProspect(c *gin.Context)
	UpdateProspect(c *gin.Context)
	DeleteProspect(c *gin.Context)
}

type StudentRepository interface {
	Pool() *pgxpool.Pool
	Insert(ctx context.Context, ext repository.RepoExtension, student *model.Student) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Student, error)
	Update(ctx context.Context, ext repository.RepoExtension, student *model.Student) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type StudentService interface {
	Create(ctx context.Context, req model.StudentCreateRequest) (*model.Student, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	Update(ctx context.Context, id uuid.UUID, req model.StudentUpdateRequest) (*model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StudentHandler interface {
	CreateStudent(c *gin.Context)
	GetStudent(c *gin.Context)
	UpdateStudent(c *gin.Context)
	DeleteStudent(c *gin.Context)
}

type InstructorRepository interface {
	Pool() *pgxpool.Pool
	Insert(ctx context.Context, ext repository.RepoExtension, instructor *model.Instructor) error
	SelectByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Instructor, error)
	Update(ctx context.Context, ext repository.RepoExtension, instructor *model.Instructor) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type InstructorService interface {
	Create(ctx context.Context, req model.InstructorCreateRequest) (*model.Instructor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Instructor, error)
	Update(ctx context.Context, id uuid.UUID, req model.InstructorUpdateRequest) (*model.Instructor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InstructorHandler interface {
	CreateInstructor(c *gin.Context)
	GetInstructor(c *gin.Context)
	UpdateInstructor(c *gin.Context)
	DeleteInstructor(c *gin.Context)
}

type OutboxRepository interface {
	InsertMessage(ctx context.Context, ext repository.RepoExtension, message model.OutboxMessage) error
	MarkPublished(ctx context.Context, ext repository.RepoExtension, eventID uuid.UUID) error
	SelectUnpublishedBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error)
	MoveToDeadLetter(ctx context.Context, message model.OutboxMessage, reason string) error
	DeleteOldPublished(ctx context.Context, ext repository.RepoExtension, olderThan time.Duration) (int64, error)
}

type InboxRepository interface {
	ProcessOnce(
		ctx context.Context,
		record model.InboxMessage,
		mutate func(ctx context.Context, ext repository.RepoExtension) error,
	) (bool, error)
	PurgeOlderThan(ctx context.Context, ext repository.RepoExtension, window time.Duration) (int64, error)
}

type ProjectionRepository interface {
	Get(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.IdentityProjection, error)
	Insert(ctx context.Context, ext repository.RepoExtension, p *model.IdentityProjection, createdAt time.Time) error
	Update(ctx context.Context, ext repository.RepoExtension, p *model.IdentityProjection) error
	Delete(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
	List(ctx context.Context, ext repository.RepoExtension, kind string, limit, offset int) ([]model.IdentityProjection, error)
}

type SearchRepository interface {
	EnsureIndex(ctx context.Context) error
	Index(ctx context.Context, projection *model.IdentityProjection) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, size int) ([]model.IdentityProjection, error)
}

type ProjectionService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.IdentityProjection, error)
	List(ctx context.Context, kind string, limit, offset int) ([]model.IdentityProjection, error)
	Search(ctx context.Context, query string, size int) ([]model.IdentityProjection, error)
}

type ProjectionHandler interface {
	GetIdentity(c *gin.Context)
	ListIdentities(c *gin.Context)
	SearchIdentities(c *gin.Context)
}

type WebhookHandler interface {
	Receive(c *gin.Context)
	Preflight(c *gin.Context)
}

type StreamHandler interface {
	Stream(c *gin.Context)
}

type Runner interface {
	Run(ctx context.Context)
}

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Handler    *Handler
	Service    *Service
	Security   *Security
	DB         postgres.Postgres
	RDB        redis.Redis
	Mailer     mailer.Mailer
	HTTPServer server.HTTPServer
	Hub        *hub.Hub
	EBus       *EBus

	repo *Repository
}

type Repository struct {
	HealthRepository     HealthRepository
	ProspectRepository   ProspectRepository
	StudentRepository    StudentRepository
	InstructorRepository InstructorRepository
	OutboxRepository     OutboxRepository
	InboxRepository      InboxRepository
	ProjectionRepository ProjectionRepository
	SearchRepository     SearchRepository
}

type Service struct {
	HealthService     HealthService
	ProspectService   ProspectService
	StudentService    StudentService
	InstructorService InstructorService
	ProjectionService ProjectionService
}

type Handler struct {
	HealthHandler     HealthHandler
	ProspectHandler   ProspectHandler
	StudentHandler    StudentHandler
	InstructorHandler InstructorHandler
	ProjectionHandler ProjectionHandler
	WebhookHandler    WebhookHandler
	StreamHandler     StreamHandler
}

type Security struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
}

// EBus holds the moving parts of the event pipeline: the relay draining the
// outbox, the dispatcher fanning deliveries out, and the optional broker
// ingestor.
type EBus struct {
	Relay      *relay.Relay
	Dispatcher *dispatch.Dispatcher
	Projector  *project.Projector
	Ingestor   Runner
	Publisher  relay.Publisher

	closeBus func() error
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := initRedis(&cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize redis", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	sec, err := initSecurity(log, cfg.Key)
	if err != nil {
		log.Error("Failed to initialize security", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	mlr := initMailer(log, &cfg.Mailer)

	es, err := initElastic(log, &cfg.Elastic)
	if err != nil {
		log.Error("Failed to initialize elastic", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize elastic: %w", err)
	}

	repo := initRepository(log, db, es)

	if repo.SearchRepository != nil {
		if err := repo.SearchRepository.EnsureIndex(ctx); err != nil {
			log.Error("Failed to ensure search index", zap.Error(err))
			return nil, fmt.Errorf("failed to ensure search index: %w", err)
		}
	}

	svc := initService(log, cfg, repo)

	liveHub := hub.NewHub(log, hub.Config{
		MaxConnections: cfg.Hub.MaxConnections,
		SendBuffer:     cfg.Hub.SendBuffer,
		WriteTimeout:   cfg.Hub.WriteTimeout,
		PingInterval:   cfg.Hub.PingInterval,
		PongWait:       cfg.Hub.PongWait,
	})

	eBus, err := initEBus(log, cfg, repo, rdb, mlr, liveHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ebus: %w", err)
	}

	hdl := initHandler(log, cfg, svc, eBus.Dispatcher, liveHub)

	var publicKey *ecdsa.PublicKey
	if sec != nil {
		publicKey = sec.PublicKey
	}

	httpServer := initHTTPServer(log, cfg, publicKey, hdl)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Handler:    hdl,
		Service:    svc,
		Security:   sec,
		DB:         db,
		RDB:        rdb,
		Mailer:     mlr,
		HTTPServer: httpServer,
		Hub:        liveHub,
		EBus:       eBus,
		repo:       repo,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}
	return app
}

func (a *App) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	defer close(errs)

	go func() {
		if err := a.HTTPServer.Run(); err != nil {
			errs <- err
		}
	}()

	go func() {
		a.EBus.Relay.Run(ctx)
	}()

	go func() {
		a.EBus.Projector.RunPurge(ctx)
	}()

	go func() {
		a.runOutboxTrim(ctx)
	}()

	if a.EBus.Ingestor != nil {
		go func() {
			a.EBus.Ingestor.Run(ctx)
		}()
	}

	if err := <-errs; err != nil {
		return err
	}

	return nil
}

// runOutboxTrim deletes published ledger records that fell out of the dedup
// window; nothing downstream can claim them as duplicates anymore.
func (a *App) runOutboxTrim(ctx context.Context) {
	ticker := time.NewTicker(a.Cfg.Inbox.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Log.Info("Outbox trim loop stopped")

			return
		case <-ticker.C:
			trimmed, err := a.repo.OutboxRepository.DeleteOldPublished(ctx, nil, a.Cfg.Inbox.DedupWindow)
			if err != nil {
				a.Log.Error("Failed to trim outbox", zap.Error(err))
				continue
			}

			if trimmed > 0 {
				a.Log.Info("Trimmed published outbox records", zap.Int64("count", trimmed))
			}
		}
	}
}

func (a *App) Shutdown() error {
	a.Hub.Close()
	a.Log.Debug("Hub closed")

	err := apperrors.ErrShutdown

	if srvErr := a.HTTPServer.Shutdown(); srvErr != nil {
		err = fmt.Errorf("%w, failed to shutdown http server: %w", err, srvErr)
	}

	a.Log.Debug("Http server shutdown")

	if a.EBus.closeBus != nil {
		if busErr := a.EBus.closeBus(); busErr != nil {
			err = fmt.Errorf("%w, failed to close event bus: %w", err, busErr)
		}

		a.Log.Debug("Event bus closed")
	}

	if a.RDB != nil {
		if rdbErr := a.RDB.Close(); rdbErr != nil {
			err = fmt.Errorf("%w, failed to close RDB: %w", err, rdbErr)
		}

		a.Log.Debug("Redis closed")
	}

	a.DB.Close()
	a.Log.Debug("Database closed")

	if !errors.Is(err, apperrors.ErrShutdown) {
		return err
	}

	return nil
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	db, err := postgres.New(postgresCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func initRedis(cfg *config.Redis) (redis.Redis, error) {
	if !cfg.Enable {
		return nil, nil
	}

	redisCfg := &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	rdb, err := redis.New(redisCfg)
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func initMailer(log *zap.Logger, cfg *config.Mailer) mailer.Mailer {
	if !cfg.Enable {
		return nil
	}

	mailerCfg := &mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		UseTLS:   cfg.UseTLS,
	}

	mlr := mailer.New(mailerCfg)
	log.Debug("Mailer initialized")
	return mlr
}

func initElastic(log *zap.Logger, cfg *config.Elastic) (search.Elasticsearch, error) {
	if !cfg.Enable {
		return nil, nil
	}

	elasticCfg := &search.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		CloudID:   cfg.CloudID,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
	}

	client, err := search.New(elasticCfg)
	if err != nil {
		return nil, err
	}

	log.Debug("Elasticsearch initialized")
	return client, nil
}

// initSecurity loads the JWT keypair. Both paths empty means the deployment
// runs without authentication.
func initSecurity(log *zap.Logger, cfg config.Key) (*Security, error) {
	if cfg.PrivateKey == "" && cfg.PublicKey == "" {
		return nil, nil
	}

	privateKey, err := jwt.LoadECDSAPrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	log.Debug("Private key loaded")

	publicKey, err := jwt.LoadECDSAPublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	log.Debug("Public key loaded")

	return &Security{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}, nil
}

func initRepository(log *zap.Logger, db postgres.Postgres, es search.Elasticsearch) *Repository {
	healthRepo := repository.NewHealthRepository(db.Pool())
	log.Debug("Health repository initialized")

	prospectRepo := repository.NewProspectRepository(db.Pool())
	log.Debug("Prospect repository initialized")

	studentRepo := repository.NewStudentRepository(db.Pool())
	log.Debug("Student repository initialized")

	instructorRepo := repository.NewInstructorRepository(db.Pool())
	log.Debug("Instructor repository initialized")

	outboxRepo := repository.NewOutboxRepository(db.Pool())
	log.Debug("Outbox repository initialized")

	inboxRepo := repository.NewInboxRepository(db.Pool())
	log.Debug("Inbox repository initialized")

	projectionRepo := repository.NewProjectionRepository(db.Pool())
	log.Debug("Projection repository initialized")

	var searchRepo SearchRepository
	if es != nil {
		searchRepo = repository.NewSearchRepository(es.Client())
		log.Debug("Search repository initialized")
	}

	return &Repository{
		HealthRepository:     healthRepo,
		ProspectRepository:   prospectRepo,
		StudentRepository:    studentRepo,
		InstructorRepository: instructorRepo,
		OutboxRepository:     outboxRepo,
		InboxRepository:      inboxRepo,
		ProjectionRepository: projectionRepo,
		SearchRepository:     searchRepo,
	}
}

func initService(log *zap.Logger, cfg *config.Config, repo *Repository) *Service {
	healthSvc := service.NewHealthService(log, repo.HealthRepository)
	log.Debug("Health service initialized")

	producer := cfg.App.ServiceName

	prospectSvc := service.NewProspectService(log, producer, repo.ProspectRepository, repo.OutboxRepository)
	log.Debug("Prospect service initialized")

	studentSvc := service.NewStudentService(log, producer, repo.StudentRepository, repo.OutboxRepository)
	log.Debug("Student service initialized")

	instructorSvc := service.NewInstructorService(log, producer, repo.InstructorRepository, repo.OutboxRepository)
	log.Debug("Instructor service initialized")

	var searchRepo service.SearchRepository
	if repo.SearchRepository != nil {
		searchRepo = repo.SearchRepository
	}

	projectionSvc := service.NewProjectionService(log, repo.ProjectionRepository, searchRepo)
	log.Debug("Projection service initialized")

	return &Service{
		HealthService:     healthSvc,
		ProspectService:   prospectSvc,
		StudentService:    studentSvc,
		InstructorService: instructorSvc,
		ProjectionService: projectionSvc,
	}
}

func initHandler(log *zap.Logger, cfg *config.Config, svc *Service, dispatcher *dispatch.Dispatcher, liveHub *hub.Hub) *Handler {
	healthHandler := handler.NewHealthHandler(log, svc.HealthService, liveHub)
	log.Debug("Health handler initialized")

	prospectHandler := handler.NewProspectHandler(log, svc.ProspectService)
	log.Debug("Prospect handler initialized")

	studentHandler := handler.NewStudentHandler(log, svc.StudentService)
	log.Debug("Student handler initialized")

	instructorHandler := handler.NewInstructorHandler(log, svc.InstructorService)
	log.Debug("Instructor handler initialized")

	projectionHandler := handler.NewProjectionHandler(log, svc.ProjectionService)
	log.Debug("Projection handler initialized")

	webhookHandler := handler.NewWebhookHandler(log, cfg.Webhook.AllowedRate, dispatcher)
	log.Debug("Webhook handler initialized")

	streamHandler := handler.NewStreamHandler(log, liveHub)
	log.Debug("Stream handler initialized")

	return &Handler{
		HealthHandler:     healthHandler,
		ProspectHandler:   prospectHandler,
		StudentHandler:    studentHandler,
		InstructorHandler: instructorHandler,
		ProjectionHandler: projectionHandler,
		WebhookHandler:    webhookHandler,
		StreamHandler:     streamHandler,
	}
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, publicKey *ecdsa.PublicKey, hdl *Handler) server.HTTPServer {
	router := route.SetupRouter(
		log,
		cfg,
		publicKey,
		hdl.HealthHandler,
		hdl.ProspectHandler,
		hdl.StudentHandler,
		hdl.InstructorHandler,
		hdl.ProjectionHandler,
		hdl.WebhookHandler,
		hdl.StreamHandler,
	)

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)

	return httpServer
}

// kafkaPublisher adapts the sarama producer to the relay. Broker errors are
// treated as transient: sarama already refuses to start without a reachable
// cluster, anything later is worth a retry.
type kafkaPublisher struct {
	producer kafka.Producer
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key, payload []byte) error {
	if _, _, err := p.producer.PushMessage(ctx, key, payload, topic); err != nil {
		return pushbus.Temporary(fmt.Errorf("failed to push message: %w", err))
	}

	return nil
}

func initEBus(
	log *zap.Logger,
	cfg *config.Config,
	repo *Repository,
	rdb redis.Redis,
	mlr mailer.Mailer,
	liveHub *hub.Hub,
) (*EBus, error) {
	dispatcher := dispatch.NewDispatcher(log)

	var searchIndex project.SearchIndex
	if repo.SearchRepository != nil {
		searchIndex = repo.SearchRepository
	}

	projector := project.NewProjector(
		log,
		project.Config{
			Name:          "projector",
			DedupWindow:   cfg.Inbox.DedupWindow,
			PurgeInterval: cfg.Inbox.PurgeInterval,
		},
		repo.InboxRepository,
		repo.ProjectionRepository,
		searchIndex,
	)

	dispatcher.Register(projector)
	dispatcher.RegisterBestEffort(liveHub)

	if mlr != nil && cfg.Mailer.NotifyTo != "" {
		recipients := strings.Split(cfg.Mailer.NotifyTo, ",")
		for i := range recipients {
			recipients[i] = strings.TrimSpace(recipients[i])
		}

		dispatcher.RegisterBestEffort(notify.NewNotifier(log, mlr, recipients))
		log.Debug("Notifier registered")
	}

	var (
		publisher relay.Publisher
		ingestor  Runner
		closers   []func() error
	)

	switch cfg.Bus.Driver {
	case busDriverKafka:
		producer, err := kafka.NewProducer(
			cfg.Bus.Kafka.Brokers,
			kafka.WithBalancer(kafka.Hash),
			kafka.WithRequiredAcks(kafka.RequireAll),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to init kafka producer: %w", err)
		}

		log.Debug("Kafka producer initialized")

		publisher = &kafkaPublisher{producer: producer}
		closers = append(closers, producer.Close)

		topics := cfg.Bus.Ingest.Topics
		if len(topics) == 0 {
			topics = []string{model.TopicProspects, model.TopicStudents, model.TopicInstructors}
		}

		consumerGroup, err := kafka.NewConsumerGroupRunner(
			cfg.Bus.Kafka.Brokers,
			cfg.Bus.Ingest.GroupID,
			topics,
			consumerBufferSize,
			kafka.WithBalancerConsumer(kafka.RoundrobinBalanceStrategy),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}

		go func() {
			startAndRunningStr := <-consumerGroup.Info()

			log.Info(startAndRunningStr)
		}()

		ingestor = ingest.NewIngestor(
			log,
			ingest.Config{
				Name:        cfg.Bus.Ingest.Name,
				WorkerCount: cfg.Bus.Ingest.WorkerCount,
			},
			consumerGroup,
			dispatcher,
		)
		closers = append(closers, consumerGroup.Close)

		log.Debug("Kafka ingestor initialized")
	case busDriverPush, "":
		pushPublisher, err := pushbus.New(&pushbus.Config{
			Endpoint: cfg.Bus.Push.Endpoint,
			Key:      cfg.Bus.Push.Key,
			Timeout:  cfg.Bus.Push.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init push bus publisher: %w", err)
		}

		log.Debug("Push bus publisher initialized")

		publisher = pushPublisher
		closers = append(closers, pushPublisher.Close)
	default:
		return nil, fmt.Errorf("unknown bus driver: %q", cfg.Bus.Driver)
	}

	var lease relay.Lease
	if cfg.Relay.Lease.Enabled {
		if rdb == nil {
			return nil, fmt.Errorf("relay lease requires redis to be enabled")
		}

		lease = relay.NewRedisLease(rdb.RDB(), cfg.Relay.Lease.Key, cfg.Relay.Name, cfg.Relay.Lease.TTL)
		log.Debug("Relay lease initialized")
	}

	rly := relay.NewRelay(
		log,
		relay.Config{
			Name:           cfg.Relay.Name,
			PollInterval:   cfg.Relay.PollInterval,
			BatchSize:      cfg.Relay.BatchSize,
			PublishTimeout: cfg.Relay.PublishTimeout,
			RetryBaseDelay: cfg.Relay.RetryBaseDelay,
			RetryMaxTries:  cfg.Relay.RetryMaxTries,
			DeadLetter:     cfg.Relay.DeadLetter,
		},
		publisher,
		repo.OutboxRepository,
		lease,
	)

	log.Debug("Relay initialized")

	closeBus := func() error {
		var err error
		for _, closeFn := range closers {
			if cErr := closeFn(); cErr != nil {
				err = errors.Join(err, cErr)
			}
		}

		return err
	}

	return &EBus{
		Relay:      rly,
		Dispatcher: dispatcher,
		Projector:  projector,
		Ingestor:   ingestor,
		Publisher:  publisher,
		closeBus:   closeBus,
	}, nil
}

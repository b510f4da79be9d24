package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/repository"
	"github.com/noah-isme/circleed-client/internal/service"
	"github.com/noah-isme/circleed-client/internal/state"
	"github.com/noah-isme/circleed-client/pkg/config"
	"github.com/noah-isme/circleed-client/pkg/storage"
)

// app holds every wired service for one CLI invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	tokens  *repository.TokenRepository
	metrics *service.MetricsService
	bus     *events.Bus
	store   *state.Store

	transactions *repository.TransactionRepository

	auth        *service.AuthService
	bookings    *service.BookingService
	reviews     *service.ReviewService
	marketplace *service.MarketplaceService
	chats       *service.ChatService
	wallet      *service.WalletService
	dashboard   *service.DashboardService
	teach       *service.TeachService
	profile     *service.ProfileService
	refresh     *service.RefreshService
	debouncer   *service.Debouncer

	unbind func()
}

func openTokenStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, error) {
	switch cfg.TokenStore.Driver {
	case config.TokenStoreRedis:
		client, err := repository.DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisTokenStore(client, cfg.TokenStore.Prefix), nil
	case config.TokenStoreFile, "":
		return repository.NewFileTokenStore(cfg.TokenStore.Path)
	default:
		return nil, fmt.Errorf("unknown token store driver %q", cfg.TokenStore.Driver)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*app, error) {
	kv, err := openTokenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	tokens := repository.NewTokenRepository(kv)

	metrics := service.NewMetricsService()
	bus := events.NewBus(metrics, logr)
	store := state.NewStore(metrics, logr)

	api := repository.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout, logr,
		repository.WithTokenSource(tokens),
		repository.WithRequestObserver(metrics),
	)
	skillRepo := repository.NewSkillRepository(api)
	sessionRepo := repository.NewSessionRepository(api)
	userRepo := repository.NewUserRepository(api)
	chatRepo := repository.NewChatRepository(api)
	transactionRepo := repository.NewTransactionRepository(api)
	authRepo := repository.NewAuthRepository(api)

	exports, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		return nil, fmt.Errorf("prepare export dir: %w", err)
	}

	debouncer := service.NewDebouncer(cfg.Marketplace.Debounce)
	a := &app{
		cfg:          cfg,
		logger:       logr,
		tokens:       tokens,
		metrics:      metrics,
		bus:          bus,
		store:        store,
		transactions: transactionRepo,
		debouncer:    debouncer,
		auth:         service.NewAuthService(authRepo, tokens, nil, logr),
		bookings:     service.NewBookingService(sessionRepo, skillRepo, userRepo, chatRepo, tokens, bus, store, metrics, nil, logr),
		reviews:      service.NewReviewService(skillRepo, bus, store, nil, logr),
		marketplace:  service.NewMarketplaceService(skillRepo, tokens, store, debouncer, logr),
		chats:        service.NewChatService(chatRepo, tokens, bus, store, logr),
		wallet:       service.NewWalletService(userRepo, transactionRepo, store, exports, logr, nil, nil),
		dashboard:    service.NewDashboardService(userRepo, sessionRepo, skillRepo, store, logr, service.DashboardServiceConfig{}),
		teach:        service.NewTeachService(skillRepo, tokens, nil, logr),
		profile:      service.NewProfileService(userRepo, sessionRepo, tokens, nil, logr),
		refresh:      service.NewRefreshService(metrics, logr),
	}

	a.refresh.Register(state.KeyWallet, func(ctx context.Context) error {
		_, err := a.wallet.Load(ctx)
		return err
	})
	a.refresh.Register(state.KeyDashboard, func(ctx context.Context) error {
		_, err := a.dashboard.Load(ctx)
		return err
	})
	a.refresh.Register(state.KeyBookings, func(ctx context.Context) error {
		_, err := a.bookings.Load(ctx)
		return err
	})
	a.refresh.Register(state.KeyMarketplace, func(ctx context.Context) error {
		_, err := a.marketplace.Refresh(ctx)
		return err
	})
	a.refresh.Register(state.KeyChats, func(ctx context.Context) error {
		_, err := a.chats.Chats(ctx, 0)
		return err
	})
	a.unbind = a.refresh.Bind(bus)

	return a, nil
}

func (a *app) close() {
	a.debouncer.Stop()
	if a.unbind != nil {
		a.unbind()
	}
	if err := a.tokens.Close(); err != nil {
		a.logger.Warn("close token store", zap.Error(err))
	}
}

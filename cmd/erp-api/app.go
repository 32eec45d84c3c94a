package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-api/internal/dto"
	"github.com/noah-isme/erp-api/internal/handler"
	"github.com/noah-isme/erp-api/internal/models"
	"github.com/noah-isme/erp-api/internal/repository"
	"github.com/noah-isme/erp-api/internal/service"
	"github.com/noah-isme/erp-api/internal/workflow"
	"github.com/noah-isme/erp-api/pkg/config"
	"github.com/noah-isme/erp-api/pkg/jobs"
)

type app struct {
	logger        *zap.Logger
	tokens        *service.TokenService
	metrics       *handler.MetricsHandler
	documents     []*handler.DocumentHandler
	policies      *handler.ApprovalPolicyHandler
	notifications *handler.NotificationHandler
	queue         *jobs.Queue
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService, logr *zap.Logger) *app {
	validate := dto.NewValidator()

	sequenceRepo := repository.NewSequenceRepository(db)
	policyRepo := repository.NewApprovalPolicyRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var policyOpts []service.PolicyServiceOption
	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Approval.PolicyCacheTTL, logr, true)
		policyOpts = append(policyOpts, service.WithPolicyCache(cacheSvc, cfg.Approval.PolicyCacheTTL))
		checks["redis"] = redisPinger{client: redisClient}
	}
	policySvc := service.NewPolicyService(policyRepo, logr, policyOpts...)
	sequenceSvc := service.NewSequenceService(sequenceRepo, metrics, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, policySvc, metrics, logr)

	a := &app{
		logger: logr,
		tokens: service.NewTokenService(service.TokenConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		}),
		metrics:       handler.NewMetricsHandler(metrics, checks),
		policies:      handler.NewApprovalPolicyHandler(policySvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
	}

	if cfg.Notifications.Async {
		a.queue = jobs.NewQueue("notifications", notificationSvc.HandleJob, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.Retries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
			OnExhausted: func(job jobs.Job, err error) {
				logr.Error("notification dropped", zap.String("job_id", job.ID), zap.Error(err))
			},
		})
		notificationSvc.AttachQueue(a.queue)
	}

	validity := workflow.ValidityKeepStatus
	if cfg.Approval.ValidityMode == config.ValidityModeReset {
		validity = workflow.ValidityResetStatus
	}

	for _, kind := range models.DocumentKinds() {
		repo := repository.NewDocumentRepository(db, kind)
		documents := service.NewDocumentService(kind, repo, policySvc, sequenceSvc, activityRepo, validate, logr,
			service.WithDocumentMetrics(metrics),
			service.WithActivityHistory(activityRepo),
		)
		approvals := service.NewApprovalService(kind, repo, policySvc, activityRepo, validate, logr,
			service.WithValidityMode(validity),
			service.WithApprovalNotifier(notificationSvc),
			service.WithApprovalMetrics(metrics),
		)
		a.documents = append(a.documents, handler.NewDocumentHandler(kind, documents, approvals, sequenceSvc))
	}

	return a
}

func (a *app) start(ctx context.Context) {
	if a.queue != nil {
		a.queue.Start(ctx)
	}
}

func (a *app) stop(ctx context.Context) {
	if a.queue == nil {
		return
	}
	if err := a.queue.Stop(ctx); err != nil {
		a.logger.Warn("notification queue did not drain", zap.Error(err))
	}
}

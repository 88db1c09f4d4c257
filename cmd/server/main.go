package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/motormarket/motormarket/internal/admin"
	"github.com/motormarket/motormarket/internal/common/config"
	"github.com/motormarket/motormarket/internal/common/db"
	"github.com/motormarket/motormarket/internal/common/logger"
	"github.com/motormarket/motormarket/internal/common/mail"
	"github.com/motormarket/motormarket/internal/common/middleware"
	"github.com/motormarket/motormarket/internal/common/server"
	"github.com/motormarket/motormarket/internal/common/tracing"
	"github.com/motormarket/motormarket/internal/listing"
	"github.com/motormarket/motormarket/internal/message"
	"github.com/motormarket/motormarket/internal/notification"
	"github.com/motormarket/motormarket/internal/partner"
	"github.com/motormarket/motormarket/internal/payment"
	"github.com/motormarket/motormarket/internal/review"
	"github.com/motormarket/motormarket/internal/user"
)

var (
	configPath = flag.String("config", "configs/server.json", "path to the config file")
	consulKey  = flag.String("consul-config-key", "", "load config from this Consul KV key instead of the file")
)

func main() {
	// .env carries local secrets; missing file is fine
	_ = godotenv.Overload(".env")

	flag.Parse()

	var cfg *config.Config
	var err error
	if *consulKey != "" {
		fileCfg, ferr := config.LoadConfig(*configPath)
		if ferr != nil {
			panic(fmt.Sprintf("failed to load config: %v", ferr))
		}
		cfg, err = config.LoadConfigFromConsulKV(fileCfg.Consul.Host, fileCfg.Consul.Port, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	tracer, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		opentracing.SetGlobalTracer(tracer)
		defer closer.Close()
	}

	gdb, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&user.User{},
		&listing.Listing{},
		&partner.BusinessPartner{},
		&partner.VendorApplication{},
		&message.Inquiry{},
		&message.AdminMessage{},
		&payment.CommissionRule{},
		&payment.VendorPayment{},
		&review.Review{},
		&notification.Notification{},
		&admin.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer rdb.Close()

	var sender mail.Sender = mail.NopSender{}
	if cfg.Mail.Enabled {
		ses, err := mail.NewSESSender(context.Background(), cfg.Mail.Region, cfg.Mail.From)
		if err != nil {
			log.Warnf("ses init failed, mail disabled: %v", err)
		} else {
			sender = ses
		}
	}
	mailBreaker := middleware.NewCircuitBreaker("mail", 5, 30*time.Second)

	// repositories and services
	userSvc := user.NewService(user.NewRepo(gdb), cfg.Auth)
	listingSvc := listing.NewService(listing.NewRepo(gdb))
	partnerSvc := partner.NewService(partner.NewRepo(gdb), promoter{userSvc})
	paymentSvc := payment.NewService(payment.NewRepo(gdb), partnerSvc)
	reviewSvc := review.NewService(review.NewRepo(gdb))
	messageSvc := message.NewService(message.NewRepo(gdb), listingSvc)
	activityRepo := admin.NewActivityRepo(gdb)
	tracker := admin.NewSessionTracker(rdb,
		time.Duration(cfg.Admin.SessionIdleMinutes)*time.Minute, cfg.Admin.MaxSessionIPs)

	notifier := notification.NewService(
		notification.NewRepo(gdb), sender, mailBreaker,
		func(ctx context.Context, userID string) (string, error) {
			u, err := userSvc.Get(ctx, userID)
			if err != nil {
				return "", err
			}
			return u.Email, nil
		},
		log,
	)
	defer notifier.Flush()

	// cross-module glue
	listingSvc.OnSold = func(ctx context.Context, l *listing.Listing) {
		vp, err := paymentSvc.RecordSale(ctx, l.SellerID, l.ID, l.PriceCents, l.Currency, strings.ToLower(l.Make))
		if err != nil {
			log.Errorf("commission for listing %s not recorded: %v", l.ID, err)
			return
		}
		if vp != nil {
			subject := fmt.Sprintf("Commission recorded for %q", l.Title)
			body := fmt.Sprintf("Sale price %d %s, commission %d %s (%s).",
				vp.SalePriceCents, vp.Currency, vp.CommissionCents, vp.Currency, vp.Status)
			if _, err := notifier.Notify(ctx, l.SellerID, notification.KindPaymentRecorded, subject, body, true); err != nil {
				log.Warnf("sale notification failed: %v", err)
			}
		}
	}
	messageSvc.OnInquiry = func(ctx context.Context, i *message.Inquiry) {
		if _, err := notifier.Notify(ctx, i.SellerID, notification.KindInquiryReceived,
			"New inquiry on your listing", i.Body, true); err != nil {
			log.Warnf("inquiry notification failed: %v", err)
		}
	}
	reviewSvc.OnRejected = func(ctx context.Context, rv *review.Review) {
		body := "Your review was not published."
		if rv.Flags != "" {
			body += " Flags: " + rv.Flags
		}
		if _, err := notifier.Notify(ctx, rv.AuthorID, notification.KindReviewRejected,
			"Review rejected", body, true); err != nil {
			log.Warnf("review notification failed: %v", err)
		}
	}

	// HTTP wiring
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		server.Recovery(log),
		server.AccessLog(log),
		server.Metrics(),
		server.Tracing(cfg.Server.Name),
		server.RateLimit(middleware.NewPerKeyLimiter(50, 25)),
	)

	engine.GET("/health", func(c *gin.Context) {
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userH := user.NewHandler(userSvc)
	listingH := listing.NewHandler(listingSvc)
	partnerH := partner.NewHandler(partnerSvc)
	messageH := message.NewHandler(messageSvc)
	paymentH := payment.NewHandler(paymentSvc)
	reviewH := review.NewHandler(reviewSvc)
	notificationH := notification.NewHandler(notifier)

	api := engine.Group("/api/v1")
	userH.RegisterPublic(api)
	listingH.RegisterPublic(api)
	partnerH.RegisterPublic(api)
	reviewH.RegisterPublic(api)

	authed := api.Group("", server.JWTAuth(cfg.Auth, log))
	userH.RegisterAuthed(authed)
	listingH.RegisterAuthed(authed)
	partnerH.RegisterAuthed(authed)
	messageH.RegisterAuthed(authed)
	paymentH.RegisterAuthed(authed)
	reviewH.RegisterAuthed(authed)
	notificationH.RegisterAuthed(authed)

	store := cookie.NewStore([]byte(cfg.Auth.SessionSecret))
	store.Options(sessions.Options{HttpOnly: true, MaxAge: 12 * 3600, Path: "/admin"})
	adminH := admin.NewHandler(userSvc, listingSvc, partnerSvc, paymentSvc,
		reviewSvc, messageSvc, notifier, activityRepo, tracker, log)
	adminH.Register(engine.Group("/admin", sessions.Sessions("motormarket_admin", store)))

	if err := server.RunHTTPServer(cfg, log, engine); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// promoter adapts the accounts service to the partner workflow, which only
// needs the role grant.
type promoter struct {
	users *user.Service
}

func (p promoter) PromoteToSeller(ctx context.Context, userID string) error {
	_, err := p.users.PromoteToSeller(ctx, userID)
	return err
}

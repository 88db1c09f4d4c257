package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/logger"
	"github.com/motormarket/motormarket/internal/common/server"
	"github.com/motormarket/motormarket/internal/listing"
	"github.com/motormarket/motormarket/internal/message"
	"github.com/motormarket/motormarket/internal/notification"
	"github.com/motormarket/motormarket/internal/partner"
	"github.com/motormarket/motormarket/internal/payment"
	"github.com/motormarket/motormarket/internal/review"
	"github.com/motormarket/motormarket/internal/user"
)

const (
	sessionUserKey = "admin_uid"
	sessionSIDKey  = "admin_sid"
)

// Handler is the admin panel surface. It holds the domain services so
// moderation decisions, audit rows and notifications happen in one place.
type Handler struct {
	users    *user.Service
	listings *listing.Service
	partners *partner.Service
	payments *payment.Service
	reviews  *review.Service
	messages *message.Service
	notifier *notification.Service
	activity *ActivityRepo
	tracker  *SessionTracker
	log      logger.Logger
}

func NewHandler(
	users *user.Service,
	listings *listing.Service,
	partners *partner.Service,
	payments *payment.Service,
	reviews *review.Service,
	messages *message.Service,
	notifier *notification.Service,
	activity *ActivityRepo,
	tracker *SessionTracker,
	log logger.Logger,
) *Handler {
	return &Handler{
		users:    users,
		listings: listings,
		partners: partners,
		payments: payments,
		reviews:  reviews,
		messages: messages,
		notifier: notifier,
		activity: activity,
		tracker:  tracker,
		log:      log,
	}
}

// Register mounts the panel on r. The caller must have attached a cookie
// session store to the group; everything except login sits behind Guard.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/login", h.login)

	g := r.Group("", h.Guard())
	g.POST("/logout", h.logout)
	g.GET("/dashboard", h.dashboard)
	g.GET("/activity", h.listActivity)

	g.GET("/listings", h.listListings)
	g.POST("/listings/:id/approve", h.approveListing)
	g.POST("/listings/:id/reject", h.rejectListing)

	g.GET("/applications", h.listApplications)
	g.POST("/applications/:id/review", h.startReview)
	g.POST("/applications/:id/approve", h.approveApplication)
	g.POST("/applications/:id/reject", h.rejectApplication)
	g.POST("/partners/:id/tier", h.setPartnerTier)

	g.GET("/users", h.listUsers)
	g.POST("/users/:id/ban", h.banUser)
	g.POST("/users/:id/unban", h.unbanUser)
	g.POST("/messages", h.sendMessage)

	g.GET("/reviews", h.listReviews)
	g.GET("/reviews/:id", h.getReview)
	g.POST("/reviews/:id/override", h.overrideReview)

	g.GET("/commission-rules", h.listRules)
	g.PUT("/commission-rules", h.upsertRule)
	g.GET("/payments", h.listPayments)
	g.POST("/payments/:id/invoiced", h.markInvoiced)
	g.POST("/payments/:id/paid", h.markPaid)
}

// record writes an audit row; audit failure is logged, never fatal.
func (h *Handler) record(c *gin.Context, action, objectType, objectID, detail string) {
	actor, _ := c.Get(sessionUserKey)
	actorID, _ := actor.(string)
	if err := h.activity.Record(c.Request.Context(), actorID, action, objectType, objectID, detail, c.ClientIP()); err != nil && h.log != nil {
		h.log.Warnf("activity log write failed action=%s err=%v", action, err)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.Error(c, err)
		return
	}
	if !u.HasRole(user.RoleAdmin) {
		server.Error(c, apperr.PermissionDenied("not an administrator"))
		return
	}

	sid := uuid.NewString()
	if err := h.tracker.Start(c.Request.Context(), sid, c.ClientIP()); err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserKey, u.ID)
	sess.Set(sessionSIDKey, sid)
	if err := sess.Save(); err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}

	c.Set(sessionUserKey, u.ID)
	h.record(c, "admin_login", "user", u.ID, "")
	c.JSON(http.StatusOK, gin.H{"user": user.ToView(u)})
}

func (h *Handler) logout(c *gin.Context) {
	sess := sessions.Default(c)
	if sid, ok := sess.Get(sessionSIDKey).(string); ok {
		_ = h.tracker.End(c.Request.Context(), sid)
	}
	h.record(c, "admin_logout", "", "", "")
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Guard enforces the cookie session plus the redis timeout/IP heuristics.
// A violation clears the session and demands a fresh login.
func (h *Handler) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		uid, okUID := sess.Get(sessionUserKey).(string)
		sid, okSID := sess.Get(sessionSIDKey).(string)
		if !okUID || !okSID || uid == "" || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHENTICATED", "message": "admin login required"},
			})
			return
		}

		if err := h.tracker.Touch(c.Request.Context(), sid, c.ClientIP()); err != nil {
			switch err {
			case ErrSessionExpired, ErrSessionIdle, ErrTooManyIPs:
				if logErr := h.activity.Record(c.Request.Context(), uid, "admin_session_violation", "", "", err.Error(), c.ClientIP()); logErr != nil && h.log != nil {
					h.log.Warnf("activity log write failed: %v", logErr)
				}
				sess.Clear()
				_ = sess.Save()
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"code": "UNAUTHENTICATED", "message": err.Error()},
				})
			default:
				server.Error(c, apperr.Internal(err))
			}
			return
		}

		c.Set(sessionUserKey, uid)
		c.Next()
	}
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	pendingListings, err := h.listings.CountByStatus(ctx, listing.StatusPending)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	openApplications, err := h.partners.CountOpenApplications(ctx)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	pendingReviews, err := h.reviews.CountPending(ctx)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	users, err := h.users.CountUsers(ctx)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	partners, err := h.partners.CountPartners(ctx)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	recent, err := h.activity.Recent(ctx, 10)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending_listings":  pendingListings,
		"open_applications": openApplications,
		"pending_reviews":   pendingReviews,
		"users":             users,
		"partners":          partners,
		"recent_activity":   recent,
	})
}

func (h *Handler) listActivity(c *gin.Context) {
	offset, limit := pageParams(c)
	logs, total, err := h.activity.List(c.Request.Context(), c.Query("actor"), offset, limit)
	if err != nil {
		server.Error(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs, "total": total})
}

func (h *Handler) listListings(c *gin.Context) {
	offset, limit := pageParams(c)
	status := listing.Status(c.DefaultQuery("status", string(listing.StatusPending)))
	listings, total, err := h.listings.Search(c.Request.Context(), listing.SearchFilter{
		Status: status,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "total": total})
}

func (h *Handler) approveListing(c *gin.Context) {
	l, err := h.listings.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "listing_approved", "listing", l.ID, "")
	h.notify(c, l.SellerID, notification.KindListingApproved,
		"Your listing is live", "Listing \""+l.Title+"\" was approved and is now visible to buyers.")
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectListing(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	l, err := h.listings.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "listing_rejected", "listing", l.ID, req.Reason)
	h.notify(c, l.SellerID, notification.KindListingRejected,
		"Your listing was rejected", "Listing \""+l.Title+"\" was rejected: "+req.Reason)
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) listApplications(c *gin.Context) {
	offset, limit := pageParams(c)
	status := partner.ApplicationStatus(c.Query("status"))
	apps, total, err := h.partners.ListApplications(c.Request.Context(), status, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "total": total})
}

func (h *Handler) startReview(c *gin.Context) {
	a, err := h.partners.StartReview(c.Request.Context(), c.Param("id"), h.actor(c))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "application_review_started", "application", a.ID, "")
	c.JSON(http.StatusOK, gin.H{"application": a})
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) approveApplication(c *gin.Context) {
	var req noteRequest
	_ = c.ShouldBindJSON(&req) // note is optional on approval
	a, p, err := h.partners.Approve(c.Request.Context(), c.Param("id"), h.actor(c), req.Note)
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "application_approved", "application", a.ID, req.Note)
	h.notify(c, a.ApplicantID, notification.KindApplicationDecision,
		"Vendor application approved", "Welcome aboard, "+a.BusinessName+". Your seller account is active.")
	c.JSON(http.StatusOK, gin.H{"application": a, "partner": p})
}

func (h *Handler) rejectApplication(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	a, err := h.partners.Reject(c.Request.Context(), c.Param("id"), h.actor(c), req.Note)
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "application_rejected", "application", a.ID, req.Note)
	h.notify(c, a.ApplicantID, notification.KindApplicationDecision,
		"Vendor application rejected", req.Note)
	c.JSON(http.StatusOK, gin.H{"application": a})
}

type tierRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) setPartnerTier(c *gin.Context) {
	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	p, err := h.partners.SetTier(c.Request.Context(), c.Param("id"), partner.Tier(req.Tier))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "partner_tier_changed", "partner", p.ID, req.Tier)
	c.JSON(http.StatusOK, gin.H{"partner": p})
}

func (h *Handler) listUsers(c *gin.Context) {
	offset, limit := pageParams(c)
	users, total, err := h.users.List(c.Request.Context(), offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	views := make([]*user.View, 0, len(users))
	for i := range users {
		views = append(views, user.ToView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": views, "total": total})
}

func (h *Handler) banUser(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	u, err := h.users.Ban(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "user_banned", "user", u.ID, req.Reason)
	c.JSON(http.StatusOK, gin.H{"user": user.ToView(u)})
}

func (h *Handler) unbanUser(c *gin.Context) {
	u, err := h.users.Unban(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "user_unbanned", "user", u.ID, "")
	c.JSON(http.StatusOK, gin.H{"user": user.ToView(u)})
}

type adminMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req adminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	m, err := h.messages.SendAdminMessage(c.Request.Context(), h.actor(c), req.RecipientID, req.Subject, req.Body)
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "admin_message_sent", "user", req.RecipientID, req.Subject)
	h.notify(c, req.RecipientID, notification.KindAdminNotice, req.Subject, req.Body)
	c.JSON(http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) listReviews(c *gin.Context) {
	offset, limit := pageParams(c)
	reviews, total, err := h.reviews.ListByTargetAny(c.Request.Context(),
		review.TargetType(c.Query("target_type")), c.Query("target_id"),
		review.Status(c.DefaultQuery("status", string(review.StatusPending))),
		offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": total})
}

func (h *Handler) getReview(c *gin.Context) {
	rv, err := h.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": rv})
}

type overrideRequest struct {
	Status string `json:"status"`
}

func (h *Handler) overrideReview(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	rv, err := h.reviews.ModerateOverride(c.Request.Context(), c.Param("id"), review.Status(req.Status))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "review_override", "review", rv.ID, req.Status)
	c.JSON(http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) listRules(c *gin.Context) {
	rules, err := h.payments.ListRules(c.Request.Context())
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

type ruleRequest struct {
	ID           string `json:"id"`
	Tier         string `json:"tier"`
	Category     string `json:"category"`
	PercentBps   int    `json:"percent_bps"`
	FlatFeeCents int64  `json:"flat_fee_cents"`
	MinCents     int64  `json:"min_cents"`
	MaxCents     int64  `json:"max_cents"`
	Active       bool   `json:"active"`
}

func (h *Handler) upsertRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	rule, err := h.payments.UpsertRule(c.Request.Context(), payment.RuleInput{
		ID:           req.ID,
		Tier:         req.Tier,
		Category:     req.Category,
		PercentBps:   req.PercentBps,
		FlatFeeCents: req.FlatFeeCents,
		MinCents:     req.MinCents,
		MaxCents:     req.MaxCents,
		Active:       req.Active,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "commission_rule_upserted", "commission_rule", rule.ID, rule.Tier)
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

func (h *Handler) listPayments(c *gin.Context) {
	offset, limit := pageParams(c)
	payments, total, err := h.payments.ListPayments(c.Request.Context(), payment.PaymentFilter{
		PartnerID: c.Query("partner_id"),
		Status:    payment.PaymentStatus(c.Query("status")),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total})
}

func (h *Handler) markInvoiced(c *gin.Context) {
	vp, err := h.payments.MarkInvoiced(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "payment_invoiced", "payment", vp.ID, "")
	c.JSON(http.StatusOK, gin.H{"payment": vp})
}

func (h *Handler) markPaid(c *gin.Context) {
	vp, err := h.payments.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	h.record(c, "payment_paid", "payment", vp.ID, "")
	c.JSON(http.StatusOK, gin.H{"payment": vp})
}

func (h *Handler) actor(c *gin.Context) string {
	v, _ := c.Get(sessionUserKey)
	id, _ := v.(string)
	return id
}

// notify fans a moderation outcome out to the affected user; failures are
// logged, the admin action itself already succeeded.
func (h *Handler) notify(c *gin.Context, userID string, kind notification.Kind, subject, body string) {
	if h.notifier == nil {
		return
	}
	if _, err := h.notifier.Notify(c.Request.Context(), userID, kind, subject, body, true); err != nil && h.log != nil {
		h.log.Warnf("notification failed kind=%s user=%s err=%v", kind, userID, err)
	}
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}

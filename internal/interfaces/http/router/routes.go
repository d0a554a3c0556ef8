package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lexflow/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers served under the versioned API
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Firm       *handler.FirmHandler
	Form       *handler.FormHandler
	Submission *handler.SubmissionHandler
	Signature  *handler.SignatureHandler
	Payment    *handler.PaymentHandler
	Webhook    *handler.WebhookHandler
	Client     *handler.ClientHandler
	Document   *handler.DocumentHandler
}

// Middleware holds the route-specific middleware. Authenticate is
// required; the others may be nil.
type Middleware struct {
	Authenticate gin.HandlerFunc
	// AfterAuth runs on authenticated routes once the principal is known
	AfterAuth []gin.HandlerFunc
	// AuthRateLimit guards register, login and refresh
	AuthRateLimit gin.HandlerFunc
	// UploadLimit bounds the document upload body
	UploadLimit gin.HandlerFunc
}

// IntakeGroups builds the route groups of the intake API
func IntakeGroups(h Handlers, mw Middleware) []RouteRegistrar {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	auth := NewDomainGroup("auth", "/auth").Use(mw.AuthRateLimit)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Client-facing pages reach these without an account
	public := NewDomainGroup("public", "")
	registerPublicIntake(public, h)
	public.POST("/sign/:submission_id", h.Submission.PublicSign)
	public.POST("/pay/:submission_id", h.Submission.PublicPay)
	registerPublicIntake(public.Group("public-aliases", "/public"), h)

	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.POST("/payment", h.Webhook.PaymentWebhook)
	webhooks.POST("/stripe", h.Webhook.PaymentWebhook)
	webhooks.POST("/signature", h.Webhook.SignatureWebhook)

	private := NewDomainGroup("private", "").Use(mw.Authenticate).Use(mw.AfterAuth...)

	identity := private.Group("identity", "")
	identity.GET("/users/me", h.Auth.CurrentUser)
	identity.GET("/firms/me", h.Firm.GetFirm)
	identity.PUT("/firms/me", h.Firm.UpdateFirm)

	intake := private.Group("intake", "/intake")
	intake.POST("/forms", h.Form.Create)
	intake.GET("/forms", h.Form.List)
	intake.GET("/forms/:id", h.Form.Get)
	intake.PUT("/forms/:id", h.Form.Update)
	intake.DELETE("/forms/:id", h.Form.Delete)
	intake.GET("/submissions", h.Submission.List)
	intake.GET("/submissions/:id", h.Submission.Get)

	lifecycle := private.Group("lifecycle", "/submissions/:id")
	lifecycle.POST("/signature/request", h.Signature.RequestSignature)
	lifecycle.GET("/signature/status", h.Signature.SignatureStatus)
	lifecycle.GET("/payment/status", h.Payment.PaymentStatus)

	clients := private.Group("clients", "/clients")
	clients.GET("", h.Client.List)
	clients.GET("/:id", h.Client.Get)
	clients.PUT("/:id", h.Client.Update)

	documents := private.Group("documents", "/documents")
	upload := []gin.HandlerFunc{h.Document.Upload}
	if mw.UploadLimit != nil {
		upload = append([]gin.HandlerFunc{mw.UploadLimit}, upload...)
	}
	documents.POST("/upload", upload...)
	documents.GET("/submission/:submission_id", h.Document.ListBySubmission)
	documents.GET("/:id", h.Document.Get)
	documents.GET("/:id/download", h.Document.Download)
	documents.DELETE("/:id", h.Document.Delete)

	return []RouteRegistrar{system, auth, public, webhooks, private}
}

// registerPublicIntake adds the form and status routes that the client-facing
// pages call, both at the API root and under /public
func registerPublicIntake(g *DomainGroup, h Handlers) {
	g.GET("/forms/:id", h.Form.GetPublicForm)
	g.POST("/forms/:id/submit", h.Submission.Submit)
	g.GET("/submissions/:id", h.Submission.GetPublicStatus)
}

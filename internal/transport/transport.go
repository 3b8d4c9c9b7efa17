package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/eventhub/internal/service"
	"github.com/ds124wfegd/eventhub/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *AuthHandler
	Event     *EventHandler
	Booking   *BookingHandler
	Payment   *PaymentHandler
	Community *CommunityHandler
	Dashboard *DashboardHandler
}

func NewHandlers(s *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(s.Auth),
		Event:     NewEventHandler(s.Events),
		Booking:   NewBookingHandler(s.Bookings),
		Payment:   NewPaymentHandler(s.Payments),
		Community: NewCommunityHandler(s.Forum, s.Polls, s.Questions),
		Dashboard: NewDashboardHandler(s.Dashboard),
	}
}

func InitRoutes(h *Handlers, authenticator middleware.Authenticator, requestTimeout int) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(requestTimeout))

	auth := middleware.Auth(authenticator)

	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.Auth.Register)
			authRoutes.GET("/verify-email", h.Auth.VerifyEmail)
			authRoutes.POST("/resend-verification", h.Auth.ResendVerification)
			authRoutes.GET("/verification-status", h.Auth.CheckVerificationStatus)
			authRoutes.POST("/login", h.Auth.Login)
			authRoutes.POST("/verify-otp", h.Auth.VerifyOtp)
			authRoutes.POST("/resend-otp", h.Auth.ResendOtp)
			authRoutes.POST("/social-login", h.Auth.SocialLogin)
			authRoutes.POST("/logout", auth, h.Auth.Logout)
		}

		users := api.Group("/users/me", auth)
		{
			users.GET("", h.Auth.GetProfile)
			users.PUT("", h.Auth.UpdateProfile)
			users.PUT("/password", h.Auth.ChangePassword)
			users.POST("/social", h.Auth.LinkSocial)
		}

		events := api.Group("/events")
		{
			events.GET("", h.Event.ListEvents)
			events.GET("/search", h.Event.SearchEvents)
			events.GET("/filter", h.Event.FilterEvents)
			events.GET("/category/:category", h.Event.GetEventsByCategory)
			events.GET("/mine", auth, h.Event.GetMyEvents)
			events.GET("/:id", h.Event.GetEvent)
			events.POST("", auth, h.Event.CreateEvent)
			events.PUT("/:id", auth, h.Event.UpdateEvent)
			events.DELETE("/:id", auth, h.Event.DeleteEvent)
			events.GET("/:id/bookings", auth, h.Event.GetEventBookings)
			events.POST("/:id/book", auth, h.Booking.BookEvent)

			events.GET("/:id/posts", h.Community.GetEventPosts)
			events.POST("/:id/posts", auth, h.Community.CreatePost)
			events.GET("/:id/polls", h.Community.GetEventPolls)
			events.POST("/:id/polls", auth, h.Community.CreatePoll)
			events.GET("/:id/questions", h.Community.GetEventQuestions)
			events.POST("/:id/questions", auth, h.Community.AskQuestion)
		}

		api.GET("/posts/:post_id", h.Community.GetPost)
		api.POST("/posts/:post_id/comments", auth, h.Community.AddComment)
		api.POST("/polls/:poll_id/vote", auth, h.Community.Vote)
		api.POST("/questions/:question_id/answer", auth, h.Community.AnswerQuestion)

		tickets := api.Group("/tickets", auth)
		{
			tickets.GET("", h.Booking.GetMyTickets)
			tickets.GET("/:id", h.Booking.GetTicket)
			tickets.GET("/:id/qrcode", h.Booking.TicketQRCode)
			tickets.POST("/:id/confirm", h.Booking.ConfirmTicket) // event creator only
		}

		payments := api.Group("/payments", auth)
		{
			payments.POST("/orders", h.Payment.CreatePaymentOrder)
			payments.POST("/verify", h.Payment.VerifyPayment)
		}

		orders := api.Group("/orders", auth)
		{
			orders.GET("", h.Payment.ListOrders)
			orders.GET("/:id", h.Payment.GetOrder)
			orders.POST("", h.Payment.CreateOrder)
		}

		dashboard := api.Group("/dashboard", auth)
		{
			dashboard.GET("", h.Dashboard.Overview)
			dashboard.GET("/events/:id", h.Dashboard.EventDetails)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})

	return router
}

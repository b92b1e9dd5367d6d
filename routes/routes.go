package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotel-frontdesk/controllers"
	"hotel-frontdesk/middleware"
	"hotel-frontdesk/services"
)

type Controllers struct {
	Rooms    *controllers.RoomController
	Sessions *controllers.SessionController
	History  *controllers.HistoryController
	Hotels   *controllers.HotelController
	Invoices *controllers.InvoiceController
}

type Options struct {
	CORSOrigins []string
	JWTSecret   string
}

// SetupRouter wires the front-desk API. /health and /metrics stay outside
// staff authentication.
func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.StaffAuth(opts.JWTSecret))
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.POST("/:id/checkin", ctl.Rooms.CheckIn)
			rooms.POST("/:id/checkout", ctl.Rooms.CheckOut)
			rooms.POST("/:id/clean", ctl.Rooms.Clean)
			rooms.POST("/:id/maintenance", ctl.Rooms.ToggleMaintenance)
			rooms.POST("/:id/transfer", ctl.Rooms.Transfer)
			rooms.GET("/:id/quote", ctl.Rooms.Quote)

			rooms.GET("/:id/session", ctl.Sessions.GetSession)
			rooms.PUT("/:id/session", ctl.Sessions.AmendSession)
		}

		hotels := api.Group("/hotels")
		{
			hotels.GET("/:id", ctl.Hotels.GetHotel)
			hotels.GET("/:id/rooms/available", ctl.Rooms.AvailableRooms)
		}

		api.GET("/sessions", ctl.Sessions.ListSessions)

		history := api.Group("/history")
		{
			history.GET("", ctl.History.List)
			history.GET("/export", ctl.History.Export)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", ctl.Invoices.CreateInvoice)
			invoices.GET("/:id", ctl.Invoices.GetInvoice)
			invoices.PUT("/:id", ctl.Invoices.UpdateInvoice)
			invoices.DELETE("/:id", ctl.Invoices.DeleteInvoice)
			invoices.PATCH("/:id/status", ctl.Invoices.UpdateStatus)
			invoices.POST("/:id/email", ctl.Invoices.EmailInvoice)
		}
	}

	return r
}

// New builds every controller around one front desk.
func New(desk *services.FrontDesk, opts Options) *gin.Engine {
	return SetupRouter(Controllers{
		Rooms:    controllers.NewRoomController(desk),
		Sessions: controllers.NewSessionController(desk),
		History:  controllers.NewHistoryController(desk),
		Hotels:   controllers.NewHotelController(desk),
		Invoices: controllers.NewInvoiceController(desk),
	}, opts)
}

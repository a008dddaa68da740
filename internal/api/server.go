package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/pyconid/pyconid25-be-sub000/docs"
	v1 "github.com/pyconid/pyconid25-be-sub000/internal/api/handler/v1"
	"github.com/pyconid/pyconid25-be-sub000/internal/api/middleware"
	"github.com/pyconid/pyconid25-be-sub000/internal/config"
	"github.com/pyconid/pyconid25-be-sub000/internal/gateway"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository/dao"
	"github.com/pyconid/pyconid25-be-sub000/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	gw := gateway.NewHTTPClient(conf.Gateway)

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	ticketHandler := s.initTicketHandler(db)
	voucherHandler := s.initVoucherHandler(db)
	paymentHandler := s.initPaymentHandler(db, gw)
	staffSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	s.MountHandlers(authHandler, userHandler, ticketHandler, voucherHandler, paymentHandler, staffSvc)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initTicketHandler(db *gorm.DB) *v1.TicketHandler {
	ticketDAO := dao.NewTicketDAO(db)
	repo := repository.NewTicketRepository(ticketDAO)
	svc := service.NewTicketService(repo)
	handler := v1.NewTicketHandler(svc)

	return handler
}

func (s *Server) initVoucherHandler(db *gorm.DB) *v1.VoucherHandler {
	voucherDAO := dao.NewVoucherDAO(db)
	repo := repository.NewVoucherRepository(voucherDAO)
	svc := service.NewVoucherService(repo)
	handler := v1.NewVoucherHandler(svc)

	return handler
}

func (s *Server) initPaymentHandler(db *gorm.DB, gw gateway.Client) *v1.PaymentHandler {
	repo := repository.NewPaymentRepository(dao.NewPaymentDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	voucherRepo := repository.NewVoucherRepository(dao.NewVoucherDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewPaymentService(repo, ticketRepo, voucherRepo, userRepo, gw, s.Config.API.PaymentRedirectURL)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewPaymentHandler(svc, uSvc, s.Config.Webhook.CallbackToken)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	ticketHandler *v1.TicketHandler,
	voucherHandler *v1.VoucherHandler,
	paymentHandler *v1.PaymentHandler,
	staffSvc middleware.StaffUserService,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)

		// The gateway authenticates with x-callback-token, not a JWT.
		auth.POST("/payment/webhook", paymentHandler.HandleWebhook)
	}

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/me", userHandler.HandleGetMe)
		users.PATCH("/users/me", userHandler.HandleUpdateMe)

		users.GET("/tickets", ticketHandler.HandleGetTickets)
		users.GET("/tickets/:ticketID", ticketHandler.HandleGetTicket)

		users.POST("/payment", paymentHandler.HandleCreatePayment)
		users.GET("/payment", paymentHandler.HandleListPayments)
		users.GET("/payment/voucher/validate", paymentHandler.HandleValidateVoucher)
		users.GET("/payment/:paymentID", paymentHandler.HandleGetPayment)
	}

	staff := s.Router.Group(basePath, verifyJWT, middleware.RequireStaff(staffSvc))
	{
		staff.POST("/tickets", ticketHandler.HandleCreateTicket)
		staff.PATCH("/tickets/:ticketID", ticketHandler.HandleUpdateTicket)
		staff.POST("/vouchers", voucherHandler.HandleCreateVoucher)
		staff.GET("/vouchers/:voucherID", voucherHandler.HandleGetVoucher)
		staff.PATCH("/vouchers/:voucherID", voucherHandler.HandleUpdateVoucher)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "PyCon ID Conference API"
	docs.SwaggerInfo.Description = "Ticketing, vouchers and payments for the conference."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

package server

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/bookmarkd/internal/cache"
	"github.com/mdouchement/bookmarkd/internal/database"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/ordering"
	"github.com/mdouchement/bookmarkd/internal/server/middlewares"
	"github.com/mdouchement/bookmarkd/internal/server/service"
	"github.com/mdouchement/bookmarkd/internal/server/session"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// An IOC is an Iversion Of Control pattern used to init the server package.
type IOC struct {
	Version        string
	Database       database.Client
	Logger         *logrus.Logger
	NoRegistration bool
	// AccessLog receives the request log lines, Logger's writer when nil.
	AccessLog io.Writer
	// StrictReorder rejects batch reorders leaving a tab with gaps or duplicates.
	StrictReorder bool
	// JWT params
	SigningKey []byte
	// Session params
	TokenTTL     time.Duration
	SecureCookie bool
	// Cache params, a nil Redis disables the cache.
	Redis    *redis.Client
	CacheTTL time.Duration
	// Screenshots captures bookmarks screenshots in background.
	Screenshots service.Screenshotter
	// ImportLimit is the maximum size of an import payload (e.g. 10M).
	ImportLimit string
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	access := ctrl.AccessLog
	if access == nil {
		access = ctrl.Logger.Writer()
	}
	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
		Output: access,
	}))
	engine.JSONSerializer = middlewares.NewJSONSerializer()
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	////////////
	// Router //
	////////////

	var strategy ordering.Strategy = ordering.Trusting{}
	if ctrl.StrictReorder {
		strategy = ordering.Strict{}
	}
	mutator := ordering.New(ctrl.Database, strategy)

	sessions := session.NewManager(ctrl.Database, ctrl.SigningKey, ctrl.TokenTTL)
	tabs := service.NewTab(ctrl.Database, mutator)
	tcache := cache.New(tabs, ctrl.Redis, ctrl.CacheTTL)

	// Middlewares are attached per route, a group level Use registers catch-all
	// routes that would answer 404 where the router answers 405.
	router := engine.Group("")
	api := router.Group("/api")
	restricted := func(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{
			middlewares.Session(sessions),
			middlewares.EvictOnWrite(tcache, ctrl.Logger),
		}, m...)
	}

	// generic handlers
	//
	version := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	}
	router.GET("/", version)
	router.GET("/version", version)
	api.GET("/og", Preview)

	//
	// auth handlers
	//
	auth := &auth{
		users:        service.NewUser(ctrl.Database, sessions),
		sessions:     sessions,
		secureCookie: ctrl.SecureCookie,
	}
	if !ctrl.NoRegistration {
		api.POST("/auth/register", auth.Register)
	}
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/logout", auth.Logout)
	api.GET("/auth/me", auth.Me, restricted()...)
	api.POST("/auth/password", auth.UpdatePassword, restricted()...)

	//
	// tab handlers
	//
	tab := &tab{
		tabs:  tabs,
		cache: tcache,
	}
	api.GET("/tabs", tab.List, restricted()...)
	api.POST("/tabs", tab.Create, restricted()...)
	api.POST("/tabs/reorder", tab.Reorder, restricted()...)
	api.GET("/tabs/:id", tab.Show, restricted()...)
	api.PUT("/tabs/:id", tab.Update, restricted()...)
	api.DELETE("/tabs/:id", tab.Delete, restricted()...)

	//
	// bookmark handlers
	//
	bookmark := &bookmark{
		bookmarks: service.NewBookmark(ctrl.Database, mutator, ctrl.Screenshots),
	}
	api.GET("/bookmarks", bookmark.List, restricted()...)
	api.POST("/bookmarks", bookmark.Create, restricted()...)
	api.PUT("/bookmarks/move", bookmark.Move, restricted()...)
	api.POST("/bookmarks/reorder", bookmark.Reorder, restricted()...)
	api.POST("/bookmarks/update-order", bookmark.UpdateOrder, restricted()...)
	api.GET("/bookmarks/:id", bookmark.Show, restricted()...)
	api.PUT("/bookmarks/:id", bookmark.Update, restricted()...)
	api.DELETE("/bookmarks/:id", bookmark.Delete, restricted()...)
	api.POST("/screenshot", bookmark.Screenshot, restricted()...)

	//
	// transfer handlers
	//
	transfer := &transfer{
		transfers: service.NewTransfer(ctrl.Database),
	}
	limit := ctrl.ImportLimit
	if limit == "" {
		limit = "10M"
	}
	api.GET("/export", transfer.Export, restricted()...)
	api.POST("/import", transfer.Import, restricted(middleware.BodyLimit(limit))...)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}

package middleware

import (
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"inciq/pkg/knowledge"
	"inciq/pkg/rank"
	"inciq/pkg/store"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	Store         store.CatalogStore
	Graphs        *knowledge.Provider
	Scorer        rank.Scorer
	ScorerTimeout time.Duration

	Queue *amqp091.Channel
	Key   *keyfunc.Keyfunc
	S3    *s3.Client

	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}

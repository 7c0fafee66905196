// Package httpapi exposes the directory service over HTTP using Fiber.
// Domain faults are translated to status codes here; services never see
// HTTP concerns.
package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/feliperosa/vinculo/internal/fault"
	"github.com/feliperosa/vinculo/internal/services/directory/auth"
	"github.com/feliperosa/vinculo/internal/services/directory/connections"
	"github.com/feliperosa/vinculo/internal/services/directory/profile"
	"github.com/feliperosa/vinculo/internal/services/directory/scraps"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
	"github.com/feliperosa/vinculo/internal/services/directory/token"
)

const (
	bearerPrefix    = "Bearer "
	accessTokenName = "access_token"
	localUserID     = "userID"
)

var statusByKind = map[fault.Kind]int{
	fault.KindInvalidCredentials: fiber.StatusUnauthorized,
	fault.KindResourceNotFound:   fiber.StatusNotFound,
	fault.KindInvalidOperation:   fiber.StatusBadRequest,
	fault.KindUnauthorized:       fiber.StatusForbidden,
	fault.KindConflict:           fiber.StatusConflict,
}

// API bundles the directory services behind a Fiber app.
type API struct {
	auth        *auth.Service
	connections *connections.Service
	scraps      *scraps.Service
	profile     *profile.Service
	encrypter   token.Encrypter
	users       storage.UserStore
}

// New builds the API and registers its routes on a fresh Fiber app.
func New(authSvc *auth.Service, connectionsSvc *connections.Service, scrapsSvc *scraps.Service, profileSvc *profile.Service, encrypter token.Encrypter, users storage.UserStore) *fiber.App {
	api := &API{
		auth:        authSvc,
		connections: connectionsSvc,
		scraps:      scrapsSvc,
		profile:     profileSvc,
		encrypter:   encrypter,
		users:       users,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(traceRequests)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/accounts", api.register)
	app.Post("/sessions", api.login)

	authorized := app.Group("", api.requireUser)
	authorized.Get("/me", api.me)
	authorized.Get("/users/:id", api.userDetail)
	authorized.Post("/connections", api.requestConnection)
	authorized.Patch("/connections/:id/accept", api.acceptConnection)
	authorized.Patch("/connections/:id/decline", api.declineConnection)
	authorized.Delete("/connections/:id", api.deleteConnection)
	authorized.Get("/connections", api.listConnections)
	authorized.Post("/scraps", api.sendScrap)
	authorized.Get("/scraps", api.listScraps)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func traceRequests(c *fiber.Ctx) error {
	tracer := otel.Tracer("directory/httpapi")
	ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path())
	defer span.End()
	c.SetUserContext(ctx)

	err := c.Next()
	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.target", c.Path()),
		attribute.Int("http.status_code", c.Response().StatusCode()),
	)
	return err
}

// requireUser authenticates the request from a bearer header or the
// access_token cookie and stashes the caller's user id in locals.
func (a *API) requireUser(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Cookies(accessTokenName)
	}
	if tokenString == "" {
		return unauthorized(c)
	}
	subject, err := a.encrypter.Subject(tokenString)
	if err != nil || subject == "" {
		return unauthorized(c)
	}
	if _, err := a.users.GetUserByID(c.UserContext(), subject); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return unauthorized(c)
		}
		return err
	}
	c.Locals(localUserID, subject)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > len(bearerPrefix) && header[:len(bearerPrefix)] == bearerPrefix {
		return header[len(bearerPrefix):]
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
}

func actingUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(localUserID).(string)
	return userID
}

func writeFault(c *fiber.Ctx, f *fault.Fault) error {
	status, known := statusByKind[f.Kind]
	if !known {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error": f.Message,
		"kind":  string(f.Kind),
	})
}

type connectionPayload struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toConnectionPayload(connection storage.Connection) connectionPayload {
	return connectionPayload{
		ID:          connection.ID,
		SenderID:    connection.SenderID,
		RecipientID: connection.RecipientID,
		Status:      string(connection.Status),
		CreatedAt:   connection.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   connection.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type userSummaryPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type connectionWithUsersPayload struct {
	connectionPayload
	Sender    userSummaryPayload `json:"sender"`
	Recipient userSummaryPayload `json:"recipient"`
}

type scrapPayload struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
}

func toScrapPayload(scrap storage.Scrap) scrapPayload {
	return scrapPayload{
		ID:          scrap.ID,
		SenderID:    scrap.SenderID,
		RecipientID: scrap.RecipientID,
		Message:     scrap.Message,
		CreatedAt:   scrap.CreatedAt.UTC().Format(time.RFC3339),
	}
}

package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feliperosa/vinculo/internal/services/directory/auth"
	"github.com/feliperosa/vinculo/internal/services/directory/storage"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	res, err := a.auth.Register(c.UserContext(), auth.Registration{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	user := res.Success()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"username": user.Username,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	res, err := a.auth.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	session := res.Success()
	// The cookie must not outlive the token it carries.
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenName,
		Value:    session.AccessToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(a.encrypter.TTL()),
	})
	return c.JSON(fiber.Map{"access_token": session.AccessToken})
}

func (a *API) me(c *fiber.Ctx) error {
	return a.detail(c, actingUserID(c))
}

func (a *API) userDetail(c *fiber.Ctx) error {
	return a.detail(c, c.Params("id"))
}

func (a *API) detail(c *fiber.Ctx, userID string) error {
	res, err := a.profile.FindUserByID(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	detail := res.Success()
	return c.JSON(fiber.Map{
		"id":           detail.ID,
		"name":         detail.Name,
		"username":     detail.Username,
		"bio":          detail.Bio,
		"location":     detail.Location,
		"title":        detail.Title,
		"connections":  detail.Connections,
		"scraps":       detail.Scraps,
		"member_since": detail.MemberSince.UTC().Format(time.RFC3339),
	})
}

type requestConnectionRequest struct {
	RecipientID string `json:"recipient_id"`
}

func (a *API) requestConnection(c *fiber.Ctx) error {
	var req requestConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	res, err := a.connections.Request(c.UserContext(), actingUserID(c), req.RecipientID)
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	return c.Status(fiber.StatusCreated).JSON(toConnectionPayload(res.Success()))
}

func (a *API) acceptConnection(c *fiber.Ctx) error {
	res, err := a.connections.Accept(c.UserContext(), actingUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	return c.JSON(toConnectionPayload(res.Success()))
}

func (a *API) declineConnection(c *fiber.Ctx) error {
	res, err := a.connections.Decline(c.UserContext(), actingUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	return c.JSON(toConnectionPayload(res.Success()))
}

func (a *API) deleteConnection(c *fiber.Ctx) error {
	res, err := a.connections.Delete(c.UserContext(), actingUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	return c.JSON(toConnectionPayload(res.Success()))
}

func (a *API) listConnections(c *fiber.Ctx) error {
	status := storage.ConnectionStatus(c.Query("status"))
	direction := storage.Direction(c.Query("direction"))
	if status != "" && status != storage.StatusPending && status != storage.StatusAccepted && status != storage.StatusDeclined {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
	}
	if direction != "" && direction != storage.DirectionSent && direction != storage.DirectionReceived {
		return fiber.NewError(fiber.StatusBadRequest, "invalid direction filter")
	}

	edges, err := a.connections.List(c.UserContext(), actingUserID(c), status, direction)
	if err != nil {
		return err
	}
	payload := make([]connectionWithUsersPayload, 0, len(edges))
	for _, edge := range edges {
		payload = append(payload, connectionWithUsersPayload{
			connectionPayload: toConnectionPayload(edge.Connection),
			Sender: userSummaryPayload{
				ID:       edge.Sender.ID,
				Name:     edge.Sender.Name,
				Username: edge.Sender.Username,
			},
			Recipient: userSummaryPayload{
				ID:       edge.Recipient.ID,
				Name:     edge.Recipient.Name,
				Username: edge.Recipient.Username,
			},
		})
	}
	return c.JSON(fiber.Map{"connections": payload})
}

type sendScrapRequest struct {
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

func (a *API) sendScrap(c *fiber.Ctx) error {
	var req sendScrapRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	res, err := a.scraps.Send(c.UserContext(), actingUserID(c), req.RecipientID, req.Message)
	if err != nil {
		return err
	}
	if res.Failed() {
		return writeFault(c, res.Failure())
	}
	return c.Status(fiber.StatusCreated).JSON(toScrapPayload(res.Success()))
}

func (a *API) listScraps(c *fiber.Ctx) error {
	received, err := a.scraps.ListReceived(c.UserContext(), actingUserID(c))
	if err != nil {
		return err
	}
	payload := make([]scrapPayload, 0, len(received))
	for _, scrap := range received {
		payload = append(payload, toScrapPayload(scrap))
	}
	return c.JSON(fiber.Map{"scraps": payload})
}

package contentsite

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentsite/events"
)

const revalidateHeader = "X-Revalidate-Secret"

// handleRevalidate is the publish hook the CMS calls after a change. It
// forwards the event to the bus, which purges the caches holding the tag.
func (a *App) handleRevalidate(c echo.Context) error {
	if a.Config.RevalidateSecret == "" {
		return echo.ErrNotFound
	}
	secret := c.Request().Header.Get(revalidateHeader)
	if secret == "" {
		secret = c.QueryParam("secret")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.RevalidateSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid secret"})
	}
	var ev events.Event
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event"})
	}
	ev.Tag = strings.TrimSpace(ev.Tag)
	if ev.Tag == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tag is required"})
	}
	if err := a.Bus.Publish(c.Request().Context(), ev); err != nil {
		return err
	}
	a.Logger.Info("Revalidated", "tag", ev.Tag, "version", ev.Version, "path", ev.Path)
	return c.JSON(http.StatusOK, map[string]any{"revalidated": true, "tag": ev.Tag})
}

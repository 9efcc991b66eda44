package contentsite

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handlePreview enters draft mode. The CMS links here with the shared secret
// and the path of the document being edited.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many preview attempts. Try again later.")
	}
	secret := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.PreviewSecret)) != 1 {
		a.previewLimiter.Record(ip)
		return c.String(http.StatusUnauthorized, "Invalid preview secret")
	}
	target, ok := safeRedirectPath(c.QueryParam("path"))
	if !ok {
		return c.String(http.StatusBadRequest, "Preview path must be a site path")
	}
	if err := setPreviewSession(c); err != nil {
		return err
	}
	a.Logger.Info("Preview mode enabled", "path", target, "ip", ip)
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

// handleExitPreview leaves draft mode and returns to the page being viewed.
func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	target, ok := safeRedirectPath(c.FormValue("path"))
	if !ok {
		target = "/"
	}
	return c.Redirect(http.StatusSeeOther, target)
}

package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/auth"
	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/host"
	"github.com/hpungsan/adapty/internal/ops"
	"github.com/hpungsan/adapty/internal/render"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/study"
)

// tokenCookie carries the login token.
const tokenCookie = "adapty_token"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	log      *zap.Logger
	renderer *Renderer
	sessions *host.Registry
	tokens   *auth.Tokens
}

// page builds the common page fields for r.
func (h *Handlers) page(r *http.Request, title, nav string) PageData {
	p := PageData{Title: title, Version: h.renderer.version, Nav: nav}
	if c, err := r.Cookie(tokenCookie); err == nil {
		p.Email, p.LoggedIn = h.tokens.Email(c.Value)
	}
	return p
}

func (h *Handlers) loggedIn(r *http.Request) bool {
	c, err := r.Cookie(tokenCookie)
	return err == nil && h.tokens.Valid(c.Value)
}

// HandleLoginPage handles GET /login.
func (h *Handlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/decks", http.StatusFound)
		return
	}
	h.renderer.renderPage(w, r, "login", LoginPageData{PageData: h.page(r, "Log in", "")})
}

// HandleLogin handles POST /login. Any non-empty email and password are accepted.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	creds := auth.Credentials{Email: r.FormValue("email"), Password: r.FormValue("password")}

	token, err := h.tokens.Login(creds)
	if err != nil {
		if wantsJSON(r) || r.Header.Get("HX-Request") == "true" {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderer.renderPageStatus(w, r, http.StatusUnauthorized, "login", LoginPageData{
			PageData: h.page(r, "Log in", ""),
			Email:    creds.Email,
			Error:    errors.As(err).Message,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Info("user logged in", zap.String("email", strings.TrimSpace(creds.Email)))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"logged_in": true})
		return
	}
	http.Redirect(w, r, "/decks", http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(tokenCookie); err == nil {
		h.tokens.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleDecks handles GET /decks, the deck picker.
func (h *Handlers) HandleDecks(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListDecks(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "decks", DecksPageData{
		PageData:   h.page(r, "Decks", "decks"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleStartStudy handles POST /decks/{id}/study. It opens a session and redirects to it.
func (h *Handlers) HandleStartStudy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("deck ID is required"))
		return
	}

	d, err := ops.FetchDeck(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	cur, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	sid, view := h.sessions.Start(d.Deck, cur.Display)

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, map[string]any{
			"session_id": sid,
			"view":       view,
		})
		return
	}

	target := "/study/" + sid
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleStudy handles GET /study/{sid}.
func (h *Handlers) HandleStudy(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	view, err := h.sessions.View(sid)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"session_id": sid, "view": view})
		return
	}
	h.renderStudy(w, r, sid, view)
}

// HandleIntent handles POST /study/{sid}/{intent}: one user action on a session.
//
// A completed session is dropped from the registry, so the response to the
// finishing intent is the only place its summary is shown.
func (h *Handlers) HandleIntent(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")
	in, err := host.ParseIntent(r.PathValue("intent"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	view, tr, err := h.sessions.Act(sid, in)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"session_id": sid,
			"transition": tr,
			"view":       view,
		})
		return
	}

	if tr == study.Completed || r.Header.Get("HX-Request") == "true" {
		h.renderStudy(w, r, sid, view)
		return
	}
	http.Redirect(w, r, "/study/"+sid, http.StatusSeeOther)
}

// renderStudy renders the study page, or only the study panel when htmx targets it.
func (h *Handlers) renderStudy(w http.ResponseWriter, r *http.Request, sid string, view host.View) {
	data := StudyPageData{
		PageData:  h.page(r, view.DeckName, "decks"),
		SessionID: sid,
		View:      view,
		Card:      cardHTML(view),
	}
	if r.Header.Get("HX-Target") == "study" {
		h.renderer.renderBlock(w, http.StatusOK, "study", "study-panel", data)
		return
	}
	h.renderer.renderPage(w, r, "study", data)
}

// HandleSettingsPage handles GET /settings.
func (h *Handlers) HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	cur, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, cur)
		return
	}
	h.renderSettings(w, r, http.StatusOK, cur.Settings, nil, r.URL.Query().Get("saved") == "1")
}

// HandleSettings handles POST /settings. The submitted form replaces the whole settings value.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	s, fieldErrs, err := parseSettings(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		h.settingsRejected(w, r, s, errors.NewInvalidSettings(fieldErrs))
		return
	}

	out, err := ops.SetSettings(r.Context(), h.db, s)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidSettings) {
			h.settingsRejected(w, r, s, err)
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}
	h.settingsSaved(w, r, out)
}

// HandlePreset handles POST /settings/preset.
func (h *Handlers) HandlePreset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	name := r.FormValue("preset")
	if name == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("preset is required"))
		return
	}

	out, err := ops.ApplyPreset(r.Context(), h.db, name)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.settingsSaved(w, r, out)
}

func (h *Handlers) settingsSaved(w http.ResponseWriter, r *http.Request, out *ops.SettingsOutput) {
	h.sessions.SetDisplay(out.Display)
	h.log.Info("settings updated",
		zap.Int("font_size", out.Settings.FontSize),
		zap.String("font_family", out.Settings.FontFamily),
		zap.Bool("high_contrast", out.Settings.HighContrast),
		zap.Bool("reduced_motion", out.Settings.ReducedMotion))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

func (h *Handlers) settingsRejected(w http.ResponseWriter, r *http.Request, s settings.Settings, err error) {
	if wantsJSON(r) || r.Header.Get("HX-Request") == "true" {
		appErr := errors.As(err)
		if wantsJSON(r) {
			renderJSON(w, appErr.Status, map[string]any{
				"error": map[string]any{
					"code":    string(appErr.Code),
					"message": appErr.Message,
					"status":  appErr.Status,
					"fields":  appErr.Details["fields"],
				},
			})
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}
	fields, _ := errors.As(err).Details["fields"].(map[string]string)
	h.renderSettings(w, r, http.StatusUnprocessableEntity, s, fields, false)
}

func (h *Handlers) renderSettings(w http.ResponseWriter, r *http.Request, status int, s settings.Settings, fieldErrs map[string]string, saved bool) {
	h.renderer.renderPageStatus(w, r, status, "settings", SettingsPageData{
		PageData:    h.page(r, "Settings", "settings"),
		Settings:    s,
		SpeedLabel:  settings.SpeedLabel(s.AnimationSpeed),
		Fonts:       settings.FontOptions(),
		Presets:     settings.ColorPresets(),
		FieldErrors: fieldErrs,
		Saved:       saved,
		MinFontSize: settings.MinFontSize,
		MaxFontSize: settings.MaxFontSize,
	})
}

// HandleTheme handles GET /theme.css: the card theme built from the stored settings.
func (h *Handlers) HandleTheme(w http.ResponseWriter, r *http.Request) {
	cur, err := ops.GetSettings(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.ThemeCSS(render.Props(deck.Card{}, false, cur.Display))))
}

// parseSettings reads a complete settings value from a JSON body or a form.
// Unparseable numbers are reported per field, like validation failures.
func parseSettings(r *http.Request) (settings.Settings, map[string]string, error) {
	var s settings.Settings
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			return s, nil, errors.NewInvalidRequest("invalid JSON body")
		}
		return s, nil, nil
	}

	if err := r.ParseForm(); err != nil {
		return s, nil, errors.NewInvalidRequest("invalid form data")
	}

	fieldErrs := map[string]string{}
	if v, err := strconv.Atoi(r.FormValue("font_size")); err == nil {
		s.FontSize = v
	} else {
		fieldErrs["font_size"] = "must be a whole number"
	}
	if v, err := strconv.ParseFloat(r.FormValue("animation_speed"), 64); err == nil {
		s.AnimationSpeed = v
	} else {
		fieldErrs["animation_speed"] = "must be a number"
	}
	s.FontFamily = r.FormValue("font_family")
	s.CardColor = r.FormValue("card_color")
	s.TextColor = r.FormValue("text_color")
	s.DarkMode = formBool(r, "dark_mode")
	s.HighContrast = formBool(r, "high_contrast")
	s.ReducedMotion = formBool(r, "reduced_motion")
	return s, fieldErrs, nil
}

// formBool reads a checkbox. Unchecked boxes are absent from the form.
func formBool(r *http.Request, name string) bool {
	v := r.FormValue(name)
	return v == "on" || v == "true" || v == "1"
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

package channels

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/session"
)

const (
	authCookie      = "qx_auth"
	authTTL         = 24 * time.Hour
	janitorInterval = time.Minute
)

type WebChatChannel struct {
	name     string
	addr     string
	auth     bool
	username string
	password string
	cookie   string
	maxBody  int64

	sessions *session.Store
	server   *http.Server
	logins   map[string]time.Time // token -> expiry
	mu       sync.Mutex
}

func NewWebChatChannel(cfg *config.Config, sessions *session.Store) *WebChatChannel {
	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	cookie := cfg.Sessions.CookieName
	if cookie == "" {
		cookie = "qx_session"
	}
	return &WebChatChannel{
		name:     cfg.Engine.Name,
		addr:     cfg.Addr(),
		auth:     cfg.AuthEnabled(),
		username: cfg.Server.Username,
		password: cfg.Server.Password,
		cookie:   cookie,
		maxBody:  maxBody,
		sessions: sessions,
		logins:   make(map[string]time.Time),
	}
}

// createLogin generates a random login token and stores it.
func (c *WebChatChannel) createLogin() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	now := time.Now()
	c.mu.Lock()
	c.pruneLoginsLocked(now)
	c.logins[token] = now.Add(authTTL)
	c.mu.Unlock()
	return token, nil
}

func (c *WebChatChannel) pruneLoginsLocked(now time.Time) {
	for token, expiry := range c.logins {
		if !now.Before(expiry) {
			delete(c.logins, token)
		}
	}
}

// validLogin checks if the request carries a valid login cookie.
func (c *WebChatChannel) validLogin(r *http.Request) bool {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return false
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	expiry, ok := c.logins[cookie.Value]
	if ok && !now.Before(expiry) {
		delete(c.logins, cookie.Value)
		return false
	}
	return ok
}

// requireAuth wraps a handler with authentication. If auth is not configured, it passes through.
func (c *WebChatChannel) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.auth || c.validLogin(r) {
			next(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// requireAuthAPI is like requireAuth but returns 401 JSON for API endpoints.
func (c *WebChatChannel) requireAuthAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.auth || c.validLogin(r) {
			next(w, r)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
}

// Handler returns the HTTP routes of the chat service.
func (c *WebChatChannel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", c.requireAuth(c.handleUI))
	mux.HandleFunc("/chat", c.requireAuthAPI(c.handleChat))
	mux.HandleFunc("/health", c.handleHealth)
	mux.HandleFunc("/login", c.handleLogin)
	mux.HandleFunc("/logout", c.handleLogout)
	return mux
}

// Run serves HTTP and evicts idle sessions until ctx is cancelled.
func (c *WebChatChannel) Run(ctx context.Context) error {
	c.server = &http.Server{
		Addr:              c.addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoCF("webchat", "WebChat listening", map[string]interface{}{
			"addr": c.addr,
			"auth": c.auth,
		})
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webchat server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return c.sessions.Run(ctx, janitorInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (c *WebChatChannel) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxBody)

	req, err := c.parseChatRequest(r)
	if err != nil {
		logger.WarnCF("webchat", "Bad chat request", map[string]interface{}{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		writeJSON(w, http.StatusBadRequest, chat.Response{Response: "Requisição inválida.", Mode: chat.ModeText})
		return
	}

	mode := chat.ParseMode(req.Mode)
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, chat.Response{Response: chat.EmptyMessageReply, Mode: mode})
		return
	}

	sessionID, eng, created, err := c.sessions.Get(c.sessionCookie(r))
	if err != nil {
		logger.WarnCF("webchat", "Session refused", map[string]interface{}{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		writeJSON(w, http.StatusTooManyRequests, chat.Response{Response: chat.RateLimitedReply, Mode: mode})
		return
	}
	if created {
		c.setSessionCookie(w, sessionID)
	}

	if !c.sessions.Allow(sessionID) {
		logger.WarnCF("webchat", "Session rate limited", map[string]interface{}{"session": sessionID})
		writeJSON(w, http.StatusTooManyRequests, chat.Response{Response: chat.RateLimitedReply, Mode: mode})
		return
	}

	start := time.Now()
	result := eng.Ask(r.Context(), message, mode)
	logger.DebugCF("webchat", "Answered", map[string]interface{}{
		"session":  sessionID,
		"mode":     string(mode),
		"provider": result.Provider,
		"elapsed":  time.Since(start).String(),
	})

	resp := chat.Response{
		Response:     result.Text,
		ResponseHTML: renderMarkdown(result.Text),
		Mode:         mode,
	}
	if result.ImageBase64 != "" {
		img := result.ImageBase64
		resp.ImageBase64 = &img
		resp.ImageMIME = result.ImageMIME
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *WebChatChannel) parseChatRequest(r *http.Request) (chat.Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req chat.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return chat.Request{}, fmt.Errorf("decoding json body: %w", err)
		}
		return req, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(c.maxBody); err != nil {
			return chat.Request{}, fmt.Errorf("parsing multipart form: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return chat.Request{}, fmt.Errorf("parsing form: %w", err)
		}
	}
	return chat.Request{
		Message: r.PostFormValue("message"),
		Mode:    r.PostFormValue("mode"),
	}, nil
}

func (c *WebChatChannel) sessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(c.cookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *WebChatChannel) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *WebChatChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, chat.Health{
		Status:         "ok",
		Name:           c.name,
		ActiveSessions: c.sessions.Count(),
		Runtime:        "go",
	})
}

func (c *WebChatChannel) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The page still renders, without history, when no session can be opened.
	var history []chat.Message
	if sessionID, eng, created, err := c.sessions.Get(c.sessionCookie(r)); err == nil {
		if created {
			c.setSessionCookie(w, sessionID)
		}
		history = eng.History()
	}

	data := pageData{
		Name:         c.name,
		Greeting:     chat.GreetingReply,
		AuthEnabled:  c.auth,
		QuickActions: chat.QuickActions,
		CannedRules:  chat.CannedRules,
		OfflineReply: chat.OfflineReply,
	}
	for _, m := range history {
		pm := pageMessage{Role: m.Role, Text: m.Content}
		if m.Role == chat.RoleAssistant {
			pm.HTML = template.HTML(renderMarkdown(m.Content))
		}
		data.Messages = append(data.Messages, pm)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatPage.Execute(w, data); err != nil {
		logger.ErrorCF("webchat", "Rendering page failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *WebChatChannel) handleLogin(w http.ResponseWriter, r *http.Request) {
	// If auth not configured, redirect to chat
	if !c.auth {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// Already logged in
	if c.validLogin(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		c.renderLogin(w, http.StatusOK, "")
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	isJSON := r.Header.Get("Content-Type") == "application/json"
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			c.renderLogin(w, http.StatusBadRequest, "Requisição inválida")
			return
		}
		body.Username = r.PostFormValue("username")
		body.Password = r.PostFormValue("password")
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(body.Username), []byte(c.username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(body.Password), []byte(c.password)) == 1

	if !usernameMatch || !passwordMatch {
		logger.WarnCF("webchat", "WebChat login failed", map[string]interface{}{
			"remote": r.RemoteAddr,
		})
		if isJSON {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		c.renderLogin(w, http.StatusUnauthorized, "Usuário ou senha inválidos")
		return
	}

	token, err := c.createLogin()
	if err != nil {
		logger.ErrorCF("webchat", "Creating login token failed", map[string]interface{}{"error": err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(authTTL / time.Second),
	})

	if isJSON {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *WebChatChannel) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(authCookie); err == nil {
		c.mu.Lock()
		delete(c.logins, cookie.Value)
		c.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (c *WebChatChannel) renderLogin(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginPage.Execute(w, loginData{Name: c.name, Error: errMsg}); err != nil {
		logger.ErrorCF("webchat", "Rendering login failed", map[string]interface{}{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.ErrorCF("webchat", "Encoding response failed", map[string]interface{}{"error": err.Error()})
	}
}

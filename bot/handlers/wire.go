// Package handlers wires the Telegram transport to the assistant's flows:
// the user-facing greeting and relay on one side, the operator's admin panel
// on the other.
package handlers

import (
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/marybot/bot/admin"
	"github.com/m3rciful/marybot/bot/broadcast"
	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/bot/dm"
	"github.com/m3rciful/marybot/bot/followup"
	"github.com/m3rciful/marybot/bot/gateway"
	"github.com/m3rciful/marybot/bot/moderation"
	"github.com/m3rciful/marybot/bot/session"
	coreconfig "github.com/m3rciful/marybot/core/config"
	"github.com/m3rciful/marybot/core/telegram"
	"github.com/m3rciful/marybot/core/telegram/commands"
	"github.com/m3rciful/marybot/core/telegram/middleware"
)

// Handlers owns the bot's flows. Everything that needs the live bot instance
// (the outbound gateway and whatever is built on it) is created in Build.
type Handlers struct {
	cfg   *coreconfig.Config
	reg   *telegram.Registry
	store directory.Store

	siteURL string

	sess     *session.Session
	gate     *moderation.Gate
	flow     *admin.Flow
	gw       gateway.Gateway
	followup *followup.Scheduler
}

// New prepares the handler set. Build must run before any handler fires.
func New(cfg *coreconfig.Config, reg *telegram.Registry, store directory.Store) *Handlers {
	return &Handlers{
		cfg:     cfg,
		reg:     reg,
		store:   store,
		siteURL: cfg.Bot.SiteURL,
	}
}

// Build constructs the gateway-backed flows and returns the middlewares and
// routes for the runtime to register.
func (h *Handlers) Build(bot *tele.Bot) ([]telegram.Middleware, []telegram.Route, error) {
	gw := gateway.NewTelegram(bot)
	h.gw = gw

	h.sess = session.New(h.cfg.Telegram.AdminID)
	h.gate = moderation.New(h.store, time.Duration(h.cfg.Bot.MinDelaySeconds)*time.Second)

	dispatcher := broadcast.New(h.store, gw, h.sess.OperatorID(),
		time.Duration(h.cfg.Bot.BroadcastIntervalMS)*time.Millisecond)
	router := dm.NewRouter(h.store, gw)
	h.flow = admin.New(h.sess, h.store, dispatcher, router, gw)
	h.followup = followup.New(h.store, gw,
		time.Duration(h.cfg.Bot.FollowupDelaySeconds)*time.Second, textFollowup)

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID: h.cfg.Telegram.AdminID,
	})

	h.reg.RegisterCommand("/start", commands.Command{
		Handler:     h.onStart,
		Description: "Start the conversation",
	})
	h.reg.RegisterCommand("/admin", commands.Command{
		Handler:     adminOnly(h.onAdminPanel),
		Description: "Open the admin panel",
		AdminOnly:   true,
	})
	h.reg.RegisterCommand("/cancel", commands.Command{
		Handler:     adminOnly(h.onCancel),
		Description: "Abort the active admin flow",
		AdminOnly:   true,
	})
	h.reg.RegisterCallback(cbAskQuestion, h.onAskQuestion)

	middlewares := []telegram.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	routes := []telegram.Route{
		{Endpoint: tele.OnText, Handler: h.onMessage},
		{Endpoint: tele.OnPhoto, Handler: h.onMessage},
		{Endpoint: tele.OnVideo, Handler: h.onMessage},
		{Endpoint: tele.OnDocument, Handler: h.onMessage},
		{Endpoint: tele.OnVoice, Handler: h.onMessage},
		{Endpoint: tele.OnAudio, Handler: h.onMessage},
		{Endpoint: tele.OnSticker, Handler: h.onMessage},
		{Endpoint: tele.OnCallback, Handler: h.onCallback},
	}
	return middlewares, routes, nil
}

// Shutdown stops pending follow-up timers. Safe to call before Build.
func (h *Handlers) Shutdown() {
	if h.followup != nil {
		h.followup.Shutdown()
	}
}

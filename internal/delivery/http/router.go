package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"technika/internal/delivery/http/controllers"
	"technika/internal/delivery/http/middleware"
	"technika/internal/delivery/http/ws"
	"technika/internal/domain"
)

// Controllers groups every controller the router wires up.
type Controllers struct {
	Root          *controllers.RootController
	Alumni        *controllers.AlumniController
	Accommodation *controllers.AccommodationController
	Delegate      *controllers.DelegateController
	Event         *controllers.EventController
	Merch         *controllers.MerchController
	Book          *controllers.BookController
	BookingProxy  *controllers.BookingProxyController
	Webhook       *controllers.WebhookController
}

// RouterConfig carries the auth dependencies the route table needs.
type RouterConfig struct {
	Verifier     domain.IdentityVerifier
	WebhookToken string
	AuthToken    string
}

// NewRouter initializes the HTTP router with all application routes. The
// misspelled alumni routes and the hyphenated delegate routes are aliases
// kept for older clients.
func NewRouter(cfg RouterConfig, c Controllers, relay *ws.Relay, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(cfg.Verifier, logger)
	webhook := middleware.RequireWebhookToken(cfg.WebhookToken, logger)
	static := middleware.RequireStaticToken(cfg.AuthToken, logger)

	// Public
	mux.HandleFunc("GET /{$}", c.Root.Index)
	mux.HandleFunc("GET /isBitEmail/{email}", c.Root.IsBitEmail)

	// Alumni
	mux.HandleFunc("POST /alumni/register", auth(c.Alumni.Register))
	mux.HandleFunc("GET /alumni/status", auth(c.Alumni.Status))
	mux.HandleFunc("POST /alumini/register", auth(c.Alumni.Register))
	mux.HandleFunc("GET /alumini/status", auth(c.Alumni.Status))

	// Accommodation
	mux.HandleFunc("POST /accommodation/book", auth(c.Accommodation.Book))
	mux.HandleFunc("GET /accommodation/status", auth(c.Accommodation.Status))

	// Delegate
	mux.HandleFunc("POST /delegate/create", auth(c.Delegate.CreateRoom))
	mux.HandleFunc("POST /delegate/join", auth(c.Delegate.JoinRoom))
	mux.HandleFunc("DELETE /delegate/leave", auth(c.Delegate.LeaveRoom))
	mux.HandleFunc("DELETE /delegate/delete", auth(c.Delegate.DeleteRoom))
	mux.HandleFunc("POST /delegate/register/self", auth(c.Delegate.RegisterSelf))
	mux.HandleFunc("POST /delegate/register/group", auth(c.Delegate.RegisterGroup))
	mux.HandleFunc("GET /delegate/status/user", auth(c.Delegate.UserStatus))
	mux.HandleFunc("GET /delegate/status/room/{roomId}", auth(c.Delegate.RoomStatus))
	mux.HandleFunc("GET /delegate/qr", auth(c.Delegate.QR))
	mux.HandleFunc("POST /delegate/book-self", auth(c.Delegate.RegisterSelf))
	mux.HandleFunc("POST /delegate/book-group", auth(c.Delegate.RegisterGroup))
	mux.HandleFunc("GET /delegate/status-self", auth(c.Delegate.UserStatus))
	mux.HandleFunc("GET /delegate/status-group", auth(c.Delegate.UserStatus))
	mux.HandleFunc("GET /delegate/status", auth(c.Delegate.UserStatus))
	mux.HandleFunc("POST /delegate/group-reset", auth(c.Delegate.DeleteRoom))

	// Events
	mux.HandleFunc("POST /event/book", auth(c.Event.Book))
	mux.HandleFunc("GET /event/status/{eventId}", auth(c.Event.Status))
	mux.HandleFunc("GET /event/registered", auth(c.Event.Registered))

	// Merchandise
	mux.HandleFunc("POST /merch/order", auth(c.Merch.Order))
	mux.HandleFunc("GET /merch/orders", auth(c.Merch.Orders))
	mux.HandleFunc("GET /merch/order/{id}", auth(c.Merch.OrderStatus))

	// Generic ticket booking
	mux.HandleFunc("POST /book/{ticketId}", auth(c.Book.Book))

	// Provider proxy for operator tooling
	mux.HandleFunc("POST /booking", static(c.BookingProxy.Create))
	mux.HandleFunc("GET /booking/{uid}", static(c.BookingProxy.Fetch))

	// Provider webhook
	mux.HandleFunc("POST /webhook", webhook(c.Webhook.Handle))

	// Payment status relay
	mux.HandleFunc("/ws", relay.Handle)

	// Operational
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

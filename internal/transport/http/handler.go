// Package httptransport is the gateway between the outside world and the
// ordering conversation: an SMS webhook, a JSON message endpoint and the
// staff-facing order endpoints.
package httptransport

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	logging "github.com/op/go-logging"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
	"github.com/iliamunaev/coffee-sms/internal/model"
	"github.com/iliamunaev/coffee-sms/internal/order"
	"github.com/iliamunaev/coffee-sms/internal/service/tracker"
)

var log = logging.MustGetLogger("gateway")

type assistant interface {
	Dispatch(ctx context.Context, callerID, text string) string
	Sessions() int
}

type orderBook interface {
	Orders(callerID string) []order.Order
	Get(callerID, id string) (order.Order, error)
	UpdateStatus(callerID, id string, next order.Status) (order.Order, error)
}

// Handler serves the gateway routes.
type Handler struct {
	assistant      assistant
	book           orderBook
	tracker        *tracker.Tracker
	requestTimeout time.Duration
}

// New returns a Handler. It panics if assistant or book is nil. A nil
// tracker reports zero load; a non-positive requestTimeout defaults to 10s.
func New(a assistant, book orderBook, tr *tracker.Tracker, requestTimeout time.Duration) *Handler {
	if a == nil {
		panic("httptransport.New: nil assistant")
	}
	if book == nil {
		panic("httptransport.New: nil order book")
	}
	if tr == nil {
		tr = &tracker.Tracker{}
	}
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &Handler{
		assistant:      a,
		book:           book,
		tracker:        tr,
		requestTimeout: requestTimeout,
	}
}

// Routes registers every gateway route on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sms", h.HandleSMS)
	mux.HandleFunc("/message", h.HandleMessage)
	mux.HandleFunc("/orders", h.HandleOrders)
	mux.HandleFunc("/orders/status", h.HandleOrderStatus)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// HandleSMS is the SMS provider webhook. It takes form fields From and Body
// and answers with a TwiML message.
func (h *Handler) HandleSMS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	from := strings.TrimSpace(r.PostForm.Get("From"))
	if from == "" {
		http.Error(w, "From is required", http.StatusBadRequest)
		return
	}

	text := h.dispatch(r.Context(), from, r.PostForm.Get("Body"))

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, xml.Header)
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: text}); err != nil {
		log.Errorf("encode twiml for %s: %v", from, err)
	}
}

// HandleMessage is the JSON equivalent of HandleSMS.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req model.MessageRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.MessageResponse{
			Status: "error",
			Error:  badRequest("invalid JSON"),
		})
		return
	}
	if strings.TrimSpace(req.CallerID) == "" {
		writeJSON(w, http.StatusBadRequest, model.MessageResponse{
			Status: "error",
			Error:  badRequest("caller_id is required"),
		})
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Status: "ok",
		Reply:  h.dispatch(r.Context(), strings.TrimSpace(req.CallerID), req.Text),
	})
}

// dispatch runs one message under the request deadline.
func (h *Handler) dispatch(ctx context.Context, callerID, text string) string {
	ctx, cancel := context.WithTimeout(ctx, h.requestTimeout)
	defer cancel()
	return h.assistant.Dispatch(ctx, callerID, text)
}

// HandleOrders lists a caller's orders, or returns one when order_id is set.
func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	callerID := strings.TrimSpace(q.Get("caller_id"))
	if callerID == "" {
		writeJSON(w, http.StatusBadRequest, model.OrdersResponse{
			Status: "error",
			Error:  badRequest("caller_id is required"),
		})
		return
	}

	if id := strings.TrimSpace(q.Get("order_id")); id != "" {
		o, err := h.book.Get(callerID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		v := orderView(o)
		writeJSON(w, http.StatusOK, model.OrdersResponse{Status: "ok", Order: &v})
		return
	}

	orders := h.book.Orders(callerID)
	views := make([]model.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	writeJSON(w, http.StatusOK, model.OrdersResponse{Status: "ok", Orders: views})
}

// HandleOrderStatus moves an order along its lifecycle.
func (h *Handler) HandleOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.OrdersResponse{
			Status: "error",
			Error:  badRequest("invalid JSON"),
		})
		return
	}
	if req.CallerID == "" || req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, model.OrdersResponse{
			Status: "error",
			Error:  badRequest("caller_id and order_id are required"),
		})
		return
	}
	next, ok := order.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, model.OrdersResponse{
			Status: "error",
			Error:  badRequest("unknown status " + req.Status),
		})
		return
	}

	o, err := h.book.UpdateStatus(req.CallerID, req.OrderID, next)
	if err != nil {
		writeError(w, err)
		return
	}
	v := orderView(o)
	writeJSON(w, http.StatusOK, model.OrdersResponse{Status: "ok", Order: &v})
}

// HandleHealth reports liveness and current load.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:     "ok",
		InFlight:   h.tracker.Running(),
		Dispatched: h.tracker.Total(),
		Sessions:   h.assistant.Sessions(),
	})
}

// decodeJSON decodes exactly one JSON value with no unknown fields.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func badRequest(msg string) *model.ErrorPayload {
	return &model.ErrorPayload{Kind: apperr.Kind(apperr.ErrBadRequest), Message: msg}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), model.OrdersResponse{
		Status: "error",
		Error:  &model.ErrorPayload{Kind: apperr.Kind(err), Message: err.Error()},
	})
}

func orderView(o order.Order) model.OrderView {
	lines := make([]model.LineView, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = model.LineView{
			Name:      l.Name,
			Modifiers: l.Modifiers,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Subtotal:  l.Subtotal().String(),
		}
	}
	return model.OrderView{
		ID:               o.ID,
		CallerID:         o.CallerID,
		Lines:            lines,
		Total:            o.Total.String(),
		PaymentMethod:    string(o.Method),
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		EstimatedReadyAt: o.EstimatedReadyAt,
	}
}

// writeJSON writes v as a JSON response with the given status code.
// The Content-Type is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

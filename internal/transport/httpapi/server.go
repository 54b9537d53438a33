// Package httpapi exposes the booking engine to the presentation layer over
// JSON HTTP. It holds no booking logic of its own: requests are decoded,
// handed to the service, and the service's error values are mapped to status
// codes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"slotline/internal/availability"
	"slotline/internal/domain"
	"slotline/internal/service/booking"
)

type bookingService interface {
	Slots(ctx context.Context, day time.Time) ([]domain.Slot, error)
	DayStatus(ctx context.Context, day time.Time) (domain.DayStatus, error)
	Upcoming(ctx context.Context, horizonDays, limit int) ([]availability.DayAvailability, error)
	Suggestions(ctx context.Context, count int) ([]string, error)
	Bookings(ctx context.Context) ([]domain.Booking, error)
	Book(ctx context.Context, in booking.BookInput) (booking.Confirmation, error)
}

type Server struct {
	svc    bookingService
	log    *slog.Logger
	router *mux.Router
}

func NewServer(svc bookingService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		svc:    svc,
		log:    log.With(slog.String("component", "httpapi")),
		router: mux.NewRouter().PathPrefix("/api").Subrouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/days/{date}/slots", s.getSlots).Methods(http.MethodGet)
	s.router.HandleFunc("/days/{date}/status", s.getDayStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/availability/upcoming", s.getUpcoming).Methods(http.MethodGet)
	s.router.HandleFunc("/suggestions", s.getSuggestions).Methods(http.MethodGet)
	s.router.HandleFunc("/bookings", s.listBookings).Methods(http.MethodGet)
	s.router.HandleFunc("/bookings", s.createBooking).Methods(http.MethodPost)
}

func (s *Server) Handler() http.Handler {
	return handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, s.router))
}

type slotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type daySlotsResponse struct {
	Date  string    `json:"date"`
	Slots []slotDTO `json:"slots"`
}

func (s *Server) getSlots(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "getSlots"))

	day, ok := s.pathDate(w, r, log)
	if !ok {
		return
	}

	slots, err := s.svc.Slots(r.Context(), day)
	if err != nil {
		log.Error("slots query failed", slog.Any("err", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, daySlotsResponse{
		Date:  day.Format("2006-01-02"),
		Slots: toSlotDTOs(slots),
	})
}

type dayStatusResponse struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

func (s *Server) getDayStatus(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "getDayStatus"))

	day, ok := s.pathDate(w, r, log)
	if !ok {
		return
	}

	status, err := s.svc.DayStatus(r.Context(), day)
	if err != nil {
		log.Error("day status query failed", slog.Any("err", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, dayStatusResponse{
		Date:   day.Format("2006-01-02"),
		Status: string(status),
	})
}

type upcomingDayDTO struct {
	Date           string    `json:"date"`
	AvailableSlots int       `json:"available_slots"`
	Slots          []slotDTO `json:"slots"`
}

// upcomingExampleSlots caps how many example slots each day carries in the
// response; the full list is available per day via getSlots.
const upcomingExampleSlots = 3

func (s *Server) getUpcoming(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "getUpcoming"))

	horizonDays, ok := s.queryInt(w, r, log, "days")
	if !ok {
		return
	}
	limit, ok := s.queryInt(w, r, log, "limit")
	if !ok {
		return
	}

	days, err := s.svc.Upcoming(r.Context(), horizonDays, limit)
	if err != nil {
		log.Error("upcoming query failed", slog.Any("err", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]upcomingDayDTO, 0, len(days))
	for _, d := range days {
		examples := d.Slots
		if len(examples) > upcomingExampleSlots {
			examples = examples[:upcomingExampleSlots]
		}
		out = append(out, upcomingDayDTO{
			Date:           d.Day.Format("2006-01-02"),
			AvailableSlots: len(d.Slots),
			Slots:          toSlotDTOs(examples),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "getSuggestions"))

	count, ok := s.queryInt(w, r, log, "count")
	if !ok {
		return
	}

	suggestions, err := s.svc.Suggestions(r.Context(), count)
	if err != nil {
		log.Error("suggestions query failed", slog.Any("err", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

type bookingDTO struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "listBookings"))

	bookings, err := s.svc.Bookings(r.Context())
	if err != nil {
		log.Error("bookings list failed", slog.Any("err", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		// Calendar display only: confirmation codes stay private to the
		// person who booked.
		out = append(out, bookingDTO{
			ID:    b.ID.String(),
			Title: b.Title,
			Start: b.StartTime,
			End:   b.EndTime,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

type clientInfoDTO struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Service       string `json:"service"`
	Message       string `json:"message"`
	NotifyByEmail bool   `json:"notify_by_email"`
}

type createBookingRequest struct {
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Client clientInfoDTO `json:"client"`
}

type createBookingResponse struct {
	Booking          bookingDTO `json:"booking"`
	ConfirmationCode string     `json:"confirmation_code"`
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "createBooking"))

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_body"))
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conf, err := s.svc.Book(r.Context(), booking.BookInput{
		Start: req.Start,
		End:   req.End,
		Client: domain.ClientInfo{
			Name:          req.Client.Name,
			Email:         req.Client.Email,
			Phone:         req.Client.Phone,
			Service:       req.Client.Service,
			Message:       req.Client.Message,
			NotifyByEmail: req.Client.NotifyByEmail,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrSlotConflict):
			log.Info("booking conflict", slog.Time("start", req.Start), slog.Time("end", req.End))
			s.writeError(w, http.StatusConflict, "Selected time is already booked. Pick a different slot.")
		case errors.Is(err, booking.ErrInvalidDay):
			log.Info("booking on closed day", slog.Time("start", req.Start))
			s.writeError(w, http.StatusUnprocessableEntity, "That day is not open for booking. Pick a different day.")
		default:
			var vErr *booking.InvalidRequestError
			if errors.As(err, &vErr) {
				log.Warn("invalid request", slog.Any("err", err))
				s.writeError(w, http.StatusBadRequest, vErr.Error())
				return
			}
			log.Error("booking failed", slog.Any("err", err))
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	log.Info(
		"booking created",
		slog.String("booking_id", conf.Booking.ID.String()),
		slog.String("confirmation_code", conf.Code),
		slog.Time("start", conf.Booking.StartTime),
		slog.Time("end", conf.Booking.EndTime),
	)

	s.writeJSON(w, http.StatusCreated, createBookingResponse{
		Booking: bookingDTO{
			ID:               conf.Booking.ID.String(),
			Title:            conf.Booking.Title,
			Start:            conf.Booking.StartTime,
			End:              conf.Booking.EndTime,
			ConfirmationCode: conf.Code,
		},
		ConfirmationCode: conf.Code,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) pathDate(w http.ResponseWriter, r *http.Request, log *slog.Logger) (time.Time, bool) {
	raw := mux.Vars(r)["date"]
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", raw))
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, log *slog.Logger, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Warn("invalid request", slog.String("reason", "bad_"+key), slog.String(key, raw))
		s.writeError(w, http.StatusBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func toSlotDTOs(slots []domain.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, sl := range slots {
		out = append(out, slotDTO{Start: sl.Start, End: sl.End})
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("response encode failed", slog.Any("err", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"status": status, "error": msg})
}

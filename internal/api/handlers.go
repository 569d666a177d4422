package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"webstudio/internal/models"
	"webstudio/internal/service"
	"webstudio/internal/store"
)

// featureList accepts the feature checklist either as a JSON array or as
// the comma-separated string the admin form sends.
type featureList []string

func (f *featureList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*f = out
	return nil
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	var parse *store.ParseError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Reason)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.As(err, &parse):
		s.logger.Error().Err(err).Msg("corrupted collection")
		writeError(w, http.StatusInternalServerError, "stored data is corrupted")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type servicePayload struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       string      `json:"price"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Features    featureList `json:"features"`
}

func (p servicePayload) toModel() models.Service {
	return models.Service{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Features:    p.Features,
	}
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if rawID := r.URL.Query().Get("id"); rawID != "" {
			id, err := strconv.Atoi(rawID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid service id")
				return
			}
			svc, err := s.catalog.FindService(ctx, id)
			if err != nil {
				s.writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, svc)
			return
		}

		services, err := s.catalog.ListServices(ctx)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, services)

	case http.MethodPost:
		var payload servicePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		svc := payload.toModel()
		if err := s.catalog.CreateService(ctx, &svc); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)

	case http.MethodPut:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service id")
			return
		}
		var payload servicePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := s.catalog.UpdateService(ctx, id, payload.toModel())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service id")
			return
		}
		if err := s.catalog.DeleteService(ctx, id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		categories, err := s.catalog.Categories(ctx)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)

	case http.MethodPut:
		var payload struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		renamed, err := s.catalog.RenameCategory(ctx, payload.From, payload.To)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"renamed": renamed})

	case http.MethodDelete:
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, http.StatusBadRequest, "category name is required")
			return
		}
		deleted, err := s.catalog.DeleteCategory(ctx, name)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handlePartnerServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		listings, err := s.partners.List(ctx)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listings)

	case http.MethodPost:
		var listing models.PartnerService
		if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.partners.Create(ctx, &listing); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, listing)

	case http.MethodPut:
		// The admin form carries the id in the body, not the query.
		var listing models.PartnerService
		if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if listing.ID == "" {
			writeError(w, http.StatusBadRequest, "partner service id is required")
			return
		}
		updated, err := s.partners.Update(ctx, listing.ID, listing)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "partner service id is required")
			return
		}
		if err := s.partners.Delete(ctx, id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handlePartnerLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "partner service id is required")
		return
	}

	link, err := s.partners.OrderLink(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (s *HTTPServer) handlePartnerGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	groups, err := s.partners.GroupedByPartner(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *HTTPServer) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload struct {
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Phone      string  `json:"phone"`
		Message    string  `json:"message"`
		Service    *int    `json:"service"`
		TotalPrice *string `json:"totalPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if s.limits != nil {
		key := s.submissionKey(r, payload.Email)
		allowed, err := s.limits.CheckRateLimit(r.Context(), key, s.submissionLimit, s.submissionWindow)
		if err != nil {
			s.logger.Error().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "too many submissions")
			return
		}
	}

	contact, order, err := s.contacts.Submit(r.Context(), service.ContactInput{
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Message:    payload.Message,
		Service:    payload.Service,
		TotalPrice: payload.TotalPrice,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := map[string]any{"contact": contact}
	if order != nil {
		resp["order"] = order
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *HTTPServer) submissionKey(r *http.Request, email string) string {
	if email != "" {
		return "contact:" + email
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "contact:unknown"
	}
	return "contact:" + host
}

func (s *HTTPServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	contacts, err := s.contacts.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *HTTPServer) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if email == "" && phone == "" {
		writeError(w, http.StatusBadRequest, "email or phone is required")
		return
	}

	orders, err := s.orders.OrdersForCustomer(r.Context(), email, phone)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *HTTPServer) handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		orders, err := s.orders.ListOrders(ctx)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)

	case http.MethodPut:
		var payload struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.ID == "" {
			writeError(w, http.StatusBadRequest, "order id is required")
			return
		}
		updated, err := s.orders.SetStatus(ctx, payload.ID, models.OrderStatus(payload.Status))
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "order id is required")
			return
		}
		if err := s.orders.DeleteOrder(ctx, id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	counts, err := s.orders.StatusCounts(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *HTTPServer) handleOrderExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	path, err := s.exporter.ExportOrders(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

func (s *HTTPServer) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			ServiceID int `json:"serviceId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quote, err := s.checkout.Start(ctx, payload.ServiceID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quote)

	case http.MethodPut:
		var payload struct {
			SessionID string `json:"sessionId"`
			Label     string `json:"label"`
			Selected  bool   `json:"selected"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		quote, err := s.checkout.Toggle(ctx, payload.SessionID, payload.Label, payload.Selected)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quote)

	case http.MethodGet:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "session id is required")
			return
		}
		quote, err := s.checkout.CurrentQuote(ctx, id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quote)

	case http.MethodDelete:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "session id is required")
			return
		}
		if err := s.checkout.Finish(ctx, id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

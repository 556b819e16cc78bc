package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vantry/internal/export"
	"vantry/internal/models"
	"vantry/internal/service"
)

// dashboardHandler renders the grouped inventory overview.
func (s *Server) dashboardHandler() http.Handler {
	type pageData struct {
		Dashboard *models.Dashboard
		Flash     string
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		dash, err := s.stock.GetDashboard(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to build dashboard")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		flash := ""
		if added := r.URL.Query().Get("added"); added != "" {
			flash = fmt.Sprintf("Added %q to the inventory.", added)
		}
		s.render(w, "dashboard.gohtml", pageData{Dashboard: dash, Flash: flash})
	})
}

// updateHandler shows the editable stock sheet and applies bulk edits.
// Rows that fail validation are reported next to the ones that landed.
func (s *Server) updateHandler() http.Handler {
	type pageData struct {
		Items  []models.StockedItem
		Result *service.BulkResult
		Saved  bool
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := s.stockedItems(r)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			s.render(w, "update.gohtml", pageData{Items: items})
		case http.MethodPost:
			if !s.drafts.Allow(r.Context(), s.sessionID(w, r)) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}

			rows, parseErrors := parseUpdateRows(r)
			result, err := s.stock.BulkUpdate(r.Context(), rows)
			if err != nil {
				s.logger.Error().Err(err).Msg("bulk update failed")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			result.Errors = append(parseErrors, result.Errors...)

			items, ierr := s.stockedItems(r)
			if ierr != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			s.render(w, "update.gohtml", pageData{Items: items, Result: result, Saved: true})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Server) stockedItems(r *http.Request) ([]models.StockedItem, error) {
	items, err := s.stock.ListItems(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list items")
		return nil, err
	}
	stocked := make([]models.StockedItem, 0, len(items))
	for _, item := range items {
		stocked = append(stocked, models.StockedItem{Item: item, StockStatus: item.Status()})
	}
	return stocked, nil
}

// parseUpdateRows reads one row per submitted id. Unparseable numbers
// become row errors naming the offending field.
func parseUpdateRows(r *http.Request) ([]service.StockUpdateRow, []service.RowError) {
	var rows []service.StockUpdateRow
	var rowErrors []service.RowError

	for _, idStr := range r.PostForm["id"] {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			rowErrors = append(rowErrors, service.RowError{Field: "id", Reason: fmt.Sprintf("%q is not a valid id", idStr)})
			continue
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("quantity_"+idStr)), 10, 64)
		if err != nil {
			rowErrors = append(rowErrors, service.RowError{ItemID: id, Field: "quantity", Reason: "must be a whole number"})
			continue
		}
		threshold, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("threshold_"+idStr)), 10, 64)
		if err != nil {
			rowErrors = append(rowErrors, service.RowError{ItemID: id, Field: "threshold", Reason: "must be a whole number"})
			continue
		}
		rows = append(rows, service.StockUpdateRow{ID: id, Quantity: quantity, Threshold: threshold})
	}
	return rows, rowErrors
}

// addHandler renders the add-item form and creates items from it.
func (s *Server) addHandler() http.Handler {
	type pageData struct {
		Categories []string
		Error      string
		Name       string
		Category   string
		Quantity   string
		Threshold  string
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.render(w, "add.gohtml", pageData{Categories: s.catalog.CategoryNames()})
		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}

			data := pageData{
				Categories: s.catalog.CategoryNames(),
				Name:       r.PostForm.Get("name"),
				Category:   r.PostForm.Get("category"),
				Quantity:   r.PostForm.Get("quantity"),
				Threshold:  r.PostForm.Get("threshold"),
			}

			params := service.AddItemParams{Name: data.Name, Category: data.Category}
			if q := strings.TrimSpace(data.Quantity); q != "" {
				n, err := strconv.ParseInt(q, 10, 64)
				if err != nil {
					data.Error = "quantity must be a whole number"
					s.render(w, "add.gohtml", data)
					return
				}
				params.Quantity = n
			}
			if th := strings.TrimSpace(data.Threshold); th != "" {
				n, err := strconv.ParseInt(th, 10, 64)
				if err != nil {
					data.Error = "threshold must be a whole number"
					s.render(w, "add.gohtml", data)
					return
				}
				params.Threshold = &n
			}

			item, err := s.stock.AddItem(r.Context(), params)
			if err != nil {
				var fe *service.FieldError
				switch {
				case errors.As(err, &fe):
					data.Error = fe.Error()
				case errors.Is(err, service.ErrDuplicateName):
					data.Error = "an item with this name already exists"
				default:
					s.logger.Error().Err(err).Msg("failed to add item")
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				s.render(w, "add.gohtml", data)
				return
			}

			http.Redirect(w, r, "/?added="+url.QueryEscape(item.Name), http.StatusSeeOther)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// orderHandler shows the restock worksheet and saves draft overrides.
func (s *Server) orderHandler() http.Handler {
	type pageData struct {
		Lines []service.WorksheetLine
		Saved bool
		Empty bool
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(w, r)
		switch r.Method {
		case http.MethodGet:
			lines, err := s.orders.Worksheet(r.Context(), sessionID)
			if err != nil {
				s.logger.Error().Err(err).Msg("failed to build order worksheet")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			s.render(w, "order.gohtml", pageData{
				Lines: lines,
				Saved: r.URL.Query().Get("saved") == "1",
				Empty: r.URL.Query().Get("empty") == "1",
			})
		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			if err := s.orders.SaveDraft(r.Context(), sessionID, parseOverrides(r)); err != nil {
				s.logger.Error().Err(err).Msg("failed to save order draft")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/order?saved=1", http.StatusSeeOther)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// composeHandler turns the worksheet into a persisted purchase order.
func (s *Server) composeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sessionID := s.sessionID(w, r)
		if !s.drafts.Allow(r.Context(), sessionID) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		order, err := s.orders.Compose(r.Context(), sessionID, parseOverrides(r))
		if err != nil {
			if errors.Is(err, service.ErrNothingToOrder) {
				http.Redirect(w, r, "/order?empty=1", http.StatusSeeOther)
				return
			}
			s.logger.Error().Err(err).Msg("failed to compose order")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/order/view?id=%d", order.ID), http.StatusSeeOther)
	})
}

// parseOverrides extracts qty_<id> and note_<id> form fields.
// Unparseable quantities fall back to the suggested amount.
func parseOverrides(r *http.Request) map[int64]models.OrderOverride {
	overrides := make(map[int64]models.OrderOverride)
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, "qty_") && !strings.HasPrefix(key, "note_") {
			continue
		}
		isQty := strings.HasPrefix(key, "qty_")
		idStr := strings.TrimPrefix(strings.TrimPrefix(key, "qty_"), "note_")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || len(values) == 0 {
			continue
		}

		ov := overrides[id]
		if isQty {
			if n, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64); err == nil && n > 0 {
				ov.Quantity = n
			}
		} else {
			ov.Note = strings.TrimSpace(values[0])
		}
		overrides[id] = ov
	}
	return overrides
}

// orderViewHandler shows a composed order with its share link.
func (s *Server) orderViewHandler() http.Handler {
	type pageData struct {
		Order     *models.PurchaseOrder
		ShareLink string
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, err := s.orders.GetOrder(r.Context(), id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		s.render(w, "order_view.gohtml", pageData{Order: order, ShareLink: service.ShareLink(order)})
	})
}

// exportHandler streams the inventory as an xlsx download.
func (s *Server) exportHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		items, err := s.stock.ListItems(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list items for export")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		f, err := export.NewInventoryWorkbook(items)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to build export workbook")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := f.Write(w); err != nil {
			s.logger.Error().Err(err).Msg("failed to stream export")
		}
	})
}

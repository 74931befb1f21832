package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into dst. Malformed JSON comes back as
// a plain error; domain parse failures keep their sentinel identity so
// handlers can answer 422 instead of 400.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID extracts a positive integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return id, nil
}

// queryInt returns the named query parameter as an int, or nil when absent.
func queryInt(r *http.Request, name string) (*int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.New(name + " must be an integer")
	}
	return &n, nil
}

// queryInt64 returns the named query parameter as an int64, or nil when absent.
func queryInt64(r *http.Request, name string) (*int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, errors.New(name + " must be an integer")
	}
	return &n, nil
}

// queryDate returns the named query parameter as a date, or nil when absent.
func queryDate(r *http.Request, name string) (*core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, errors.New(name + " must be in YYYY-MM-DD format")
	}
	return &d, nil
}

// monthYearOrNow resolves the month/year query parameters, defaulting both
// to the current calendar month.
func monthYearOrNow(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if y, e := queryInt(r, "year"); e != nil {
		return 0, 0, e
	} else if y != nil {
		year = *y
	}
	if m, e := queryInt(r, "month"); e != nil {
		return 0, 0, e
	} else if m != nil {
		month = *m
	}

	if err := core.ValidateMonth(month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// storeErrorStatus maps domain sentinel errors to HTTP status codes;
// anything unrecognized is a storage failure.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrTransactionNotFound), errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

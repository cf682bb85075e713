package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"grana/internal/core"
)

const (
	userIDHeader  = "X-User-ID"
	defaultUserID = "local"

	maxBodyBytes = 1 << 20
)

// requestUserID resolves the acting user from the X-User-ID header,
// falling back to the single-tenant default.
func requestUserID(r *http.Request) string {
	if id := sanitizeInput(r.Header.Get(userIDHeader)); id != "" {
		return id
	}
	return defaultUserID
}

// amountString carries a monetary field that clients may send either
// as a JSON string ("12,34", "12.34") or a bare number (12.34). The
// comma form only exists as a string, so both are accepted.
type amountString string

func (a *amountString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amountString(n)
	return nil
}

// decodeBody reads a JSON request body into dst, capped at 1 MiB.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// idFromPath extracts the numeric id suffix from paths like
// /expenses/42.
func idFromPath(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("missing id in path %q", path)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// monthFilterRequested reports whether the request narrows a listing
// to a single month.
func monthFilterRequested(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("year") != "" || q.Get("month") != ""
}

// parseYearMonth reads the year and month query parameters, defaulting
// either to the current month in the server timezone. The pair is
// checked against the accepted month window before use.
func (s *Server) parseYearMonth(r *http.Request) (year, month int, err error) {
	now := s.now().In(s.loc)
	year, month = now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
	}
	if v := q.Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
	}
	if err := core.ValidateMonth(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// sanitizeInput trims whitespace and strips control characters from
// user-supplied text, keeping tabs and newlines.
func sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

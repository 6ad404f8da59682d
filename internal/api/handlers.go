package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"buddhist-lent/pledgeboard/internal/auth"

	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidInput("Request body is empty", nil)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return invalidInput("Request body is too large", err)
		}
		return invalidInput("Malformed JSON body", err)
	}
	return nil
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, invalidInput(fmt.Sprintf("invalid id %q", raw), nil)
	}
	return uint(n), nil
}

// parseIDs reads "ids=1,2,3" (also repeated ids parameters).
func parseIDs(r *http.Request) ([]uint, error) {
	var ids []uint
	for _, raw := range r.URL.Query()["ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil || n == 0 {
				return nil, invalidInput(fmt.Sprintf("invalid id %q", part), nil)
			}
			ids = append(ids, uint(n))
		}
	}
	return ids, nil
}

func currentUserID(r *http.Request) uint {
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		return claims.UserID()
	}
	return 0
}

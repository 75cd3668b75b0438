package adminusers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound is reported when a user id does not exist on the backend.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidQuery is returned by Store.SetQuery for page or limit below 1.
	ErrInvalidQuery = errors.New("invalid list query")
)

// Failure is a transport or HTTP level failure. It is always recoverable.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string {
	if f.Status == 0 {
		return f.Message
	}
	return fmt.Sprintf("HTTP %d - %s", f.Status, f.Message)
}

// Is makes a 404 Failure match ErrNotFound.
func (f *Failure) Is(target error) bool {
	return target == ErrNotFound && f.Status == http.StatusNotFound
}

// ValidationError carries field errors for input that never reached the network.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return JoinFieldErrors(e.Fields)
}

// JoinFieldErrors renders field errors in a stable name, email, role order.
func JoinFieldErrors(fields FieldErrors) string {
	order := map[string]int{"name": 0, "email": 1, "role": 2}
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := order[keys[i]]
		oj, jok := order[keys[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, " • ")
}

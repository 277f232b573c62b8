/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/gamenight/answer"
)

const maxFindAnswers = 64

var errEmptyBody = errors.New("empty request body")

// requestError describes a request that decoded but cannot be served.
type requestError struct {
	Field  string
	Reason string
}

func (e requestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type normalizeRequest struct {
	Text string `json:"text"`
}

type normalizeResponse struct {
	Normalized string `json:"normalized"`
}

type matchRequest struct {
	Guess     string   `json:"guess"`
	Answer    string   `json:"answer"`
	Aliases   []string `json:"aliases,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type matchResponse struct {
	Matched bool `json:"matched"`
}

type findRequest struct {
	Guess   string          `json:"guess"`
	Answers []answer.Answer `json:"answers"`
}

type duplicateRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

type duplicateResponse struct {
	Duplicate bool `json:"duplicate"`
}

func readJSON(r *http.Request, out any, maxBytes int64) error {
	if r.Body == nil {
		return errEmptyBody
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	switch {
	case len(data) == 0:
		return errEmptyBody
	case int64(len(data)) > maxBytes:
		return requestError{Field: "body", Reason: fmt.Sprintf("larger than %s", humanReadableSize(maxBytes))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode json failed: %w", err)
	}

	return nil
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.MarshalNoEscape(v)
	if err != nil {
		return 0, fmt.Errorf("encode json failed: %w", err)
	}
	data = append(data, '\n')

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(data)
}

// serveJSON decodes a Req from the request body, hands it to handle, and
// writes whatever handle returns as the JSON response.
func serveJSON[Req any](cfg *Config, name string, errs chan<- error, handle func(Req) (any, error)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req Req

		err := readJSON(r, &req, cfg.maxBody)

		var resp any
		if err == nil {
			resp, err = handle(req)
		}

		status := http.StatusOK
		if err != nil {
			status = http.StatusBadRequest
			resp = errorResponse{Error: "invalid_request", Message: err.Error()}
		}

		written, err := writeJSON(cfg, w, status, resp)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "API: %s %d (%s) to %s in %s",
			name,
			status,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func handleNormalize(req normalizeRequest) (any, error) {
	return normalizeResponse{Normalized: answer.Normalize(req.Text)}, nil
}

func handleMatch(cfg *Config) func(matchRequest) (any, error) {
	return func(req matchRequest) (any, error) {
		threshold := cfg.threshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		if threshold < 0 || threshold > 1 {
			return nil, requestError{Field: "threshold", Reason: "must be between 0 and 1"}
		}

		if answer.IsMatchThreshold(req.Guess, req.Answer, threshold) {
			return matchResponse{Matched: true}, nil
		}

		for _, alias := range req.Aliases {
			if answer.IsMatchThreshold(req.Guess, alias, threshold) {
				return matchResponse{Matched: true}, nil
			}
		}

		return matchResponse{}, nil
	}
}

func handleFind(req findRequest) (any, error) {
	if len(req.Answers) > maxFindAnswers {
		return nil, requestError{Field: "answers", Reason: fmt.Sprintf("at most %d allowed", maxFindAnswers)}
	}

	return answer.FindMatch(req.Guess, req.Answers), nil
}

func handleDuplicate(req duplicateRequest) (any, error) {
	return duplicateResponse{Duplicate: answer.IsDuplicate(req.First, req.Second)}, nil
}

func registerMatchAPI(cfg *Config, path string, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+path+"/normalize", serveJSON(cfg, "normalize", errs, handleNormalize))
	mux.POST(cfg.prefix+path+"/match", serveJSON(cfg, "match", errs, handleMatch(cfg)))
	mux.POST(cfg.prefix+path+"/find", serveJSON(cfg, "find", errs, handleFind))
	mux.POST(cfg.prefix+path+"/duplicate", serveJSON(cfg, "duplicate", errs, handleDuplicate))
}

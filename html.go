/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

type route struct {
	method string
	path   string
	desc   string
}

func homeRoutes(cfg *Config) []route {
	return []route{
		{"GET", cfg.prefix + "/feud", "start a new answer board"},
		{"POST", cfg.prefix + "/api/normalize", "normalize answer text"},
		{"POST", cfg.prefix + "/api/match", "check one guess against one answer"},
		{"POST", cfg.prefix + "/api/find", "find the answer a guess matches on a board"},
		{"POST", cfg.prefix + "/api/duplicate", "check whether two answers are the same"},
		{"GET", cfg.prefix + "/version", "server version"},
	}
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var body strings.Builder

		body.WriteString(`<!DOCTYPE html><html lang="en"><head><title>gamenight</title></head><body>`)
		body.WriteString(`<h1>gamenight v` + releaseVersion + `</h1><ul>`)
		for _, rt := range homeRoutes(cfg) {
			body.WriteString(fmt.Sprintf("<li><code>%s %s</code> %s</li>",
				rt.method, html.EscapeString(rt.path), html.EscapeString(rt.desc)))
		}
		body.WriteString(`</ul></body></html>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(body.String()))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /api/
Disallow: /feud/`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}

// Package rest exposes the store services over HTTP/JSON.
//
// Every resource route requires a bearer token whose user claim names the
// store user. Collection tokens travel as epoch milliseconds in the
// Last-Modified response header and the If-Unmodified-Since request header.
package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skullkeeper_http_requests_total",
		Help: "Cumulative number of HTTP requests by route and status code.",
	}, []string{"route", "code"})
	httpRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "skullkeeper_http_request_seconds",
		Help: "Duration of HTTP requests by route.",
	}, []string{"route"})
)

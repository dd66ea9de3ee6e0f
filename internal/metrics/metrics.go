// Package metrics Prometheus指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal HTTP请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight 处理中的请求数
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// LikesToggled 点赞切换次数，result为liked或unliked
	LikesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpulse_likes_toggled_total",
			Help: "Total number of like toggles by result",
		},
		[]string{"result"},
	)

	// CommentsPosted 发表评论数，kind为comment或reply
	CommentsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpulse_comments_posted_total",
			Help: "Total number of comments posted",
		},
		[]string{"kind"},
	)

	// CommentsDeleted 删除评论数（含级联回复）
	CommentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techpulse_comments_deleted_total",
			Help: "Total number of comments deleted including cascaded replies",
		},
	)

	// ArticleViews 计入的文章浏览数
	ArticleViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techpulse_article_views_total",
			Help: "Total number of counted article views",
		},
	)

	// EventsPublished 事件发布次数，outcome为ok或error
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpulse_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"type", "outcome"},
	)

	// SearchRequests 搜索请求数，outcome为ok、error或rejected
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techpulse_search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"outcome"},
	)
)

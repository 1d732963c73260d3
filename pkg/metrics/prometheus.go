package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

const (
	// 默认的Prometheus指标前缀
	defaultMetricPrefix = "hivestore"
)

// GaugeFunc 在导出时读取的外部仪表值（例如缓存条目数）
type GaugeFunc func() float64

type gauge struct {
	help string
	fn   GaugeFunc
}

// PrometheusExporter 将指标导出为Prometheus文本格式
type PrometheusExporter struct {
	metrics *Metrics
	prefix  string
	service string

	mu     sync.Mutex
	gauges map[string]gauge
}

// NewPrometheusExporter 创建一个新的Prometheus导出器
func NewPrometheusExporter(metrics *Metrics, service string) *PrometheusExporter {
	return &PrometheusExporter{
		metrics: metrics,
		prefix:  defaultMetricPrefix,
		service: service,
		gauges:  make(map[string]gauge),
	}
}

// SetPrefix 设置指标前缀
func (p *PrometheusExporter) SetPrefix(prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefix = prefix
}

// RegisterGauge 注册一个在导出时求值的仪表
func (p *PrometheusExporter) RegisterGauge(name, help string, fn GaugeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gauges[name] = gauge{help: help, fn: fn}
}

// Export 导出Prometheus格式的指标
func (p *PrometheusExporter) Export() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.metrics.GetSnapshot()
	var buf bytes.Buffer

	p.addCounter(&buf, "queries_total", "Total number of product listing queries", s.Queries)
	p.addCounter(&buf, "lookups_total", "Total number of product id or slug lookups", s.Lookups)
	p.addCounter(&buf, "validation_errors_total", "Total number of rejected inputs", s.ValidationErrors)
	p.addCounter(&buf, "not_found_total", "Total number of lookups that found nothing", s.NotFound)
	p.addCounter(&buf, "cache_hits_total", "Total number of query cache hits", s.CacheHits)
	p.addCounter(&buf, "cache_misses_total", "Total number of query cache misses", s.CacheMisses)
	p.addGauge(&buf, "cache_hit_ratio", "Query cache hit ratio", s.CacheHitRatio)
	p.addCounter(&buf, "searches_total", "Total number of ranked searches", s.Searches)

	p.addCounter(&buf, "cart_mutations_total", "Total number of cart mutations", s.CartMutations)
	p.addCounter(&buf, "storage_read_errors_total", "Total number of unreadable persisted payloads", s.StorageReadErrors)
	p.addCounter(&buf, "storage_write_errors_total", "Total number of failed persists", s.StorageWriteErrors)

	p.addCounter(&buf, "http_requests_total", "Total number of HTTP requests", s.Requests)
	p.addCounter(&buf, "http_client_errors_total", "Total number of 4xx responses", s.ClientErrors)
	p.addCounter(&buf, "http_server_errors_total", "Total number of 5xx responses", s.ServerErrors)

	names := make([]string, 0, len(p.gauges))
	for name := range p.gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := p.gauges[name]
		p.addGauge(&buf, name, g.help, g.fn())
	}

	if s.Latency != nil {
		p.addHistogram(&buf, "http_request_duration_seconds", "HTTP request latency", s.Latency)
	}

	return buf.String()
}

// addCounter 添加计数器类型指标
func (p *PrometheusExporter) addCounter(buf *bytes.Buffer, name, help string, value uint64) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", metricName)
	fmt.Fprintf(buf, "%s{service=\"%s\"} %d\n\n", metricName, p.service, value)
}

// addGauge 添加仪表类型指标
func (p *PrometheusExporter) addGauge(buf *bytes.Buffer, name, help string, value float64) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", metricName)
	fmt.Fprintf(buf, "%s{service=\"%s\"} %g\n\n", metricName, p.service, value)
}

// addHistogram 添加直方图类型指标，单位为秒
func (p *PrometheusExporter) addHistogram(buf *bytes.Buffer, name, help string, h *HistogramSnapshot) {
	metricName := fmt.Sprintf("%s_%s", p.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", metricName)

	for i, bound := range h.Bounds {
		fmt.Fprintf(buf, "%s_bucket{service=\"%s\",le=\"%g\"} %d\n",
			metricName, p.service, bound.Seconds(), h.Cumulative[i])
	}
	fmt.Fprintf(buf, "%s_bucket{service=\"%s\",le=\"+Inf\"} %d\n", metricName, p.service, h.Count)
	fmt.Fprintf(buf, "%s_sum{service=\"%s\"} %g\n", metricName, p.service, h.Sum.Seconds())
	fmt.Fprintf(buf, "%s_count{service=\"%s\"} %d\n\n", metricName, p.service, h.Count)
}

// ServeHTTP 实现http.Handler接口，用于提供Prometheus指标端点
func (p *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(p.Export()))
}

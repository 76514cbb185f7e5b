package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultMaxLogEntries = 10000

// RequestLog описывает один обработанный запрос.
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Path      string        `json:"path"`
	Method    string        `json:"method"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
}

// MonitoringService хранит ограниченный журнал запросов в памяти для дашборда.
type MonitoringService struct {
	mu           sync.RWMutex
	logs         []RequestLog
	maxEntries   int
	location     *time.Location
	skipPrefixes []string
	now          func() time.Time
}

// NewMonitoringService создаёт MonitoringService, считающий часы в loc
// (UTC, если nil). Запросы с префиксами skipPrefixes не записываются.
func NewMonitoringService(loc *time.Location, skipPrefixes ...string) *MonitoringService {
	if loc == nil {
		loc = time.UTC
	}
	return &MonitoringService{
		logs:         make([]RequestLog, 0),
		maxEntries:   defaultMaxLogEntries,
		location:     loc,
		skipPrefixes: skipPrefixes,
		now:          time.Now,
	}
}

// Record добавляет запись, вытесняя самую старую при заполненном буфере.
func (s *MonitoringService) Record(entry RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.logs) >= s.maxEntries {
		s.logs = s.logs[1:]
	}
	s.logs = append(s.logs, entry)
}

// Middleware записывает каждый запрос и пишет одну структурированную строку лога.
func (s *MonitoringService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()

		path := c.Request.URL.Path
		entry := RequestLog{
			Timestamp: start,
			Path:      path,
			Method:    c.Request.Method,
			Status:    c.Writer.Status(),
			Latency:   s.now().Sub(start),
		}

		event := log.Info()
		if entry.Status >= 500 {
			event = log.Error()
		} else if entry.Status >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", entry.Method).
			Str("path", path).
			Int("status", entry.Status).
			Dur("latency", entry.Latency).
			Str("client_ip", c.ClientIP()).
			Msg("request")

		for _, prefix := range s.skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}
		s.Record(entry)
	}
}

// HourlyCount содержит число запросов, начатых в течение одного часа.
type HourlyCount struct {
	Hour     string `json:"hour"`
	Requests int    `json:"requests"`
}

// EndpointLatency содержит среднюю задержку одного пути в миллисекундах.
type EndpointLatency struct {
	Endpoint  string `json:"endpoint"`
	AverageMs int64  `json:"average_ms"`
}

// DashboardData содержит агрегированный журнал запросов за период.
type DashboardData struct {
	RequestsOverTime []HourlyCount     `json:"requests_over_time"`
	Endpoints        map[string]int    `json:"endpoints"`
	StatusClasses    map[string]int    `json:"status_classes"`
	AverageLatency   []EndpointLatency `json:"average_latency"`
	RecentErrors     []RequestLog      `json:"recent_errors"`
}

// GetDashboardData агрегирует запросы за последние periodHours часов.
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours < 1 {
		periodHours = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().In(s.location)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	buckets := make([]HourlyCount, periodHours)
	index := make(map[int64]int, periodHours)
	for i := 0; i < periodHours; i++ {
		hour := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		buckets[i] = HourlyCount{Hour: hour.Format("2006-01-02 15:00")}
		index[hour.Unix()] = i
	}

	data := DashboardData{
		RequestsOverTime: buckets,
		Endpoints:        make(map[string]int),
		StatusClasses:    map[string]int{"2xx": 0, "4xx": 0, "5xx": 0},
		AverageLatency:   make([]EndpointLatency, 0),
		RecentErrors:     make([]RequestLog, 0),
	}

	latencySum := make(map[string]time.Duration)
	var order []string
	for _, entry := range s.logs {
		if !entry.Timestamp.After(since) {
			continue
		}
		if i, ok := index[entry.Timestamp.In(s.location).Truncate(time.Hour).Unix()]; ok {
			buckets[i].Requests++
		}
		if _, seen := data.Endpoints[entry.Path]; !seen {
			order = append(order, entry.Path)
		}
		data.Endpoints[entry.Path]++
		latencySum[entry.Path] += entry.Latency
		if entry.Status >= 200 && entry.Status < 600 {
			data.StatusClasses[fmt.Sprintf("%dxx", entry.Status/100)]++
		}
	}

	for _, path := range order {
		avg := latencySum[path] / time.Duration(data.Endpoints[path])
		data.AverageLatency = append(data.AverageLatency, EndpointLatency{Endpoint: path, AverageMs: avg.Milliseconds()})
	}

	for i := len(s.logs) - 1; i >= 0 && len(data.RecentErrors) < 10; i-- {
		entry := s.logs[i]
		if entry.Timestamp.After(since) && entry.Status >= 500 {
			data.RecentErrors = append(data.RecentErrors, entry)
		}
	}
	return data
}

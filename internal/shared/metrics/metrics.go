package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	jobsStarted   = newCounterVec("job_type")
	jobsCompleted = newCounterVec("job_type")
	jobsFailed    = newCounterVec("job_type")

	workerReceived      atomic.Uint64
	workerCompleted     atomic.Uint64
	workerFailed        atomic.Uint64
	workerUnrecoverable atomic.Uint64

	llmRetries atomic.Uint64

	jobDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncJobStarted counts a job that entered processing.
func IncJobStarted(jobType string) {
	jobsStarted.Inc(jobType)
}

// IncJobCompleted counts a job that reached completed.
func IncJobCompleted(jobType string) {
	jobsCompleted.Inc(jobType)
}

// IncJobFailed counts a job that reached failed.
func IncJobFailed(jobType string) {
	jobsFailed.Inc(jobType)
}

// ObserveJobDurationMs records the processing time of a job in milliseconds.
func ObserveJobDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	jobDuration.Observe(value)
}

// IncLLMRetries counts retried LLM calls.
func IncLLMRetries() {
	llmRetries.Add(1)
}

// IncWorkerMessagesReceived counts queue messages picked up by a worker.
func IncWorkerMessagesReceived() {
	workerReceived.Add(1)
}

// IncWorkerMessagesCompleted counts queue messages processed and deleted.
func IncWorkerMessagesCompleted() {
	workerCompleted.Add(1)
}

// IncWorkerMessagesFailed counts queue messages left for redelivery.
func IncWorkerMessagesFailed() {
	workerFailed.Add(1)
}

// IncWorkerMessagesDeletedUnrecoverable counts messages dropped because redelivery cannot help.
func IncWorkerMessagesDeletedUnrecoverable() {
	workerUnrecoverable.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "jobs_started_total", "Jobs that entered processing", jobsStarted)
	writeCounterVec(&buf, "jobs_completed_total", "Jobs that completed", jobsCompleted)
	writeCounterVec(&buf, "jobs_failed_total", "Jobs that failed", jobsFailed)
	writeHistogram(&buf, "job_duration_ms", "Job processing duration in milliseconds", jobDuration.Snapshot())
	writeCounter(&buf, "llm_retries_total", "LLM calls retried after a transient error", llmRetries.Load())
	writeCounter(&buf, "worker_messages_received_total", "Queue messages received", workerReceived.Load())
	writeCounter(&buf, "worker_messages_completed_total", "Queue messages processed", workerCompleted.Load())
	writeCounter(&buf, "worker_messages_failed_total", "Queue messages left for redelivery", workerFailed.Load())
	writeCounter(&buf, "worker_messages_unrecoverable_total", "Unrecoverable queue messages deleted", workerUnrecoverable.Load())
	return buf.String()
}

type counterVec struct {
	mu     sync.Mutex
	label  string
	values map[string]uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: make(map[string]uint64)}
}

func (v *counterVec) Inc(labelValue string) {
	if labelValue == "" {
		labelValue = "unknown"
	}
	v.mu.Lock()
	v.values[labelValue]++
	v.mu.Unlock()
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	keys := make([]string, 0, len(v.values))
	for k, n := range v.values {
		out[k] = n
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe places the value in the first bucket whose bound it does not exceed.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, vec *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := vec.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, vec.label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

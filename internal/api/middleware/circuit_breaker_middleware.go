package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

var circuitState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 open, 2 half open)",
	},
	[]string{"name"},
)

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	Name                string
	FailureThreshold    int           // consecutive 5xx responses before opening
	SuccessThreshold    int           // half-open successes before closing
	Timeout             time.Duration // open duration before probing
	HalfOpenMaxRequests int           // concurrent probes while half open
}

// CircuitBreaker sheds load with 503 while the routes behind it keep
// failing with server errors.
type CircuitBreaker struct {
	config    CircuitBreakerConfig
	state     CircuitState
	failures  int
	successes int
	probes    int
	openedAt  time.Time
	mutex     sync.Mutex
	log       *logger.Logger
	now       func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Name == "" {
		config.Name = "api"
	}
	circuitState.WithLabelValues(config.Name).Set(float64(StateClosed))
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		log:    logger.NewLogger(),
		now:    time.Now,
	}
}

// State reports the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) setState(s CircuitState) {
	cb.state = s
	cb.failures = 0
	cb.successes = 0
	cb.probes = 0
	if s == StateOpen {
		cb.openedAt = cb.now()
	}
	circuitState.WithLabelValues(cb.config.Name).Set(float64(s))
}

// admit decides whether a request may pass and whether it is a probe.
func (cb *CircuitBreaker) admit() (allowed, probe bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.config.Timeout {
			return false, false
		}
		cb.setState(StateHalfOpen)
	}
	if cb.state == StateHalfOpen {
		if cb.probes >= cb.config.HalfOpenMaxRequests {
			return false, false
		}
		cb.probes++
		return true, true
	}
	return true, false
}

func (cb *CircuitBreaker) record(probe, failed bool, path string) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if probe && cb.state == StateHalfOpen {
		cb.probes--
		if failed {
			cb.setState(StateOpen)
			cb.log.Warn("Circuit breaker reopened", zap.String("name", cb.config.Name), zap.String("path", path))
			return
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
			cb.log.Info("Circuit breaker closed", zap.String("name", cb.config.Name))
		}
		return
	}

	if cb.state != StateClosed {
		return
	}
	if !failed {
		cb.failures = 0
		return
	}
	cb.failures++
	if cb.failures >= cb.config.FailureThreshold {
		cb.setState(StateOpen)
		cb.log.Error("Circuit breaker opened",
			zap.String("name", cb.config.Name),
			zap.String("path", path),
			zap.Int("failures", cb.config.FailureThreshold))
	}
}

// CircuitBreakerMiddleware creates a middleware that implements the circuit breaker pattern
func (cb *CircuitBreaker) CircuitBreakerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, probe := cb.admit()
		if !allowed {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "service temporarily unavailable",
			})
			return
		}

		c.Next()

		cb.record(probe, c.Writer.Status() >= http.StatusInternalServerError, c.FullPath())
	}
}

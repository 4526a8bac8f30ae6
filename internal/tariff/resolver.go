package tariff

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// Waterfall is the fixed resolution order. The first step that produces a
// rate wins.
var Waterfall = []domain.TariffSource{
	domain.TariffSourceDiscomAPI,
	domain.TariffSourceRegulatoryOrder,
	domain.TariffSourceManualOverride,
	domain.TariffSourceCalculated,
	domain.TariffSourceFallback,
}

var errNoMatch = errors.New("no match")

// ResolverConfig holds the tunables of the waterfall.
type ResolverConfig struct {
	FallbackRate     float64
	FailureThreshold int
	Cooldown         time.Duration
	CacheTTL         time.Duration
	Policy           PolicyTable
}

// circuitState tracks consecutive API failures for a single discom.
type circuitState struct {
	mu       sync.RWMutex
	failures int
	openTill time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpen(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.openTill, !c.openTill.IsZero() && now.Before(c.openTill)
}

func (c *circuitState) recordFailure(now time.Time, threshold int, cooldown time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if threshold > 0 && c.failures >= threshold {
		c.openTill = now.Add(cooldown)
		return true
	}
	return false
}

func (c *circuitState) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.openTill = time.Time{}
}

// Resolver runs the dynamic tariff waterfall. client and cache may be nil.
type Resolver struct {
	discoms    port.DiscomRepository
	structures port.TariffStructureRepository
	client     port.DiscomTariffClient
	cache      port.TariffCache
	cfg        ResolverConfig
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	circuits map[uuid.UUID]*circuitState
}

// NewResolver creates a Resolver.
func NewResolver(
	discoms port.DiscomRepository,
	structures port.TariffStructureRepository,
	client port.DiscomTariffClient,
	cache port.TariffCache,
	cfg ResolverConfig,
	log *zap.Logger,
	now func() time.Time,
) *Resolver {
	if cfg.Policy == nil {
		cfg.Policy = DefaultPolicy()
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		discoms:    discoms,
		structures: structures,
		client:     client,
		cache:      cache,
		cfg:        cfg,
		log:        log,
		now:        now,
		circuits:   make(map[uuid.UUID]*circuitState),
	}
}

func (r *Resolver) circuit(discomID uuid.UUID) *circuitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.circuits[discomID]
	if !ok {
		c = &circuitState{}
		r.circuits[discomID] = c
	}
	return c
}

// stepResult is what a successful waterfall step yields.
type stepResult struct {
	structure *domain.TariffStructure
	rate      float64
	cached    bool
}

// Resolve walks the waterfall and returns the first rate found with its
// provenance. Step failures are logged and recorded in Attempts; only a
// misconfigured fallback makes Resolve fail.
func (r *Resolver) Resolve(ctx context.Context, req domain.TariffRequest) (*domain.TariffResolution, error) {
	res := &domain.TariffResolution{
		DiscomID:     req.DiscomID,
		Category:     req.Category,
		CustomerType: req.CustomerType,
		ContractDate: req.ContractDate,
	}

	for _, source := range Waterfall {
		out, err := r.step(ctx, source, req)
		if err != nil {
			r.log.Info("tariff waterfall step skipped",
				zap.String("source", string(source)),
				zap.String("discom_id", req.DiscomID.String()),
				zap.String("category", req.Category),
				zap.Error(err),
			)
			res.Attempts = append(res.Attempts, domain.TariffAttempt{Source: source, Error: err.Error()})
			continue
		}

		res.Attempts = append(res.Attempts, domain.TariffAttempt{Source: source})
		res.Source = source
		res.Rate = out.rate
		res.Cached = out.cached
		if out.structure != nil {
			if req.IncludeSlabs {
				res.Slabs = out.structure.Slabs
			}
			if req.IncludeTOU {
				res.TOURates = out.structure.TOURates
			}
		}
		r.log.Info("tariff resolved",
			zap.String("source", string(source)),
			zap.String("discom_id", req.DiscomID.String()),
			zap.Float64("rate", res.Rate),
			zap.Bool("cached", res.Cached),
		)
		return res, nil
	}

	r.log.Error("tariff waterfall exhausted", zap.String("discom_id", req.DiscomID.String()))
	return nil, fmt.Errorf("tariff.Resolver.Resolve: %w", domain.ErrTariffUnresolvable)
}

func (r *Resolver) step(ctx context.Context, source domain.TariffSource, req domain.TariffRequest) (*stepResult, error) {
	switch source {
	case domain.TariffSourceDiscomAPI:
		return r.fromDiscomAPI(ctx, req)
	case domain.TariffSourceRegulatoryOrder, domain.TariffSourceManualOverride:
		return r.fromStore(ctx, source, req)
	case domain.TariffSourceCalculated:
		rate, ok := r.cfg.Policy.Rate(req.CustomerType, req.Category)
		if !ok {
			return nil, fmt.Errorf("%w: no policy rate for %s/%s", errNoMatch, req.CustomerType, req.Category)
		}
		return &stepResult{rate: rate}, nil
	case domain.TariffSourceFallback:
		if r.cfg.FallbackRate <= 0 {
			return nil, fmt.Errorf("fallback rate %.4f is not positive", r.cfg.FallbackRate)
		}
		return &stepResult{rate: r.cfg.FallbackRate}, nil
	default:
		return nil, fmt.Errorf("unknown tariff source %q", source)
	}
}

func (r *Resolver) fromDiscomAPI(ctx context.Context, req domain.TariffRequest) (*stepResult, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: no discom client configured", errNoMatch)
	}
	discom, err := r.discoms.GetByID(ctx, req.DiscomID)
	if err != nil {
		return nil, err
	}
	if !discom.HasAPI() {
		return nil, fmt.Errorf("%w: discom %s has no api endpoint", errNoMatch, discom.ID)
	}

	key := CacheKey(req)
	if r.cache != nil {
		cached, cerr := r.cache.Get(ctx, key)
		if cerr != nil {
			r.log.Warn("tariff cache read failed", zap.String("key", key), zap.Error(cerr))
		} else if cached != nil {
			return &stepResult{structure: cached, rate: cached.BaseRate, cached: true}, nil
		}
	}

	now := r.now()
	circuit := r.circuit(discom.ID)
	if openTill, open := circuit.isOpen(now); open {
		return nil, fmt.Errorf("discom %s api disabled until %s after repeated failures", discom.ID, openTill.Format(time.RFC3339))
	}

	structure, err := r.client.FetchTariff(ctx, discom, req)
	if err == nil {
		err = checkStructure(structure)
	}
	if err != nil {
		if circuit.recordFailure(now, r.cfg.FailureThreshold, r.cfg.Cooldown) {
			r.log.Warn("discom api failure threshold reached",
				zap.String("discom_id", discom.ID.String()),
				zap.Duration("cooldown", r.cfg.Cooldown),
			)
		}
		return nil, err
	}
	circuit.recordSuccess()
	structure.Source = domain.TariffSourceDiscomAPI

	if r.cache != nil {
		if cerr := r.cache.Set(ctx, key, structure, r.cacheTTL(discom)); cerr != nil {
			r.log.Warn("tariff cache write failed", zap.String("key", key), zap.Error(cerr))
		}
	}
	if merr := r.discoms.MarkUpdated(ctx, discom.ID, now); merr != nil {
		r.log.Warn("discom last-update stamp failed", zap.String("discom_id", discom.ID.String()), zap.Error(merr))
	}
	return &stepResult{structure: structure, rate: structure.BaseRate}, nil
}

func (r *Resolver) fromStore(ctx context.Context, source domain.TariffSource, req domain.TariffRequest) (*stepResult, error) {
	structure, err := r.structures.FindCovering(ctx, port.TariffLookup{
		DiscomID:     req.DiscomID,
		Category:     req.Category,
		CustomerType: req.CustomerType,
		Source:       source,
		Date:         req.ContractDate,
	})
	if err != nil {
		return nil, err
	}
	if err := checkStructure(structure); err != nil {
		return nil, err
	}
	return &stepResult{structure: structure, rate: structure.BaseRate}, nil
}

func (r *Resolver) cacheTTL(discom *domain.Discom) time.Duration {
	if discom.UpdateFrequencyHours > 0 {
		return time.Duration(discom.UpdateFrequencyHours) * time.Hour
	}
	return r.cfg.CacheTTL
}

func checkStructure(s *domain.TariffStructure) error {
	if s == nil {
		return errNoMatch
	}
	if s.BaseRate <= 0 {
		return fmt.Errorf("tariff structure has non-positive base rate %.4f", s.BaseRate)
	}
	if err := ValidateSlabs(s.Slabs); err != nil {
		return err
	}
	return ValidateTOU(s.TOURates)
}

// CacheKey identifies a DISCOM quote in the tariff cache.
func CacheKey(req domain.TariffRequest) string {
	return fmt.Sprintf("tariff:%s:%s:%s:%s",
		req.DiscomID, req.Category, req.CustomerType, req.ContractDate.Format(time.DateOnly))
}

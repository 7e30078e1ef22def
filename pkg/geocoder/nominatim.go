package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	coordinatePrecision = 7
	maxResponseBytes    = 1 << 20
)

type cacheKey struct {
	lat float64
	lon float64
}

func newCacheKey(lat, lon float64) cacheKey {
	return cacheKey{
		lat: util.RoundFloat(lat, coordinatePrecision),
		lon: util.RoundFloat(lon, coordinatePrecision),
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Error       string `json:"error"`
}

// Nominatim is a ReverseGeocoder backed by the openstreetmap nominatim /reverse endpoint.
// requests are throttled by a shared limiter and resolved names are memoized.
type Nominatim struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	cache     *lru.Cache[cacheKey, Result]
	log       *zap.Logger
}

func NewNominatim(config util.GeocoderConfig, log *zap.Logger) (*Nominatim, error) {
	if config.URL == "" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "geocoder url is required")
	}
	if config.UserAgent == "" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "geocoder user agent is required")
	}

	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[cacheKey, Result](cacheSize)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "create geocoder cache")
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Nominatim{
		baseURL:   strings.TrimRight(config.URL, "/"),
		userAgent: config.UserAgent,
		timeout:   config.Timeout,
		client:    &http.Client{},
		limiter:   rate.NewLimiter(limit, 1),
		cache:     cache,
		log:       log,
	}, nil
}

// Reverse resolves (lat, lon) to the first component of the nominatim display name.
// only resolved and no-result answers are cached, service errors may succeed on a later call.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) Result {
	key := newCacheKey(lat, lon)
	if res, ok := n.cache.Get(key); ok {
		return res
	}

	// waiting for the shared limiter is bounded by the caller's ctx only, the timeout covers the request
	if err := n.limiter.Wait(ctx); err != nil {
		return ServiceError(fmt.Errorf("rate limiter: %w", err))
	}

	reqCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	res := n.reverse(reqCtx, lat, lon)
	if res.Status != SERVICE_ERROR {
		n.cache.Add(key, res)
	} else {
		n.log.Debug("reverse geocoding failed", zap.Float64("lat", lat), zap.Float64("lon", lon),
			zap.Error(res.Err))
	}
	return res
}

func (n *Nominatim) reverse(ctx context.Context, lat, lon float64) Result {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return ServiceError(err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return ServiceError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return ServiceError(fmt.Errorf("nominatim returned status %d", resp.StatusCode))
	}

	var body nominatimResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return ServiceError(fmt.Errorf("decode nominatim response: %w", err))
	}

	if body.Error != "" {
		return NoResult()
	}

	name := firstAddressComponent(body.DisplayName)
	if name == "" {
		return NoResult()
	}
	return Resolved(name)
}

// firstAddressComponent "Cité 1200 Logements, El Achour, Draria District, ..." -> "Cité 1200 Logements"
func firstAddressComponent(address string) string {
	name, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(name)
}

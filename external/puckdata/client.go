package puckdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/janhofer/linemates/internal/domain/roster"
	"github.com/janhofer/linemates/internal/platform/cache"
	"github.com/janhofer/linemates/internal/platform/logging"
	"github.com/janhofer/linemates/internal/platform/resilience"
	"github.com/janhofer/linemates/internal/usecase"
)

const (
	defaultBaseURL = "https://api.puckdata.example/v1"
	defaultTimeout = 20 * time.Second
	maxBodySize    = 6 << 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errPuckDataTransient = crerr.New("puckdata transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the puckdata provider API. Team details and rosters are
// cached per team; game lists and event feeds are always fetched fresh.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	teamCache      *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodySize,
		},
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		teamCache:      cache.NewStore(cacheTTL),
	}
}

func (c *Client) GetTeamDetails(ctx context.Context, teamID string) (usecase.TeamDetails, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return usecase.TeamDetails{}, fmt.Errorf("team id is required")
	}

	value, err := c.teamCache.GetOrLoad(ctx, "team-details:"+teamID, func(ctx context.Context) (any, error) {
		var envelope teamEnvelope
		if _, err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID), nil, &envelope); err != nil {
			return nil, fmt.Errorf("fetch team details team=%s: %w", teamID, err)
		}
		return usecase.TeamDetails{Name: strings.TrimSpace(envelope.Data.Name)}, nil
	})
	if err != nil {
		return usecase.TeamDetails{}, err
	}

	details, ok := value.(usecase.TeamDetails)
	if !ok {
		return usecase.TeamDetails{}, fmt.Errorf("unexpected cached team details type %T", value)
	}
	return details, nil
}

func (c *Client) GetTeamPlayers(ctx context.Context, teamID string) ([]roster.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("team id is required")
	}

	value, err := c.teamCache.GetOrLoad(ctx, "team-players:"+teamID, func(ctx context.Context) (any, error) {
		var envelope playersEnvelope
		if _, err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/players", nil, &envelope); err != nil {
			return nil, fmt.Errorf("fetch team players team=%s: %w", teamID, err)
		}

		players := make([]roster.Player, 0, len(envelope.Data))
		for _, item := range envelope.Data {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			players = append(players, roster.Player{
				ID:   strings.TrimSpace(item.ID),
				Name: name,
			})
		}
		return players, nil
	})
	if err != nil {
		return nil, err
	}

	players, ok := value.([]roster.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected cached roster type %T", value)
	}
	return players, nil
}

func (c *Client) GetTeamGames(ctx context.Context, teamID, season string) ([]usecase.UpstreamGame, error) {
	teamID = strings.TrimSpace(teamID)
	season = strings.TrimSpace(season)
	if teamID == "" {
		return nil, fmt.Errorf("team id is required")
	}
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}

	var envelope gamesEnvelope
	query := map[string]string{"season": season}
	if _, err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/games", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch team games team=%s season=%s: %w", teamID, season, err)
	}

	games := make([]usecase.UpstreamGame, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		games = append(games, usecase.UpstreamGame{
			ID:       strings.TrimSpace(item.ID),
			GameDate: strings.TrimSpace(item.Date),
		})
	}
	return games, nil
}

func (c *Client) GetGameEvents(ctx context.Context, gameID string) ([]usecase.UpstreamGameEvent, []byte, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, nil, fmt.Errorf("game id is required")
	}

	var envelope eventsEnvelope
	raw, err := c.doJSON(ctx, "/games/"+url.PathEscape(gameID)+"/events", nil, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch game events game=%s: %w", gameID, err)
	}

	events := make([]usecase.UpstreamGameEvent, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		events = append(events, usecase.UpstreamGameEvent{
			EventType: item.Type,
			Player:    item.Player,
			Assist:    item.Assist,
			TeamName:  item.TeamName,
			TeamSide:  item.TeamSide,
		})
	}
	return events, raw, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			stats := c.breaker.Stats()
			c.logger.WarnContext(ctx, "puckdata circuit breaker rejected request",
				"state", stats.State,
				"consecutive_failures", stats.ConsecutiveFailures,
				"total_failures", stats.TotalFailures,
				"rejections", stats.Rejections,
				"opened_at", stats.OpenedAt,
			)
			return nil, fmt.Errorf("%w: sports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path + "?" + values.Encode()
	c.logger.DebugContext(ctx, "puckdata request", "curl_preview", buildCurlPreview(redactAPIURL(fullURL)))

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if isPuckDataCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.sendOnce(fullURL)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errPuckDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else if status >= 200 && status < 300 {
			return raw, nil
		} else if isRetryableStatus(status) {
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errPuckDataTransient, status, abbreviateBody(raw))
		} else {
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "puckdata request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// sendOnce copies the body before the pooled response is released; fasthttp
// reuses the backing buffer after ReleaseResponse.
func (c *Client) sendOnce(fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, 0, err
	}

	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func buildCurlPreview(redactedURL string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -H 'Accept: application/json' ")
	_, _ = buf.WriteString(shellQuote(redactedURL))
	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func redactAPIURL(rawURL string) string {
	return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		return text[:256] + "...(truncated)"
	}
	return text
}

func isPuckDataCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errPuckDataTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusRequestTimeout ||
		code == fasthttp.StatusTooManyRequests ||
		code >= fasthttp.StatusInternalServerError
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

package banner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursewatch-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/banner")

const (
	keepAlivePath = "/StudentRegistrationSsb/ssb/keepAlive/data"
	searchPath    = "/StudentRegistrationSsb/ssb/searchResults/searchResults"
	registerPath  = "/StudentRegistrationSsb/ssb/registration"
)

// ErrUnreachable means the registration backend could not be reached or did
// not answer with anything usable. Transient, callers should retry later.
var ErrUnreachable = fmt.Errorf("registration backend unreachable")

// ErrUnparseable means the backend answered but the body was not in the
// expected shape. Treated the same as ErrUnreachable by callers.
var ErrUnparseable = fmt.Errorf("could not parse registration response")

type SessionStatus int

const (
	StatusAlive SessionStatus = iota
	StatusExpired
	StatusUnreachable
)

func (s SessionStatus) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusExpired:
		return "expired"
	case StatusUnreachable:
		return "unreachable"
	}
	return "unknown"
}

// Credentials is the bag of session cookies lifted from a logged-in
// registration session, keyed by cookie name (JSESSIONID and friends).
// The client never refreshes these, it only detects when they go stale.
type Credentials map[string]string

type ResponseFormat string

const (
	FormatJSON ResponseFormat = "json"
	FormatHTML ResponseFormat = "html"
)

type ClientOptions struct {
	BaseUrl     string
	Term        string
	Credentials Credentials
	// defaults to FormatJSON
	Format ResponseFormat
	// defaults to 30 seconds
	Timeout time.Duration
}

type Client struct {
	BaseUrl    *url.URL
	Http       *resty.Client
	Term       string
	normalizer Normalizer
	sessionId  string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if len(opts.Credentials) == 0 {
		return nil, fmt.Errorf("no session cookies were provided")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "*/*")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetHeader("x-requested-with", "XMLHttpRequest")
	client.SetHeader("referer", opts.BaseUrl+registerPath)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)

	var cookies []*http.Cookie
	for name, value := range opts.Credentials {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	client.SetCookies(cookies)

	telemetry.InstrumentResty(client, "scrapers/banner/http")

	var normalizer Normalizer = JSONNormalizer{}
	if opts.Format == FormatHTML {
		normalizer = HTMLNormalizer{}
	}

	c := &Client{
		BaseUrl:    baseUrl,
		Http:       client,
		Term:       opts.Term,
		normalizer: normalizer,
		sessionId:  newSessionId(),
	}
	return c, nil
}

// banner wants an opaque per-tab session id on search requests, the web ui
// generates it as a handful of letters followed by unix millis
func newSessionId() string {
	letters, err := random.String(5)
	if err != nil {
		letters = "tgioo"
	}
	return fmt.Sprintf("%s%d", strings.ToLower(letters), time.Now().UnixMilli())
}

// KeepAlive issues the lightweight heartbeat that keeps the borrowed session
// warm and reports whether it is still valid. A markup body where the "Alive"
// acknowledgment was expected means the session has been redirected to a
// login page and is gone for good.
func (c *Client) KeepAlive(ctx context.Context) SessionStatus {
	ctx, span := tracer.Start(ctx, "client:KeepAlive")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(keepAlivePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "keep alive request failed")
		return StatusUnreachable
	}

	body := strings.TrimSpace(res.String())
	if res.StatusCode() == http.StatusOK && strings.Contains(body, "Alive") {
		return StatusAlive
	}
	if strings.HasPrefix(body, "<") {
		span.SetStatus(codes.Error, "got a login page instead of a keep alive acknowledgment")
		return StatusExpired
	}

	span.SetStatus(codes.Error, fmt.Sprintf("unrecognized keep alive reply, status %d", res.StatusCode()))
	return StatusUnreachable
}

// SearchCourse fetches the raw availability reply for one course reference
// number. It never retries and never interprets the body, that is the
// normalizer's job.
func (c *Client) SearchCourse(ctx context.Context, crn string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:SearchCourse")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"txt_term":        c.Term,
			"txt_keywordlike": crn,
			"startDatepicker": "",
			"endDatepicker":   "",
			"uniqueSessionId": c.sessionId,
			"pageOffset":      "0",
			"pageMaxSize":     "10",
			"sortColumn":      "subjectDescription",
			"sortDirection":   "asc",
		}).
		Get(searchPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		span.SetStatus(codes.Error, fmt.Sprintf("search returned status %d", res.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, res.StatusCode())
	}

	return res.Body(), nil
}

// Poll is one full availability query: fetch then normalize.
func (c *Client) Poll(ctx context.Context, crn string) (Snapshot, error) {
	body, err := c.SearchCourse(ctx, crn)
	if err != nil {
		return Snapshot{}, err
	}
	return c.normalizer.Normalize(body, crn)
}

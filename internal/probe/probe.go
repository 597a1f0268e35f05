// Package probe calls the protected API with a bearer token and judges the
// response.
package probe

import (
	"context"
	"strings"
	"time"

	"github.com/loykin/connprobe/internal/common"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/failure"
	"github.com/loykin/connprobe/internal/httpc"
	"github.com/loykin/connprobe/internal/util"
	"github.com/tidwall/gjson"
)

// Result is what the API returned. It is produced whenever a response was
// received, whatever its status.
type Result struct {
	StatusCode int
	Body       string
	Elapsed    time.Duration
}

// Prober issues the authenticated GET.
type Prober struct {
	BaseURL string
	// Path is appended to BaseURL; defaults to constants.DefaultProbePath.
	Path   string
	HTTP   *httpc.Httpc
	Logger *common.Logger
}

// URL returns the endpoint that Probe calls.
func (p *Prober) URL() string {
	return util.JoinURL(p.BaseURL, util.TrimWithDefault(p.Path, constants.DefaultProbePath))
}

// Probe sends GET <base>/<path> with Authorization: Bearer token. HTTP status
// is not interpreted here; only transport failures are returned as errors.
func (p *Prober) Probe(ctx context.Context, token string) (*Result, error) {
	hc := p.HTTP
	if hc == nil {
		hc = &httpc.Httpc{}
	}
	target := p.URL()
	log := p.logger().WithRequest("GET", target)

	start := time.Now()
	resp, err := hc.New().R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", constants.ContentTypeJSON).
		Get(target)
	if err != nil {
		fe := httpc.ClassifyTransport(err)
		log.Debug("api request failed", "error", err, "kind", fe.Kind.String())
		return nil, fe
	}
	res := &Result{StatusCode: resp.StatusCode(), Body: resp.String(), Elapsed: time.Since(start)}
	log.Debug("api response received", "status", res.StatusCode, "elapsed", res.Elapsed, "bytes", len(res.Body))
	return res, nil
}

func (p *Prober) logger() *common.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return common.GetLogger().WithComponent("probe")
}

// Validate accepts a 200 response whose body mentions both "name" and
// "email". The check is on the raw text, not on parsed JSON fields.
func Validate(r *Result) error {
	if r == nil {
		return failure.New(failure.KindValidation, "Status code: 0 Response body: ")
	}
	if r.StatusCode != constants.DefaultExpectedStatus {
		return failure.New(failure.KindValidation, "Status code: %d Response body: %s", r.StatusCode, r.Body)
	}
	if !strings.Contains(r.Body, `"name"`) || !strings.Contains(r.Body, `"email"`) {
		return failure.New(failure.KindValidation, "Response does not contain required attributes.")
	}
	return nil
}

// MemberCount returns the number of elements when body is a JSON array.
func MemberCount(body string) (int, bool) {
	parsed := gjson.Parse(body)
	if !parsed.IsArray() {
		return 0, false
	}
	return int(parsed.Get("#").Int()), true
}

// Package pipeline composes the protected matching pipeline: credential
// verification, role authorization, rate admission, then ranking. Stages run
// strictly in that order and the first failure short-circuits the request.
package pipeline

import (
	"context"
	"time"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/common/metrics"
	"alumni-match/internal/common/observability"
	"alumni-match/internal/identity"
	"alumni-match/internal/match"
	"alumni-match/internal/ratelimit"
)

// Request carries one inbound matching call.
type Request struct {
	Token        string
	RemoteAddr   string
	ForwardedFor string
	Options      match.Options
}

// Response is the ranked result set plus the identity it was computed for.
type Response struct {
	Results []match.Result
	Claims  *identity.Claims
}

// Admitter is the admission check the pipeline runs after authorization.
type Admitter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Pipeline wires the four stages for the matching endpoint.
type Pipeline struct {
	verifier *identity.Verifier
	admitter Admitter
	engine   *match.Engine
	allowed  []identity.Role
	obs      *observability.Observability
	logger   logger.Logger
}

// New builds the pipeline. allowed is the role set permitted to request matches.
func New(verifier *identity.Verifier, admitter Admitter, engine *match.Engine,
	allowed []identity.Role, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		verifier: verifier,
		admitter: admitter,
		engine:   engine,
		allowed:  allowed,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Execute runs verify, authorize, admit, rank. Errors pass through without
// translation; the HTTP layer maps them exhaustively.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	resp, err := p.execute(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = string(errors.Normalize(err).Code)
	}
	if p.obs != nil {
		p.obs.RecordRequest(ctx, outcome)
		p.obs.RecordRequestDuration(ctx, time.Since(started), outcome)
	}
	return resp, err
}

func (p *Pipeline) execute(ctx context.Context, req Request) (*Response, error) {
	claims, err := p.verifier.Verify(req.Token)
	if err != nil {
		p.recordStage("verify", err)
		return nil, err
	}
	p.recordStage("verify", nil)

	if err := identity.Require(claims, p.allowed...); err != nil {
		p.recordStage("authorize", err)
		p.logger.Info("role gate denied request", map[string]interface{}{
			"subjectId": claims.SubjectID,
			"role":      string(claims.Role),
		})
		return nil, err
	}
	p.recordStage("authorize", nil)

	key := ratelimit.KeyFor(claims, req.ForwardedFor, req.RemoteAddr)
	decision, err := p.admitter.Allow(ctx, key)
	if err != nil {
		p.recordStage("admit", err)
		return nil, err
	}
	if !decision.Allowed {
		rateErr := errors.NewRateLimitedError(decision.RetryAfterSeconds)
		p.recordStage("admit", rateErr)
		p.logger.Info("admission denied", map[string]interface{}{
			"subjectId":  claims.SubjectID,
			"backend":    decision.Backend,
			"retryAfter": decision.RetryAfterSeconds,
		})
		return nil, rateErr
	}
	p.recordStage("admit", nil)

	results, err := p.engine.Match(ctx, claims.SubjectID, req.Options)
	if err != nil {
		p.recordStage("rank", err)
		return nil, err
	}
	p.recordStage("rank", nil)

	return &Response{Results: results, Claims: claims}, nil
}

func (p *Pipeline) recordStage(stage string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(errors.Normalize(err).Code)
	}
	metrics.PipelineStageOutcomes.WithLabelValues(stage, outcome).Inc()
}

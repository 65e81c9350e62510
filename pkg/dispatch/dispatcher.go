package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/lookout/pkg/hub"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

var (
	// ErrValidation is returned for malformed command payloads. Its text is
	// safe to surface to the requesting client.
	ErrValidation = errors.New("invalid command payload")
)

// Automation is the downstream collaborator that executes deployment and
// scaling commands. Retries, if any, are its responsibility, not ours.
type Automation interface {
	Trigger(ctx context.Context, cmd *types.DeploymentCommand) (types.AutomationResult, error)
}

// CommandStore persists dispatched commands for audit
type CommandStore interface {
	SaveCommand(cmd *types.DeploymentCommand) error
}

// Request is a parsed trigger payload from a client
type Request struct {
	Project     string            `json:"project"`
	Environment string            `json:"environment"`
	Service     string            `json:"service"`
	Parameters  map[string]string `json:"parameters"`
}

// Dispatcher forwards client-issued commands to automation collaborators
// and reports the outcome back to the requesting connection only.
//
// The dispatcher holds no queue and performs no retries: each command is
// one request/response pair bound to the issuing connection. If the
// connection closes before the collaborator responds, the result is
// discarded.
type Dispatcher struct {
	deploy  Automation
	scale   Automation
	store   CommandStore
	hub     *hub.Hub
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(deploy, scale Automation, store CommandStore, h *hub.Hub, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		deploy:  deploy,
		scale:   scale,
		store:   store,
		hub:     h,
		timeout: timeout,
	}
}

// Validate checks a request for the given command kind
func Validate(kind types.CommandKind, req Request) error {
	switch kind {
	case types.CommandKindDeployment:
		if req.Project == "" || req.Environment == "" {
			return ErrValidation
		}
	case types.CommandKindScale:
		if req.Service == "" {
			return ErrValidation
		}
	default:
		return ErrValidation
	}
	return nil
}

// Dispatch accepts a validated command, forwards it to the automation
// collaborator asynchronously, and sends the targeted result event to the
// requesting connection. Returns the accepted command immediately.
func (d *Dispatcher) Dispatch(kind types.CommandKind, c *hub.Client, req Request) (*types.DeploymentCommand, error) {
	if err := Validate(kind, req); err != nil {
		return nil, err
	}

	automation := d.deploy
	if kind == types.CommandKindScale {
		automation = d.scale
	}
	if automation == nil {
		return nil, errors.New("no automation configured for " + string(kind))
	}

	cmd := &types.DeploymentCommand{
		ID:          uuid.New().String(),
		Kind:        kind,
		RequestedBy: c.Principal,
		Project:     req.Project,
		Environment: req.Environment,
		Service:     req.Service,
		Parameters:  req.Parameters,
		Status:      types.CommandStatusPending,
		RequestedAt: time.Now(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.execute(cmd, c, automation)
	}()
	return cmd, nil
}

// Wait blocks until every in-flight command execution has finished.
// Called during shutdown so terminal statuses are persisted before the
// store closes; the automation timeout bounds how long this can take.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// execute runs the collaborator call and delivers the targeted result
func (d *Dispatcher) execute(cmd *types.DeploymentCommand, c *hub.Client, automation Automation) {
	logger := log.WithComponent("dispatch")

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	result, err := automation.Trigger(ctx, cmd)

	now := time.Now()
	cmd.CompletedAt = &now
	if err != nil {
		cmd.Status = types.CommandStatusFailed
		cmd.Error = err.Error()
	} else {
		cmd.Status = types.CommandStatusTriggered
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Kind), string(cmd.Status)).Inc()

	// Commands are persisted with their terminal status, best-effort
	if d.store != nil {
		if serr := d.store.SaveCommand(cmd); serr != nil {
			metrics.PersistFailuresTotal.WithLabelValues("commands").Inc()
			logger.Error().Err(serr).Str("command_id", cmd.ID).Msg("failed to persist command")
		}
	}

	if err != nil {
		logger.Error().Err(err).
			Str("command_id", cmd.ID).
			Str("kind", string(cmd.Kind)).
			Msg("automation trigger failed")

		// Internal error detail stays in the logs; the client gets a
		// generic, human-readable message
		d.hub.Send(c, hub.Event{
			Type: errorEventType(cmd.Kind),
			Payload: map[string]string{
				"commandId": cmd.ID,
				"message":   "automation failed to execute the " + string(cmd.Kind) + " command",
			},
		})
		return
	}

	logger.Info().
		Str("command_id", cmd.ID).
		Str("kind", string(cmd.Kind)).
		Str("requested_by", cmd.RequestedBy).
		Msg("command triggered")

	// Targeted response: only the requesting connection hears about it.
	// Send returns false if the connection is gone; the result is then
	// discarded by design.
	d.hub.Send(c, hub.Event{
		Type: successEventType(cmd.Kind),
		Payload: map[string]interface{}{
			"commandId": cmd.ID,
			"reference": result.Reference,
			"message":   result.Message,
		},
	})
}

func successEventType(kind types.CommandKind) string {
	if kind == types.CommandKindScale {
		return "scaling:triggered"
	}
	return "deployment:triggered"
}

func errorEventType(kind types.CommandKind) string {
	if kind == types.CommandKindScale {
		return "scaling:error"
	}
	return "deployment:error"
}

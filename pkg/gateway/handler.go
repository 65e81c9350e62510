package gateway

import (
	"encoding/json"
	"errors"

	"github.com/cuemby/lookout/pkg/alerts"
	"github.com/cuemby/lookout/pkg/dispatch"
	"github.com/cuemby/lookout/pkg/hub"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

// Inbound message types
const (
	msgSubscribeMetrics     = "subscribe:metrics"
	msgSubscribeAlerts      = "subscribe:alerts"
	msgSubscribeDeployments = "subscribe:deployments"
	msgTriggerDeployment    = "trigger:deployment"
	msgTriggerScale         = "trigger:scale"
	msgAlertAcknowledge     = "alert:acknowledge"
)

type subscribeMetricsPayload struct {
	Services     []string `json:"services"`
	Environments []string `json:"environments"`
}

type subscribeAlertsPayload struct {
	Severity    string   `json:"severity"`
	MinSeverity string   `json:"minSeverity"`
	Services    []string `json:"services"`
}

type subscribeDeploymentsPayload struct {
	Projects     []string `json:"projects"`
	Environments []string `json:"environments"`
}

type acknowledgePayload struct {
	AlertID string `json:"alertId"`
}

// handleMessage routes one inbound client message. It runs on the
// connection's read pump; validation failures are surfaced to the caller
// only, never broadcast.
func (g *Gateway) handleMessage(c *hub.Client, msgType string, payload json.RawMessage) {
	switch msgType {
	case msgSubscribeMetrics:
		g.handleSubscribeMetrics(c, payload)
	case msgSubscribeAlerts:
		g.handleSubscribeAlerts(c, payload)
	case msgSubscribeDeployments:
		g.handleSubscribeDeployments(c, payload)
	case msgTriggerDeployment:
		g.handleTrigger(c, types.CommandKindDeployment, payload)
	case msgTriggerScale:
		g.handleTrigger(c, types.CommandKindScale, payload)
	case msgAlertAcknowledge:
		g.handleAcknowledge(c, payload)
	default:
		g.sendError(c, "error", "unknown message type: "+msgType)
	}
}

// sendError delivers a targeted error event to the caller
func (g *Gateway) sendError(c *hub.Client, eventType, message string) {
	g.hub.Send(c, hub.Event{
		Type:    eventType,
		Payload: map[string]string{"message": message},
	})
}

// confirmSubscription acknowledges the joined topics to the caller
func (g *Gateway) confirmSubscription(c *hub.Client, topics []string) {
	g.hub.Send(c, hub.Event{
		Type:    "subscribed",
		Payload: map[string]interface{}{"topics": topics},
	})
}

func (g *Gateway) handleSubscribeMetrics(c *hub.Client, payload json.RawMessage) {
	var req subscribeMetricsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, "error", "invalid subscribe:metrics payload")
		return
	}

	var topics []string
	for _, svc := range req.Services {
		if svc == "" {
			continue
		}
		topics = append(topics, topicServiceMetrics(svc))
	}
	for _, env := range req.Environments {
		if env == "" {
			continue
		}
		topics = append(topics, topicEnvironment(env))
	}

	for _, topic := range topics {
		g.hub.Join(c, topic)
	}
	g.confirmSubscription(c, topics)
}

func (g *Gateway) handleSubscribeAlerts(c *hub.Client, payload json.RawMessage) {
	var req subscribeAlertsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, "error", "invalid subscribe:alerts payload")
		return
	}

	var topics []string
	if req.Severity != "" {
		severity := types.Severity(req.Severity)
		if !severity.Valid() {
			g.sendError(c, "error", "unknown severity: "+req.Severity)
			return
		}
		topics = append(topics, topicAlertSeverity(severity))
	}
	if req.MinSeverity != "" {
		min := types.Severity(req.MinSeverity)
		if !min.Valid() {
			g.sendError(c, "error", "unknown severity: "+req.MinSeverity)
			return
		}
		// Floor filter: one membership per severity at or above the floor
		for _, severity := range types.Severities() {
			if severity.AtLeast(min) {
				topics = append(topics, topicAlertSeverity(severity))
			}
		}
	}
	for _, svc := range req.Services {
		if svc == "" {
			continue
		}
		topics = append(topics, topicAlertService(svc))
	}

	for _, topic := range topics {
		g.hub.Join(c, topic)
	}
	g.confirmSubscription(c, topics)
}

func (g *Gateway) handleSubscribeDeployments(c *hub.Client, payload json.RawMessage) {
	var req subscribeDeploymentsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, "error", "invalid subscribe:deployments payload")
		return
	}

	var topics []string
	for _, project := range req.Projects {
		if project == "" {
			continue
		}
		topics = append(topics, topicDeploymentProject(project))
	}
	for _, env := range req.Environments {
		if env == "" {
			continue
		}
		topics = append(topics, topicDeploymentEnv(env))
	}

	for _, topic := range topics {
		g.hub.Join(c, topic)
	}
	g.confirmSubscription(c, topics)
}

// handleTrigger forwards a deployment or scaling command to the
// dispatcher. The eventual success/error event is targeted to this
// connection only.
func (g *Gateway) handleTrigger(c *hub.Client, kind types.CommandKind, payload json.RawMessage) {
	errType := "deployment:error"
	if kind == types.CommandKindScale {
		errType = "scaling:error"
	}

	var req dispatch.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(c, errType, "invalid trigger payload")
		return
	}

	logger := log.WithConnID(c.ID)

	cmd, err := g.dispatcher.Dispatch(kind, c, req)
	if err != nil {
		if errors.Is(err, dispatch.ErrValidation) {
			g.sendError(c, errType, "invalid "+string(kind)+" payload: project/environment or service missing")
		} else {
			logger.Error().Err(err).Msg("dispatch failed")
			g.sendError(c, errType, "unable to accept "+string(kind)+" command")
		}
		return
	}

	logger.Info().
		Str("command_id", cmd.ID).
		Str("kind", string(kind)).
		Msg("command accepted")
}

// handleAcknowledge closes an open alert on behalf of the caller and
// announces the acknowledgment globally
func (g *Gateway) handleAcknowledge(c *hub.Client, payload json.RawMessage) {
	var req acknowledgePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.AlertID == "" {
		g.sendError(c, "error", "invalid alert:acknowledge payload")
		return
	}

	alert, err := g.alerts.Acknowledge(req.AlertID, c.Principal)
	if err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			g.sendError(c, "error", "alert not found or already acknowledged")
		} else {
			g.sendError(c, "error", "unable to acknowledge alert")
		}
		return
	}

	// Persist the closed alert best-effort, then announce globally
	if err := g.store.SaveAlert(alert); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("alerts").Inc()
		logger := log.WithAlertID(alert.ID)
		logger.Error().Err(err).Msg("failed to persist acknowledged alert")
	}

	g.hub.Broadcast(hub.TopicAll, hub.Event{
		Type: "alert:acknowledged",
		Payload: map[string]interface{}{
			"alertId":        alert.ID,
			"acknowledgedBy": alert.AcknowledgedBy,
			"acknowledgedAt": alert.AcknowledgedAt,
		},
	})
}

package gateway

import (
	"github.com/cuemby/lookout/pkg/types"
)

// Topic naming scheme. Topics are plain strings partitioned by dimension;
// they are created lazily on first join and carry no state of their own.

func topicServiceMetrics(service string) string {
	return "metrics:" + service
}

func topicEnvironment(env string) string {
	return "env:" + env
}

func topicAlertSeverity(severity types.Severity) string {
	return "alerts:" + string(severity)
}

func topicAlertService(service string) string {
	return "alerts:service:" + service
}

func topicDeploymentProject(project string) string {
	return "deployments:" + project
}

func topicDeploymentEnv(env string) string {
	return "deployments:env:" + env
}

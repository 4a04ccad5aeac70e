package appcontext

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextId int

const (
	runIdKeyId contextId = iota
	commandKeyId
	artifactKeyId
	categoryKeyId
	requestIdKeyId
)

func WithRunId(ctx context.Context, runId string) context.Context {
	return context.WithValue(ctx, runIdKeyId, runId)
}

func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKeyId, command)
}

func WithArtifactKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, artifactKeyId, key)
}

func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKeyId, category)
}

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKeyId, requestId)
}

func LoggerFromContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	result := logger

	if runId, ok := ctx.Value(runIdKeyId).(string); ok && runId != "" {
		result = result.WithField("run_id", runId)
	}

	if command, ok := ctx.Value(commandKeyId).(string); ok && command != "" {
		result = result.WithField("command", command)
	}

	if key, ok := ctx.Value(artifactKeyId).(string); ok && key != "" {
		result = result.WithField("artifact", key)
	}

	if category, ok := ctx.Value(categoryKeyId).(string); ok && category != "" {
		result = result.WithField("category", category)
	}

	if requestId, ok := ctx.Value(requestIdKeyId).(string); ok && requestId != "" {
		result = result.WithField("request_id", requestId)
	}

	return result
}

package httpparser

import (
	"math"

	"go.uber.org/zap"
)

const (
	// hard limits
	maxMethodLength     = 7
	maxProtocolLength   = 10
	maxPathLength       = 8190 // same as the request-line limit of the most of servers
	maxHeaderLineLength = 8190
	maxHeaders          = 100
	maxBodyLength       = math.MaxInt32
	maxChunkLength      = math.MaxInt32
)

const (
	// soft limits
	initialStartLineBufferLength = 256
	initialHeaderBufferLength    = 256
)

type Settings struct {
	// hard limits
	MaxPathLength       int
	MaxHeaderLineLength int
	MaxHeaders          int
	MaxBodyLength       int
	MaxChunkLength      int

	// soft limits
	InitialStartLineBufferLength int
	InitialHeaderBufferLength    int

	Logger *zap.SugaredLogger
}

func PrepareSettings(settings Settings) Settings {
	if settings.MaxPathLength < 1 {
		settings.MaxPathLength = maxPathLength
	}
	if settings.MaxHeaderLineLength < 1 {
		settings.MaxHeaderLineLength = maxHeaderLineLength
	}
	if settings.MaxHeaders < 1 {
		settings.MaxHeaders = maxHeaders
	}
	if settings.MaxBodyLength < 1 {
		settings.MaxBodyLength = maxBodyLength
	}
	if settings.MaxChunkLength < 1 {
		settings.MaxChunkLength = maxChunkLength
	}

	if settings.InitialStartLineBufferLength < 1 {
		settings.InitialStartLineBufferLength = initialStartLineBufferLength
	}
	if settings.InitialHeaderBufferLength < 1 {
		settings.InitialHeaderBufferLength = initialHeaderBufferLength
	}

	if settings.Logger == nil {
		settings.Logger = zap.NewNop().Sugar()
	}

	return settings
}

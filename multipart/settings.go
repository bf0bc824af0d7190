package multipart

import "go.uber.org/zap"

const (
	// hard limits
	maxBoundaryLength   = 70 // rfc2046, 5.1.1
	maxParts            = 1024
	maxHeaderLineLength = 8192
	maxPartLength       = 10 << 20 // retained bytes of a single non-file part
)

const (
	// soft limits
	initialPiecesBufferLength = 1024
)

type Settings struct {
	// hard limits
	MaxBoundaryLength   int
	MaxParts            int
	MaxHeaderLineLength int
	MaxPartLength       int

	// soft limits
	InitialPiecesBufferLength int

	Logger *zap.SugaredLogger
}

func PrepareSettings(settings Settings) Settings {
	if settings.MaxBoundaryLength < 1 {
		settings.MaxBoundaryLength = maxBoundaryLength
	}
	if settings.MaxParts < 1 {
		settings.MaxParts = maxParts
	}
	if settings.MaxHeaderLineLength < 1 {
		settings.MaxHeaderLineLength = maxHeaderLineLength
	}
	if settings.MaxPartLength < 1 {
		settings.MaxPartLength = maxPartLength
	}

	if settings.InitialPiecesBufferLength < 1 {
		settings.InitialPiecesBufferLength = initialPiecesBufferLength
	}

	if settings.Logger == nil {
		settings.Logger = zap.NewNop().Sugar()
	}

	return settings
}

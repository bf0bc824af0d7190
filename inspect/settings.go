package inspect

import (
	"github.com/floordiv/snowdrop-multipart/formdata"
	"github.com/floordiv/snowdrop-multipart/httpparser"
	"github.com/floordiv/snowdrop-multipart/multipart"
	"go.uber.org/zap"
)

type Settings struct {
	HTTP      httpparser.Settings
	Multipart multipart.Settings
	// FileSink receives the content of file fields of every multipart body
	FileSink formdata.FileSink

	Logger *zap.SugaredLogger
}

func PrepareSettings(settings Settings) Settings {
	if settings.Logger == nil {
		settings.Logger = zap.NewNop().Sugar()
	}
	if settings.HTTP.Logger == nil {
		settings.HTTP.Logger = settings.Logger
	}
	if settings.Multipart.Logger == nil {
		settings.Multipart.Logger = settings.Logger
	}

	return settings
}

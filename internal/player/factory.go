package player

import (
	"errors"

	"github.com/kiddolearn/kiddo-player/internal/config"
	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/playback"
)

// ErrCustomPlayerPath is returned when the custom player type is configured without a binary path
var ErrCustomPlayerPath = errors.New("custom player requires player.path")

// NewEngineFactory returns the engine factory for the configured player type
func NewEngineFactory(cfg config.PlayerConfig) (playback.EngineFactory, error) {
	log.Info("Creating engine factory", "type", cfg.Type)

	switch cfg.Type {
	case "mpv":
	case "custom":
		// Any binary that speaks the mpv IPC protocol, for example a wrapper script or an mpv fork
		if cfg.Path == "" {
			return nil, ErrCustomPlayerPath
		}
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", cfg.Type)
		cfg.Type = "mpv"
	}

	return func(media playback.Media, opts playback.EngineOptions, listener playback.EngineListener) (playback.Engine, error) {
		engine, err := NewMPVEngine(cfg, media, opts, listener)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}, nil
}

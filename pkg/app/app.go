// Package app wires config into a ready web chat channel. Both the
// long-running server and the Lambda entry point start from here.
package app

import (
	"fmt"

	"github.com/quantumx/quantumx/pkg/channels"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/engine"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/providers"
	"github.com/quantumx/quantumx/pkg/session"
)

func NewWebChat(cfg *config.Config) (*channels.WebChatChannel, *session.Store, error) {
	text, err := providers.CreateProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating provider: %w", err)
	}
	image := providers.CreateImageProvider(cfg)
	opts := engine.OptionsFromConfig(cfg)

	store := session.NewStore(func() *engine.Engine {
		return engine.New(text, image, opts)
	}, session.OptionsFromConfig(cfg))

	logger.InfoCF("app", "Web chat ready", map[string]interface{}{
		"name":          cfg.Engine.Name,
		"image_enabled": image != nil,
		"history_limit": opts.HistoryLimit,
	})
	return channels.NewWebChatChannel(cfg, store), store, nil
}

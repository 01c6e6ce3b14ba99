package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stagelink/controlplane"
	"stagelink/core"
	"stagelink/factories"
	"stagelink/handlers/chat"
	"stagelink/handlers/speech"
	"stagelink/router"
	"stagelink/services/openai/llm"

	"github.com/joho/godotenv"
)

func main() {
	var settingsPath string
	var connectURL string
	flag.StringVar(&settingsPath, "settings", "./settings.json", "path to settings.json")
	flag.StringVar(&connectURL, "connect", "", "override the stage server control endpoint (e.g. ws://127.0.0.1:12393/client-ws)")
	flag.Parse()

	logger := core.GetLogger()

	if err := godotenv.Load(".env.local"); err != nil {
		logger.Debug("no .env.local file loaded", "error", err)
	}

	settings, err := factories.SettingsConfigFromFile(settingsPath)
	if err != nil {
		logger.Warn("failed to load settings, using defaults", "path", settingsPath, "error", err)
		settings = factories.DefaultSettingsConfig()
	}
	if connectURL != "" {
		settings.ControlURL = connectURL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The stage bundled here is a no-op placeholder; a real renderer plugs
	// in behind the same interface.
	stage := core.NewNopStage(logger)
	dispatcher := speech.NewDispatcher(speech.StageSynthesizer{Stage: stage}, logger)

	source := llm.NewService(llm.Config{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		BaseURL:     settings.LLM.BaseURL,
		Model:       settings.LLM.Model,
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	if err := source.Init(ctx); err != nil {
		logger.Warn("chat source unavailable, turns will fail", "error", err)
	}

	gate := core.BusyGate{
		Speaking:     dispatcher.Speaking(),
		AudioPlaying: stage.Playing,
	}
	handlerConfig := chat.DefaultHandlerConfig()
	if settings.SystemPrompt != "" {
		handlerConfig.SystemPrompt = settings.SystemPrompt
	}
	handlerConfig.Voice = settings.Voice
	chatHandler := chat.NewHandler(source, dispatcher, gate, handlerConfig, logger)

	client := controlplane.NewClient(controlplane.ClientConfig{
		ConnectURL: settings.ControlURL,
		Role:       settings.Role,
		Logger:     logger,
	})
	defer client.Disconnect()

	commandRouter := router.New(stage, client, dispatcher.Speaking(), router.Config{
		AudioOrigin: settings.AudioOrigin,
	}, logger)
	client.OnCommand(commandRouter.Handle)
	client.OnConnectionChange(func(connected bool) {
		logger.Info("control channel state changed", "connected", connected)
	})

	if err := client.Connect(ctx); err != nil {
		logger.Warn("initial connect failed, reconnect scheduled", "error", err)
	}

	go chatLoop(ctx, cancel, chatHandler, logger)

	<-ctx.Done()
	logger.Info("shutting down")
}

// chatLoop reads user messages from stdin, one per line, and runs a turn
// for each. Messages arriving while the pipeline is busy are refused.
func chatLoop(ctx context.Context, cancel context.CancelFunc, handler *chat.Handler, logger *core.Logger) {
	defer cancel()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		result := handler.ProcessMessage(ctx, text)
		switch {
		case errors.Is(result.Err, core.ErrBusy):
			fmt.Println("(still speaking, try again in a moment)")
		case result.Err != nil:
			logger.Error("turn failed", "error", result.Err)
		default:
			fmt.Println(result.Response)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

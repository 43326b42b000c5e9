// Command tbotdemo is a minimal echo/greeting bot demonstrating the library: TOML configuration,
// YAML message templates, a couple of permanent handlers, and graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/corvidlabs/tbot"
	"github.com/corvidlabs/tbot/event"
	"github.com/corvidlabs/tbot/filter"
	"github.com/corvidlabs/tbot/internal/template"
	"github.com/corvidlabs/tbot/internal/util/logging"
	"github.com/corvidlabs/tbot/internal/util/slashcmd"
)

type messages struct {
	Greeting string `template:"greeting"`
	Help     string `template:"help"`
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "tbotdemo.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logging.Fatalf("%s", err)

		return 2
	}

	msgs, err := loadMessages(cfg.MessagesFile)
	if err != nil {
		logging.Fatalf("%s", err)

		return 2
	}

	bot, err := tbot.NewBot(cfg.BotToken,
		tbot.WithPollingTimeout(cfg.PollingTimeout),
		tbot.WithUpdateLimit(cfg.UpdateLimit),
	)
	if err != nil {
		logging.Fatalf("constructing bot: %s", err)

		return 2
	}

	registerHandlers(bot, msgs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := bot.StartPolling(ctx, cfg.DropPending)

	return int(code)
}

func loadMessages(path string) (messages, error) {
	if path == "" {
		return messages{Greeting: "Hello!", Help: "No help configured."}, nil
	}

	tpl, err := template.LoadYAMLTemplate(path)
	if err != nil {
		return messages{}, fmt.Errorf("loading messages: %w", err)
	}

	group, err := tpl.Get("demo")
	if err != nil {
		return messages{}, fmt.Errorf("loading messages: %w", err)
	}

	var m messages
	if err := group.Populate(&m); err != nil {
		return messages{}, fmt.Errorf("populating messages: %w", err)
	}

	return m, nil
}

func registerHandlers(bot *tbot.Bot, msgs messages) {
	if err := bot.OnStartup(func() {
		logging.Infof("bot is up, listening for updates")
	}); err != nil {
		logging.Errorf("registering startup handler: %s", err)
	}

	if err := bot.OnShutdown(func(exitCode int) {
		logging.Infof("shutting down with exit code %d", exitCode)
	}); err != nil {
		logging.Errorf("registering shutdown handler: %s", err)
	}

	startHandler := event.Handler1(func(payload event.Payload) any {
		chatID, ok := filter.ChatID(payload)
		if !ok {
			return nil
		}

		ctx := context.Background()
		if _, err := bot.SendMessage(ctx, map[string]any{
			"chat_id": chatID,
			"text":    msgs.Greeting,
		}); err != nil {
			logging.Errorf("replying to /start: %s", err)
		}

		return nil
	})

	if err := bot.On("message", startHandler, filter.Commands(false, "start")); err != nil {
		logging.Errorf("registering /start handler: %s", err)
	}

	helpHandler := event.Handler1(func(payload event.Payload) any {
		chatID, ok := filter.ChatID(payload)
		if !ok {
			return nil
		}

		ctx := context.Background()
		if _, err := bot.SendMessage(ctx, map[string]any{
			"chat_id": chatID,
			"text":    msgs.Help,
		}); err != nil {
			logging.Errorf("replying to /help: %s", err)
		}

		return nil
	})

	if err := bot.On("message", helpHandler, filter.Commands(false, "help")); err != nil {
		logging.Errorf("registering /help handler: %s", err)
	}

	// /echo demonstrates slashcmd's shell-like argument splitting (quoting, escaping) on the raw
	// message text, which the bot_command-entity-based filter.Commands has no equivalent for: it
	// only tells you where the command name ends, not how to split what follows into arguments.
	echoHandler := event.Handler1(func(payload event.Payload) any {
		chatID, ok := filter.ChatID(payload)
		if !ok {
			return nil
		}

		text, _ := payload["text"].(string)

		cmd, ok := slashcmd.Parse(text)
		if !ok {
			return event.Unhandled
		}

		reply := strings.Join(cmd.Args, " ")
		if reply == "" {
			reply = "(nothing to echo)"
		}

		ctx := context.Background()
		if _, err := bot.SendMessage(ctx, map[string]any{
			"chat_id": chatID,
			"text":    reply,
		}); err != nil {
			logging.Errorf("replying to /echo: %s", err)
		}

		return nil
	})

	if err := bot.On("message", echoHandler, filter.TextStartsWith(false, "/echo")); err != nil {
		logging.Errorf("registering /echo handler: %s", err)
	}
}

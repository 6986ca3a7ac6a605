package assistant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"PsyAssist/internal/assessment"
	"PsyAssist/internal/auth"
	"PsyAssist/internal/chat"
	"PsyAssist/internal/config"
	"PsyAssist/internal/gigachat"
	"PsyAssist/internal/store"
	"PsyAssist/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Assistant represents the main application
type Assistant struct {
	config      *config.Config
	store       *store.Store
	logger      *slog.Logger
	tracer      trace.Tracer
	meter       metric.Meter
	httpClient  *http.Client
	tokens      *auth.TokenManager
	completions *gigachat.CompletionClient
	cleanup     func()
}

// New creates a new Assistant instance
func New(cfg *config.Config) (*Assistant, error) {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}
	if cfg.InsecureTLS {
		logger.Warn("certificate validation disabled; use only against isolated test environments")
	}

	httpClient := gigachat.NewHTTPClient(cfg.Timeout, cfg.InsecureTLS)
	oauthClient := gigachat.NewOAuthClient(cfg.OAuthURL, cfg.Scope, httpClient, logger, tracer)
	tokens := auth.NewTokenManager(st, oauthClient, logger)
	completions := gigachat.NewCompletionClient(cfg.ChatURL, cfg.Model, httpClient, logger, tracer, meter)

	a := &Assistant{
		config:      cfg,
		store:       st,
		logger:      logger,
		tracer:      tracer,
		meter:       meter,
		httpClient:  httpClient,
		tokens:      tokens,
		completions: completions,
		cleanup:     cleanup,
	}

	if cfg.Credential != "" {
		if err := tokens.SetCredential(cfg.Credential); err != nil {
			logger.Warn("failed to store configured credential", "error", err)
		}
	}

	return a, nil
}

// Close releases the database and telemetry resources
func (a *Assistant) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", "error", err)
	}
	a.cleanup()
}

// Run starts the interactive console loop
func (a *Assistant) Run() error {
	fmt.Println("=== Психологический ассистент ===")
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		shouldQuit, err := a.handleCommand(ctx, scanner, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			a.logger.Error("command error", "error", err)
		}
		if shouldQuit {
			break
		}
	}

	fmt.Println("До свидания!")
	return nil
}

// handleCommand handles a single console command
func (a *Assistant) handleCommand(ctx context.Context, scanner *bufio.Scanner, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/tests":
		fmt.Println("\nДоступные тесты:")
		for i, t := range assessment.AllTestTypes {
			fmt.Printf("%d. %s (%s)\n", i+1, t.DisplayName(), t)
		}
		fmt.Println()
		return false, nil

	case "/test":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /test <type> (see /tests)")
		}
		testType := assessment.TestType(parts[1])
		if !testType.Valid() {
			return false, fmt.Errorf("unknown test type: %s", parts[1])
		}
		return false, a.runTest(ctx, scanner, testType)

	case "/chat":
		return false, a.runChat(ctx, scanner)

	case "/token":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /token <authorization credential>")
		}
		if err := a.tokens.SetCredential(parts[1]); err != nil {
			return false, fmt.Errorf("failed to store credential: %w", err)
		}
		fmt.Println("Токен сохранен")
		return false, nil

	case "/refresh":
		if err := a.tokens.ForceRefresh(ctx); err != nil {
			return false, err
		}
		fmt.Println("Access token обновлен")
		return false, nil

	case "/history":
		return false, a.printHistory(ctx)

	case "/stats":
		return false, a.printStats(ctx)

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /tests               - List available tests")
		fmt.Println("  /test <type>         - Run a test dialogue")
		fmt.Println("  /chat                - Free-form chat with the assistant")
		fmt.Println("  /token <credential>  - Store the authorization credential")
		fmt.Println("  /refresh             - Force an access token refresh")
		fmt.Println("  /history             - Show saved test results")
		fmt.Println("  /stats               - Show aggregate statistics")
		fmt.Println("  /quit, /exit         - Exit")
		return false, nil

	default:
		fmt.Println("Unknown command. Type /help for commands.")
		return false, nil
	}
}

// runTest drives one guided test dialogue to its conclusion
func (a *Assistant) runTest(ctx context.Context, scanner *bufio.Scanner, testType assessment.TestType) error {
	session := chat.NewSession(a.tokens, a.completions, a.logger, assessment.SystemPrompt(testType))
	orch := assessment.New(testType, session, a.store, a.logger)

	fmt.Printf("\n=== %s ===\n", testType.DisplayName())

	reply, err := orch.Begin(ctx)
	if err != nil {
		return a.describeError(err)
	}
	fmt.Printf("Ассистент: %s\n\n", reply)

	for {
		fmt.Print("Ваш ответ: ")
		if !scanner.Scan() {
			return nil
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if answer == "/quit" {
			fmt.Println("Тест прерван.")
			return nil
		}

		reply, done, err := orch.Answer(ctx, answer)
		if err != nil {
			// manual retry: the state machine did not advance
			fmt.Printf("Error: %v\nПопробуйте ответить еще раз.\n", a.describeError(err))
			continue
		}

		fmt.Printf("Ассистент: %s\n\n", reply)

		if done {
			result := orch.Result()
			fmt.Println("=== Тест завершен ===")
			fmt.Printf("%s\n", result.Details)
			fmt.Printf("Результат сохранен (id=%d)\n\n", result.ID)
			return nil
		}
	}
}

// runChat is the free-form chat mode with the default assistant persona
func (a *Assistant) runChat(ctx context.Context, scanner *bufio.Scanner) error {
	session := chat.NewSession(a.tokens, a.completions, a.logger, "")

	fmt.Println("\n=== AI Чат ===")
	fmt.Println("Type /back to return, /reset to start over")

	for {
		fmt.Print("Вы: ")
		if !scanner.Scan() {
			return nil
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/back" || input == "/quit" {
			return nil
		}
		if input == "/reset" {
			session.Reset()
			fmt.Println("История очищена.")
			continue
		}

		reply, err := session.Send(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n", a.describeError(err))
			continue
		}
		fmt.Printf("Ассистент: %s\n\n", reply)
	}
}

// printHistory lists saved test results, newest first
func (a *Assistant) printHistory(ctx context.Context) error {
	results, err := a.store.AllResults(ctx)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("История пуста.")
		return nil
	}

	fmt.Println("\nИстория тестов:")
	for _, r := range results {
		fmt.Printf("[%d] %s — %s, вопросов: %d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"),
			r.TestType.DisplayName(), r.TurnCount)
		fmt.Printf("    %s\n", truncate(r.Verdict, 120))
	}
	fmt.Println()
	return nil
}

// printStats shows aggregate counts over the saved results
func (a *Assistant) printStats(ctx context.Context) error {
	total, err := a.store.TotalCount(ctx)
	if err != nil {
		return err
	}
	recent, err := a.store.CountSince(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return err
	}
	byType, err := a.store.CountByType(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nВсего тестов: %d\n", total)
	fmt.Printf("За последние 30 дней: %d\n", recent)
	if len(byType) > 0 {
		fmt.Println("По типам:")
		for _, t := range assessment.AllTestTypes {
			if count, ok := byType[t]; ok {
				fmt.Printf("  %s: %d\n", t.DisplayName(), count)
			}
		}
	}
	fmt.Println()
	return nil
}

// describeError maps known failures to user-facing messages
func (a *Assistant) describeError(err error) error {
	if errors.Is(err, auth.ErrMissingCredential) {
		return fmt.Errorf("не задан authorization credential; используйте /token <credential>")
	}
	var refreshErr *gigachat.RefreshError
	if errors.As(err, &refreshErr) {
		return fmt.Errorf("не удалось обновить access token: %w", err)
	}
	return err
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

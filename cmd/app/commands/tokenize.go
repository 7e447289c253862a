package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/allisson/cardtoken/internal/cardvalidation"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
	tokenizationUseCase "github.com/allisson/cardtoken/internal/tokenization/usecase"
)

// maxBatchLineBytes bounds one JSON form line in batch mode.
const maxBatchLineBytes = 64 * 1024

// staticFormSource is a FormSource over form data supplied on the command line.
type staticFormSource struct {
	mu   sync.Mutex
	data *tokenizationDomain.UpstreamFormData
}

func newStaticFormSource(form tokenizationDomain.UpstreamFormData) *staticFormSource {
	return &staticFormSource{data: &form}
}

func (s *staticFormSource) Collect(ctx context.Context) (*tokenizationDomain.UpstreamFormData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, fmt.Errorf("form is empty")
	}
	form := *s.data
	return &form, nil
}

func (s *staticFormSource) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// preflight runs the card field validators unless skipped.
func preflight(form tokenizationDomain.UpstreamFormData, now time.Time, skip bool) error {
	if skip {
		return nil
	}
	if err := cardvalidation.ValidateForm(form, now); err != nil {
		return fmt.Errorf("%w: %w", tokenizationDomain.ErrUpstreamValidation, err)
	}
	return nil
}

// RunTokenize submits one hosted-fields form and prints the payment token.
// The form is validated locally first unless skipPreflight is set, then driven through a
// hosted-fields session so the host callbacks fire exactly as in a checkout page.
func RunTokenize(
	ctx context.Context,
	starter tokenizationUseCase.AttemptStarter,
	logger *slog.Logger,
	writer io.Writer,
	form tokenizationDomain.UpstreamFormData,
	format string,
	now time.Time,
	skipPreflight bool,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if err := preflight(form, now, skipPreflight); err != nil {
		return err
	}

	hostedFields := tokenizationUseCase.NewHostedFields(
		newStaticFormSource(form),
		starter,
		tokenizationUseCase.Callbacks{
			OnSuccess: func(r *tokenizationDomain.TokenizationResult) {
				logger.Debug("tokenization callback: success")
			},
			OnError: func(e *tokenizationDomain.TokenizationError) {
				logger.Debug("tokenization callback: error", slog.String("kind", string(e.Kind)))
			},
			OnStateChange: func(state tokenizationDomain.State) {
				logger.Debug("tokenization state changed", slog.String("state", state.String()))
			},
		},
	)
	defer func() {
		if err := hostedFields.Reset(context.Background()); err != nil {
			logger.Warn("failed to reset form", slog.Any("error", err))
		}
	}()

	attempt, err := hostedFields.Tokenize(ctx)
	if err != nil {
		return err
	}

	result, err := attempt.Wait(ctx)
	if err != nil {
		return fmt.Errorf("tokenization failed (%s): %w", tokenizationDomain.KindOf(err), err)
	}

	logger.Info("tokenization succeeded", slog.String("attempt_id", attempt.ID().String()))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"token":      result.Token,
			"attempt_id": attempt.ID().String(),
		})
	}

	_, err = fmt.Fprintf(writer, "Token: %s\nAttempt: %s\n", result.Token, attempt.ID())
	return err
}

// batchResult is one line of batch output.
type batchResult struct {
	Line  int    `json:"line"`
	Token string `json:"token,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// RunTokenizeBatch reads one JSON form per line from reader and tokenizes each in turn.
// Every line produces one output line; a failing form does not stop the batch. The
// returned error reports how many forms failed.
func RunTokenizeBatch(
	ctx context.Context,
	useCase tokenizationUseCase.TokenizationUseCase,
	logger *slog.Logger,
	rw IOTuple,
	format string,
	now time.Time,
	skipPreflight bool,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	scanner := bufio.NewScanner(rw.Reader)
	scanner.Buffer(make([]byte, 0, 4096), maxBatchLineBytes)

	var total, failed, line int
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		total++

		res := tokenizeLine(ctx, useCase, line, text, now, skipPreflight)
		if res.Error != "" {
			failed++
		}
		if err := writeBatchResult(rw.Writer, res, format); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read forms: %w", err)
	}

	logger.Info("batch tokenization completed",
		slog.Int("total", total),
		slog.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d forms failed to tokenize", failed, total)
	}
	return nil
}

func tokenizeLine(
	ctx context.Context,
	useCase tokenizationUseCase.TokenizationUseCase,
	line int,
	text string,
	now time.Time,
	skipPreflight bool,
) batchResult {
	res := batchResult{Line: line}

	var form tokenizationDomain.UpstreamFormData
	if err := json.Unmarshal([]byte(text), &form); err != nil {
		res.Kind = string(tokenizationDomain.KindUpstreamValidation)
		res.Error = "invalid form JSON"
		return res
	}

	if err := preflight(form, now, skipPreflight); err != nil {
		res.Kind = string(tokenizationDomain.KindOf(err))
		res.Error = err.Error()
		return res
	}

	result, err := useCase.Tokenize(ctx, form)
	if err != nil {
		res.Kind = string(tokenizationDomain.KindOf(err))
		res.Error = err.Error()
		return res
	}
	res.Token = result.Token
	return res
}

func writeBatchResult(w io.Writer, res batchResult, format string) error {
	if format == "json" {
		jsonBytes, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonBytes))
		return err
	}

	if res.Error != "" {
		_, err := fmt.Fprintf(w, "%d: error (%s): %s\n", res.Line, res.Kind, res.Error)
		return err
	}
	_, err := fmt.Fprintf(w, "%d: %s\n", res.Line, res.Token)
	return err
}
